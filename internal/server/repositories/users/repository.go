// Package users declares the user store contract and its PostgreSQL
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/judgeserver/internal/server/models"
)

// Repository defines how the server reads and writes user rows.
// Lookups return common.ErrorNotFound when no row matches.
type Repository interface {
	// Create inserts user and fills in the generated ID and CreatedAt.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByLogin loads the current row for userName.
	GetUserByLogin(ctx context.Context, userName string) (*models.User, error)

	// GetUserByLoginForUpdate is GetUserByLogin with a row lock; only
	// meaningful inside a transaction.
	GetUserByLoginForUpdate(ctx context.Context, userName string) (*models.User, error)

	// List returns every user ordered by ID.
	List(ctx context.Context) ([]*models.User, error)

	// UpdateProfile stores DisplayName and Permissions of user (matched by ID).
	// Credentials are never touched here.
	UpdateProfile(ctx context.Context, user *models.User) error
}
