package problems

import (
	"context"

	"github.com/dmitrijs2005/judgeserver/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, problem *models.Problem) (*models.Problem, error)
	GetBySlug(ctx context.Context, slug string) (*models.Problem, error)
	List(ctx context.Context) ([]*models.Problem, error)
	DeleteBySlug(ctx context.Context, slug string) error
}
