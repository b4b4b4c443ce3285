// Package services contains server-side business logic shared by the HTTP
// and gRPC transports. Services speak in models and sentinel errors from
// internal/common; they never see transport types.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/judgeserver/internal/common"
	"github.com/dmitrijs2005/judgeserver/internal/dbx"
	"github.com/dmitrijs2005/judgeserver/internal/logging"
	"github.com/dmitrijs2005/judgeserver/internal/server/auth"
	"github.com/dmitrijs2005/judgeserver/internal/server/models"
	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/repomanager"
)

// Login verifies unknown users against this pair so the response time does
// not reveal whether the username exists.
var dummyCredentials = auth.Credentials{
	Salt: strings.Repeat("00", auth.CredentialLen),
	Hash: strings.Repeat("00", auth.CredentialLen),
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserView is what other users may learn about an account. Permissions is
// nil unless the viewer is an admin or the account owner.
type UserView struct {
	ID          int64
	UserName    string
	DisplayName string
	Permissions []string
}

// UserService handles registration, login, token refresh and the user
// directory.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenIssuer
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenIssuer, logger logging.Logger) *UserService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		logger:      logger.With("module", "user_service"),
	}
}

// Register creates a user with fresh credentials and no permissions.
// A taken username surfaces as a storage error.
func (s *UserService) Register(ctx context.Context, username, displayName, password string) (*models.User, error) {
	creds, err := auth.GenerateCredentials(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	user := &models.User{
		UserName:     username,
		DisplayName:  displayName,
		PasswordHash: creds.Hash,
		PasswordSalt: creds.Salt,
		Permissions:  []string{},
	}

	user, err = s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user", user.UserName, "id", user.ID)
	return user, nil
}

// Login checks the password and returns a fresh token pair. Unknown user and
// wrong password are both common.ErrCredentialMismatch.
func (s *UserService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.VerifyCredentials(dummyCredentials.Salt, dummyCredentials.Hash, password)
			return nil, common.ErrCredentialMismatch
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if !auth.VerifyCredentials(user.PasswordSalt, user.PasswordHash, password) {
		return nil, common.ErrCredentialMismatch
	}

	return s.generateTokenPair(user.UserName)
}

// Refresh mints a new access token from a refresh token. The refresh token
// itself is returned unchanged; it is not rotated.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Decode(refreshToken)
	if err != nil {
		s.logger.Debug(ctx, "refresh rejected", "reason", err.Error())
		return nil, common.ErrInvalidRefreshToken
	}
	if !claims.Refresh {
		return nil, common.ErrNotRefreshToken
	}

	access, err := s.tokens.IssueAccessToken(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

// ListUsers returns every user as seen by viewer (nil for anonymous).
func (s *UserService) ListUsers(ctx context.Context, viewer *models.User) ([]*UserView, error) {
	list, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	result := make([]*UserView, 0, len(list))
	for _, u := range list {
		result = append(result, viewOf(viewer, u))
	}
	return result, nil
}

// GetUser returns one user as seen by viewer (nil for anonymous).
func (s *UserService) GetUser(ctx context.Context, viewer *models.User, username string) (*UserView, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return viewOf(viewer, user), nil
}

// EditUser changes the display name and, for admins only, the permissions of
// username. A nil displayName or permissions leaves that field as is.
// The row is locked for the duration of the change, and the whole
// transaction occupies a single storage slot.
func (s *UserService) EditUser(ctx context.Context, actor *models.User, username string, displayName *string, permissions []string) (*UserView, error) {
	if actor == nil {
		return nil, common.ErrorUnauthorized
	}
	isAdmin := auth.IsAdmin(actor)
	if actor.UserName != username && !isAdmin {
		return nil, common.ErrorForbidden
	}
	if permissions != nil && !isAdmin {
		return nil, common.ErrorForbidden
	}

	var updated *models.User
	err := dbx.WithLimitedTx(ctx, s.repomanager.Limiter(), s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.UsersInTx(tx)

		user, err := repo.GetUserByLoginForUpdate(ctx, username)
		if err != nil {
			return err
		}

		if displayName != nil {
			user.DisplayName = *displayName
		}
		if permissions != nil {
			user.Permissions = permissions
		}

		if err := repo.UpdateProfile(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if permissions != nil {
		s.logger.Info(ctx, "permissions changed", "actor", actor.UserName, "user", updated.UserName, "permissions", updated.Permissions)
	}
	return viewOf(actor, updated), nil
}

func (s *UserService) generateTokenPair(subject string) (*TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	refresh, err := s.tokens.IssueRefreshToken(subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func viewOf(viewer, user *models.User) *UserView {
	v := &UserView{ID: user.ID, UserName: user.UserName, DisplayName: user.DisplayName}
	if viewer != nil && (viewer.ID == user.ID || auth.IsAdmin(viewer)) {
		v.Permissions = user.Permissions
		if v.Permissions == nil {
			v.Permissions = []string{}
		}
	}
	return v
}
