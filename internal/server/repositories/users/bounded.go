package users

import (
	"context"

	"github.com/dmitrijs2005/judgeserver/internal/dbx"
	"github.com/dmitrijs2005/judgeserver/internal/server/models"
)

// BoundedRepository runs every call of the wrapped Repository through a
// dbx.Limiter, so slow storage cannot pile up unbounded goroutines in the
// request layer. It adds no retries.
type BoundedRepository struct {
	next    Repository
	limiter *dbx.Limiter
}

func NewBoundedRepository(next Repository, limiter *dbx.Limiter) *BoundedRepository {
	return &BoundedRepository{next: next, limiter: limiter}
}

func (r *BoundedRepository) Create(ctx context.Context, user *models.User) (out *models.User, err error) {
	err = r.limiter.Do(ctx, func(ctx context.Context) error {
		out, err = r.next.Create(ctx, user)
		return err
	})
	return out, err
}

func (r *BoundedRepository) GetUserByLogin(ctx context.Context, userName string) (out *models.User, err error) {
	err = r.limiter.Do(ctx, func(ctx context.Context) error {
		out, err = r.next.GetUserByLogin(ctx, userName)
		return err
	})
	return out, err
}

func (r *BoundedRepository) GetUserByLoginForUpdate(ctx context.Context, userName string) (out *models.User, err error) {
	err = r.limiter.Do(ctx, func(ctx context.Context) error {
		out, err = r.next.GetUserByLoginForUpdate(ctx, userName)
		return err
	})
	return out, err
}

func (r *BoundedRepository) List(ctx context.Context) (out []*models.User, err error) {
	err = r.limiter.Do(ctx, func(ctx context.Context) error {
		out, err = r.next.List(ctx)
		return err
	})
	return out, err
}

func (r *BoundedRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	return r.limiter.Do(ctx, func(ctx context.Context) error {
		return r.next.UpdateProfile(ctx, user)
	})
}
