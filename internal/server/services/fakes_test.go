package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/judgeserver/internal/common"
	"github.com/dmitrijs2005/judgeserver/internal/dbx"
	"github.com/dmitrijs2005/judgeserver/internal/server/models"
	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/problems"
	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/submissions"
	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/users"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// fakeUsersRepo keeps users in a map keyed by username.
type fakeUsersRepo struct {
	byName    map[string]*models.User
	nextID    int64
	createErr error
	getErr    error
	listErr   error
	updateErr error
	locked    []string
}

func newFakeUsersRepo(list ...*models.User) *fakeUsersRepo {
	r := &fakeUsersRepo{byName: map[string]*models.User{}}
	for _, u := range list {
		r.byName[u.UserName] = u
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byName[u.UserName]; ok {
		return nil, errors.New("db error: duplicate key")
	}
	f.nextID++
	u.ID = f.nextID
	f.byName[u.UserName] = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, name string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetUserByLoginForUpdate(ctx context.Context, name string) (*models.User, error) {
	f.locked = append(f.locked, name)
	return f.GetUserByLogin(ctx, name)
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.User
	for i := int64(1); i <= f.nextID; i++ {
		for _, u := range f.byName {
			if u.ID == i {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, u *models.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	cp := *u
	f.byName[u.UserName] = &cp
	return nil
}

type fakeProblemsRepo struct {
	bySlug    map[string]*models.Problem
	getErr    error
	createErr error
	deleteErr error
	deleted   []string
}

func (f *fakeProblemsRepo) Create(ctx context.Context, p *models.Problem) (*models.Problem, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	p.ID = int64(len(f.bySlug) + 1)
	f.bySlug[p.Slug] = p
	return p, nil
}

func (f *fakeProblemsRepo) GetBySlug(ctx context.Context, slug string) (*models.Problem, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.bySlug[slug]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (f *fakeProblemsRepo) List(ctx context.Context) ([]*models.Problem, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var out []*models.Problem
	for _, p := range f.bySlug {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProblemsRepo) DeleteBySlug(ctx context.Context, slug string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.bySlug[slug]; !ok {
		return common.ErrorNotFound
	}
	delete(f.bySlug, slug)
	f.deleted = append(f.deleted, slug)
	return nil
}

type fakeSubmissionsRepo struct {
	byID      map[int64]*models.Submission
	createErr error
	listErr   error
	lastLimit int
}

func (f *fakeSubmissionsRepo) Create(ctx context.Context, s *models.Submission) (*models.Submission, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	s.ID = int64(len(f.byID) + 1)
	f.byID[s.ID] = s
	return s, nil
}

func (f *fakeSubmissionsRepo) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (f *fakeSubmissionsRepo) ListRecent(ctx context.Context, limit int) ([]*models.Submission, error) {
	f.lastLimit = limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Submission
	for id := int64(len(f.byID)); id >= 1 && len(out) < limit; id-- {
		if s, ok := f.byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakeProblemsRepo
	s *fakeSubmissionsRepo

	// when set, Users is bounded by limiter and UsersInTx returns txUsers
	limiter *dbx.Limiter
	txUsers users.Repository
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: newFakeUsersRepo(),
		p: &fakeProblemsRepo{bySlug: map[string]*models.Problem{}},
		s: &fakeSubmissionsRepo{byID: map[int64]*models.Submission{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Limiter() *dbx.Limiter                          { return m.limiter }

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository {
	if m.limiter != nil {
		return users.NewBoundedRepository(m.u, m.limiter)
	}
	return m.u
}

func (m *fakeRepoManager) UsersInTx(tx dbx.DBTX) users.Repository {
	if m.txUsers != nil {
		return m.txUsers
	}
	return m.u
}

func (m *fakeRepoManager) Problems(db dbx.DBTX) problems.Repository       { return m.p }
func (m *fakeRepoManager) Submissions(db dbx.DBTX) submissions.Repository { return m.s }
