package httpserver

import (
	"context"
	"database/sql"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/judgeserver/internal/common"
	"github.com/dmitrijs2005/judgeserver/internal/dbx"
	"github.com/dmitrijs2005/judgeserver/internal/server/auth"
	"github.com/dmitrijs2005/judgeserver/internal/server/models"
	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/problems"
	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/submissions"
	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/users"
	"github.com/dmitrijs2005/judgeserver/internal/server/services"
)

// memStore is an in-memory stand-in for the three repositories.
type memStore struct {
	mu          sync.Mutex
	users       []*models.User
	problems    []*models.Problem
	submissions []*models.Submission
	failUsers   error
}

func (m *memStore) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *memStore) Users(db dbx.DBTX) users.Repository             { return memUsers{m} }
func (m *memStore) UsersInTx(tx dbx.DBTX) users.Repository          { return memUsers{m} }
func (m *memStore) Limiter() *dbx.Limiter                            { return nil }
func (m *memStore) Problems(db dbx.DBTX) problems.Repository       { return memProblems{m} }
func (m *memStore) Submissions(db dbx.DBTX) submissions.Repository { return memSubmissions{m} }

type memUsers struct{ m *memStore }

func (r memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, x := range r.m.users {
		if x.UserName == u.UserName {
			return nil, sql.ErrConnDone
		}
	}
	u.ID = int64(len(r.m.users) + 1)
	u.CreatedAt = time.Now()
	cp := *u
	r.m.users = append(r.m.users, &cp)
	return u, nil
}

func (r memUsers) GetUserByLogin(ctx context.Context, name string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failUsers != nil {
		return nil, r.m.failUsers
	}
	for _, x := range r.m.users {
		if x.UserName == name {
			cp := *x
			cp.Permissions = slices.Clone(x.Permissions)
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetUserByLoginForUpdate(ctx context.Context, name string) (*models.User, error) {
	return r.GetUserByLogin(ctx, name)
}

func (r memUsers) List(ctx context.Context) ([]*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.User, 0, len(r.m.users))
	for _, x := range r.m.users {
		cp := *x
		out = append(out, &cp)
	}
	return out, nil
}

func (r memUsers) UpdateProfile(ctx context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, x := range r.m.users {
		if x.ID == u.ID {
			cp := *u
			r.m.users[i] = &cp
			return nil
		}
	}
	return common.ErrorNotFound
}

type memProblems struct{ m *memStore }

func (r memProblems) Create(ctx context.Context, p *models.Problem) (*models.Problem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p.ID = int64(len(r.m.problems) + 1)
	r.m.problems = append(r.m.problems, p)
	return p, nil
}

func (r memProblems) GetBySlug(ctx context.Context, slug string) (*models.Problem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, p := range r.m.problems {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memProblems) List(ctx context.Context) ([]*models.Problem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return slices.Clone(r.m.problems), nil
}

func (r memProblems) DeleteBySlug(ctx context.Context, slug string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, p := range r.m.problems {
		if p.Slug == slug {
			r.m.problems = slices.Delete(r.m.problems, i, i+1)
			return nil
		}
	}
	return common.ErrorNotFound
}

type memSubmissions struct{ m *memStore }

func (r memSubmissions) Create(ctx context.Context, s *models.Submission) (*models.Submission, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s.ID = int64(len(r.m.submissions) + 1)
	s.CreatedAt = time.Now()
	r.m.submissions = append(r.m.submissions, s)
	return s, nil
}

func (r memSubmissions) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.submissions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memSubmissions) ListRecent(ctx context.Context, limit int) ([]*models.Submission, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Submission, 0)
	for i := len(r.m.submissions) - 1; i >= 0 && len(out) < limit; i-- {
		s := *r.m.submissions[i]
		for _, u := range r.m.users {
			if u.ID == s.UserID {
				s.UserName = u.UserName
			}
		}
		for _, p := range r.m.problems {
			if p.ID == s.ProblemID {
				s.ProblemSlug = p.Slug
			}
		}
		out = append(out, &s)
	}
	return out, nil
}

type testEnv struct {
	server *HTTPServer
	store  *memStore
	tokens *auth.TokenIssuer
	mock   sqlmock.Sqlmock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := &memStore{}
	tokens := auth.NewTokenIssuer([]byte("http-test-secret"))
	resolver := auth.NewSessionResolver(tokens, store.Users(db), nil)

	srv := NewHTTPServer(":0", nil, resolver,
		services.NewUserService(db, store, tokens, nil),
		services.NewProblemService(db, store, nil),
		services.NewSubmissionService(db, store, nil),
		time.Second,
	)
	return &testEnv{server: srv, store: store, tokens: tokens, mock: mock}
}

// grant sets the permissions of an existing user directly in the store.
func (e *testEnv) grant(t *testing.T, username string, permissions ...string) {
	t.Helper()
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	for _, u := range e.store.users {
		if u.UserName == username {
			u.Permissions = permissions
			return
		}
	}
	t.Fatalf("no user %q", username)
}
