package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/judgeserver/internal/common"
	"github.com/dmitrijs2005/judgeserver/internal/dbx"
	"github.com/dmitrijs2005/judgeserver/internal/server/auth"
	"github.com/dmitrijs2005/judgeserver/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T, rm *fakeRepoManager) (*UserService, *auth.TokenIssuer) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	issuer := auth.NewTokenIssuer([]byte("test-secret"))
	return NewUserService(db, rm, issuer, nil), issuer
}

func registered(t *testing.T, s *UserService, name, password string) *models.User {
	t.Helper()
	u, err := s.Register(context.Background(), name, name+" display", password)
	require.NoError(t, err)
	return u
}

func TestRegister_StoresHashedCredentials(t *testing.T) {
	rm := newFakeRepoManager()
	s, _ := newUserService(t, rm)

	u := registered(t, s, "alice", "pw1")

	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "alice display", u.DisplayName)
	assert.Len(t, u.PasswordSalt, 2*auth.CredentialLen)
	assert.Len(t, u.PasswordHash, 2*auth.CredentialLen)
	assert.NotContains(t, u.PasswordHash, "pw1")
	assert.Empty(t, u.Permissions)
	assert.True(t, auth.VerifyCredentials(u.PasswordSalt, u.PasswordHash, "pw1"))
}

func TestRegister_Duplicate(t *testing.T) {
	rm := newFakeRepoManager()
	s, _ := newUserService(t, rm)
	registered(t, s, "alice", "pw1")

	_, err := s.Register(context.Background(), "alice", "again", "pw2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error creating user")
}

func TestLogin(t *testing.T) {
	rm := newFakeRepoManager()
	s, issuer := newUserService(t, rm)
	registered(t, s, "alice", "pw1")

	t.Run("success", func(t *testing.T) {
		pair, err := s.Login(context.Background(), "alice", "pw1")
		require.NoError(t, err)

		access, err := issuer.Decode(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "alice", access.Subject)
		assert.False(t, access.Refresh)

		refresh, err := issuer.Decode(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "alice", refresh.Subject)
		assert.True(t, refresh.Refresh)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.Login(context.Background(), "alice", "nope")
		assert.ErrorIs(t, err, common.ErrCredentialMismatch)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.Login(context.Background(), "ghost", "pw1")
		assert.ErrorIs(t, err, common.ErrCredentialMismatch)
	})

	t.Run("storage failure", func(t *testing.T) {
		rm.u.getErr = errBoom
		defer func() { rm.u.getErr = nil }()

		_, err := s.Login(context.Background(), "alice", "pw1")
		assert.ErrorIs(t, err, common.ErrorInternal)
		assert.NotErrorIs(t, err, common.ErrCredentialMismatch)
	})
}

func TestRefresh(t *testing.T) {
	rm := newFakeRepoManager()
	s, issuer := newUserService(t, rm)
	registered(t, s, "alice", "pw1")

	pair, err := s.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)

	t.Run("refresh token", func(t *testing.T) {
		got, err := s.Refresh(context.Background(), pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, pair.RefreshToken, got.RefreshToken)

		claims, err := issuer.Decode(got.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
		assert.False(t, claims.Refresh)
	})

	t.Run("access token", func(t *testing.T) {
		_, err := s.Refresh(context.Background(), pair.AccessToken)
		assert.ErrorIs(t, err, common.ErrNotRefreshToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Refresh(context.Background(), "not-a-token")
		assert.ErrorIs(t, err, common.ErrInvalidRefreshToken)
	})

	t.Run("expired", func(t *testing.T) {
		old, err := issuer.Encode("alice", -time.Second, true)
		require.NoError(t, err)
		_, err = s.Refresh(context.Background(), old)
		assert.ErrorIs(t, err, common.ErrInvalidRefreshToken)
	})

	t.Run("foreign key", func(t *testing.T) {
		tok, err := auth.NewTokenIssuer([]byte("other")).IssueRefreshToken("alice")
		require.NoError(t, err)
		_, err = s.Refresh(context.Background(), tok)
		assert.ErrorIs(t, err, common.ErrInvalidRefreshToken)
	})
}

func TestListUsers_PermissionVisibility(t *testing.T) {
	rm := newFakeRepoManager()
	rm.u = newFakeUsersRepo(
		&models.User{ID: 1, UserName: "root", Permissions: []string{"admin"}},
		&models.User{ID: 2, UserName: "bob", Permissions: []string{"judge"}},
	)
	s, _ := newUserService(t, rm)
	root, _ := rm.u.GetUserByLogin(context.Background(), "root")
	bob, _ := rm.u.GetUserByLogin(context.Background(), "bob")

	anon, err := s.ListUsers(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, anon, 2)
	assert.Nil(t, anon[0].Permissions)
	assert.Nil(t, anon[1].Permissions)

	asAdmin, err := s.ListUsers(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, asAdmin[0].Permissions)
	assert.Equal(t, []string{"judge"}, asAdmin[1].Permissions)

	asBob, err := s.ListUsers(context.Background(), bob)
	require.NoError(t, err)
	assert.Nil(t, asBob[0].Permissions)
	assert.Equal(t, []string{"judge"}, asBob[1].Permissions)

	rm.u.listErr = errBoom
	_, err = s.ListUsers(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestGetUser(t *testing.T) {
	rm := newFakeRepoManager()
	rm.u = newFakeUsersRepo(&models.User{ID: 2, UserName: "bob", DisplayName: "Bob", Permissions: []string{"judge"}})
	s, _ := newUserService(t, rm)

	v, err := s.GetUser(context.Background(), nil, "bob")
	require.NoError(t, err)
	assert.Equal(t, &UserView{ID: 2, UserName: "bob", DisplayName: "Bob"}, v)

	_, err = s.GetUser(context.Background(), nil, "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestEditUser(t *testing.T) {
	newFixture := func(t *testing.T) (*UserService, *fakeRepoManager, *models.User, *models.User) {
		rm := newFakeRepoManager()
		rm.u = newFakeUsersRepo(
			&models.User{ID: 1, UserName: "root", DisplayName: "Root", Permissions: []string{"admin"}},
			&models.User{ID: 2, UserName: "bob", DisplayName: "Bob", Permissions: []string{}},
		)
		db, mock := newSQLMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()
		s := NewUserService(db, rm, auth.NewTokenIssuer([]byte("k")), nil)
		root, _ := rm.u.GetUserByLogin(context.Background(), "root")
		bob, _ := rm.u.GetUserByLogin(context.Background(), "bob")
		return s, rm, root, bob
	}
	name := func(s string) *string { return &s }

	t.Run("self display name", func(t *testing.T) {
		s, rm, _, bob := newFixture(t)
		v, err := s.EditUser(context.Background(), bob, "bob", name("Bobby"), nil)
		require.NoError(t, err)
		assert.Equal(t, "Bobby", v.DisplayName)
		assert.Equal(t, []string{"bob"}, rm.u.locked)
	})

	t.Run("non-admin cannot grant", func(t *testing.T) {
		s, rm, _, bob := newFixture(t)
		_, err := s.EditUser(context.Background(), bob, "bob", nil, []string{"admin"})
		assert.ErrorIs(t, err, common.ErrorForbidden)
		assert.Empty(t, rm.u.byName["bob"].Permissions)
	})

	t.Run("non-admin cannot edit others", func(t *testing.T) {
		s, _, _, bob := newFixture(t)
		_, err := s.EditUser(context.Background(), bob, "root", name("x"), nil)
		assert.ErrorIs(t, err, common.ErrorForbidden)
	})

	t.Run("admin grants", func(t *testing.T) {
		s, rm, root, _ := newFixture(t)
		v, err := s.EditUser(context.Background(), root, "bob", nil, []string{"judge"})
		require.NoError(t, err)
		assert.Equal(t, []string{"judge"}, v.Permissions)
		assert.Equal(t, []string{"judge"}, rm.u.byName["bob"].Permissions)
	})

	t.Run("missing user", func(t *testing.T) {
		s, _, root, _ := newFixture(t)
		_, err := s.EditUser(context.Background(), root, "ghost", name("x"), nil)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("update failure", func(t *testing.T) {
		s, rm, root, _ := newFixture(t)
		rm.u.updateErr = errBoom
		_, err := s.EditUser(context.Background(), root, "bob", name("x"), nil)
		assert.ErrorIs(t, err, common.ErrorInternal)
	})

	t.Run("anonymous", func(t *testing.T) {
		s, _, _, _ := newFixture(t)
		_, err := s.EditUser(context.Background(), nil, "bob", name("x"), nil)
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})
}

// rowLockedUsers behaves like SELECT ... FOR UPDATE: the lock taken by
// GetUserByLoginForUpdate is held until UpdateProfile.
type rowLockedUsers struct {
	*fakeUsersRepo
	lock chan struct{}
}

func (r *rowLockedUsers) GetUserByLoginForUpdate(ctx context.Context, name string) (*models.User, error) {
	select {
	case r.lock <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return r.fakeUsersRepo.GetUserByLoginForUpdate(ctx, name)
}

func (r *rowLockedUsers) UpdateProfile(ctx context.Context, u *models.User) error {
	defer func() { <-r.lock }()
	return r.fakeUsersRepo.UpdateProfile(ctx, u)
}

func TestEditUser_ConcurrentEditsShareOneSlot(t *testing.T) {
	rm := newFakeRepoManager()
	rm.u = newFakeUsersRepo(&models.User{ID: 2, UserName: "bob", DisplayName: "Bob", Permissions: []string{}})
	rm.limiter = dbx.NewLimiter(1)
	rm.txUsers = &rowLockedUsers{fakeUsersRepo: rm.u, lock: make(chan struct{}, 1)}

	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()
	s := NewUserService(db, rm, auth.NewTokenIssuer([]byte("k")), nil)
	bob, err := rm.u.GetUserByLogin(context.Background(), "bob")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	names := []string{"Bobby", "Robert"}
	errs := make([]error, len(names))
	var wg sync.WaitGroup
	for i, n := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.EditUser(ctx, bob, "bob", &n, nil)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Len(t, rm.u.locked, 2)
	assert.Contains(t, names, rm.u.byName["bob"].DisplayName)
	require.NoError(t, mock.ExpectationsWereMet())

	// the slot is free again for regular reads
	_, err = s.GetUser(ctx, bob, "bob")
	require.NoError(t, err)
}
