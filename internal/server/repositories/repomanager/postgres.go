// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/judgeserver/internal/dbx"
	"github.com/dmitrijs2005/judgeserver/internal/server/migrations"
	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/problems"
	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/submissions"
	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct {
	limiter *dbx.Limiter
}

// Users returns a users.Repository bound to the provided DBTX. When the
// manager has a limiter, calls are admitted through it.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	repo := users.NewPostgresRepository(db)
	if m.limiter == nil {
		return repo
	}
	return users.NewBoundedRepository(repo, m.limiter)
}

func (m *PostgresRepositoryManager) UsersInTx(tx dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(tx)
}

// Limiter returns the limiter bounding user storage calls, or nil.
func (m *PostgresRepositoryManager) Limiter() *dbx.Limiter {
	return m.limiter
}

// Problems returns a problems.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Problems(db dbx.DBTX) problems.Repository {
	return problems.NewPostgresRepository(db)
}

// Submissions returns a submissions.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Submissions(db dbx.DBTX) submissions.Repository {
	return submissions.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
// limiter may be nil, in which case user storage calls are not bounded.
func NewPostgresRepositoryManager(limiter *dbx.Limiter) RepositoryManager {
	return &PostgresRepositoryManager{limiter: limiter}
}
