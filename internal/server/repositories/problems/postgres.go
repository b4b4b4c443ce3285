// Package problems provides PostgreSQL-backed storage for problem metadata.
package problems

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/judgeserver/internal/common"
	"github.com/dmitrijs2005/judgeserver/internal/dbx"
	"github.com/dmitrijs2005/judgeserver/internal/server/models"
)

// PostgresRepository implements problem storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts problem and sets its ID. A duplicate slug surfaces as a
// wrapped driver error.
func (r *PostgresRepository) Create(ctx context.Context, problem *models.Problem) (*models.Problem, error) {
	query := `
		INSERT INTO problems (slug, title, time_limit, memory_limit)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		problem.Slug, problem.Title, problem.TimeLimit, problem.MemoryLimit).Scan(&problem.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return problem, nil
}

// GetBySlug returns common.ErrorNotFound when no problem has the slug.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*models.Problem, error) {
	query := `
		SELECT id, slug, title, time_limit, memory_limit FROM problems
		WHERE slug = $1
	`
	var p models.Problem
	err := r.db.QueryRowContext(ctx, query, slug).
		Scan(&p.ID, &p.Slug, &p.Title, &p.TimeLimit, &p.MemoryLimit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &p, nil
}

// List returns all problems ordered by ID.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Problem, error) {
	query := `
		SELECT id, slug, title, time_limit, memory_limit FROM problems
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select problems: %w", err)
	}
	defer rows.Close()

	var result []*models.Problem
	for rows.Next() {
		var item models.Problem
		if err := rows.Scan(&item.ID, &item.Slug, &item.Title, &item.TimeLimit, &item.MemoryLimit); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteBySlug removes the problem together with its submissions (cascade).
func (r *PostgresRepository) DeleteBySlug(ctx context.Context, slug string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM problems WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
