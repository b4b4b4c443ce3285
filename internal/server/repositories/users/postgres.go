package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/judgeserver/internal/common"
	"github.com/dmitrijs2005/judgeserver/internal/dbx"
	"github.com/dmitrijs2005/judgeserver/internal/server/models"
	"github.com/jackc/pgx/v5/pgtype"
)

const selectUserColumns = `SELECT id, username, display_name, password_hash, password_salt, permissions, created_at
		 FROM users`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.UserName, &user.DisplayName, &user.PasswordHash,
		&user.PasswordSalt, pgtype.NewMap().SQLScanner(&user.Permissions), &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, display_name, password_hash, password_salt, permissions)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	permissions := user.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	err := r.db.QueryRowContext(ctx, query,
		user.UserName, user.DisplayName, user.PasswordHash, user.PasswordSalt, permissions).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	return r.getUser(ctx, selectUserColumns+`
		 WHERE username = $1
		 `, userName)
}

func (r *PostgresRepository) GetUserByLoginForUpdate(ctx context.Context, userName string) (*models.User, error) {
	return r.getUser(ctx, selectUserColumns+`
		 WHERE username = $1
		 FOR UPDATE
		 `, userName)
}

func (r *PostgresRepository) getUser(ctx context.Context, query string, userName string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, userName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUserColumns+`
		 ORDER BY id
		 `)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users SET display_name = $1, permissions = $2
		 WHERE id = $3
		 `

	permissions := user.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	res, err := r.db.ExecContext(ctx, query, user.DisplayName, permissions, user.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
