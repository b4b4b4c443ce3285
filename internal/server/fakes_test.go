package server

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/repomanager"
)

// noMigrations replaces RunMigrations and keeps the real repositories.
type noMigrations struct {
	repomanager.RepositoryManager
	err error
}

func (n noMigrations) RunMigrations(context.Context, *sql.DB) error { return n.err }
