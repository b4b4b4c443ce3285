package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/judgeserver/internal/dbx"
	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/problems"
	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/submissions"
	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	// UsersInTx returns an unbounded repository for a transaction that
	// already holds a Limiter slot (see dbx.WithLimitedTx).
	UsersInTx(tx dbx.DBTX) users.Repository
	Limiter() *dbx.Limiter
	Problems(db dbx.DBTX) problems.Repository
	Submissions(db dbx.DBTX) submissions.Repository
}
