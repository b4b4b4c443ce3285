package submissions

import (
	"context"

	"github.com/dmitrijs2005/judgeserver/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, submission *models.Submission) (*models.Submission, error)
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	// ListRecent returns at most limit submissions, newest first, with
	// UserName and ProblemSlug filled in.
	ListRecent(ctx context.Context, limit int) ([]*models.Submission, error)
}
