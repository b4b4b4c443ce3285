package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/judgeserver/internal/common"
	"github.com/dmitrijs2005/judgeserver/internal/logging"
	"github.com/dmitrijs2005/judgeserver/internal/server/auth"
	"github.com/dmitrijs2005/judgeserver/internal/server/models"
	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/repomanager"
)

// DefaultSubmissionListLimit caps List when the caller gives no limit.
const DefaultSubmissionListLimit = 1000

// SubmissionService accepts solutions and lets their owners (and admins and
// judges) read them back. Judging is done by an external worker.
type SubmissionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewSubmissionService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *SubmissionService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &SubmissionService{db: db, repomanager: m, logger: logger.With("module", "submission_service")}
}

// Submit stores source for the problem identified by problemSlug.
// An unknown slug is common.ErrProblemNotFound.
func (s *SubmissionService) Submit(ctx context.Context, user *models.User, problemSlug, language, source string) (*models.Submission, error) {
	if user == nil {
		return nil, common.ErrorUnauthorized
	}
	if language == "" {
		return nil, common.ErrorValidation
	}

	problem, err := s.repomanager.Problems(s.db).GetBySlug(ctx, problemSlug)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrProblemNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	sub, err := s.repomanager.Submissions(s.db).Create(ctx, &models.Submission{
		UserID:     user.ID,
		ProblemID:  problem.ID,
		Language:   language,
		SourceCode: source,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "submission accepted", "id", sub.ID, "user", user.UserName, "problem", problem.Slug)
	return sub, nil
}

// Get returns submission id if viewer owns it, is an admin or holds the
// judge capability.
func (s *SubmissionService) Get(ctx context.Context, viewer *models.User, id int64) (*models.Submission, error) {
	if viewer == nil {
		return nil, common.ErrorUnauthorized
	}

	sub, err := s.repomanager.Submissions(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if sub.UserID != viewer.ID && !auth.IsAdmin(viewer) && !auth.HasPermission(viewer, auth.PermissionJudge) {
		return nil, common.ErrorForbidden
	}
	return sub, nil
}

// List returns the most recent submissions across all users. Admin only.
// A non-positive limit means DefaultSubmissionListLimit.
func (s *SubmissionService) List(ctx context.Context, viewer *models.User, limit int) ([]*models.Submission, error) {
	if viewer == nil {
		return nil, common.ErrorUnauthorized
	}
	if !auth.IsAdmin(viewer) {
		return nil, common.ErrorForbidden
	}
	if limit <= 0 {
		limit = DefaultSubmissionListLimit
	}

	list, err := s.repomanager.Submissions(s.db).ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if list == nil {
		list = []*models.Submission{}
	}
	return list, nil
}
