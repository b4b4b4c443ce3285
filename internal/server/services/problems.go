package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/judgeserver/internal/common"
	"github.com/dmitrijs2005/judgeserver/internal/logging"
	"github.com/dmitrijs2005/judgeserver/internal/server/auth"
	"github.com/dmitrijs2005/judgeserver/internal/server/models"
	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/repomanager"
)

type ProblemService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewProblemService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ProblemService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &ProblemService{db: db, repomanager: m, logger: logger.With("module", "problem_service")}
}

func (s *ProblemService) List(ctx context.Context) ([]*models.Problem, error) {
	list, err := s.repomanager.Problems(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if list == nil {
		list = []*models.Problem{}
	}
	return list, nil
}

func (s *ProblemService) GetBySlug(ctx context.Context, slug string) (*models.Problem, error) {
	p, err := s.repomanager.Problems(s.db).GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return p, nil
}

// Create stores a new problem. Only admins may call it.
func (s *ProblemService) Create(ctx context.Context, actor *models.User, p *models.Problem) (*models.Problem, error) {
	if !auth.IsAdmin(actor) {
		return nil, common.ErrorForbidden
	}
	if strings.TrimSpace(p.Slug) == "" || p.TimeLimit <= 0 || p.MemoryLimit <= 0 {
		return nil, common.ErrorValidation
	}

	created, err := s.repomanager.Problems(s.db).Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	s.logger.Info(ctx, "problem created", "slug", created.Slug, "by", actor.UserName)
	return created, nil
}

// DeleteBySlug removes a problem and its submissions. Only admins may call it.
func (s *ProblemService) DeleteBySlug(ctx context.Context, actor *models.User, slug string) error {
	if !auth.IsAdmin(actor) {
		return common.ErrorForbidden
	}

	err := s.repomanager.Problems(s.db).DeleteBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	s.logger.Info(ctx, "problem deleted", "slug", slug, "by", actor.UserName)
	return nil
}
