package httpserver

import (
	"time"

	"github.com/dmitrijs2005/judgeserver/internal/server/models"
	"github.com/dmitrijs2005/judgeserver/internal/server/services"
)

type tokenPairView struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type userView struct {
	ID          int64     `json:"id"`
	UserName    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Permissions *[]string `json:"permissions,omitempty"`
}

type problemView struct {
	ID          int64   `json:"id"`
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	TimeLimit   float64 `json:"time_limit"`
	MemoryLimit int64   `json:"memory_limit"`
}

type submissionView struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	ProblemID  int64     `json:"problem_id"`
	Language   string    `json:"language"`
	SourceCode string    `json:"source_code"`
	CreatedAt  time.Time `json:"created_at"`

	UserName    string `json:"username,omitempty"`
	ProblemSlug string `json:"problem_slug,omitempty"`
}

func toTokenPairView(p *services.TokenPair) tokenPairView {
	return tokenPairView{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

// Permissions is present in the output only when the viewer may see them.
func toUserView(u *services.UserView) userView {
	v := userView{ID: u.ID, UserName: u.UserName, DisplayName: u.DisplayName}
	if u.Permissions != nil {
		perms := u.Permissions
		v.Permissions = &perms
	}
	return v
}

func toUserViews(list []*services.UserView) []userView {
	out := make([]userView, 0, len(list))
	for _, u := range list {
		out = append(out, toUserView(u))
	}
	return out
}

func toProblemView(p *models.Problem) problemView {
	return problemView{ID: p.ID, Slug: p.Slug, Title: p.Title, TimeLimit: p.TimeLimit, MemoryLimit: p.MemoryLimit}
}

func toSubmissionView(s *models.Submission) submissionView {
	return submissionView{
		ID:         s.ID,
		UserID:     s.UserID,
		ProblemID:  s.ProblemID,
		Language:   s.Language,
		SourceCode: s.SourceCode,
		CreatedAt:  s.CreatedAt,

		UserName:    s.UserName,
		ProblemSlug: s.ProblemSlug,
	}
}
