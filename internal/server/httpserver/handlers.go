package httpserver

import (
	"strconv"

	"github.com/dmitrijs2005/judgeserver/internal/common"
	"github.com/dmitrijs2005/judgeserver/internal/server/auth"
	"github.com/dmitrijs2005/judgeserver/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

// session resolves the caller. An empty token is unauthorized.
func (s *HTTPServer) session(c *fiber.Ctx, token string, permission string) (*auth.Session, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}
	return s.sessions.Resolve(c.UserContext(), token, permission)
}

// optionalViewer returns nil for anonymous requests. A token that is present
// but invalid is still rejected.
func (s *HTTPServer) optionalViewer(c *fiber.Ctx, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	sess, err := s.session(c, token, "")
	if err != nil {
		return nil, err
	}
	return sess.User, nil
}

func (s *HTTPServer) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Username == "" || req.Password == "" {
		return errBadRequest
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}

	if _, err := s.users.Register(c.UserContext(), req.Username, req.DisplayName, req.Password); err != nil {
		return err
	}
	return ok(c, nil)
}

func (s *HTTPServer) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pair, err := s.users.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return ok(c, toTokenPairView(pair))
}

func (s *HTTPServer) refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pair, err := s.users.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return ok(c, toTokenPairView(pair))
}

func (s *HTTPServer) listUsers(c *fiber.Ctx) error {
	var req tokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	viewer, err := s.optionalViewer(c, accessToken(c, req.AccessToken))
	if err != nil {
		return err
	}

	list, err := s.users.ListUsers(c.UserContext(), viewer)
	if err != nil {
		return err
	}
	return ok(c, toUserViews(list))
}

func (s *HTTPServer) adminListUsers(c *fiber.Ctx) error {
	var req tokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sess, err := s.session(c, accessToken(c, req.AccessToken), auth.PermissionAdmin)
	if err != nil {
		return err
	}

	list, err := s.users.ListUsers(c.UserContext(), sess.User)
	if err != nil {
		return err
	}
	return ok(c, toUserViews(list))
}

func (s *HTTPServer) getUser(c *fiber.Ctx) error {
	var req tokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	viewer, err := s.optionalViewer(c, accessToken(c, req.AccessToken))
	if err != nil {
		return err
	}

	u, err := s.users.GetUser(c.UserContext(), viewer, c.Params("username"))
	if err != nil {
		return err
	}
	return ok(c, toUserView(u))
}

func (s *HTTPServer) editUser(c *fiber.Ctx) error {
	var req editUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sess, err := s.session(c, accessToken(c, req.AccessToken), "")
	if err != nil {
		return err
	}

	var permissions []string
	if req.Permissions != nil {
		permissions = *req.Permissions
		if permissions == nil {
			permissions = []string{}
		}
	}

	u, err := s.users.EditUser(c.UserContext(), sess.User, c.Params("username"), req.DisplayName, permissions)
	if err != nil {
		return err
	}
	return ok(c, toUserView(u))
}

func (s *HTTPServer) listProblems(c *fiber.Ctx) error {
	list, err := s.problems.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]problemView, 0, len(list))
	for _, p := range list {
		out = append(out, toProblemView(p))
	}
	return ok(c, out)
}

func (s *HTTPServer) getProblem(c *fiber.Ctx) error {
	p, err := s.problems.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return ok(c, toProblemView(p))
}

func (s *HTTPServer) createProblem(c *fiber.Ctx) error {
	var req createProblemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sess, err := s.session(c, accessToken(c, req.AccessToken), auth.PermissionAdmin)
	if err != nil {
		return err
	}

	p, err := s.problems.Create(c.UserContext(), sess.User, &models.Problem{
		Slug:        req.Slug,
		Title:       req.Title,
		TimeLimit:   req.TimeLimit,
		MemoryLimit: req.MemoryLimit,
	})
	if err != nil {
		return err
	}
	return ok(c, toProblemView(p))
}

func (s *HTTPServer) deleteProblem(c *fiber.Ctx) error {
	var req tokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sess, err := s.session(c, accessToken(c, req.AccessToken), auth.PermissionAdmin)
	if err != nil {
		return err
	}

	if err := s.problems.DeleteBySlug(c.UserContext(), sess.User, c.Params("slug")); err != nil {
		return err
	}
	return ok(c, nil)
}

func (s *HTTPServer) submit(c *fiber.Ctx) error {
	var req submitRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sess, err := s.session(c, accessToken(c, req.AccessToken), "")
	if err != nil {
		return err
	}

	sub, err := s.submissions.Submit(c.UserContext(), sess.User, req.ProblemSlug, req.Language, req.SourceCode)
	if err != nil {
		return err
	}
	return ok(c, toSubmissionView(sub))
}

func (s *HTTPServer) getSubmission(c *fiber.Ctx) error {
	var req tokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sess, err := s.session(c, accessToken(c, req.AccessToken), "")
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorNotFound
	}

	sub, err := s.submissions.Get(c.UserContext(), sess.User, id)
	if err != nil {
		return err
	}
	return ok(c, toSubmissionView(sub))
}

func (s *HTTPServer) adminListSubmissions(c *fiber.Ctx) error {
	var req listSubmissionsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sess, err := s.session(c, accessToken(c, req.AccessToken), auth.PermissionAdmin)
	if err != nil {
		return err
	}

	list, err := s.submissions.List(c.UserContext(), sess.User, req.Limit)
	if err != nil {
		return err
	}
	out := make([]submissionView, 0, len(list))
	for _, sub := range list {
		out = append(out, toSubmissionView(sub))
	}
	return ok(c, out)
}
