// Package httpserver exposes the judge API over HTTP/JSON using fiber.
package httpserver

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/dmitrijs2005/judgeserver/internal/logging"
	"github.com/dmitrijs2005/judgeserver/internal/server/auth"
	"github.com/dmitrijs2005/judgeserver/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// SessionResolver authenticates an access token and checks an optional
// capability.
type SessionResolver interface {
	Resolve(ctx context.Context, accessToken string, requiredPermission string) (*auth.Session, error)
}

type HTTPServer struct {
	address         string
	app             *fiber.App
	logger          logging.Logger
	sessions        SessionResolver
	users           *services.UserService
	problems        *services.ProblemService
	submissions     *services.SubmissionService
	shutdownTimeout time.Duration
}

func NewHTTPServer(a string, l logging.Logger, sr SessionResolver, us *services.UserService,
	ps *services.ProblemService, ss *services.SubmissionService, shutdownTimeout time.Duration) *HTTPServer {
	if l == nil {
		l = logging.Nop{}
	}
	s := &HTTPServer{
		address:         a,
		logger:          l.With("module", "http_server"),
		sessions:        sr,
		users:           us,
		problems:        ps,
		submissions:     ss,
		shutdownTimeout: shutdownTimeout,
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	s.app.Use(s.accessLog)
	s.routes()

	return s
}

func (s *HTTPServer) routes() {
	s.app.Post("/auth/register", s.register)
	s.app.Get("/auth/login", s.login)
	s.app.Post("/auth/login", s.login)
	s.app.Get("/auth/refresh", s.refresh)
	s.app.Post("/auth/refresh", s.refresh)

	s.app.Get("/users", s.listUsers)
	s.app.Get("/user/:username", s.getUser)
	s.app.Put("/user/:username", s.editUser)
	s.app.Get("/admin/users", s.adminListUsers)
	s.app.Get("/admin/submissions", s.adminListSubmissions)

	s.app.Get("/problems", s.listProblems)
	s.app.Get("/problem/:slug", s.getProblem)
	s.app.Delete("/problem/:slug", s.deleteProblem)
	s.app.Post("/problem", s.createProblem)

	s.app.Post("/submit", s.submit)
	s.app.Get("/submission/:id", s.getSubmission)
}

// App exposes the underlying fiber application, mainly for app.Test.
func (s *HTTPServer) App() *fiber.App {
	return s.app
}

// accessLog writes one line per request. Errors are rendered here so the
// logged status is the one the client sees.
func (s *HTTPServer) accessLog(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := s.errorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	rid, _ := c.Locals("requestid").(string)
	s.logger.Info(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency", time.Since(start).String(),
		"request_id", rid,
	)
	return nil
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down within the configured timeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", ln.Addr().String())
		errCh <- s.app.Listener(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	if err := s.app.ShutdownWithTimeout(s.shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	// covers a cancel that lands before the listener is being served
	_ = ln.Close()

	if err := <-errCh; err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
