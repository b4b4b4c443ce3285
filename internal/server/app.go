// Package server wires configuration, storage, services and transports into
// a runnable judge server and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/judgeserver/internal/dbx"
	"github.com/dmitrijs2005/judgeserver/internal/logging"
	"github.com/dmitrijs2005/judgeserver/internal/server/auth"
	"github.com/dmitrijs2005/judgeserver/internal/server/config"
	"github.com/dmitrijs2005/judgeserver/internal/server/httpserver"
	"github.com/dmitrijs2005/judgeserver/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/judgeserver/internal/server/services"

	gs "github.com/dmitrijs2005/judgeserver/internal/server/grpc"
)

// ErrMissingSecretKey is returned by NewApp when no signing key is configured.
var ErrMissingSecretKey = errors.New("secret key is not configured")

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	httpServer  *httpserver.HTTPServer
	grpcServer  *gs.GRPCServer
}

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

func NewApp(c *config.Config, logOutput io.Writer) (*App, error) {
	if c.SecretKey == "" {
		return nil, ErrMissingSecretKey
	}

	logger, err := logging.NewJSONLogger(logOutput, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	limiter := dbx.NewLimiter(c.MaxConcurrentStoreCalls)
	rm := repomanager.NewPostgresRepositoryManager(limiter)

	tokens := auth.NewTokenIssuer([]byte(c.SecretKey))
	sessions := auth.NewSessionResolver(tokens, rm.Users(db), logger)

	us := services.NewUserService(db, rm, tokens, logger)
	ps := services.NewProblemService(db, rm, logger)
	ss := services.NewSubmissionService(db, rm, logger)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		httpServer:  httpserver.NewHTTPServer(c.EndpointAddrHTTP, logger, sessions, us, ps, ss, c.ShutdownTimeout),
		grpcServer:  gs.NewGRPCServer(c.EndpointAddrGRPC, logger, sessions),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runServer runs one transport; a failure stops the whole app and is
// returned.
func (app *App) runServer(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) error {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped with error", "server", name, "error", err.Error())
		cancelFunc()
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}

// Run applies migrations and serves HTTP and gRPC until ctx is cancelled,
// a signal arrives or one of the servers fails. The first server failure is
// returned.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	serve := func(name string, run func(context.Context) error) {
		defer wg.Done()
		if err := app.runServer(ctx, cancelFunc, name, run); err != nil {
			once.Do(func() { firstErr = err })
		}
	}

	wg.Add(2)
	go serve("http", app.httpServer.Run)
	go serve("grpc", app.grpcServer.Run)

	wg.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return firstErr
}
