package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/judgeserver/internal/client/api"
	"github.com/dmitrijs2005/judgeserver/internal/client/config"
	"github.com/dmitrijs2005/judgeserver/internal/client/session"
)

var ErrUnknownCommand = errors.New("unknown command")

// API is the subset of the server API used by the commands.
type API interface {
	Register(ctx context.Context, username, displayName, password string) error
	Login(ctx context.Context, username, password string) (*api.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenPair, error)
	GetUser(ctx context.Context, username, accessToken string) (*api.User, error)
}

type App struct {
	config *config.Config
	api    API
	store  *session.Store
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		api:    api.NewClient(c.ServerAddr, c.RequestTimeout),
		store:  session.NewStore(c.DataDir),
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUnknownCommand
	}

	switch args[0] {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "refresh":
		return a.Refresh(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	case "logout":
		return a.Logout(ctx)
	case "help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, `usage: judgectl [-a addr] [-d dir] [-t seconds] <command>

commands:
  register   create an account
  login      log in and save tokens
  refresh    renew the access token
  whoami     show your profile
  logout     forget saved tokens`)
}
