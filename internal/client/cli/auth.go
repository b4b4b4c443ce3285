package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/judgeserver/internal/client/api"
	"github.com/dmitrijs2005/judgeserver/internal/client/session"
	"github.com/dmitrijs2005/judgeserver/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, an optional display name and a password
// and creates the account. The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	displayName, err := getSimpleText(a.reader, "Enter display name (empty to use username)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Register(ctx, userName, displayName, string(password)); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login authenticates and saves the token pair for later commands.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	pair, err := a.api.Login(ctx, userName, string(password))
	if err != nil {
		return err
	}

	if err := a.store.Save(&session.Tokens{
		UserName:     userName,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", userName)
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	t, err := a.store.Load()
	if err != nil {
		return err
	}
	if _, err := a.refresh(ctx, t); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Access token renewed")
	return nil
}

func (a *App) refresh(ctx context.Context, t *session.Tokens) (*session.Tokens, error) {
	pair, err := a.api.Refresh(ctx, t.RefreshToken)
	if err != nil {
		return nil, err
	}
	t.AccessToken = pair.AccessToken
	if pair.RefreshToken != "" {
		t.RefreshToken = pair.RefreshToken
	}
	if err := a.store.Save(t); err != nil {
		return nil, fmt.Errorf("save tokens: %w", err)
	}
	return t, nil
}

// WhoAmI prints the profile of the saved user. An expired access token is
// renewed once with the refresh token.
func (a *App) WhoAmI(ctx context.Context) error {
	t, err := a.store.Load()
	if err != nil {
		return err
	}

	u, err := a.api.GetUser(ctx, t.UserName, t.AccessToken)
	if errors.Is(err, api.ErrUnauthorized) {
		if t, err = a.refresh(ctx, t); err != nil {
			return err
		}
		u, err = a.api.GetUser(ctx, t.UserName, t.AccessToken)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "id:           %d\n", u.ID)
	fmt.Fprintf(a.out, "username:     %s\n", u.UserName)
	fmt.Fprintf(a.out, "display name: %s\n", u.DisplayName)
	if u.Permissions != nil {
		fmt.Fprintf(a.out, "permissions:  %s\n", strings.Join(*u.Permissions, ", "))
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
