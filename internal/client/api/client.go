// Package api is the HTTP client for the judge server used by judgectl.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/judgeserver/internal/netx"
)

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// User is a directory entry. Permissions is nil when the caller may not see
// them.
type User struct {
	ID          int64     `json:"id"`
	UserName    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Permissions *[]string `json:"permissions"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func call[T any](ctx context.Context, c *Client, method, path string, in any) (T, error) {
	var env envelope[T]
	code, err := netx.DoJSON(ctx, c.http, method, c.baseURL+path, in, &env)
	if err != nil {
		if code == 0 {
			return env.Data, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return env.Data, err
	}
	if code/100 != 2 || !env.Success {
		return env.Data, &Error{Status: code, Message: env.Message}
	}
	return env.Data, nil
}

func (c *Client) Register(ctx context.Context, username, displayName, password string) error {
	_, err := call[any](ctx, c, http.MethodPost, "/auth/register", map[string]string{
		"username":     username,
		"display_name": displayName,
		"password":     password,
	})
	return err
}

func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	pair, err := call[TokenPair](ctx, c, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	pair, err := call[TokenPair](ctx, c, http.MethodPost, "/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *Client) GetUser(ctx context.Context, username, accessToken string) (*User, error) {
	path := "/user/" + url.PathEscape(username) + "?access_token=" + url.QueryEscape(accessToken)
	u, err := call[User](ctx, c, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
