package httpserver

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// bind decodes the JSON body into out. GET and DELETE requests without a body
// are read from the query string instead, using the `query` struct tags.
func bind(c *fiber.Ctx, out any) error {
	body := c.Body()
	if len(body) > 0 {
		if err := c.App().Config().JSONDecoder(body, out); err != nil {
			return errBadRequest
		}
		return nil
	}

	switch c.Method() {
	case fiber.MethodGet, fiber.MethodDelete:
		if err := c.QueryParser(out); err != nil {
			return errBadRequest
		}
	}
	return nil
}

// accessToken prefers the token sent with the request fields and falls back
// to an "Authorization: Bearer" header.
func accessToken(c *fiber.Ctx, fromRequest string) string {
	if fromRequest != "" {
		return fromRequest
	}
	if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

type tokenRequest struct {
	AccessToken string `json:"access_token" query:"access_token"`
}

type listSubmissionsRequest struct {
	AccessToken string `json:"access_token" query:"access_token"`
	Limit       int    `json:"limit" query:"limit"`
}

type registerRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username" query:"username"`
	Password string `json:"password" query:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" query:"refresh_token"`
}

type editUserRequest struct {
	AccessToken string    `json:"access_token"`
	DisplayName *string   `json:"display_name"`
	Permissions *[]string `json:"permissions"`
}

type createProblemRequest struct {
	AccessToken string  `json:"access_token"`
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	TimeLimit   float64 `json:"time_limit"`
	MemoryLimit int64   `json:"memory_limit"`
}

type submitRequest struct {
	AccessToken string `json:"access_token"`
	ProblemSlug string `json:"problem_slug"`
	Language    string `json:"language"`
	SourceCode  string `json:"source_code"`
}
