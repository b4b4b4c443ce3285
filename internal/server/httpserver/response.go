package httpserver

import (
	"errors"

	"github.com/dmitrijs2005/judgeserver/internal/common"
	"github.com/gofiber/fiber/v2"
)

// Response is the envelope of every reply.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	msgUnauthorized     = "Unauthorized."
	msgForbidden        = "Not enough permission."
	msgNotFound         = "Not found."
	msgMethodNotAllowed = "Method not allowed."
	msgInternal         = "Internal server error."
	msgBadRequest       = "Failed to parse request."
	msgWrongCredentials = "Wrong username or password."
	msgNotRefreshToken  = "The token is not a refresh token."
	msgInvalidRefresh   = "The refresh token is invalid."
	msgProblemNotFound  = "Problem not found."
)

// errBadRequest marks a body or query string that could not be decoded or
// lacks a required field.
var errBadRequest = errors.New("bad request")

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(Response{Success: true, Data: data})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{Success: false, Message: message})
}

// statusOf maps an error returned by a handler to the reply status and
// message. Unknown errors become a bare 500.
func statusOf(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return fiber.StatusNotFound, msgNotFound
		case fiber.StatusMethodNotAllowed:
			return fiber.StatusMethodNotAllowed, msgMethodNotAllowed
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			return fiber.StatusBadRequest, msgBadRequest
		case fiber.StatusInternalServerError:
			return fiber.StatusInternalServerError, msgInternal
		default:
			return fe.Code, fe.Message
		}
	}

	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return fiber.StatusUnauthorized, msgUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return fiber.StatusForbidden, msgForbidden
	case errors.Is(err, common.ErrCredentialMismatch):
		return fiber.StatusNotFound, msgWrongCredentials
	case errors.Is(err, common.ErrNotRefreshToken):
		return fiber.StatusBadRequest, msgNotRefreshToken
	case errors.Is(err, common.ErrInvalidRefreshToken):
		return fiber.StatusBadRequest, msgInvalidRefresh
	case errors.Is(err, common.ErrProblemNotFound):
		return fiber.StatusBadRequest, msgProblemNotFound
	case errors.Is(err, errBadRequest), errors.Is(err, common.ErrorValidation):
		return fiber.StatusBadRequest, msgBadRequest
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound, msgNotFound
	default:
		return fiber.StatusInternalServerError, msgInternal
	}
}

// errorHandler is the single place where service errors become HTTP replies.
func (s *HTTPServer) errorHandler(c *fiber.Ctx, err error) error {
	code, message := statusOf(err)
	if code == fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err.Error())
	}
	return fail(c, code, message)
}
