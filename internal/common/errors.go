// Package common defines shared constants and sentinel errors used across
// the judge server and its CLI client. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Login with an unknown user or a wrong password. Both cases share the
	// error so that callers cannot tell them apart.
	ErrCredentialMismatch = errors.New("wrong username or password")

	// Auth errors (invalid or malformed token). The specific variants below
	// wrap ErrInvalidToken.
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenMalformed        = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenInvalidSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrTokenExpired          = fmt.Errorf("%w: expired", ErrInvalidToken)

	// Token class errors.
	ErrWrongTokenClass     = errors.New("wrong token class")
	ErrNotRefreshToken     = fmt.Errorf("%w: not a refresh token", ErrWrongTokenClass)
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// A submission referenced a problem slug that does not exist.
	ErrProblemNotFound = errors.New("problem not found")
)
