package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/judgeserver/internal/common"
	"github.com/dmitrijs2005/judgeserver/internal/logging"
	"github.com/dmitrijs2005/judgeserver/internal/server/models"
)

// UserFinder loads the current state of a user by username. Implementations
// return common.ErrorNotFound when there is no such user.
type UserFinder interface {
	GetUserByLogin(ctx context.Context, userName string) (*models.User, error)
}

// Session is the per-request result of resolving an access token.
// It is never cached or shared between requests.
type Session struct {
	User   *models.User
	Claims *Claims
}

// SessionResolver turns a bearer access token into a Session.
type SessionResolver struct {
	tokens *TokenIssuer
	users  UserFinder
	logger logging.Logger
}

func NewSessionResolver(tokens *TokenIssuer, users UserFinder, logger logging.Logger) *SessionResolver {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &SessionResolver{tokens: tokens, users: users, logger: logger.With("module", "session_resolver")}
}

// Resolve authenticates accessToken and, when requiredPermission is not
// empty, authorizes the user for it.
//
// The user is loaded from the store on every call, so a revoked permission
// takes effect on the next request. Errors are common.ErrorUnauthorized
// (bad, expired or refresh-class token, unknown subject),
// common.ErrorForbidden (valid identity without the capability) and
// common.ErrorInternal wrapping a storage failure.
func (r *SessionResolver) Resolve(ctx context.Context, accessToken string, requiredPermission string) (*Session, error) {
	claims, err := r.tokens.Decode(accessToken)
	if err != nil {
		r.logger.Debug(ctx, "access token rejected", "reason", err.Error())
		return nil, common.ErrorUnauthorized
	}

	if claims.Refresh {
		r.logger.Debug(ctx, "access token rejected", "reason", common.ErrWrongTokenClass.Error())
		return nil, common.ErrorUnauthorized
	}

	user, err := r.users.GetUserByLogin(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			r.logger.Debug(ctx, "access token rejected", "reason", "unknown subject")
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: loading user: %v", common.ErrorInternal, err)
	}

	if requiredPermission != "" && !HasPermission(user, requiredPermission) {
		r.logger.Debug(ctx, "permission denied", "user", user.UserName, "permission", requiredPermission)
		return nil, common.ErrorForbidden
	}

	return &Session{User: user, Claims: claims}, nil
}
