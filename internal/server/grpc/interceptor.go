package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/judgeserver/internal/common"
	"github.com/dmitrijs2005/judgeserver/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const sessionKey ctxKey = "session"

func sessionFromContext(ctx context.Context) (*auth.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*auth.Session)
	return sess, ok && sess != nil
}

// accessTokenInterceptor authenticates calls to the session service using
// the access token from metadata. Health checks pass through.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if info.FullMethod == ResolveMethod {

		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.AccessTokenFieldName)
			if len(values) > 0 {
				accessToken = values[0]
			}
		}
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		sess, err := s.sessions.Resolve(ctx, accessToken, "")
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				return nil, status.Error(codes.Unauthenticated, "unauthorized")
			}
			s.logger.Error(ctx, "session resolution failed", "error", err.Error())
			return nil, status.Error(codes.Internal, "internal error")
		}

		ctx = context.WithValue(ctx, sessionKey, sess)

	}

	return handler(ctx, req)
}
