package grpc

import (
	"context"

	"github.com/dmitrijs2005/judgeserver/internal/server/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Resolve returns the authenticated user. When the request carries a
// "permission" field the user must hold it.
func (s *GRPCServer) Resolve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	sess, ok := sessionFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	permission := req.GetFields()["permission"].GetStringValue()
	if permission != "" && !auth.HasPermission(sess.User, permission) {
		s.logger.Debug(ctx, "permission denied", "user", sess.User.UserName, "permission", permission)
		return nil, status.Error(codes.PermissionDenied, "not enough permission")
	}

	permissions := make([]interface{}, 0, len(sess.User.Permissions))
	for _, p := range sess.User.Permissions {
		permissions = append(permissions, p)
	}

	var expiresAt int64
	if sess.Claims != nil && sess.Claims.ExpiresAt != nil {
		expiresAt = sess.Claims.ExpiresAt.Unix()
	}

	resp, err := structpb.NewStruct(map[string]interface{}{
		"id":           sess.User.ID,
		"username":     sess.User.UserName,
		"display_name": sess.User.DisplayName,
		"permissions":  permissions,
		"expires_at":   expiresAt,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	return resp, nil
}
