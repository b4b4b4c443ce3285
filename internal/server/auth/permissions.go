package auth

import (
	"slices"

	"github.com/dmitrijs2005/judgeserver/internal/server/models"
)

// Capabilities referenced by the server. The permission set of a user is
// open-ended; these are only the names the handlers check.
const (
	PermissionAdmin = "admin"
	PermissionJudge = "judge"
)

// HasPermission reports whether user holds permission. It is the single
// place that decides what satisfies a required capability; today that is an
// exact string match. A nil user holds nothing.
func HasPermission(user *models.User, permission string) bool {
	if user == nil {
		return false
	}
	return slices.Contains(user.Permissions, permission)
}

// IsAdmin is HasPermission(user, PermissionAdmin).
func IsAdmin(user *models.User) bool {
	return HasPermission(user, PermissionAdmin)
}
