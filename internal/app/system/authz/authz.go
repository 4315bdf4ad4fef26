package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether role is one of the account roles.
func ValidRole(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

// UserCtx returns the user's role (lowercased), username, ObjectID, and a found
// flag. A missing user or malformed ID yields "visitor", "", NilObjectID, false.
func UserCtx(r *http.Request) (role string, username string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Username, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleAdmin
}

// CanEditDonors reports whether the user may update or delete donor records.
// Any signed-in user may register donors; changing existing ones is admin-only.
func CanEditDonors(r *http.Request) bool {
	return IsAdmin(r)
}
