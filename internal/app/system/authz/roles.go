package authz

import (
	"net/http"
	"strings"
)

// HasAnyRole reports whether the current request's user has any of the given roles.
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// IsSelf reports whether id is the signed-in user's own ID.
func IsSelf(r *http.Request, id string) bool {
	_, _, uid, ok := UserCtx(r)
	return ok && uid.Hex() == strings.TrimSpace(id)
}
