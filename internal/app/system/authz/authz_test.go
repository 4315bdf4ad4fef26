package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"github.com/dalemusser/donorhub/internal/app/system/authz"
)

const testUserID = "507f1f77bcf86cd799439011"

func reqAs(role, id string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if role == "" {
		return r
	}
	return auth.WithTestUser(r, &auth.SessionUser{ID: id, Username: "tester", Role: role})
}

func TestUserCtx(t *testing.T) {
	role, name, uid, ok := authz.UserCtx(reqAs("Admin", testUserID))
	if !ok || role != "admin" || name != "tester" || uid.Hex() != testUserID {
		t.Errorf("UserCtx = %q %q %s %v", role, name, uid.Hex(), ok)
	}

	role, _, _, ok = authz.UserCtx(reqAs("", ""))
	if ok || role != "visitor" {
		t.Errorf("anonymous UserCtx = %q %v", role, ok)
	}

	if _, _, _, ok := authz.UserCtx(reqAs("admin", "not-hex")); ok {
		t.Error("malformed ID should fail closed")
	}
}

func TestRoles(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		wantAdmin bool
	}{
		{"admin", "admin", true},
		{"user", "user", false},
		{"anonymous", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reqAs(tt.role, testUserID)
			if got := authz.IsAdmin(r); got != tt.wantAdmin {
				t.Errorf("IsAdmin = %v", got)
			}
			if got := authz.CanEditDonors(r); got != tt.wantAdmin {
				t.Errorf("CanEditDonors = %v", got)
			}
			if tt.role != "" && !authz.HasAnyRole(r, "user", "admin") {
				t.Error("HasAnyRole should match")
			}
		})
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{"admin", "User", " user "} {
		if !authz.ValidRole(r) {
			t.Errorf("ValidRole(%q) = false", r)
		}
	}
	for _, r := range []string{"", "superadmin", "member"} {
		if authz.ValidRole(r) {
			t.Errorf("ValidRole(%q) = true", r)
		}
	}
}

func TestIsSelf(t *testing.T) {
	r := reqAs("admin", testUserID)
	if !authz.IsSelf(r, testUserID) {
		t.Error("expected self")
	}
	if authz.IsSelf(r, "507f1f77bcf86cd799439012") {
		t.Error("different ID is not self")
	}
}
