package userinfo

import (
	"net/http"

	uierrors "github.com/dalemusser/donorhub/internal/app/features/errors"
	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"github.com/dalemusser/donorhub/internal/app/system/authz"
)

// Handler serves user information for the current session.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

type meResponse struct {
	IsAuthenticated bool              `json:"isAuthenticated"`
	User            *auth.SessionUser `json:"user,omitempty"`
	CanRegister     bool              `json:"can_register"`
	CanEdit         bool              `json:"can_edit"`
	CanAdminister   bool              `json:"can_administer"`
}

// ServeMe returns the current user's authentication status and identity.
//
// Response format:
//
//	{ "isAuthenticated": true, "user": {"id":"...","username":"...","role":"admin"},
//	  "can_register": true, "can_edit": true, "can_administer": true }
//
// Signed-out callers get 200 with isAuthenticated false so clients can check
// the session without handling an error. Like every response, it carries the
// X-CSRF-Token header that the next login or write must echo.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.WriteJSON(w, http.StatusOK, meResponse{})
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, meResponse{
		IsAuthenticated: true,
		User:            user,
		CanRegister:     true,
		CanEdit:         authz.CanEditDonors(r),
		CanAdminister:   authz.IsAdmin(r),
	})
}
