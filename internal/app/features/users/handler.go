// internal/app/features/users/handler.go
package users

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/donorhub/internal/app/features/errors"
	"github.com/dalemusser/donorhub/internal/app/store/audit"
	userstore "github.com/dalemusser/donorhub/internal/app/store/users"
	"github.com/dalemusser/donorhub/internal/app/system/auditlog"
	"github.com/dalemusser/donorhub/internal/app/system/authz"
	"github.com/dalemusser/donorhub/internal/app/system/jsonbody"
	"github.com/dalemusser/donorhub/internal/app/system/limits"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"github.com/dalemusser/donorhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler lets admins manage sign-in accounts.
type Handler struct {
	Users  *userstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
	Audit  *auditlog.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  userstore.New(db),
		Log:    logger,
		ErrLog: errLog,
		Audit:  auditLog,
	}
}

type listResponse struct {
	Users      []models.User `json:"users"`
	HasPrev    bool          `json:"has_prev"`
	HasNext    bool          `json:"has_next"`
	PrevCursor string        `json:"prev_cursor,omitempty"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// ServeList handles GET /api/users?after=<cursor> or ?before=<cursor>,
// returning one page of accounts ordered by username. Password hashes never
// leave the store.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	page, err := h.Users.ListPage(ctx, query.Get(r, "before"), query.Get(r, "after"))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "users: list", err, "Could not load users.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{
		Users:      page.Users,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
		PrevCursor: page.PrevCursor,
		NextCursor: page.NextCursor,
	})
}

type createRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// HandleCreate handles POST /api/users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := jsonbody.Decode(w, r, limits.MaxCredentialsBody, &req); err != nil {
		h.ErrLog.LogDecodeError(w, r, "users: decode", err, "Request body must be a user JSON object.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{Username: req.Username, Email: req.Email, Role: req.Role}, req.Password)
	switch {
	case errors.Is(err, userstore.ErrInvalid):
		uierrors.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, userstore.ErrDuplicateUsername):
		uierrors.WriteError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "users: create", err, "Could not create user.")
		return
	}

	_, actor, _, _ := authz.UserCtx(r)
	h.Log.Info("user created",
		zap.String("username", u.Username),
		zap.String("role", u.Role),
		zap.String("by", actor))
	h.Audit.Admin(r.Context(), r, audit.EventUserCreated, u.ID.Hex(), map[string]string{
		"username": u.Username,
		"role":     u.Role,
	})
	uierrors.WriteJSON(w, http.StatusCreated, u)
}

// HandleDelete handles DELETE /api/users/{id}. Admins cannot delete their own
// account, and the last admin cannot be removed.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	idHex := chi.URLParam(r, "id")
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		uierrors.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if authz.IsSelf(r, idHex) {
		uierrors.WriteError(w, http.StatusBadRequest, "You cannot delete your own account.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	target, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		h.ErrLog.NotFound(w, "user")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "users: load for delete", err, "Could not delete user.")
		return
	}
	if target.Role == authz.RoleAdmin {
		n, err := h.Users.CountAdmins(ctx)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "users: count admins", err, "Could not delete user.")
			return
		}
		if n <= 1 {
			uierrors.WriteError(w, http.StatusConflict, "The last admin account cannot be deleted.")
			return
		}
	}

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			h.ErrLog.NotFound(w, "user")
			return
		}
		h.ErrLog.LogServerError(w, r, "users: delete", err, "Could not delete user.")
		return
	}

	_, actor, _, _ := authz.UserCtx(r)
	h.Log.Info("user deleted", zap.String("username", target.Username), zap.String("by", actor))
	h.Audit.Admin(r.Context(), r, audit.EventUserDeleted, idHex, map[string]string{
		"username": target.Username,
		"role":     target.Role,
	})
	w.WriteHeader(http.StatusNoContent)
}
