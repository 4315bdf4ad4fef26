// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/donorhub/internal/app/features/errors"
	userstore "github.com/dalemusser/donorhub/internal/app/store/users"
	"github.com/dalemusser/donorhub/internal/app/system/auditlog"
	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"github.com/dalemusser/donorhub/internal/app/system/jsonbody"
	"github.com/dalemusser/donorhub/internal/app/system/limits"
	"github.com/dalemusser/donorhub/internal/app/system/metrics"
	"github.com/dalemusser/donorhub/internal/app/system/ratelimit"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Limiter    *ratelimit.LoginLimiter
	Metrics    *metrics.Metrics
	Audit      *auditlog.Logger
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	limiter *ratelimit.LoginLimiter,
	m *metrics.Metrics,
	auditLog *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Limiter:    limiter,
		Metrics:    m,
		Audit:      auditLog,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userJSON is the public view of a signed-in account.
type userJSON struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	User userJSON `json:"user"`
}

// HandleLogin handles POST /api/auth/login.
//
// Body: {"username":"...","password":"..."}. On success a session cookie is
// set and the account is returned. Unknown usernames and wrong passwords get
// the same 401.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := jsonbody.Decode(w, r, limits.MaxCredentialsBody, &req); err != nil {
		h.ErrLog.LogDecodeError(w, r, "login: decode body", err, "Request body must be JSON with username and password.")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		uierrors.WriteError(w, http.StatusBadRequest, "Username and password are required.")
		return
	}

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, req.Username); !ok {
			h.Metrics.Login("throttled")
			h.Audit.LoginThrottled(r.Context(), r, req.Username, reason)
			h.Log.Warn("login throttled",
				zap.String("username", req.Username),
				zap.String("ip", ratelimit.ClientIP(r)))
			uierrors.WriteError(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	u, err := h.Users.Authenticate(ctx, req.Username, req.Password)
	if errors.Is(err, userstore.ErrInvalidCredentials) {
		h.Metrics.Login("invalid")
		h.Audit.LoginFailed(r.Context(), r, req.Username)
		h.Log.Info("login rejected", zap.String("username", req.Username))
		uierrors.WriteError(w, http.StatusUnauthorized, "Invalid username or password.")
		return
	}
	if err != nil {
		h.Metrics.Login("error")
		h.ErrLog.LogServerError(w, r, "login: authenticate", err, "Sign-in failed. Please try again.")
		return
	}

	su := auth.SessionUser{ID: u.ID.Hex(), Username: u.Username, Role: u.Role}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.Metrics.Login("error")
		h.ErrLog.LogServerError(w, r, "login: save session", err, "Sign-in failed. Please try again.")
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetUsername(req.Username)
	}
	h.Metrics.Login("success")
	h.Audit.LoginSuccess(r.Context(), r, u.ID, u.Username)
	h.Log.Info("login succeeded", zap.String("username", u.Username), zap.String("role", u.Role))

	uierrors.WriteJSON(w, http.StatusOK, loginResponse{
		User: userJSON{ID: su.ID, Username: su.Username, Role: su.Role},
	})
}
