package auth

import (
	"crypto/sha256"
	"io"
	"net/http"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"
	"golang.org/x/crypto/hkdf"
)

// CSRFHeader carries the CSRF token. Every response sets it; clients echo
// it back on POST, PUT, PATCH and DELETE.
const CSRFHeader = "X-CSRF-Token"

const csrfCookieName = "donorhub-csrf"

// NewCSRF returns middleware that rejects unsafe requests lacking a valid
// token with 403. The token key is derived from sessionKey, so rotating the
// session key also invalidates outstanding tokens.
//
// trustedOrigins lists extra hosts (host[:port]) allowed in Origin and
// Referer. When secure is false requests are treated as plain HTTP and no
// Referer is required.
func NewCSRF(sessionKey string, secure bool, trustedOrigins []string, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(sessionKey), nil, []byte("donorhub csrf")), key); err != nil {
		return nil, err
	}

	protect := csrf.Protect(key,
		csrf.CookieName(csrfCookieName),
		csrf.Path("/"),
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.RequestHeader(CSRFHeader),
		csrf.TrustedOrigins(trustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf check failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(csrf.FailureReason(r)))
			deny(w, http.StatusForbidden, "missing or invalid CSRF token")
		})),
	)

	return func(next http.Handler) http.Handler {
		h := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(CSRFHeader, csrf.Token(r))
			next.ServeHTTP(w, r)
		}))
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}, nil
}
