// Package errors writes JSON error responses and logs the cause.
//
// Import it as uierrors to avoid shadowing the standard library package.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/donorhub/internal/app/system/authz"
	"github.com/dalemusser/donorhub/internal/app/system/jsonbody"
	"go.uber.org/zap"
)

// Response is the body of every error reply.
type Response struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError answers {"error": msg} with status.
func WriteError(w http.ResponseWriter, status int, msg string, details ...string) {
	WriteJSON(w, status, Response{Error: msg, Details: details})
}

// ErrorLogger logs handler failures with request context before answering.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger wraps logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs err at error level and answers 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Error(msg, e.fields(r, err)...)
	WriteError(w, http.StatusInternalServerError, userMsg)
}

// LogBadRequest logs err at warn level and answers 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string, details ...string) {
	e.log.Warn(msg, e.fields(r, err)...)
	WriteError(w, http.StatusBadRequest, userMsg, details...)
}

// LogDecodeError answers a failed jsonbody decode: 415 when the request was
// not application/json, otherwise 400 with userMsg.
func (e *ErrorLogger) LogDecodeError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	if stderrors.Is(err, jsonbody.ErrUnsupportedMediaType) {
		e.log.Warn(msg, e.fields(r, err)...)
		WriteError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json.")
		return
	}
	e.LogBadRequest(w, r, msg, err, userMsg)
}

// NotFound answers 404 without logging.
func (e *ErrorLogger) NotFound(w http.ResponseWriter, what string) {
	WriteError(w, http.StatusNotFound, what+" not found")
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	_, username, _, _ := authz.UserCtx(r)
	fs := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if username != "" {
		fs = append(fs, zap.String("username", username))
	}
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	return fs
}
