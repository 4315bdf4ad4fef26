// Package jsonbody decodes JSON request bodies.
//
// Only bodies declared as application/json are read. Browsers can send
// text/plain, urlencoded and multipart bodies cross-site without a preflight,
// so refusing every other media type keeps a forged form from reaching a
// JSON handler.
package jsonbody

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
)

// ErrUnsupportedMediaType is returned when the request is not application/json.
var ErrUnsupportedMediaType = errors.New("request body must be application/json")

// IsJSON reports whether r declares an application/json body. Parameters such
// as charset are allowed.
func IsJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// Decode reads one JSON value from r into v, reading at most limit bytes.
func Decode(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	return decode(w, r, limit, v, false)
}

// DecodeStrict is Decode but rejects fields v does not declare.
func DecodeStrict(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	return decode(w, r, limit, v, true)
}

func decode(w http.ResponseWriter, r *http.Request, limit int64, v any, strict bool) error {
	if !IsJSON(r) {
		return ErrUnsupportedMediaType
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if strict {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(v)
}
