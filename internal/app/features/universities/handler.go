// internal/app/features/universities/handler.go
package universities

import (
	"errors"
	"net/http"
	"sort"

	uierrors "github.com/dalemusser/donorhub/internal/app/features/errors"
	"github.com/dalemusser/donorhub/internal/app/store/audit"
	donorstore "github.com/dalemusser/donorhub/internal/app/store/donors"
	universitystore "github.com/dalemusser/donorhub/internal/app/store/universities"
	"github.com/dalemusser/donorhub/internal/app/system/auditlog"
	"github.com/dalemusser/donorhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/donorhub/internal/app/system/jsonbody"
	"github.com/dalemusser/donorhub/internal/app/system/limits"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Universities *universitystore.Store
	Donors       *donorstore.Store
	Log          *zap.Logger
	ErrLog       *uierrors.ErrorLogger
	Audit        *auditlog.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Universities: universitystore.New(db),
		Donors:       donorstore.New(db),
		Log:          logger,
		ErrLog:       errLog,
		Audit:        auditLog,
	}
}

// universityJSON is one entry of the merged list. ID is empty for names that
// only appear on donor records.
type universityJSON struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Donors int    `json:"donors"`
}

// ServeList handles GET /api/universities: the stored list merged with every
// university named on a donor, matched without regard to case or accents.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	stored, err := h.Universities.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "universities: list", err, "Could not load universities.")
		return
	}
	donors, err := h.Donors.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "universities: list donors", err, "Could not load universities.")
		return
	}

	byKey := make(map[string]*universityJSON, len(stored))
	out := make([]*universityJSON, 0, len(stored))
	for _, u := range stored {
		e := &universityJSON{ID: u.ID.Hex(), Name: u.Name}
		byKey[u.NameCI] = e
		out = append(out, e)
	}
	for _, d := range donors {
		if d.University == "" {
			continue
		}
		key := text.Fold(d.University)
		e, ok := byKey[key]
		if !ok {
			e = &universityJSON{Name: d.University}
			byKey[key] = e
			out = append(out, e)
		}
		e.Donors++
	}
	sort.SliceStable(out, func(i, j int) bool {
		return text.Fold(out[i].Name) < text.Fold(out[j].Name)
	})

	resp := make([]universityJSON, 0, len(out))
	for _, e := range out {
		resp = append(resp, *e)
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"universities": resp})
}

type createRequest struct {
	Name string `json:"name"`
}

// HandleCreate handles POST /api/universities.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := jsonbody.Decode(w, r, limits.MaxNameBody, &req); err != nil {
		h.ErrLog.LogDecodeError(w, r, "universities: decode", err, "Request body must be {\"name\": \"...\"}.")
		return
	}
	name := htmlsanitize.PlainText(req.Name)
	if name == "" {
		uierrors.WriteError(w, http.StatusBadRequest, universitystore.ErrEmptyName.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	exists, err := h.Universities.ExistsByNameCI(ctx, text.Fold(name))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "universities: exists", err, "Could not save university.")
		return
	}
	if exists {
		uierrors.WriteError(w, http.StatusConflict, universitystore.ErrDuplicateUniversity.Error())
		return
	}

	u, err := h.Universities.Create(ctx, name)
	switch {
	case errors.Is(err, universitystore.ErrDuplicateUniversity):
		uierrors.WriteError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "universities: create", err, "Could not save university.")
		return
	}
	h.Log.Info("university added", zap.String("name", u.Name))
	h.Audit.Admin(r.Context(), r, audit.EventUniversityCreated, u.ID.Hex(), map[string]string{"name": u.Name})
	uierrors.WriteJSON(w, http.StatusCreated, universityJSON{ID: u.ID.Hex(), Name: u.Name})
}

// HandleDelete handles DELETE /api/universities/{id}. Donors keep the name.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.WriteError(w, http.StatusBadRequest, "invalid university id")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	if err := h.Universities.Delete(ctx, id); err != nil {
		if errors.Is(err, universitystore.ErrNotFound) {
			h.ErrLog.NotFound(w, "university")
			return
		}
		h.ErrLog.LogServerError(w, r, "universities: delete", err, "Could not delete university.")
		return
	}
	h.Log.Info("university removed", zap.String("id", id.Hex()))
	h.Audit.Admin(r.Context(), r, audit.EventUniversityDeleted, id.Hex(), nil)
	w.WriteHeader(http.StatusNoContent)
}
