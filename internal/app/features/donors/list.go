// internal/app/features/donors/list.go
package donors

import (
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/donorhub/internal/app/features/errors"
	donorstore "github.com/dalemusser/donorhub/internal/app/store/donors"
	"github.com/dalemusser/donorhub/internal/app/system/bloodgroup"
	"github.com/dalemusser/donorhub/internal/app/system/donorquery"
	"github.com/dalemusser/donorhub/internal/app/system/paging"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type listResponse struct {
	Results           []donorView   `json:"results"`
	Alternatives      []donorView   `json:"alternatives"`
	Total             int           `json:"total"`
	AlternativesTotal int           `json:"alternatives_total"`
	BloodGroup        string        `json:"blood_group,omitempty"`
	AcceptsFrom       []string      `json:"accepts_from,omitempty"`
	Page              *paging.Range `json:"page,omitempty"`
}

// ServeList handles GET /api/donors. Matches come first, ranked; when a blood
// group is requested, compatible donors of other groups follow as
// alternatives. A limit query parameter pages the matches; totals always
// count every match.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	f, err := parseFilter(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "donors: bad filter", err, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	all, err := h.Donors.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "donors: list", err, "Could not load donors.")
		return
	}

	now := h.Now()
	res, err := donorquery.Search(all, f, now)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "donors: search", err, err.Error())
		return
	}
	h.Metrics.ObserveSearch(groupLabel(f), start)

	resp := listResponse{
		Results:           viewsOf(res.Matches, now),
		Alternatives:      viewsOf(res.Alternatives, now),
		Total:             len(res.Matches),
		AlternativesTotal: len(res.Alternatives),
		BloodGroup:        groupLabel(f),
	}
	if limit := paging.ParseLimit(r); limit > 0 {
		window, rng := paging.Window(resp.Results, paging.ParseStart(r), limit)
		resp.Results = window
		resp.Page = &rng
	}
	if f.BloodGroup != nil {
		if set, err := bloodgroup.CompatibleDonorsFor(*f.BloodGroup); err == nil {
			resp.AcceptsFrom = set.Strings()
		}
	}
	h.Log.Debug("donor search",
		zap.String("blood_group", resp.BloodGroup),
		zap.Int("matches", resp.Total),
		zap.Int("alternatives", resp.AlternativesTotal))
	uierrors.WriteJSON(w, http.StatusOK, resp)
}

// ServeStats handles GET /api/donors/stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	all, err := h.Donors.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "donors: stats", err, "Could not load donors.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, donorquery.Summarize(all, h.Now()))
}

// ServeGet handles GET /api/donors/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.donorID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	d, err := h.Donors.GetByID(ctx, id)
	if errors.Is(err, donorstore.ErrNotFound) {
		h.ErrLog.NotFound(w, "donor")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "donors: get", err, "Could not load donor.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, donorView{Donor: d, Status: evaluate(d, h.Now())})
}

// donorID parses the {id} URL parameter, answering 400 when it is malformed.
func (h *Handler) donorID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.WriteError(w, http.StatusBadRequest, "invalid donor id")
		return primitive.NilObjectID, false
	}
	return id, true
}
