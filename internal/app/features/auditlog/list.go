// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/donorhub/internal/app/features/errors"
	"github.com/dalemusser/donorhub/internal/app/store/audit"
	"github.com/dalemusser/donorhub/internal/app/system/eligibility"
	"github.com/dalemusser/donorhub/internal/app/system/paging"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// pageSize applies when the request has no limit.
const pageSize = 50

var (
	authEvents = []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailed,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
	}
	adminEvents = []string{
		audit.EventDonorCreated,
		audit.EventDonorUpdated,
		audit.EventDonorDeleted,
		audit.EventDonorsBatchAdded,
		audit.EventDonorsImported,
		audit.EventUserCreated,
		audit.EventUserDeleted,
		audit.EventUniversityCreated,
		audit.EventUniversityDeleted,
	}
)

// eventTypesFor returns the event types of category, or all of them when
// category is blank.
func eventTypesFor(category string) []string {
	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents))
		return append(append(all, authEvents...), adminEvents...)
	}
	return nil
}

type listResponse struct {
	Events     []audit.Event `json:"events"`
	Total      int64         `json:"total"`
	Page       paging.Range  `json:"page"`
	EventTypes []string      `json:"event_types"`
}

// ServeList handles GET /api/audit.
//
// Filters: category (auth|admin), event_type, start_date and end_date
// (YYYY-MM-DD, inclusive). Paging: start (1-based) and limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	category := strings.ToLower(strings.TrimSpace(query.Get(r, "category")))
	types := eventTypesFor(category)
	if types == nil {
		uierrors.WriteError(w, http.StatusBadRequest, "unknown category", "category must be auth or admin")
		return
	}

	filter := audit.QueryFilter{
		Category:  category,
		EventType: strings.TrimSpace(query.Get(r, "event_type")),
		StartTime: eligibility.ParseDate(query.Get(r, "start_date")),
	}
	if end := eligibility.ParseDate(query.Get(r, "end_date")); end != nil {
		last := end.AddDate(0, 0, 1).Add(-1)
		filter.EndTime = &last
	}

	start := paging.ParseStart(r)
	limit := paging.ParseLimit(r)
	if limit == 0 {
		limit = pageSize
	}
	filter.Limit = int64(limit)
	filter.Offset = int64(start - 1)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	total, err := h.Events.Count(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit: count", err, "Could not load audit events.")
		return
	}
	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit: query", err, "Could not load audit events.")
		return
	}

	uierrors.WriteJSON(w, http.StatusOK, listResponse{
		Events:     events,
		Total:      total,
		Page:       pageRange(start, limit, len(events), int(total)),
		EventTypes: types,
	})
}

// pageRange describes a page fetched with skip/limit from a collection of
// total documents.
func pageRange(start, limit, shown, total int) paging.Range {
	rng := paging.Range{
		Total:     total,
		HasPrev:   start > 1,
		PrevStart: max(start-limit, 1),
		NextStart: start + shown,
	}
	if shown > 0 {
		rng.Start = start
		rng.End = start + shown - 1
	}
	rng.HasNext = rng.NextStart <= total
	return rng
}
