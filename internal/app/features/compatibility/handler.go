// Package compatibility answers blood-compatibility lookups. It reads no
// storage and needs no session.
package compatibility

import (
	"net/http"
	"net/url"
	"strings"

	uierrors "github.com/dalemusser/donorhub/internal/app/features/errors"
	"github.com/dalemusser/donorhub/internal/app/system/bloodgroup"
	"github.com/go-chi/chi/v5"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

type groupResponse struct {
	Group       string   `json:"group"`
	AcceptsFrom []string `json:"accepts_from"`
	DonatesTo   []string `json:"donates_to"`
}

type chartResponse struct {
	Groups []groupResponse `json:"groups"`
}

func describe(g bloodgroup.Group) groupResponse {
	from, _ := bloodgroup.CompatibleDonorsFor(g)
	to, _ := bloodgroup.CanDonateTo(g)
	return groupResponse{Group: string(g), AcceptsFrom: from.Strings(), DonatesTo: to.Strings()}
}

// ServeGroup handles GET /api/compatibility/{group}. The group may be
// URL-encoded ("AB%2B") or spelled with a trailing "pos"/"neg".
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "group")
	// chi matches on the escaped path when one exists, so "AB%2B" arrives encoded.
	if u, err := url.PathUnescape(raw); err == nil {
		raw = u
	}
	raw = groupParam(raw)
	g, err := bloodgroup.Parse(raw)
	if err != nil {
		uierrors.WriteError(w, http.StatusBadRequest, err.Error(),
			"valid groups: "+strings.Join(bloodgroup.NewSet(bloodgroup.All()...).Strings(), ", "))
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, describe(g))
}

// ServeChart handles GET /api/compatibility: the full table in canonical
// group order.
func (h *Handler) ServeChart(w http.ResponseWriter, r *http.Request) {
	resp := chartResponse{Groups: make([]groupResponse, 0, len(bloodgroup.All()))}
	for _, g := range bloodgroup.All() {
		resp.Groups = append(resp.Groups, describe(g))
	}
	uierrors.WriteJSON(w, http.StatusOK, resp)
}

// groupParam accepts "A+", "a-", "ABpos", "O neg" and the space a bare "+"
// decodes to in some clients.
func groupParam(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasSuffix(lower, "pos"):
		return strings.TrimSpace(strings.TrimSuffix(lower, "pos")) + "+"
	case strings.HasSuffix(lower, "neg"):
		return strings.TrimSpace(strings.TrimSuffix(lower, "neg")) + "-"
	case strings.HasSuffix(s, " ") && lower != "":
		return lower + "+"
	}
	return s
}
