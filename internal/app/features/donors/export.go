// internal/app/features/donors/export.go
package donors

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dalemusser/donorhub/internal/app/system/csvutil"
	"github.com/dalemusser/donorhub/internal/app/system/donorquery"
	"github.com/dalemusser/donorhub/internal/app/system/eligibility"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeExport handles GET /api/donors/export.csv. It takes the same filters
// as ServeList and writes the ranked matches (not the alternatives).
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "donors: bad export filter", err, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long)
	defer cancel()

	all, err := h.Donors.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "donors: export list", err, "Could not load donors.")
		return
	}

	now := h.Now()
	rows := donorquery.Apply(all, f, now)

	// Render fully before writing headers so a failure can still answer 500.
	var buf bytes.Buffer
	if err := csvutil.WriteDonors(&buf, rows, now); err != nil {
		h.ErrLog.LogServerError(w, r, "donors: export write", err, "Could not build export.")
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", h.ExportPrefix, eligibility.FormatDate(&now, ""))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.Log.Warn("donors: export write to client", zap.Error(err))
		return
	}
	h.Metrics.Exported(len(rows))
}
