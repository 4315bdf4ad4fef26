// internal/app/features/donors/edit.go
package donors

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/donorhub/internal/app/features/errors"
	"github.com/dalemusser/donorhub/internal/app/store/audit"
	donorstore "github.com/dalemusser/donorhub/internal/app/store/donors"
	"github.com/dalemusser/donorhub/internal/app/system/authz"
	"github.com/dalemusser/donorhub/internal/app/system/jsonbody"
	"github.com/dalemusser/donorhub/internal/app/system/limits"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleUpdate handles PUT /api/donors/{id}. The body replaces every mutable
// field; omitted dates are cleared. DateAdded is never changed.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.donorID(w, r)
	if !ok {
		return
	}
	var in donorInput
	if err := jsonbody.DecodeStrict(w, r, limits.MaxDonorBody, &in); err != nil {
		h.ErrLog.LogDecodeError(w, r, "donors: decode update", err, "Request body must be a donor JSON object.")
		return
	}
	d, problems := in.toDonor()
	if len(problems) > 0 {
		uierrors.WriteError(w, http.StatusBadRequest, "Invalid donor.", problems...)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	updated, err := h.Donors.Update(ctx, id, d)
	if errors.Is(err, donorstore.ErrNotFound) {
		h.ErrLog.NotFound(w, "donor")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "donors: update", err, "Could not save donor.")
		return
	}

	_, actor, _, _ := authz.UserCtx(r)
	h.Log.Info("donor updated", zap.String("donor_id", id.Hex()), zap.String("by", actor))
	h.Audit.Admin(r.Context(), r, audit.EventDonorUpdated, id.Hex(), nil)
	uierrors.WriteJSON(w, http.StatusOK, donorView{Donor: updated, Status: evaluate(updated, h.Now())})
}

// HandleDelete handles DELETE /api/donors/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.donorID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	if err := h.Donors.Delete(ctx, id); err != nil {
		if errors.Is(err, donorstore.ErrNotFound) {
			h.ErrLog.NotFound(w, "donor")
			return
		}
		h.ErrLog.LogServerError(w, r, "donors: delete", err, "Could not delete donor.")
		return
	}
	h.Metrics.DonorDeleted()

	_, actor, _, _ := authz.UserCtx(r)
	h.Log.Info("donor deleted", zap.String("donor_id", id.Hex()), zap.String("by", actor))
	h.Audit.Admin(r.Context(), r, audit.EventDonorDeleted, id.Hex(), nil)
	w.WriteHeader(http.StatusNoContent)
}
