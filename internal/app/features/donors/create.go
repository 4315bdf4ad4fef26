// internal/app/features/donors/create.go
package donors

import (
	"fmt"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/donorhub/internal/app/features/errors"
	"github.com/dalemusser/donorhub/internal/app/store/audit"
	"github.com/dalemusser/donorhub/internal/app/system/jsonbody"
	"github.com/dalemusser/donorhub/internal/app/system/limits"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"github.com/dalemusser/donorhub/internal/domain/models"
	"go.uber.org/zap"
)

// maxBatchRows caps one mass-entry submission.
const maxBatchRows = 500

// HandleCreate handles POST /api/donors.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in donorInput
	if err := jsonbody.DecodeStrict(w, r, limits.MaxDonorBody, &in); err != nil {
		h.ErrLog.LogDecodeError(w, r, "donors: decode create", err, "Request body must be a donor JSON object.")
		return
	}
	d, problems := in.toDonor()
	if len(problems) > 0 {
		uierrors.WriteError(w, http.StatusBadRequest, "Invalid donor.", problems...)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	created, err := h.Donors.Create(ctx, d)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "donors: create", err, "Could not save donor.")
		return
	}
	h.Metrics.DonorCreated("single", 1)
	h.Log.Info("donor registered",
		zap.String("donor_id", created.ID.Hex()),
		zap.String("blood_group", created.BloodGroup))
	h.Audit.Admin(r.Context(), r, audit.EventDonorCreated, created.ID.Hex(), map[string]string{
		"blood_group": created.BloodGroup,
	})

	uierrors.WriteJSON(w, http.StatusCreated, donorView{Donor: created, Status: evaluate(created, h.Now())})
}

type batchResponse struct {
	Created     int         `json:"created"`
	ImportBatch string      `json:"import_batch"`
	Donors      []donorView `json:"donors"`
}

// HandleBatch handles POST /api/donors/batch (mass entry). The preset fills
// blank shared fields on every row. All rows are validated first; if any row
// is invalid nothing is stored.
func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := jsonbody.DecodeStrict(w, r, limits.MaxBatchBody, &req); err != nil {
		h.ErrLog.LogDecodeError(w, r, "donors: decode batch", err, "Request body must be {preset, donors}.")
		return
	}
	if len(req.Donors) == 0 {
		uierrors.WriteError(w, http.StatusBadRequest, "No donors supplied.")
		return
	}
	if len(req.Donors) > maxBatchRows {
		uierrors.WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("At most %d donors per batch.", maxBatchRows))
		return
	}

	donors := make([]models.Donor, 0, len(req.Donors))
	var problems []string
	for i, in := range req.Donors {
		d, rowProblems := req.Preset.apply(in).toDonor()
		for _, p := range rowProblems {
			problems = append(problems, fmt.Sprintf("donor %d: %s", i+1, p))
		}
		donors = append(donors, d)
	}
	if len(problems) > 0 {
		uierrors.WriteError(w, http.StatusBadRequest, "Invalid donors; nothing was saved.", problems...)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long)
	defer cancel()

	created, batch, err := h.Donors.InsertMany(ctx, donors)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "donors: batch insert", err, "Could not save donors.")
		return
	}
	h.Metrics.DonorCreated("batch", len(created))
	h.Log.Info("donor batch registered", zap.String("import_batch", batch), zap.Int("count", len(created)))
	h.Audit.Admin(r.Context(), r, audit.EventDonorsBatchAdded, "", map[string]string{
		"import_batch": batch,
		"count":        strconv.Itoa(len(created)),
	})

	uierrors.WriteJSON(w, http.StatusCreated, batchResponse{
		Created:     len(created),
		ImportBatch: batch,
		Donors:      viewsOf(created, h.Now()),
	})
}
