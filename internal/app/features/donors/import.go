// internal/app/features/donors/import.go
package donors

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/donorhub/internal/app/features/errors"
	"github.com/dalemusser/donorhub/internal/app/store/audit"
	"github.com/dalemusser/donorhub/internal/app/system/csvutil"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type importErrorResponse struct {
	Error  string             `json:"error"`
	Rows   []csvutil.RowError `json:"rows"`
	Failed int                `json:"failed"`
}

type importResponse struct {
	Imported    int    `json:"imported"`
	ImportBatch string `json:"import_batch"`
}

// HandleImport handles POST /api/donors/import. The file is taken from the
// multipart field "file", or from the raw body when the request is text/csv.
// Every row is validated before anything is written; one bad row rejects the
// whole file.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)

	src, closeSrc, err := importSource(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "donors: import source", err, "Upload a CSV file in the \"file\" field.")
		return
	}
	defer closeSrc()

	res, err := csvutil.ParseDonorsCSV(src, csvutil.ParseOptions{MaxRows: h.MaxImportRows})
	if errors.Is(err, csvutil.ErrTooManyRows) {
		uierrors.WriteError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("The file has more than %d rows.", h.MaxImportRows))
		return
	}
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "donors: import parse", err, "Could not read the CSV file.")
		return
	}
	if res.HasErrors() {
		h.Metrics.ImportResult(0, len(res.Errors))
		h.Log.Info("donor import rejected", zap.Int("bad_rows", len(res.Errors)))
		uierrors.WriteJSON(w, http.StatusUnprocessableEntity, importErrorResponse{
			Error:  "CSV file contains errors. Nothing was imported.",
			Rows:   res.Errors,
			Failed: len(res.Errors),
		})
		return
	}
	if len(res.Donors) == 0 {
		uierrors.WriteError(w, http.StatusBadRequest, "The CSV file has no donor rows.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch)
	defer cancel()

	created, batch, err := h.Donors.InsertMany(ctx, res.Donors)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "donors: import insert", err, "Could not save imported donors.")
		return
	}
	h.Metrics.ImportResult(len(created), 0)
	h.Metrics.DonorCreated("import", len(created))
	h.Log.Info("donor import stored", zap.String("import_batch", batch), zap.Int("count", len(created)))
	h.Audit.Admin(r.Context(), r, audit.EventDonorsImported, "", map[string]string{
		"import_batch": batch,
		"count":        strconv.Itoa(len(created)),
	})

	uierrors.WriteJSON(w, http.StatusCreated, importResponse{Imported: len(created), ImportBatch: batch})
}

// importSource picks the CSV stream out of the request.
func importSource(r *http.Request) (io.Reader, func(), error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(csvutil.MaxUploadSize); err != nil {
			return nil, func() {}, err
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, func() {}, err
		}
		return file, func() { _ = file.Close() }, nil
	}
	return r.Body, func() {}, nil
}
