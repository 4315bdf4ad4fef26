// internal/app/features/donors/handler.go
package donors

import (
	"time"

	uierrors "github.com/dalemusser/donorhub/internal/app/features/errors"
	donorstore "github.com/dalemusser/donorhub/internal/app/store/donors"
	"github.com/dalemusser/donorhub/internal/app/system/auditlog"
	"github.com/dalemusser/donorhub/internal/app/system/csvutil"
	"github.com/dalemusser/donorhub/internal/app/system/metrics"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// defaultExportPrefix names export files when none is configured.
const defaultExportPrefix = "blood_donors"

// Handler serves the donor registry API.
type Handler struct {
	Donors  *donorstore.Store
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
	Metrics *metrics.Metrics
	Audit   *auditlog.Logger

	ExportPrefix  string
	MaxImportRows int

	// Now is the evaluation instant for availability. Defaults to UTC wall time.
	Now func() time.Time
}

// NewHandler wires the donor store. m and audit may be nil.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, m *metrics.Metrics, auditLog *auditlog.Logger, exportPrefix string, maxImportRows int, logger *zap.Logger) *Handler {
	if exportPrefix == "" {
		exportPrefix = defaultExportPrefix
	}
	if maxImportRows <= 0 {
		maxImportRows = csvutil.MaxRows
	}
	return &Handler{
		Donors:        donorstore.New(db),
		Log:           logger,
		ErrLog:        errLog,
		Metrics:       m,
		Audit:         auditLog,
		ExportPrefix:  exportPrefix,
		MaxImportRows: maxImportRows,
		Now:           func() time.Time { return time.Now().UTC() },
	}
}
