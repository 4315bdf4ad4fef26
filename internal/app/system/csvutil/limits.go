// internal/app/system/csvutil/limits.go
package csvutil

import "errors"

// Upload size and row limits for CSV processing.
const (
	MaxUploadSize = 5 << 20 // 5 MB
	MaxRows       = 20000
)

// ErrTooManyRows is returned when an import holds more data rows than
// ParseOptions.MaxRows allows.
var ErrTooManyRows = errors.New("csv has too many rows")

// ParseOptions tunes ParseDonorsCSV.
type ParseOptions struct {
	// MaxRows caps the number of data rows; 0 means no cap.
	MaxRows int
}

// DefaultParseOptions returns the options used by the import endpoint when
// no row cap is configured.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{MaxRows: MaxRows}
}
