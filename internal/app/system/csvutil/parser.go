// internal/app/system/csvutil/parser.go
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/bloodgroup"
	"github.com/dalemusser/donorhub/internal/app/system/eligibility"
	"github.com/dalemusser/donorhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/donorhub/internal/domain/models"
)

// RowError describes one rejected line of an import file.
type RowError struct {
	Line   int      `json:"line"` // 1-based; 0 when the file itself is malformed
	Reason string   `json:"reason"`
	Raw    []string `json:"raw,omitempty"`
}

func (e RowError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

// ParsedResult holds the outcome of ParseDonorsCSV. Callers must not store
// any donor when Errors is non-empty.
type ParsedResult struct {
	Donors []models.Donor
	Errors []RowError
}

// HasErrors returns true if there are any validation errors.
func (r *ParsedResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// column identifies an importable field.
type column int

const (
	colIgnored column = iota
	colName
	colContact
	colCity
	colUniversity
	colDepartment
	colSemester
	colBloodGroup
	colLastDonation
	colHostel
	colSemesterEnd
	colDateAdded
	colGender
)

// headerAliases maps a normalised header cell to its column.
var headerAliases = map[string]column{
	"name":               colName,
	"full name":          colName,
	"contact":            colContact,
	"phone":              colContact,
	"city":               colCity,
	"university":         colUniversity,
	"department":         colDepartment,
	"semester":           colSemester,
	"blood group":        colBloodGroup,
	"last donation date": colLastDonation,
	"last donation":      colLastDonation,
	"hostel resident":    colHostel,
	"hostel":             colHostel,
	"semester end date":  colSemesterEnd,
	"date added":         colDateAdded,
	"gender":             colGender,
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// defaultLayout is the column mapping used when a file has no header row:
// the export order.
func defaultLayout() []column {
	out := make([]column, len(ExportHeaders))
	for i, h := range ExportHeaders {
		out[i] = headerAliases[normalizeHeader(h)]
	}
	return out
}

// headerLayout returns the column mapping for rec when it is a header row.
// A header must name at least the Name and Blood Group columns.
func headerLayout(rec []string) ([]column, bool) {
	layout := make([]column, len(rec))
	var hasName, hasGroup bool
	for i, cell := range rec {
		c := headerAliases[normalizeHeader(cell)]
		layout[i] = c
		hasName = hasName || c == colName
		hasGroup = hasGroup || c == colBloodGroup
	}
	return layout, hasName && hasGroup
}

// ParseDonorsCSV reads a donor file. A header row is optional; without one
// the columns are expected in export order. Each data row must carry a name,
// a contact and a valid blood group. Dates are YYYY-MM-DD, with "Never",
// "N/A" or blank meaning absent.
//
// Returns ErrTooManyRows if MaxRows is exceeded (when MaxRows > 0).
func ParseDonorsCSV(r io.Reader, opts ParseOptions) (ParsedResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := ParsedResult{Donors: []models.Donor{}}

	first, err := reader.Read()
	if err == io.EOF {
		return result, nil
	}
	if err != nil {
		result.Errors = append(result.Errors, RowError{Line: 0, Reason: err.Error()})
		return result, nil
	}
	if len(first) > 0 {
		first[0] = strings.TrimPrefix(first[0], "\ufeff")
	}

	layout, isHeader := headerLayout(first)
	type rawRow struct {
		line int
		rec  []string
	}
	var rows []rawRow
	if !isHeader {
		layout = defaultLayout()
		rows = append(rows, rawRow{line: 1, rec: first})
	}

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			result.Errors = append(result.Errors, RowError{Line: line, Reason: err.Error()})
			continue
		}
		line, _ := reader.FieldPos(0)
		if opts.MaxRows > 0 && len(rows) >= opts.MaxRows {
			return result, ErrTooManyRows
		}
		rows = append(rows, rawRow{line: line, rec: rec})
	}
	if result.HasErrors() {
		return result, nil
	}

	for _, row := range rows {
		d, rowErr := parseRow(layout, row.rec, row.line)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		if d == nil {
			continue
		}
		result.Donors = append(result.Donors, *d)
	}
	if result.HasErrors() {
		result.Donors = []models.Donor{}
	}
	return result, nil
}

// parseRow converts one data row. Returns nil,nil for rows with no content.
func parseRow(layout []column, rec []string, line int) (*models.Donor, *RowError) {
	fail := func(format string, args ...any) *RowError {
		return &RowError{Line: line, Reason: fmt.Sprintf(format, args...), Raw: rec}
	}

	var d models.Donor
	empty := true
	for i, cell := range rec {
		cell = unescapeCell(strings.TrimSpace(cell))
		if cell == "" || i >= len(layout) {
			continue
		}
		empty = false

		switch layout[i] {
		case colName:
			d.Name = htmlsanitize.PlainText(cell)
		case colContact:
			d.Contact = htmlsanitize.PlainText(cell)
		case colCity:
			d.City = htmlsanitize.PlainText(cell)
		case colUniversity:
			d.University = htmlsanitize.PlainText(cell)
		case colDepartment:
			d.Department = htmlsanitize.PlainText(cell)
		case colSemester:
			d.Semester = htmlsanitize.PlainText(cell)
		case colBloodGroup:
			g, err := bloodgroup.Parse(cell)
			if err != nil {
				return nil, fail("invalid blood group %q", cell)
			}
			d.BloodGroup = string(g)
		case colLastDonation:
			t, ok := parseOptionalDate(cell)
			if !ok {
				return nil, fail("invalid last donation date %q", cell)
			}
			d.LastDonationDate = t
		case colSemesterEnd:
			t, ok := parseOptionalDate(cell)
			if !ok {
				return nil, fail("invalid semester end date %q", cell)
			}
			d.SemesterEndDate = t
		case colDateAdded:
			t, ok := parseOptionalDate(cell)
			if !ok {
				return nil, fail("invalid date added %q", cell)
			}
			if t != nil {
				d.DateAdded = *t
			}
		case colHostel:
			b, ok := parseYesNo(cell)
			if !ok {
				return nil, fail("hostel resident must be Yes or No, got %q", cell)
			}
			d.IsHostelResident = b
		case colGender:
			g, ok := NormalizeGender(cell)
			if !ok {
				return nil, fail("gender must be Male or Female, got %q", cell)
			}
			d.Gender = g
		}
	}
	if empty {
		return nil, nil
	}

	switch {
	case d.Name == "":
		return nil, fail("missing name")
	case d.Contact == "":
		return nil, fail("missing contact")
	case d.BloodGroup == "":
		return nil, fail("missing blood group")
	}
	return &d, nil
}

// parseOptionalDate accepts a calendar date or one of the absent markers.
// Timestamps are reduced to the UTC midnight of the day they name.
// ok is false for any other text.
func parseOptionalDate(s string) (*time.Time, bool) {
	switch strings.ToLower(s) {
	case "", "never", "n/a", "na", "-":
		return nil, true
	}
	t := eligibility.ParseDate(s)
	return t, t != nil
}

func parseYesNo(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "1":
		return true, true
	case "no", "n", "false", "0":
		return false, true
	}
	return false, false
}

// NormalizeGender maps user input onto "Male" or "Female". Blank input is
// accepted as unknown.
func NormalizeGender(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", true
	case "male", "m":
		return "Male", true
	case "female", "f":
		return "Female", true
	}
	return "", false
}
