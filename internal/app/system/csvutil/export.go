// Package csvutil reads and writes the donor CSV format.
//
// Import accepts the same columns Export produces; derived columns
// (Next Donation Date, Available, Graduated) are ignored on the way in.
package csvutil

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/eligibility"
	"github.com/dalemusser/donorhub/internal/domain/models"
)

// ExportHeaders is the column order of an exported donor file.
var ExportHeaders = []string{
	"Name",
	"Contact",
	"City",
	"University",
	"Department",
	"Semester",
	"Blood Group",
	"Last Donation Date",
	"Next Donation Date",
	"Available",
	"Hostel Resident",
	"Semester End Date",
	"Graduated",
	"Date Added",
	"Gender",
}

// utf8BOM makes Excel open the file as Unicode.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// formulaLead holds the leading characters that make Excel, LibreOffice and
// Google Sheets evaluate a cell as a formula.
const formulaLead = "=+-@\t\r"

// escapeCell prefixes a cell that would be evaluated as a formula with a
// single quote, which spreadsheets display as literal text.
func escapeCell(s string) string {
	if s != "" && strings.IndexByte(formulaLead, s[0]) >= 0 {
		return "'" + s
	}
	return s
}

// unescapeCell undoes escapeCell so an exported file imports unchanged.
func unescapeCell(s string) string {
	if len(s) > 1 && s[0] == '\'' && strings.IndexByte(formulaLead, s[1]) >= 0 {
		return s[1:]
	}
	return s
}

// DonorRecord renders one donor as an export row evaluated at now. Cells
// that a spreadsheet would run as a formula are escaped.
func DonorRecord(d models.Donor, now time.Time) []string {
	st := eligibility.Evaluate(d, now)
	added := d.DateAdded
	rec := []string{
		d.Name,
		d.Contact,
		d.City,
		d.University,
		d.Department,
		d.Semester,
		d.BloodGroup,
		eligibility.FormatDate(d.LastDonationDate, "Never"),
		eligibility.FormatDate(st.NextEligible, "N/A"),
		yesNo(st.Available),
		yesNo(d.IsHostelResident),
		eligibility.FormatDate(d.SemesterEndDate, "N/A"),
		yesNo(st.Graduated),
		eligibility.FormatDate(&added, "N/A"),
		d.Gender,
	}
	for i, cell := range rec {
		rec[i] = escapeCell(cell)
	}
	return rec
}

// WriteDonors writes a BOM, the header row and one row per donor, in the
// order given. Rows end in CRLF.
func WriteDonors(w io.Writer, donors []models.Donor, now time.Time) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(ExportHeaders); err != nil {
		return err
	}
	for _, d := range donors {
		if err := cw.Write(DonorRecord(d, now)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
