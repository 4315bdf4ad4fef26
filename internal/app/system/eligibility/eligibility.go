// Package eligibility decides whether a donor may give blood again.
//
// Every function takes "now" explicitly so results are reproducible; callers
// in handlers pass time.Now().UTC().
package eligibility

import (
	"strings"
	"time"

	"github.com/dalemusser/donorhub/internal/domain/models"
)

// CooldownMonths is the number of calendar months a donor waits between
// donations.
const CooldownMonths = 3

// DateLayout is the calendar-date form used on the wire and in CSV files.
const DateLayout = "2006-01-02"

// IsAvailable reports whether a donor whose last donation was last may give
// again at now. A nil last means the donor has never given.
//
// The comparison shifts now back by CooldownMonths on the month field (Go's
// AddDate, which normalises overflowing days, e.g. May 31 − 3 months is
// March 3 in a non-leap year), so the window varies with month length. A
// donation that falls exactly on the shifted instant counts as available.
func IsAvailable(last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}
	threshold := now.AddDate(0, -CooldownMonths, 0)
	return !last.After(threshold)
}

// NextEligibleDate returns last advanced by CooldownMonths calendar months,
// or nil when there is no last donation.
func NextEligibleDate(last *time.Time) *time.Time {
	if last == nil {
		return nil
	}
	next := last.AddDate(0, CooldownMonths, 0)
	return &next
}

// HasGraduated reports whether semesterEnd is present and strictly before now.
func HasGraduated(semesterEnd *time.Time, now time.Time) bool {
	return semesterEnd != nil && semesterEnd.Before(now)
}

// DaysSince returns the whole days elapsed between last and now. ok is false
// when the donor has never given.
func DaysSince(last *time.Time, now time.Time) (days int, ok bool) {
	if last == nil {
		return 0, false
	}
	return int(now.Sub(*last) / (24 * time.Hour)), true
}

// ParseDate parses a calendar date (YYYY-MM-DD) or an RFC 3339 timestamp
// and returns that day as UTC midnight. A timestamp keeps the calendar day
// it names in its own offset: 2023-06-01T00:30:00+05:00 is 2023-06-01.
// Blank or unparseable input yields nil: a bad date is treated as "absent",
// which is already a meaningful state (never donated / no semester end).
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &day
	}
	return nil
}

// FormatDate renders t as YYYY-MM-DD, or fallback when t is nil.
func FormatDate(t *time.Time, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.Format(DateLayout)
}

// Status bundles the derived values shown next to a donor.
type Status struct {
	Available     bool       `json:"available"`
	NextEligible  *time.Time `json:"next_eligible_date,omitempty"`
	Graduated     bool       `json:"graduated"`
	DaysSinceLast *int       `json:"days_since_last_donation,omitempty"`
}

// Evaluate computes the derived values for d at now.
func Evaluate(d models.Donor, now time.Time) Status {
	st := Status{
		Available:    IsAvailable(d.LastDonationDate, now),
		NextEligible: NextEligibleDate(d.LastDonationDate),
		Graduated:    HasGraduated(d.SemesterEndDate, now),
	}
	if days, ok := DaysSince(d.LastDonationDate, now); ok {
		st.DaysSinceLast = &days
	}
	return st
}
