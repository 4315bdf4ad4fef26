// Package donorquery filters, ranks and summarises a snapshot of donors.
//
// It is a pure query layer: callers load the donor list from the store,
// pass it in together with a Filter and the evaluation instant, and get new
// slices back. Input slices and records are never modified.
package donorquery

import (
	"strings"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/bloodgroup"
	"github.com/dalemusser/donorhub/internal/app/system/eligibility"
	"github.com/dalemusser/donorhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Availability is the tri-state availability filter.
type Availability string

const (
	AvailabilityAll         Availability = "all"
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
)

// ParseAvailability maps user input onto an Availability. Anything other
// than "available" or "unavailable" means no constraint.
func ParseAvailability(s string) Availability {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "available":
		return AvailabilityAvailable
	case "unavailable":
		return AvailabilityUnavailable
	default:
		return AvailabilityAll
	}
}

// Filter has one optional field per filter dimension. The zero value
// matches every donor.
type Filter struct {
	BloodGroup *bloodgroup.Group

	// Case-insensitive containment on the matching field.
	Name       string
	City       string
	University string
	Department string

	// Contact is matched verbatim (phone numbers keep their formatting).
	Contact string

	// Text matches when any of name, contact, city, university or blood
	// group contains it.
	Text string

	Availability Availability
	Gender       string // "" matches any
	// HostelResident nil means either.
	HostelResident *bool

	// Inclusive calendar-day bounds on DateAdded.
	AddedFrom *time.Time
	AddedTo   *time.Time
}

// Active reports whether any dimension constrains the result.
func (f Filter) Active() bool {
	return f.BloodGroup != nil ||
		f.Name != "" || f.City != "" || f.University != "" || f.Department != "" ||
		f.Contact != "" || f.Text != "" ||
		(f.Availability != "" && f.Availability != AvailabilityAll) ||
		f.Gender != "" || f.HostelResident != nil ||
		f.AddedFrom != nil || f.AddedTo != nil
}

// withoutBloodGroup returns f with the blood-group dimension cleared.
func (f Filter) withoutBloodGroup() Filter {
	f.BloodGroup = nil
	return f
}

// Match reports whether d satisfies every active dimension of f at now.
func Match(d models.Donor, f Filter, now time.Time) bool {
	if f.BloodGroup != nil && bloodgroup.Group(d.BloodGroup) != *f.BloodGroup {
		return false
	}
	if !containsFold(d.Name, f.Name) ||
		!containsFold(d.City, f.City) ||
		!containsFold(d.University, f.University) ||
		!containsFold(d.Department, f.Department) {
		return false
	}
	if f.Contact != "" && !strings.Contains(d.Contact, f.Contact) {
		return false
	}
	if f.Text != "" && !matchesText(d, f.Text) {
		return false
	}

	switch f.Availability {
	case AvailabilityAvailable:
		if !eligibility.IsAvailable(d.LastDonationDate, now) {
			return false
		}
	case AvailabilityUnavailable:
		if eligibility.IsAvailable(d.LastDonationDate, now) {
			return false
		}
	}

	if f.Gender != "" && !strings.EqualFold(d.Gender, f.Gender) {
		return false
	}
	if f.HostelResident != nil && d.IsHostelResident != *f.HostelResident {
		return false
	}

	added := calendarDay(d.DateAdded)
	if f.AddedFrom != nil && added.Before(calendarDay(*f.AddedFrom)) {
		return false
	}
	if f.AddedTo != nil && added.After(calendarDay(*f.AddedTo)) {
		return false
	}
	return true
}

func matchesText(d models.Donor, q string) bool {
	return containsFold(d.Name, q) ||
		strings.Contains(d.Contact, q) ||
		containsFold(d.City, q) ||
		containsFold(d.University, q) ||
		containsFold(d.BloodGroup, q)
}

// containsFold is a case- and diacritic-insensitive substring test. An empty
// needle always matches.
func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(text.Fold(haystack), text.Fold(needle))
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
