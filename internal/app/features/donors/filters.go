// internal/app/features/donors/filters.go
package donors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/donorhub/internal/app/system/bloodgroup"
	"github.com/dalemusser/donorhub/internal/app/system/csvutil"
	"github.com/dalemusser/donorhub/internal/app/system/donorquery"
	"github.com/dalemusser/donorhub/internal/app/system/eligibility"
	"github.com/dalemusser/waffle/pantry/query"
)

// parseFilter reads the donor filter from the query string.
//
// Supported: blood_group, name, contact (alias phone), city, university,
// department, q, availability (all|available|unavailable), gender
// (all|Male|Female), hostel (all|yes|no), added_from, added_to.
//
// An unknown blood group or gender is an error. Malformed dates are ignored.
func parseFilter(r *http.Request) (donorquery.Filter, error) {
	var f donorquery.Filter

	if raw := bloodGroupParam(r); raw != "" && !strings.EqualFold(raw, "all") {
		g, err := bloodgroup.Parse(raw)
		if err != nil {
			return donorquery.Filter{}, err
		}
		f.BloodGroup = &g
	}

	f.Name = query.Get(r, "name")
	f.Contact = query.Get(r, "contact")
	if f.Contact == "" {
		f.Contact = query.Get(r, "phone")
	}
	f.City = query.Get(r, "city")
	f.University = query.Get(r, "university")
	f.Department = query.Get(r, "department")
	f.Text = query.Get(r, "q")
	f.Availability = donorquery.ParseAvailability(query.Get(r, "availability"))

	if g := query.Get(r, "gender"); g != "" && !strings.EqualFold(g, "all") {
		norm, ok := csvutil.NormalizeGender(g)
		if !ok {
			return donorquery.Filter{}, fmt.Errorf("invalid gender %q", g)
		}
		f.Gender = norm
	}

	switch strings.ToLower(query.Get(r, "hostel")) {
	case "yes", "true", "1":
		v := true
		f.HostelResident = &v
	case "no", "false", "0":
		v := false
		f.HostelResident = &v
	}

	f.AddedFrom = eligibility.ParseDate(query.Get(r, "added_from"))
	f.AddedTo = eligibility.ParseDate(query.Get(r, "added_to"))
	return f, nil
}

// bloodGroupParam returns the blood_group parameter. An unencoded "+" in a
// query string decodes to a space, so "A+" arrives as "A "; that trailing
// space is read back as "+".
func bloodGroupParam(r *http.Request) string {
	raw := r.URL.Query().Get("blood_group")
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" && trimmed != raw && strings.HasSuffix(raw, " ") && !strings.HasSuffix(trimmed, "+") && !strings.HasSuffix(trimmed, "-") {
		return trimmed + "+"
	}
	return trimmed
}

func groupLabel(f donorquery.Filter) string {
	if f.BloodGroup == nil {
		return ""
	}
	return string(*f.BloodGroup)
}
