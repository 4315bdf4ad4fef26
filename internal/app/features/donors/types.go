// internal/app/features/donors/types.go
package donors

import (
	"strings"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/bloodgroup"
	"github.com/dalemusser/donorhub/internal/app/system/csvutil"
	"github.com/dalemusser/donorhub/internal/app/system/eligibility"
	"github.com/dalemusser/donorhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/donorhub/internal/domain/models"
)

// donorView is a donor with its derived eligibility values.
type donorView struct {
	models.Donor
	eligibility.Status
}

func evaluate(d models.Donor, now time.Time) eligibility.Status {
	return eligibility.Evaluate(d, now)
}

func viewsOf(donors []models.Donor, now time.Time) []donorView {
	out := make([]donorView, 0, len(donors))
	for _, d := range donors {
		out = append(out, donorView{Donor: d, Status: evaluate(d, now)})
	}
	return out
}

// donorInput is the JSON body for create, update and batch rows. Dates are
// YYYY-MM-DD; blank means absent.
type donorInput struct {
	Name             string `json:"name"`
	Contact          string `json:"contact"`
	City             string `json:"city"`
	University       string `json:"university"`
	Department       string `json:"department"`
	Semester         string `json:"semester"`
	Gender           string `json:"gender"`
	BloodGroup       string `json:"blood_group"`
	LastDonationDate string `json:"last_donation_date"`
	IsHostelResident *bool  `json:"is_hostel_resident"`
	SemesterEndDate  string `json:"semester_end_date"`
	DateAdded        string `json:"date_added"`
}

// batchPreset carries the shared values of a mass-entry session.
type batchPreset struct {
	City             string `json:"city"`
	University       string `json:"university"`
	Department       string `json:"department"`
	Semester         string `json:"semester"`
	SemesterEndDate  string `json:"semester_end_date"`
	IsHostelResident *bool  `json:"is_hostel_resident"`
}

type batchRequest struct {
	Preset batchPreset  `json:"preset"`
	Donors []donorInput `json:"donors"`
}

// apply fills blank fields of in from the preset.
func (p batchPreset) apply(in donorInput) donorInput {
	fill := func(dst *string, v string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = v
		}
	}
	fill(&in.City, p.City)
	fill(&in.University, p.University)
	fill(&in.Department, p.Department)
	fill(&in.Semester, p.Semester)
	fill(&in.SemesterEndDate, p.SemesterEndDate)
	if in.IsHostelResident == nil {
		in.IsHostelResident = p.IsHostelResident
	}
	return in
}

// toDonor sanitises and validates in. problems lists every field error.
func (in donorInput) toDonor() (models.Donor, []string) {
	htmlsanitize.Fields(&in.Name, &in.Contact, &in.City, &in.University, &in.Department, &in.Semester)

	var problems []string
	d := models.Donor{
		Name:       in.Name,
		Contact:    in.Contact,
		City:       in.City,
		University: in.University,
		Department: in.Department,
		Semester:   in.Semester,
	}
	if d.Name == "" {
		problems = append(problems, "name is required")
	}
	if d.Contact == "" {
		problems = append(problems, "contact is required")
	}

	if strings.TrimSpace(in.BloodGroup) == "" {
		problems = append(problems, "blood_group is required")
	} else if g, err := bloodgroup.Parse(in.BloodGroup); err != nil {
		problems = append(problems, "blood_group must be one of "+strings.Join(bloodgroup.NewSet(bloodgroup.All()...).Strings(), ", "))
	} else {
		d.BloodGroup = string(g)
	}

	if g, ok := csvutil.NormalizeGender(in.Gender); ok {
		d.Gender = g
	} else {
		problems = append(problems, "gender must be Male or Female")
	}

	if in.IsHostelResident != nil {
		d.IsHostelResident = *in.IsHostelResident
	}

	parseDate := func(field, v string) *time.Time {
		if strings.TrimSpace(v) == "" {
			return nil
		}
		t := eligibility.ParseDate(v)
		if t == nil {
			problems = append(problems, field+" must be a date (YYYY-MM-DD)")
		}
		return t
	}
	d.LastDonationDate = parseDate("last_donation_date", in.LastDonationDate)
	d.SemesterEndDate = parseDate("semester_end_date", in.SemesterEndDate)
	if t := parseDate("date_added", in.DateAdded); t != nil {
		d.DateAdded = *t
	}

	return d, problems
}
