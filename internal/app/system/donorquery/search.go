package donorquery

import (
	"sort"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/bloodgroup"
	"github.com/dalemusser/donorhub/internal/app/system/eligibility"
	"github.com/dalemusser/donorhub/internal/domain/models"
)

// Result is the answer to one Search call.
type Result struct {
	// Matches satisfy every active filter, ranked by Sort.
	Matches []models.Donor
	// Alternatives is only filled when a blood-group filter is active: donors
	// of other groups the requested group can receive from, with every other
	// filter applied, ranked the same way.
	Alternatives []models.Donor
}

// Less is the ranking comparator: available donors first, then by ascending
// last donation date, with never-donated donors treated as the earliest date.
func Less(a, b models.Donor, now time.Time) bool {
	aAvail := eligibility.IsAvailable(a.LastDonationDate, now)
	bAvail := eligibility.IsAvailable(b.LastDonationDate, now)
	if aAvail != bAvail {
		return aAvail
	}
	switch {
	case a.LastDonationDate == nil:
		return b.LastDonationDate != nil
	case b.LastDonationDate == nil:
		return false
	default:
		return a.LastDonationDate.Before(*b.LastDonationDate)
	}
}

// Sort returns a ranked copy of donors. Equal keys keep their input order.
func Sort(donors []models.Donor, now time.Time) []models.Donor {
	out := make([]models.Donor, len(donors))
	copy(out, donors)
	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i], out[j], now)
	})
	return out
}

// Apply returns the donors matching f, ranked.
func Apply(donors []models.Donor, f Filter, now time.Time) []models.Donor {
	out := make([]models.Donor, 0, len(donors))
	for _, d := range donors {
		if Match(d, f, now) {
			out = append(out, d)
		}
	}
	return Sort(out, now)
}

// Search filters and ranks donors. When f names a blood group it also
// collects compatible donors of other groups as alternatives.
func Search(donors []models.Donor, f Filter, now time.Time) (Result, error) {
	res := Result{
		Matches:      Apply(donors, f, now),
		Alternatives: []models.Donor{},
	}
	if f.BloodGroup == nil {
		return res, nil
	}

	compatible, err := bloodgroup.CompatibleDonorsFor(*f.BloodGroup)
	if err != nil {
		return Result{}, err
	}

	rest := f.withoutBloodGroup()
	alt := make([]models.Donor, 0)
	for _, d := range donors {
		g := bloodgroup.Group(d.BloodGroup)
		if g == *f.BloodGroup || !compatible.Has(g) {
			continue
		}
		if Match(d, rest, now) {
			alt = append(alt, d)
		}
	}
	res.Alternatives = Sort(alt, now)
	return res, nil
}
