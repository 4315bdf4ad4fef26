package donorquery

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/bloodgroup"
	"github.com/dalemusser/donorhub/internal/app/system/eligibility"
	"github.com/dalemusser/donorhub/internal/domain/models"
)

// topCities caps the city breakdown on the dashboard.
const topCities = 10

// GroupCount is one bar of the blood-group distribution.
type GroupCount struct {
	Group      string  `json:"group"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"` // one decimal place
}

// NamedCount is a label with the number of donors carrying it.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary holds the dashboard figures for a donor snapshot.
type Summary struct {
	Total           int          `json:"total"`
	Available       int          `json:"available"`
	Unavailable     int          `json:"unavailable"`
	HostelResidents int          `json:"hostel_residents"`
	Graduated       int          `json:"graduated"`
	GroupsPresent   int          `json:"groups_present"`
	UniversityCount int          `json:"university_count"`
	ByGroup         []GroupCount `json:"by_group"`
	TopCities       []NamedCount `json:"top_cities"`
	ByUniversity    []NamedCount `json:"by_university"`
}

// Summarize computes dashboard figures for donors at now.
func Summarize(donors []models.Donor, now time.Time) Summary {
	s := Summary{Total: len(donors)}

	groupCounts := make(map[string]int)
	var cities, universities counter
	for _, d := range donors {
		if eligibility.IsAvailable(d.LastDonationDate, now) {
			s.Available++
		}
		if d.IsHostelResident {
			s.HostelResidents++
		}
		if eligibility.HasGraduated(d.SemesterEndDate, now) {
			s.Graduated++
		}
		groupCounts[d.BloodGroup]++
		cities.add(d.City)
		universities.add(d.University)
	}
	s.Unavailable = s.Total - s.Available

	s.ByGroup = make([]GroupCount, 0, len(bloodgroup.All()))
	for _, g := range bloodgroup.All() {
		n := groupCounts[string(g)]
		if n > 0 {
			s.GroupsPresent++
		}
		gc := GroupCount{Group: string(g), Count: n}
		if s.Total > 0 {
			gc.Percentage = math.Round(float64(n)/float64(s.Total)*1000) / 10
		}
		s.ByGroup = append(s.ByGroup, gc)
	}

	s.TopCities = cities.ranked()
	if len(s.TopCities) > topCities {
		s.TopCities = s.TopCities[:topCities]
	}
	s.ByUniversity = universities.ranked()
	s.UniversityCount = len(s.ByUniversity)
	return s
}

// Universities returns the distinct non-blank universities on donors, sorted.
func Universities(donors []models.Donor) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, d := range donors {
		u := strings.TrimSpace(d.University)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// counter tallies labels, remembering first-seen order so equal counts rank
// stably. Blank labels are skipped.
type counter struct {
	order  []string
	counts map[string]int
}

func (c *counter) add(label string) {
	label = strings.TrimSpace(label)
	if label == "" {
		return
	}
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, ok := c.counts[label]; !ok {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

func (c *counter) ranked() []NamedCount {
	out := make([]NamedCount, 0, len(c.order))
	for _, l := range c.order {
		out = append(out, NamedCount{Name: l, Count: c.counts[l]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
