// Package bloodgroup models the eight ABO/Rh blood groups and the rules for
// which donor groups may safely give to which recipient groups.
//
// The recipient table is the single source of truth. The donor-side view
// (CanDonateTo) is computed from it when the package loads, so the two
// directions cannot drift apart.
package bloodgroup

import (
	"errors"
	"fmt"
	"strings"
)

// Group is one of the eight canonical ABO/Rh blood groups.
type Group string

const (
	APos  Group = "A+"
	ANeg  Group = "A-"
	BPos  Group = "B+"
	BNeg  Group = "B-"
	ABPos Group = "AB+"
	ABNeg Group = "AB-"
	OPos  Group = "O+"
	ONeg  Group = "O-"
)

// ErrInvalidBloodGroup is returned for any value outside the eight canonical
// groups. Callers must not treat it as "no compatible donors".
var ErrInvalidBloodGroup = errors.New("invalid blood group")

// canonical order used for listings, CSV and dashboards.
var all = [...]Group{APos, ANeg, BPos, BNeg, ABPos, ABNeg, OPos, ONeg}

// All returns the eight groups in canonical order.
func All() []Group {
	out := make([]Group, len(all))
	copy(out, all[:])
	return out
}

// index returns the position of g in canonical order, or -1.
func (g Group) index() int {
	for i, c := range all {
		if c == g {
			return i
		}
	}
	return -1
}

// Valid reports whether g is one of the eight canonical groups.
func (g Group) Valid() bool { return g.index() >= 0 }

func (g Group) String() string { return string(g) }

// Parse normalises s (surrounding space, letter case) and validates it.
func Parse(s string) (Group, error) {
	g := Group(strings.ToUpper(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidBloodGroup, s)
	}
	return g, nil
}

// MustParse is Parse for constants in tests and tables. It panics on error.
func MustParse(s string) Group {
	g, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return g
}
