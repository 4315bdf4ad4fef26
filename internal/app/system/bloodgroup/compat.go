package bloodgroup

import (
	"fmt"
	"strings"
)

// Set is an immutable set of blood groups, one bit per canonical group.
type Set uint8

// NewSet builds a Set from groups. Invalid groups are ignored.
func NewSet(groups ...Group) Set {
	var s Set
	for _, g := range groups {
		if i := g.index(); i >= 0 {
			s |= 1 << uint(i)
		}
	}
	return s
}

// Has reports whether g is in the set.
func (s Set) Has(g Group) bool {
	i := g.index()
	return i >= 0 && s&(1<<uint(i)) != 0
}

// Len returns the number of groups in the set.
func (s Set) Len() int {
	n := 0
	for v := s; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// Slice returns the members in canonical order.
func (s Set) Slice() []Group {
	out := make([]Group, 0, s.Len())
	for i, g := range all {
		if s&(1<<uint(i)) != 0 {
			out = append(out, g)
		}
	}
	return out
}

// Strings returns the members as strings in canonical order.
func (s Set) Strings() []string {
	gs := s.Slice()
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = string(g)
	}
	return out
}

func (s Set) String() string {
	return "{" + strings.Join(s.Strings(), ", ") + "}"
}

// acceptsFrom is the authoritative ABO/Rh table: recipient → donor groups
// whose blood the recipient may safely receive.
var acceptsFrom = map[Group]Set{
	APos:  NewSet(APos, ANeg, OPos, ONeg),
	ANeg:  NewSet(ANeg, ONeg),
	BPos:  NewSet(BPos, BNeg, OPos, ONeg),
	BNeg:  NewSet(BNeg, ONeg),
	ABPos: NewSet(APos, ANeg, BPos, BNeg, ABPos, ABNeg, OPos, ONeg),
	ABNeg: NewSet(ANeg, BNeg, ABNeg, ONeg),
	OPos:  NewSet(OPos, ONeg),
	ONeg:  NewSet(ONeg),
}

// givesTo is the inverse of acceptsFrom: donor → recipient groups.
var givesTo = invert(acceptsFrom)

// invert returns the relation donor → recipients such that donor d gives to
// recipient r iff r accepts from d.
func invert(table map[Group]Set) map[Group]Set {
	out := make(map[Group]Set, len(all))
	for _, donor := range all {
		var s Set
		for _, recipient := range all {
			if table[recipient].Has(donor) {
				s |= NewSet(recipient)
			}
		}
		out[donor] = s
	}
	return out
}

// CompatibleDonorsFor returns the donor groups that may give to a recipient
// of the given group.
func CompatibleDonorsFor(recipient Group) (Set, error) {
	s, ok := acceptsFrom[recipient]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBloodGroup, string(recipient))
	}
	return s, nil
}

// CanDonateTo returns the recipient groups a donor of the given group may
// give to.
func CanDonateTo(donor Group) (Set, error) {
	s, ok := givesTo[donor]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBloodGroup, string(donor))
	}
	return s, nil
}

// Compatible reports whether donor may give to recipient. Both groups must be
// valid.
func Compatible(donor, recipient Group) (bool, error) {
	s, err := CompatibleDonorsFor(recipient)
	if err != nil {
		return false, err
	}
	if !donor.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidBloodGroup, string(donor))
	}
	return s.Has(donor), nil
}
