package bloodgroup

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Group
		wantErr bool
	}{
		{"canonical", "AB-", ABNeg, false},
		{"lowercase", "ab+", ABPos, false},
		{"padded", "  O-  ", ONeg, false},
		{"empty", "", "", true},
		{"unknown letter", "C+", "", true},
		{"missing rh", "A", "", true},
		{"word form", "O negative", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBloodGroup) {
					t.Fatalf("Parse(%q) err = %v, want ErrInvalidBloodGroup", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompatibleDonorsFor_Table(t *testing.T) {
	tests := []struct {
		recipient Group
		want      []Group
	}{
		{APos, []Group{APos, ANeg, OPos, ONeg}},
		{ANeg, []Group{ANeg, ONeg}},
		{BPos, []Group{BPos, BNeg, OPos, ONeg}},
		{BNeg, []Group{BNeg, ONeg}},
		{ABPos, []Group{APos, ANeg, BPos, BNeg, ABPos, ABNeg, OPos, ONeg}},
		{ABNeg, []Group{ANeg, BNeg, ABNeg, ONeg}},
		{OPos, []Group{OPos, ONeg}},
		{ONeg, []Group{ONeg}},
	}

	for _, tt := range tests {
		t.Run(string(tt.recipient), func(t *testing.T) {
			got, err := CompatibleDonorsFor(tt.recipient)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != NewSet(tt.want...) {
				t.Errorf("CompatibleDonorsFor(%s) = %s, want %s", tt.recipient, got, NewSet(tt.want...))
			}
		})
	}
}

func TestCanDonateTo_Derived(t *testing.T) {
	tests := []struct {
		donor Group
		want  []Group
	}{
		{APos, []Group{APos, ABPos}},
		{ANeg, []Group{APos, ANeg, ABPos, ABNeg}},
		{BPos, []Group{BPos, ABPos}},
		{BNeg, []Group{BPos, BNeg, ABPos, ABNeg}},
		{ABPos, []Group{ABPos}},
		{ABNeg, []Group{ABPos, ABNeg}},
		{OPos, []Group{APos, BPos, ABPos, OPos}},
		{ONeg, []Group{APos, ANeg, BPos, BNeg, ABPos, ABNeg, OPos, ONeg}},
	}

	for _, tt := range tests {
		t.Run(string(tt.donor), func(t *testing.T) {
			got, err := CanDonateTo(tt.donor)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != NewSet(tt.want...) {
				t.Errorf("CanDonateTo(%s) = %s, want %s", tt.donor, got, NewSet(tt.want...))
			}
		})
	}
}

// Every ordered pair must agree between the two directions.
func TestCompatibility_MirrorForAllPairs(t *testing.T) {
	pairs := 0
	for _, donor := range All() {
		for _, recipient := range All() {
			accepts, err := CompatibleDonorsFor(recipient)
			if err != nil {
				t.Fatalf("CompatibleDonorsFor(%s): %v", recipient, err)
			}
			gives, err := CanDonateTo(donor)
			if err != nil {
				t.Fatalf("CanDonateTo(%s): %v", donor, err)
			}
			if accepts.Has(donor) != gives.Has(recipient) {
				t.Errorf("donor %s / recipient %s: accepts=%v gives=%v",
					donor, recipient, accepts.Has(donor), gives.Has(recipient))
			}
			pairs++
		}
	}
	if pairs != 64 {
		t.Fatalf("checked %d pairs, want 64", pairs)
	}
}

func TestUniversalDonorAndRecipient(t *testing.T) {
	accepts, _ := CompatibleDonorsFor(ABPos)
	if accepts.Len() != 8 {
		t.Errorf("AB+ accepts %d groups, want 8", accepts.Len())
	}
	gives, _ := CanDonateTo(ONeg)
	if gives.Len() != 8 {
		t.Errorf("O- gives to %d groups, want 8", gives.Len())
	}
}

func TestInvalidGroup_ReturnsError(t *testing.T) {
	if _, err := CompatibleDonorsFor(Group("Z+")); !errors.Is(err, ErrInvalidBloodGroup) {
		t.Errorf("CompatibleDonorsFor: err = %v, want ErrInvalidBloodGroup", err)
	}
	if _, err := CanDonateTo(Group("")); !errors.Is(err, ErrInvalidBloodGroup) {
		t.Errorf("CanDonateTo: err = %v, want ErrInvalidBloodGroup", err)
	}
	if _, err := Compatible(Group("X"), APos); !errors.Is(err, ErrInvalidBloodGroup) {
		t.Errorf("Compatible: err = %v, want ErrInvalidBloodGroup", err)
	}
}

func TestSet_SliceCanonicalOrder(t *testing.T) {
	s := NewSet(ONeg, APos, ABNeg)
	got := s.Strings()
	want := []string{"A+", "AB-", "O-"}
	if len(got) != len(want) {
		t.Fatalf("Strings() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Strings()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
