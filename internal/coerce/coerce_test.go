package coerce

import (
	"math"
	"testing"
)

func TestParseStates(t *testing.T) {
	cases := []struct {
		name  string
		in    any
		state State
		value float64
	}{
		{"nil", nil, Absent, 0},
		{"empty string", "", Absent, 0},
		{"whitespace string", "   ", Absent, 0},
		{"plain number string", "0.025", Valid, 0.025},
		{"padded number string", "  12.5 ", Valid, 12.5},
		{"negative", "-3.2", Valid, -3.2},
		{"scientific", "1e-3", Valid, 0.001},
		{"float64", 4.5, Valid, 4.5},
		{"int", 7, Valid, 7},
		{"int64", int64(9), Valid, 9},
		{"zero", "0", Valid, 0},
		{"non-numeric", "trace", Invalid, 0},
		{"mixed", "12abc", Invalid, 0},
		{"nan", math.NaN(), Invalid, 0},
		{"inf", math.Inf(1), Invalid, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := Parse(tc.in)
			if n.State != tc.state {
				t.Fatalf("Parse(%v) state = %v, want %v", tc.in, n.State, tc.state)
			}
			if n.State == Valid && n.Value != tc.value {
				t.Fatalf("Parse(%v) value = %v, want %v", tc.in, n.Value, tc.value)
			}
		})
	}
}

func TestOrDistinguishesTrueZeroFromDefaulted(t *testing.T) {
	measured := Parse("0")
	if !measured.IsValid() || measured.Or(99) != 0 {
		t.Fatalf("measured zero should stay zero, got %v", measured)
	}

	defaulted := Parse("trace")
	if defaulted.IsValid() {
		t.Fatalf("unparsable value must not be Valid")
	}
	if defaulted.Or(0) != 0 {
		t.Fatalf("defaulted value = %v, want 0", defaulted.Or(0))
	}
	if measured.State == defaulted.State {
		t.Fatalf("true zero and defaulted zero must have different states")
	}
}

func TestPickFirstPriority(t *testing.T) {
	rec := map[string]any{"lat": 12.0, "latitude": 34.0}
	n := PickFirst(rec, "latitude", "lat")
	if !n.IsValid() || n.Value != 34 {
		t.Fatalf("PickFirst priority: got %v, want 34", n.Value)
	}
}

func TestPickFirstSkipsUnparsable(t *testing.T) {
	rec := map[string]any{"latitude": "n/a", "lat": "12"}
	n := PickFirst(rec, "latitude", "lat")
	if !n.IsValid() || n.Value != 12 {
		t.Fatalf("PickFirst should fall through unparsable keys, got %+v", n)
	}
}

func TestPickFirstAbsentWhenNoCandidateMatches(t *testing.T) {
	rec := map[string]any{"other": "1"}
	if n := PickFirst(rec, "latitude", "lat"); n.State != Absent {
		t.Fatalf("expected Absent, got %+v", n)
	}
	if n := PickFirst(nil, "latitude"); n.State != Absent {
		t.Fatalf("expected Absent on nil record, got %+v", n)
	}
}

func TestPickFirstString(t *testing.T) {
	rec := map[string]any{"sample_id": "W-3", "Location": "north field", "blank": "  "}
	if got := PickFirstString(rec, "id", "sample_id", "Location"); got != "W-3" {
		t.Fatalf("PickFirstString = %q, want W-3", got)
	}
	if got := PickFirstString(rec, "blank", "Location"); got != "north field" {
		t.Fatalf("PickFirstString should skip blank values, got %q", got)
	}
	if got := PickFirstString(rec, "missing"); got != "" {
		t.Fatalf("PickFirstString = %q, want empty", got)
	}
}

func TestPtr(t *testing.T) {
	if p := Parse("1.5").Ptr(); p == nil || *p != 1.5 {
		t.Fatalf("Ptr for valid number: got %v", p)
	}
	if p := Parse("").Ptr(); p != nil {
		t.Fatalf("Ptr for absent value should be nil, got %v", *p)
	}
	if p := Parse("bad").Ptr(); p != nil {
		t.Fatalf("Ptr for invalid value should be nil, got %v", *p)
	}
}
