package angle

import (
	"math"
	"testing"
)

func TestWrapError_KnownValues(t *testing.T) {
	cases := []struct {
		name string
		diff int
		want int
	}{
		{"zero", 0, 0},
		{"small_positive", 10, 10},
		{"small_negative", -10, -10},
		{"wrap_positive", 4085, -11},
		{"wrap_negative", -4085, 11},
		{"half_scale", 2048, 2048},
		{"just_over_half", 2049, -2047},
		{"just_under_neg_half", -2049, 2047},
		{"full_scale", 4095, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WrapError(tc.diff)
			if got != tc.want {
				t.Errorf("WrapError(%d) = %d, want %d", tc.diff, got, tc.want)
			}
		})
	}
}

func TestWrapError_RangeAndCongruence(t *testing.T) {
	// Result must stay in [-2048, 2047] and be congruent to the input mod 4096
	// for any single-wrap difference between two raw readings.
	for diff := -4095; diff <= 4095; diff++ {
		got := WrapError(diff)
		// diff == Steps/2 is ambiguous (both directions are equally short) and
		// is left untouched, hence the inclusive upper bound.
		if got < -Steps/2 || got > Steps/2 {
			t.Fatalf("WrapError(%d) = %d out of range", diff, got)
		}
		if (got-diff)%Steps != 0 {
			t.Fatalf("WrapError(%d) = %d not congruent mod %d", diff, got, Steps)
		}
	}
}

func TestToDegrees(t *testing.T) {
	cases := []struct {
		name         string
		raw, center  int
		want         float64
	}{
		{"at_center", 422, 422, 0},
		{"one_step", 423, 422, DegPerStep},
		{"quarter_turn", 1446, 422, 90},
		{"wrap_boundary", 5, 4090, 11 * DegPerStep},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToDegrees(tc.raw, tc.center)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("ToDegrees(%d, %d) = %g, want %g", tc.raw, tc.center, got, tc.want)
			}
		})
	}
}

func TestToDegrees_CenterAlwaysZero(t *testing.T) {
	for _, center := range []int{0, 1, 422, 2048, 4095} {
		if got := ToDegrees(center, center); got != 0 {
			t.Errorf("ToDegrees(%d, %d) = %g, want 0", center, center, got)
		}
	}
}

func TestToQuat_RollRoundTrip(t *testing.T) {
	for _, deg := range []float64{-90, -45.5, -1, 0, 0.088, 30, 179} {
		qr, qi, qj, qk := ToQuat(deg)
		if qj != 0 || qk != 0 {
			t.Fatalf("ToQuat(%g): qj=%g qk=%g, want 0", deg, qj, qk)
		}
		if norm := qr*qr + qi*qi; math.Abs(norm-1) > 1e-9 {
			t.Errorf("ToQuat(%g): norm %g, want 1", deg, norm)
		}
		if back := RollDegrees(qr, qi); math.Abs(back-deg) > 1e-9 {
			t.Errorf("RollDegrees(ToQuat(%g)) = %g", deg, back)
		}
	}
}
