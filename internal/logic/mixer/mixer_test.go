package mixer

import "testing"

func TestCompute(t *testing.T) {
	m := New(300, 70, 600)
	cases := []struct {
		name   string
		output float64
		wantM1 int
		wantM2 int
	}{
		{"zero_output", 0, 300, 300},
		{"small_positive", 50, 350, 250},
		{"small_negative", -50, 250, 350},
		{"saturates_both", 1000, 600, 70},
		{"saturates_both_negative", -1000, 70, 600},
		{"saturates_high_only", 280, 580, 70},
		{"fraction_truncated", 10.9, 310, 290},
		{"negative_fraction_truncated", -10.9, 290, 310},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m1, m2 := m.Compute(tc.output)
			if m1 != tc.wantM1 || m2 != tc.wantM2 {
				t.Errorf("Compute(%g) = (%d, %d), want (%d, %d)",
					tc.output, m1, m2, tc.wantM1, tc.wantM2)
			}
		})
	}
}

func TestCompute_IndependentClamping(t *testing.T) {
	// One channel hitting a limit must not shift the other: no joint
	// renormalization.
	m := New(100, 70, 600)
	m1, m2 := m.Compute(200)
	if m1 != 300 {
		t.Errorf("m1 = %d, want 300", m1)
	}
	if m2 != 70 {
		t.Errorf("m2 = %d, want clamp 70", m2)
	}
}

func TestCompute_Stateless(t *testing.T) {
	m := New(300, 70, 600)
	m.Compute(5000)
	m1, m2 := m.Compute(0)
	if m1 != 300 || m2 != 300 {
		t.Errorf("after saturation, Compute(0) = (%d, %d), want (300, 300)", m1, m2)
	}
}
