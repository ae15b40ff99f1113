package clock

import "testing"

func TestTicksDiff(t *testing.T) {
	cases := []struct {
		name     string
		new, old uint32
		want     int32
	}{
		{"forward", 1020, 1000, 20},
		{"backward", 1000, 1020, -20},
		{"equal", 500, 500, 0},
		{"wraparound", 5, 0xFFFFFFF0, 21},
		{"wraparound_backward", 0xFFFFFFF0, 5, -21},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TicksDiff(tc.new, tc.old); got != tc.want {
				t.Errorf("TicksDiff(%d, %d) = %d, want %d", tc.new, tc.old, got, tc.want)
			}
		})
	}
}

func TestMock_Timeline(t *testing.T) {
	m := &Mock{Timeline: []uint32{0, 20, 40}}
	for i, want := range []uint32{0, 20, 40, 40, 40} {
		if got := m.NowMS(); got != want {
			t.Errorf("call %d: NowMS = %d, want %d", i, got, want)
		}
	}
	m.SleepMS(15)
	if len(m.Slept) != 1 || m.Slept[0] != 15 {
		t.Errorf("Slept = %v, want [15]", m.Slept)
	}
}

func TestMonotonic_Advances(t *testing.T) {
	m := NewMonotonic()
	a := m.NowMS()
	m.SleepMS(2)
	b := m.NowMS()
	if TicksDiff(b, a) < 0 {
		t.Errorf("monotonic clock went backwards: %d then %d", a, b)
	}
}
