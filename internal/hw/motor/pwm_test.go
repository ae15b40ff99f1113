package motor

import "testing"

func TestPulseUS(t *testing.T) {
	cases := []struct {
		name  string
		value int
		want  uint32
	}{
		{"zero_throttle", 0, 1000},
		{"full_scale", 2047, 2000},
		{"negative_clamped", -50, 1000},
		{"over_scale_clamped", 5000, 2000},
		{"bench_max", 600, 1000 + uint32(600*1000/2047)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := pulseUS(tc.value); got != tc.want {
				t.Errorf("pulseUS(%d) = %d, want %d", tc.value, got, tc.want)
			}
		})
	}
}

func TestMock_RecordsSequence(t *testing.T) {
	m := &Mock{}
	_ = m.Start()
	_ = m.Arm()
	_ = m.SetAllThrottles([]int{70, 70})
	_ = m.SetThrottle(1, 300)
	_ = m.Disarm()
	_ = m.Stop()

	wantOps := []string{"start", "arm", "setAll", "set", "disarm", "stop"}
	if len(m.Calls) != len(wantOps) {
		t.Fatalf("recorded %d calls, want %d", len(m.Calls), len(wantOps))
	}
	for i, op := range wantOps {
		if m.Calls[i].Op != op {
			t.Errorf("call %d: op = %q, want %q", i, m.Calls[i].Op, op)
		}
	}
	if got := m.Calls[3]; got.Channel != 1 || got.Value != 300 {
		t.Errorf("set call = %+v, want channel 1 value 300", got)
	}
}
