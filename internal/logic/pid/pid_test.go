package pid

import (
	"math"
	"testing"
)

func TestCompute_PureProportional(t *testing.T) {
	// With ki=kd=0 the output is kp*error on every cycle, regardless of history.
	p := New(3.5, 0, 0, 50)
	for i := 0; i < 10; i++ {
		got := p.Compute(2.0, 0.02)
		if math.Abs(got-7.0) > 1e-9 {
			t.Fatalf("cycle %d: output = %g, want 7.0", i, got)
		}
	}
}

func TestCompute_IntegralAccumulation(t *testing.T) {
	p := New(0, 1.0, 0, 50)
	e, dt := 2.0, 0.02
	for n := 1; n <= 100; n++ {
		got := p.Compute(e, dt)
		want := math.Min(50, float64(n)*e*dt)
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("cycle %d: integral term = %g, want %g", n, got, want)
		}
	}
}

func TestCompute_IntegralClamp(t *testing.T) {
	cases := []struct {
		name  string
		err   float64
		want  float64
	}{
		{"positive_windup", 100, 5},
		{"negative_windup", -100, -5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := New(0, 1.0, 0, 5)
			for i := 0; i < 50; i++ {
				p.Compute(tc.err, 0.1)
			}
			if got := p.Integral(); got != tc.want {
				t.Errorf("integral = %g, want clamp %g", got, tc.want)
			}
		})
	}
}

func TestCompute_Derivative(t *testing.T) {
	p := New(0, 0, 2.0, 50)
	p.Compute(1.0, 0.1)
	// error moved 1.0 -> 3.0 over 0.1s: derivative = 20, d term = 40
	got := p.Compute(3.0, 0.1)
	if math.Abs(got-40.0) > 1e-9 {
		t.Errorf("derivative term = %g, want 40", got)
	}
}

func TestCompute_ZeroDtGuard(t *testing.T) {
	p := New(1, 1, 1, 50)
	p.Compute(5.0, 0.02)
	for _, dt := range []float64{0, -0.01} {
		got := p.Compute(10.0, dt)
		// integral unchanged for dt<=0... actually integral += e*dt may go
		// backwards for negative dt; the guard only covers the derivative.
		if p.LastD != 0 {
			t.Errorf("dt=%g: derivative term = %g, want 0", dt, p.LastD)
		}
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("dt=%g: output = %g", dt, got)
		}
	}
}

func TestCompute_TermIntrospection(t *testing.T) {
	p := New(2, 3, 0, 50)
	out := p.Compute(1.5, 0.2)
	if math.Abs(p.LastP-3.0) > 1e-9 {
		t.Errorf("LastP = %g, want 3.0", p.LastP)
	}
	if math.Abs(p.LastI-0.9) > 1e-9 {
		t.Errorf("LastI = %g, want 0.9", p.LastI)
	}
	if math.Abs(out-(p.LastP+p.LastI+p.LastD)) > 1e-9 {
		t.Errorf("output %g != sum of terms", out)
	}
}

func TestReset_MatchesFreshController(t *testing.T) {
	gains := []float64{3.5, 0.4, 0.3}
	used := New(gains[0], gains[1], gains[2], 50)
	for i := 0; i < 20; i++ {
		used.Compute(float64(i)*0.7-3, 0.02)
	}
	used.Reset()

	fresh := New(gains[0], gains[1], gains[2], 50)
	for i := 0; i < 5; i++ {
		e := float64(i) * 1.1
		a := used.Compute(e, 0.02)
		b := fresh.Compute(e, 0.02)
		if a != b {
			t.Fatalf("cycle %d: reset controller %g != fresh %g", i, a, b)
		}
	}
}
