package pid

// PID is a discrete PID controller with integral anti-windup and per-term
// introspection. One instance owns its accumulator state; it is not safe for
// concurrent use and is meant to be reset at the start of each control session.
type PID struct {
	Kp            float64
	Ki            float64
	Kd            float64
	IntegralLimit float64

	integral  float64
	prevError float64

	// Last computed term values, retained for telemetry.
	LastP float64
	LastI float64
	LastD float64
}

// New creates a PID controller with the given gains and integral windup limit.
func New(kp, ki, kd, integralLimit float64) *PID {
	return &PID{
		Kp:            kp,
		Ki:            ki,
		Kd:            kd,
		IntegralLimit: integralLimit,
	}
}

// Compute returns the PID output for the given error and timestep in seconds.
// The integral accumulator is clamped to ±IntegralLimit so it cannot run away
// while the actuator is saturated. A zero or negative dt (clock-tick
// wraparound) yields a zero derivative instead of a division by zero.
func (p *PID) Compute(err, dt float64) float64 {
	p.integral += err * dt
	if p.integral > p.IntegralLimit {
		p.integral = p.IntegralLimit
	} else if p.integral < -p.IntegralLimit {
		p.integral = -p.IntegralLimit
	}

	var derivative float64
	if dt > 0 {
		derivative = (err - p.prevError) / dt
	}
	p.prevError = err

	p.LastP = p.Kp * err
	p.LastI = p.Ki * p.integral
	p.LastD = p.Kd * derivative
	return p.LastP + p.LastI + p.LastD
}

// Reset zeroes the integrator and derivative state for a fresh control
// session. Gains are untouched. Must be called when entering Stabilizing so a
// new flight never inherits windup from the previous one.
func (p *PID) Reset() {
	p.integral = 0
	p.prevError = 0
}

// Integral returns the current accumulator value (useful for diagnostics).
func (p *PID) Integral() float64 {
	return p.integral
}
