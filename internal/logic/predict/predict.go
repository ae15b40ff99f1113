package predict

import "time"

// Corrector compensates the fixed group delay of an IMU's fusion filter by
// extrapolating the reported angle forward with the estimated angular rate.
// The lead time is the filter's group delay (~60 ms for a BNO08x game
// rotation vector) and is independent of the loop dt.
//
// This is a constant-velocity approximation: it cancels the lag for steady
// motion but under- or over-shoots during abrupt acceleration.
type Corrector struct {
	leadSeconds float64
	prev        float64
	seeded      bool
}

// New creates a corrector for the given sensor lead time.
func New(leadTime time.Duration) *Corrector {
	return &Corrector{leadSeconds: leadTime.Seconds()}
}

// Seed sets the previous angle without producing a prediction. Call once with
// the first reading of a session so the first Predict has a rate reference.
func (c *Corrector) Seed(deg float64) {
	c.prev = deg
	c.seeded = true
}

// Predict returns the angle extrapolated by leadTime, estimating the angular
// rate from the previous call. dt is the elapsed time in seconds since that
// call; a zero or negative dt yields a zero rate (no extrapolation).
func (c *Corrector) Predict(current, dt float64) float64 {
	var rate float64
	if dt > 0 && c.seeded {
		rate = (current - c.prev) / dt
	}
	c.prev = current
	c.seeded = true
	return current + rate*c.leadSeconds
}
