package mixer

// Mixer distributes a single scalar control output across the two motors of a
// lever as a symmetric differential around a base throttle. Each channel is
// clamped independently: one channel saturating never distorts the other.
type Mixer struct {
	base        int
	throttleMin int
	throttleMax int
}

// New creates a mixer with the given base throttle and clamp limits.
func New(base, throttleMin, throttleMax int) *Mixer {
	return &Mixer{
		base:        base,
		throttleMin: throttleMin,
		throttleMax: throttleMax,
	}
}

// Compute returns the (m1, m2) throttle commands for the given PID output.
// The output is truncated toward zero before allocation; both channels are
// clamped to [min, max] without joint renormalization.
func (m *Mixer) Compute(pidOutput float64) (m1, m2 int) {
	delta := int(pidOutput)
	m1 = m.clamp(m.base + delta)
	m2 = m.clamp(m.base - delta)
	return m1, m2
}

func (m *Mixer) clamp(v int) int {
	if v < m.throttleMin {
		return m.throttleMin
	}
	if v > m.throttleMax {
		return m.throttleMax
	}
	return v
}
