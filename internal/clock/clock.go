package clock

import "time"

// Ticks is the time source for the control loop. Timestamps are bounded
// millisecond counters that roll over, mirroring embedded tick counters, so
// differences must always go through TicksDiff rather than raw subtraction.
type Ticks interface {
	// NowMS returns the current tick count in milliseconds, modulo 2^32.
	NowMS() uint32
	// SleepMS blocks for the given number of milliseconds.
	SleepMS(ms int)
}

// TicksDiff returns the signed difference new-old between two tick counts,
// correct across a single counter wraparound.
func TicksDiff(new, old uint32) int32 {
	return int32(new - old)
}

// Monotonic implements Ticks on the process monotonic clock.
type Monotonic struct {
	start time.Time
}

// NewMonotonic creates a tick source anchored at construction time.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

func (m *Monotonic) NowMS() uint32 {
	return uint32(time.Since(m.start).Milliseconds())
}

func (m *Monotonic) SleepMS(ms int) {
	if ms > 0 {
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}
}

// Mock is a scripted tick source for tests. Each NowMS call returns the next
// value from the timeline (the last value repeats once exhausted); SleepMS
// advances a virtual counter instead of blocking.
type Mock struct {
	Timeline []uint32
	idx      int
	Slept    []int
}

func (m *Mock) NowMS() uint32 {
	if len(m.Timeline) == 0 {
		return 0
	}
	v := m.Timeline[m.idx]
	if m.idx < len(m.Timeline)-1 {
		m.idx++
	}
	return v
}

func (m *Mock) SleepMS(ms int) {
	m.Slept = append(m.Slept, ms)
}
