package motor

import (
	"fmt"
	"sync"

	"github.com/cjeanneret/BenchyGo/internal/debug"
)

// ThrottleGroup is the abstract motor command transport: a pair of ESC
// channels with an arm/disarm/start/stop lifecycle. Throttle values are
// device-range integers; callers clamp before commanding.
type ThrottleGroup interface {
	// Start powers up the signal generator.
	Start() error
	// Stop halts signal output. Safe to call in any state, repeatedly.
	Stop() error
	// Arm runs the ESC arming sequence (sustained zero throttle).
	Arm() error
	// Disarm returns the ESCs to their safe idle state.
	Disarm() error
	// SetThrottle commands one channel.
	SetThrottle(channel, value int) error
	// SetAllThrottles commands every channel at once.
	SetAllThrottles(values []int) error
}

// Call is one recorded transport invocation, for test assertions.
type Call struct {
	Op      string // "start", "stop", "arm", "disarm", "set", "setAll"
	Channel int
	Value   int
	Values  []int
}

// Mock records the full call sequence issued by the state machine.
type Mock struct {
	mu    sync.Mutex
	Calls []Call
	// FailSet, when set, is returned by the next SetThrottle call.
	FailSet error
}

func (m *Mock) record(c Call) {
	m.mu.Lock()
	m.Calls = append(m.Calls, c)
	m.mu.Unlock()
}

func (m *Mock) Start() error  { m.record(Call{Op: "start"}); return nil }
func (m *Mock) Stop() error   { m.record(Call{Op: "stop"}); return nil }
func (m *Mock) Arm() error    { m.record(Call{Op: "arm"}); return nil }
func (m *Mock) Disarm() error { m.record(Call{Op: "disarm"}); return nil }

func (m *Mock) SetThrottle(channel, value int) error {
	if m.FailSet != nil {
		err := m.FailSet
		m.FailSet = nil
		return err
	}
	m.record(Call{Op: "set", Channel: channel, Value: value})
	return nil
}

func (m *Mock) SetAllThrottles(values []int) error {
	vals := append([]int(nil), values...)
	m.record(Call{Op: "setAll", Values: vals})
	return nil
}

// CountOp returns how many recorded calls have the given op.
func (m *Mock) CountOp(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// NewGroup creates a motor transport. If mock is true a recording Mock is
// returned; otherwise a PWM ESC driver on the given GPIO pins.
func NewGroup(mock bool, pins []int, throttleMin, throttleMax int) (ThrottleGroup, error) {
	if mock {
		debug.Info("Using MOCK motor transport (development mode)")
		return &Mock{}, nil
	}
	if len(pins) == 0 {
		return nil, fmt.Errorf("no motor pins configured")
	}
	return NewPWMGroup(pins, throttleMin, throttleMax)
}
