package gpio

import (
	"github.com/cjeanneret/BenchyGo/internal/debug"
)

// Level represents the logical state of a GPIO pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// PinMode indicates whether a GPIO is input or output.
type PinMode int

const (
	Input PinMode = iota
	Output
)

// Pull selects the internal resistor for input pins. The panel buttons are
// active LOW and need pull-ups.
type Pull int

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Driver defines the abstract interface for controlling GPIOs.
// This allows plugging in a real Raspberry Pi implementation
// or a mock for development on PC.
type Driver interface {
	SetupPin(pin int, mode PinMode) error
	SetupPinPull(pin int, mode PinMode, pull Pull) error
	WritePin(pin int, level Level) error
	ReadPin(pin int) (Level, error)
	Close() error
}

// MockDriver is a test implementation that logs actions and serves scripted
// input levels. Used for development on PC or testing.
type MockDriver struct {
	// Inputs maps a pin to a queue of levels returned by successive ReadPin
	// calls; the last level repeats once the queue is exhausted. Pins with no
	// entry read High (buttons are active LOW, so "not pressed").
	Inputs map[int][]Level
	// Written records every WritePin call as (pin, level) pairs.
	Written []PinWrite

	reads map[int]int
}

// PinWrite is one recorded WritePin call.
type PinWrite struct {
	Pin   int
	Level Level
}

// NewDriver creates a GPIO driver based on the chosen mode.
// If mock is true, returns a MockDriver (for dev/test).
// If mock is false, returns a real RPiDriver (for Raspberry Pi).
func NewDriver(mock bool) (Driver, error) {
	if mock {
		debug.Info("Using MOCK GPIO driver (development mode)")
		return &MockDriver{}, nil
	}
	return NewRPiRealDriver()
}

func (m *MockDriver) SetupPin(pin int, mode PinMode) error {
	debug.GPIO("SetupPin", pin, mode)
	return nil
}

func (m *MockDriver) SetupPinPull(pin int, mode PinMode, pull Pull) error {
	debug.GPIO("SetupPinPull", pin, pull)
	return nil
}

func (m *MockDriver) WritePin(pin int, level Level) error {
	debug.GPIO("WritePin", pin, level)
	m.Written = append(m.Written, PinWrite{Pin: pin, Level: level})
	return nil
}

func (m *MockDriver) ReadPin(pin int) (Level, error) {
	queue, ok := m.Inputs[pin]
	if !ok || len(queue) == 0 {
		debug.GPIO("ReadPin", pin, High)
		return High, nil
	}
	if m.reads == nil {
		m.reads = make(map[int]int)
	}
	i := m.reads[pin]
	if i >= len(queue) {
		i = len(queue) - 1
	} else {
		m.reads[pin]++
	}
	debug.GPIO("ReadPin", pin, queue[i])
	return queue[i], nil
}

func (m *MockDriver) Close() error {
	debug.Trace("GPIO Close (mock)")
	return nil
}
