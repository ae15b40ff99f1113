package panel

import (
	"github.com/cjeanneret/BenchyGo/internal/hw/gpio"
)

// LED selects the panel indicator color. Exactly one color is lit at a time:
// blue for idle/ready-to-arm, green for armed/stabilizing, red for fault.
type LED int

const (
	LEDOff LED = iota
	LEDBlue
	LEDGreen
	LEDRed
)

// Port is the operator input/output surface, polled once per control cycle.
// Encapsulating the buttons and LED behind a port keeps the state machine
// free of pin-level concerns and testable with a scripted double.
type Port interface {
	// ArmComboHeld reports whether the two-button arm/disarm combination
	// (B+Y) is currently held.
	ArmComboHeld() (bool, error)
	// GoPressed reports whether the "go" button (A) is pressed.
	GoPressed() (bool, error)
	// SetLED lights the given indicator color.
	SetLED(color LED) error
}

// Pins assigns the panel GPIO lines. Buttons are active LOW with pull-ups;
// the RGB LED is common anode, also active LOW.
type Pins struct {
	ButtonA  int
	ButtonB  int
	ButtonY  int
	LEDRed   int
	LEDGreen int
	LEDBlue  int
}

// GPIOPanel implements Port on a gpio.Driver.
type GPIOPanel struct {
	gpio gpio.Driver
	pins Pins
}

// NewGPIOPanel configures the panel pins and returns the port.
func NewGPIOPanel(g gpio.Driver, pins Pins) (*GPIOPanel, error) {
	for _, pin := range []int{pins.ButtonA, pins.ButtonB, pins.ButtonY} {
		if err := g.SetupPinPull(pin, gpio.Input, gpio.PullUp); err != nil {
			return nil, err
		}
	}
	p := &GPIOPanel{gpio: g, pins: pins}
	for _, pin := range []int{pins.LEDRed, pins.LEDGreen, pins.LEDBlue} {
		if err := g.SetupPin(pin, gpio.Output); err != nil {
			return nil, err
		}
	}
	if err := p.SetLED(LEDOff); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *GPIOPanel) ArmComboHeld() (bool, error) {
	b, err := p.gpio.ReadPin(p.pins.ButtonB)
	if err != nil {
		return false, err
	}
	y, err := p.gpio.ReadPin(p.pins.ButtonY)
	if err != nil {
		return false, err
	}
	return b == gpio.Low && y == gpio.Low, nil
}

func (p *GPIOPanel) GoPressed() (bool, error) {
	a, err := p.gpio.ReadPin(p.pins.ButtonA)
	if err != nil {
		return false, err
	}
	return a == gpio.Low, nil
}

func (p *GPIOPanel) SetLED(color LED) error {
	// Active LOW: Low lights the channel.
	levels := map[int]gpio.Level{
		p.pins.LEDRed:   gpio.High,
		p.pins.LEDGreen: gpio.High,
		p.pins.LEDBlue:  gpio.High,
	}
	switch color {
	case LEDRed:
		levels[p.pins.LEDRed] = gpio.Low
	case LEDGreen:
		levels[p.pins.LEDGreen] = gpio.Low
	case LEDBlue:
		levels[p.pins.LEDBlue] = gpio.Low
	}
	for _, pin := range []int{p.pins.LEDRed, p.pins.LEDGreen, p.pins.LEDBlue} {
		if err := p.gpio.WritePin(pin, levels[pin]); err != nil {
			return err
		}
	}
	return nil
}

// Mock is a scripted Port for state-machine tests. Each poll consumes the
// next value of its queue; the last value repeats once exhausted.
type Mock struct {
	ArmCombo []bool
	Go       []bool
	LEDs     []LED

	armIdx, goIdx int
	// Err, when set, is returned by the next poll (fault injection).
	Err error
}

func next(queue []bool, idx *int) bool {
	if len(queue) == 0 {
		return false
	}
	v := queue[*idx]
	if *idx < len(queue)-1 {
		*idx++
	}
	return v
}

func (m *Mock) ArmComboHeld() (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return next(m.ArmCombo, &m.armIdx), nil
}

func (m *Mock) GoPressed() (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return next(m.Go, &m.goIdx), nil
}

func (m *Mock) SetLED(color LED) error {
	m.LEDs = append(m.LEDs, color)
	return nil
}
