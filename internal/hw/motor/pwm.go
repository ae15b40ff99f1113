package motor

import (
	"fmt"
	"time"

	"github.com/cjeanneret/BenchyGo/internal/debug"
	"github.com/stianeikeland/go-rpio/v4"
)

// ESC PWM signaling: a 50 Hz pulse train whose high time encodes the
// throttle, 1000 µs = zero, 2000 µs = full scale.
const (
	pwmPeriodUS   = 20000 // 50 Hz frame
	pwmMinPulseUS = 1000
	pwmMaxPulseUS = 2000

	// Throttle commands use the 11-bit range common to digital ESC
	// protocols; the PWM driver maps it linearly onto the pulse width.
	fullScale = 2047
)

// PWMGroup drives a set of ESCs over Raspberry Pi hardware PWM pins.
// Channel indexes follow the pin slice order.
type PWMGroup struct {
	pins    []rpio.Pin
	started bool
}

// NewPWMGroup opens the GPIO memory map and configures one PWM channel per
// pin. The throttle limits are accepted for interface symmetry but clamping
// stays the caller's responsibility.
func NewPWMGroup(pinNums []int, throttleMin, throttleMax int) (*PWMGroup, error) {
	debug.Info("Initializing PWM motor transport on pins %v", pinNums)

	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("failed to open GPIO for PWM: %w", err)
	}

	g := &PWMGroup{}
	for _, n := range pinNums {
		p := rpio.Pin(n)
		p.Mode(rpio.Pwm)
		// 1 duty count = 1 µs: clock at period-length counts per 20 ms frame.
		p.Freq(50 * pwmPeriodUS)
		g.pins = append(g.pins, p)
	}
	return g, nil
}

func (g *PWMGroup) Start() error {
	debug.Live("Motor transport: start")
	for _, p := range g.pins {
		p.DutyCycle(0, pwmPeriodUS)
	}
	rpio.StartPwm()
	g.started = true
	return nil
}

// Stop halts the pulse train. ESCs treat signal loss as motor-off, so this is
// the unconditional safe action on every fault path.
func (g *PWMGroup) Stop() error {
	debug.Live("Motor transport: stop")
	for _, p := range g.pins {
		p.DutyCycle(0, pwmPeriodUS)
	}
	rpio.StopPwm()
	g.started = false
	return nil
}

// Arm holds zero throttle long enough for the ESC arming window.
func (g *PWMGroup) Arm() error {
	debug.Live("Motor transport: arm (zero-throttle hold)")
	if err := g.SetAllThrottles(make([]int, len(g.pins))); err != nil {
		return err
	}
	time.Sleep(500 * time.Millisecond)
	return nil
}

func (g *PWMGroup) Disarm() error {
	debug.Live("Motor transport: disarm")
	return g.SetAllThrottles(make([]int, len(g.pins)))
}

func (g *PWMGroup) SetThrottle(channel, value int) error {
	if channel < 0 || channel >= len(g.pins) {
		return fmt.Errorf("motor channel %d out of range (have %d)", channel, len(g.pins))
	}
	g.pins[channel].DutyCycle(pulseUS(value), pwmPeriodUS)
	return nil
}

func (g *PWMGroup) SetAllThrottles(values []int) error {
	if len(values) != len(g.pins) {
		return fmt.Errorf("got %d throttle values for %d channels", len(values), len(g.pins))
	}
	for i, v := range values {
		if err := g.SetThrottle(i, v); err != nil {
			return err
		}
	}
	return nil
}

// pulseUS converts a throttle command to a pulse width in µs.
func pulseUS(value int) uint32 {
	if value < 0 {
		value = 0
	}
	if value > fullScale {
		value = fullScale
	}
	return uint32(pwmMinPulseUS + value*(pwmMaxPulseUS-pwmMinPulseUS)/fullScale)
}
