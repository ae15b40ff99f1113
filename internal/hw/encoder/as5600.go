package encoder

import (
	"fmt"

	"github.com/cjeanneret/BenchyGo/internal/debug"
	"github.com/cjeanneret/BenchyGo/internal/hw/i2c"
)

// DefaultAddr is the fixed I2C address of the AS5600.
const DefaultAddr = 0x36

// AS5600 registers.
const (
	regStatus    = 0x0B
	regRawAngle  = 0x0C
	regAGC       = 0x1A
	regMagnitude = 0x1B
)

// AS5600 is a minimal driver for the AS5600 magnetic rotary encoder. The raw
// angle is a 12-bit value in [0, 4095], reported modulo one revolution.
type AS5600 struct {
	bus  i2c.Bus
	addr byte
}

// Status reports the magnet diagnostics of the sensor.
type Status struct {
	MagnetDetected  bool
	MagnetTooWeak   bool
	MagnetTooStrong bool
	AGC             int // automatic gain control, [0,128] at 3.3V
	Magnitude       int
}

// New creates an AS5600 driver on the given bus. addr 0 selects DefaultAddr.
func New(bus i2c.Bus, addr byte) *AS5600 {
	if addr == 0 {
		addr = DefaultAddr
	}
	return &AS5600{bus: bus, addr: addr}
}

// ReadRawAngle reads the RAW ANGLE register and returns the magnet position
// in encoder steps, in the range [0, 4095].
func (a *AS5600) ReadRawAngle() (int, error) {
	return a.read12(regRawAngle)
}

// ReadStatus reads the magnet status, AGC and magnitude registers. Useful at
// startup to verify the magnet is placed correctly before flying.
func (a *AS5600) ReadStatus() (Status, error) {
	var buf [1]byte
	if err := a.bus.ReadReg(a.addr, regStatus, buf[:]); err != nil {
		return Status{}, fmt.Errorf("as5600 status: %w", err)
	}
	st := Status{
		MagnetDetected:  buf[0]&(1<<5) != 0,
		MagnetTooWeak:   buf[0]&(1<<4) != 0,
		MagnetTooStrong: buf[0]&(1<<3) != 0,
	}

	if err := a.bus.ReadReg(a.addr, regAGC, buf[:]); err != nil {
		return Status{}, fmt.Errorf("as5600 agc: %w", err)
	}
	st.AGC = int(buf[0])

	mag, err := a.read12(regMagnitude)
	if err != nil {
		return Status{}, err
	}
	st.Magnitude = mag

	debug.PrintStruct("AS5600 status", st)
	return st, nil
}

func (a *AS5600) read12(reg byte) (int, error) {
	var buf [2]byte
	if err := a.bus.ReadReg(a.addr, reg, buf[:]); err != nil {
		return 0, fmt.Errorf("as5600 reg 0x%02X: %w", reg, err)
	}
	return int(buf[0]&0x0F)<<8 | int(buf[1]), nil
}
