package i2c

import (
	"fmt"

	"github.com/cjeanneret/BenchyGo/internal/debug"
)

// Bus is the abstract register-level I2C interface used by the sensor
// drivers. A real bus talks to /dev/i2c-* via periph.io; the mock serves
// programmed register maps for development on PC and tests.
type Bus interface {
	// ReadReg reads len(buf) bytes starting at register reg of device addr.
	ReadReg(addr, reg byte, buf []byte) error
	// Tx performs a raw write-then-read transaction, for devices that speak
	// a packet protocol rather than a register map (BNO08x). Either w or r
	// may be empty.
	Tx(addr byte, w, r []byte) error
	Close() error
}

// MockBus serves register reads from in-memory device maps and raw reads
// from a scripted queue.
type MockBus struct {
	// Devices maps device address -> register -> bytes starting at that
	// register. Multi-byte reads walk consecutive registers.
	Devices map[byte]map[byte]byte
	// RawReads is consumed one entry per raw read transaction; short entries
	// zero-fill the remainder.
	RawReads [][]byte
	// Writes records every raw write.
	Writes [][]byte

	rawIdx int
}

// NewBus opens an I2C bus. If mock is true, returns an empty MockBus;
// otherwise opens the named host bus (e.g. "1" or "/dev/i2c-1") via periph.
func NewBus(mock bool, name string) (Bus, error) {
	if mock {
		debug.Info("Using MOCK I2C bus (development mode)")
		return &MockBus{Devices: make(map[byte]map[byte]byte)}, nil
	}
	return NewHostBus(name)
}

// SetReg programs one register of a mock device.
func (m *MockBus) SetReg(addr, reg, value byte) {
	if m.Devices == nil {
		m.Devices = make(map[byte]map[byte]byte)
	}
	dev, ok := m.Devices[addr]
	if !ok {
		dev = make(map[byte]byte)
		m.Devices[addr] = dev
	}
	dev[reg] = value
}

// SetReg16 programs a 12/16-bit big-endian value across two registers, the
// layout the AS5600 uses for its angle and magnitude registers.
func (m *MockBus) SetReg16(addr, reg byte, value uint16) {
	m.SetReg(addr, reg, byte(value>>8))
	m.SetReg(addr, reg+1, byte(value))
}

func (m *MockBus) ReadReg(addr, reg byte, buf []byte) error {
	dev, ok := m.Devices[addr]
	if !ok {
		return fmt.Errorf("i2c mock: no device at 0x%02X", addr)
	}
	for i := range buf {
		buf[i] = dev[reg+byte(i)]
	}
	debug.I2C("ReadReg", addr, reg, buf)
	return nil
}

func (m *MockBus) Tx(addr byte, w, r []byte) error {
	if len(w) > 0 {
		m.Writes = append(m.Writes, append([]byte(nil), w...))
	}
	if len(r) > 0 {
		if m.rawIdx >= len(m.RawReads) {
			return fmt.Errorf("i2c mock: raw read queue exhausted (read %d)", m.rawIdx)
		}
		copy(r, m.RawReads[m.rawIdx])
		for i := len(m.RawReads[m.rawIdx]); i < len(r); i++ {
			r[i] = 0
		}
		m.rawIdx++
	}
	debug.I2C("Tx", addr, 0, len(r))
	return nil
}

func (m *MockBus) Close() error {
	debug.Trace("I2C Close (mock)")
	return nil
}
