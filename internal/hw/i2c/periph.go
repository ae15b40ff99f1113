package i2c

import (
	"fmt"

	"github.com/cjeanneret/BenchyGo/internal/debug"
	pconn "periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// HostBus is the real implementation on top of periph.io, which speaks to
// the Linux /dev/i2c-* device nodes.
type HostBus struct {
	bus pconn.BusCloser
}

// NewHostBus opens the named I2C bus ("" selects the first available one).
func NewHostBus(name string) (*HostBus, error) {
	debug.Info("Initializing real I2C bus (periph.io)")

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}

	debug.Verbose("I2C bus %q open", name)
	return &HostBus{bus: bus}, nil
}

func (h *HostBus) ReadReg(addr, reg byte, buf []byte) error {
	debug.I2C("ReadReg", addr, reg, len(buf))
	if err := h.bus.Tx(uint16(addr), []byte{reg}, buf); err != nil {
		return fmt.Errorf("i2c read addr=0x%02X reg=0x%02X: %w", addr, reg, err)
	}
	return nil
}

func (h *HostBus) Tx(addr byte, w, r []byte) error {
	debug.I2C("Tx", addr, 0, len(r))
	if err := h.bus.Tx(uint16(addr), w, r); err != nil {
		return fmt.Errorf("i2c tx addr=0x%02X: %w", addr, err)
	}
	return nil
}

func (h *HostBus) Close() error {
	debug.Trace("I2C Close (real bus)")
	return h.bus.Close()
}
