package rtc

import (
	"fmt"
	"time"

	"github.com/cjeanneret/BenchyGo/internal/hw/i2c"
)

// DefaultAddr is the I2C address shared by the PCF8523 family.
const DefaultAddr = 0x68

// regSeconds is the first time register; seconds through years follow in
// seven consecutive BCD bytes.
const regSeconds = 0x03

// Clock provides the wall time used to name telemetry session directories.
type Clock interface {
	Now() (time.Time, error)
}

// PCF8523 reads the Adalogger real-time clock over I2C.
type PCF8523 struct {
	bus  i2c.Bus
	addr byte
}

// New creates a PCF8523 clock on the given bus. addr 0 selects DefaultAddr.
func New(bus i2c.Bus, addr byte) *PCF8523 {
	if addr == 0 {
		addr = DefaultAddr
	}
	return &PCF8523{bus: bus, addr: addr}
}

// Now reads the current date and time from the RTC.
func (c *PCF8523) Now() (time.Time, error) {
	var buf [7]byte
	if err := c.bus.ReadReg(c.addr, regSeconds, buf[:]); err != nil {
		return time.Time{}, fmt.Errorf("rtc read: %w", err)
	}
	return time.Date(
		bcd(buf[6])+2000,             // year
		time.Month(bcd(buf[5]&0x1F)), // month
		bcd(buf[3]),                  // day (buf[4] is weekday)
		bcd(buf[2]),                  // hour
		bcd(buf[1]),                  // minute
		bcd(buf[0]&0x7F),             // second (bit 7 = oscillator-stop flag)
		0, time.UTC,
	), nil
}

// bcd decodes a BCD byte to an integer.
func bcd(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}

// System is a Clock on the host wall clock, for rigs without an RTC fitted.
type System struct{}

func (System) Now() (time.Time, error) {
	return time.Now(), nil
}
