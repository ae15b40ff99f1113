package imu

import (
	"encoding/binary"
	"fmt"

	"github.com/cjeanneret/BenchyGo/internal/debug"
	"github.com/cjeanneret/BenchyGo/internal/hw/i2c"
)

const (
	// DefaultBNO08xAddr is the BNO08x I2C address with the SA0 pin low.
	DefaultBNO08xAddr = 0x4A

	shtpChannelControl = 2
	shtpChannelReports = 3

	reportSetFeature   = 0xFD
	reportTimebase     = 0xFB
	reportGameRotation = 0x08

	// Rotation vector components are fixed-point Q14.
	rotationScale = 1.0 / 16384.0

	maxPacket = 128
)

// BNO08x drives a BNO08x fusion IMU over its SHTP I2C transport. Only the
// game rotation vector report is consumed; the chip runs the sensor fusion,
// we just poll the quaternion.
type BNO08x struct {
	bus  i2c.Bus
	addr byte
	seq  byte

	current [4]float64 // qr, qi, qj, qk
	buf     [maxPacket]byte
}

// NewBNO08x creates a driver for the device at addr (0 selects the default
// address 0x4A).
func NewBNO08x(bus i2c.Bus, addr byte) *BNO08x {
	if addr == 0 {
		addr = DefaultBNO08xAddr
	}
	debug.Verbose("BNO08x at 0x%02X", addr)
	return &BNO08x{bus: bus, addr: addr, current: [4]float64{1, 0, 0, 0}}
}

// EnableRotation sends the set-feature command for the game rotation vector
// at the given report rate.
func (b *BNO08x) EnableRotation(hertz int) error {
	if hertz <= 0 {
		return fmt.Errorf("bno08x: invalid report rate %d Hz", hertz)
	}
	intervalUS := uint32(1_000_000 / hertz)

	payload := make([]byte, 17)
	payload[0] = reportSetFeature
	payload[1] = reportGameRotation
	binary.LittleEndian.PutUint32(payload[5:9], intervalUS)
	// flags, change sensitivity, batch interval and sensor-specific config
	// stay zero: report continuously at the requested rate.

	if err := b.send(shtpChannelControl, payload); err != nil {
		return fmt.Errorf("bno08x enable rotation: %w", err)
	}
	debug.Info("BNO08x game rotation vector enabled at %d Hz", hertz)
	return nil
}

// UpdateSensors reads one SHTP packet if the device has one pending and
// updates the stored quaternion when it carries a rotation report.
func (b *BNO08x) UpdateSensors() (bool, error) {
	var header [4]byte
	if err := b.bus.Tx(b.addr, nil, header[:]); err != nil {
		return false, fmt.Errorf("bno08x read header: %w", err)
	}
	// bit 15 of the length flags a continuation of an earlier oversized
	// packet; the length itself is the low 15 bits.
	length := int(header[0]) | int(header[1]&0x7F)<<8
	if length == 0 {
		return false, nil
	}
	if length > maxPacket {
		// Oversized packets (startup advertisements) are drained and ignored;
		// reading less than the announced length makes the chip drop the rest.
		length = maxPacket
	}

	packet := b.buf[:length]
	if err := b.bus.Tx(b.addr, nil, packet); err != nil {
		return false, fmt.Errorf("bno08x read packet: %w", err)
	}
	if packet[2] != shtpChannelReports {
		return false, nil
	}

	return b.parseReports(packet[4:]), nil
}

// Quaternion returns the latest fused orientation as (real, i, j, k).
func (b *BNO08x) Quaternion() (qr, qi, qj, qk float64) {
	return b.current[0], b.current[1], b.current[2], b.current[3]
}

// parseReports walks the report stream of one input packet and returns true
// if a game rotation vector was found.
func (b *BNO08x) parseReports(body []byte) bool {
	i := 0
	for i < len(body) {
		switch body[i] {
		case reportTimebase:
			i += 5
		case reportGameRotation:
			// ID, seq, status, delay, then i/j/k/real as Q14 int16.
			if i+12 > len(body) {
				return false
			}
			qi := int16(binary.LittleEndian.Uint16(body[i+4 : i+6]))
			qj := int16(binary.LittleEndian.Uint16(body[i+6 : i+8]))
			qk := int16(binary.LittleEndian.Uint16(body[i+8 : i+10]))
			qr := int16(binary.LittleEndian.Uint16(body[i+10 : i+12]))
			b.current = [4]float64{
				float64(qr) * rotationScale,
				float64(qi) * rotationScale,
				float64(qj) * rotationScale,
				float64(qk) * rotationScale,
			}
			return true
		default:
			// Unknown report, no length information to skip by. Drop the
			// rest of the packet.
			return false
		}
	}
	return false
}

// send writes one SHTP packet on the given channel.
func (b *BNO08x) send(channel byte, payload []byte) error {
	packet := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint16(packet[0:2], uint16(len(packet)))
	packet[2] = channel
	packet[3] = b.seq
	b.seq++
	copy(packet[4:], payload)
	return b.bus.Tx(b.addr, packet, nil)
}
