package encoder

import (
	"testing"

	"github.com/cjeanneret/BenchyGo/internal/hw/i2c"
)

func newMockEncoder() (*AS5600, *i2c.MockBus) {
	bus := &i2c.MockBus{}
	return New(bus, 0), bus
}

func TestReadRawAngle(t *testing.T) {
	cases := []struct {
		name string
		reg  uint16
		want int
	}{
		{"zero", 0x0000, 0},
		{"mid_scale", 0x0800, 2048},
		{"full_scale", 0x0FFF, 4095},
		{"typical", 0x01A6, 422},
		{"upper_nibble_masked", 0xF123, 0x123},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			enc, bus := newMockEncoder()
			bus.SetReg16(DefaultAddr, 0x0C, tc.reg)
			got, err := enc.ReadRawAngle()
			if err != nil {
				t.Fatalf("ReadRawAngle: %v", err)
			}
			if got != tc.want {
				t.Errorf("ReadRawAngle = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestReadStatus(t *testing.T) {
	enc, bus := newMockEncoder()
	bus.SetReg(DefaultAddr, 0x0B, 1<<5) // magnet detected, strength ok
	bus.SetReg(DefaultAddr, 0x1A, 64)
	bus.SetReg16(DefaultAddr, 0x1B, 1800)

	st, err := enc.ReadStatus()
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}
	if !st.MagnetDetected || st.MagnetTooWeak || st.MagnetTooStrong {
		t.Errorf("magnet flags = %+v, want detected only", st)
	}
	if st.AGC != 64 {
		t.Errorf("AGC = %d, want 64", st.AGC)
	}
	if st.Magnitude != 1800 {
		t.Errorf("Magnitude = %d, want 1800", st.Magnitude)
	}
}

func TestReadRawAngle_MissingDevice(t *testing.T) {
	enc, _ := newMockEncoder()
	if _, err := enc.ReadRawAngle(); err == nil {
		t.Error("expected error for absent device")
	}
}
