package panel

import (
	"testing"

	"github.com/cjeanneret/BenchyGo/internal/hw/gpio"
)

func testPins() Pins {
	return Pins{
		ButtonA: 12, ButtonB: 13, ButtonY: 15,
		LEDRed: 6, LEDGreen: 7, LEDBlue: 8,
	}
}

func TestArmComboHeld(t *testing.T) {
	cases := []struct {
		name string
		b, y gpio.Level
		want bool
	}{
		{"both_pressed", gpio.Low, gpio.Low, true},
		{"only_b", gpio.Low, gpio.High, false},
		{"only_y", gpio.High, gpio.Low, false},
		{"none", gpio.High, gpio.High, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			drv := &gpio.MockDriver{Inputs: map[int][]gpio.Level{
				13: {tc.b},
				15: {tc.y},
			}}
			p, err := NewGPIOPanel(drv, testPins())
			if err != nil {
				t.Fatalf("NewGPIOPanel: %v", err)
			}
			got, err := p.ArmComboHeld()
			if err != nil {
				t.Fatalf("ArmComboHeld: %v", err)
			}
			if got != tc.want {
				t.Errorf("ArmComboHeld = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGoPressed(t *testing.T) {
	drv := &gpio.MockDriver{Inputs: map[int][]gpio.Level{
		12: {gpio.High, gpio.Low},
	}}
	p, err := NewGPIOPanel(drv, testPins())
	if err != nil {
		t.Fatalf("NewGPIOPanel: %v", err)
	}
	if got, _ := p.GoPressed(); got {
		t.Error("first poll: GoPressed = true, want false")
	}
	if got, _ := p.GoPressed(); !got {
		t.Error("second poll: GoPressed = false, want true")
	}
}

func TestSetLED_ActiveLow(t *testing.T) {
	drv := &gpio.MockDriver{}
	p, err := NewGPIOPanel(drv, testPins())
	if err != nil {
		t.Fatalf("NewGPIOPanel: %v", err)
	}
	drv.Written = nil

	if err := p.SetLED(LEDGreen); err != nil {
		t.Fatalf("SetLED: %v", err)
	}
	got := map[int]gpio.Level{}
	for _, w := range drv.Written {
		got[w.Pin] = w.Level
	}
	if got[7] != gpio.Low {
		t.Errorf("green pin = %v, want Low (lit)", got[7])
	}
	if got[6] != gpio.High || got[8] != gpio.High {
		t.Errorf("red/blue pins = %v/%v, want High (off)", got[6], got[8])
	}
}

func TestMock_QueueRepeatsLastValue(t *testing.T) {
	m := &Mock{ArmCombo: []bool{false, true}}
	want := []bool{false, true, true, true}
	for i, w := range want {
		got, err := m.ArmComboHeld()
		if err != nil {
			t.Fatalf("poll %d: %v", i, err)
		}
		if got != w {
			t.Errorf("poll %d: ArmComboHeld = %v, want %v", i, got, w)
		}
	}
}
