package telemetry

import (
	"fmt"

	"github.com/cjeanneret/BenchyGo/internal/debug"
	"go.bug.st/serial"
)

// SerialSink streams telemetry lines to a ground station over a serial port.
// Line-oriented and unbuffered: each row is written as soon as it clears the
// decimation window, so a crash loses at most one line.
type SerialSink struct {
	port serial.Port
}

// NewSerialSink opens the named port (e.g. /dev/ttyUSB0) at the given baud
// rate, 8N1.
func NewSerialSink(portName string, baud int) (*SerialSink, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	debug.Info("Telemetry streaming to %s @ %d baud", portName, baud)
	return &SerialSink{port: port}, nil
}

func (s *SerialSink) Write(line string) error {
	_, err := s.port.Write([]byte(line + "\r\n"))
	return err
}

func (s *SerialSink) Flush() error {
	return s.port.Drain()
}

func (s *SerialSink) Close() error {
	if err := s.port.Drain(); err != nil {
		return err
	}
	return s.port.Close()
}
