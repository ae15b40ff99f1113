package telemetry

import (
	"fmt"
	"io"
)

// Sink is the output backend contract of the recorder. Implementations own
// their medium's lifecycle; the recorder never touches files or devices.
type Sink interface {
	// Write emits one CSV line.
	Write(line string) error
	// Flush pushes buffered data to the medium.
	Flush() error
	// Close flushes and releases the medium. The sink is unusable afterwards.
	Close() error
}

// ConfigWriter is the optional sink capability to persist the run
// configuration alongside the data.
type ConfigWriter interface {
	WriteConfig(text string) error
}

// ConsoleSink writes lines to an io.Writer (typically stdout). Flush and
// Close are no-ops: the console owns its own buffering.
type ConsoleSink struct {
	W io.Writer
}

func (c *ConsoleSink) Write(line string) error {
	_, err := fmt.Fprintln(c.W, line)
	return err
}

func (c *ConsoleSink) Flush() error { return nil }
func (c *ConsoleSink) Close() error { return nil }

// MultiSink fans every operation out to all children. All children are
// driven even after an error; the first error is returned.
type MultiSink struct {
	Sinks []Sink
}

func (m *MultiSink) Write(line string) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.Write(line); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *MultiSink) Flush() error {
	var first error
	for _, s := range m.Sinks {
		if err := s.Flush(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *MultiSink) Close() error {
	var first error
	for _, s := range m.Sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WriteConfig forwards the config to every child that can persist it.
func (m *MultiSink) WriteConfig(text string) error {
	var first error
	for _, s := range m.Sinks {
		if cw, ok := s.(ConfigWriter); ok {
			if err := cw.WriteConfig(text); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
