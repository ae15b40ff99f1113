package telemetry

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cjeanneret/BenchyGo/internal/debug"
	"github.com/cjeanneret/BenchyGo/internal/hw/rtc"
)

// SessionSink writes one run into its own directory on persistent storage:
//
//	<root>/<YYYY-MM-DD_HH-MM-SS>/log.csv
//	<root>/<YYYY-MM-DD_HH-MM-SS>/config.yaml   (via WriteConfig)
//
// The directory name comes from the RTC at construction so runs sort
// chronologically even when the host clock is wrong. The sink is
// single-owner: created when a session opens, closed exactly once when it
// ends. Close syncs the file and runs the optional release hook (e.g. a
// storage unmount) after the file is safely on disk.
type SessionSink struct {
	dir     string
	file    *os.File
	buf     *bufio.Writer
	release func() error
}

// NewSessionSink creates the run directory under root, named from clock, and
// opens log.csv for appends. release may be nil.
func NewSessionSink(root string, clock rtc.Clock, release func() error) (*SessionSink, error) {
	now, err := clock.Now()
	if err != nil {
		return nil, fmt.Errorf("read clock for session name: %w", err)
	}

	dir := filepath.Join(root, now.Format("2006-01-02_15-04-05"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, "log.csv"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}

	debug.Info("Telemetry session: %s", dir)
	return &SessionSink{
		dir:     dir,
		file:    f,
		buf:     bufio.NewWriter(f),
		release: release,
	}, nil
}

// Dir returns the session directory path (useful for diagnostics).
func (s *SessionSink) Dir() string {
	return s.dir
}

func (s *SessionSink) Write(line string) error {
	if _, err := s.buf.WriteString(line); err != nil {
		return err
	}
	return s.buf.WriteByte('\n')
}

func (s *SessionSink) Flush() error {
	if err := s.buf.Flush(); err != nil {
		return err
	}
	return s.file.Sync()
}

// WriteConfig persists the run configuration next to the log.
func (s *SessionSink) WriteConfig(text string) error {
	return os.WriteFile(filepath.Join(s.dir, "config.yaml"), []byte(text), 0o644)
}

// Close flushes and closes the log file, then releases the storage.
func (s *SessionSink) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	if err := s.file.Close(); err != nil {
		return err
	}
	if s.release != nil {
		return s.release()
	}
	return nil
}
