package telemetry

import (
	"errors"
	"strings"
	"testing"
)

// memSink captures lines in memory and counts lifecycle calls.
type memSink struct {
	lines   []string
	configs []string
	flushed int
	closed  int
}

func (m *memSink) Write(line string) error { m.lines = append(m.lines, line); return nil }
func (m *memSink) Flush() error            { m.flushed++; return nil }
func (m *memSink) Close() error            { m.closed++; return nil }
func (m *memSink) WriteConfig(text string) error {
	m.configs = append(m.configs, text)
	return nil
}

func encRow(t uint32) EncoderRow {
	return EncoderRow{TMS: t, EncDeg: 1.5, Err: 1.5, P: 5.25, I: 0.1, D: -0.2, Out: 5.15, M1: 305, M2: 295}
}

func TestRecorder_Decimation(t *testing.T) {
	sink := &memSink{}
	rec := NewRecorder(10, sink, SchemaEncoder)
	if err := rec.BeginSession(""); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	for i := 1; i <= 25; i++ {
		if err := rec.Record(encRow(uint32(i))); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	// header + rows from calls #10 and #20 only
	if len(sink.lines) != 3 {
		t.Fatalf("wrote %d lines, want 3 (header + 2 rows): %v", len(sink.lines), sink.lines)
	}
	if !strings.HasPrefix(sink.lines[1], "10,") {
		t.Errorf("first row %q, want call #10", sink.lines[1])
	}
	if !strings.HasPrefix(sink.lines[2], "20,") {
		t.Errorf("second row %q, want call #20", sink.lines[2])
	}
}

func TestRecorder_EveryRowWhenSampleEveryOne(t *testing.T) {
	sink := &memSink{}
	rec := NewRecorder(1, sink, SchemaEncoder)
	_ = rec.BeginSession("")
	for i := 1; i <= 5; i++ {
		_ = rec.Record(encRow(uint32(i)))
	}
	if got := len(sink.lines) - 1; got != 5 {
		t.Errorf("wrote %d rows, want 5", got)
	}
}

func TestRecorder_BeginSessionResetsWindow(t *testing.T) {
	sink := &memSink{}
	rec := NewRecorder(10, sink, SchemaEncoder)
	_ = rec.BeginSession("")
	for i := 0; i < 9; i++ {
		_ = rec.Record(encRow(1)) // one short of emission
	}

	// new session: window starts over, the 9 pending samples do not carry
	_ = rec.BeginSession("")
	for i := 0; i < 9; i++ {
		_ = rec.Record(encRow(2))
	}
	rows := 0
	for _, l := range sink.lines {
		if !strings.HasPrefix(l, "T_MS") {
			rows++
		}
	}
	if rows != 0 {
		t.Errorf("emitted %d rows across two 9-sample windows, want 0", rows)
	}
}

func TestRecorder_HeaderPerSchema(t *testing.T) {
	cases := []struct {
		name   string
		schema Schema
		want   string
	}{
		{"encoder", SchemaEncoder, "T_MS,ENC_DEG,IMU_DEG,ERR,P,I,D,PID_OUT,M1,M2"},
		{"fused", SchemaFused, "T_MS,ENC_QR,ENC_QI,ENC_QJ,ENC_QK,IMU_QR,IMU_QI,IMU_QJ,IMU_QK,ERR,P,I,D,PID_OUT,M1,M2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &memSink{}
			rec := NewRecorder(1, sink, tc.schema)
			if err := rec.BeginSession(""); err != nil {
				t.Fatalf("BeginSession: %v", err)
			}
			if sink.lines[0] != tc.want {
				t.Errorf("header = %q, want %q", sink.lines[0], tc.want)
			}
		})
	}
}

func TestRecorder_ConfigBeforeHeader(t *testing.T) {
	sink := &memSink{}
	rec := NewRecorder(1, sink, SchemaFused)
	if err := rec.BeginSession("pid:\n  kp: 3.5\n"); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	if len(sink.configs) != 1 || !strings.Contains(sink.configs[0], "kp: 3.5") {
		t.Errorf("configs = %v, want one with kp", sink.configs)
	}
	if len(sink.lines) != 1 {
		t.Errorf("lines = %v, want header only", sink.lines)
	}
}

func TestRecorder_SchemaMismatchRejected(t *testing.T) {
	sink := &memSink{}
	rec := NewRecorder(1, sink, SchemaFused)
	_ = rec.BeginSession("")
	if err := rec.Record(encRow(1)); err == nil {
		t.Error("expected error recording encoder row into fused session")
	}
}

func TestRecorder_EndSessionFlushesAndCloses(t *testing.T) {
	sink := &memSink{}
	rec := NewRecorder(10, sink, SchemaEncoder)
	_ = rec.BeginSession("")
	if err := rec.EndSession(); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if sink.flushed != 1 || sink.closed != 1 {
		t.Errorf("flushed=%d closed=%d, want 1/1", sink.flushed, sink.closed)
	}
}

type failSink struct{ memSink }

func (f *failSink) Write(string) error { return errors.New("card full") }

func TestRecorder_WriteErrorPropagates(t *testing.T) {
	rec := NewRecorder(1, &failSink{}, SchemaEncoder)
	if err := rec.BeginSession(""); err == nil {
		t.Error("expected header write error")
	}
}
