package telemetry

import "fmt"

// Recorder decimates and formats per-cycle telemetry rows, delegating all
// durable I/O to a Sink. It owns only the decimation counter; the counter
// belongs to the active session and resets when a new one begins.
type Recorder struct {
	sampleEvery int
	sink        Sink
	schema      Schema
	counter     int
}

// NewRecorder creates a recorder emitting every sampleEvery-th row through
// sink. sampleEvery below 1 means "every row".
func NewRecorder(sampleEvery int, sink Sink, schema Schema) *Recorder {
	if sampleEvery < 1 {
		sampleEvery = 1
	}
	return &Recorder{
		sampleEvery: sampleEvery,
		sink:        sink,
		schema:      schema,
	}
}

// BeginSession resets the decimation window and writes the schema header.
// A non-empty configText is persisted first, when the sink supports it, so
// every run folder carries the configuration that produced it.
func (r *Recorder) BeginSession(configText string) error {
	r.counter = 0
	if configText != "" {
		if cw, ok := r.sink.(ConfigWriter); ok {
			if err := cw.WriteConfig(configText); err != nil {
				return fmt.Errorf("write session config: %w", err)
			}
		}
	}
	if err := r.sink.Write(r.schema.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// Record emits the row if it lands on the decimation boundary; the first
// N-1 rows of every window are silently dropped, never buffered or averaged.
func (r *Recorder) Record(row Row) error {
	if row.Schema() != r.schema {
		return fmt.Errorf("row schema %d does not match session schema %d", row.Schema(), r.schema)
	}
	r.counter++
	if r.counter < r.sampleEvery {
		return nil
	}
	r.counter = 0
	return r.sink.Write(row.Format())
}

// EndSession flushes and closes the sink. Must run before any disarm action
// that could power down the storage, so no buffered row is lost.
func (r *Recorder) EndSession() error {
	if err := r.sink.Flush(); err != nil {
		return fmt.Errorf("flush telemetry: %w", err)
	}
	return r.sink.Close()
}
