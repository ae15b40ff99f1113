package web

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// Event is a single message for SSE clients: either an operator status line
// or a raw telemetry row.
type Event struct {
	Time string `json:"t"`
	Kind string `json:"k"` // "status" or "telemetry"
	Msg  string `json:"msg"`
}

// Broadcaster distributes events to multiple SSE clients.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[chan string]struct{}
}

// NewBroadcaster creates a new broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[chan string]struct{}),
	}
}

// Subscribe returns a channel that receives broadcast messages and a cleanup
// function. The caller must call the returned cleanup when done (e.g. on
// client disconnect).
func (b *Broadcaster) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 64)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	unsub := func() {
		b.mu.Lock()
		delete(b.clients, ch)
		b.mu.Unlock()
		close(ch)
	}
	return ch, unsub
}

// Broadcast sends an event to all subscribed clients. Slow clients miss
// events (non-blocking, buffered): the browser view is an observer, never a
// back-pressure source on the control loop.
func (b *Broadcaster) Broadcast(kind, msg string) {
	evt := Event{
		Time: time.Now().Format(time.RFC3339),
		Kind: kind,
		Msg:  msg,
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	payload := string(data)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- payload:
		default:
			// channel full, skip
		}
	}
}

// BroadcastStatus is a convenience for kind "status".
func (b *Broadcaster) BroadcastStatus(msg string) {
	b.Broadcast("status", msg)
}

// BroadcastWriter wraps the broadcaster as an io.Writer; each Write becomes a
// status event. Used to tee the debug log to connected browsers.
func BroadcastWriter(b *Broadcaster) *broadcastWriter {
	return &broadcastWriter{b: b}
}

type broadcastWriter struct {
	b *Broadcaster
}

func (w *broadcastWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg != "" {
		w.b.BroadcastStatus(msg)
	}
	return len(p), nil
}

// Sink adapts the broadcaster to the telemetry sink contract, fanning rows
// out to SSE clients. Ephemeral: Flush and Close are no-ops and nothing is
// retained for late joiners.
type Sink struct {
	B *Broadcaster
}

func (s *Sink) Write(line string) error {
	s.B.Broadcast("telemetry", line)
	return nil
}

func (s *Sink) Flush() error { return nil }
func (s *Sink) Close() error { return nil }
