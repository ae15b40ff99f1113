package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// StateFunc reports the current flight state for the /state endpoint.
type StateFunc func() string

// RigInfo is the static rig description served at /state next to the live
// flight state.
type RigInfo struct {
	IMUEnabled  bool    `json:"imu_enabled"`
	IntervalMs  int     `json:"interval_ms"`
	SampleEvery int     `json:"sample_every"`
	Kp          float64 `json:"kp"`
	Ki          float64 `json:"ki"`
	Kd          float64 `json:"kd"`
}

// Server exposes the live status and telemetry streams over HTTP. It is a
// passive observer of the control loop: handlers only read shared state and
// subscribe to the broadcaster, never mutate control state.
type Server struct {
	addr        string
	broadcaster *Broadcaster
	state       StateFunc
	info        RigInfo
}

// NewServer creates a server configured for the given address and dependencies.
func NewServer(addr string, b *Broadcaster, state StateFunc, info RigInfo) *Server {
	return &Server{
		addr:        addr,
		broadcaster: b,
		state:       state,
		info:        info,
	}
}

// Mux returns an http.Handler with all routes registered.
func (s *Server) Mux() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /stream", s.handleStream)
	mux.HandleFunc("GET /{$}", s.handleIndex) // exact match for root only

	return mux
}

// Run starts the server and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Mux()}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("web server listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// handleState returns the flight state and rig parameters as JSON.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		State string  `json:"state"`
		Rig   RigInfo `json:"rig"`
	}{
		State: s.state(),
		Rig:   s.info,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleStream serves the SSE event stream (status + telemetry rows).
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsub := s.broadcaster.Subscribe()
	defer unsub()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// handleIndex serves a minimal monitoring page; the rig has no other UI than
// the panel LED, so this is the only place to watch a run live.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>BenchyGo</title>
<style>
body { font-family: monospace; background: #111; color: #ddd; margin: 1em; }
#state { font-size: 1.4em; margin-bottom: 0.5em; }
#log { white-space: pre; font-size: 0.85em; }
</style>
</head>
<body>
<div id="state">state: ?</div>
<div id="log"></div>
<script>
fetch('/state').then(r => r.json()).then(j => {
  document.getElementById('state').textContent = 'state: ' + j.state;
});
const log = document.getElementById('log');
const src = new EventSource('/stream');
src.onmessage = (e) => {
  const evt = JSON.parse(e.data);
  log.textContent = (evt.t + ' [' + evt.k + '] ' + evt.msg + '\n' + log.textContent).split('\n').slice(0, 200).join('\n');
};
</script>
</body>
</html>
`
