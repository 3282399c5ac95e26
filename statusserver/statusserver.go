// Package statusserver exposes the current simulation snapshot over HTTP
// for operators watching a long multi-pass or multi-epoch run from outside
// the process. It is never required for correctness: its absence changes
// nothing about simulation output.
package statusserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
)

// StatusServer serves the most recently published stats snapshot as JSON.
// Publish is non-blocking and safe to call from the simulation loop;
// nothing here ever calls back into that loop.
type StatusServer struct {
	addr string
	srv  *http.Server

	mu       sync.RWMutex
	snapshot map[string]interface{}
}

// New returns a StatusServer that will listen on addr once Start is
// called, with no snapshot published yet.
func New(addr string) *StatusServer {
	s := &StatusServer{addr: addr, snapshot: map[string]interface{}{}}

	r := mux.NewRouter()
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	s.srv = &http.Server{Addr: addr, Handler: r}
	return s
}

// Publish replaces the snapshot returned by /stats. Safe for concurrent
// use with Start/handling requests.
func (s *StatusServer) Publish(stats map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = stats
}

// Start begins serving in a background goroutine and returns immediately.
// Start is the one place this package introduces a second goroutine;
// simulation state it reads is always copied out under a mutex.
func (s *StatusServer) Start() {
	go s.srv.ListenAndServe()
}

// Close shuts down the HTTP listener.
func (s *StatusServer) Close() error {
	return s.srv.Close()
}

// Handler returns the underlying http.Handler, for tests that want to
// drive requests without binding a real listener.
func (s *StatusServer) Handler() http.Handler {
	return s.srv.Handler
}

func (s *StatusServer) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

func (s *StatusServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
