package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// status is the mutable run state exposed by the status HTTP server. Long
// solver runs make a poll endpoint more useful than log scraping.
type status struct {
	mu sync.Mutex
	s  statusSnapshot
}

type statusSnapshot struct {
	Phase      string  `json:"phase"`
	Evaluation int64   `json:"evaluation"`
	Guess      float64 `json:"guess"`
	Keff       float64 `json:"keff"`
	StdDev     float64 `json:"stddev"`
}

func newStatus() *status {
	return &status{s: statusSnapshot{Phase: "starting"}}
}

func (st *status) setPhase(phase string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Phase = phase
}

func (st *status) evaluating(n int64, guess float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Evaluation = n
	st.s.Guess = guess
}

func (st *status) observed(n int64, guess, keff, stddev float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Evaluation = n
	st.s.Guess = guess
	st.s.Keff = keff
	st.s.StdDev = stddev
}

func (st *status) snapshot() statusSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

// healthHandler reports liveness.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// statusHandler reports the current run phase and latest evaluation.
func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(a.status.snapshot()); err != nil {
		a.logger.Error("Failed to encode status response.", "error", err)
	}
}

// startStatusServer initializes and runs the status HTTP server.
func (a *App) startStatusServer(port int) {
	a.logger.Debug("Configuring status server.")
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/status", a.statusHandler)

	addr := fmt.Sprintf(":%d", port)

	go func() {
		a.logger.Info("🩺 Status server starting", "address", fmt.Sprintf("http://localhost%s/status", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			a.logger.Error("Status server failed", "error", err)
		}
	}()
}
