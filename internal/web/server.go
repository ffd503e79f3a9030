// Package web provides an HTTP status server for the rotary-dial daemon.
package web

import (
	"context"
	"log"
	"net"
	"net/http"

	"github.com/sweeney/rotary-dial/internal/logic"
	"github.com/sweeney/rotary-dial/internal/status"
)

// SlotReader reads persisted speed dial slots. store.Store satisfies it.
type SlotReader interface {
	ReadSlot(ctx context.Context, slot logic.Slot) (logic.Number, error)
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	slots      SlotReader
}

// New creates a Server that reads state from the given tracker. slots may be
// nil to hide stored numbers; metrics may be nil to disable /metrics.
func New(addr string, tracker *status.Tracker, slots SlotReader, metrics http.Handler) *Server {
	s := &Server{tracker: tracker, slots: slots}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/slots.json", s.handleSlots)
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	slots, err := s.readSlots(r.Context(), snap)
	if err != nil {
		log.Printf("web: read slots: %v", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap, slots)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	if s.slots == nil {
		http.NotFound(w, r)
		return
	}
	slots, err := s.readSlots(r.Context(), s.tracker.Snapshot())
	if err != nil {
		log.Printf("web: read slots: %v", err)
		http.Error(w, "slots unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatSlots(slots))
}

// readSlots returns every slot. The redial slot comes from the tracker since
// it only lives in the dial loop's memory.
func (s *Server) readSlots(ctx context.Context, snap status.Snapshot) ([]SlotJSON, error) {
	if s.slots == nil {
		return nil, nil
	}
	out := []SlotJSON{slotJSON(logic.SlotRedial, snap.Redial)}
	for slot := logic.SlotRedial + 1; slot < logic.SlotCount; slot++ {
		n, err := s.slots.ReadSlot(ctx, slot)
		if err != nil {
			return out, err
		}
		out = append(out, slotJSON(slot, n))
	}
	return out, nil
}
