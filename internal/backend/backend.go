// Package backend implements local stand-ins for the courier services the
// assistant's tools call: package tracking, support ticket creation and the
// policy knowledge base. They serve demos and end-to-end tests.
package backend

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/hupe1980/supportmesh/logging"
)

// Options configures the stand-in services.
type Options struct {
	// Now is the clock used for timestamps and ticket ids.
	Now func() time.Time
	// Logger receives request events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Server holds the stand-in services and the tickets created so far.
type Server struct {
	now    func() time.Time
	logger logging.Logger

	mu      sync.RWMutex
	tickets map[string]Ticket
	order   []string
}

// New creates the stand-in services.
func New(optFns ...func(o *Options)) *Server {
	opts := Options{Now: time.Now, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		now:     opts.Now,
		logger:  logging.OrNoOp(opts.Logger),
		tickets: map[string]Ticket{},
	}
}

// Router returns the HTTP routes:
//
//	GET  /track?id=...     package status
//	POST /track            package status, body {"packageId": ...}
//	POST /ticket           create a support ticket
//	GET  /ticket/{id}      fetch a created ticket
//	POST /knowledge        policy lookup, body {"query": ...}
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/track", s.handleTrack).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/ticket", s.handleCreateTicket).Methods(http.MethodPost)
	router.HandleFunc("/ticket/{id}", s.handleGetTicket).Methods(http.MethodGet)
	router.HandleFunc("/knowledge", s.handleKnowledge).Methods(http.MethodPost)
	return router
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
