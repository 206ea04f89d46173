package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxRequestBytes caps the size of an /agent request body.
const maxRequestBytes = 1 << 20

// HTTPOptions configures the HTTP adaptor.
type HTTPOptions struct {
	// Gatherer backs GET /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// httpRequest is the JSON body of POST /agent. session_id is accepted as an
// alias for user_id.
type httpRequest struct {
	Prompt    string `json:"prompt"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// NewHTTPHandler exposes h over HTTP:
//
//	POST /agent    run one invocation
//	GET  /healthz  liveness
//	GET  /metrics  prometheus metrics
func NewHTTPHandler(h *Handler, optFns ...func(o *HTTPOptions)) http.Handler {
	opts := HTTPOptions{Gatherer: prometheus.DefaultGatherer}
	for _, fn := range optFns {
		fn(&opts)
	}

	router := mux.NewRouter()
	router.HandleFunc("/agent", h.serveAgent).Methods(http.MethodPost)
	router.HandleFunc("/healthz", serveHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return router
}

func (h *Handler) serveAgent(w http.ResponseWriter, r *http.Request) {
	var body httpRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("handler.http.bad_request", "error", err.Error())
		writeJSON(w, http.StatusBadRequest, ErrorBody{
			Error:   "Bad Request",
			Message: "invalid JSON body",
		})
		return
	}

	userID := body.UserID
	if strings.TrimSpace(userID) == "" {
		userID = body.SessionID
	}

	resp := h.Handle(r.Context(), Request{Prompt: body.Prompt, UserID: userID})
	writeJSON(w, resp.StatusCode, resp.Body)
}

func serveHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
