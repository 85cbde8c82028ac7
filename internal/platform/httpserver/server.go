package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	lpvengine "electora/contexts/election-core/lpv-engine"
	"electora/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "electora/internal/platform/httpserver/docs"
)

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	lpv     lpvengine.Module
	metrics *metrics.Metrics
}

func New(lpv lpvengine.Module, m *metrics.Metrics, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		lpv:     lpv,
		metrics: m,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("POST /v1/lpv/ballots", s.handleIssueBallot)
	s.mux.HandleFunc("GET /v1/lpv/ballots/{ballot_id}", s.handleGetBallot)
	s.mux.HandleFunc("POST /v1/lpv/votes", s.handleCastVote)
	s.mux.HandleFunc("POST /v1/lpv/votes/{vote_id}/status", s.handleVoteStatus)
	s.mux.HandleFunc("GET /v1/lpv/votes", s.handleListVotes)
	s.mux.HandleFunc("GET /v1/lpv/tally", s.handleTally)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
