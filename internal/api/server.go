// Package api exposes the assistant over a JSON REST interface.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/radha-ai/radha/internal/assistant"
	"github.com/radha-ai/radha/pkg/observability"
)

// Server wraps the assistant behind HTTP routes.
type Server struct {
	assistant *assistant.Assistant
	health    *observability.HealthChecker
	log       zerolog.Logger
	http      *http.Server
}

// NewServer builds the server and its route table.
func NewServer(addr string, a *assistant.Assistant, health *observability.HealthChecker, log zerolog.Logger) *Server {
	s := &Server{
		assistant: a,
		health:    health,
		log:       log,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/task", s.handleTask)
	mux.HandleFunc("POST /v1/chat", s.handleChat)
	mux.HandleFunc("POST /v1/content", s.handleContent)
	mux.HandleFunc("POST /v1/doubt", s.handleDoubt)
	mux.HandleFunc("POST /v1/curriculum", s.handleCurriculum)
	mux.HandleFunc("POST /v1/grade-code", s.handleGradeCode)
	mux.HandleFunc("POST /v1/practice", s.handlePractice)
	mux.HandleFunc("POST /v1/check-answer", s.handleCheckAnswer)
	mux.HandleFunc("POST /v1/teacher-feedback", s.handleTeacherFeedback)
	mux.HandleFunc("POST /v1/explain", s.handleExplain)
	mux.HandleFunc("POST /v1/study-plan", s.handleStudyPlan)
	mux.HandleFunc("GET /v1/model-info", s.handleModelInfo)

	if health != nil {
		mux.HandleFunc("GET /health", health.Handler())
	}
	mux.Handle("GET /metrics", observability.MetricsHandler())

	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.withRequestLog(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler exposes the route table; used by tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("api server listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
