// Package server exposes the voice command engine over HTTP: command CRUD,
// text resolution, audio transcription, and a websocket live-resolve stream.
//
// The engine itself stays a plain function API ([command.Resolver]); this
// package owns request decoding, per-user command snapshots, and the wiring
// of the transcript corrector and STT provider in front of the resolver.
package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aakash-star320/mimevoice/internal/command"
	"github.com/Aakash-star320/mimevoice/internal/command/cmdstore"
	"github.com/Aakash-star320/mimevoice/internal/health"
	"github.com/Aakash-star320/mimevoice/internal/observe"
	"github.com/Aakash-star320/mimevoice/internal/transcript"
	"github.com/Aakash-star320/mimevoice/pkg/provider/stt"
)

// maxAudioBytes caps the multipart audio upload size. Larger requests are
// rejected with 413 before the body is read into memory.
const maxAudioBytes = 25 << 20 // 25 MiB

// Server handles all HTTP routes. It is safe for concurrent use; all fields
// are read-only after construction.
type Server struct {
	store     cmdstore.Store
	resolver  *command.Resolver
	stt       stt.Provider          // nil: transcription endpoints return 503
	corrector *transcript.Corrector // nil: transcripts are resolved verbatim
	metrics   *observe.Metrics
	health    *health.Handler
	logger    *slog.Logger
}

// Option is a functional option for configuring a [Server].
type Option func(*Server)

// WithSTTProvider enables the transcribe endpoint with the given provider.
func WithSTTProvider(p stt.Provider) Option {
	return func(s *Server) {
		s.stt = p
	}
}

// WithCorrector runs transcripts through the given corrector before
// resolution. Typed resolve requests are never corrected.
func WithCorrector(c *transcript.Corrector) Option {
	return func(s *Server) {
		s.corrector = c
	}
}

// WithMetrics overrides the metrics instance. Mainly useful for tests, which
// should not share the global meter provider.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithHealthCheckers registers readiness checkers on the /readyz endpoint.
func WithHealthCheckers(checkers ...health.Checker) Option {
	return func(s *Server) {
		s.health = health.New(checkers...)
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a [Server] around the given command store.
func New(store cmdstore.Store, opts ...Option) *Server {
	s := &Server{
		store:    store,
		resolver: command.NewResolver(),
		health:   health.New(),
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Handler returns the full route tree wrapped in the observability
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/users/{userID}/commands", s.handleCreateCommand)
	mux.HandleFunc("GET /api/users/{userID}/commands", s.handleListCommands)
	mux.HandleFunc("DELETE /api/users/{userID}/commands/{commandID}", s.handleDeleteCommand)
	mux.HandleFunc("POST /api/users/{userID}/resolve", s.handleResolve)
	mux.HandleFunc("POST /api/users/{userID}/transcribe", s.handleTranscribe)
	mux.HandleFunc("GET /api/users/{userID}/stream", s.handleStream)

	mux.Handle("GET /metrics", promhttp.Handler())
	s.health.Register(mux)

	return observe.Middleware(s.metrics)(mux)
}
