// Package app wires all mimevoice subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves HTTP until the context is cancelled, and Shutdown
// tears everything down in order.
//
// For testing, inject mock implementations via functional options
// (WithStore, WithSTTProvider, etc.). When an option is not provided, New
// creates real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/Aakash-star320/mimevoice/internal/command/cmdstore"
	"github.com/Aakash-star320/mimevoice/internal/config"
	"github.com/Aakash-star320/mimevoice/internal/health"
	"github.com/Aakash-star320/mimevoice/internal/observe"
	"github.com/Aakash-star320/mimevoice/internal/server"
	"github.com/Aakash-star320/mimevoice/internal/transcript"
	"github.com/Aakash-star320/mimevoice/internal/transcript/phonetic"
	"github.com/Aakash-star320/mimevoice/pkg/provider/stt"
	"github.com/Aakash-star320/mimevoice/pkg/provider/stt/deepgram"
	"github.com/Aakash-star320/mimevoice/pkg/provider/stt/openai"
	"github.com/Aakash-star320/mimevoice/pkg/provider/stt/whisper"
)

// shutdownGrace is how long Run gives in-flight requests to finish after the
// context is cancelled.
const shutdownGrace = 10 * time.Second

// App owns all subsystem lifetimes for the mimevoice server.
type App struct {
	cfg *config.Config

	// Subsystems — initialised in New, torn down in Shutdown.
	store     cmdstore.Store
	sttProv   stt.Provider
	corrector *transcript.Corrector
	metrics   *observe.Metrics
	checkers  []health.Checker
	httpSrv   *http.Server
	listener  net.Listener

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithStore injects a command store instead of creating one from config.
func WithStore(s cmdstore.Store) Option {
	return func(a *App) { a.store = s }
}

// WithSTTProvider injects a speech-to-text provider instead of creating one
// from config.
func WithSTTProvider(p stt.Provider) Option {
	return func(a *App) { a.sttProv = p }
}

// WithMetrics injects a metrics instance instead of using the global default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App by wiring all subsystems together. Use Option functions
// to inject test doubles for any subsystem.
//
// New performs all initialisation synchronously: store connection and
// migration, STT provider construction, corrector construction, and binding
// the listen address. After New returns, [App.Addr] reports the bound address.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}

	// ── 1. Command store ─────────────────────────────────────────────────
	if err := a.initStore(ctx); err != nil {
		a.closeAll()
		return nil, fmt.Errorf("app: init store: %w", err)
	}

	// ── 2. STT provider ──────────────────────────────────────────────────
	if err := a.initSTT(); err != nil {
		a.closeAll()
		return nil, fmt.Errorf("app: init stt: %w", err)
	}

	// ── 3. Transcript corrector ──────────────────────────────────────────
	a.initCorrector()

	// ── 4. HTTP server ───────────────────────────────────────────────────
	if err := a.initHTTP(); err != nil {
		a.closeAll()
		return nil, fmt.Errorf("app: init http: %w", err)
	}

	return a, nil
}

// ─── Init helpers ────────────────────────────────────────────────────────────

// initStore connects the PostgreSQL command store or falls back to memory.
func (a *App) initStore(ctx context.Context) error {
	if a.store != nil {
		return nil // injected
	}

	dsn := a.cfg.Database.PostgresDSN
	if dsn == "" {
		slog.Info("no database configured, using in-memory command store")
		a.store = cmdstore.NewMemStore()
		return nil
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}

	store := cmdstore.NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	a.store = store
	a.closers = append(a.closers, func() error {
		pool.Close()
		return nil
	})
	a.checkers = append(a.checkers, health.Checker{
		Name:  "database",
		Check: pool.Ping,
	})
	slog.Info("connected to postgres command store")
	return nil
}

// initSTT builds the configured speech-to-text provider. An empty provider
// name leaves transcription disabled; the server answers 503 on those routes.
func (a *App) initSTT() error {
	if a.sttProv != nil || a.cfg.STT.Name == "" {
		a.registerSTTChecker()
		return nil
	}

	entry := a.cfg.STT
	var (
		prov stt.Provider
		err  error
	)
	switch entry.Name {
	case "whisper":
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if lang, ok := entry.Options["language"].(string); ok {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		prov, err = whisper.New(entry.BaseURL, opts...)

	case "deepgram":
		var opts []deepgram.Option
		if entry.Model != "" {
			opts = append(opts, deepgram.WithModel(entry.Model))
		}
		if entry.BaseURL != "" {
			opts = append(opts, deepgram.WithBaseURL(entry.BaseURL))
		}
		if lang, ok := entry.Options["language"].(string); ok {
			opts = append(opts, deepgram.WithLanguage(lang))
		}
		prov, err = deepgram.New(entry.APIKey, opts...)

	case "openai":
		var opts []openai.Option
		if entry.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(entry.BaseURL))
		}
		if org, ok := entry.Options["organization"].(string); ok {
			opts = append(opts, openai.WithOrganization(org))
		}
		prov, err = openai.New(entry.APIKey, entry.Model, opts...)

	default:
		return fmt.Errorf("unknown stt provider %q", entry.Name)
	}
	if err != nil {
		return err
	}

	a.sttProv = prov
	slog.Info("stt provider configured", "provider", entry.Name, "model", entry.Model)
	a.registerSTTChecker()
	return nil
}

// registerSTTChecker reports transcription availability on /readyz. The check
// only reflects configuration: no network probe against the provider.
func (a *App) registerSTTChecker() {
	if a.sttProv == nil {
		return
	}
	a.checkers = append(a.checkers, health.Checker{
		Name:  "stt",
		Check: func(context.Context) error { return nil },
	})
}

// initCorrector builds the phonetic transcript corrector when enabled.
func (a *App) initCorrector() {
	c := a.cfg.Correction
	if !c.Enabled {
		return
	}

	var matcherOpts []phonetic.Option
	if c.MinSimilarity > 0 {
		matcherOpts = append(matcherOpts, phonetic.WithPhoneticThreshold(c.MinSimilarity))
	}
	var correctorOpts []transcript.Option
	if c.MaxNGram > 0 {
		correctorOpts = append(correctorOpts, transcript.WithMaxNGram(c.MaxNGram))
	}

	a.corrector = transcript.New(phonetic.New(matcherOpts...), correctorOpts...)
	slog.Info("transcript correction enabled",
		"min_similarity", c.MinSimilarity, "max_ngram", c.MaxNGram)
}

// initHTTP assembles the route tree and binds the listen address.
func (a *App) initHTTP() error {
	srvOpts := []server.Option{
		server.WithHealthCheckers(a.checkers...),
	}
	if a.sttProv != nil {
		srvOpts = append(srvOpts, server.WithSTTProvider(a.sttProv))
	}
	if a.corrector != nil {
		srvOpts = append(srvOpts, server.WithCorrector(a.corrector))
	}
	if a.metrics != nil {
		srvOpts = append(srvOpts, server.WithMetrics(a.metrics))
	}

	srv := server.New(a.store, srvOpts...)

	addr := a.cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %q: %w", addr, err)
	}
	a.listener = ln
	a.closers = append(a.closers, ln.Close)

	a.httpSrv = &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Addr returns the bound listen address. Useful with a ":0" listen config.
func (a *App) Addr() string {
	return a.listener.Addr().String()
}

// Run serves HTTP on the bound listener and blocks until ctx is cancelled or
// the server fails. In-flight requests get a grace period to finish.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("serving", "addr", a.Addr())
		if err := a.httpSrv.Serve(a.listener); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("app: http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown tears down all subsystems in order. It respects the context
// deadline: if ctx expires before all closers finish, remaining closers are
// skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil && !errors.Is(err, net.ErrClosed) {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}

// closeAll releases already-initialised resources when New fails part-way.
func (a *App) closeAll() {
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			slog.Warn("cleanup error", "err", err)
		}
	}
	a.closers = nil
}
