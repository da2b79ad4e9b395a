// Package server wires the orderlink runtime: storage, the messaging
// gateway, the bot dispatcher, and the HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/louisbranch/orderlink/internal/orderflow/domain"
	"github.com/louisbranch/orderlink/internal/orderflow/gateway"
	"github.com/louisbranch/orderlink/internal/orderflow/render"
	"github.com/louisbranch/orderlink/internal/orderflow/storage/memcache"
	"github.com/louisbranch/orderlink/internal/orderflow/storage/redisc"
	orderflowsqlite "github.com/louisbranch/orderlink/internal/orderflow/storage/sqlite"
	"github.com/louisbranch/orderlink/internal/platform/timeouts"
)

const tracerName = "github.com/louisbranch/orderlink/internal/orderflow/app"

// Config carries the settings the runtime needs.
type Config struct {
	Addr             string
	DBPath           string
	RedisAddr        string
	ChannelToken     string
	MessagingBaseURL string
	FormURL          string
	FormFieldKey     string
	Titles           domain.FieldTitles
	Keywords         domain.Keywords
	Language         string
	CorrelationTTL   time.Duration
	AlertOnMiss      bool
	DispatchAttempts int
	DispatchBaseWait time.Duration
}

// Server hosts the webhook and submission endpoints and owns the storage
// lifecycle.
type Server struct {
	httpServer *http.Server
	store      interface{ Close() error }
	cache      correlationCache
	bot        *domain.Handler
	reconciler *domain.Reconciler
	logf       func(format string, args ...any)
}

// New creates a configured orderlink server.
func New(ctx context.Context, cfg Config) (*Server, error) {
	store, err := orderflowsqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open orderflow store: %w", err)
	}

	var cache correlationCache
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		redisCache, err := redisc.Open(ctx, cfg.RedisAddr, cfg.CorrelationTTL)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("open correlation cache: %w", err)
		}
		cache = redisCache
	} else {
		cache = memcache.New(cfg.CorrelationTTL)
	}

	client, err := gateway.NewClient(gateway.ClientConfig{
		BaseURL:      cfg.MessagingBaseURL,
		ChannelToken: cfg.ChannelToken,
		MaxAttempts:  cfg.DispatchAttempts,
		BaseDelay:    cfg.DispatchBaseWait,
	})
	if err != nil {
		_ = cache.Close()
		_ = store.Close()
		return nil, fmt.Errorf("build messaging client: %w", err)
	}

	adapter := newDomainStoreAdapter(store)
	messages := gateway.New(client, &directoryAdapter{store: store})
	correlations := domain.NewCorrelationStore(&fastLayerAdapter{cache: cache}, adapter)
	loc := render.NewLocalizer(cfg.Language)
	link := domain.FormLink{BaseURL: cfg.FormURL, FieldKey: cfg.FormFieldKey}

	intake, err := domain.NewIntake(domain.IntakeConfig{
		Correlations: correlations,
		Link:         link,
		Messenger:    messages,
		Notifier:     messages,
		Localizer:    loc,
		CancelText:   cfg.Keywords.Cancel,
	})
	if err != nil {
		_ = cache.Close()
		_ = store.Close()
		return nil, fmt.Errorf("build intake: %w", err)
	}

	adminFlow, err := domain.NewAdminFlow(adapter, messages, messages, loc, nil)
	if err != nil {
		_ = cache.Close()
		_ = store.Close()
		return nil, fmt.Errorf("build admin flow: %w", err)
	}

	bot, err := domain.NewHandler(domain.BotConfig{
		Intake:    intake,
		AdminFlow: adminFlow,
		Customers: adapter,
		Profiles:  messages,
		Messenger: messages,
		Localizer: loc,
		Keywords:  cfg.Keywords,
	})
	if err != nil {
		_ = cache.Close()
		_ = store.Close()
		return nil, fmt.Errorf("build bot handler: %w", err)
	}

	reconciler, err := domain.NewReconciler(domain.ReconcilerConfig{
		Correlations: correlations,
		Orders:       adapter,
		Messenger:    messages,
		Notifier:     messages,
		Localizer:    loc,
		Titles:       cfg.Titles,
		AlertOnMiss:  cfg.AlertOnMiss,
	})
	if err != nil {
		_ = cache.Close()
		_ = store.Close()
		return nil, fmt.Errorf("build reconciler: %w", err)
	}

	server := &Server{
		store:      store,
		cache:      cache,
		bot:        bot,
		reconciler: reconciler,
		logf:       log.Printf,
	}
	server.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.routes(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	return server, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeOK(w)
	})
	r.Post("/webhook", s.handleWebhook)
	r.Post("/submissions", s.handleSubmission)
	return r
}

// Handler exposes the HTTP routes, primarily for tests.
func (s *Server) Handler() http.Handler {
	if s == nil || s.httpServer == nil {
		return nil
	}
	return s.httpServer.Handler
}

// ListenAndServe runs the HTTP server until the context ends.
//
// On cancellation, it performs a bounded shutdown so in-flight requests
// are drained before hard close.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return errors.New("server is not configured")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("orderlink listening on %s", s.httpServer.Addr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases storage resources held by the server.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			log.Printf("close correlation cache: %v", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close orderflow store: %v", err)
		}
	}
}
