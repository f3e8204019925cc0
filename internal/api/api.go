// Package api provides the HTTP surface and the main server logic for
// AcolheBot.
//
// It exposes the provider webhooks and the health endpoint, and wires the
// store, delivery queue, knowledge fallback and dispatcher together.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/VidaNova/AcolheBot/internal/dispatch"
	"github.com/VidaNova/AcolheBot/internal/knowledge"
	"github.com/VidaNova/AcolheBot/internal/models"
	"github.com/VidaNova/AcolheBot/internal/queue"
	"github.com/VidaNova/AcolheBot/internal/store"
	"github.com/VidaNova/AcolheBot/internal/twiliowhatsapp"
	"github.com/VidaNova/AcolheBot/internal/whatsapp"
)

const (
	// DefaultAddr is the default API listen address.
	DefaultAddr = ":8080"
	// shutdownTimeout bounds how long in-flight requests may linger on exit.
	shutdownTimeout = 10 * time.Second
)

// Dispatcher is the slice of the dispatch module the server needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, in models.InboundMessage) models.DispatchResult
}

// Opts holds configuration options for the API server.
type Opts struct {
	Addr            string
	AllowedOrigins  []string
	EnableWhatsmeow bool
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the API listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithAllowedOrigins sets the CORS allowed origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(o *Opts) { o.AllowedOrigins = origins }
}

// WithWhatsmeow switches delivery from the Twilio API to a direct whatsmeow
// connection, which also feeds inbound messages without webhooks.
func WithWhatsmeow() Option {
	return func(o *Opts) { o.EnableWhatsmeow = true }
}

// Server holds the handler dependencies.
type Server struct {
	dispatcher Dispatcher
	queue      *queue.DeliveryQueue
}

// NewServer creates an API server around an already-wired dispatcher.
func NewServer(d Dispatcher, q *queue.DeliveryQueue) *Server {
	return &Server{dispatcher: d, queue: q}
}

// Router builds the chi router with all endpoints mounted.
func (s *Server) Router(allowedOrigins ...string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.healthHandler)
	r.Post("/webhook/twilio", s.twilioWebhookHandler)
	r.Post("/webhook/zapi", s.zapiWebhookHandler)
	return r
}

// Run wires the configured modules together and serves until SIGINT/SIGTERM.
// The delivery queue is drained before the process exits so accepted replies
// are not silently lost.
func Run(storeOpts []store.Option, msgOpts []twiliowhatsapp.Option, waOpts []whatsapp.Option, kbOpts []knowledge.Option, dispatchOpts []dispatch.Option, queueOpts []queue.Option, opts ...Option) error {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("API Run options resolved", "addr", cfg.Addr, "whatsmeow", cfg.EnableWhatsmeow, "origins", len(cfg.AllowedOrigins))

	st, err := newStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	var (
		sender   queue.Sender
		waClient *whatsapp.Client
	)
	if cfg.EnableWhatsmeow {
		waClient, err = whatsapp.NewClient(waOpts...)
		if err != nil {
			return fmt.Errorf("failed to initialize WhatsApp client: %w", err)
		}
		defer waClient.Disconnect()
		sender = waClient
	} else {
		twilioClient, terr := twiliowhatsapp.NewClient(msgOpts...)
		if terr != nil {
			return fmt.Errorf("failed to initialize Twilio client: %w", terr)
		}
		sender = twilioClient
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewDeliveryQueue(sender, queueOpts...)
	q.Start(ctx)

	kb := newKnowledge(kbOpts)
	dispatcher := dispatch.New(st, q, kb, dispatchOpts...)
	server := NewServer(dispatcher, q)

	// With a direct whatsmeow connection inbound messages arrive over the
	// socket instead of webhooks.
	if waClient != nil {
		go func() {
			for in := range waClient.Inbound() {
				dispatcher.Dispatch(ctx, in)
			}
		}()
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.Router(cfg.AllowedOrigins...),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- httpServer.ListenAndServe() }()
	slog.Info("AcolheBot API listening", "addr", cfg.Addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			q.Stop()
			return fmt.Errorf("API server failed: %w", err)
		}
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig.String())
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("API server shutdown failed", "error", err)
		}
	}

	// Drain buffered replies before the context is cancelled.
	q.Stop()
	slog.Info("AcolheBot API stopped")
	return nil
}

// newStore picks the backend from the DSN. No DSN means the volatile
// in-memory store, which only makes sense for local experiments.
func newStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Warn("No database DSN configured, using in-memory store; data is lost on restart")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(cfg.DSN) == "postgres" {
		return store.NewPostgresStore(storeOpts...)
	}
	return store.NewSQLiteStore(storeOpts...)
}

// newKnowledge prefers the OpenAI-backed service, degrading to the static
// base when no API key is configured.
func newKnowledge(kbOpts []knowledge.Option) knowledge.Service {
	client, err := knowledge.NewOpenAIClient(kbOpts...)
	if err != nil {
		slog.Warn("OpenAI knowledge service unavailable, using static base", "error", err)
		return knowledge.NewStaticBase()
	}
	slog.Info("Knowledge fallback using OpenAI")
	return client
}
