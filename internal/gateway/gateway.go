// ABOUTME: Gateway orchestrator wiring stores, registry, and HTTP server
// ABOUTME: Owns the process-wide component instances and their lifecycle

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/2389/a2a-bridge/internal/a2a"
	"github.com/2389/a2a-bridge/internal/bridge"
	"github.com/2389/a2a-bridge/internal/config"
	"github.com/2389/a2a-bridge/internal/conversation"
	"github.com/2389/a2a-bridge/internal/reconcile"
	"github.com/2389/a2a-bridge/internal/registry"
	"github.com/2389/a2a-bridge/internal/store"
)

// Gateway owns the bridge's components: the in-memory stores, the agent
// registry, the status observer, and the HTTP servers. One instance is
// constructed at process start and lives until shutdown; all state resets
// with the process.
type Gateway struct {
	config        *config.Config
	conversations *store.ConversationStore
	events        *store.EventStore
	eventLog      *conversation.Log
	broadcaster   *conversation.EventBroadcaster
	registry      *registry.Registry
	observer      *bridge.Observer
	logger        *slog.Logger

	httpServer    *http.Server
	metricsServer *http.Server
	metrics       *metrics

	// One reconciler per conversation, created on first sync.
	reconcilersMu sync.Mutex
	reconcilers   map[string]*reconcile.Reconciler
}

// New creates a Gateway with freshly constructed stores.
func New(cfg *config.Config, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}

	conversations := store.NewConversationStore(logger)
	events := store.NewEventStore(logger)
	broadcaster := conversation.NewEventBroadcaster(logger)
	eventLog := conversation.NewLog(events, broadcaster, logger)

	cardClient := a2a.NewClient(cfg.Agents.CardTimeout)
	agentRegistry := registry.New(cardClient, logger)

	g := &Gateway{
		config:        cfg,
		conversations: conversations,
		events:        events,
		eventLog:      eventLog,
		broadcaster:   broadcaster,
		registry:      agentRegistry,
		observer:      bridge.NewObserver(eventLog, logger),
		logger:        logger.With("component", "gateway"),
		metrics:       newMetrics(prometheus.NewRegistry()),
		reconcilers:   make(map[string]*reconcile.Reconciler),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", g.handleHealth)
	mux.HandleFunc("/health/ready", g.handleReady)
	mux.HandleFunc("/conversations", g.handleConversations)
	mux.HandleFunc("/conversations/", g.handleConversationRoutes)
	mux.HandleFunc("/agents", g.handleAgents)

	g.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.HandlerFor(g.metrics.registry, promhttp.HandlerOpts{}))
		g.metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           metricsMux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return g
}

// Handler exposes the HTTP API for tests and embedding.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// PreregisterAgents registers the configured agent URLs, best effort.
// Failures are logged per agent and do not abort startup; the demo agents may
// simply not be up yet.
func (g *Gateway) PreregisterAgents(ctx context.Context) {
	for _, url := range g.config.Agents.Preregister {
		card, err := g.registry.Add(ctx, url)
		if err != nil {
			g.logger.Warn("preregistration failed", "url", url, "error", err)
			continue
		}
		g.logger.Info("agent preregistered", "url", registry.Normalize(url), "name", card.Name)
	}
}

// Run starts the HTTP server (and the metrics server when enabled) and
// blocks until ctx is cancelled or a server fails.
func (g *Gateway) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		g.logger.Info("HTTP server listening", "addr", g.httpServer.Addr)
		if err := g.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	if g.metricsServer != nil {
		go func() {
			g.logger.Info("metrics server listening", "addr", g.metricsServer.Addr)
			if err := g.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		return g.Shutdown()
	case err := <-errCh:
		return err
	}
}

// Shutdown stops the servers and releases background resources.
func (g *Gateway) Shutdown() error {
	g.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if err := g.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	if g.metricsServer != nil {
		if err := g.metricsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
		}
	}
	g.observer.Close()
	g.broadcaster.Close()

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	agents := g.registry.URLs()
	if len(agents) == 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no agents registered"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (%d agents)", len(agents))
}

// reconcilerFor returns the conversation's reconciler, creating it on first
// use, seeded from whatever the stores already hold.
func (g *Gateway) reconcilerFor(conversationID string) *reconcile.Reconciler {
	g.reconcilersMu.Lock()
	defer g.reconcilersMu.Unlock()

	r, ok := g.reconcilers[conversationID]
	if !ok {
		r = reconcile.New(conversationID, g.conversations, g.events, g.eventLog, g.logger)
		g.reconcilers[conversationID] = r
	}
	return r
}

// dropReconciler discards the conversation's reconciler state on delete.
func (g *Gateway) dropReconciler(conversationID string) {
	g.reconcilersMu.Lock()
	defer g.reconcilersMu.Unlock()
	delete(g.reconcilers, conversationID)
}
