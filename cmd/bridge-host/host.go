package main

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	bridge "github.com/RidgeA/dapp-bridge"
	"github.com/RidgeA/dapp-bridge/config"
	"github.com/RidgeA/dapp-bridge/dapp"
	"github.com/RidgeA/dapp-bridge/provider"
	"github.com/RidgeA/dapp-bridge/transport"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const notifyTimeout = 10 * time.Second

type host struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *bridge.Metrics
	wallet   *wallet
	upgrader websocket.Upgrader
}

func newHost(cfg *config.Config, logger *zap.Logger, metrics *bridge.Metrics) *host {
	h := &host{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		wallet:  newWallet(cfg.Wallet),
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

// checkOrigin accepts the configured origins. Without a list only requests
// from the host's own origin, or without an Origin header, are accepted.
func (h *host) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if len(h.cfg.Server.AllowedOrigins) == 0 {
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
	for _, allowed := range h.cfg.Server.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// serveBridge runs one WebView session. The page URL comes from the "url"
// query parameter, falling back to the Origin header.
func (h *host) serveBridge(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	pageURL := r.URL.Query().Get("url")
	if pageURL == "" {
		pageURL = r.Header.Get("Origin")
	}

	t := transport.NewWebSocket(conn, transport.Sender{URL: pageURL})
	m := h.newMessenger(bridge.SetTransport(t))
	if err := h.serveSession(r.Context(), m, pageURL, t.Done()); err != nil {
		h.logger.Error("Bridge session failed", zap.String("url", pageURL), zap.Error(err))
	}
	if err := t.Err(); err != nil {
		h.logger.Debug("Bridge connection ended", zap.String("url", pageURL), zap.Error(err))
	}
}

// serveAMQP runs a single session over the broker until ctx is done.
func (h *host) serveAMQP(ctx context.Context) error {
	m := h.newMessenger(bridge.SetUrl(h.cfg.AMQP.URL))
	return h.serveSession(ctx, m, "", ctx.Done())
}

func (h *host) newMessenger(opts ...bridge.OptionsFunc) *bridge.Messenger {
	opts = append([]bridge.OptionsFunc{
		bridge.SetLogger(h.logger),
		bridge.SetMetrics(h.metrics),
		bridge.SetRequestTimeout(h.cfg.Messenger.RequestTimeout.Duration),
	}, opts...)
	return bridge.New(h.cfg.Name, opts...)
}

func (h *host) serveSession(ctx context.Context, m *bridge.Messenger, pageURL string, done <-chan struct{}) error {
	defer m.Shutdown()
	if err := m.Start(); err != nil {
		return err
	}

	dappHost := dapp.GetDappHost(pageURL)
	notifier := provider.NewNotifier(m)
	dispatcher := h.wallet.dispatcher(notifier, h.logger)
	unsubscribe := dispatcher.Serve(m, bridge.SetHandlerThroughput(h.cfg.Messenger.HandlerThroughput))
	defer unsubscribe()

	h.logger.Info("Bridge session started", zap.String("instance", m.InstanceID()), zap.String("host", dappHost))
	if dappHost != "" {
		go h.notify(ctx, "connect", func(ctx context.Context) error {
			return notifier.Connect(ctx, dappHost, h.wallet.chainID())
		})
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
	h.logger.Info("Bridge session finished", zap.String("instance", m.InstanceID()))
	return nil
}

func (h *host) notify(ctx context.Context, what string, f func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := f(ctx); err != nil {
		h.logger.Debug("Notification not delivered", zap.String("event", what), zap.Error(err))
	}
}
