package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	bridge "github.com/RidgeA/dapp-bridge"
	"github.com/RidgeA/dapp-bridge/config"
	"github.com/RidgeA/dapp-bridge/provider"
	"github.com/RidgeA/dapp-bridge/transport"
	mock_transport "github.com/RidgeA/dapp-bridge/transport/mock"
	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const dappURL = "https://www.app.example.com/"

func startHost(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	h := newHost(cfg, zap.NewNop(), bridge.NewMetrics(prometheus.NewRegistry()))
	router := mux.NewRouter()
	router.HandleFunc(cfg.Server.BridgePath, h.serveBridge)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func connectPage(t *testing.T, srv *httptest.Server, path string) *provider.Injection {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + path + "?url=" + url.QueryEscape(dappURL)
	ws, err := transport.DialWebSocket(ctx, wsURL, nil)
	require.NoError(t, err)

	m := bridge.New("page", bridge.SetTransport(ws), bridge.SetLogger(zap.NewNop()))
	injection, ok := provider.Inject(m, provider.Page{URL: dappURL})
	require.True(t, ok)

	require.NoError(t, m.Start())
	t.Cleanup(func() {
		injection.Close()
		m.Shutdown()
	})
	return injection
}

func TestHost_ServesWalletOverWebSocket(t *testing.T) {
	cfg := config.Default()
	cfg.Wallet.ChainID = "0x1"
	cfg.Wallet.Accounts = []string{"0xabc"}
	srv := startHost(t, cfg)

	injection := connectPage(t, srv, cfg.Server.BridgePath)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	chainID, err := injection.Ethereum().Request(ctx, provider.MethodChainID)
	require.NoError(t, err)
	assert.JSONEq(t, `"0x1"`, string(chainID))

	version, err := injection.Ethereum().Request(ctx, provider.MethodNetVersion)
	require.NoError(t, err)
	assert.JSONEq(t, `"1"`, string(version))

	accounts, err := injection.Ethereum().Request(ctx, provider.MethodRequestAccounts)
	require.NoError(t, err)
	assert.JSONEq(t, `["0xabc"]`, string(accounts))

	_, err = injection.Ethereum().Request(ctx, provider.MethodPersonalSign, "0xdead", "0xabc")
	var rpcErr *provider.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, provider.CodeUnauthorized, rpcErr.Code)
}

func TestHost_SwitchChainNotifiesPage(t *testing.T) {
	cfg := config.Default()
	srv := startHost(t, cfg)

	injection := connectPage(t, srv, cfg.Server.BridgePath)
	changed := make(chan json.RawMessage, 1)
	injection.Rainbow.On(provider.EventChainChanged, func(p json.RawMessage) { changed <- p })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := injection.Ethereum().Request(ctx, provider.MethodSwitchEthereumChain, map[string]string{"chainId": "0xA"})
	require.NoError(t, err)

	select {
	case p := <-changed:
		assert.JSONEq(t, `"0xa"`, string(p))
	case <-ctx.Done():
		t.Fatal("chainChanged not delivered")
	}

	chainID, err := injection.Ethereum().Request(ctx, provider.MethodChainID)
	require.NoError(t, err)
	assert.JSONEq(t, `"0xa"`, string(chainID))

	_, err = injection.Ethereum().Request(ctx, provider.MethodSwitchEthereumChain, map[string]string{"chainId": "10"})
	var rpcErr *provider.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, provider.CodeInvalidParams, rpcErr.Code)
}

func TestHost_RejectsForeignOrigin(t *testing.T) {
	cfg := config.Default()
	cfg.Server.AllowedOrigins = []string{"https://trusted.example.com"}
	srv := startHost(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	header := http.Header{"Origin": {"https://evil.example.com"}}
	_, err := transport.DialWebSocket(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+cfg.Server.BridgePath, header)
	assert.Error(t, err)
}

func TestHost_CheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		accept  bool
	}{
		{"no list, no origin", nil, "", true},
		{"no list, same origin", nil, "http://wallet.local:8080", true},
		{"no list, foreign origin", nil, "https://evil.example.com", false},
		{"no list, bad origin", nil, "://", false},
		{"listed origin", []string{"https://app.example.com"}, "https://app.example.com", true},
		{"unlisted origin", []string{"https://app.example.com"}, "https://evil.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Server.AllowedOrigins = tt.allowed
			h := newHost(cfg, zap.NewNop(), bridge.NewMetrics(nil))

			r, err := http.NewRequest(http.MethodGet, "http://wallet.local:8080/bridge", nil)
			require.NoError(t, err)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.accept, h.checkOrigin(r))
		})
	}
}

func TestHost_DefaultRejectsForeignOriginUpgrade(t *testing.T) {
	cfg := config.Default()
	srv := startHost(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	header := http.Header{"Origin": {"https://evil.example.com"}}
	_, err := transport.DialWebSocket(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+cfg.Server.BridgePath, header)
	assert.Error(t, err)
}

func TestHost_SessionShutsDownWhenStartFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("exchange declare failed")
	tr := mock_transport.NewMockTransport(ctrl)
	tr.EXPECT().OnEnvelope(gomock.Any()).Return(func() {})
	tr.EXPECT().Initialize().Return(boom)
	tr.EXPECT().Shutdown()

	h := newHost(config.Default(), zap.NewNop(), bridge.NewMetrics(nil))
	m := h.newMessenger(bridge.SetTransport(tr))

	err := h.serveSession(context.Background(), m, "", make(chan struct{}))
	assert.ErrorIs(t, err, boom)
}
