package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bridge "github.com/RidgeA/dapp-bridge"
	"github.com/RidgeA/dapp-bridge/config"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a config.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err.Error())
	}

	logger, err := cfg.Logging.Logger()
	if err != nil {
		log.Fatal(err.Error())
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Bridge host stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	h := newHost(cfg, logger, bridge.NewMetrics(reg))

	router := mux.NewRouter()
	router.HandleFunc(cfg.Server.BridgePath, h.serveBridge).Methods(http.MethodGet)
	if cfg.Server.MetricsPath != "" {
		router.Handle(cfg.Server.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	g, ctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:        cfg.Server.Listen,
		Handler:     router,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g.Go(func() error {
		logger.Info("Bridge host listening", zap.String("addr", cfg.Server.Listen), zap.String("path", cfg.Server.BridgePath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.AMQP.URL != "" {
		g.Go(func() error {
			return h.serveAMQP(ctx)
		})
	}

	return g.Wait()
}
