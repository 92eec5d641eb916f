// Command fenrirctl is the matching-core server process: it loads a
// partition layout, builds the router and partitions, and runs the TCP
// order-ingress listener alongside an HTTP debug/metrics endpoint. This is
// lifecycle wiring, not part of the core matching logic itself.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fenrir/internal/config"
	"fenrir/internal/diag"
	"fenrir/internal/engine"
	"fenrir/internal/ingress"
	"fenrir/internal/metrics"
)

func main() {
	configPath := flag.String("config", "fenrir.yaml", "path to the partition layout YAML document")
	tcpAddr := flag.String("tcp-address", "0.0.0.0", "address for the order-ingress TCP listener")
	tcpPort := flag.Int("tcp-port", 9001, "port for the order-ingress TCP listener")
	httpAddr := flag.String("http-address", "0.0.0.0:9090", "address for the HTTP metrics/debug listener")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	layout, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load partition layout")
	}

	router, err := engine.NewRouter(layout.BuildPartitions())
	if err != nil {
		log.Fatal().Err(err).Msg("unable to build router")
	}
	eng := engine.New(router)

	srv := ingress.New(*tcpAddr, *tcpPort, eng)

	collector := metrics.NewCollector(router)
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	httpRouter := mux.NewRouter()
	httpRouter.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	httpRouter.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	httpRouter.HandleFunc("/debug", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(diag.Snapshot(router))
	})
	httpServer := &http.Server{Addr: *httpAddr, Handler: httpRouter}

	eng.Start(ctx)

	go func() {
		log.Info().Str("address", *httpAddr).Msg("http debug server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server exited")
		}
	}()

	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("ingress server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	srv.Shutdown()
	_ = httpServer.Shutdown(context.Background())
	if err := eng.Shutdown(); err != nil {
		log.Error().Err(err).Msg("engine shutdown reported an error")
	}
}
