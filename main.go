package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"downlink/config"
	"downlink/metrics"
	"downlink/monitoring"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to configuration file")
	mode := flag.String("mode", "tx", "tx: encode sensor records and send packets; monitor: receive and display packets")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := run(*mode, conf); err != nil {
		log.Fatalf("%s: %v", *mode, err)
	}
}

func run(mode string, conf config.Config) error {
	if conf.Logging.File != "" {
		f, err := os.OpenFile(conf.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}
	monitoring.SetDebug(conf.Logging.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewMetrics(nil)
	if conf.Metrics.Listen != "" {
		srv := serveMetrics(conf.Metrics.Listen)
		defer srv.Close()
	}

	switch mode {
	case "tx":
		return runEncoder(ctx, conf, m)
	case "monitor":
		return runMonitor(ctx, conf, m)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

// serveMetrics exposes the default registry on /metrics.
func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			monitoring.Logf("metrics server: %v", err)
		}
	}()
	monitoring.Logf("Serving metrics on %s/metrics", addr)
	return srv
}
