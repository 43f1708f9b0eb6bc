// Planetary orchestrator entry point.
//
// Usage:
//
//	planetary serve                        # start the orchestrator
//	planetary serve --config config.yaml   # with a config file
//	planetary init                         # seed worker dataset files
//	planetary version                      # show version information
//	planetary health                       # probe a running instance
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cygel-ai/planetary"
	"github.com/cygel-ai/planetary/config"
	"github.com/cygel-ai/planetary/orchestrator"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "init":
		runInit(os.Args[2:])
	case "version":
		printVersion()
	case "health":
		runHealthCheck(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	drainInterval := fs.Duration("drain-interval", time.Second, "How often to process pending tasks")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := planetary.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting planetary orchestrator",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	o, err := planetary.New(planetary.WithConfig(cfg), planetary.WithLogger(logger))
	if err != nil {
		logger.Fatal("Failed to assemble orchestrator", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var httpServer *http.Server
	if cfg.Metrics.Enabled {
		httpServer = newHTTPServer(cfg.Metrics.Addr, o)
		go func() {
			logger.Info("Metrics endpoint listening", zap.String("addr", cfg.Metrics.Addr))
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	// Dispatch loop. Each tick drains whatever accumulated in the queue.
	ticker := time.NewTicker(*drainInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			if err := o.ProcessPending(ctx); err != nil && ctx.Err() == nil {
				logger.Error("Dispatch cycle failed", zap.Error(err))
			}
		}
	}

	logger.Info("Shutting down")
	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown failed", zap.Error(err))
		}
	}
	if err := o.Close(); err != nil {
		logger.Warn("Orchestrator close failed", zap.Error(err))
	}
	logger.Info("Planetary orchestrator stopped")
}

// newHTTPServer exposes metrics, liveness, and the system status view.
func newHTTPServer(addr string, o *orchestrator.Orchestrator) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		status, err := o.GetSystemStatus(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func runHealthCheck(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	addr := fs.String("addr", "http://localhost:9090", "Server address")
	fs.Parse(args)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*addr + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: status %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("OK")
}

func printVersion() {
	fmt.Printf("planetary %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`Planetary - task orchestration across specialized workers

Usage:
  planetary <command> [options]

Commands:
  serve     Start the orchestrator
  init      Seed worker dataset files
  version   Show version information
  health    Check a running instance
  help      Show this help message

Options for 'serve':
  --config <path>        Path to configuration file (YAML)
  --drain-interval <d>   How often to process pending tasks (default 1s)

Examples:
  planetary serve
  planetary serve --config /etc/planetary/config.yaml
  planetary init
  planetary health --addr http://localhost:9090
  planetary version`)
}
