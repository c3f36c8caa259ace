/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the banking ledger server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize storage (memory or SQLite)
  3. Create bank, metrics registry and API handler
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port     HTTP server port (default: $PORT, else 3000)
  -storage  Storage backend: "memory" or "sqlite" (default: memory)
  -db       SQLite database path when -storage=sqlite (default: ":memory:")

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close storage
  4. Exit

EXAMPLES:
  # Run with the default in-memory storage
  ./server

  # Run on SQLite (still in memory)
  ./server -storage=sqlite

  # Run on different port
  PORT=8080 ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - bank/ledger.go: Balance-mutation protocol
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/warp/bank-ledger/api"
	"github.com/warp/bank-ledger/bank"
	"github.com/warp/bank-ledger/bank/store"
	"github.com/warp/bank-ledger/store/sqlite"
)

const defaultPort = 3000

func main() {
	// Flags
	port := flag.Int("port", envPort(), "HTTP server port")
	backend := flag.String("storage", "memory", `Storage backend: "memory" or "sqlite"`)
	dbPath := flag.String("db", ":memory:", "SQLite database path")
	flag.Parse()

	// Initialize storage
	storage, closer, err := openStorage(*backend, *dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer closer.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize bank and handler
	b := bank.New(storage, bank.Config{
		Metrics: bank.NewMetrics(registry),
		Logger:  log.Default(),
	})
	handler := api.NewHandler(b)

	// Create router
	router := api.NewRouter(handler, registry)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d (storage: %s)", *port, *backend)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// envPort returns $PORT when it is a valid integer, else defaultPort.
func envPort() int {
	if p, err := strconv.Atoi(os.Getenv("PORT")); err == nil && p > 0 {
		return p
	}
	return defaultPort
}

func openStorage(backend, dbPath string) (bank.Storage, io.Closer, error) {
	switch backend {
	case "memory":
		return store.NewMemory(), nopCloser{}, nil
	case "sqlite":
		s, err := sqlite.New(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage %q", backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
