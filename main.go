// Copyright 2025 Certen Protocol

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/certen/independant-validator/pkg/batch"
	"github.com/certen/independant-validator/pkg/config"
	"github.com/certen/independant-validator/pkg/database"
	"github.com/certen/independant-validator/pkg/kvdb"
	"github.com/certen/independant-validator/pkg/metrics"
	"github.com/certen/independant-validator/pkg/server"
	"github.com/certen/independant-validator/pkg/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration:", err)
	}

	logger := log.New(log.Writer(), "[HTM] ", log.LstdFlags)

	kv, closeKV, err := openKV(cfg)
	if err != nil {
		log.Fatal("failed to open storage backend:", err)
	}
	defer closeKV()
	s := store.NewStore(kv)
	logger.Printf("storage backend: %s (dir=%s)", cfg.KVBackend, cfg.DataDir)

	var auditRepo *database.AuditRepository
	if cfg.DatabaseEnabled {
		auditClient, err := database.NewClient(cfg)
		if err != nil {
			log.Fatal("failed to connect audit database:", err)
		}
		defer auditClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := auditClient.MigrateUp(ctx); err != nil {
			cancel()
			log.Fatal("failed to run audit log migrations:", err)
		}
		cancel()
		auditRepo = database.NewAuditRepository(auditClient)
		logger.Println("operational audit log enabled")
	}

	collector := batch.NewCollector(&batch.CollectorConfig{
		MaxBatchSize: cfg.BatchMaxSize,
		BatchTimeout: cfg.BatchMaxAge,
		Logger:       log.New(log.Writer(), "[BatchCollector] ", log.LstdFlags),
	})

	promReg := prometheus.NewRegistry()
	reg := metrics.NewRegistry(promReg)

	handlers := server.NewHandlers(s, collector, reg, auditRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/api/worlds", handlers.HandleCreateWorld)
	mux.HandleFunc("/api/worlds/", routeWorldPath(handlers))
	mux.HandleFunc("/api/locate", handlers.HandleLocate)
	mux.HandleFunc("/api/batches/close", handlers.HandleCloseBatch)

	if cfg.BatchAutoFlush {
		go runBatchFlusher(collector, cfg.BatchFlushEvery, logger)
	}

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler(promReg))
	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: metricsMux,
	}

	go func() {
		logger.Printf("listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error:", err)
		}
	}()
	go func() {
		logger.Printf("metrics listening on %s", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("metrics server error:", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpServer.Shutdown(ctx)
	metricsServer.Shutdown(ctx)
}

// openKV opens the configured KV backend and returns a close function.
func openKV(cfg *config.Config) (*kvdb.KVAdapter, func(), error) {
	switch cfg.KVBackend {
	case "memdb":
		db := dbm.NewMemDB()
		return kvdb.NewKVAdapter(db), func() { db.Close() }, nil
	case "goleveldb":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		db, err := dbm.NewGoLevelDB("htm", cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open goleveldb: %w", err)
		}
		return kvdb.NewKVAdapter(db), func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown KV backend %q", cfg.KVBackend)
	}
}

// routeWorldPath dispatches the "/api/worlds/..." subtree to the right
// handler based on method and path shape, mirroring the rest of the API's
// plain stdlib ServeMux prefix-matching style.
func routeWorldPath(h *server.Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		hasTrixels := strings.Contains(path, "/trixels/")
		hasUpdate := strings.HasSuffix(path, "/update")
		hasCommitment := strings.HasSuffix(path, "/commitment")

		switch {
		case hasTrixels && hasUpdate && r.Method == http.MethodPost:
			h.HandleUpdateTrixel(w, r)
		case hasTrixels && hasCommitment && r.Method == http.MethodGet:
			h.HandleGetTrixelCommitment(w, r)
		case hasTrixels && r.Method == http.MethodPost:
			h.HandleCreateTrixel(w, r)
		case hasTrixels && r.Method == http.MethodGet:
			h.HandleGetTrixel(w, r)
		case r.Method == http.MethodGet:
			h.HandleGetWorld(w, r)
		default:
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		}
	}
}

// runBatchFlusher periodically closes the open update batch once it has
// reached its size bound or aged past its timeout, so a batch isn't left
// open indefinitely waiting for enough updates to hit the size threshold.
func runBatchFlusher(c *batch.Collector, interval time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if !c.ShouldClose() {
			continue
		}
		closed, err := c.Close()
		if err != nil {
			logger.Printf("batch auto-flush failed: %v", err)
			continue
		}
		if closed != nil {
			logger.Printf("auto-flushed batch %s (%d records)", closed.BatchID, len(closed.Records))
		}
	}
}
