// Package main implements the Gearhead API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/GearheadHQ/gearhead-mvp/engine/catalog"
	"github.com/GearheadHQ/gearhead-mvp/engine/gains"
	"github.com/GearheadHQ/gearhead-mvp/pkg/metrics"
	"github.com/GearheadHQ/gearhead-mvp/pkg/mid"
	"github.com/GearheadHQ/gearhead-mvp/pkg/modparse"
	"github.com/GearheadHQ/gearhead-mvp/pkg/resilience"
	"github.com/GearheadHQ/gearhead-mvp/pkg/similar"
	"github.com/GearheadHQ/gearhead-mvp/pkg/vehicledb"
)

// Config holds all environment-based configuration.
type Config struct {
	Port        string
	Neo4jURL    string
	Neo4jUser   string
	Neo4jPass   string
	QdrantURL   string
	Collection  string
	CORSOrigin  string
	RateRPS     float64
	MetricsPort int
}

func loadConfig() Config {
	return Config{
		Port:        envOr("PORT", "8080"),
		Neo4jURL:    envOr("NEO4J_URL", "neo4j://localhost:7687"),
		Neo4jUser:   envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:   envOr("NEO4J_PASS", "password"),
		QdrantURL:   envOr("QDRANT_URL", "localhost:6334"),
		Collection:  envOr("QDRANT_COLLECTION", "gearhead-vehicles"),
		CORSOrigin:  envOr("CORS_ORIGIN", "*"),
		RateRPS:     envFloat("RATE_LIMIT_RPS", 50),
		MetricsPort: envInt("METRICS_PORT", 9090),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Load the modification catalog ---
	cat, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	// --- Connect to Neo4j ---
	neo4jDriver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer neo4jDriver.Close(ctx)

	// --- Connect to Qdrant ---
	matchStore, err := similar.New(cfg.QdrantURL, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer matchStore.Close()

	reg := metrics.New()
	reg.ServeAsync(cfg.MetricsPort)

	srv := newServer(serverDeps{
		agg:      gains.New(cat),
		cat:      cat,
		parser:   modparse.NewParser(cat),
		vehicles: vehicledb.New(neo4jDriver),
		similar:  matchStore,
		breaker:  resilience.NewBreaker(resilience.DefaultBreakerOpts),
		reg:      reg,
		logger:   logger,
	})

	limiter := resilience.NewLimiter(resilience.LimiterOpts{
		Rate:  cfg.RateRPS,
		Burst: int(cfg.RateRPS),
	})
	handler := mid.Chain(srv.routes(),
		mid.Recover(logger),
		mid.Logger(logger),
		mid.OTel("gearhead-api"),
		mid.CORS(cfg.CORSOrigin),
		mid.RateLimit(limiter),
	)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port, "catalog_version", cat.Version())
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutCtx)
}
