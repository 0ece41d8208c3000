// Command worker serves performance estimates over NATS request/reply.
// API nodes and batch jobs send a baseline plus build configuration to
// the estimate subject and get back the aggregated gains and physics
// figures, so heavy traffic can be fanned out across a queue group.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/GearheadHQ/gearhead-mvp/engine/catalog"
	"github.com/GearheadHQ/gearhead-mvp/engine/domain"
	"github.com/GearheadHQ/gearhead-mvp/engine/gains"
	"github.com/GearheadHQ/gearhead-mvp/engine/physics"
	"github.com/GearheadHQ/gearhead-mvp/pkg/metrics"
	"github.com/GearheadHQ/gearhead-mvp/pkg/natsutil"
)

// Subject and queue group for the estimate service.
const (
	EstimateSubject = "perf.estimate.v1"
	QueueGroup      = "estimate-workers"
)

// EstimateRequest is the NATS request payload.
type EstimateRequest struct {
	Baseline domain.VehicleBaseline    `json:"baseline"`
	Build    domain.BuildConfiguration `json:"build"`
}

// EstimateReply is the NATS reply payload.
type EstimateReply struct {
	CatalogVersion string                      `json:"catalog_version"`
	Gains          gains.GainResult            `json:"gains"`
	Estimate       physics.PerformanceEstimate `json:"estimate"`
}

var met = metrics.New()

var (
	mJobsTotal   = met.Counter("gearhead_worker_jobs_total", "Estimate jobs handled")
	mJobErrors   = met.Counter("gearhead_worker_job_errors_total", "Estimate jobs rejected")
	mJobDuration = met.Histogram("gearhead_worker_job_duration_seconds", "Per-job compute time", nil)
)

func main() {
	var (
		natsURL     = flag.String("nats", nats.DefaultURL, "NATS server URL")
		subject     = flag.String("subject", EstimateSubject, "request subject")
		queue       = flag.String("queue", QueueGroup, "queue group")
		metricsPort = flag.Int("metrics-port", 9092, "metrics HTTP port")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(*natsURL, *subject, *queue, *metricsPort, logger); err != nil {
		logger.Error("worker exited with error", "err", err)
		os.Exit(1)
	}
}

func run(natsURL, subject, queue string, metricsPort int, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Default()
	if err != nil {
		return err
	}
	agg := gains.New(cat)

	nc, err := nats.Connect(natsURL,
		nats.Name("gearhead-worker"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return err
	}
	defer nc.Close()

	met.ServeAsync(metricsPort)

	sub, err := natsutil.Serve(nc, subject, queue, estimateHandler(agg, logger))
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	logger.Info("worker started",
		"subject", subject,
		"queue", queue,
		"catalog_version", cat.Version(),
	)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	// Stop taking new requests, then let in-flight replies flush.
	if err := sub.Drain(); err != nil {
		return err
	}
	return nc.Drain()
}

func estimateHandler(agg *gains.Aggregator, logger *slog.Logger) func(context.Context, EstimateRequest) (EstimateReply, error) {
	return func(ctx context.Context, req EstimateRequest) (EstimateReply, error) {
		start := time.Now()
		mJobsTotal.Inc()

		result, err := agg.Aggregate(req.Baseline, req.Build)
		if err != nil {
			mJobErrors.Inc()
			logger.Warn("rejected estimate job", "vehicle", req.Baseline.Name, "err", err)
			return EstimateReply{}, err
		}
		est, err := physics.Estimate(req.Baseline, result, req.Build)
		if err != nil {
			mJobErrors.Inc()
			return EstimateReply{}, err
		}

		mJobDuration.Since(start)
		logger.Info("estimate computed",
			"vehicle", req.Baseline.Name,
			"mods", len(result.AppliedMods),
			"hp_gain", result.HPGain,
		)
		return EstimateReply{
			CatalogVersion: agg.CatalogVersion(),
			Gains:          result,
			Estimate:       est,
		}, nil
	}
}
