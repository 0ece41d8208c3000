// Command seed-vehicles loads a YAML fixture of stock vehicle specs and
// writes them to the baseline catalog (Neo4j) and the similarity index
// (Qdrant). Writes are rate limited so a large fixture doesn't hammer a
// shared database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/GearheadHQ/gearhead-mvp/engine/domain"
	"github.com/GearheadHQ/gearhead-mvp/pkg/fn"
	"github.com/GearheadHQ/gearhead-mvp/pkg/similar"
	"github.com/GearheadHQ/gearhead-mvp/pkg/vehicledb"
)

// fixtureVehicle mirrors domain.VehicleBaseline with YAML field names.
type fixtureVehicle struct {
	Name          string  `yaml:"name"`
	HP            float64 `yaml:"hp"`
	Torque        float64 `yaml:"torque"`
	PeakHPRPM     int     `yaml:"peak_hp_rpm"`
	PeakTorqueRPM int     `yaml:"peak_torque_rpm"`
	RedlineRPM    int     `yaml:"redline_rpm"`
	CurbWeight    float64 `yaml:"curb_weight"`
	Drivetrain    string  `yaml:"drivetrain"`
	Aspiration    string  `yaml:"aspiration"`
	ZeroToSixty   float64 `yaml:"zero_to_sixty"`
	QuarterMile   float64 `yaml:"quarter_mile"`
	Braking60To0  float64 `yaml:"braking_60_to_0"`
	LateralG      float64 `yaml:"lateral_g"`
}

type fixture struct {
	Vehicles []fixtureVehicle `yaml:"vehicles"`
}

func (v fixtureVehicle) baseline() domain.VehicleBaseline {
	return domain.VehicleBaseline{
		Name:          v.Name,
		HP:            v.HP,
		Torque:        v.Torque,
		PeakHPRPM:     v.PeakHPRPM,
		PeakTorqueRPM: v.PeakTorqueRPM,
		RedlineRPM:    v.RedlineRPM,
		CurbWeight:    v.CurbWeight,
		Drivetrain:    domain.Drivetrain(v.Drivetrain),
		Aspiration:    domain.Aspiration(v.Aspiration),
		ZeroToSixty:   v.ZeroToSixty,
		QuarterMile:   v.QuarterMile,
		Braking60To0:  v.Braking60To0,
		LateralG:      v.LateralG,
	}
}

// loadFixture parses and validates the YAML fixture. Every entry must be a
// valid baseline; a single bad entry fails the whole load so partial seeds
// don't slip through.
func loadFixture(path string) ([]domain.VehicleBaseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Vehicles) == 0 {
		return nil, fmt.Errorf("%s: no vehicles", path)
	}

	baselines := make([]domain.VehicleBaseline, len(f.Vehicles))
	for i, v := range f.Vehicles {
		b := v.baseline()
		if err := domain.ValidateBaseline(b); err != nil {
			return nil, fmt.Errorf("vehicle %d (%s): %w", i, v.Name, err)
		}
		baselines[i] = b
	}
	return baselines, nil
}

func main() {
	var (
		fixturePath = flag.String("fixture", "vehicles.yaml", "YAML vehicle fixture")
		neo4jURL    = flag.String("neo4j", "neo4j://localhost:7687", "Neo4j bolt URL")
		neo4jUser   = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass   = flag.String("neo4j-pass", "password", "Neo4j password")
		qdrantAddr  = flag.String("qdrant", "localhost:6334", "Qdrant gRPC address")
		collection  = flag.String("collection", "gearhead-vehicles", "Qdrant collection name")
		writeRate   = flag.Float64("rate", 20, "max writes per second")
		workers     = flag.Int("workers", 4, "concurrent writers")
		dryRun      = flag.Bool("dry-run", false, "validate the fixture and exit")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	baselines, err := loadFixture(*fixturePath)
	if err != nil {
		logger.Error("fixture load failed", "err", err)
		os.Exit(1)
	}
	logger.Info("fixture loaded", "path", *fixturePath, "vehicles", len(baselines))

	if *dryRun {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := seed(ctx, seedConfig{
		neo4jURL:   *neo4jURL,
		neo4jUser:  *neo4jUser,
		neo4jPass:  *neo4jPass,
		qdrantAddr: *qdrantAddr,
		collection: *collection,
		writeRate:  *writeRate,
		workers:    *workers,
	}, baselines, logger); err != nil {
		logger.Error("seed failed", "err", err)
		os.Exit(1)
	}
}

type seedConfig struct {
	neo4jURL   string
	neo4jUser  string
	neo4jPass  string
	qdrantAddr string
	collection string
	writeRate  float64
	workers    int
}

func seed(ctx context.Context, cfg seedConfig, baselines []domain.VehicleBaseline, logger *slog.Logger) error {
	driver, err := neo4j.NewDriverWithContext(cfg.neo4jURL, neo4j.BasicAuth(cfg.neo4jUser, cfg.neo4jPass, ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer driver.Close(ctx)
	store := vehicledb.New(driver)

	matchStore, err := similar.New(cfg.qdrantAddr, cfg.collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer matchStore.Close()

	if err := matchStore.EnsureCollection(ctx); err != nil {
		return err
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.writeRate), 1)
	retry := fn.RetryOpts{MaxAttempts: 3, InitialWait: 500 * time.Millisecond, MaxWait: 5 * time.Second, Jitter: true}

	type outcome struct {
		name string
		err  error
	}
	results := fn.ParMap(baselines, cfg.workers, func(b domain.VehicleBaseline) outcome {
		if err := limiter.Wait(ctx); err != nil {
			return outcome{name: b.Name, err: err}
		}
		err := fn.Retry(ctx, retry, func(ctx context.Context) error {
			return store.Save(ctx, b)
		})
		return outcome{name: b.Name, err: err}
	})

	var saved []domain.VehicleBaseline
	failed := 0
	for i, res := range results {
		if res.err != nil {
			failed++
			logger.Error("save failed", "vehicle", res.name, "err", res.err)
			continue
		}
		saved = append(saved, baselines[i])
	}

	if len(saved) > 0 {
		if err := matchStore.Index(ctx, saved...); err != nil {
			return err
		}
	}

	logger.Info("seed complete", "saved", len(saved), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d vehicles failed", failed, len(baselines))
	}
	return nil
}
