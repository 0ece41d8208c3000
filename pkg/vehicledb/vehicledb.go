// Package vehicledb stores vehicle baselines in Neo4j, keyed by name. It
// backs the API and the seeding tool with a shared stock-spec catalog.
package vehicledb

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/GearheadHQ/gearhead-mvp/engine/domain"
	"github.com/GearheadHQ/gearhead-mvp/pkg/repo"
)

// Label is the Neo4j node label for stored baselines.
const Label = "VehicleBaseline"

// Store persists validated vehicle baselines.
type Store struct {
	repo repo.Repository[domain.VehicleBaseline, string]
}

// New creates a Store backed by the given Neo4j driver.
func New(driver neo4j.DriverWithContext) *Store {
	r := repo.NewNeo4jRepo[domain.VehicleBaseline, string](
		driver, Label, toMap, fromRecord,
		repo.WithIDKey[domain.VehicleBaseline, string]("name"),
	)
	return &Store{repo: r}
}

// NewWithRepo creates a Store over an arbitrary repository, used in tests.
func NewWithRepo(r repo.Repository[domain.VehicleBaseline, string]) *Store {
	return &Store{repo: r}
}

// Save validates and upserts a baseline.
func (s *Store) Save(ctx context.Context, b domain.VehicleBaseline) error {
	if err := domain.ValidateBaseline(b); err != nil {
		return err
	}
	_, err := s.repo.Upsert(ctx, b)
	return err
}

// Get fetches a baseline by vehicle name.
func (s *Store) Get(ctx context.Context, name string) (domain.VehicleBaseline, error) {
	return s.repo.Get(ctx, name)
}

// List returns stored baselines, paginated.
func (s *Store) List(ctx context.Context, offset, limit int) ([]domain.VehicleBaseline, error) {
	return s.repo.List(ctx, repo.ListOpts{Offset: offset, Limit: limit})
}

// ListByDrivetrain returns baselines with the given drivetrain layout.
func (s *Store) ListByDrivetrain(ctx context.Context, d domain.Drivetrain) ([]domain.VehicleBaseline, error) {
	if !domain.ValidDrivetrains[d] {
		return nil, fmt.Errorf("drivetrain %q: %w", d, domain.ErrUnknownDrivetrain)
	}
	return s.repo.List(ctx, repo.ListOpts{Filter: map[string]any{"drivetrain": string(d)}})
}

// Delete removes a baseline by name.
func (s *Store) Delete(ctx context.Context, name string) error {
	return s.repo.Delete(ctx, name)
}

func toMap(b domain.VehicleBaseline) map[string]any {
	return map[string]any{
		"name":            b.Name,
		"hp":              b.HP,
		"torque":          b.Torque,
		"peak_hp_rpm":     int64(b.PeakHPRPM),
		"peak_torque_rpm": int64(b.PeakTorqueRPM),
		"redline_rpm":     int64(b.RedlineRPM),
		"curb_weight":     b.CurbWeight,
		"drivetrain":      string(b.Drivetrain),
		"aspiration":      string(b.Aspiration),
		"zero_to_sixty":   b.ZeroToSixty,
		"quarter_mile":    b.QuarterMile,
		"braking_60_to_0": b.Braking60To0,
		"lateral_g":       b.LateralG,
	}
}

func fromRecord(rec *neo4j.Record) (domain.VehicleBaseline, error) {
	var zero domain.VehicleBaseline
	if len(rec.Values) == 0 {
		return zero, errors.New("empty record")
	}
	node, ok := rec.Values[0].(neo4j.Node)
	if !ok {
		// Fake runners in tests return plain property maps.
		props, ok := rec.Values[0].(map[string]any)
		if !ok {
			return zero, fmt.Errorf("unexpected record value %T", rec.Values[0])
		}
		return fromProps(props)
	}
	return fromProps(node.Props)
}

func fromProps(props map[string]any) (domain.VehicleBaseline, error) {
	var b domain.VehicleBaseline
	b.Name, _ = props["name"].(string)
	if b.Name == "" {
		return b, errors.New("record missing name")
	}
	b.HP = floatProp(props, "hp")
	b.Torque = floatProp(props, "torque")
	b.PeakHPRPM = intProp(props, "peak_hp_rpm")
	b.PeakTorqueRPM = intProp(props, "peak_torque_rpm")
	b.RedlineRPM = intProp(props, "redline_rpm")
	b.CurbWeight = floatProp(props, "curb_weight")
	if s, ok := props["drivetrain"].(string); ok {
		b.Drivetrain = domain.Drivetrain(s)
	}
	if s, ok := props["aspiration"].(string); ok {
		b.Aspiration = domain.Aspiration(s)
	}
	b.ZeroToSixty = floatProp(props, "zero_to_sixty")
	b.QuarterMile = floatProp(props, "quarter_mile")
	b.Braking60To0 = floatProp(props, "braking_60_to_0")
	b.LateralG = floatProp(props, "lateral_g")
	return b, nil
}

// Neo4j returns integers as int64 and floats as float64; stored fixtures
// may hold either for numeric properties.
func floatProp(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func intProp(props map[string]any, key string) int {
	switch v := props[key].(type) {
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
