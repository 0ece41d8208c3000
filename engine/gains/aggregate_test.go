package gains

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/GearheadHQ/gearhead-mvp/engine/catalog"
	"github.com/GearheadHQ/gearhead-mvp/engine/domain"
)

func testAggregator(t *testing.T) *Aggregator {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return New(cat)
}

func rwdBaseline() domain.VehicleBaseline {
	return domain.VehicleBaseline{
		Name:          "Test GT",
		HP:            300,
		Torque:        280,
		PeakHPRPM:     6500,
		PeakTorqueRPM: 4200,
		RedlineRPM:    7200,
		CurbWeight:    3500,
		Drivetrain:    domain.DrivetrainRWD,
		ZeroToSixty:   5.2,
		QuarterMile:   13.8,
		Braking60To0:  118,
		LateralG:      0.92,
	}
}

func build(keys ...string) domain.BuildConfiguration {
	return domain.BuildConfiguration{InstalledModKeys: keys}
}

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestAggregate_ZeroCase(t *testing.T) {
	agg := testAggregator(t)
	res, err := agg.Aggregate(rwdBaseline(), domain.BuildConfiguration{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if res.HPGain != 0 || res.TorqueGain != 0 {
		t.Errorf("empty build should gain nothing, got hp=%g tq=%g", res.HPGain, res.TorqueGain)
	}
	if res.ZeroToSixtyImprovement != 0 || res.BrakingImprovementFeet != 0 || res.LateralGImprovement != 0 {
		t.Errorf("empty build should not touch physical metrics: %+v", res)
	}
	if len(res.AppliedMods) != 0 || len(res.Warnings) != 0 {
		t.Errorf("empty build should apply nothing: %+v", res)
	}
}

// Two +3% hp mods in separate categories, each under its category cap, on a
// 300 hp baseline: 300 * 0.06 = 18.
func TestAggregate_IntakePlusExhaustScenario(t *testing.T) {
	agg := testAggregator(t)
	res, err := agg.Aggregate(rwdBaseline(), build("cold-air-intake", "catback-exhaust"))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !almostEqual(res.HPGain, 18, 1e-9) {
		t.Errorf("hpGain = %g, want 18", res.HPGain)
	}
	// Torque stacks from its own percentage table: 2% + 3% of 280 = 14.
	if !almostEqual(res.TorqueGain, 14, 1e-9) {
		t.Errorf("torqueGain = %g, want 14", res.TorqueGain)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", res.Warnings)
	}
	want := []string{"cold-air-intake", "catback-exhaust"}
	if !reflect.DeepEqual(res.AppliedMods, want) {
		t.Errorf("appliedMods = %v, want %v", res.AppliedMods, want)
	}
}

func TestAggregate_ConflictFirstWins(t *testing.T) {
	agg := testAggregator(t)
	res, err := agg.Aggregate(rwdBaseline(), build("supercharger-kit", "turbo-kit"))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !reflect.DeepEqual(res.AppliedMods, []string{"supercharger-kit"}) {
		t.Errorf("appliedMods = %v, want only supercharger-kit", res.AppliedMods)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %+v", res.Warnings)
	}
	w := res.Warnings[0]
	if w.Key != "turbo-kit" || w.Reason != ReasonConflict {
		t.Errorf("warning = %+v, want turbo-kit conflict", w)
	}
	// Supercharger: 35% of 300, multiplicative with a single entry.
	if !almostEqual(res.HPGain, 105, 1e-9) {
		t.Errorf("hpGain = %g, want 105", res.HPGain)
	}
}

func TestAggregate_UnknownKeyWarning(t *testing.T) {
	agg := testAggregator(t)
	res, err := agg.Aggregate(rwdBaseline(), build("flux-capacitor", "cold-air-intake"))
	if err != nil {
		t.Fatalf("unknown keys must not be fatal: %v", err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Reason != ReasonUnknownKey || res.Warnings[0].Key != "flux-capacitor" {
		t.Errorf("warnings = %+v, want one unknown_key for flux-capacitor", res.Warnings)
	}
	if !almostEqual(res.HPGain, 9, 1e-9) {
		t.Errorf("hpGain = %g, want 9 (intake alone)", res.HPGain)
	}
}

func TestAggregate_DuplicatesIgnored(t *testing.T) {
	agg := testAggregator(t)
	b := rwdBaseline()
	once, _ := agg.Aggregate(b, build("cold-air-intake"))
	twice, _ := agg.Aggregate(b, build("cold-air-intake", "cold-air-intake"))
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("duplicate keys must be ignored:\n once=%+v\ntwice=%+v", once, twice)
	}
}

func TestAggregate_CategoryCap(t *testing.T) {
	agg := testAggregator(t)
	// Exhaust sums to 13% raw (3+4+2+4), capped at 8%. Headers+catback form
	// a synergy pair worth +2% hp / +1% tq.
	res, err := agg.Aggregate(rwdBaseline(), build("catback-exhaust", "headers", "high-flow-cat", "downpipe"))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !almostEqual(res.HPGain, 30, 1e-9) { // (8 + 2)% of 300
		t.Errorf("hpGain = %g, want 30", res.HPGain)
	}
	if !almostEqual(res.TorqueGain, 280*0.09, 1e-9) { // (8 capped + 1 synergy)%
		t.Errorf("torqueGain = %g, want %g", res.TorqueGain, 280*0.09)
	}
}

func TestAggregate_MultiplicativeStacking(t *testing.T) {
	agg := testAggregator(t)
	res, err := agg.Aggregate(rwdBaseline(), build("turbo-kit", "intercooler"))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	// 40% multiplicative + 2% additive + 2% synergy (turbo lists intercooler).
	if !almostEqual(res.HPGain, 300*0.44, 1e-9) {
		t.Errorf("hpGain = %g, want %g", res.HPGain, 300*0.44)
	}
}

func TestAggregate_SynergyOncePerPair(t *testing.T) {
	agg := testAggregator(t)
	b := rwdBaseline()
	with, _ := agg.Aggregate(b, build("cold-air-intake", "ecu-tune"))
	cai, _ := agg.Aggregate(b, build("cold-air-intake"))
	tune, _ := agg.Aggregate(b, build("ecu-tune"))
	bonus := with.HPGain - cai.HPGain - tune.HPGain
	if !almostEqual(bonus, 300*SynergyBonus.HPPercent/100, 1e-9) {
		t.Errorf("synergy bonus = %g hp, want %g", bonus, 300*SynergyBonus.HPPercent/100)
	}
}

func TestAggregate_WeightOnlyBuildImprovesZeroToSixty(t *testing.T) {
	agg := testAggregator(t)
	res, err := agg.Aggregate(rwdBaseline(), build("carbon-hood", "rear-seat-delete"))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if res.HPGain != 0 {
		t.Errorf("weight mods should not gain hp, got %g", res.HPGain)
	}
	if res.ZeroToSixtyImprovement <= 0 {
		t.Errorf("weight-only build must still improve 0-60, got %g", res.ZeroToSixtyImprovement)
	}
}

func TestAggregate_Determinism(t *testing.T) {
	agg := testAggregator(t)
	b := rwdBaseline()
	cfg := build("turbo-kit", "intercooler", "coilovers", "big-brake-kit", "r-compound-tires")
	first, err := agg.Aggregate(b, cfg)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _ := agg.Aggregate(b, cfg)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\nfirst=%+v\nagain=%+v", i, first, again)
		}
	}
}

func TestAggregate_OrderIndependence(t *testing.T) {
	agg := testAggregator(t)
	b := rwdBaseline()
	keys := []string{"cold-air-intake", "catback-exhaust", "ecu-tune", "coilovers", "big-brake-kit"}
	perms := [][]string{
		{"coilovers", "ecu-tune", "big-brake-kit", "cold-air-intake", "catback-exhaust"},
		{"big-brake-kit", "catback-exhaust", "coilovers", "cold-air-intake", "ecu-tune"},
	}
	base, _ := agg.Aggregate(b, build(keys...))
	for _, p := range perms {
		got, _ := agg.Aggregate(b, build(p...))
		if base.HPGain != got.HPGain || base.TorqueGain != got.TorqueGain ||
			base.ZeroToSixtyImprovement != got.ZeroToSixtyImprovement ||
			base.BrakingImprovementFeet != got.BrakingImprovementFeet ||
			base.LateralGImprovement != got.LateralGImprovement {
			t.Errorf("permutation %v changed deltas:\nbase=%+v\n got=%+v", p, base, got)
		}
	}
}

func TestAggregate_Monotonicity(t *testing.T) {
	agg := testAggregator(t)
	b := rwdBaseline()
	subset := []string{"cold-air-intake"}
	supersets := [][]string{
		{"cold-air-intake", "catback-exhaust"},
		{"cold-air-intake", "catback-exhaust", "ecu-tune"},
		{"cold-air-intake", "catback-exhaust", "ecu-tune", "headers", "turbo-kit"},
	}
	prev, _ := agg.Aggregate(b, build(subset...))
	for _, s := range supersets {
		got, _ := agg.Aggregate(b, build(s...))
		if got.HPGain < prev.HPGain || got.TorqueGain < prev.TorqueGain {
			t.Errorf("superset %v decreased gains: prev hp=%g tq=%g, got hp=%g tq=%g",
				s, prev.HPGain, prev.TorqueGain, got.HPGain, got.TorqueGain)
		}
		prev = got
	}
}

func TestAggregate_BrakingClampDiagnostic(t *testing.T) {
	agg := testAggregator(t)
	b := rwdBaseline()
	b.Braking60To0 = 60 // short stock distance so the fractional cap bites
	res, err := agg.Aggregate(b, build("big-brake-kit", "performance-pads", "braided-lines", "coilovers", "r-compound-tires", "lightweight-wheels"))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	wantMax := 60 * MaxBrakingImprovementFraction
	if res.BrakingImprovementFeet != wantMax {
		t.Errorf("braking improvement = %g, want clamped to %g", res.BrakingImprovementFeet, wantMax)
	}
	found := false
	for _, c := range res.Diagnostics {
		if c.Field == "braking_improvement_feet" && c.Clamped == wantMax {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a braking clamp diagnostic, got %+v", res.Diagnostics)
	}
}

func TestAggregate_StructuralErrors(t *testing.T) {
	agg := testAggregator(t)
	bad := rwdBaseline()
	bad.HP = -1
	if _, err := agg.Aggregate(bad, domain.BuildConfiguration{}); !errors.Is(err, domain.ErrNonPositiveHP) {
		t.Errorf("expected ErrNonPositiveHP, got %v", err)
	}
	cfg := domain.BuildConfiguration{TireCompound: "slicks"}
	if _, err := agg.Aggregate(rwdBaseline(), cfg); !errors.Is(err, domain.ErrUnknownTireCompound) {
		t.Errorf("expected ErrUnknownTireCompound, got %v", err)
	}
}
