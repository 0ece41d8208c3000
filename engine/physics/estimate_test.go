package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/GearheadHQ/gearhead-mvp/engine/domain"
	"github.com/GearheadHQ/gearhead-mvp/engine/gains"
)

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

func TestEstimate_ZeroCaseReproducesStock(t *testing.T) {
	b := rwdBaseline()
	est, err := Estimate(b, gains.GainResult{}, domain.BuildConfiguration{})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if est.ZeroToSixty != b.ZeroToSixty {
		t.Errorf("0-60 = %g, want stock %g", est.ZeroToSixty, b.ZeroToSixty)
	}
	if est.QuarterMile != b.QuarterMile {
		t.Errorf("quarter mile = %g, want stock %g", est.QuarterMile, b.QuarterMile)
	}
	if est.Braking60To0Feet != b.Braking60To0 {
		t.Errorf("braking = %g, want stock %g", est.Braking60To0Feet, b.Braking60To0)
	}
	if est.LateralG != b.LateralG {
		t.Errorf("lateral g = %g, want stock %g", est.LateralG, b.LateralG)
	}
	if est.LapTimeDeltaSec != 0 {
		t.Errorf("lap delta = %g, want 0", est.LapTimeDeltaSec)
	}
	if len(est.Diagnostics) != 0 {
		t.Errorf("stock estimate should not clamp: %+v", est.Diagnostics)
	}
}

func TestEstimate_MorePowerIsFaster(t *testing.T) {
	b := rwdBaseline()
	stock, _ := Estimate(b, gains.GainResult{}, domain.BuildConfiguration{})
	tuned, err := Estimate(b, gains.GainResult{HPGain: 60}, domain.BuildConfiguration{})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if tuned.ZeroToSixty >= stock.ZeroToSixty {
		t.Errorf("0-60 with +60hp = %g, want faster than %g", tuned.ZeroToSixty, stock.ZeroToSixty)
	}
	if tuned.QuarterMile >= stock.QuarterMile {
		t.Errorf("quarter mile should improve with power")
	}
	if tuned.TrapSpeedMPH <= stock.TrapSpeedMPH {
		t.Errorf("trap speed should rise with power")
	}
	if tuned.LapTimeDeltaSec >= 0 {
		t.Errorf("lap delta should be negative (faster), got %g", tuned.LapTimeDeltaSec)
	}
}

func TestEstimate_WeightReductionIsFaster(t *testing.T) {
	b := rwdBaseline()
	stock, _ := Estimate(b, gains.GainResult{}, domain.BuildConfiguration{})
	light, err := Estimate(b, gains.GainResult{}, domain.BuildConfiguration{WeightReductionLbs: 300})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if light.ZeroToSixty >= stock.ZeroToSixty {
		t.Errorf("weight reduction alone must improve 0-60: %g vs %g", light.ZeroToSixty, stock.ZeroToSixty)
	}
}

func TestEstimate_DrivetrainLaunchOrdering(t *testing.T) {
	// Same grip bump, three drivetrains: AWD > RWD > FWD launch benefit.
	cfg := domain.BuildConfiguration{TireCompound: domain.TireTrack}
	times := map[domain.Drivetrain]float64{}
	for _, dt := range []domain.Drivetrain{domain.DrivetrainAWD, domain.DrivetrainRWD, domain.DrivetrainFWD} {
		b := rwdBaseline()
		b.Drivetrain = dt
		est, err := Estimate(b, gains.GainResult{}, cfg)
		if err != nil {
			t.Fatalf("Estimate(%s): %v", dt, err)
		}
		times[dt] = est.ZeroToSixty
	}
	if !(times[domain.DrivetrainAWD] < times[domain.DrivetrainRWD] &&
		times[domain.DrivetrainRWD] < times[domain.DrivetrainFWD]) {
		t.Errorf("launch ordering wrong: %+v", times)
	}
}

func TestEstimate_GripShortensBraking(t *testing.T) {
	b := rwdBaseline()
	street, _ := Estimate(b, gains.GainResult{}, domain.BuildConfiguration{})
	track, _ := Estimate(b, gains.GainResult{}, domain.BuildConfiguration{TireCompound: domain.TireTrack})
	if track.Braking60To0Feet >= street.Braking60To0Feet {
		t.Errorf("track tires should stop shorter: %g vs %g", track.Braking60To0Feet, street.Braking60To0Feet)
	}
	withKit, _ := Estimate(b, gains.GainResult{BrakingImprovementFeet: 12}, domain.BuildConfiguration{})
	if math.Abs(withKit.Braking60To0Feet-(118-12)) > 1e-9 {
		t.Errorf("brake gain should subtract directly on street tires: %g", withKit.Braking60To0Feet)
	}
}

func TestEstimate_LateralGBonusesAndCeiling(t *testing.T) {
	b := rwdBaseline()
	cfg := domain.BuildConfiguration{
		Suspension: &domain.SuspensionSetup{Coilovers: true, SwayBars: true},
		Aero:       &domain.AeroSetup{Wing: true},
	}
	est, err := Estimate(b, gains.GainResult{}, cfg)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	want := b.LateralG + SuspensionBonuses.Coilovers + SuspensionBonuses.SwayBars + AeroBonuses.Wing
	if math.Abs(est.LateralG-want) > 1e-9 {
		t.Errorf("lateral g = %g, want %g", est.LateralG, want)
	}

	// Pile everything on; the street-tire ceiling must hold and be recorded.
	maxed, _ := Estimate(b, gains.GainResult{LateralGImprovement: 0.5}, domain.BuildConfiguration{
		TireCompound: domain.TireDrag,
		Suspension:   &domain.SuspensionSetup{Coilovers: true, SwayBars: true, RaceAlignment: true},
		Aero:         &domain.AeroSetup{Splitter: true, Wing: true, Diffuser: true},
	})
	if maxed.LateralG != MaxLateralG {
		t.Errorf("lateral g = %g, want ceiling %g", maxed.LateralG, MaxLateralG)
	}
	found := false
	for _, c := range maxed.Diagnostics {
		if c.Field == "lateral_g" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected lateral_g clamp diagnostic, got %+v", maxed.Diagnostics)
	}
}

func TestEstimate_WeightFloor(t *testing.T) {
	b := rwdBaseline()
	b.CurbWeight = 2000
	est, err := Estimate(b, gains.GainResult{}, domain.BuildConfiguration{WeightReductionLbs: 500})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	found := false
	for _, c := range est.Diagnostics {
		if c.Field == "weight" && c.Clamped == MinCurbWeightLbs {
			found = true
		}
	}
	if !found {
		t.Errorf("expected weight floor diagnostic, got %+v", est.Diagnostics)
	}
}

func TestEstimate_StructuralErrors(t *testing.T) {
	b := rwdBaseline()
	b.CurbWeight = 0
	if _, err := Estimate(b, gains.GainResult{}, domain.BuildConfiguration{}); !errors.Is(err, domain.ErrNonPositiveWeight) {
		t.Errorf("expected ErrNonPositiveWeight, got %v", err)
	}
	if _, err := Estimate(rwdBaseline(), gains.GainResult{}, domain.BuildConfiguration{WeightReductionLbs: -5}); !errors.Is(err, domain.ErrNegativeReduction) {
		t.Errorf("expected ErrNegativeReduction, got %v", err)
	}
}
