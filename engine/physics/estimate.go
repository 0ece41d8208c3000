// Package physics estimates acceleration, braking, and handling figures
// from a baseline, aggregated gains, and chassis setup. The quarter-mile
// figures are calibrated empirical fits, not strict derivations; every
// constant lives in tables.go so the model can be recalibrated without
// touching the algorithm. A zero-gain, all-default build reproduces the
// baseline's stock figures.
package physics

import (
	"fmt"
	"math"

	"github.com/GearheadHQ/gearhead-mvp/engine/domain"
	"github.com/GearheadHQ/gearhead-mvp/engine/gains"
)

// PerformanceEstimate is the estimator output.
type PerformanceEstimate struct {
	ZeroToSixty      float64        `json:"zero_to_sixty"`      // seconds
	QuarterMile      float64        `json:"quarter_mile"`       // seconds
	TrapSpeedMPH     float64        `json:"trap_speed_mph"`
	Braking60To0Feet float64        `json:"braking_60_to_0_feet"`
	LateralG         float64        `json:"lateral_g"`
	LapTimeDeltaSec  float64        `json:"lap_time_delta_sec"` // vs stock; negative is faster
	Diagnostics      []domain.Clamp `json:"diagnostics,omitempty"`
}

// Estimate derives the performance figures for a build. Pure function of
// its inputs; safe for concurrent use.
func Estimate(b domain.VehicleBaseline, g gains.GainResult, cfg domain.BuildConfiguration) (PerformanceEstimate, error) {
	if err := domain.ValidateBaseline(b); err != nil {
		return PerformanceEstimate{}, fmt.Errorf("physics: %w", err)
	}
	if err := domain.ValidateBuild(b, cfg); err != nil {
		return PerformanceEstimate{}, fmt.Errorf("physics: %w", err)
	}

	var est PerformanceEstimate
	clamp := func(field string, v *float64, lo, hi float64) {
		raw := *v
		if raw < lo {
			*v = lo
		} else if raw > hi {
			*v = hi
		} else {
			return
		}
		est.Diagnostics = append(est.Diagnostics, domain.Clamp{Field: field, Raw: raw, Clamped: *v})
	}

	weight := b.CurbWeight - cfg.WeightReductionLbs
	clamp("weight", &weight, MinCurbWeightLbs, math.Inf(1))

	grip := GripMultiplier[cfg.EffectiveCompound()]
	traction := TractionMultiplier[b.Drivetrain]

	// Power-to-weight feeds acceleration. Ratios against stock keep the
	// zero case exactly at the baseline figures.
	pwStock := b.HP / b.CurbWeight
	pwNew := (b.HP + g.HPGain) / weight
	ratio := pwNew / pwStock

	// Launch efficiency: extra grip helps, scaled by drivetrain traction.
	launch := 1 + (grip-1)*traction

	est.ZeroToSixty = b.ZeroToSixty / (math.Pow(ratio, PowerToWeightExponent) * launch)
	clamp("zero_to_sixty", &est.ZeroToSixty, MinZeroToSixtySec, math.Inf(1))

	est.QuarterMile = b.QuarterMile / math.Pow(ratio, QuarterMilePowerExponent) / (1 + (launch-1)*QuarterMileLaunchWeight)
	est.TrapSpeedMPH = TrapSpeedCoefficient * math.Cbrt((b.HP+g.HPGain)/weight)

	est.Braking60To0Feet = (b.Braking60To0 - g.BrakingImprovementFeet) / math.Pow(grip, BrakingGripExponent)
	clamp("braking_60_to_0_feet", &est.Braking60To0Feet, MinBrakingFeet, math.Inf(1))

	est.LateralG = b.LateralG + g.LateralGImprovement + (grip-1)*TireLateralFactor
	if s := cfg.Suspension; s != nil {
		if s.Coilovers {
			est.LateralG += SuspensionBonuses.Coilovers
		}
		if s.SwayBars {
			est.LateralG += SuspensionBonuses.SwayBars
		}
		if s.RaceAlignment {
			est.LateralG += SuspensionBonuses.RaceAlignment
		}
	}
	if a := cfg.Aero; a != nil {
		if a.Splitter {
			est.LateralG += AeroBonuses.Splitter
		}
		if a.Wing {
			est.LateralG += AeroBonuses.Wing
		}
		if a.Diffuser {
			est.LateralG += AeroBonuses.Diffuser
		}
	}
	clamp("lateral_g", &est.LateralG, 0, MaxLateralG)

	est.LapTimeDeltaSec = -(LapSecondsPerLateralG*(est.LateralG-b.LateralG) +
		LapSecondsPerPowerRatio*(ratio-1))

	return est, nil
}
