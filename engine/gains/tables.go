package gains

import "github.com/GearheadHQ/gearhead-mvp/engine/catalog"

// CategoryCaps is the per-category ceiling applied after same-category
// stacking. Beyond the ceiling a category contributes zero marginal gain.
// These are calibration values, kept table-driven so they can be tuned
// without touching the algorithm.
type CategoryCaps struct {
	HPPercent      float64
	TorquePercent  float64
	BrakingFeet    float64
	LateralG       float64
	ZeroToSixtySec float64
}

// StackingCaps holds the diminishing-returns ceilings per category. A zero
// field means the category has no ceiling for that metric.
var StackingCaps = map[catalog.Category]CategoryCaps{
	catalog.CategoryIntake:      {HPPercent: 5, TorquePercent: 4},
	catalog.CategoryExhaust:     {HPPercent: 8, TorquePercent: 8},
	catalog.CategoryTune:        {HPPercent: 12, TorquePercent: 14},
	catalog.CategoryOther:       {HPPercent: 50, TorquePercent: 55},
	catalog.CategorySuspension:  {LateralG: 0.12, BrakingFeet: 4},
	catalog.CategoryBrakes:      {BrakingFeet: 16},
	catalog.CategoryAero:        {LateralG: 0.05},
	catalog.CategoryWeight:      {ZeroToSixtySec: 0.10},
	catalog.CategoryDrivetrain:  {ZeroToSixtySec: 0.20},
	catalog.CategoryWheelsTires: {ZeroToSixtySec: 0.15, BrakingFeet: 10, LateralG: 0.12},
}

// SynergyBonus is the fixed increment granted when two co-installed mods
// form a synergy pair. Applied at most once per unordered pair and never
// compounding across more than a pair.
var SynergyBonus = struct {
	HPPercent     float64
	TorquePercent float64
}{
	HPPercent:     2,
	TorquePercent: 1,
}

// MaxHPMultiple bounds final horsepower at a multiple of stock as a safety
// net against malformed catalog data.
const MaxHPMultiple = 3.0

// MaxTorqueMultiple bounds final torque at a multiple of stock.
const MaxTorqueMultiple = 3.0

// ZeroToSixtyPowerFactor converts a fractional hp gain into a 0-60
// improvement as a fraction of the stock time. Power-to-weight feeds 0-60;
// the estimator refines this with tires, drivetrain, and actual weight.
const ZeroToSixtyPowerFactor = 0.5

// MaxZeroToSixtyImprovementFraction bounds the aggregate 0-60 improvement
// at a fraction of the stock time.
const MaxZeroToSixtyImprovementFraction = 0.5

// MaxBrakingImprovementFraction bounds the aggregate braking improvement at
// a fraction of the stock 60-0 distance.
const MaxBrakingImprovementFraction = 0.35

// MaxLateralGImprovement bounds the aggregate lateral-g improvement; the
// estimator applies the street-tire ceiling on the absolute figure.
const MaxLateralGImprovement = 0.5
