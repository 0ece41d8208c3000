package physics

import "github.com/GearheadHQ/gearhead-mvp/engine/domain"

// TractionMultiplier scales how much of the available launch grip a
// drivetrain layout can use. AWD launches hardest, FWD softest.
var TractionMultiplier = map[domain.Drivetrain]float64{
	domain.DrivetrainAWD: 1.25,
	domain.DrivetrainRWD: 1.00,
	domain.DrivetrainFWD: 0.85,
}

// GripMultiplier is the grip class per tire compound, relative to street
// tires.
var GripMultiplier = map[domain.TireCompound]float64{
	domain.TireStreet:      1.00,
	domain.TireSummer:      1.05,
	domain.TirePerformance: 1.12,
	domain.TireTrack:       1.22,
	domain.TireDrag:        1.30,
}

// SuspensionBonuses are independent additive lateral-g bonuses for chassis
// setup overrides.
var SuspensionBonuses = struct {
	Coilovers     float64
	SwayBars      float64
	RaceAlignment float64
}{
	Coilovers:     0.04,
	SwayBars:      0.03,
	RaceAlignment: 0.03,
}

// AeroBonuses are independent additive lateral-g bonuses for aero
// overrides.
var AeroBonuses = struct {
	Splitter float64
	Wing     float64
	Diffuser float64
}{
	Splitter: 0.02,
	Wing:     0.03,
	Diffuser: 0.02,
}

const (
	// PowerToWeightExponent shapes how the 0-60 time responds to the
	// power-to-weight ratio change.
	PowerToWeightExponent = 0.85

	// QuarterMilePowerExponent is the classic cube-root empirical fit of
	// elapsed time to power-to-weight. Calibrated estimate, not physics.
	QuarterMilePowerExponent = 1.0 / 3.0

	// QuarterMileLaunchWeight discounts how much launch grip helps over a
	// full quarter mile compared to a 0-60 sprint.
	QuarterMileLaunchWeight = 0.3

	// TrapSpeedCoefficient is the empirical trap-speed fit
	// mph = coefficient * cbrt(hp / weight), weight in lbs.
	TrapSpeedCoefficient = 230.0

	// BrakingGripExponent shapes how braking distance shortens with grip.
	BrakingGripExponent = 1.0

	// TireLateralFactor converts extra grip class into lateral-g headroom.
	TireLateralFactor = 0.25

	// MaxLateralG is the ceiling for a street-legal tire.
	MaxLateralG = 1.40

	// MinCurbWeightLbs floors the post-reduction weight at a plausible
	// minimum.
	MinCurbWeightLbs = 1800.0

	// MinZeroToSixtySec floors the estimated sprint time.
	MinZeroToSixtySec = 2.0

	// MinBrakingFeet floors the estimated 60-0 distance.
	MinBrakingFeet = 70.0

	// LapSecondsPerLateralG converts lateral-g headroom into lap-time
	// improvement on the reference lap.
	LapSecondsPerLateralG = 8.0

	// LapSecondsPerPowerRatio converts power-to-weight improvement into
	// lap-time improvement on the reference lap.
	LapSecondsPerPowerRatio = 6.0
)
