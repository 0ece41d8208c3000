// Package domain defines the input types, enums, and structural validation
// for the Gearhead performance estimation engine. It acts as the validation
// gate at engine entry points.
package domain

// Drivetrain is the driven-wheel layout of a vehicle.
type Drivetrain string

const (
	DrivetrainFWD Drivetrain = "FWD"
	DrivetrainRWD Drivetrain = "RWD"
	DrivetrainAWD Drivetrain = "AWD"
)

// ValidDrivetrains is the set of recognised drivetrain layouts.
var ValidDrivetrains = map[Drivetrain]bool{
	DrivetrainFWD: true, DrivetrainRWD: true, DrivetrainAWD: true,
}

// Aspiration describes how the engine breathes.
type Aspiration string

const (
	AspirationNA           Aspiration = "na"
	AspirationTurbo        Aspiration = "turbo"
	AspirationSupercharged Aspiration = "supercharged"
)

// ValidAspirations is the set of recognised aspiration types.
var ValidAspirations = map[Aspiration]bool{
	AspirationNA: true, AspirationTurbo: true, AspirationSupercharged: true,
}

// TireCompound classifies installed tires by grip class.
type TireCompound string

const (
	TireStreet      TireCompound = "street"
	TireSummer      TireCompound = "summer"
	TirePerformance TireCompound = "performance"
	TireTrack       TireCompound = "track"
	TireDrag        TireCompound = "drag"
)

// ValidTireCompounds is the set of recognised tire compounds.
var ValidTireCompounds = map[TireCompound]bool{
	TireStreet: true, TireSummer: true, TirePerformance: true,
	TireTrack: true, TireDrag: true,
}

// VehicleBaseline holds the stock specification of a vehicle. It is supplied
// per call by the caller (sourced from an external vehicle catalog); the
// engine never fetches it.
type VehicleBaseline struct {
	Name          string     `json:"name"`
	HP            float64    `json:"hp"`
	Torque        float64    `json:"torque"` // lb-ft
	PeakHPRPM     int        `json:"peak_hp_rpm"`
	PeakTorqueRPM int        `json:"peak_torque_rpm"`
	RedlineRPM    int        `json:"redline_rpm"`
	CurbWeight    float64    `json:"curb_weight"` // lbs
	Drivetrain    Drivetrain `json:"drivetrain"`
	Aspiration    Aspiration `json:"aspiration"`
	ZeroToSixty   float64    `json:"zero_to_sixty"`   // seconds
	QuarterMile   float64    `json:"quarter_mile"`    // seconds
	Braking60To0  float64    `json:"braking_60_to_0"` // feet
	LateralG      float64    `json:"lateral_g"`
}

// SuspensionSetup is an optional chassis override bag consumed only by the
// physics estimator.
type SuspensionSetup struct {
	Coilovers     bool `json:"coilovers"`
	SwayBars      bool `json:"sway_bars"`
	RaceAlignment bool `json:"race_alignment"`
}

// AeroSetup is an optional aero override bag consumed only by the physics
// estimator.
type AeroSetup struct {
	Splitter bool `json:"splitter"`
	Wing     bool `json:"wing"`
	Diffuser bool `json:"diffuser"`
}

// BuildConfiguration is the input to a single computation: the installed
// modifications plus chassis setup for a specific vehicle instance.
// Duplicate mod keys are ignored; order matters only for conflict
// resolution (first listed wins).
type BuildConfiguration struct {
	InstalledModKeys   []string         `json:"installed_mod_keys"`
	TireCompound       TireCompound     `json:"tire_compound,omitempty"`
	WeightReductionLbs float64          `json:"weight_reduction_lbs,omitempty"`
	Suspension         *SuspensionSetup `json:"suspension,omitempty"`
	Aero               *AeroSetup       `json:"aero,omitempty"`
}

// Clamp records a value that was pulled back inside plausible physical
// bounds. Clamps are diagnostics, not errors.
type Clamp struct {
	Field   string  `json:"field"`
	Raw     float64 `json:"raw"`
	Clamped float64 `json:"clamped"`
}
