package domain

import "fmt"

// ValidateBaseline checks the structural sanity of a stock specification.
// Every engine entry point calls this before computing.
func ValidateBaseline(b VehicleBaseline) error {
	if b.HP <= 0 {
		return NewValidationError("hp", fmt.Sprintf("%g", b.HP), ErrNonPositiveHP)
	}
	if b.Torque <= 0 {
		return NewValidationError("torque", fmt.Sprintf("%g", b.Torque), ErrNonPositiveTorque)
	}
	if b.CurbWeight <= 0 {
		return NewValidationError("curb_weight", fmt.Sprintf("%g", b.CurbWeight), ErrNonPositiveWeight)
	}
	if b.PeakTorqueRPM <= 0 || b.PeakHPRPM <= 0 || b.RedlineRPM <= 0 ||
		b.PeakTorqueRPM > b.PeakHPRPM || b.PeakHPRPM > b.RedlineRPM {
		return NewValidationError("rpm",
			fmt.Sprintf("peak_tq=%d peak_hp=%d redline=%d", b.PeakTorqueRPM, b.PeakHPRPM, b.RedlineRPM),
			ErrInvalidRPMRange)
	}
	if !ValidDrivetrains[b.Drivetrain] {
		return NewValidationError("drivetrain", string(b.Drivetrain), ErrUnknownDrivetrain)
	}
	// Aspiration is optional; empty means naturally aspirated.
	if b.Aspiration != "" && !ValidAspirations[b.Aspiration] {
		return NewValidationError("aspiration", string(b.Aspiration), ErrUnknownAspiration)
	}
	return nil
}

// ValidateBuild checks the structural sanity of a build configuration against
// its baseline. Unknown mod keys are NOT structural errors; the aggregator
// drops them with a warning.
func ValidateBuild(b VehicleBaseline, cfg BuildConfiguration) error {
	// Empty compound means stock street tires.
	if cfg.TireCompound != "" && !ValidTireCompounds[cfg.TireCompound] {
		return NewValidationError("tire_compound", string(cfg.TireCompound), ErrUnknownTireCompound)
	}
	if cfg.WeightReductionLbs < 0 {
		return NewValidationError("weight_reduction_lbs",
			fmt.Sprintf("%g", cfg.WeightReductionLbs), ErrNegativeReduction)
	}
	if cfg.WeightReductionLbs >= b.CurbWeight {
		return NewValidationError("weight_reduction_lbs",
			fmt.Sprintf("%g", cfg.WeightReductionLbs), ErrReductionExceedsCurb)
	}
	return nil
}

// Aspiration reports the baseline's effective aspiration, defaulting empty
// to naturally aspirated.
func (b VehicleBaseline) EffectiveAspiration() Aspiration {
	if b.Aspiration == "" {
		return AspirationNA
	}
	return b.Aspiration
}

// EffectiveCompound reports the build's tire compound, defaulting empty to
// street.
func (c BuildConfiguration) EffectiveCompound() TireCompound {
	if c.TireCompound == "" {
		return TireStreet
	}
	return c.TireCompound
}
