// Package dyno synthesizes an RPM-indexed horsepower/torque curve from a
// vehicle baseline and an aggregated gain result. The curve is a pure
// function of its inputs and is anchored so the sampled HP at the baseline's
// peak-HP RPM matches the aggregate final HP. When the baseline's torque and
// hp figures are mutually consistent the maximum torque sample also matches
// the aggregate final torque; the hp anchor wins when they are not.
package dyno

import (
	"fmt"
	"math"
	"sort"

	"github.com/GearheadHQ/gearhead-mvp/engine/domain"
	"github.com/GearheadHQ/gearhead-mvp/engine/gains"
)

// HPPerTorqueRPM is the constant in the standard torque-power relationship
// hp = torque * rpm / 5252.
const HPPerTorqueRPM = 5252.0

// IdleRPM is the low end of every synthesized curve.
const IdleRPM = 800

// SampleStepRPM is the fixed sampling resolution. The two anchor RPMs are
// inserted into the grid even when they fall between steps.
const SampleStepRPM = 100

// AnchorToleranceHP documents how closely the sampled curve honors the
// final-HP anchor at the peak-HP RPM.
const AnchorToleranceHP = 1.0

// Torque-shape calibration. Naturally aspirated engines get an asymmetric
// bell around the torque peak; forced induction gets a plateau from the
// torque peak with an anchored taper.
const (
	naIdleTorqueFraction = 0.65 // bell height at idle
	fiIdleTorqueFraction = 0.55 // spool-up start height at idle
	fiPlateauFraction    = 0.5  // plateau length as a fraction of peakTq..peakHP span
)

// Sample is one point on the curve.
type Sample struct {
	RPM    int     `json:"rpm"`
	HP     float64 `json:"hp"`
	Torque float64 `json:"torque"`
}

// Curve is an ordered sweep from idle to redline. Never mutated once
// produced; regenerate instead.
type Curve struct {
	Samples []Sample `json:"samples"`
}

// At returns the sample at exactly the given RPM, if the grid contains it.
func (c Curve) At(rpm int) (Sample, bool) {
	i := sort.Search(len(c.Samples), func(i int) bool { return c.Samples[i].RPM >= rpm })
	if i < len(c.Samples) && c.Samples[i].RPM == rpm {
		return c.Samples[i], true
	}
	return Sample{}, false
}

// PeakHP returns the sample with the highest horsepower.
func (c Curve) PeakHP() Sample {
	var best Sample
	for _, s := range c.Samples {
		if s.HP > best.HP {
			best = s
		}
	}
	return best
}

// PeakTorque returns the sample with the highest torque.
func (c Curve) PeakTorque() Sample {
	var best Sample
	for _, s := range c.Samples {
		if s.Torque > best.Torque {
			best = s
		}
	}
	return best
}

// Synthesize produces the curve for a baseline plus aggregated gains. Pass a
// zero GainResult for the stock curve.
func Synthesize(b domain.VehicleBaseline, g gains.GainResult) (Curve, error) {
	if err := domain.ValidateBaseline(b); err != nil {
		return Curve{}, fmt.Errorf("dyno: %w", err)
	}

	finalHP := b.HP + g.HPGain
	finalTQ := b.Torque + g.TorqueGain

	// Torque fraction the curve must pass through at the peak-HP RPM for
	// hp = torque*rpm/5252 to hit finalHP there. Values at or above 1 mean
	// the baseline figures are mutually inconsistent; flatten and accept.
	k := finalHP * HPPerTorqueRPM / (float64(b.PeakHPRPM) * finalTQ)
	if k >= 1 {
		k = 0.999999
	}

	shape := naShape(b, k)
	if asp := b.EffectiveAspiration(); asp == domain.AspirationTurbo || asp == domain.AspirationSupercharged {
		shape = fiShape(b, k)
	}

	// When the torque and hp peaks coincide the anchored taper has no span
	// to decay over and the shape is still 1.0 at the anchor. Rescale the
	// whole curve so the sample there yields the final HP. In the normal
	// case the shape already passes through k and this is a no-op.
	if got := shape(float64(b.PeakHPRPM)); got > k {
		scale := k / got
		inner := shape
		shape = func(rpm float64) float64 { return inner(rpm) * scale }
	}

	grid := sampleGrid(b)
	samples := make([]Sample, 0, len(grid))
	for _, rpm := range grid {
		tq := finalTQ * shape(float64(rpm))
		samples = append(samples, Sample{
			RPM:    rpm,
			Torque: tq,
			HP:     tq * float64(rpm) / HPPerTorqueRPM,
		})
	}
	return Curve{Samples: samples}, nil
}

// sampleGrid builds the sorted RPM grid: idle to redline at the fixed step,
// with the two anchor RPMs and the redline inserted.
func sampleGrid(b domain.VehicleBaseline) []int {
	seen := map[int]bool{}
	var grid []int
	add := func(rpm int) {
		if rpm >= IdleRPM && rpm <= b.RedlineRPM && !seen[rpm] {
			seen[rpm] = true
			grid = append(grid, rpm)
		}
	}
	for rpm := IdleRPM; rpm <= b.RedlineRPM; rpm += SampleStepRPM {
		add(rpm)
	}
	add(b.PeakTorqueRPM)
	add(b.PeakHPRPM)
	add(b.RedlineRPM)
	sort.Ints(grid)
	return grid
}

// naShape models a naturally aspirated torque curve as an asymmetric bell:
// a broad gaussian rise from idle to the torque peak, then a gaussian fall
// whose width is solved so the curve passes through the hp anchor exactly.
func naShape(b domain.VehicleBaseline, k float64) func(float64) float64 {
	pt := float64(b.PeakTorqueRPM)
	php := float64(b.PeakHPRPM)

	riseWidth := (pt - float64(IdleRPM)) / math.Sqrt(math.Log(1/naIdleTorqueFraction))
	fallWidth := anchoredWidth(pt, php, float64(b.RedlineRPM), k)

	return func(rpm float64) float64 {
		if rpm <= pt {
			d := (rpm - pt) / riseWidth
			return math.Exp(-d * d)
		}
		d := (rpm - pt) / fallWidth
		return math.Exp(-d * d)
	}
}

// fiShape models forced-induction delivery: a spool-up ramp to the torque
// peak, a flat plateau, then an anchored gaussian taper to redline.
func fiShape(b domain.VehicleBaseline, k float64) func(float64) float64 {
	pt := float64(b.PeakTorqueRPM)
	php := float64(b.PeakHPRPM)
	plateauEnd := pt + fiPlateauFraction*(php-pt)
	taperWidth := anchoredWidth(plateauEnd, php, float64(b.RedlineRPM), k)

	return func(rpm float64) float64 {
		switch {
		case rpm <= pt:
			// Linear spool from the idle fraction up to full torque.
			span := pt - float64(IdleRPM)
			if span <= 0 {
				return 1
			}
			return fiIdleTorqueFraction + (1-fiIdleTorqueFraction)*(rpm-float64(IdleRPM))/span
		case rpm <= plateauEnd:
			return 1
		default:
			d := (rpm - plateauEnd) / taperWidth
			return math.Exp(-d * d)
		}
	}
}

// anchoredWidth solves the gaussian width so a curve worth 1.0 at `from`
// decays to k at `anchor`. Degenerate anchors fall back to a width spanning
// the remaining rev range.
func anchoredWidth(from, anchor, redline, k float64) float64 {
	if anchor > from && k < 1 {
		return (anchor - from) / math.Sqrt(math.Log(1/k))
	}
	w := (redline - from) * 0.6
	if w <= 0 {
		w = SampleStepRPM
	}
	return w
}
