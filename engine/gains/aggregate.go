// Package gains combines a selected set of modifications with a vehicle
// baseline into net performance deltas, applying stacking rules, category
// caps, synergy bonuses, and conflict resolution. Aggregate is a pure
// function of its inputs: same baseline and build always produce the same
// result, regardless of mod key ordering beyond first-wins conflicts.
package gains

import (
	"fmt"

	"github.com/GearheadHQ/gearhead-mvp/engine/catalog"
	"github.com/GearheadHQ/gearhead-mvp/engine/domain"
	"github.com/GearheadHQ/gearhead-mvp/pkg/fn"
)

// WarningReason classifies a non-fatal aggregation warning.
type WarningReason string

const (
	// ReasonUnknownKey marks an installed key absent from the catalog.
	// Catalogs evolve; stored builds may reference retired keys.
	ReasonUnknownKey WarningReason = "unknown_key"
	// ReasonConflict marks a mod dropped because an earlier-listed mod is
	// mutually exclusive with it.
	ReasonConflict WarningReason = "conflict"
)

// Warning records a mod that was dropped rather than counted.
type Warning struct {
	Key    string        `json:"key"`
	Reason WarningReason `json:"reason"`
	Detail string        `json:"detail,omitempty"`
}

// GainResult is the aggregate output: net deltas plus the resolved subset
// of mods actually counted and any warnings.
type GainResult struct {
	HPGain                 float64        `json:"hp_gain"`
	TorqueGain             float64        `json:"torque_gain"`
	ZeroToSixtyImprovement float64        `json:"zero_to_sixty_improvement"` // seconds
	BrakingImprovementFeet float64        `json:"braking_improvement_feet"`
	LateralGImprovement    float64        `json:"lateral_g_improvement"`
	AppliedMods            []string       `json:"applied_mods"`
	Warnings               []Warning      `json:"warnings,omitempty"`
	Diagnostics            []domain.Clamp `json:"diagnostics,omitempty"`
}

// Aggregator resolves builds against a fixed catalog. Safe for concurrent
// use; the catalog is read-only after initialization.
type Aggregator struct {
	cat *catalog.Catalog
}

// New creates an Aggregator over the given catalog.
func New(cat *catalog.Catalog) *Aggregator {
	return &Aggregator{cat: cat}
}

// CatalogVersion reports the version of the underlying catalog. Callers
// memoizing Aggregate results must invalidate on version change.
func (a *Aggregator) CatalogVersion() string { return a.cat.Version() }

// Aggregate computes net performance deltas for a build. Unknown and
// conflicting mods are warnings, never errors; only a structurally invalid
// baseline or build fails.
func (a *Aggregator) Aggregate(b domain.VehicleBaseline, cfg domain.BuildConfiguration) (GainResult, error) {
	if err := domain.ValidateBaseline(b); err != nil {
		return GainResult{}, fmt.Errorf("gains: %w", err)
	}
	if err := domain.ValidateBuild(b, cfg); err != nil {
		return GainResult{}, fmt.Errorf("gains: %w", err)
	}

	res := GainResult{AppliedMods: []string{}}

	// Resolve keys in input order, dropping duplicates and unknowns.
	var resolved []catalog.Definition
	for _, key := range fn.Unique(cfg.InstalledModKeys) {
		def, ok := a.cat.Lookup(key)
		if !ok {
			res.Warnings = append(res.Warnings, Warning{Key: key, Reason: ReasonUnknownKey})
			continue
		}
		resolved = append(resolved, def)
	}

	// First-wins conflict resolution: a mod is dropped when any
	// earlier-kept mod declares a conflict with it, in either direction.
	var applied []catalog.Definition
	for _, def := range resolved {
		kept := true
		for _, prev := range applied {
			if prev.ConflictsWithKey(def.Key) || def.ConflictsWithKey(prev.Key) {
				res.Warnings = append(res.Warnings, Warning{
					Key:    def.Key,
					Reason: ReasonConflict,
					Detail: fmt.Sprintf("conflicts with %s", prev.Key),
				})
				kept = false
				break
			}
		}
		if kept {
			applied = append(applied, def)
		}
	}
	res.AppliedMods = fn.Map(applied, func(d catalog.Definition) string { return d.Key })

	byCategory := fn.GroupBy(applied, func(d catalog.Definition) catalog.Category { return d.Category })

	// Stack within each category, iterating categories in fixed order so
	// diagnostics and rounding are deterministic.
	var hpPct, tqPct float64
	for _, cat := range catalog.Categories {
		defs := byCategory[cat]
		if len(defs) == 0 {
			continue
		}
		caps := StackingCaps[cat]

		hpPct += capValue(stackPercent(defs, b.HP, hpOf), caps.HPPercent)
		tqPct += capValue(stackPercent(defs, b.Torque, tqOf), caps.TorquePercent)

		res.BrakingImprovementFeet += capValue(
			fn.SumBy(defs, func(d catalog.Definition) float64 { return d.Effect.BrakingFeet }),
			caps.BrakingFeet)
		res.LateralGImprovement += capValue(
			fn.SumBy(defs, func(d catalog.Definition) float64 { return d.Effect.LateralG }),
			caps.LateralG)
		res.ZeroToSixtyImprovement += capValue(
			fn.SumBy(defs, func(d catalog.Definition) float64 { return d.Effect.ZeroToSixtySec }),
			caps.ZeroToSixtySec)
	}

	// Synergy bonus, at most once per unordered pair.
	for i := 0; i < len(applied); i++ {
		for j := i + 1; j < len(applied); j++ {
			if applied[i].Synergizes(applied[j].Key) || applied[j].Synergizes(applied[i].Key) {
				hpPct += SynergyBonus.HPPercent
				tqPct += SynergyBonus.TorquePercent
			}
		}
	}

	// Percentages resolve against the stock bases, never a running total.
	res.HPGain = b.HP * hpPct / 100
	res.TorqueGain = b.Torque * tqPct / 100

	// Power-to-weight contribution to 0-60: a weight-reduction-only build
	// still improves through its mods' own zero-to-sixty effects above.
	res.ZeroToSixtyImprovement += ZeroToSixtyPowerFactor * (res.HPGain / b.HP) * b.ZeroToSixty

	a.clampResult(&res, b)
	return res, nil
}

func hpOf(d catalog.Definition) catalog.Effect { return d.Effect.HP }
func tqOf(d catalog.Definition) catalog.Effect { return d.Effect.Torque }

// stackPercent combines one category's effects into a single percentage of
// the stock base. Additive and capped entries sum; multiplicative entries
// compose as (1+e1)(1+e2)-1 so naive summation cannot exceed physically
// plausible totals. Absolute effects are expressed as percent of stock
// before stacking.
func stackPercent(defs []catalog.Definition, base float64, effect func(catalog.Definition) catalog.Effect) float64 {
	var additive float64
	multiplicative := 1.0
	for _, d := range defs {
		e := effect(d)
		if e.IsZero() {
			continue
		}
		pct := e.PercentOf(base)
		switch d.Stacking {
		case catalog.StackMultiplicative:
			multiplicative *= 1 + pct/100
		default: // additive and capped both sum; the cap applies per category
			additive += pct
		}
	}
	return additive + (multiplicative-1)*100
}

// capValue applies a ceiling; zero cap means unlimited.
func capValue(v, cap float64) float64 {
	if cap > 0 && v > cap {
		return cap
	}
	return v
}

// clampResult pulls deltas back inside plausible physical bounds, recording
// each adjustment as a diagnostic.
func (a *Aggregator) clampResult(res *GainResult, b domain.VehicleBaseline) {
	clamp := func(field string, v *float64, lo, hi float64) {
		raw := *v
		if raw < lo {
			*v = lo
		} else if raw > hi {
			*v = hi
		} else {
			return
		}
		res.Diagnostics = append(res.Diagnostics, domain.Clamp{Field: field, Raw: raw, Clamped: *v})
	}

	clamp("hp_gain", &res.HPGain, 0, b.HP*(MaxHPMultiple-1))
	clamp("torque_gain", &res.TorqueGain, 0, b.Torque*(MaxTorqueMultiple-1))
	clamp("zero_to_sixty_improvement", &res.ZeroToSixtyImprovement, 0, b.ZeroToSixty*MaxZeroToSixtyImprovementFraction)
	clamp("braking_improvement_feet", &res.BrakingImprovementFeet, 0, b.Braking60To0*MaxBrakingImprovementFraction)
	clamp("lateral_g_improvement", &res.LateralGImprovement, 0, MaxLateralGImprovement)
}
