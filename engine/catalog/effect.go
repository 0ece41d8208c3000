package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// EffectKind distinguishes percentage effects (resolved against the stock
// base) from absolute effects (already in output units).
type EffectKind string

const (
	EffectPercent  EffectKind = "percent"
	EffectAbsolute EffectKind = "absolute"
)

// Effect is a tagged gain variant: either a percentage of the stock base or
// an absolute value. The zero Effect contributes nothing.
type Effect struct {
	Kind  EffectKind `json:"kind,omitempty"`
	Value float64    `json:"value,omitempty"`
}

// Percent builds a percentage effect.
func Percent(v float64) Effect { return Effect{Kind: EffectPercent, Value: v} }

// Absolute builds an absolute effect.
func Absolute(v float64) Effect { return Effect{Kind: EffectAbsolute, Value: v} }

// IsZero reports whether the effect contributes nothing.
func (e Effect) IsZero() bool { return e.Kind == "" || e.Value == 0 }

// Resolve converts the effect to absolute units against the given stock base.
// Percentages always resolve against the stock base, never a running total,
// so stacking stays order-independent.
func (e Effect) Resolve(base float64) float64 {
	switch e.Kind {
	case EffectPercent:
		return base * e.Value / 100
	case EffectAbsolute:
		return e.Value
	default:
		return 0
	}
}

// PercentOf expresses the effect as a percentage of the given stock base.
func (e Effect) PercentOf(base float64) float64 {
	switch e.Kind {
	case EffectPercent:
		return e.Value
	case EffectAbsolute:
		if base == 0 {
			return 0
		}
		return e.Value / base * 100
	default:
		return 0
	}
}

// effectYAML is the on-disk form: exactly one of percent/absolute set.
type effectYAML struct {
	Percent  *float64 `yaml:"percent"`
	Absolute *float64 `yaml:"absolute"`
}

// UnmarshalYAML decodes `{percent: 3}` or `{absolute: 25}`.
func (e *Effect) UnmarshalYAML(node *yaml.Node) error {
	var raw effectYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	switch {
	case raw.Percent != nil && raw.Absolute != nil:
		return fmt.Errorf("catalog: effect declares both percent and absolute")
	case raw.Percent != nil:
		*e = Percent(*raw.Percent)
	case raw.Absolute != nil:
		*e = Absolute(*raw.Absolute)
	default:
		*e = Effect{}
	}
	return nil
}

// MarshalYAML encodes the tagged form back to its on-disk shape.
func (e Effect) MarshalYAML() (any, error) {
	switch e.Kind {
	case EffectPercent:
		return effectYAML{Percent: &e.Value}, nil
	case EffectAbsolute:
		return effectYAML{Absolute: &e.Value}, nil
	default:
		return nil, nil
	}
}
