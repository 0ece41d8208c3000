// Package catalog holds the static modification reference data: every
// installable upgrade's effect model, synergy tags, conflicts, and stacking
// rule. The catalog is loaded once at process start and is read-only after
// initialization, so it may be shared by reference across concurrent callers.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

// Category classifies a modification. Category is an explicit field on every
// entry; nothing downstream infers it from the key.
type Category string

const (
	CategoryIntake      Category = "intake"
	CategoryExhaust     Category = "exhaust"
	CategoryTune        Category = "tune"
	CategorySuspension  Category = "suspension"
	CategoryBrakes      Category = "brakes"
	CategoryAero        Category = "aero"
	CategoryWeight      Category = "weight"
	CategoryDrivetrain  Category = "drivetrain"
	CategoryWheelsTires Category = "wheels-tires"
	CategoryOther       Category = "other"
)

// Categories lists every category in a fixed iteration order.
var Categories = []Category{
	CategoryIntake, CategoryExhaust, CategoryTune, CategorySuspension,
	CategoryBrakes, CategoryAero, CategoryWeight, CategoryDrivetrain,
	CategoryWheelsTires, CategoryOther,
}

var validCategories = func() map[Category]bool {
	m := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		m[c] = true
	}
	return m
}()

// StackingRule controls how same-category effects combine.
type StackingRule string

const (
	StackAdditive       StackingRule = "additive"
	StackMultiplicative StackingRule = "multiplicative"
	StackCapped         StackingRule = "capped"
)

var validStacking = map[StackingRule]bool{
	StackAdditive: true, StackMultiplicative: true, StackCapped: true,
}

// BaseEffect is the effect model of one modification. HP and Torque are
// tagged percent/absolute variants; the physical-metric fields are absolute
// improvements in their own units.
type BaseEffect struct {
	HP             Effect  `yaml:"hp" json:"hp,omitempty"`
	Torque         Effect  `yaml:"torque" json:"torque,omitempty"`
	ZeroToSixtySec float64 `yaml:"zero_to_sixty_sec" json:"zero_to_sixty_sec,omitempty"` // seconds shaved
	BrakingFeet    float64 `yaml:"braking_feet" json:"braking_feet,omitempty"`           // feet shortened
	LateralG       float64 `yaml:"lateral_g" json:"lateral_g,omitempty"`                 // g added
}

// Definition is one immutable catalog entry.
type Definition struct {
	Key           string       `yaml:"key" json:"key"`
	Name          string       `yaml:"name" json:"name"`
	Category      Category     `yaml:"category" json:"category"`
	Stacking      StackingRule `yaml:"stacking" json:"stacking"`
	Effect        BaseEffect   `yaml:"effect" json:"effect"`
	SynergyTags   []string     `yaml:"synergy,omitempty" json:"synergy,omitempty"`
	ConflictsWith []string     `yaml:"conflicts,omitempty" json:"conflicts,omitempty"`
	Aliases       []string     `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// Synergizes reports whether d lists other's key as a synergy tag.
func (d Definition) Synergizes(other string) bool {
	for _, tag := range d.SynergyTags {
		if tag == other {
			return true
		}
	}
	return false
}

// ConflictsWithKey reports whether d declares a conflict with the given key.
func (d Definition) ConflictsWithKey(other string) bool {
	for _, k := range d.ConflictsWith {
		if k == other {
			return true
		}
	}
	return false
}

// Sentinel errors for catalog loading.
var (
	ErrEmptyCatalog = errors.New("catalog has no entries")
	ErrDuplicateKey = errors.New("duplicate catalog key")
	ErrBadEntry     = errors.New("malformed catalog entry")
)

// Catalog is the read-only modification reference set.
type Catalog struct {
	version string
	defs    map[string]Definition
	order   []string
}

type catalogYAML struct {
	Version string       `yaml:"version"`
	Mods    []Definition `yaml:"mods"`
}

// Load parses a catalog document. Every entry must carry a key, a known
// category, and a known stacking rule; duplicates are rejected.
func Load(r io.Reader) (*Catalog, error) {
	var doc catalogYAML
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if len(doc.Mods) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		version: doc.Version,
		defs:    make(map[string]Definition, len(doc.Mods)),
		order:   make([]string, 0, len(doc.Mods)),
	}
	for _, d := range doc.Mods {
		if d.Key == "" {
			return nil, fmt.Errorf("catalog: %w: missing key (name=%q)", ErrBadEntry, d.Name)
		}
		if !validCategories[d.Category] {
			return nil, fmt.Errorf("catalog: %w: %s: unknown category %q", ErrBadEntry, d.Key, d.Category)
		}
		if !validStacking[d.Stacking] {
			return nil, fmt.Errorf("catalog: %w: %s: unknown stacking rule %q", ErrBadEntry, d.Key, d.Stacking)
		}
		if _, dup := c.defs[d.Key]; dup {
			return nil, fmt.Errorf("catalog: %w: %s", ErrDuplicateKey, d.Key)
		}
		c.defs[d.Key] = d
		c.order = append(c.order, d.Key)
	}
	return c, nil
}

//go:embed catalog.yaml
var embeddedCatalog []byte

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog, parsed once per process.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Load(bytes.NewReader(embeddedCatalog))
	})
	return defaultCat, defaultErr
}

// Version reports the catalog version string. Any memoization of aggregate
// results must key on this and recompute when it changes.
func (c *Catalog) Version() string { return c.version }

// Len reports the number of entries.
func (c *Catalog) Len() int { return len(c.order) }

// Lookup finds a definition by key. Unknown keys are not fatal anywhere
// downstream; callers drop them with a recorded warning.
func (c *Catalog) Lookup(key string) (Definition, bool) {
	d, ok := c.defs[key]
	return d, ok
}

// Keys returns every key in catalog order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// All returns every definition in catalog order.
func (c *Catalog) All() []Definition {
	out := make([]Definition, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.defs[k])
	}
	return out
}
