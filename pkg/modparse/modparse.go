// Package modparse turns free-text build sheets ("cai, catback and a tune")
// into canonical modification keys using the catalog's alias table. No
// external dependencies.
package modparse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/GearheadHQ/gearhead-mvp/engine/catalog"
)

// Match is a recognised modification mention.
type Match struct {
	Key        string  // canonical catalog key
	Span       string  // the matched text fragment
	Confidence float64 // 1.0 for exact key, less for aliases
}

// Parser matches catalog keys, names, and aliases in unstructured text.
type Parser struct {
	re      *regexp.Regexp
	byAlias map[string]string // lowercased alias -> canonical key
}

// NewParser builds a Parser from the catalog's keys, display names, and
// alias lists.
func NewParser(c *catalog.Catalog) *Parser {
	byAlias := make(map[string]string)
	for _, def := range c.All() {
		byAlias[normalize(def.Key)] = def.Key
		byAlias[normalize(def.Name)] = def.Key
		for _, a := range def.Aliases {
			byAlias[normalize(a)] = def.Key
		}
	}

	// Longest alias first so "turbo kit" wins over "turbo".
	aliases := make([]string, 0, len(byAlias))
	for a := range byAlias {
		aliases = append(aliases, a)
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})

	parts := make([]string, len(aliases))
	for i, a := range aliases {
		// Spaces and hyphens in aliases match either in the text.
		p := regexp.QuoteMeta(a)
		p = strings.ReplaceAll(p, `-`, `[\s-]+`)
		p = strings.ReplaceAll(p, ` `, `[\s-]+`)
		parts[i] = p
	}

	return &Parser{
		re:      regexp.MustCompile(`(?i)\b(` + strings.Join(parts, "|") + `)\b`),
		byAlias: byAlias,
	}
}

// Parse finds all modification mentions in text. Each key is reported once,
// at its first occurrence, in text order.
func (p *Parser) Parse(text string) []Match {
	if text == "" {
		return nil
	}
	var matches []Match
	seen := make(map[string]bool)
	for _, span := range p.re.FindAllString(text, -1) {
		norm := normalize(span)
		key, ok := p.byAlias[norm]
		if !ok {
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		conf := 0.85
		if norm == key {
			conf = 1.0
		}
		matches = append(matches, Match{Key: key, Span: span, Confidence: conf})
	}
	return matches
}

// Keys returns just the canonical keys from Parse, ready for a build
// configuration's installed mod list.
func (p *Parser) Keys(text string) []string {
	matches := p.Parse(text)
	keys := make([]string, len(matches))
	for i, m := range matches {
		keys[i] = m.Key
	}
	return keys
}

var spaceRe = regexp.MustCompile(`[\s-]+`)

// normalize lowercases a span and collapses whitespace/hyphen runs to a
// single hyphen, so "Cat Back", "cat-back", and "cat  back" all map to
// the same alias entry.
func normalize(span string) string {
	return spaceRe.ReplaceAllString(strings.ToLower(span), "-")
}
