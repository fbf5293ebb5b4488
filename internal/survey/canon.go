// Package survey loads and cleans salary survey exports.
package survey

import (
	"fmt"

	"github.com/verte-zerg/salaryscope/internal/config"
	"github.com/verte-zerg/salaryscope/internal/model"
)

// Canonicalizer maps free-text values onto canonical keys.
type Canonicalizer struct {
	company  map[string]string
	location map[string]string
	sex      map[string]string
}

// NewCanonicalizer validates the alias tables and flattens them for lookup.
func NewCanonicalizer(aliases config.AliasConfig) (*Canonicalizer, error) {
	if err := aliases.Validate(); err != nil {
		return nil, err
	}
	company, err := aliases.Company.Lookup()
	if err != nil {
		return nil, fmt.Errorf("company aliases: %w", err)
	}
	location, err := aliases.Location.Lookup()
	if err != nil {
		return nil, fmt.Errorf("location aliases: %w", err)
	}
	sex, err := aliases.Sex.Lookup()
	if err != nil {
		return nil, fmt.Errorf("sex aliases: %w", err)
	}
	return &Canonicalizer{company: company, location: location, sex: sex}, nil
}

// Company returns the canonical company key; unknown names pass through folded.
func (c *Canonicalizer) Company(raw string) string {
	return lookupOrKeep(c.company, raw)
}

// Location returns the canonical location key; unknown names pass through folded.
func (c *Canonicalizer) Location(raw string) string {
	return lookupOrKeep(c.location, raw)
}

// Sex returns one of the three canonical sex values.
func (c *Canonicalizer) Sex(raw string) string {
	v := config.Fold(raw)
	if v == model.SexMale || v == model.SexFemale {
		return v
	}
	if key, ok := c.sex[v]; ok {
		return key
	}
	return model.SexUnknown
}

func lookupOrKeep(table map[string]string, raw string) string {
	v := config.Fold(raw)
	if v == "" {
		return model.Missing
	}
	if key, ok := table[v]; ok {
		return key
	}
	return v
}
