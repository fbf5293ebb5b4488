// Package config provides configuration helpers and TOML parsing.
package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/salaryscope/internal/model"
)

//go:embed aliases.toml
var defaultAliases string

// AliasTable maps a canonical key to its known variants.
type AliasTable map[string][]string

// AliasConfig groups the synonym tables used during cleaning.
type AliasConfig struct {
	Company  AliasTable `toml:"company"`
	Sex      AliasTable `toml:"sex"`
	Location AliasTable `toml:"location"`
}

// DefaultAliases decodes the synonym tables shipped with the binary.
func DefaultAliases() (AliasConfig, error) {
	var cfg AliasConfig
	if _, err := toml.Decode(defaultAliases, &cfg); err != nil {
		return AliasConfig{}, fmt.Errorf("failed to decode default aliases: %w", err)
	}
	return cfg, nil
}

// Merge returns a copy of a with the entries of b appended per key.
func (a AliasConfig) Merge(b AliasConfig) AliasConfig {
	return AliasConfig{
		Company:  mergeTable(a.Company, b.Company),
		Sex:      mergeTable(a.Sex, b.Sex),
		Location: mergeTable(a.Location, b.Location),
	}
}

// Validate checks that every table maps each variant to exactly one key
// and that no variant names a different canonical key.
func (a AliasConfig) Validate() error {
	for key := range a.Sex {
		k := Fold(key)
		if k != model.SexMale && k != model.SexFemale {
			return fmt.Errorf("sex aliases: unknown key %q (use %q or %q)", key, model.SexMale, model.SexFemale)
		}
	}
	tables := []struct {
		name  string
		table AliasTable
	}{
		{"company", a.Company},
		{"sex", a.Sex},
		{"location", a.Location},
	}
	for _, t := range tables {
		if _, err := t.table.Lookup(); err != nil {
			return fmt.Errorf("%s aliases: %w", t.name, err)
		}
	}
	return nil
}

// Lookup flattens the table into a variant -> key map.
func (t AliasTable) Lookup() (map[string]string, error) {
	out := make(map[string]string)
	keys := make(map[string]struct{}, len(t))
	for key := range t {
		keys[Fold(key)] = struct{}{}
	}
	for _, key := range sortedKeys(t) {
		canonical := Fold(key)
		if canonical == "" {
			return nil, fmt.Errorf("empty canonical key")
		}
		for _, variant := range t[key] {
			v := Fold(variant)
			if v == "" || v == canonical {
				continue
			}
			if _, clash := keys[v]; clash {
				return nil, fmt.Errorf("variant %q of %q is itself a canonical key", variant, key)
			}
			if prev, ok := out[v]; ok && prev != canonical {
				return nil, fmt.Errorf("variant %q maps to both %q and %q", variant, prev, canonical)
			}
			out[v] = canonical
		}
	}
	return out, nil
}

// Fold applies NFC normalization, lower-casing and trimming.
func Fold(s string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFC.String(s)))
}

func mergeTable(a, b AliasTable) AliasTable {
	out := make(AliasTable, len(a)+len(b))
	for k, v := range a {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range b {
		out[k] = append(out[k], v...)
	}
	return out
}

func sortedKeys(t AliasTable) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
