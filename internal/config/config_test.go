package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Data.Source != nil || cfg.Dashboard.BinSize != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[data]
source = "survey.xlsx"
sheet = "Vastaukset"

[dashboard]
normalize = true
bin-size = 500

[aliases.company]
reaktor = ["reaktor innovations oy"]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Data.Source == nil || *cfg.Data.Source != "survey.xlsx" {
		t.Fatalf("unexpected source: %v", cfg.Data.Source)
	}
	if cfg.Dashboard.Normalize == nil || !*cfg.Dashboard.Normalize {
		t.Fatalf("expected normalize=true")
	}
	if cfg.Dashboard.BinSize == nil || *cfg.Dashboard.BinSize != 500 {
		t.Fatalf("unexpected bin size: %v", cfg.Dashboard.BinSize)
	}
	if cfg.Dashboard.SplitBySex != nil {
		t.Fatalf("expected split-by-sex to stay unset")
	}
	if got := cfg.Aliases.Company["reaktor"]; len(got) != 1 || got[0] != "reaktor innovations oy" {
		t.Fatalf("unexpected company aliases: %v", got)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestDefaultAliasesValid(t *testing.T) {
	aliases, err := DefaultAliases()
	if err != nil {
		t.Fatalf("DefaultAliases failed: %v", err)
	}
	if err := aliases.Validate(); err != nil {
		t.Fatalf("default aliases invalid: %v", err)
	}
	lookup, err := aliases.Company.Lookup()
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if lookup["siili solutions"] != "siili" {
		t.Fatalf("expected siili solutions -> siili, got %q", lookup["siili solutions"])
	}
	sex, err := aliases.Sex.Lookup()
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if sex["mies!"] != "male" || sex["naisoletettu"] != "female" {
		t.Fatalf("unexpected sex lookup: %v", sex)
	}
}

func TestAliasValidateRejectsConflicts(t *testing.T) {
	cases := map[string]AliasConfig{
		"variant mapped twice": {Company: AliasTable{
			"a": {"x"},
			"b": {"x"},
		}},
		"variant is a key": {Company: AliasTable{
			"a": {"b"},
			"b": {"c"},
		}},
		"unknown sex key": {Sex: AliasTable{
			"robot": {"r2"},
		}},
	}
	for name, cfg := range cases {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestAliasMergeAppends(t *testing.T) {
	base := AliasConfig{Company: AliasTable{"gofore": {"gofore oyj"}}}
	extra := AliasConfig{Company: AliasTable{"gofore": {"gofore plc"}, "futurice": {"futurice oy"}}}
	merged := base.Merge(extra)
	if len(merged.Company["gofore"]) != 2 {
		t.Fatalf("expected 2 gofore variants, got %v", merged.Company["gofore"])
	}
	if len(base.Company["gofore"]) != 1 {
		t.Fatalf("merge mutated the base table")
	}
	if merged.Company["futurice"][0] != "futurice oy" {
		t.Fatalf("missing futurice entry")
	}
}

func TestFold(t *testing.T) {
	decomposed := "a\u0308ija\u0308"
	if got := Fold("  " + decomposed + " "); got != "\u00e4ij\u00e4" {
		t.Fatalf("expected NFC-folded value, got %q", got)
	}
	if got := Fold("Gofore Oyj "); got != "gofore oyj" {
		t.Fatalf("unexpected fold: %q", got)
	}
}
