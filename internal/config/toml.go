// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Data      DataConfig      `toml:"data"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Serve     ServeConfig     `toml:"serve"`
	Store     StoreConfig     `toml:"store"`
	Aliases   AliasConfig     `toml:"aliases"`
}

// DataConfig locates the survey export.
type DataConfig struct {
	Source    *string `toml:"source"`
	Sheet     *string `toml:"sheet"`
	Delimiter *string `toml:"delimiter"`
}

// DashboardConfig maps the initial chart settings.
type DashboardConfig struct {
	Normalize  *bool `toml:"normalize"`
	BinSize    *int  `toml:"bin-size"`
	SplitBySex *bool `toml:"split-by-sex"`
}

// ServeConfig maps HTTP API settings.
type ServeConfig struct {
	Addr *string `toml:"addr"`
}

// StoreConfig maps SQLite settings.
type StoreConfig struct {
	Path *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
