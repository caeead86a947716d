package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// targetConfig is the groupctl TOML file shape. A missing file yields the
// defaults so the tool works against a local coordinator out of the box.
type targetConfig struct {
	Network     string `toml:"network"`
	Address     string `toml:"address"`
	ProgramName string `toml:"program_name"`
	Level       int    `toml:"level"`
}

func defaultTargetConfig() targetConfig {
	return targetConfig{
		Network:     "unix",
		Address:     "@grouplink",
		ProgramName: "groupctl",
	}
}

func loadTargetConfig(path string) (targetConfig, error) {
	cfg := defaultTargetConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	var raw targetConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return targetConfig{}, fmt.Errorf("load groupctl config: %w", err)
	}
	if meta.IsDefined("network") && strings.TrimSpace(raw.Network) != "" {
		cfg.Network = strings.TrimSpace(raw.Network)
	}
	if meta.IsDefined("address") && strings.TrimSpace(raw.Address) != "" {
		cfg.Address = strings.TrimSpace(raw.Address)
	}
	if meta.IsDefined("program_name") && strings.TrimSpace(raw.ProgramName) != "" {
		cfg.ProgramName = strings.TrimSpace(raw.ProgramName)
	}
	if meta.IsDefined("level") {
		if raw.Level < 0 {
			return targetConfig{}, fmt.Errorf("groupctl config level must not be negative")
		}
		cfg.Level = raw.Level
	}
	return cfg, nil
}
