package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// CoordinatorConfig describes the coordsim listen and admin surfaces.
type CoordinatorConfig struct {
	Network     string   `toml:"network"`
	Address     string   `toml:"address"`
	AdminAddr   string   `toml:"admin_addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

func LoadCoordinatorConfig(path string) (CoordinatorConfig, error) {
	var cfg CoordinatorConfig
	if err := loadToml(path, &cfg); err != nil {
		return CoordinatorConfig{}, err
	}
	if cfg.Network == "" {
		cfg.Network = "unix"
	}
	if cfg.Address == "" {
		cfg.Address = "@grouplink"
	}
	if cfg.AdminAddr == "" {
		cfg.AdminAddr = ":9600"
	}
	if err := ValidateCoordinatorConfig(cfg); err != nil {
		return CoordinatorConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateCoordinatorConfig(cfg CoordinatorConfig) error {
	if err := validateEndpoint(cfg.Network, cfg.Address); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.AdminAddr) == "" {
		return fmt.Errorf("coordinator config missing admin_addr")
	}
	return nil
}

func validateEndpoint(network, address string) error {
	switch network {
	case "unix", "tcp":
	default:
		return fmt.Errorf("unsupported network %q (want unix or tcp)", network)
	}
	if strings.TrimSpace(address) == "" {
		return fmt.Errorf("config missing address")
	}
	return nil
}
