package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/grouplink/internal/testutil/testlog"
)

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadCoordinatorConfigDefaults(t *testing.T) {
	testlog.Start(t)
	path := writeTemp(t, "")
	cfg, err := LoadCoordinatorConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Network != "unix" || cfg.Address != "@grouplink" || cfg.AdminAddr != ":9600" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadCoordinatorConfig(t *testing.T) {
	testlog.Start(t)
	path := writeTemp(t, "network = \"tcp\"\naddress = \"127.0.0.1:9500\"\nadmin_addr = \":9601\"\n")
	cfg, err := LoadCoordinatorConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Network != "tcp" || cfg.Address != "127.0.0.1:9500" || cfg.AdminAddr != ":9601" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestValidateRejectsUnknownNetwork(t *testing.T) {
	testlog.Start(t)
	err := ValidateCoordinatorConfig(CoordinatorConfig{Network: "udp", Address: "x", AdminAddr: ":9600"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}
