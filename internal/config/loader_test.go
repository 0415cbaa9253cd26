package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "beacon.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoaderAppliesDefaults(t *testing.T) {
	loader, err := NewLoader(writeConfig(t, "server:\n  addr: \":9090\"\n"))
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	cfg := loader.Config()

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Telemetry.ReadLimit != MaxReadLimit {
		t.Errorf("Telemetry.ReadLimit = %d, want default %d", cfg.Telemetry.ReadLimit, MaxReadLimit)
	}
	if cfg.Telemetry.LocalPath == "" {
		t.Error("Telemetry.LocalPath default missing")
	}
	if cfg.Ingest.WriteWorkers == 0 || cfg.Ingest.QueueDepth == 0 || cfg.Ingest.WriteTimeoutMs == 0 {
		t.Errorf("ingest defaults missing: %+v", cfg.Ingest)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("Redis.Addr = %q, want empty (remote disabled)", cfg.Redis.Addr)
	}
}

func TestLoaderRejectsMissingFile(t *testing.T) {
	if _, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("NewLoader on a missing file should fail")
	}
}

func TestLoaderRejectsBadYAML(t *testing.T) {
	if _, err := NewLoader(writeConfig(t, "server: [not\n  a: map")); err == nil {
		t.Fatal("NewLoader on unparsable YAML should fail")
	}
}

func TestReloadFiresOnChange(t *testing.T) {
	path := writeConfig(t, "telemetry:\n  read_limit: 100\n")
	loader, err := NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	var observed int
	loader.OnChange(func(cfg *Config) { observed = cfg.Telemetry.ReadLimit })

	if err := os.WriteFile(path, []byte("telemetry:\n  read_limit: 250\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loader.Reload()
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if cfg.Telemetry.ReadLimit != 250 || observed != 250 {
		t.Errorf("reloaded limit = %d, callback saw %d, want 250", cfg.Telemetry.ReadLimit, observed)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		loader, err := NewLoader(writeConfig(t, "server:\n  addr: \":8080\"\n"))
		if err != nil {
			t.Fatal(err)
		}
		return loader.Config()
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"read limit above cap", func(c *Config) { c.Telemetry.ReadLimit = MaxReadLimit + 1 }, true},
		{"negative read limit", func(c *Config) { c.Telemetry.ReadLimit = -1 }, true},
		{"empty local path", func(c *Config) { c.Telemetry.LocalPath = "" }, true},
		{"negative redis db", func(c *Config) { c.Redis.DB = -1 }, true},
		{"negative workers", func(c *Config) { c.Ingest.WriteWorkers = -2 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
