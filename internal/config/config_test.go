package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
addr: 127.0.0.1:9000
low_stock_schedule: "30 6 * * 1-5"
otlp_endpoint: http://localhost:4318
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("expected addr 127.0.0.1:9000, got %q", cfg.Addr)
	}
	if cfg.LowStockSchedule != "30 6 * * 1-5" {
		t.Errorf("unexpected low stock schedule %q", cfg.LowStockSchedule)
	}
	if cfg.OTLPEndpoint != "http://localhost:4318" {
		t.Errorf("unexpected otlp endpoint %q", cfg.OTLPEndpoint)
	}
	// Untouched keys keep their defaults.
	if cfg.DB != Default().DB {
		t.Errorf("expected default db, got %q", cfg.DB)
	}
	if cfg.TokenPurgeSchedule != "@hourly" {
		t.Errorf("expected default purge schedule, got %q", cfg.TokenPurgeSchedule)
	}
}

func TestParseEmptyScheduleDisablesJob(t *testing.T) {
	cfg, err := Parse([]byte(`low_stock_schedule: ""`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.LowStockSchedule != "" {
		t.Errorf("expected empty schedule, got %q", cfg.LowStockSchedule)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad cron", `low_stock_schedule: "every day"`, "low_stock_schedule"},
		{"bad purge cron", `token_purge_schedule: "* *"`, "token_purge_schedule"},
		{"empty addr", `addr: ""`, "addr"},
		{"empty db", `db: " "`, "db"},
		{"empty admin", `admin_user: ""`, "admin_user"},
		{"bad endpoint", `otlp_endpoint: "localhost:4318"`, "otlp_endpoint"},
		{"not yaml", "addr: [", "parsing config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Addr = ""
	cfg.LowStockSchedule = "nope"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"addr", "low_stock_schedule"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hub.yaml")
	if err := os.WriteFile(path, []byte("admin_user: boss\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AdminUser != "boss" {
		t.Errorf("expected admin_user boss, got %q", cfg.AdminUser)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
