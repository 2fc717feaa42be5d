package config

import (
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if !cfg.StartingBalance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("StartingBalance = %s, want 1000.00", cfg.StartingBalance)
	}
	if cfg.Seed != 0 {
		t.Errorf("Seed = %d, want 0", cfg.Seed)
	}
	wantRoster := []string{"Shibe Inc.", "Papaya", "Tweety", "GuCCe", "MIYO", "Yoko"}
	if !reflect.DeepEqual(cfg.Roster, wantRoster) {
		t.Errorf("Roster = %q, want %q", cfg.Roster, wantRoster)
	}
	if cfg.Store != "fs:./data" {
		t.Errorf("Store = %q, want fs:./data", cfg.Store)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want 10s", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout != 60*time.Second {
		t.Errorf("IdleTimeout = %v, want 60s", cfg.IdleTimeout)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STARTING_BALANCE", "2500.50")
	t.Setenv("SEED", "-42")
	t.Setenv("ROSTER", " Acme , Globex ")
	t.Setenv("STORE", "leveldb:/tmp/saves")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("SHUTDOWN_TIMEOUT", "15s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.StartingBalance.StringFixed(2) != "2500.50" {
		t.Errorf("StartingBalance = %s, want 2500.50", cfg.StartingBalance)
	}
	if cfg.Seed != -42 {
		t.Errorf("Seed = %d, want -42", cfg.Seed)
	}
	if !reflect.DeepEqual(cfg.Roster, []string{"Acme", "Globex"}) {
		t.Errorf("Roster = %q, want [Acme Globex]", cfg.Roster)
	}
	if cfg.Store != "leveldb:/tmp/saves" {
		t.Errorf("Store = %q", cfg.Store)
	}
	if cfg.ReadTimeout != 2*time.Second {
		t.Errorf("ReadTimeout = %v, want 2s", cfg.ReadTimeout)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 15s", cfg.ShutdownTimeout)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PORT", "not-a-number"},
		{"PORT", "0"},
		{"PORT", "70000"},
		{"LOG_LEVEL", "verbose"},
		{"STARTING_BALANCE", "lots"},
		{"STARTING_BALANCE", "10.005"},
		{"STARTING_BALANCE", "-1.00"},
		{"SEED", "1.5"},
		{"ROSTER", "Acme,,Globex"},
		{"ROSTER", "Acme,Acme"},
		{"STORE", "s3:bucket"},
		{"STORE", "fs:"},
		{"STORE", "disk"},
		{"READ_TIMEOUT", "not-a-duration"},
		{"WRITE_TIMEOUT", "5"},
		{"IDLE_TIMEOUT", "forever"},
		{"SHUTDOWN_TIMEOUT", "-"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
