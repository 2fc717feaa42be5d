package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/efreitasn/minimarket/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultRoster is the market every new game starts with.
const DefaultRoster = "Shibe Inc.,Papaya,Tweety,GuCCe,MIYO,Yoko"

// Config holds all runtime configuration for the market game server.
type Config struct {
	Port            int
	LogLevel        string
	StartingBalance decimal.Decimal
	// Seed drives the price engine. Zero means seeded from the clock.
	Seed            int64
	Roster          []string
	Store           string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT: %d out of range", port)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	startingBalance, err := domain.ParseMoney(getStr("STARTING_BALANCE", "1000.00"))
	if err != nil {
		return nil, fmt.Errorf("invalid STARTING_BALANCE: %w", err)
	}
	if startingBalance.IsNegative() {
		return nil, fmt.Errorf("invalid STARTING_BALANCE: must be >= 0")
	}

	seed, err := getInt64("SEED", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid SEED: %w", err)
	}

	roster, err := parseRoster(getStr("ROSTER", DefaultRoster))
	if err != nil {
		return nil, fmt.Errorf("invalid ROSTER: %w", err)
	}

	storeArg := getStr("STORE", "fs:./data")
	if !isValidStore(storeArg) {
		return nil, fmt.Errorf("invalid STORE: %q, must be memory, fs:<dir> or leveldb:<dir>", storeArg)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:            port,
		LogLevel:        logLevel,
		StartingBalance: startingBalance,
		Seed:            seed,
		Roster:          roster,
		Store:           storeArg,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

// parseRoster splits a comma separated list of security names. Names are
// trimmed and must be unique and non-empty.
func parseRoster(s string) ([]string, error) {
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			return nil, fmt.Errorf("empty security name in %q", s)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate security name %q", name)
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

func isValidStore(arg string) bool {
	if arg == "memory" {
		return true
	}
	kind, path, ok := strings.Cut(arg, ":")
	return ok && path != "" && (kind == "fs" || kind == "leveldb")
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
