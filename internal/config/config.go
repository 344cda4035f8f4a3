// Package config provides centralized configuration management.
// Defaults live here; environment variables override them at startup.
package config

import (
	"os"
	"strconv"
)

// SimConfig holds simulation settings.
type SimConfig struct {
	TickRate    int    // simulation ticks per second
	ArenaFile   string // YAML arena definition, empty for the built-in arena
	JournalFile string // gzip NDJSON match journal, empty disables it
}

// DefaultSim returns the default simulation configuration.
func DefaultSim() SimConfig {
	return SimConfig{
		TickRate: 30,
	}
}

// SimFromEnv returns simulation configuration with environment overrides.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if f := os.Getenv("ARENA_FILE"); f != "" {
		cfg.ArenaFile = f
	}
	if f := os.Getenv("JOURNAL_FILE"); f != "" {
		cfg.JournalFile = f
	}

	return cfg
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port       int
	MaxPlayers int

	// Per-IP rate limits for the join and input paths.
	JoinPerMinute   int
	InputsPerSecond int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:            3000,
		MaxPlayers:      64,
		JoinPerMinute:   10,
		InputsPerSecond: 120,
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if mp := getEnvInt("MAX_PLAYERS", 0); mp > 0 {
		cfg.MaxPlayers = mp
	}
	if j := getEnvInt("JOIN_PER_MINUTE", 0); j > 0 {
		cfg.JoinPerMinute = j
	}
	if i := getEnvInt("INPUTS_PER_SECOND", 0); i > 0 {
		cfg.InputsPerSecond = i
	}

	return cfg
}

// ObservabilityConfig holds the localhost debug server settings.
type ObservabilityConfig struct {
	Enabled bool
	Port    int // metrics + pprof, bound to localhost only
}

// DefaultObservability returns the default observability configuration.
func DefaultObservability() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled: true,
		Port:    9091,
	}
}

// ObservabilityFromEnv returns observability configuration with environment
// overrides.
func ObservabilityFromEnv() ObservabilityConfig {
	cfg := DefaultObservability()

	if os.Getenv("METRICS_ENABLED") == "false" {
		cfg.Enabled = false
	}
	if p := getEnvInt("METRICS_PORT", 0); p > 0 {
		cfg.Port = p
	}

	return cfg
}

// StatsConfig holds the match statistics store settings.
type StatsConfig struct {
	Path string // SQLite file, empty disables persistence
}

// StatsFromEnv returns stats configuration with environment overrides.
func StatsFromEnv() StatsConfig {
	return StatsConfig{Path: os.Getenv("STATS_DB")}
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sim           SimConfig
	Server        ServerConfig
	Observability ObservabilityConfig
	Stats         StatsConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Sim:           SimFromEnv(),
		Server:        ServerFromEnv(),
		Observability: ObservabilityFromEnv(),
		Stats:         StatsFromEnv(),
	}
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
