package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv. Flags always win over these.
const (
	EnvToolExe = "RAPIDCOMPACT_EXE"
	EnvConfig  = "RAPIDBATCH_CONFIG_FILE"
	EnvTarget  = "RAPIDBATCH_TARGET"
	EnvSuffix  = "RAPIDBATCH_SUFFIX"
	EnvFormats = "RAPIDBATCH_FORMATS"
	EnvJobs    = "RAPIDBATCH_JOBS"
	EnvTimeout = "RAPIDBATCH_TIMEOUT"
	EnvErrDir  = "RAPIDBATCH_ERROR_DIR"
)

// LoadEnvFiles reads .env files into the process environment. Missing files
// are not an error; variables already set are left untouched.
func LoadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ApplyEnv overlays environment values onto cfg. Malformed numeric values
// are ignored so a bad .env never blocks a run that passes explicit flags.
func ApplyEnv(cfg *Config) {
	cfg.ToolExe = getenv(EnvToolExe, cfg.ToolExe)
	cfg.ConfigFile = getenv(EnvConfig, cfg.ConfigFile)
	cfg.Target = getenv(EnvTarget, cfg.Target)
	cfg.Suffix = getenv(EnvSuffix, cfg.Suffix)
	cfg.ErrorDir = getenv(EnvErrDir, cfg.ErrorDir)
	cfg.Formats = getenvCSV(EnvFormats, cfg.Formats)

	if v := os.Getenv(EnvJobs); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.Jobs = n
		}
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			cfg.Timeout = d
		}
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvCSV(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	values := SplitCSV(raw)
	if len(values) == 0 {
		return fallback
	}
	return values
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping
// empty entries.
func SplitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
