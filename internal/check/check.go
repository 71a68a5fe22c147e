// Package check provides the --check diagnostics and the pre-run dependency
// validation (CheckDeps) for the RapidCompact executable and its JSON
// config files.
package check

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/backmassage/rapidbatch/internal/config"
)

// Sentinel errors returned by CheckDeps.
var (
	ErrToolNotFound  = errors.New("RapidCompact executable not found")
	ErrConfigInvalid = errors.New("config file is not valid JSON")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// stays testable with a recording logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// RunCheck prints the availability of the tool and the readability of
// every configured file and directory. It returns false if anything a run
// would need is missing.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkTool(cfg, log)
	for _, f := range []struct{ label, path string }{
		{"Config file", cfg.ConfigFile},
		{"Render config", cfg.RenderConfig},
	} {
		if f.path == "" {
			log.Info("%s: not set", f.label)
			continue
		}
		if err := checkJSON(f.path); err != nil {
			log.Error("%s: %v", f.label, err)
			ok = false
			continue
		}
		log.Success("%s: %s", f.label, f.path)
	}

	if fi, err := os.Stat(cfg.InputDir); err != nil || !fi.IsDir() {
		log.Warn("Input directory not found: %s", cfg.InputDir)
	} else {
		log.Success("Input directory: %s", cfg.InputDir)
	}
	log.Info("Output directory: %s", cfg.OutputDir)
	log.Info("Error logs: %s", cfg.ErrorDir)
	return ok
}

func checkTool(cfg *config.Config, log Logger) bool {
	path, err := exec.LookPath(cfg.ToolExe)
	if err != nil {
		log.Error("%s not found (set --rapidcompact_exe or %s)", cfg.ToolExe, config.EnvToolExe)
		return false
	}
	log.Success("RapidCompact: %s", path)
	return true
}

// CheckDeps is the pre-run validation: the tool must resolve and every
// configured JSON file must parse. Returns a wrapped sentinel on failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.ToolExe); err != nil {
		return fmt.Errorf("%w: %s", ErrToolNotFound, cfg.ToolExe)
	}
	for _, p := range []string{cfg.ConfigFile, cfg.RenderConfig} {
		if p == "" {
			continue
		}
		if err := checkJSON(p); err != nil {
			return err
		}
	}
	return nil
}

// checkJSON reads path and reports whether it holds well-formed JSON.
func checkJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("%w: %s", ErrConfigInvalid, path)
	}
	return nil
}
