// Package config holds runtime configuration: defaults, environment
// overrides, CLI flag parsing, and validation. Defaults reproduce the
// established output tree layout so existing trees stay compatible.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/rapidbatch/internal/naming"
)

// ErrConfigFileMissing is returned by Validate when --configFile points at
// a file that does not exist.
var ErrConfigFileMissing = errors.New("RapidCompact config file not found")

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Rendering holds the fixed preview settings passed to the tool with -s.
type Rendering struct {
	CameraViewVector string // Fixed: "0.5 -0.5 -1".
	ImageWidth       int    // Fixed: 512.
	ImageHeight      int    // Fixed: 512.
	Background       string // Fixed: "vignette".
}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// [ApplyEnv] and [ParseFlags], checked by [Config.Validate], and from then
// on treated as read-only: every package receives it by pointer but none
// writes to it.
type Config struct {
	// Paths.
	InputDir     string // Default: "input".
	OutputDir    string // Default: "output".
	ErrorDir     string // Default: "errorLogs".
	ConfigFile   string // Optional RapidCompact JSON config (--read_config).
	RenderConfig string // Optional render-config JSON; switches to directory render output.

	// Tool.
	ToolExe string        // Default: "rpdx" (env RAPIDCOMPACT_EXE).
	Timeout time.Duration // Per invocation; 0 disables.

	// Optimization.
	Target  string   // Decimation target for -c (e.g. "1MB"); empty uses the config file's target.
	Suffix  string   // Default: "_web".
	Formats []string // Default: glb, gltf.
	TwoPass bool     // Normalize in a first pass, report on the re-import in a second.

	// Discovery.
	Extensions []string // Lowercase with leading dot.

	// Layout and behavior.
	QAMode            bool
	DeleteOutputFirst bool
	DryRun            bool
	Jobs              int // Default: 1 (sequential).

	Rendering Rendering

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Run --check diagnostics and exit.
	ListOnly  bool      // Print the asset inventory and exit.
}

// DefaultExtensions is the recognized input set (lowercase, leading dot).
var DefaultExtensions = []string{
	".glb", ".gltf", ".obj", ".ply", ".fbx", ".stp", ".step",
	".usd", ".usda", ".usdc", ".usdz", ".vrm",
}

// DefaultConfig returns a Config with the stock defaults. Used as
// the base before env and CLI overrides are applied.
func DefaultConfig() Config {
	return Config{
		InputDir:   "input",
		OutputDir:  "output",
		ErrorDir:   "errorLogs",
		ToolExe:    "rpdx",
		Suffix:     "_web",
		Formats:    []string{"glb", "gltf"},
		Extensions: append([]string(nil), DefaultExtensions...),
		Jobs:       1,
		Rendering: Rendering{
			CameraViewVector: "0.5 -0.5 -1",
			ImageWidth:       512,
			ImageHeight:      512,
			Background:       "vignette",
		},
		ColorMode: ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate normalizes list fields and checks value ranges. When not in
// CheckOnly mode it also requires input and output directories and an
// existing config file when one is named.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if strings.TrimSpace(c.ToolExe) == "" {
		return errors.New("RapidCompact executable must not be empty")
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1 (got %d)", c.Jobs)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative (got %s)", c.Timeout)
	}

	formats, err := normalizeFormats(c.Formats)
	if err != nil {
		return err
	}
	c.Formats = formats
	c.Extensions = normalizeExtensions(c.Extensions)
	if len(c.Extensions) == 0 {
		return errors.New("at least one input extension is required")
	}

	if strings.ContainsAny(c.Suffix, `/\`) {
		return fmt.Errorf("suffix %q must not contain path separators", c.Suffix)
	}
	// Standard layout: output reports are <prefix><suffix>.json and input
	// reports <prefix>_input.json in the same directory. The two name sets
	// overlap when either string ends with the other.
	if !c.QAMode && (strings.HasSuffix(c.Suffix, naming.InputInfix) || strings.HasSuffix(naming.InputInfix, c.Suffix)) {
		return fmt.Errorf("suffix %q collides with the %q report names", c.Suffix, naming.InputInfix)
	}

	if c.CheckOnly {
		return nil
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return errors.New("need both input and output directory")
	}
	if c.ConfigFile != "" {
		if _, err := os.Stat(c.ConfigFile); err != nil {
			return fmt.Errorf("%w: %s", ErrConfigFileMissing, c.ConfigFile)
		}
	}
	if c.RenderConfig != "" {
		if _, err := os.Stat(c.RenderConfig); err != nil {
			return fmt.Errorf("render config not found: %s", c.RenderConfig)
		}
	}
	return nil
}

// normalizeFormats lowercases formats, strips leading dots, and drops
// duplicates while keeping first-seen order.
func normalizeFormats(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		f = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(f)), ".")
		if f == "" || seen[f] {
			continue
		}
		if strings.ContainsAny(f, `/\ `) {
			return nil, fmt.Errorf("invalid export format %q", f)
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, errors.New("at least one export format is required")
	}
	return out, nil
}

// normalizeExtensions lowercases extensions and ensures a leading dot.
func normalizeExtensions(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

// ValidatePaths ensures the resolved output directory is not inside (or
// equal to) the resolved input directory, which would make discovery pick
// up exported assets on the next run. With DeleteOutputFirst the input
// must also not live under the output directory, since cleanup would
// delete it. Both arguments must be absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	if IsWithin(outputAbs, inputAbs) {
		return errors.New("output directory must not be inside input directory")
	}
	if c.DeleteOutputFirst && IsWithin(inputAbs, outputAbs) {
		return errors.New("delete_output_first would delete the input directory (input is inside output)")
	}
	return nil
}

// IsWithin reports whether path equals dir or is nested below it. Both
// must be cleaned paths of the same form (both absolute or both relative).
func IsWithin(path, dir string) bool {
	sep := string(filepath.Separator)
	return path == dir || strings.HasPrefix(path+sep, dir+sep)
}
