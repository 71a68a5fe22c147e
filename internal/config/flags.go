package config

// This file implements CLI flag parsing and help text.
// Long names keep their established spelling (--inputDirectory,
// --delete_output_first, ...) so existing wrapper scripts keep working.
// Go's flag package accepts both -name and --name.

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseFlags parses args (without the program name) into cfg. On --help or
// --version it prints to stdout/stderr and returns flag.ErrHelp so the
// caller can exit cleanly.
func ParseFlags(cfg *Config, args []string, version string) error {
	fs := flag.NewFlagSet("rapidbatch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { printUsage(os.Stderr, version) }

	var ui uiFlags

	definePathFlags(fs, cfg)
	defineToolFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &ui)

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			printUsage(os.Stderr, version)
		}
		return err
	}

	if ui.showHelp {
		printUsage(os.Stderr, version)
		return flag.ErrHelp
	}
	if ui.showVersion {
		fmt.Fprintln(os.Stdout, "rapidbatch v"+version)
		return flag.ErrHelp
	}
	if rest := fs.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}

	applyUIFlags(cfg, &ui)
	cfg.InputDir = NormalizeDirArg(cfg.InputDir)
	cfg.OutputDir = NormalizeDirArg(cfg.OutputDir)
	return nil
}

// uiFlags holds flags that are resolved after Parse.
type uiFlags struct {
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// definePathFlags registers input/output/error directories and config files.
func definePathFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.InputDir, "inputDirectory", cfg.InputDir, "Input directory")
	fs.StringVar(&cfg.InputDir, "i", cfg.InputDir, "Same as --inputDirectory")
	fs.StringVar(&cfg.OutputDir, "outputDirectory", cfg.OutputDir, "Output directory")
	fs.StringVar(&cfg.OutputDir, "o", cfg.OutputDir, "Same as --outputDirectory")
	fs.StringVar(&cfg.ConfigFile, "configFile", cfg.ConfigFile, "JSON config file for RapidCompact")
	fs.StringVar(&cfg.ConfigFile, "c", cfg.ConfigFile, "Same as --configFile")
	fs.StringVar(&cfg.ErrorDir, "error_dir", cfg.ErrorDir, "Directory for per-asset error logs")
	fs.StringVar(&cfg.RenderConfig, "render_config", cfg.RenderConfig, "Render config JSON (directory render output)")
}

// defineToolFlags registers the executable, target, suffix and formats.
func defineToolFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ToolExe, "rapidcompact_exe", cfg.ToolExe, "RapidCompact executable")
	fs.StringVar(&cfg.Target, "target", cfg.Target, "Decimation target for -c (e.g. 1MB)")
	fs.StringVar(&cfg.Target, "t", cfg.Target, "Same as --target")
	fs.StringVar(&cfg.Suffix, "suffix", cfg.Suffix, "Suffix for output file names")
	fs.StringVar(&cfg.Suffix, "s", cfg.Suffix, "Same as --suffix")
	fs.Var(&csvValue{&cfg.Formats}, "formats", "Comma-separated export formats")
	fs.Var(&csvValue{&cfg.Extensions}, "extensions", "Comma-separated input extensions")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-invocation timeout (0 = none)")
	fs.BoolVar(&cfg.TwoPass, "two_pass", cfg.TwoPass, "Normalize first, then report on the re-imported result")
}

// defineBehaviorFlags registers cleanup, QA layout, concurrency and dry-run.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.DeleteOutputFirst, "delete_output_first", false, "Delete the output directory before processing")
	fs.BoolVar(&cfg.DeleteOutputFirst, "d", false, "Same as --delete_output_first")
	fs.BoolVar(&cfg.QAMode, "qa_mode", false, "Lay out output for the QA tool")
	fs.BoolVar(&cfg.QAMode, "q", false, "Same as --qa_mode")
	fs.IntVar(&cfg.Jobs, "jobs", cfg.Jobs, "Number of assets processed in parallel")
	fs.IntVar(&cfg.Jobs, "j", cfg.Jobs, "Same as --jobs")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Print command lines without running RapidCompact")
	fs.BoolVar(&cfg.ListOnly, "list", false, "List discovered assets and their status, then exit")
}

// defineDisplayFlags registers color, verbosity, log file, check, version and help.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, ui *uiFlags) {
	fs.BoolVar(&ui.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&ui.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output (tee tool output)")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.StringVar(&cfg.LogFile, "log", "", "Append JSON logs to file")
	fs.StringVar(&cfg.LogFile, "l", "", "Same as --log")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run diagnostics and exit")
	fs.BoolVar(&ui.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&ui.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&ui.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&ui.showHelp, "h", false, "Same as --help")
}

func applyUIFlags(cfg *Config, ui *uiFlags) {
	if ui.noColor {
		cfg.ColorMode = ColorNever
	} else if ui.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// printUsage writes the help text. Column-aligned for readability.
func printUsage(w io.Writer, version string) {
	const col1 = 34
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "rapidbatch v" + version + " - batch driver for the RapidCompact CLI"},
		{"", ""},
		{"  rapidbatch [OPTIONS]", ""},
		{"", ""},
		{"Paths", ""},
		{"  -i, --inputDirectory <dir>", "Input directory (default: input)"},
		{"  -o, --outputDirectory <dir>", "Output directory (default: output)"},
		{"  -c, --configFile <file>", "JSON config file for RapidCompact"},
		{"  --error_dir <dir>", "Per-asset error logs (default: errorLogs)"},
		{"  --render_config <file>", "Render config JSON (directory render output)"},
		{"", ""},
		{"RapidCompact", ""},
		{"  --rapidcompact_exe <path>", "Executable (default: rpdx, env RAPIDCOMPACT_EXE)"},
		{"  -t, --target <value>", "Decimation target, e.g. 1MB (default: from config)"},
		{"  -s, --suffix <value>", "Output name suffix (default: _web)"},
		{"  --formats <list>", "Export formats (default: glb,gltf)"},
		{"  --extensions <list>", "Input extensions to collect"},
		{"  --timeout <duration>", "Per-invocation timeout, e.g. 10m (default: none)"},
		{"  --two_pass", "Normalize first, report on the re-import"},
		{"", ""},
		{"Behavior", ""},
		{"  -d, --delete_output_first", "Delete the output directory before processing"},
		{"  -q, --qa_mode", "Lay out output for the QA tool"},
		{"  -j, --jobs <n>", "Assets processed in parallel (default: 1)"},
		{"  --dry-run", "Print command lines only"},
		{"  --list", "List assets and their status, then exit"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"  -l, --log <path>", "Append JSON logs to file"},
		{"", ""},
		{"Utility", ""},
		{"  --check", "Diagnostics (executable, config file)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// csvValue adapts a []string to flag.Value. Set replaces the whole list.
type csvValue struct {
	p *[]string
}

func (c *csvValue) String() string {
	if c.p == nil {
		return ""
	}
	return strings.Join(*c.p, ",")
}

func (c *csvValue) Set(s string) error {
	vals := SplitCSV(s)
	if len(vals) == 0 {
		return fmt.Errorf("empty list %q", s)
	}
	*c.p = vals
	return nil
}
