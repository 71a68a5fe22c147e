package rapidcompact

import (
	"strconv"
	"strings"

	"github.com/backmassage/rapidbatch/internal/config"
	"github.com/backmassage/rapidbatch/internal/planner"
)

// Pass names the role of an invocation within an asset job.
type Pass string

const (
	PassSingle    Pass = "single"    // import, both reports and exports in one run
	PassNormalize Pass = "normalize" // two-pass step 1: input reports, -c, intermediate GLB
	PassFinalize  Pass = "finalize"  // two-pass step 2: output reports and exports
)

// Invocation is one tool run. Args[0] is the executable.
type Invocation struct {
	Pass Pass
	Args []string
}

// argList appends flags together with their values so a pairing is never
// split.
type argList []string

func (a *argList) flag(name string) { *a = append(*a, name) }

func (a *argList) pair(name, value string) { *a = append(*a, name, value) }

// setting appends a -s <key> <value> scene setting.
func (a *argList) setting(key, value string) { *a = append(*a, "-s", key, value) }

// Build constructs the invocations for one planned asset. The skeleton is
//
//	rpdx [--read_config <cfg>] -s rendering:... -i <input>
//	     --write_info <inStats> --render_image <inRender> [-c <target>]
//	     --render_image <outRender> --write_info <outStats> -e <export>...
//
// With two-pass enabled the skeleton is split at the intermediate GLB.
func Build(cfg *config.Config, plan *planner.AssetPlan) []Invocation {
	if plan.Intermediate == "" {
		a := preamble(cfg)
		a.pair("-i", plan.InputPath)
		appendInputSide(&a, cfg, plan)
		appendOutputSide(&a, cfg, plan)
		return []Invocation{{Pass: PassSingle, Args: a}}
	}

	first := preamble(cfg)
	first.pair("-i", plan.InputPath)
	appendInputSide(&first, cfg, plan)
	first.pair("-e", plan.Intermediate)

	second := preamble(cfg)
	second.pair("-i", plan.Intermediate)
	appendOutputSide(&second, cfg, plan)

	return []Invocation{
		{Pass: PassNormalize, Args: first},
		{Pass: PassFinalize, Args: second},
	}
}

func preamble(cfg *config.Config) argList {
	a := make(argList, 0, 32)
	a.flag(cfg.ToolExe)
	if cfg.ConfigFile != "" {
		a.pair("--read_config", cfg.ConfigFile)
	}
	r := cfg.Rendering
	a.setting("rendering:cameraViewVector", r.CameraViewVector)
	a.setting("rendering:imageWidth", strconv.Itoa(r.ImageWidth))
	a.setting("rendering:imageHeight", strconv.Itoa(r.ImageHeight))
	a.setting("rendering:background", r.Background)
	return a
}

// appendInputSide adds the as-imported reports and the decimation target.
func appendInputSide(a *argList, cfg *config.Config, plan *planner.AssetPlan) {
	a.pair("--write_info", plan.InputStats)
	a.pair("--render_image", plan.InputRender)
	if cfg.Target != "" {
		a.pair("-c", cfg.Target)
	}
}

// appendOutputSide adds the as-exported render and stats, then every export.
func appendOutputSide(a *argList, cfg *config.Config, plan *planner.AssetPlan) {
	if plan.RenderStageDir != "" {
		a.pair("--render", cfg.RenderConfig)
		a.pair("-o", plan.RenderStageDir)
		a.flag("-r")
	} else {
		a.pair("--render_image", plan.OutputRender)
	}
	a.pair("--write_info", plan.OutputStats)
	for _, e := range plan.Exports {
		a.pair("-e", e.Path)
	}
}

// CommandLine renders args for display. Elements that contain whitespace or
// quotes, or are empty, are wrapped in double quotes with inner quotes
// escaped; the tool splits its own command line the same way.
func CommandLine(args []string) string {
	parts := make([]string, len(args))
	for i, s := range args {
		parts[i] = quote(s)
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
