package rapidcompact

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/rapidbatch/internal/config"
	"github.com/backmassage/rapidbatch/internal/planner"
)

func testCfg() *config.Config {
	cfg := config.DefaultConfig()
	cfg.InputDir = "input"
	cfg.OutputDir = "output"
	return &cfg
}

func mustPlan(t *testing.T, cfg *config.Config, rel string) *planner.AssetPlan {
	t.Helper()
	plan, err := planner.BuildPlan(cfg, filepath.Join(cfg.InputDir, rel))
	if err != nil {
		t.Fatal(err)
	}
	return plan
}

// valueAfter returns the element following the first occurrence of flag.
func valueAfter(args []string, flag string) (string, bool) {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1], true
		}
	}
	return "", false
}

func count(args []string, flag string) int {
	n := 0
	for _, a := range args {
		if a == flag {
			n++
		}
	}
	return n
}

func TestBuild_SinglePassSkeleton(t *testing.T) {
	cfg := testCfg()
	cfg.ConfigFile = "rpd.json"
	cfg.Target = "f:5000"
	plan := mustPlan(t, cfg, "teapot.glb")

	invs := Build(cfg, plan)
	if len(invs) != 1 || invs[0].Pass != PassSingle {
		t.Fatalf("got %d invocations, want 1 single pass", len(invs))
	}
	want := []string{
		"rpdx",
		"--read_config", "rpd.json",
		"-s", "rendering:cameraViewVector", "0.5 -0.5 -1",
		"-s", "rendering:imageWidth", "512",
		"-s", "rendering:imageHeight", "512",
		"-s", "rendering:background", "vignette",
		"-i", plan.InputPath,
		"--write_info", plan.InputStats,
		"--render_image", plan.InputRender,
		"-c", "f:5000",
		"--render_image", plan.OutputRender,
		"--write_info", plan.OutputStats,
		"-e", plan.Exports[0].Path,
		"-e", plan.Exports[1].Path,
	}
	got := invs[0].Args
	if strings.Join(got, "\x00") != strings.Join(want, "\x00") {
		t.Errorf("args mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestBuild_OptionalPairsDroppedWhole(t *testing.T) {
	cfg := testCfg()
	plan := mustPlan(t, cfg, "teapot.glb")
	args := Build(cfg, plan)[0].Args

	for _, f := range []string{"-c", "--read_config"} {
		if count(args, f) != 0 {
			t.Errorf("%s present without a value configured: %q", f, args)
		}
	}
	if args[0] != "rpdx" {
		t.Errorf("args[0] = %q", args[0])
	}
}

func TestBuild_CustomExecutable(t *testing.T) {
	cfg := testCfg()
	cfg.ToolExe = "/opt/RapidCompact/rpdx"
	args := Build(cfg, mustPlan(t, cfg, "teapot.glb"))[0].Args
	if args[0] != "/opt/RapidCompact/rpdx" {
		t.Errorf("args[0] = %q", args[0])
	}
}

func TestBuild_QAExportsSingleGLB(t *testing.T) {
	cfg := testCfg()
	cfg.QAMode = true
	plan := mustPlan(t, cfg, "teapot.obj")
	args := Build(cfg, plan)[0].Args

	if count(args, "-e") != 1 {
		t.Fatalf("QA layout should export once: %q", args)
	}
	if v, _ := valueAfter(args, "-e"); v != plan.Exports[0].Path {
		t.Errorf("-e = %q, want %q", v, plan.Exports[0].Path)
	}
}

func TestBuild_TwoPass(t *testing.T) {
	cfg := testCfg()
	cfg.TwoPass = true
	cfg.Target = "v:1000"
	plan := mustPlan(t, cfg, "teapot.fbx")

	invs := Build(cfg, plan)
	if len(invs) != 2 {
		t.Fatalf("got %d invocations, want 2", len(invs))
	}
	first, second := invs[0], invs[1]
	if first.Pass != PassNormalize || second.Pass != PassFinalize {
		t.Errorf("passes = %s, %s", first.Pass, second.Pass)
	}

	if v, _ := valueAfter(first.Args, "-i"); v != plan.InputPath {
		t.Errorf("pass 1 -i = %q", v)
	}
	if v, _ := valueAfter(first.Args, "-e"); v != plan.Intermediate {
		t.Errorf("pass 1 -e = %q, want intermediate", v)
	}
	if v, _ := valueAfter(first.Args, "-c"); v != "v:1000" {
		t.Errorf("pass 1 -c = %q", v)
	}
	if v, _ := valueAfter(first.Args, "--write_info"); v != plan.InputStats {
		t.Errorf("pass 1 --write_info = %q", v)
	}

	if v, _ := valueAfter(second.Args, "-i"); v != plan.Intermediate {
		t.Errorf("pass 2 -i = %q, want intermediate", v)
	}
	if count(second.Args, "-c") != 0 {
		t.Error("target must only apply in the first pass")
	}
	if v, _ := valueAfter(second.Args, "--write_info"); v != plan.OutputStats {
		t.Errorf("pass 2 --write_info = %q", v)
	}
	if count(second.Args, "-e") != len(plan.Exports) {
		t.Errorf("pass 2 exports = %d, want %d", count(second.Args, "-e"), len(plan.Exports))
	}
}

func TestBuild_RenderConfig(t *testing.T) {
	cfg := testCfg()
	cfg.RenderConfig = "render.json"
	plan := mustPlan(t, cfg, "teapot.glb")
	args := Build(cfg, plan)[0].Args

	if count(args, "--render_image") != 1 {
		t.Errorf("only the input-side render should use --render_image: %q", args)
	}
	if v, _ := valueAfter(args, "--render"); v != "render.json" {
		t.Errorf("--render = %q", v)
	}
	if v, _ := valueAfter(args, "-o"); v != plan.RenderStageDir {
		t.Errorf("-o = %q", v)
	}
	if count(args, "-r") != 1 {
		t.Error("-r flag missing")
	}
}

func TestCommandLine(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"rpdx", "-i", "a.glb"}, "rpdx -i a.glb"},
		{[]string{"-s", "rendering:cameraViewVector", "0.5 -0.5 -1"}, `-s rendering:cameraViewVector "0.5 -0.5 -1"`},
		{[]string{"-i", "my scans/cup.obj"}, `-i "my scans/cup.obj"`},
		{[]string{"-c", ""}, `-c ""`},
		{[]string{`say "hi"`}, `"say \"hi\""`},
	}
	for _, tt := range tests {
		if got := CommandLine(tt.args); got != tt.want {
			t.Errorf("CommandLine(%q) = %s, want %s", tt.args, got, tt.want)
		}
	}
}
