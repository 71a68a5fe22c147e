package planner

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/backmassage/rapidbatch/internal/config"
)

// --- Helper builders ---

func defaultCfg() *config.Config {
	cfg := config.DefaultConfig()
	cfg.InputDir = "input"
	cfg.OutputDir = "output"
	return &cfg
}

func qaCfg() *config.Config {
	cfg := defaultCfg()
	cfg.QAMode = true
	return cfg
}

func p(parts ...string) string { return filepath.Join(parts...) }

func mustPlan(t *testing.T, cfg *config.Config, input string) *AssetPlan {
	t.Helper()
	plan, err := BuildPlan(cfg, input)
	if err != nil {
		t.Fatalf("BuildPlan(%q): %v", input, err)
	}
	return plan
}

// --- Standard layout ---

func TestBuildPlan_StandardLayoutExample(t *testing.T) {
	plan := mustPlan(t, defaultCfg(), p("input", "teapot.glb"))

	checks := []struct{ name, got, want string }{
		{"Stem", plan.Stem, "teapot"},
		{"Ext", plan.Ext, ".glb"},
		{"RelPath", plan.RelPath, "teapot.glb"},
		{"Prefix", plan.Prefix, p("output", "teapot")},
		{"OutputStats", plan.OutputStats, p("output", "teapot_web.json")},
		{"OutputRender", plan.OutputRender, p("output", "teapot_web.jpg")},
		{"InputStats", plan.InputStats, p("output", "teapot_input.json")},
		{"InputRender", plan.InputRender, p("output", "teapot_input.jpg")},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}

	want := []Export{
		{"glb", p("output", "teapot_web-glb", "teapot_web.glb")},
		{"gltf", p("output", "teapot_web-gltf", "teapot_web.gltf")},
	}
	if len(plan.Exports) != len(want) {
		t.Fatalf("Exports = %v, want %v", plan.Exports, want)
	}
	for i := range want {
		if plan.Exports[i] != want[i] {
			t.Errorf("Exports[%d] = %v, want %v", i, plan.Exports[i], want[i])
		}
	}
	if plan.QA != nil || plan.Layout != LayoutStandard {
		t.Error("standard layout should not carry QA staging")
	}
	if plan.Intermediate != "" || plan.RenderStageDir != "" {
		t.Error("variant paths should be empty by default")
	}
}

func TestBuildPlan_NestedMirrorsTree(t *testing.T) {
	plan := mustPlan(t, defaultCfg(), p("input", "parts", "cup.OBJ"))

	if plan.Ext != ".obj" {
		t.Errorf("Ext = %q, want lowercased .obj", plan.Ext)
	}
	if plan.OutputStats != p("output", "parts", "cup_web.json") {
		t.Errorf("OutputStats = %q", plan.OutputStats)
	}
	if plan.Exports[0].Path != p("output", "parts", "cup_web-glb", "cup_web.glb") {
		t.Errorf("Exports[0] = %q", plan.Exports[0].Path)
	}
}

func TestBuildPlan_CustomSuffixAndFormats(t *testing.T) {
	cfg := defaultCfg()
	cfg.Suffix = "_lod1"
	cfg.Formats = []string{"usdz"}
	plan := mustPlan(t, cfg, p("input", "chair.fbx"))

	if len(plan.Exports) != 1 || plan.Exports[0].Path != p("output", "chair_lod1-usdz", "chair_lod1.usdz") {
		t.Errorf("Exports = %v", plan.Exports)
	}
	if plan.OutputRender != p("output", "chair_lod1.jpg") {
		t.Errorf("OutputRender = %q", plan.OutputRender)
	}
}

func TestBuildPlan_Deterministic(t *testing.T) {
	a := mustPlan(t, defaultCfg(), p("input", "parts", "cup.obj"))
	b := mustPlan(t, defaultCfg(), p("input", "parts", "cup.obj"))
	if a.Prefix != b.Prefix || a.OutputStats != b.OutputStats || a.Exports[1] != b.Exports[1] {
		t.Error("BuildPlan is not deterministic")
	}
}

func TestBuildPlan_InjectiveAcrossDirectories(t *testing.T) {
	a := mustPlan(t, defaultCfg(), p("input", "a", "x.glb"))
	b := mustPlan(t, defaultCfg(), p("input", "b", "x.glb"))
	if a.Prefix == b.Prefix {
		t.Fatalf("a/x.glb and b/x.glb share prefix %q", a.Prefix)
	}
	seen := map[string]bool{}
	for _, f := range append(a.ExpectedOutputs(), b.ExpectedOutputs()...) {
		if seen[f] {
			t.Errorf("output %q produced twice", f)
		}
		seen[f] = true
	}
}

func TestBuildPlan_RejectsOutsideInput(t *testing.T) {
	if _, err := BuildPlan(defaultCfg(), p("elsewhere", "x.glb")); err == nil {
		t.Error("expected error for path outside the input root")
	}
}

// --- QA layout ---

func TestBuildPlan_QALayout(t *testing.T) {
	plan := mustPlan(t, qaCfg(), p("input", "sub", "teapot.glb"))

	checks := []struct{ name, got, want string }{
		{"InputStats", plan.InputStats, p("output", "sub", "teapot-input", "teapot_input.json")},
		{"InputRender", plan.InputRender, p("output", "sub", "teapot-input", "teapot_input.jpg")},
		{"OutputStats", plan.OutputStats, p("output", "sub", "teapot-output", "teapot_web.json")},
		{"OutputRender", plan.OutputRender, p("output", "sub", "teapot-output", "teapot_web.jpg")},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
	if len(plan.Exports) != 1 || plan.Exports[0].Path != p("output", "sub", "teapot-output", "teapot_web.glb") {
		t.Errorf("QA export = %v", plan.Exports)
	}
	if plan.Layout != LayoutQA {
		t.Errorf("Layout = %v, want LayoutQA", plan.Layout)
	}
	if plan.QA == nil || plan.QA.MultiFile {
		t.Fatalf("QA staging = %+v, want single-file", plan.QA)
	}
	if plan.QA.Dest != p("output", "sub", "teapot-input", "teapot_input.glb") {
		t.Errorf("QA.Dest = %q", plan.QA.Dest)
	}
}

func TestBuildPlan_QAMultiFileStaging(t *testing.T) {
	plan := mustPlan(t, qaCfg(), p("input", "parts", "cup.obj"))
	if plan.QA == nil || !plan.QA.MultiFile {
		t.Fatalf("QA staging = %+v, want multi-file", plan.QA)
	}
	if plan.QA.SourceDir != p("input", "parts") {
		t.Errorf("SourceDir = %q", plan.QA.SourceDir)
	}
	if plan.QA.Dir != p("output", "parts", "cup-input") {
		t.Errorf("Dir = %q", plan.QA.Dir)
	}
}

func TestIsSingleFile(t *testing.T) {
	for _, ext := range []string{".glb", ".ply", ".usdz", ".vrm", ".stp"} {
		if !IsSingleFile(ext) {
			t.Errorf("%s should be single-file", ext)
		}
	}
	for _, ext := range []string{".obj", ".gltf", ".fbx", ".usda"} {
		if IsSingleFile(ext) {
			t.Errorf("%s should be multi-file", ext)
		}
	}
}

// --- Variants ---

func TestBuildPlan_TwoPassAndRenderConfig(t *testing.T) {
	cfg := defaultCfg()
	cfg.TwoPass = true
	cfg.RenderConfig = "render.json"
	plan := mustPlan(t, cfg, p("input", "teapot.gltf"))

	if plan.Intermediate != p("output", "teapot-intermediate", "teapot.glb") {
		t.Errorf("Intermediate = %q", plan.Intermediate)
	}
	if plan.RenderStageDir != p("output", "teapot_web-render") {
		t.Errorf("RenderStageDir = %q", plan.RenderStageDir)
	}
	if plan.OutputRender != p("output", "teapot_web.png") {
		t.Errorf("OutputRender = %q, want PNG for directory render output", plan.OutputRender)
	}
	found := false
	for _, d := range plan.OutputDirs() {
		if d == p("output", "teapot-intermediate") {
			found = true
		}
	}
	if !found {
		t.Errorf("OutputDirs %v missing intermediate dir", plan.OutputDirs())
	}
}

func TestExpectedOutputs(t *testing.T) {
	plan := mustPlan(t, defaultCfg(), p("input", "teapot.glb"))
	got := plan.ExpectedOutputs()
	if len(got) != 6 {
		t.Fatalf("ExpectedOutputs = %v, want 4 reports + 2 exports", got)
	}
	if got[0] != plan.InputStats || got[3] != plan.OutputRender || got[5] != plan.Exports[1].Path {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestOutputDirs_Distinct(t *testing.T) {
	plan := mustPlan(t, defaultCfg(), p("input", "teapot.glb"))
	dirs := plan.OutputDirs()
	want := []string{"output", p("output", "teapot_web-glb"), p("output", "teapot_web-gltf")}
	if len(dirs) != len(want) {
		t.Fatalf("OutputDirs = %v, want %v", dirs, want)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Errorf("OutputDirs[%d] = %q, want %q", i, dirs[i], want[i])
		}
	}
}

// --- Collision policy ---

func TestPlanner_StandardDisambiguatesByExtension(t *testing.T) {
	pl := New(defaultCfg())

	first, err := pl.Plan(p("input", "teapot.glb"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := pl.Plan(p("input", "teapot.obj"))
	if err != nil {
		t.Fatal(err)
	}
	if first.Prefix != p("output", "teapot") {
		t.Errorf("first prefix = %q", first.Prefix)
	}
	if second.Prefix != p("output", "teapot_obj") {
		t.Errorf("second prefix = %q, want teapot_obj", second.Prefix)
	}
	if second.OutputStats != p("output", "teapot_obj_web.json") {
		t.Errorf("second OutputStats = %q", second.OutputStats)
	}
	if second.Exports[0].Path != p("output", "teapot_obj_web-glb", "teapot_web.glb") {
		t.Errorf("second export = %q", second.Exports[0].Path)
	}
}

func TestPlanner_QAFirstMatchWins(t *testing.T) {
	pl := New(qaCfg())

	if _, err := pl.Plan(p("input", "teapot.glb")); err != nil {
		t.Fatalf("first: %v", err)
	}
	_, err := pl.Plan(p("input", "teapot.obj"))
	if !errors.Is(err, ErrPrefixTaken) {
		t.Fatalf("second: err = %v, want ErrPrefixTaken", err)
	}
	// The winner can be planned again (re-runs, --list then run).
	if _, err := pl.Plan(p("input", "teapot.glb")); err != nil {
		t.Errorf("re-plan of winner: %v", err)
	}
}

func TestPlanner_NoCollisionKeepsPlainPrefix(t *testing.T) {
	pl := New(defaultCfg())
	a, _ := pl.Plan(p("input", "a", "x.glb"))
	b, _ := pl.Plan(p("input", "b", "x.glb"))
	if a.Prefix != p("output", "a", "x") || b.Prefix != p("output", "b", "x") {
		t.Errorf("prefixes = %q, %q", a.Prefix, b.Prefix)
	}
}
