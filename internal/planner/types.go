package planner

import "path/filepath"

// Layout selects how output artifacts are arranged.
type Layout int

const (
	LayoutStandard Layout = iota // <prefix><suffix>.json beside <prefix><suffix>-<fmt>/
	LayoutQA                     // <prefix>-input/ and <prefix>-output/ for the QA tool
)

// Export is one requested export file.
type Export struct {
	Format string // lowercase, no dot ("glb")
	Path   string
}

// Staging describes the QA-mode copy of the source asset into
// <prefix>-input/. Planning only describes it; the pipeline performs the copy.
type Staging struct {
	Dir string // <prefix>-input

	// Single-file formats copy SourceFile to Dest.
	SourceFile string
	Dest       string

	// Multi-file formats (OBJ with side-car textures, glTF with buffers)
	// copy every file under SourceDir into Dir, adding the "_input" infix
	// to top-level file names.
	MultiFile bool
	SourceDir string
}

// AssetPlan holds every path derived for one discovered input. It is
// produced by BuildPlan (pure) and consumed by the staging, command
// construction and skip-check steps.
type AssetPlan struct {
	InputPath string // as discovered (joined onto cfg.InputDir)
	RelPath   string // relative to the input root, with extension
	Stem      string // "teapot"
	Ext       string // lowercase with dot (".glb")
	Prefix    string // <output>/<rel without ext>, possibly disambiguated

	Layout Layout

	InputStats   string
	InputRender  string
	OutputStats  string
	OutputRender string
	Exports      []Export

	// Intermediate is the normalized first-pass export in two-pass mode;
	// empty otherwise.
	Intermediate string

	// RenderStageDir receives the tool's directory render output
	// (renderings/image.png) when a render config is used; empty otherwise.
	RenderStageDir string

	// QA is non-nil in QA layout.
	QA *Staging
}

// ExpectedOutputs lists the files whose joint existence marks the asset as
// done: input-side stats and render, output-side stats and render, and
// every requested export.
func (p *AssetPlan) ExpectedOutputs() []string {
	out := []string{p.InputStats, p.InputRender, p.OutputStats, p.OutputRender}
	for _, e := range p.Exports {
		out = append(out, e.Path)
	}
	return out
}

// OutputDirs lists the distinct parent directories the tool writes into,
// in first-seen order.
func (p *AssetPlan) OutputDirs() []string {
	paths := p.ExpectedOutputs()
	if p.Intermediate != "" {
		paths = append(paths, p.Intermediate)
	}
	seen := make(map[string]bool, len(paths))
	var dirs []string
	for _, f := range paths {
		d := filepath.Dir(f)
		if seen[d] {
			continue
		}
		seen[d] = true
		dirs = append(dirs, d)
	}
	return dirs
}
