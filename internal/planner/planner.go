package planner

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/backmassage/rapidbatch/internal/config"
	"github.com/backmassage/rapidbatch/internal/naming"
)

// ErrPrefixTaken is returned by Planner.Plan in QA layout when an earlier
// input already owns the asset's output prefix.
var ErrPrefixTaken = errors.New("output prefix already claimed by another asset")

// singleFileFormats are self-contained; everything else may reference
// side-car files (textures, .mtl, .bin buffers) next to it.
var singleFileFormats = map[string]bool{
	".glb":  true,
	".ply":  true,
	".stp":  true,
	".step": true,
	".usdz": true,
	".vrm":  true,
}

// IsSingleFile reports whether ext (lowercase, with dot) is a
// self-contained format.
func IsSingleFile(ext string) bool {
	return singleFileFormats[ext]
}

// QA mode always exports a single GLB next to the output-side reports.
const qaExportFormat = "glb"

// BuildPlan derives every path for inputPath under the default prefix
// (<output>/<rel without ext>). It performs no I/O.
func BuildPlan(cfg *config.Config, inputPath string) (*AssetPlan, error) {
	rel, err := relPath(cfg.InputDir, inputPath)
	if err != nil {
		return nil, err
	}
	relNoExt := strings.TrimSuffix(rel, filepath.Ext(rel))
	return buildWithPrefix(cfg, inputPath, rel, naming.OutputPrefix(cfg.OutputDir, relNoExt)), nil
}

// Planner wraps BuildPlan with in-run prefix collision handling. Inputs
// must be planned in discovery order for the result to be deterministic.
//
// Standard layout: the first input keeps the plain prefix; later inputs
// that share it (same path, different extension) get "<prefix>_<ext>".
// QA layout: first match wins and later inputs are rejected with
// ErrPrefixTaken, since the QA tool pairs -input/-output directories by stem.
type Planner struct {
	cfg      *config.Config
	resolver *naming.CollisionResolver
}

// New returns a Planner for one batch run.
func New(cfg *config.Config) *Planner {
	return &Planner{cfg: cfg, resolver: naming.NewCollisionResolver()}
}

// Plan derives the AssetPlan for inputPath, claiming its output prefix.
func (p *Planner) Plan(inputPath string) (*AssetPlan, error) {
	plan, err := BuildPlan(p.cfg, inputPath)
	if err != nil {
		return nil, err
	}

	if p.cfg.QAMode {
		if !p.resolver.Claim(inputPath, plan.Prefix) {
			owner, _ := p.resolver.Owner(plan.Prefix)
			return nil, fmt.Errorf("%w: %s (kept %s)", ErrPrefixTaken, plan.Prefix, owner)
		}
		return plan, nil
	}

	alt := plan.Prefix + "_" + strings.TrimPrefix(plan.Ext, ".")
	prefix := p.resolver.Resolve(inputPath, plan.Prefix, alt)
	if prefix == plan.Prefix {
		return plan, nil
	}
	return buildWithPrefix(p.cfg, inputPath, plan.RelPath, prefix), nil
}

func buildWithPrefix(cfg *config.Config, inputPath, rel, prefix string) *AssetPlan {
	ext := filepath.Ext(inputPath)
	stem := strings.TrimSuffix(filepath.Base(inputPath), ext)
	suffix := cfg.Suffix

	plan := &AssetPlan{
		InputPath: inputPath,
		RelPath:   rel,
		Stem:      stem,
		Ext:       strings.ToLower(ext),
		Prefix:    prefix,
	}

	if cfg.QAMode {
		plan.Layout = LayoutQA
		inDir := prefix + "-input"
		outDir := prefix + "-output"
		plan.InputStats = filepath.Join(inDir, stem+naming.InputInfix+".json")
		plan.InputRender = filepath.Join(inDir, stem+naming.InputInfix+".jpg")
		plan.OutputStats = filepath.Join(outDir, stem+suffix+".json")
		plan.OutputRender = filepath.Join(outDir, stem+suffix+renderExt(cfg))
		plan.Exports = []Export{{
			Format: qaExportFormat,
			Path:   filepath.Join(outDir, stem+suffix+"."+qaExportFormat),
		}}
		plan.QA = planStaging(inputPath, plan.Ext, stem, inDir)
	} else {
		plan.Layout = LayoutStandard
		plan.InputStats = prefix + naming.InputInfix + ".json"
		plan.InputRender = prefix + naming.InputInfix + ".jpg"
		plan.OutputStats = prefix + suffix + ".json"
		plan.OutputRender = prefix + suffix + renderExt(cfg)
		for _, f := range cfg.Formats {
			plan.Exports = append(plan.Exports, Export{
				Format: f,
				Path:   naming.ExportPath(prefix, stem, suffix, f),
			})
		}
	}

	if cfg.TwoPass {
		plan.Intermediate = filepath.Join(prefix+"-intermediate", stem+".glb")
	}
	if cfg.RenderConfig != "" {
		plan.RenderStageDir = prefix + suffix + "-render"
	}
	return plan
}

// renderExt is the output-side preview extension. Directory render output
// (render config) is always PNG; --render_image writes JPEG.
func renderExt(cfg *config.Config) string {
	if cfg.RenderConfig != "" {
		return ".png"
	}
	return ".jpg"
}

func planStaging(inputPath, ext, stem, inDir string) *Staging {
	s := &Staging{Dir: inDir}
	if IsSingleFile(ext) {
		s.SourceFile = inputPath
		s.Dest = filepath.Join(inDir, stem+naming.InputInfix+filepath.Ext(inputPath))
		return s
	}
	s.MultiFile = true
	s.SourceDir = filepath.Dir(inputPath)
	return s
}

// relPath returns target relative to root, rejecting paths that escape it.
func relPath(root, target string) (string, error) {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", fmt.Errorf("relative path of %s: %w", target, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is not inside input directory %s", target, root)
	}
	return rel, nil
}
