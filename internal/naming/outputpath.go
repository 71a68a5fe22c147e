package naming

import (
	"path/filepath"
	"strings"
)

// InputInfix is inserted before the extension of staged source files and
// appended to input-side report names.
const InputInfix = "_input"

// OutputPrefix mirrors a relative, extension-less input path under outputDir.
//
//	input/parts/cup.obj → <outputDir>/parts/cup
func OutputPrefix(outputDir, relNoExt string) string {
	return filepath.Join(outputDir, relNoExt)
}

// ExportPath builds the per-format export file path of the standard layout:
//
//	<prefix><suffix>-<format>/<stem><suffix>.<format>
func ExportPath(prefix, stem, suffix, format string) string {
	return filepath.Join(prefix+suffix+"-"+format, stem+suffix+"."+format)
}

// WithInputInfix inserts "_input" before the extension of name, unless the
// name already carries the infix anywhere.
//
//	cup.obj → cup_input.obj, cup_input.mtl → cup_input.mtl
func WithInputInfix(name string) string {
	if strings.Contains(name, InputInfix) {
		return name
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + InputInfix + ext
}
