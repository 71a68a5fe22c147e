package pipeline

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/rapidbatch/internal/naming"
	"github.com/backmassage/rapidbatch/internal/planner"
)

// outputsComplete reports whether every expected output of plan exists as
// a regular file. Size is not checked.
func outputsComplete(plan *planner.AssetPlan) bool {
	for _, f := range plan.ExpectedOutputs() {
		fi, err := os.Stat(f)
		if err != nil || !fi.Mode().IsRegular() {
			return false
		}
	}
	return true
}

// prepareDirs creates every directory the tool will write into.
func prepareDirs(plan *planner.AssetPlan) error {
	for _, d := range plan.OutputDirs() {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// stageQA copies the source asset into <prefix>-input/ for the QA tool.
// Files that already exist are left alone so re-runs are cheap.
func stageQA(st *planner.Staging) error {
	if st == nil {
		return nil
	}
	if !st.MultiFile {
		return copyIfMissing(st.SourceFile, st.Dest)
	}

	// Multi-file assets carry side-cars (textures, .mtl, .bin), so the
	// whole source directory is mirrored. Top-level files get the _input
	// infix; nested ones keep their names so relative references resolve.
	return filepath.WalkDir(st.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if abs(path) == abs(st.Dir) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(st.SourceDir, path)
		if err != nil {
			return err
		}
		if !strings.ContainsRune(rel, filepath.Separator) {
			rel = naming.WithInputInfix(rel)
		}
		return copyIfMissing(path, filepath.Join(st.Dir, rel))
	})
}

func abs(p string) string {
	a, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return a
}

func copyIfMissing(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return copyFile(src, dst)
}

// copyFile copies src to dst via a temp file and keeps src's mtime.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	tmp := dst + ".part"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Chtimes(dst, fi.ModTime(), fi.ModTime())
}

// exportBytes sums the sizes of the plan's exports that exist.
func exportBytes(plan *planner.AssetPlan) int64 {
	var n int64
	for _, e := range plan.Exports {
		if fi, err := os.Stat(e.Path); err == nil {
			n += fi.Size()
		}
	}
	return n
}
