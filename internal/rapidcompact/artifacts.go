package rapidcompact

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/backmassage/rapidbatch/internal/naming"
)

// The tool always writes directory render output to this fixed name.
const (
	renderSubdir = "renderings"
	renderFile   = "image.png"
)

// RenderSource returns where the tool leaves its render under stageDir.
func RenderSource(stageDir string) string {
	return filepath.Join(stageDir, renderSubdir, renderFile)
}

// RelocateRender moves stageDir/renderings/image.png to dest and removes
// stageDir. A missing render is not an error: moved is false and the stage
// directory is still removed.
func RelocateRender(stageDir, dest string) (moved bool, err error) {
	src := RenderSource(stageDir)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, os.RemoveAll(stageDir)
		}
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, err
	}
	if err := os.Rename(src, dest); err != nil {
		return false, err
	}
	return true, os.RemoveAll(stageDir)
}

// ErrorLog persists captured tool output for failed jobs, one file per
// input under dir. The directory is created on first write.
type ErrorLog struct {
	dir string
	mu  sync.Mutex
}

// NewErrorLog returns an ErrorLog rooted at dir. Nothing is created yet.
func NewErrorLog(dir string) *ErrorLog {
	return &ErrorLog{dir: dir}
}

// Write stores output under dir/<sanitized input>.txt, replacing any
// earlier record for the same input, and returns the file path.
func (e *ErrorLog) Write(inputPath, output string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(e.dir, naming.ErrorLogName(inputPath))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(output), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return path, nil
}
