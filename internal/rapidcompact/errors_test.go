package rapidcompact

import (
	"context"
	"errors"
	"testing"
)

func TestErrorLines(t *testing.T) {
	out := "Importing teapot.glb\nERROR: could not read mesh\nwarning: x\n  ERROR: second\n"
	got := ErrorLines(out)
	if len(got) != 2 || got[0] != "ERROR: could not read mesh" || got[1] != "ERROR: second" {
		t.Errorf("ErrorLines = %q", got)
	}
	if HasErrorMarker("error: lowercase is not the marker") {
		t.Error("marker match must be case-sensitive")
	}
}

func TestTailLines(t *testing.T) {
	if got := TailLines("a\nb\nc\n", 2); len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("TailLines = %q", got)
	}
	if got := TailLines("  \n", 5); got != nil {
		t.Errorf("TailLines(blank) = %q", got)
	}
	if got := TailLines("x\r\ny\r\n", 5); len(got) != 2 || got[0] != "x" {
		t.Errorf("TailLines(crlf) = %q", got)
	}
}

func TestClassify(t *testing.T) {
	exitErr := errors.New("exit status 3")
	tests := []struct {
		name   string
		output string
		runErr error
		want   error
	}{
		{"clean", "done\n", nil, nil},
		{"marker with zero exit", "ERROR: bad mesh\n", nil, ErrToolReported},
		{"marker with non-zero exit", "ERROR: bad mesh\n", exitErr, ErrToolReported},
		{"non-zero exit without marker", "segfault\n", exitErr, ErrToolFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(context.Background(), tt.output, tt.runErr)
			if tt.want == nil {
				if err != nil {
					t.Errorf("err = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClassify_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()
	err := classify(ctx, "", errors.New("signal: killed"))
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}
