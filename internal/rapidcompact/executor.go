package rapidcompact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/backmassage/rapidbatch/internal/config"
)

const waitDelay = 5 * time.Second

// ExecResult holds the outcome of a single tool invocation.
type ExecResult struct {
	Output   string // combined stdout and stderr
	Err      error  // nil, or wraps ErrToolReported, ErrToolFailed or ErrTimeout
	Duration time.Duration
}

// Execute runs inv synchronously. Output is captured in full; see liveOutput
// for when it is also echoed in real time. cfg.Timeout > 0 bounds the
// run. The error marker takes precedence over the exit status, so a
// marker in the output of a zero-exit run still fails.
func Execute(ctx context.Context, cfg *config.Config, inv Invocation) ExecResult {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.Args[0], inv.Args[1:]...)
	// Bound the wait for grandchildren that keep the output pipe open
	// after the tool itself has been killed.
	cmd.WaitDelay = waitDelay

	var buf bytes.Buffer
	var w io.Writer = &buf
	if live := liveOutput(cfg); live != nil {
		w = io.MultiWriter(&buf, live)
	}
	// Same writer for both streams: exec serializes the writes.
	cmd.Stdout = w
	cmd.Stderr = w

	start := time.Now()
	runErr := cmd.Run()
	res := ExecResult{Output: buf.String(), Duration: time.Since(start)}
	res.Err = classify(ctx, res.Output, runErr)
	return res
}

// liveOutput returns the writer that receives tool output as it is
// produced, or nil. Output is only echoed in verbose mode with a single
// worker; with several workers the streams would interleave on the console.
func liveOutput(cfg *config.Config) io.Writer {
	if cfg.Verbose && cfg.Jobs <= 1 {
		return os.Stdout
	}
	return nil
}

func classify(ctx context.Context, output string, runErr error) error {
	if HasErrorMarker(output) {
		if lines := ErrorLines(output); len(lines) > 0 {
			return fmt.Errorf("%w: %s", ErrToolReported, lines[0])
		}
		return ErrToolReported
	}
	if runErr == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, runErr)
	}
	return fmt.Errorf("%w: %w", ErrToolFailed, runErr)
}
