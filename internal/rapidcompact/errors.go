package rapidcompact

import (
	"errors"
	"regexp"
	"strings"
)

// ErrorMarker is the literal the tool prints in front of a logical failure.
const ErrorMarker = "ERROR:"

var (
	// ErrToolReported means the captured output contained ErrorMarker.
	ErrToolReported = errors.New("rapidcompact reported an error")

	// ErrToolFailed means the process could not start or exited non-zero.
	ErrToolFailed = errors.New("rapidcompact failed")

	// ErrTimeout means the invocation exceeded the configured timeout.
	ErrTimeout = errors.New("rapidcompact timed out")

	// ErrMissingIntermediate means the first pass of a two-pass job did not
	// produce the intermediate GLB.
	ErrMissingIntermediate = errors.New("intermediate export missing after first pass")
)

var reErrorLine = regexp.MustCompile(`(?m)^.*` + regexp.QuoteMeta(ErrorMarker) + `.*$`)

// HasErrorMarker reports whether output contains the tool's error marker.
func HasErrorMarker(output string) bool {
	return strings.Contains(output, ErrorMarker)
}

// ErrorLines returns the lines of output that carry the error marker,
// trimmed of surrounding whitespace.
func ErrorLines(output string) []string {
	matches := reErrorLine.FindAllString(output, -1)
	for i, m := range matches {
		matches[i] = strings.TrimSpace(m)
	}
	return matches
}

// TailLines returns at most n trailing non-empty-trimmed lines of output.
func TailLines(output string, n int) []string {
	output = strings.TrimSpace(output)
	if output == "" || n <= 0 {
		return nil
	}
	lines := strings.Split(output, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}
