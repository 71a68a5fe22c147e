// Package rapidcompact builds and executes RapidCompact (rpdx) command
// lines and classifies their captured output.
//
// One asset maps to one invocation, or two in two-pass mode (normalize,
// then report and export). Flag/value pairs are always appended together,
// and argv goes straight to the OS without a shell, so values containing
// spaces stay single elements. CommandLine renders the quoted form for
// logs and --dry-run.
//
// The tool's exit status is not authoritative: any "ERROR:" line in the
// captured output fails the job and is persisted through ErrorLog. There
// are no retries.
package rapidcompact
