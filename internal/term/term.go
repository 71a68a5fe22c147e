// Package term provides color state, terminal detection and the shared
// lipgloss styles.
//
// Styles are package-level variables because logging and display both need
// them. [Configure] sets the lipgloss color profile once during startup;
// when colors are disabled every style renders plain text.
package term

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/backmassage/rapidbatch/internal/config"
)

var enabled bool

// Shared styles. Rendering is a no-op when colors are disabled.
var (
	Title   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	Muted   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	OK      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	Failure = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	Panel   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Configure resolves the color mode and sets the lipgloss color profile.
// Call once during startup (from [logging.NewLogger]).
func Configure(mode config.ColorMode) {
	enabled = resolve(mode)
	if enabled {
		lipgloss.SetColorProfile(termenv.ANSI256)
	} else {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// Enabled reports whether colors are currently active.
func Enabled() bool { return enabled }

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
