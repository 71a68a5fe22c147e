package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/backmassage/rapidbatch/internal/config"
	"github.com/backmassage/rapidbatch/internal/display"
	"github.com/backmassage/rapidbatch/internal/logging"
	"github.com/backmassage/rapidbatch/internal/planner"
	"github.com/backmassage/rapidbatch/internal/term"
)

// Asset status in the inventory report.
const (
	StatusDone     = "done"
	StatusPending  = "pending"
	StatusRejected = "rejected"
	StatusInvalid  = "invalid"
)

// maxNameWidth truncates long relative paths in the table.
const maxNameWidth = 60

// InventoryRow is one discovered asset as it would be handled by Run.
type InventoryRow struct {
	RelPath string
	Format  string
	Size    int64
	Status  string
	Output  string // output prefix relative to the output root
	Note    string
}

// Inventory discovers and plans every asset without running the tool and
// returns one row per discovered file in discovery order.
func Inventory(cfg *config.Config) ([]InventoryRow, error) {
	files, err := Discover(cfg.InputDir, cfg.Extensions, cfg.OutputDir, cfg.ErrorDir)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", cfg.InputDir, err)
	}

	pl := planner.New(cfg)
	rows := make([]InventoryRow, 0, len(files))
	for _, path := range files {
		row := InventoryRow{
			Format: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		}
		if rel, err := filepath.Rel(cfg.InputDir, path); err == nil {
			row.RelPath = rel
		} else {
			row.RelPath = path
		}
		if fi, err := os.Stat(path); err == nil {
			row.Size = fi.Size()
		}

		plan, err := pl.Plan(path)
		switch {
		case errors.Is(err, planner.ErrPrefixTaken):
			row.Status = StatusRejected
			row.Note = err.Error()
		case err != nil:
			row.Status = StatusInvalid
			row.Note = err.Error()
		default:
			row.Output = plan.Prefix
			if rel, err := filepath.Rel(cfg.OutputDir, plan.Prefix); err == nil {
				row.Output = rel
			}
			row.Status = StatusPending
			if outputsComplete(plan) {
				row.Status = StatusDone
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// List prints the inventory table and a status tally. It returns the
// discovery error, if any.
func List(cfg *config.Config, log *logging.Logger) error {
	rows, err := Inventory(cfg)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		log.Warn("No assets found in %s", cfg.InputDir)
		return nil
	}
	log.Info("Inventory of %d assets in %s", len(rows), cfg.InputDir)
	fmt.Println()
	printInventoryTable(os.Stdout, rows)
	printInventorySummary(os.Stdout, log, rows)
	return nil
}

func printInventoryTable(w io.Writer, rows []InventoryRow) {
	nameW := len("Asset")
	fmtW := len("Format")
	sizeW := len("Size")
	statW := len("Status")
	for _, r := range rows {
		nameW = max(nameW, utf8.RuneCountInString(r.RelPath))
		fmtW = max(fmtW, len(r.Format))
		sizeW = max(sizeW, len(display.FormatBytes(r.Size)))
		statW = max(statW, len(r.Status))
	}
	nameW = min(nameW, maxNameWidth)

	header := fmt.Sprintf("  %-*s  %-*s  %*s  %-*s  %s",
		nameW, "Asset", fmtW, "Format", sizeW, "Size", statW, "Status", "Output")
	fmt.Fprintln(w, term.Title.Render(header))
	fmt.Fprintln(w, term.Muted.Render("  "+strings.Repeat("─", lipgloss.Width(header)-2)))

	for _, r := range rows {
		name := truncateLeft(r.RelPath, nameW)
		detail := r.Output
		if r.Note != "" {
			detail = r.Note
		}
		fmt.Fprintf(w, "  %-*s  %-*s  %*s  %s  %s\n",
			nameW, name,
			fmtW, r.Format,
			sizeW, display.FormatBytes(r.Size),
			statusCell(r.Status, statW),
			term.Muted.Render(detail),
		)
	}
	fmt.Fprintln(w)
}

// truncateLeft keeps the last width-1 runes of s behind an ellipsis when s
// is wider than width runes.
func truncateLeft(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	return "…" + string(r[len(r)-width+1:])
}

// statusCell pads the plain status first, then styles it, so escape
// sequences never count toward the column width.
func statusCell(status string, width int) string {
	padded := fmt.Sprintf("%-*s", width, status)
	switch status {
	case StatusDone:
		return term.OK.Render(padded)
	case StatusRejected, StatusInvalid:
		return term.Failure.Render(padded)
	default:
		return term.Warning.Render(padded)
	}
}

func printInventorySummary(w io.Writer, log *logging.Logger, rows []InventoryRow) {
	counts := map[string]int{}
	var total int64
	for _, r := range rows {
		counts[r.Status]++
		total += r.Size
	}
	tally := fmt.Sprintf("%d done, %d pending, %d rejected, %d invalid (%s of input)",
		counts[StatusDone], counts[StatusPending], counts[StatusRejected], counts[StatusInvalid],
		display.FormatBytes(total))
	fmt.Fprintln(w, term.Panel.Render(tally))
	log.Debug("Inventory: %s", tally)
	if counts[StatusPending] == 0 && counts[StatusRejected] == 0 && counts[StatusInvalid] == 0 {
		log.Success("All assets are up to date")
	}
}
