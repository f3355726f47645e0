package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/sdejongh/casemover/pkg/models"
)

// statusColumnWidth fits the longest status code so outcome lines align.
const statusColumnWidth = 26

// HumanFormatter prints one line per outcome and a closing summary,
// colorized when writing to a terminal
type HumanFormatter struct {
	writer      io.Writer
	colorOutput bool
	dryRun      bool
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Start initializes the formatter and prints the run banner
func (f *HumanFormatter) Start(writer io.Writer, info StartInfo) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.colorOutput = writerIsTerminal(writer)
	f.dryRun = info.DryRun

	if info.DryRun {
		fmt.Fprintf(writer, "Dry run: simulating migration of %d matched folders, nothing will be moved\n", info.Matches)
	} else {
		fmt.Fprintf(writer, "Migrating %d matched folders\n", info.Matches)
	}
	fmt.Fprintf(writer, "  Source:      %s (%d folders scanned)\n", info.SourcePath, info.FoldersScanned)
	fmt.Fprintf(writer, "  Destination: %s\n", info.DestPath)
	fmt.Fprintf(writer, "  CaseIDs:     %d loaded\n", info.CaseIDsLoaded)
	fmt.Fprintln(writer)

	return nil
}

// Outcome prints one processed match
func (f *HumanFormatter) Outcome(outcome models.MoveOutcome, current, total int) error {
	if f.writer == nil {
		return nil
	}

	// Pad before coloring: ANSI codes would break the column alignment.
	statusStr := fmt.Sprintf("%-*s", statusColumnWidth, outcome.Status)
	if f.colorOutput {
		statusStr = statusColor(outcome.Status).Sprint(statusStr)
	}

	line := fmt.Sprintf("[%d/%d] %s %s  %s",
		current, total, statusStr, outcome.CaseID, filepath.Base(outcome.SourcePath))
	if outcome.DestPath != "" {
		line += " -> " + outcome.DestPath
	}
	if outcome.Message != "" {
		line += " (" + outcome.Message + ")"
	}

	fmt.Fprintln(f.writer, line)
	return nil
}

// Complete finalizes output and displays the run summary
func (f *HumanFormatter) Complete(summary *models.RunSummary) error {
	if f.writer == nil {
		f.writer = io.Discard
	}
	w := f.writer

	verb := "Migration"
	if summary.DryRun {
		verb = "Dry run"
	}
	fmt.Fprintf(w, "\n%s finished in %s\n", verb, summary.Duration.Round(time.Millisecond))

	fmt.Fprintf(w, "\nSummary:\n")
	fmt.Fprintf(w, "  Folders scanned: %d\n", summary.FoldersScanned)
	fmt.Fprintf(w, "  CaseIDs loaded:  %d\n", summary.CaseIDsLoaded)
	fmt.Fprintf(w, "  Matches:         %d\n", summary.MatchesFound)

	fmt.Fprintf(w, "\n  Outcomes:\n")
	for _, status := range models.AllStatuses() {
		count := summary.Stats[status]
		if count == 0 {
			continue
		}
		label := fmt.Sprintf("%-*s", statusColumnWidth, status)
		if f.colorOutput {
			label = statusColor(status).Sprint(label)
		}
		fmt.Fprintf(w, "    %s %d\n", label, count)
	}
	fmt.Fprintf(w, "\n  Moved: %d  Quarantined: %d  Skipped: %d  Errors: %d\n",
		summary.Stats.Moved(), summary.Stats.Quarantined(),
		summary.Stats.Skipped(), summary.Stats.Errors())

	if len(summary.UnmatchedIDs) > 0 {
		fmt.Fprintf(w, "  CaseIDs without a matching folder: %d\n", len(summary.UnmatchedIDs))
	}
	if summary.EarlyStop {
		fmt.Fprintf(w, "  Operation budget reached, batch stopped early\n")
	}

	if summary.ReportPath != "" {
		fmt.Fprintf(w, "\nReport: %s\n", summary.ReportPath)
	}

	statusText := string(summary.Status)
	if f.colorOutput {
		statusText = runStatusColor(summary.Status).Sprint(statusText)
	}
	fmt.Fprintf(w, "\nStatus: %s\n", statusText)

	return nil
}

// Error reports a fatal error
func (f *HumanFormatter) Error(err error) error {
	if f.writer == nil {
		return nil
	}
	msg := fmt.Sprintf("Error: %v", err)
	if f.colorOutput {
		msg = color.New(color.FgRed).Sprint(msg)
	}
	fmt.Fprintln(f.writer, msg)
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// writerIsTerminal reports whether w is a terminal that supports colors
func writerIsTerminal(w io.Writer) bool {
	if color.NoColor {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// statusColor picks the display color for one outcome status
func statusColor(s models.StatusCode) *color.Color {
	switch {
	case s == models.StatusError:
		return color.New(color.FgRed)
	case s.IsQuarantine():
		return color.New(color.FgYellow)
	case s.IsSkip():
		return color.New(color.FgHiBlack)
	default:
		return color.New(color.FgGreen)
	}
}

// runStatusColor picks the display color for the overall run status
func runStatusColor(s models.RunStatus) *color.Color {
	switch s {
	case models.RunCompleted:
		return color.New(color.FgGreen)
	case models.RunFailed:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}
