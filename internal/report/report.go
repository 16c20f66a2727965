// Package report renders the terminal output of a build.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vjjda/suttaworks/internal/hierarchy"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("172"))

	// dimStyle for muted labels
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	// boxStyle for the summary box
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("172")).
			Padding(0, 1)

	// headerBoxStyle for the run header
	headerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("172")).
			Padding(0, 1)
)

// Header describes the inputs of a build.
type Header struct {
	RunID     string
	Config    string
	SuperTree string
	BookFiles int
	Output    string
}

// FormatHeader renders the build header
func FormatHeader(w io.Writer, h Header) {
	content := fmt.Sprintf("%s %s\n%s %s\n%s %s  %s %s\n%s %s",
		dimStyle.Render("Run:"), titleStyle.Render(h.RunID),
		dimStyle.Render("Config:"), h.Config,
		dimStyle.Render("Super-tree:"), h.SuperTree,
		dimStyle.Render("Books:"), formatNumber(h.BookFiles),
		dimStyle.Render("Output:"), h.Output,
	)
	fmt.Fprintln(w, headerBoxStyle.Render(content))
}

// FormatSummary renders the per-pass record counts of a finished build
func FormatSummary(w io.Writer, s hierarchy.Summary, elapsed time.Duration) {
	status := successStyle.Render("OK")
	if s.Warnings > 0 || s.Roots != 1 {
		status = warnStyle.Render(fmt.Sprintf("%d warnings", s.Warnings))
	}

	line1 := fmt.Sprintf("%s %.1fs  %s %s  %s %s  %s",
		dimStyle.Render("Duration:"), elapsed.Seconds(),
		dimStyle.Render("Files:"), formatNumber(s.Files),
		dimStyle.Render("Skipped:"), formatNumber(s.SkippedFiles),
		status,
	)
	line2 := fmt.Sprintf("%s %s %s %s %s %s",
		dimStyle.Render("Records:"), formatNumber(s.BeforeFilter),
		dimStyle.Render("-> valid"), formatNumber(s.AfterFilter),
		dimStyle.Render("-> final"), formatNumber(s.Final),
	)
	line3 := fmt.Sprintf("%s %s  %s %s (%d passes)  %s %s  %s %d",
		dimStyle.Render("Demoted:"), formatNumber(s.Demoted),
		dimStyle.Render("Pruned:"), formatNumber(s.Pruned), s.PruneIterations,
		dimStyle.Render("Groups:"), formatNumber(s.Groups),
		dimStyle.Render("Roots:"), s.Roots,
	)

	content := titleStyle.Render("Hierarchy Built") + "\n" + line1 + "\n" + line2 + "\n" + line3
	fmt.Fprintln(w, boxStyle.Render(content))
}

// FormatWritten renders the final destination line
func FormatWritten(w io.Writer, dest string, records int) {
	fmt.Fprintf(w, "%s %s records written to %s\n",
		successStyle.Render("✓"), formatNumber(records), dest)
}

// formatNumber adds commas to large numbers for readability
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d,%03d,%03d", n/1000000, (n/1000)%1000, n%1000)
}
