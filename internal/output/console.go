package output

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/modcycle/internal/lint"
)

// ConsoleFormatter formats output for console display
type ConsoleFormatter struct {
	w        io.Writer
	quiet    bool
	verbose  bool
	colorize bool
}

// NewConsoleFormatter creates a new ConsoleFormatter
func NewConsoleFormatter(w io.Writer, quiet, verbose bool) *ConsoleFormatter {
	return &ConsoleFormatter{
		w:        w,
		quiet:    quiet,
		verbose:  verbose,
		colorize: true,
	}
}

// WithColor toggles ANSI styling.
func (f *ConsoleFormatter) WithColor(colorize bool) *ConsoleFormatter {
	f.colorize = colorize
	return f
}

// Format formats the summary for console output
func (f *ConsoleFormatter) Format(summary *lint.Summary) error {
	if f.quiet {
		// Only the exit code in quiet mode
		return nil
	}

	f.printFindings(summary)
	f.printErrors(summary)
	f.printSummary(summary)
	return nil
}

func (f *ConsoleFormatter) style(color string) lipgloss.Style {
	if !f.colorize {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// printFindings prints one block per cycle
func (f *ConsoleFormatter) printFindings(summary *lint.Summary) {
	red := f.style("9")
	yellow := f.style("3")
	gray := f.style("7")

	for i, finding := range summary.Findings {
		if i > 0 {
			fmt.Fprintln(f.w)
		}
		fmt.Fprintf(f.w, "%s %s\n", red.Render("✗ cycle"), Chain(summary.Root, finding.Cycle))
		fmt.Fprintf(f.w, "  %s %s\n",
			yellow.Render(string(finding.Recommendation.Strategy)+":"),
			Message(summary.Root, finding.Recommendation))

		if f.verbose {
			fmt.Fprintf(f.w, "  %s\n", gray.Render("seed: "+rel(summary.Root, finding.Seed)))
			fmt.Fprintf(f.w, "  %s\n", gray.Render("fingerprint: "+finding.Fingerprint))
			for _, l := range finding.Cycle.Links {
				for _, e := range l.Edges {
					fmt.Fprintf(f.w, "  %s\n", gray.Render(fmt.Sprintf("%s:%d %s %q",
						rel(summary.Root, e.From), e.Line, e.Kind, e.Specifier)))
				}
			}
		}
	}
}

// printErrors prints seeds that could not be analyzed
func (f *ConsoleFormatter) printErrors(summary *lint.Summary) {
	if len(summary.Errors) == 0 {
		return
	}
	yellow := f.style("3")
	fmt.Fprintln(f.w)
	for _, e := range summary.Errors {
		fmt.Fprintf(f.w, "%s %s: %v\n", yellow.Render("⚠ skipped"), rel(summary.Root, e.Seed), e.Err)
	}
}

// printSummary prints the closing line
func (f *ConsoleFormatter) printSummary(summary *lint.Summary) {
	gray := f.style("7")

	if len(summary.Findings) > 0 {
		fmt.Fprintln(f.w)
	}

	count := len(summary.Findings)
	if count == 0 {
		green := f.style("10")
		if f.colorize {
			green = green.Bold(true)
		}
		fmt.Fprintf(f.w, "%s %s\n", green.Render("✓ No cycles found"),
			gray.Render(fmt.Sprintf("(%d files, %v)", summary.FilesAnalyzed, summary.Duration.Round(time.Millisecond))))
	} else {
		noun := "cycles"
		if count == 1 {
			noun = "cycle"
		}
		fmt.Fprintf(f.w, "%s %s\n", f.style("9").Render(fmt.Sprintf("%d %s found", count, noun)),
			gray.Render(fmt.Sprintf("(%d files, %v)", summary.FilesAnalyzed, summary.Duration.Round(time.Millisecond))))
	}

	if summary.Baselined > 0 {
		fmt.Fprintln(f.w, gray.Render(fmt.Sprintf("%d baseline cycles ignored", summary.Baselined)))
	}

	if f.verbose {
		s := summary.Stats
		fmt.Fprintln(f.w, gray.Render(fmt.Sprintf(
			"visited %d, truncated %d, unresolved %d, read failures %d, dynamic %d, ignored %d, duplicates %d",
			s.Visited, s.Truncated, s.Unresolved, s.ReadFailures, s.Dynamic, s.Ignored, s.Duplicates)))
	}
}
