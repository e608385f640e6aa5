package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dotcommander/modcycle/internal/lint"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	w       io.Writer
	verbose bool
}

// NewMarkdownFormatter creates a new MarkdownFormatter
func NewMarkdownFormatter(w io.Writer, verbose bool) *MarkdownFormatter {
	return &MarkdownFormatter{w: w, verbose: verbose}
}

// Format formats the summary as Markdown
func (f *MarkdownFormatter) Format(summary *lint.Summary) error {
	var builder strings.Builder

	builder.WriteString("# Module Cycle Report\n\n")
	builder.WriteString(fmt.Sprintf("**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	builder.WriteString(fmt.Sprintf("**Project:** %s (%s)\n\n", summary.Root, summary.ProjectType))
	builder.WriteString(fmt.Sprintf("**Duration:** %v\n\n", summary.Duration.Round(time.Millisecond)))
	builder.WriteString(strings.Repeat("-", 50) + "\n\n")

	// Summary Table
	builder.WriteString("## Summary\n\n")
	builder.WriteString("| Metric | Count |\n")
	builder.WriteString("|--------|-------|\n")
	builder.WriteString(fmt.Sprintf("| Files Analyzed | %d |\n", summary.FilesAnalyzed))
	builder.WriteString(fmt.Sprintf("| Cycles | %d |\n", len(summary.Findings)))
	builder.WriteString(fmt.Sprintf("| Baselined | %d |\n", summary.Baselined))
	if f.verbose {
		s := summary.Stats
		builder.WriteString(fmt.Sprintf("| Modules Visited | %d |\n", s.Visited))
		builder.WriteString(fmt.Sprintf("| Truncated | %d |\n", s.Truncated))
		builder.WriteString(fmt.Sprintf("| Unresolved | %d |\n", s.Unresolved))
		builder.WriteString(fmt.Sprintf("| Dynamic | %d |\n", s.Dynamic))
	}
	builder.WriteString("\n")

	if len(summary.Findings) == 0 {
		builder.WriteString("No cycles found.\n")
	} else {
		builder.WriteString("## Cycles\n\n")
		for i, finding := range summary.Findings {
			builder.WriteString(fmt.Sprintf("### %d. `%s`\n\n", i+1, Chain(summary.Root, finding.Cycle)))
			builder.WriteString(fmt.Sprintf("- **Strategy:** %s\n", finding.Recommendation.Strategy))
			builder.WriteString(fmt.Sprintf("- **Fix:** %s\n", Message(summary.Root, finding.Recommendation)))
			builder.WriteString(fmt.Sprintf("- **Fingerprint:** `%s`\n", finding.Fingerprint))
			builder.WriteString("\n")
		}
	}

	if len(summary.Errors) > 0 {
		builder.WriteString("## Skipped\n\n")
		for _, e := range summary.Errors {
			builder.WriteString(fmt.Sprintf("- `%s`: %v\n", rel(summary.Root, e.Seed), e.Err))
		}
		builder.WriteString("\n")
	}

	if _, err := io.WriteString(f.w, builder.String()); err != nil {
		return fmt.Errorf("error writing markdown: %w", err)
	}
	return nil
}
