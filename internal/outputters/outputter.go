package outputters

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dotcommander/modcycle/internal/config"
	"github.com/dotcommander/modcycle/internal/lint"
	"github.com/dotcommander/modcycle/internal/output"
)

// Outputter handles output formatting
type Outputter struct {
	config  *config.Config
	version string
	stdout  io.Writer
}

// NewOutputter creates a new Outputter
func NewOutputter(config *config.Config, version string) *Outputter {
	return &Outputter{
		config:  config,
		version: version,
		stdout:  os.Stdout,
	}
}

// WithWriter replaces stdout as the destination when no output file is set.
func (o *Outputter) WithWriter(w io.Writer) *Outputter {
	o.stdout = w
	return o
}

// Format formats the summary using the configured format, writing to the
// configured output file or stdout.
func (o *Outputter) Format(summary *lint.Summary) error {
	if o.config.Output == "" {
		return o.formatTo(o.stdout, summary)
	}

	path := o.config.Output
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error writing to file %s: %w", path, err)
	}
	if err := o.formatTo(f, summary); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// CreateFormatter returns the formatter for format writing to w.
func (o *Outputter) CreateFormatter(format string, w io.Writer) (output.Formatter, error) {
	switch format {
	case "console":
		formatter := output.NewConsoleFormatter(w, o.config.Quiet, o.config.Verbose)
		// files get plain text
		if w != o.stdout {
			formatter.WithColor(false)
		}
		return formatter, nil
	case "json":
		return output.NewJSONFormatter(w, true, o.version), nil
	case "markdown":
		return output.NewMarkdownFormatter(w, o.config.Verbose), nil
	case "yaml":
		return output.NewYAMLFormatter(w, o.version), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func (o *Outputter) formatTo(w io.Writer, summary *lint.Summary) error {
	formatter, err := o.CreateFormatter(o.config.Format, w)
	if err != nil {
		return err
	}
	return formatter.Format(summary)
}
