package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dotcommander/modcycle/internal/lint"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	w       io.Writer
	indent  bool
	version string
}

// NewJSONFormatter creates a new JSONFormatter
func NewJSONFormatter(w io.Writer, indent bool, version string) *JSONFormatter {
	return &JSONFormatter{
		w:       w,
		indent:  indent,
		version: version,
	}
}

// Format formats the summary as JSON
func (f *JSONFormatter) Format(summary *lint.Summary) error {
	report := NewReport(summary, f.version)

	var jsonBytes []byte
	var err error

	if f.indent {
		jsonBytes, err = json.MarshalIndent(report, "", "  ")
	} else {
		jsonBytes, err = json.Marshal(report)
	}

	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	if _, err := fmt.Fprintln(f.w, string(jsonBytes)); err != nil {
		return fmt.Errorf("error writing JSON: %w", err)
	}

	return nil
}
