package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/modcycle/internal/lint"
)

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	w       io.Writer
	version string
}

// NewYAMLFormatter creates a new YAMLFormatter
func NewYAMLFormatter(w io.Writer, version string) *YAMLFormatter {
	return &YAMLFormatter{w: w, version: version}
}

// Format formats the summary as YAML
func (f *YAMLFormatter) Format(summary *lint.Summary) error {
	enc := yaml.NewEncoder(f.w)
	enc.SetIndent(2)
	if err := enc.Encode(NewReport(summary, f.version)); err != nil {
		return fmt.Errorf("error encoding YAML: %w", err)
	}
	return enc.Close()
}
