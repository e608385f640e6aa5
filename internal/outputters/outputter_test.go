package outputters

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/modcycle/internal/config"
	"github.com/dotcommander/modcycle/internal/lint"
	"github.com/dotcommander/modcycle/internal/output"
)

func TestNewOutputter(t *testing.T) {
	cfg := &config.Config{Root: "/test/root", Format: "console"}

	outputter := NewOutputter(cfg, "1.0.0")
	require.NotNil(t, outputter)
	assert.Same(t, cfg, outputter.config)
	assert.Equal(t, "1.0.0", outputter.version)
	assert.Equal(t, os.Stdout, outputter.stdout)
}

func TestCreateFormatter(t *testing.T) {
	tests := []struct {
		format  string
		want    any
		wantErr bool
	}{
		{"console", &output.ConsoleFormatter{}, false},
		{"json", &output.JSONFormatter{}, false},
		{"markdown", &output.MarkdownFormatter{}, false},
		{"yaml", &output.YAMLFormatter{}, false},
		{"xml", nil, true},
	}

	o := NewOutputter(&config.Config{}, "dev")
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := o.CreateFormatter(tt.format, &bytes.Buffer{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}
}

func TestFormatToWriter(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Root: "/test", Format: "json"}
	summary := &lint.Summary{Root: "/test", FilesAnalyzed: 4}

	require.NoError(t, NewOutputter(cfg, "dev").WithWriter(&buf).Format(summary))
	assert.Contains(t, buf.String(), `"files_analyzed": 4`)
}

func TestFormatToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "cycles.md")
	cfg := &config.Config{Root: "/test", Format: "markdown", Output: path}

	var stdout bytes.Buffer
	require.NoError(t, NewOutputter(cfg, "dev").WithWriter(&stdout).Format(&lint.Summary{Root: "/test"}))

	assert.Empty(t, stdout.String())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Module Cycle Report")
}

func TestFormatUnsupported(t *testing.T) {
	cfg := &config.Config{Format: "xml"}
	err := NewOutputter(cfg, "dev").WithWriter(&bytes.Buffer{}).Format(&lint.Summary{})
	assert.Error(t, err)
}
