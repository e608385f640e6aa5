package output

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dotcommander/modcycle/internal/cycle"
	"github.com/dotcommander/modcycle/internal/lint"
	"github.com/dotcommander/modcycle/internal/strategy"
)

// ToolName appears in report headers.
const ToolName = "modcycle"

// Formatter renders a summary.
type Formatter interface {
	Format(summary *lint.Summary) error
}

// Report represents the complete structured report shared by the JSON and
// YAML formatters.
type Report struct {
	Header  Header        `json:"header" yaml:"header"`
	Summary ReportSummary `json:"summary" yaml:"summary"`
	Cycles  []CycleReport `json:"cycles" yaml:"cycles"`
	Errors  []SeedReport  `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Header contains report metadata
type Header struct {
	Tool      string `json:"tool" yaml:"tool"`
	Version   string `json:"version" yaml:"version"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// ReportSummary contains summary statistics
type ReportSummary struct {
	Root          string      `json:"root" yaml:"root"`
	ProjectType   string      `json:"project_type" yaml:"project_type"`
	FilesAnalyzed int         `json:"files_analyzed" yaml:"files_analyzed"`
	Cycles        int         `json:"cycles" yaml:"cycles"`
	Baselined     int         `json:"baselined" yaml:"baselined"`
	Duration      string      `json:"duration" yaml:"duration"`
	Stats         cycle.Stats `json:"stats" yaml:"stats"`
}

// CycleReport is one finding with root-relative paths.
type CycleReport struct {
	Fingerprint    string                  `json:"fingerprint" yaml:"fingerprint"`
	Seed           string                  `json:"seed" yaml:"seed"`
	Modules        []string                `json:"modules" yaml:"modules"`
	Chain          string                  `json:"chain" yaml:"chain"`
	TypeOnly       bool                    `json:"type_only" yaml:"type_only"`
	Recommendation strategy.Recommendation `json:"recommendation" yaml:"recommendation"`
	Message        string                  `json:"message" yaml:"message"`
}

// SeedReport is a seed that could not be analyzed.
type SeedReport struct {
	Seed  string `json:"seed" yaml:"seed"`
	Error string `json:"error" yaml:"error"`
}

// NewReport converts summary into its structured form.
func NewReport(summary *lint.Summary, version string) Report {
	root := summary.Root
	report := Report{
		Header: Header{
			Tool:      ToolName,
			Version:   version,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Summary: ReportSummary{
			Root:          root,
			ProjectType:   summary.ProjectType,
			FilesAnalyzed: summary.FilesAnalyzed,
			Cycles:        len(summary.Findings),
			Baselined:     summary.Baselined,
			Duration:      summary.Duration.Round(time.Millisecond).String(),
			Stats:         summary.Stats,
		},
		Cycles: make([]CycleReport, 0, len(summary.Findings)),
	}

	for _, f := range summary.Findings {
		modules := make([]string, len(f.Cycle.Modules))
		for i, m := range f.Cycle.Modules {
			modules[i] = rel(root, m)
		}
		report.Cycles = append(report.Cycles, CycleReport{
			Fingerprint:    f.Fingerprint,
			Seed:           rel(root, f.Seed),
			Modules:        modules,
			Chain:          Chain(root, f.Cycle),
			TypeOnly:       typeOnly(f.Cycle),
			Recommendation: relRecommendation(root, f.Recommendation),
			Message:        Message(root, f.Recommendation),
		})
	}

	for _, e := range summary.Errors {
		report.Errors = append(report.Errors, SeedReport{Seed: rel(root, e.Seed), Error: e.Err.Error()})
	}

	return report
}

// Chain renders the cycle as root-relative paths closed on the first
// module, e.g. "src/a.ts -> src/b.ts -> src/a.ts".
func Chain(root string, c cycle.Cycle) string {
	if len(c.Modules) == 0 {
		return ""
	}
	parts := make([]string, 0, len(c.Modules)+1)
	for _, m := range c.Modules {
		parts = append(parts, rel(root, m))
	}
	parts = append(parts, rel(root, c.Modules[0]))
	return strings.Join(parts, " -> ")
}

// Message is the remediation text for rec.
func Message(root string, rec strategy.Recommendation) string {
	switch rec.Strategy {
	case strategy.DirectImport:
		if rec.Aggregator == "" {
			return "import the concrete module directly instead of through the barrel file"
		}
		return fmt.Sprintf("%s imports through barrel %s; import %s directly instead",
			joinRel(root, rec.Bypass), rel(root, rec.Aggregator), rel(root, rec.Concrete))
	case strategy.ExtractShared:
		if rec.NewModule == "" {
			return "move the shared type definitions into a new module with no imports"
		}
		return fmt.Sprintf("every reference in this cycle is type-only; move the shared types into %s, a module with no imports",
			rel(root, rec.NewModule))
	case strategy.DependencyInjection:
		if rec.Dependent == "" {
			return "invert one side of the dependency by passing it in as a parameter or interface"
		}
		return fmt.Sprintf("%s should stop importing %s; pass that dependency in as a parameter or interface",
			rel(root, rec.Dependent), rel(root, rec.Dependency))
	case strategy.ModuleSplit:
		if rec.SplitModule == "" {
			return "split one module so the dependency flows in one direction"
		}
		what := "the code its successor depends on"
		if len(rec.Symbols) > 0 {
			what = strings.Join(rec.Symbols, ", ")
		}
		return fmt.Sprintf("split %s: move %s into %s so the dependency flows in one direction",
			rel(root, rec.SplitModule), what, rel(root, rec.NewModule))
	default:
		return string(rec.Strategy)
	}
}

// relRecommendation rewrites every path in rec relative to root.
func relRecommendation(root string, rec strategy.Recommendation) strategy.Recommendation {
	out := rec
	out.Aggregator = relOrEmpty(root, rec.Aggregator)
	out.Concrete = relOrEmpty(root, rec.Concrete)
	out.Dependent = relOrEmpty(root, rec.Dependent)
	out.Dependency = relOrEmpty(root, rec.Dependency)
	out.SplitModule = relOrEmpty(root, rec.SplitModule)
	out.NewModule = relOrEmpty(root, rec.NewModule)
	if len(rec.Bypass) > 0 {
		out.Bypass = make([]string, len(rec.Bypass))
		for i, b := range rec.Bypass {
			out.Bypass[i] = rel(root, b)
		}
	}
	return out
}

func typeOnly(c cycle.Cycle) bool {
	if len(c.Links) == 0 {
		return false
	}
	for _, l := range c.Links {
		if !l.TypeOnly() {
			return false
		}
	}
	return true
}

func joinRel(root string, paths []string) string {
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = rel(root, p)
	}
	return strings.Join(parts, ", ")
}

func relOrEmpty(root, path string) string {
	if path == "" {
		return ""
	}
	return rel(root, path)
}

// rel returns path relative to root with forward slashes, or path itself
// when it lies outside root.
func rel(root, path string) string {
	if root == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	r, err := filepath.Rel(root, path)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(r)
}
