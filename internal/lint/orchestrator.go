package lint

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/dotcommander/modcycle/internal/baseline"
	"github.com/dotcommander/modcycle/internal/config"
	"github.com/dotcommander/modcycle/internal/discovery"
	"github.com/dotcommander/modcycle/internal/git"
)

// Reporter renders a finished summary.
type Reporter interface {
	Format(summary *Summary) error
}

// OrchestratorConfig holds configuration for the lint orchestrator.
type OrchestratorConfig struct {
	// Paths are explicit seeds. When empty, seeds are discovered under the root.
	Paths []string
	// Staged restricts seeds to files in the git staging area.
	Staged bool
	// Diff restricts seeds to uncommitted changes.
	Diff           bool
	UseBaseline    bool
	CreateBaseline bool
	BaselinePath   string
}

// Orchestrator coordinates seed selection, analysis, baselining and reporting.
type Orchestrator struct {
	cfg      *config.Config
	opts     OrchestratorConfig
	logger   *log.Logger
	reporter Reporter
}

// NewOrchestrator creates a new lint orchestrator.
func NewOrchestrator(cfg *config.Config, opts OrchestratorConfig, logger *log.Logger, reporter Reporter) *Orchestrator {
	if logger == nil {
		logger = NewLogger(cfg.Quiet, cfg.Verbose)
	}
	return &Orchestrator{
		cfg:      cfg,
		opts:     opts,
		logger:   logger,
		reporter: reporter,
	}
}

// Result holds the outcome of a lint run.
type Result struct {
	Summary *Summary
	// Failed is set when the run should exit non-zero under the fail-on policy.
	Failed bool
}

// Run executes the full workflow.
func (o *Orchestrator) Run() (*Result, error) {
	seeds, err := o.seeds()
	if err != nil {
		return nil, err
	}

	session, err := NewSession(o.cfg, o.logger)
	if err != nil {
		return nil, err
	}

	baselineFile := o.resolveBaselinePath()
	if o.opts.UseBaseline && !o.opts.CreateBaseline {
		b, err := o.loadBaseline(baselineFile)
		if err != nil {
			o.logger.Warn("failed to load baseline", "path", baselineFile, "error", err)
		}
		session.SetBaseline(b)
	}

	o.logger.Debug("analyzing", "root", o.cfg.Root, "seeds", len(seeds))
	summary := session.AnalyzeFiles(seeds)

	result := &Result{Summary: summary}

	if o.opts.CreateBaseline {
		if err := o.saveBaseline(summary.Findings, baselineFile); err != nil {
			return nil, err
		}
		// When creating baseline, exit successfully to accept current state
		return result, nil
	}

	if o.reporter != nil {
		if err := o.reporter.Format(summary); err != nil {
			return nil, fmt.Errorf("error formatting output: %w", err)
		}
	}

	if summary.Baselined > 0 {
		o.logger.Info("baseline cycles ignored", "count", summary.Baselined)
	}

	result.Failed = o.cfg.FailOn == "cycle" && summary.HasFindings()
	return result, nil
}

// seeds returns the absolute paths of the modules to analyze.
func (o *Orchestrator) seeds() ([]string, error) {
	filter := git.Filter{Extensions: o.cfg.Resolve.Extensions, Exclude: o.cfg.Exclude}

	switch {
	case len(o.opts.Paths) > 0:
		seeds := make([]string, 0, len(o.opts.Paths))
		for _, p := range o.opts.Paths {
			abs, err := discovery.ValidateFilePath(p)
			if err != nil {
				return nil, err
			}
			seeds = append(seeds, abs)
		}
		return seeds, nil
	case o.opts.Staged:
		files, err := git.GetStagedFiles(o.cfg.Root, filter)
		if err != nil {
			return nil, fmt.Errorf("error getting staged files: %w", err)
		}
		return files, nil
	case o.opts.Diff:
		files, err := git.GetChangedFiles(o.cfg.Root, filter)
		if err != nil {
			return nil, fmt.Errorf("error getting changed files: %w", err)
		}
		return files, nil
	}

	fd := discovery.NewFileDiscovery(o.cfg.Root, o.cfg.Include, o.cfg.Exclude, o.cfg.FollowSymlinks)
	files, err := fd.DiscoverFiles()
	if err != nil {
		return nil, fmt.Errorf("error discovering files: %w", err)
	}
	seeds := make([]string, 0, len(files))
	for _, f := range files {
		seeds = append(seeds, f.Path)
	}
	return seeds, nil
}

// resolveBaselinePath returns the absolute path to the baseline file.
func (o *Orchestrator) resolveBaselinePath() string {
	baselineFile := o.opts.BaselinePath
	if baselineFile == "" {
		baselineFile = baseline.DefaultFileName
	}
	if !filepath.IsAbs(baselineFile) {
		baselineFile = filepath.Join(o.cfg.Root, baselineFile)
	}
	return baselineFile
}

// loadBaseline loads the baseline file. A missing file is not an error.
func (o *Orchestrator) loadBaseline(baselineFile string) (*baseline.Baseline, error) {
	if _, err := os.Stat(baselineFile); err != nil {
		return nil, nil
	}

	return baseline.LoadBaseline(baselineFile)
}

// saveBaseline creates and saves a new baseline from the findings.
func (o *Orchestrator) saveBaseline(findings []Finding, baselineFile string) error {
	b := baseline.CreateBaseline(Fingerprints(findings))

	if err := b.SaveBaseline(baselineFile); err != nil {
		return fmt.Errorf("failed to save baseline: %w", err)
	}

	o.logger.Info("baseline created", "path", baselineFile, "cycles", b.Len())
	return nil
}
