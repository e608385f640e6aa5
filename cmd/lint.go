package cmd

import (
	"fmt"

	"github.com/dotcommander/modcycle/internal/config"
	"github.com/dotcommander/modcycle/internal/lint"
	"github.com/dotcommander/modcycle/internal/outputters"
)

// runLint loads configuration, analyzes the seeds and renders the report.
// It reports whether the fail-on policy was triggered.
func runLint(paths []string) (bool, error) {
	cfg, err := config.LoadConfig(rootPath)
	if err != nil {
		return false, fmt.Errorf("error loading configuration: %w", err)
	}

	logger := lint.NewLogger(cfg.Quiet, cfg.Verbose)
	reporter := outputters.NewOutputter(cfg, Version)

	opts := lint.OrchestratorConfig{
		Paths:          paths,
		Staged:         staged,
		Diff:           diff,
		UseBaseline:    useBaseline,
		CreateBaseline: createBaseline,
		BaselinePath:   baselinePath,
	}

	result, err := lint.NewOrchestrator(cfg, opts, logger, reporter).Run()
	if err != nil {
		return false, err
	}

	return result.Failed, nil
}
