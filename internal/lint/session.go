// Package lint runs cycle detection over a set of seed modules and turns
// the cycles found into findings.
package lint

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dotcommander/modcycle/internal/baseline"
	"github.com/dotcommander/modcycle/internal/config"
	"github.com/dotcommander/modcycle/internal/cycle"
	"github.com/dotcommander/modcycle/internal/project"
	"github.com/dotcommander/modcycle/internal/resolve"
	"github.com/dotcommander/modcycle/internal/strategy"
)

// Finding is one distinct cycle with its remediation.
type Finding struct {
	// Seed is the module whose traversal first reached the cycle.
	Seed           string
	Cycle          cycle.Cycle
	Fingerprint    string
	Recommendation strategy.Recommendation
}

// SeedError records a seed that could not be analyzed.
type SeedError struct {
	Seed string
	Err  error
}

// Summary is the outcome of a session.
type Summary struct {
	Root          string
	ProjectType   string
	StartTime     time.Time
	Duration      time.Duration
	FilesAnalyzed int
	Findings      []Finding
	// Baselined counts findings suppressed by the baseline.
	Baselined int
	Errors    []SeedError
	Stats     cycle.Stats
}

// HasFindings reports whether any cycle survived filtering.
func (s *Summary) HasFindings() bool {
	return len(s.Findings) > 0
}

// Session analyzes seeds against one configuration. The resolver cache and
// the duplicate filter span every seed of the session, so a loop reachable
// from several seeds is reported once.
type Session struct {
	cfg      *config.Config
	logger   *log.Logger
	resolver *resolve.Resolver
	detector *cycle.Detector
	strategy strategy.Options

	seen      cycle.Seen
	baseline  *baseline.Baseline
	baselined int
	stats     cycle.Stats
}

// NewSession builds the resolver and detector for cfg. cfg must have passed
// config.Validate.
func NewSession(cfg *config.Config, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = NewLogger(true, false)
	}

	resolver, err := resolve.New(cfg.ResolverOptions())
	if err != nil {
		return nil, fmt.Errorf("error creating resolver: %w", err)
	}

	detector, err := cycle.NewDetector(resolver, cfg.DetectorOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("error creating detector: %w", err)
	}

	return &Session{
		cfg:      cfg,
		logger:   logger,
		resolver: resolver,
		detector: detector,
		strategy: cfg.StrategyOptions(),
		seen:     make(cycle.Seen),
	}, nil
}

// Detector exposes the session's detector so tests can stub file reads.
func (s *Session) Detector() *cycle.Detector {
	return s.detector
}

// SetBaseline suppresses findings whose fingerprint b already knows.
func (s *Session) SetBaseline(b *baseline.Baseline) {
	s.baseline = b
}

// AnalyzeFile runs one seed and returns the findings not yet reported in
// this session.
func (s *Session) AnalyzeFile(path string) ([]Finding, error) {
	return s.analyze(path, nil)
}

// AnalyzeText is AnalyzeFile for a seed whose contents the caller already holds.
func (s *Session) AnalyzeText(path string, text []byte) ([]Finding, error) {
	if text == nil {
		text = []byte{}
	}
	return s.analyze(path, text)
}

func (s *Session) analyze(path string, text []byte) ([]Finding, error) {
	res, err := s.detector.Run(path, text, s.known)
	if err != nil {
		return nil, err
	}
	s.stats.Add(res.Stats)

	var findings []Finding
	for _, c := range res.Cycles {
		fp := baseline.Fingerprint(s.cfg.Root, c)
		if !s.seen.Add(fp) {
			s.stats.Duplicates++
			continue
		}
		findings = append(findings, Finding{
			Seed:           res.Seed,
			Cycle:          c,
			Fingerprint:    fp,
			Recommendation: strategy.Select(c, s.strategy),
		})
	}

	findings, ignored := FilterFindings(findings, s.baseline)
	s.baselined += ignored

	for _, f := range findings {
		s.logger.Debug("finding", "cycle", cycle.Format(f.Cycle), "strategy", f.Recommendation.Strategy)
	}
	return findings, nil
}

// known reports whether c was already reported in this session or is
// recorded in the baseline.
func (s *Session) known(c cycle.Cycle) bool {
	fp := baseline.Fingerprint(s.cfg.Root, c)
	return s.seen.Has(fp) || s.baseline.IsKnown(fp)
}

// AnalyzeFiles runs every seed in order. A seed that fails is recorded in
// the summary and does not stop the others.
func (s *Session) AnalyzeFiles(paths []string) *Summary {
	info := project.Detect(s.cfg.Root)
	summary := &Summary{
		Root:        s.cfg.Root,
		ProjectType: info.Type,
		StartTime:   time.Now(),
	}

	for _, path := range paths {
		findings, err := s.AnalyzeFile(path)
		if err != nil {
			s.logger.Warn("skipping seed", "seed", path, "error", err)
			summary.Errors = append(summary.Errors, SeedError{Seed: path, Err: err})
			continue
		}
		summary.FilesAnalyzed++
		summary.Findings = append(summary.Findings, findings...)
	}

	summary.Duration = time.Since(summary.StartTime)
	summary.Baselined = s.baselined
	summary.Stats = s.stats
	return summary
}
