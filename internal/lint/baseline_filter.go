package lint

import (
	"github.com/dotcommander/modcycle/internal/baseline"
)

// FilterFindings drops findings known to b, returning the remaining
// findings and the count of ignored ones.
func FilterFindings(findings []Finding, b *baseline.Baseline) ([]Finding, int) {
	if b == nil {
		return findings, 0 // No baseline, no filtering
	}

	return filterFindings(findings, b.IsKnown)
}

// filterFindings filters a slice of findings using the provided filter function.
// Returns the filtered slice and the count of ignored findings.
func filterFindings(findings []Finding, known func(string) bool) ([]Finding, int) {
	filtered := make([]Finding, 0, len(findings))
	ignored := 0
	for _, f := range findings {
		if known(f.Fingerprint) {
			ignored++
		} else {
			filtered = append(filtered, f)
		}
	}
	return filtered, ignored
}

// Fingerprints returns the fingerprint of every finding, for baseline creation.
func Fingerprints(findings []Finding) []string {
	fps := make([]string, 0, len(findings))
	for _, f := range findings {
		fps = append(fps, f.Fingerprint)
	}
	return fps
}
