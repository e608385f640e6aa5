package baseline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dotcommander/modcycle/internal/cycle"
)

// DefaultFileName is the baseline file looked up in the project root.
const DefaultFileName = ".modcyclebaseline.json"

// Baseline represents a snapshot of known cycles that should be ignored
type Baseline struct {
	Version      string   `json:"version"`
	CreatedAt    string   `json:"created_at"`
	Fingerprints []string `json:"fingerprints"`
	index        map[string]bool // For fast lookup
}

// CreateBaseline creates a new baseline from a list of fingerprints
func CreateBaseline(fingerprints []string) *Baseline {
	unique := make([]string, 0, len(fingerprints))
	index := make(map[string]bool)

	for _, fp := range fingerprints {
		if !index[fp] {
			unique = append(unique, fp)
			index[fp] = true
		}
	}

	// Sort for deterministic output
	sort.Strings(unique)

	return &Baseline{
		Version:      "1.0",
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		Fingerprints: unique,
		index:        index,
	}
}

// LoadBaseline loads a baseline from a JSON file
func LoadBaseline(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline file: %w", err)
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse baseline file: %w", err)
	}

	b.index = make(map[string]bool, len(b.Fingerprints))
	for _, fp := range b.Fingerprints {
		b.index[fp] = true
	}

	return &b, nil
}

// SaveBaseline saves the baseline to a JSON file
func (b *Baseline) SaveBaseline(path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal baseline: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write baseline file: %w", err)
	}

	return nil
}

// IsKnown checks if a fingerprint is in the baseline
func (b *Baseline) IsKnown(fp string) bool {
	if b == nil || b.index == nil {
		return false
	}
	return b.index[fp]
}

// Len returns the number of recorded fingerprints.
func (b *Baseline) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Fingerprints)
}

// Fingerprint identifies a cycle independently of where the project is
// checked out: members under root are hashed by their slash-separated
// relative path.
func Fingerprint(root string, c cycle.Cycle) string {
	rel := cycle.Cycle{Modules: make([]string, len(c.Modules))}
	for i, m := range c.Modules {
		rel.Modules[i] = relPath(root, m)
	}
	return cycle.Fingerprint(rel)
}

func relPath(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	r, err := filepath.Rel(root, path)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(r)
}
