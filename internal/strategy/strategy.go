// Package strategy recommends how to break a dependency cycle.
package strategy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dotcommander/modcycle/internal/cycle"
)

// Strategy names a remediation approach.
type Strategy string

const (
	// Auto selects a strategy from the cycle's structure.
	Auto Strategy = "auto"
	// ModuleSplit moves one participant's cycle-forming code into a new file.
	ModuleSplit Strategy = "module-split"
	// DirectImport bypasses a barrel and imports the concrete module.
	DirectImport Strategy = "direct-import"
	// ExtractShared moves shared type definitions into a dependency-free module.
	ExtractShared Strategy = "extract-shared"
	// DependencyInjection inverts one side of a two-module cycle.
	DependencyInjection Strategy = "dependency-injection"
)

// Strategies lists every value accepted in configuration.
var Strategies = []Strategy{Auto, ModuleSplit, DirectImport, ExtractShared, DependencyInjection}

// Parse converts a configuration string to a Strategy. Empty means Auto.
func Parse(s string) (Strategy, error) {
	if s == "" {
		return Auto, nil
	}
	for _, st := range Strategies {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid strategy %q: must be one of auto, module-split, direct-import, extract-shared, dependency-injection", s)
}

// Naming is the convention for generated module names.
type Naming string

const (
	// Semantic derives the name from what is being moved.
	Semantic Naming = "semantic"
	// Numbered appends the next free number.
	Numbered Naming = "numbered"
)

// ParseNaming converts a configuration string to a Naming. Empty means Semantic.
func ParseNaming(s string) (Naming, error) {
	switch Naming(s) {
	case "", Semantic:
		return Semantic, nil
	case Numbered:
		return Numbered, nil
	default:
		return "", fmt.Errorf("invalid naming %q: must be 'semantic' or 'numbered'", s)
	}
}

// Options configures Select.
type Options struct {
	// Fixed pins the result. Empty or Auto enables auto-selection.
	Fixed  Strategy
	Naming Naming
	// Aggregators are base names of barrel modules, e.g. index.ts.
	Aggregators []string
	// Exists reports whether a path is taken. Defaults to checking the file system.
	Exists func(string) bool
}

// Recommendation is the chosen strategy plus the structural detail needed
// to describe the fix.
type Recommendation struct {
	Strategy Strategy `json:"strategy" yaml:"strategy"`

	// direct-import
	Aggregator string   `json:"aggregator,omitempty" yaml:"aggregator,omitempty"`
	Concrete   string   `json:"concrete,omitempty" yaml:"concrete,omitempty"`
	Bypass     []string `json:"bypass,omitempty" yaml:"bypass,omitempty"`

	// dependency-injection: Dependent stops importing Dependency.
	Dependent  string `json:"dependent,omitempty" yaml:"dependent,omitempty"`
	Dependency string `json:"dependency,omitempty" yaml:"dependency,omitempty"`

	// module-split
	SplitModule string   `json:"splitModule,omitempty" yaml:"splitModule,omitempty"`
	Symbols     []string `json:"symbols,omitempty" yaml:"symbols,omitempty"`

	// module-split and extract-shared
	NewModule string `json:"newModule,omitempty" yaml:"newModule,omitempty"`
}

// Select recommends a strategy for c. The auto decision order is fixed:
// barrel first, then all-type-only, then two-module, then split.
func Select(c cycle.Cycle, opts Options) Recommendation {
	if opts.Exists == nil {
		opts.Exists = fileExists
	}

	var st Strategy
	switch {
	case opts.Fixed != "" && opts.Fixed != Auto:
		st = opts.Fixed
	case aggregatorIndex(c, opts.Aggregators) >= 0:
		st = DirectImport
	case allTypeOnly(c):
		st = ExtractShared
	case c.Len() == 2:
		st = DependencyInjection
	default:
		st = ModuleSplit
	}

	return detail(st, c, opts)
}

func detail(st Strategy, c cycle.Cycle, opts Options) Recommendation {
	rec := Recommendation{Strategy: st}

	switch st {
	case DirectImport:
		i := aggregatorIndex(c, opts.Aggregators)
		if i < 0 {
			break
		}
		rec.Aggregator = c.Modules[i]
		rec.Concrete = c.Modules[(i+1)%c.Len()]
		for _, l := range c.Links {
			if l.To == rec.Aggregator {
				rec.Bypass = append(rec.Bypass, l.From)
			}
		}
	case ExtractShared:
		rec.NewModule = sharedModuleName(c, opts)
	case DependencyInjection:
		if l, ok := invertedLink(c); ok {
			rec.Dependent = l.From
			rec.Dependency = l.To
		}
	case ModuleSplit:
		if i := splitIndex(c); i >= 0 {
			l := c.Links[i]
			rec.SplitModule = l.From
			rec.Symbols = l.Names()
			rec.NewModule = splitModuleName(l, opts)
		}
	}

	return rec
}

func aggregatorIndex(c cycle.Cycle, aggregators []string) int {
	for i, m := range c.Modules {
		base := filepath.Base(m)
		for _, a := range aggregators {
			if base == a {
				return i
			}
		}
	}
	return -1
}

func allTypeOnly(c cycle.Cycle) bool {
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

// invertedLink picks the link to invert: the last runtime link, scanning
// back from the one that closes the loop. For a two-module cycle where both
// sides are runtime this is Modules[1] -> Modules[0].
func invertedLink(c cycle.Cycle) (cycle.Link, bool) {
	if len(c.Links) == 0 {
		return cycle.Link{}, false
	}
	for i := len(c.Links) - 1; i >= 0; i-- {
		if !c.Links[i].TypeOnly() {
			return c.Links[i], true
		}
	}
	return c.Links[len(c.Links)-1], true
}

// splitIndex picks the participant whose outgoing link binds the fewest
// names. Whole-module bindings count as one. Ties keep canonical order.
func splitIndex(c cycle.Cycle) int {
	best, bestWeight := -1, 0
	for i, l := range c.Links {
		weight := 0
		for _, e := range l.Edges {
			if len(e.Names) == 0 {
				weight++
			} else {
				weight += len(e.Names)
			}
		}
		if best < 0 || weight < bestWeight {
			best, bestWeight = i, weight
		}
	}
	return best
}

func splitModuleName(l cycle.Link, opts Options) string {
	dir := filepath.Dir(l.From)
	stem, ext := splitExt(filepath.Base(l.From))

	if opts.Naming == Numbered {
		return numbered(dir, stem, ext, 2, opts.Exists)
	}

	suffix := ""
	if names := l.Names(); len(names) > 0 {
		suffix = kebab(names[0])
	} else {
		suffix, _ = splitExt(filepath.Base(l.To))
		suffix = kebab(suffix)
	}
	return filepath.Join(dir, stem+"-"+suffix+ext)
}

func sharedModuleName(c cycle.Cycle, opts Options) string {
	if c.Len() == 0 {
		return ""
	}
	dir := filepath.Dir(c.Modules[0])
	_, ext := splitExt(filepath.Base(c.Modules[0]))

	if opts.Naming == Numbered {
		return numbered(dir, "shared-types", ext, 1, opts.Exists)
	}

	var stems []string
	for _, m := range c.Modules {
		if len(stems) == 3 {
			break
		}
		stem, _ := splitExt(filepath.Base(m))
		stems = append(stems, kebab(stem))
	}
	return filepath.Join(dir, strings.Join(stems, "-")+"-types"+ext)
}

// numbered returns dir/stem-N+ext for the smallest free N >= start. A start
// of 1 tries the bare stem first.
func numbered(dir, stem, ext string, start int, exists func(string) bool) string {
	if start <= 1 {
		candidate := filepath.Join(dir, stem+ext)
		if !exists(candidate) {
			return candidate
		}
		start = 2
	}
	for n := start; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, n, ext))
		if !exists(candidate) {
			return candidate
		}
	}
}

// splitExt separates a base name into stem and extension, treating the
// TypeScript declaration suffix as one extension.
func splitExt(base string) (string, string) {
	if strings.HasSuffix(base, ".d.ts") {
		return strings.TrimSuffix(base, ".d.ts"), ".d.ts"
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}

// kebab converts camelCase, PascalCase and snake_case to kebab-case.
func kebab(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	for i, r := range runes {
		switch {
		case r == '_' || r == '.' || r == ' ':
			sb.WriteRune('-')
			continue
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					sb.WriteRune('-')
				}
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
