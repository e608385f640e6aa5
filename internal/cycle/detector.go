// Package cycle finds module dependency cycles reachable from a seed module.
//
// Each DetectCycles call walks the reference graph on demand, depth-first,
// starting at one seed. Visit state and the duplicate filter belong to that
// call alone, so separate seeds never influence each other's results.
package cycle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/dotcommander/modcycle/internal/refs"
	"github.com/dotcommander/modcycle/internal/resolve"
)

// Resolver maps a specifier written in module from to a canonical path.
type Resolver interface {
	Resolve(specifier, from string) (string, error)
}

// Options controls a traversal.
type Options struct {
	// MaxDepth bounds how many references away from the seed the walk may go.
	// Zero never leaves the seed.
	MaxDepth int
	// ReportAll keeps walking after the first cycle.
	ReportAll bool
	// Ignore holds doublestar globs. Matching modules are never entered and
	// never appear in a cycle.
	Ignore []string
	// Root anchors Ignore patterns. Paths outside Root are matched absolute.
	Root string
}

// Stats counts what a traversal skipped. None of these are failures.
type Stats struct {
	Visited      int `json:"visited" yaml:"visited"`
	Truncated    int `json:"truncated" yaml:"truncated"`
	Unresolved   int `json:"unresolved" yaml:"unresolved"`
	ReadFailures int `json:"readFailures" yaml:"readFailures"`
	Dynamic      int `json:"dynamic" yaml:"dynamic"`
	Ignored      int `json:"ignored" yaml:"ignored"`
	Duplicates   int `json:"duplicates" yaml:"duplicates"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Visited += other.Visited
	s.Truncated += other.Truncated
	s.Unresolved += other.Unresolved
	s.ReadFailures += other.ReadFailures
	s.Dynamic += other.Dynamic
	s.Ignored += other.Ignored
	s.Duplicates += other.Duplicates
}

// Result is the outcome of one traversal.
type Result struct {
	Seed   string
	Cycles []Cycle
	Stats  Stats
}

// Detector finds cycles. It holds configuration only; all traversal state is
// created per call.
type Detector struct {
	opts     Options
	resolver Resolver
	logger   *log.Logger

	// ReadFile loads module text. Defaults to os.ReadFile.
	ReadFile func(string) ([]byte, error)
}

// NewDetector validates opts and returns a Detector. A nil logger discards
// diagnostics.
func NewDetector(resolver Resolver, opts Options, logger *log.Logger) (*Detector, error) {
	if resolver == nil {
		return nil, errors.New("detector requires a resolver")
	}
	if opts.MaxDepth < 0 {
		return nil, fmt.Errorf("maxDepth must not be negative, got %d", opts.MaxDepth)
	}
	for _, pattern := range opts.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Detector{
		opts:     opts,
		resolver: resolver,
		logger:   logger,
		ReadFile: os.ReadFile,
	}, nil
}

// DetectCycles walks from seed and returns the canonical cycles found: the
// first one, or every distinct one when ReportAll is set.
func (d *Detector) DetectCycles(seed string) ([]Cycle, error) {
	res, err := d.Run(seed, nil, nil)
	if err != nil {
		return nil, err
	}
	return res.Cycles, nil
}

// Run walks from seed. When text is non-nil it is used as the seed's
// contents instead of reading the file, since callers often hold it already.
//
// known marks cycles the caller has already reported. They are still
// returned, but they never end a walk that stops at its first cycle, so a
// new cycle behind a known one is still found. known may be nil.
func (d *Detector) Run(seed string, text []byte, known func(Cycle) bool) (Result, error) {
	canonical, err := resolve.Canonical(seed)
	if err != nil {
		return Result{}, fmt.Errorf("invalid seed %q: %w", seed, err)
	}

	w := &walk{
		d:        d,
		seed:     canonical,
		seedText: text,
		known:    known,
		state:    make(map[string]visitState),
		position: make(map[string]int),
		edges:    make(map[string][]Edge),
		seen:     make(Seen),
	}

	if d.Ignored(canonical) {
		w.stats.Ignored++
		return Result{Seed: canonical, Stats: w.stats}, nil
	}

	w.visit(canonical)
	return Result{Seed: canonical, Cycles: w.cycles, Stats: w.stats}, nil
}

// Ignored reports whether module matches an ignore pattern.
func (d *Detector) Ignored(module string) bool {
	if len(d.opts.Ignore) == 0 {
		return false
	}

	target := filepath.ToSlash(module)
	if d.opts.Root != "" {
		if rel, err := filepath.Rel(d.opts.Root, module); err == nil && !strings.HasPrefix(rel, "..") {
			target = filepath.ToSlash(rel)
		}
	}

	for _, pattern := range d.opts.Ignore {
		if ok, err := doublestar.Match(pattern, target); err == nil && ok {
			return true
		}
	}
	return false
}

type visitState int

const (
	unvisited visitState = iota
	inProgress
	done
)

// walk is the state of a single traversal.
type walk struct {
	d        *Detector
	seed     string
	seedText []byte
	known    func(Cycle) bool

	state    map[string]visitState
	path     []string
	position map[string]int
	// edges keeps the traversable edges of every module on the stack, for
	// building links when a cycle closes.
	edges map[string][]Edge

	seen   Seen
	cycles []Cycle
	stats  Stats
}

// visit explores module and reports whether the walk should stop.
func (w *walk) visit(module string) (stop bool) {
	w.state[module] = inProgress
	w.position[module] = len(w.path)
	w.path = append(w.path, module)
	w.stats.Visited++

	edges := w.edgesOf(module)
	w.edges[module] = edges

	for _, e := range edges {
		switch w.state[e.To] {
		case inProgress:
			if e.To == module {
				continue
			}
			if w.record(w.extract(e.To)) && !w.d.opts.ReportAll {
				stop = true
			}
		case unvisited:
			if len(w.path) > w.d.opts.MaxDepth {
				w.stats.Truncated++
				w.d.logger.Debug("depth limit reached", "module", module, "target", e.To, "maxDepth", w.d.opts.MaxDepth)
				continue
			}
			stop = w.visit(e.To)
		}
		if stop {
			break
		}
	}

	w.state[module] = done
	w.path = w.path[:len(w.path)-1]
	delete(w.position, module)
	return stop
}

// edgesOf reads and resolves the references of module, dropping every edge
// that cannot take part in a build-time cycle.
func (w *walk) edgesOf(module string) []Edge {
	text := w.seedText
	if module != w.seed || text == nil {
		data, err := w.d.ReadFile(module)
		if err != nil {
			w.stats.ReadFailures++
			w.d.logger.Debug("cannot read module", "module", module, "error", err)
			return nil
		}
		text = data
	}

	var edges []Edge
	for _, ref := range refs.Extract(string(text)) {
		if ref.Kind == refs.KindDynamic {
			w.stats.Dynamic++
			continue
		}

		target, err := w.d.resolver.Resolve(ref.Specifier, module)
		if err != nil {
			if errors.Is(err, resolve.ErrReadFailure) {
				w.stats.ReadFailures++
			} else {
				w.stats.Unresolved++
			}
			w.d.logger.Debug("dropping reference", "module", module, "specifier", ref.Specifier, "error", err)
			continue
		}

		if w.d.Ignored(target) {
			w.stats.Ignored++
			continue
		}

		edges = append(edges, Edge{
			From:      module,
			Specifier: ref.Specifier,
			To:        target,
			Kind:      ref.Kind,
			Names:     ref.Names,
			Reexport:  ref.Reexport,
			Line:      ref.Line,
		})
	}
	return edges
}

// extract returns the minimal loop closed by an edge back to target: the
// stack from target's position to the top.
func (w *walk) extract(target string) Cycle {
	start := w.position[target]
	modules := make([]string, len(w.path)-start)
	copy(modules, w.path[start:])

	links := make([]Link, len(modules))
	for i, from := range modules {
		to := modules[(i+1)%len(modules)]
		link := Link{From: from, To: to}
		for _, e := range w.edges[from] {
			if e.To == to {
				link.Edges = append(link.Edges, e)
			}
		}
		links[i] = link
	}

	return Cycle{Modules: modules, Links: links}
}

// record canonicalizes c and keeps it unless an equivalent cycle was already
// seen in this walk. It reports whether c is new to the caller as well.
func (w *walk) record(c Cycle) bool {
	if c.Len() < 2 {
		return false
	}
	c = Canonicalize(c)
	if !w.seen.Add(Fingerprint(c)) {
		w.stats.Duplicates++
		return false
	}
	w.d.logger.Debug("cycle found", "seed", w.seed, "cycle", Format(c))
	w.cycles = append(w.cycles, c)
	return w.known == nil || !w.known(c)
}
