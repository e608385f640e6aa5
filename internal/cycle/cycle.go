package cycle

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dotcommander/modcycle/internal/refs"
)

// Edge is one resolved reference from a module to another.
type Edge struct {
	From      string
	Specifier string
	To        string
	Kind      refs.Kind
	Names     []string
	Reexport  bool
	Line      int
}

// Link is the step from Modules[i] to Modules[i+1] in a cycle. A module can
// reference its successor more than once, so a link collects every edge
// between the two.
type Link struct {
	From  string
	To    string
	Edges []Edge
}

// TypeOnly reports whether every edge of the link is erased at build time.
func (l Link) TypeOnly() bool {
	if len(l.Edges) == 0 {
		return false
	}
	for _, e := range l.Edges {
		if e.Kind != refs.KindTypeOnly {
			return false
		}
	}
	return true
}

// Names returns the named bindings carried by the link, in source order
// and without repeats.
func (l Link) Names() []string {
	var names []string
	seen := make(map[string]bool)
	for _, e := range l.Edges {
		for _, n := range e.Names {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}

// Reexport reports whether any edge of the link is an export ... from.
func (l Link) Reexport() bool {
	for _, e := range l.Edges {
		if e.Reexport {
			return true
		}
	}
	return false
}

// Cycle is a closed loop of modules. Modules[i] references
// Modules[(i+1)%len(Modules)] through Links[i]. No module repeats.
type Cycle struct {
	Modules []string
	Links   []Link
}

// Len returns the number of modules in the cycle.
func (c Cycle) Len() int {
	return len(c.Modules)
}

// Contains reports whether module is a member of the cycle.
func (c Cycle) Contains(module string) bool {
	for _, m := range c.Modules {
		if m == module {
			return true
		}
	}
	return false
}

// Canonicalize rotates the cycle to start at its lexicographically smallest
// module. Direction is preserved.
func Canonicalize(c Cycle) Cycle {
	if len(c.Modules) == 0 {
		return c
	}

	start := 0
	for i, m := range c.Modules {
		if m < c.Modules[start] {
			start = i
		}
	}

	k := len(c.Modules)
	out := Cycle{
		Modules: make([]string, k),
		Links:   make([]Link, len(c.Links)),
	}
	for i := 0; i < k; i++ {
		out.Modules[i] = c.Modules[(start+i)%k]
	}
	for i := range c.Links {
		out.Links[i] = c.Links[(start+i)%len(c.Links)]
	}
	return out
}

// Fingerprint returns a stable hash of the cycle's canonical rotation. Two
// cycles share a fingerprint exactly when they have the same members in the
// same cyclic order.
func Fingerprint(c Cycle) string {
	canonical := Canonicalize(c)
	data := strings.Join(canonical.Modules, "\n")
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Seen is a set of fingerprints already reported.
type Seen map[string]struct{}

// Add records fp and reports whether it was new.
func (s Seen) Add(fp string) bool {
	if _, ok := s[fp]; ok {
		return false
	}
	s[fp] = struct{}{}
	return true
}

// Has reports whether fp was recorded.
func (s Seen) Has(fp string) bool {
	_, ok := s[fp]
	return ok
}

// Format renders the cycle as a closed chain of base names,
// e.g. "a.ts -> b.ts -> a.ts".
func Format(c Cycle) string {
	if len(c.Modules) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, m := range c.Modules {
		sb.WriteString(filepath.Base(m))
		sb.WriteString(" -> ")
	}
	sb.WriteString(filepath.Base(c.Modules[0]))
	return sb.String()
}
