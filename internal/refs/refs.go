// Package refs extracts module references from JavaScript and TypeScript
// source text without parsing it.
//
// The scanner only understands the handful of syntaxes that introduce a
// dependency on another module. Everything else in the file is ignored, so
// malformed input degrades to "fewer references found" instead of an error.
package refs

import (
	"regexp"
	"sort"
	"strings"
)

// Kind classifies how a module is referenced.
type Kind int

const (
	// KindStatic is a whole-module or named reference (import {a} from, require).
	KindStatic Kind = iota
	// KindNamespace binds the whole module to one name (import * as ns, export *).
	KindNamespace
	// KindDefault binds the default export.
	KindDefault
	// KindDynamic is a lazily evaluated import() expression.
	KindDynamic
	// KindTypeOnly exists only for the type checker and is erased at build time.
	KindTypeOnly
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindNamespace:
		return "namespace"
	case KindDefault:
		return "default"
	case KindDynamic:
		return "dynamic"
	case KindTypeOnly:
		return "type-only"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name for the JSON and YAML reports.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Reference is one outgoing reference found in a module's text.
type Reference struct {
	Specifier string
	Kind      Kind
	// Names lists the imported (not local) binding names, when the syntax has them.
	Names []string
	// Reexport is set for export ... from forms.
	Reexport bool
	Line     int
}

var (
	// import [type] <clause> from '<spec>'
	importFromPattern = regexp.MustCompile(`\bimport\s+(type\s+)?([^'";]*?)\s+from\s*['"]([^'"\n]+)['"]`)

	// import '<spec>'
	sideEffectPattern = regexp.MustCompile(`\bimport\s*['"]([^'"\n]+)['"]`)

	// export [type] (* [as ns] | {...}) from '<spec>'
	exportFromPattern = regexp.MustCompile(`\bexport\s+(type\s+)?(\*(?:\s+as\s+[\w$]+)?|\{[^}]*\})\s*from\s*['"]([^'"\n]+)['"]`)

	// require('<spec>'), including import x = require('<spec>')
	requirePattern = regexp.MustCompile(`\brequire\s*\(\s*['"]([^'"\n]+)['"]\s*\)`)

	// import('<spec>')
	dynamicPattern = regexp.MustCompile(`\bimport\s*\(\s*['"]([^'"\n]+)['"]`)
)

type match struct {
	offset int
	ref    Reference
}

// Extract returns the references found in text, in source order.
func Extract(text string) []Reference {
	code, strs := scan(text)
	lines := newLineIndex(code)

	var found []match
	add := func(offset int, ref Reference) {
		if strs.contains(offset) {
			return
		}
		ref.Line = lines.lineOf(offset)
		found = append(found, match{offset: offset, ref: ref})
	}

	for _, m := range importFromPattern.FindAllStringSubmatchIndex(code, -1) {
		typeKeyword := m[2] >= 0
		clause := strings.TrimSpace(code[m[4]:m[5]])
		spec := code[m[6]:m[7]]
		kind, names := classifyImportClause(clause, typeKeyword)
		add(m[0], Reference{Specifier: spec, Kind: kind, Names: names})
	}

	for _, m := range sideEffectPattern.FindAllStringSubmatchIndex(code, -1) {
		add(m[0], Reference{Specifier: code[m[2]:m[3]], Kind: KindStatic})
	}

	for _, m := range exportFromPattern.FindAllStringSubmatchIndex(code, -1) {
		typeKeyword := m[2] >= 0
		clause := code[m[4]:m[5]]
		spec := code[m[6]:m[7]]
		var ref Reference
		if strings.HasPrefix(clause, "*") {
			ref = Reference{Specifier: spec, Kind: KindNamespace}
			if typeKeyword {
				ref.Kind = KindTypeOnly
			}
		} else {
			names, allTyped := parseBindings(clause)
			ref = Reference{Specifier: spec, Kind: KindStatic, Names: names}
			if typeKeyword || allTyped {
				ref.Kind = KindTypeOnly
			}
		}
		ref.Reexport = true
		add(m[0], ref)
	}

	for _, m := range requirePattern.FindAllStringSubmatchIndex(code, -1) {
		add(m[0], Reference{Specifier: code[m[2]:m[3]], Kind: KindStatic})
	}

	for _, m := range dynamicPattern.FindAllStringSubmatchIndex(code, -1) {
		add(m[0], Reference{Specifier: code[m[2]:m[3]], Kind: KindDynamic})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].offset < found[j].offset })

	refs := make([]Reference, 0, len(found))
	for _, f := range found {
		refs = append(refs, f.ref)
	}
	return refs
}

// classifyImportClause decides the kind of an import ... from statement
// from the text between "import" and "from".
func classifyImportClause(clause string, typeKeyword bool) (Kind, []string) {
	if typeKeyword {
		_, names := splitDefault(clause)
		return KindTypeOnly, names
	}

	if strings.HasPrefix(clause, "*") {
		return KindNamespace, nil
	}

	if strings.HasPrefix(clause, "{") {
		names, allTyped := parseBindings(clause)
		if allTyped {
			return KindTypeOnly, names
		}
		return KindStatic, names
	}

	// default binding, optionally followed by named or namespace bindings
	hasDefault, names := splitDefault(clause)
	if hasDefault {
		return KindDefault, names
	}
	return KindStatic, names
}

// splitDefault separates "d, {a, b}" or "d, * as ns" into the default
// binding flag and the named bindings.
func splitDefault(clause string) (bool, []string) {
	if strings.HasPrefix(clause, "{") {
		names, _ := parseBindings(clause)
		return false, names
	}
	if strings.HasPrefix(clause, "*") {
		return false, nil
	}
	head, rest, hasRest := strings.Cut(clause, ",")
	hasDefault := isIdentifier(strings.TrimSpace(head))
	if !hasRest {
		return hasDefault, nil
	}
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "{") {
		names, _ := parseBindings(rest)
		return hasDefault, names
	}
	return hasDefault, nil
}

// parseBindings reads "{a, b as c, type T}" and returns the imported names.
// allTyped reports whether every binding carried an inline type modifier.
func parseBindings(clause string) (names []string, allTyped bool) {
	body := strings.TrimSpace(clause)
	body = strings.TrimPrefix(body, "{")
	if i := strings.Index(body, "}"); i >= 0 {
		body = body[:i]
	}

	typed := 0
	for _, part := range strings.Split(body, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		// "type as x" imports a binding named type
		if len(fields) > 1 && fields[0] == "type" && fields[1] != "as" {
			typed++
			fields = fields[1:]
		}
		names = append(names, fields[0])
	}
	return names, len(names) > 0 && typed == len(names)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

type lineIndex []int

func newLineIndex(text string) lineIndex {
	starts := lineIndex{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineOf returns the 1-based line containing offset.
func (li lineIndex) lineOf(offset int) int {
	return sort.Search(len(li), func(i int) bool { return li[i] > offset })
}
