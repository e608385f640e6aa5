package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/modcycle/internal/cycle"
	"github.com/dotcommander/modcycle/internal/refs"
)

// edge describes one link in a test cycle.
type edge struct {
	kind  refs.Kind
	names []string
}

func build(modules []string, edges []edge) cycle.Cycle {
	c := cycle.Cycle{Modules: modules}
	for i, m := range modules {
		next := modules[(i+1)%len(modules)]
		c.Links = append(c.Links, cycle.Link{
			From:  m,
			To:    next,
			Edges: []cycle.Edge{{From: m, To: next, Kind: edges[i].kind, Names: edges[i].names}},
		})
	}
	return c
}

func nothingExists(string) bool { return false }

var barrels = []string{"index.ts", "index.js"}

func TestSelectAuto(t *testing.T) {
	static := edge{kind: refs.KindStatic}
	typed := edge{kind: refs.KindTypeOnly}

	tests := []struct {
		name    string
		modules []string
		edges   []edge
		want    Strategy
	}{
		{
			name:    "barrel wins over everything",
			modules: []string{"/p/a.ts", "/p/index.ts"},
			edges:   []edge{typed, typed},
			want:    DirectImport,
		},
		{
			name:    "all type-only",
			modules: []string{"/p/a.ts", "/p/b.ts", "/p/c.ts"},
			edges:   []edge{typed, typed, typed},
			want:    ExtractShared,
		},
		{
			name:    "two modules with a runtime edge",
			modules: []string{"/p/a.ts", "/p/b.ts"},
			edges:   []edge{typed, static},
			want:    DependencyInjection,
		},
		{
			name:    "two modules both runtime",
			modules: []string{"/p/a.ts", "/p/b.ts"},
			edges:   []edge{static, static},
			want:    DependencyInjection,
		},
		{
			name:    "longer runtime cycle",
			modules: []string{"/p/a.ts", "/p/b.ts", "/p/c.ts"},
			edges:   []edge{static, typed, static},
			want:    ModuleSplit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Select(build(tt.modules, tt.edges), Options{Aggregators: barrels, Exists: nothingExists})
			assert.Equal(t, tt.want, rec.Strategy)
		})
	}
}

func TestSelectFixed(t *testing.T) {
	c := build([]string{"/p/a.ts", "/p/b.ts"}, []edge{{kind: refs.KindStatic}, {kind: refs.KindStatic}})

	rec := Select(c, Options{Fixed: ModuleSplit, Aggregators: barrels, Exists: nothingExists})
	assert.Equal(t, ModuleSplit, rec.Strategy)
	assert.Equal(t, "/p/a.ts", rec.SplitModule)
	assert.Equal(t, "/p/a-b.ts", rec.NewModule)

	rec = Select(c, Options{Fixed: Auto, Aggregators: barrels, Exists: nothingExists})
	assert.Equal(t, DependencyInjection, rec.Strategy)

	// pinned direct-import without a barrel has no detail to offer
	rec = Select(c, Options{Fixed: DirectImport, Aggregators: barrels})
	assert.Equal(t, DirectImport, rec.Strategy)
	assert.Empty(t, rec.Aggregator)
}

func TestSelectDirectImportDetail(t *testing.T) {
	c := build(
		[]string{"/p/a.ts", "/p/index.ts", "/p/z.ts"},
		[]edge{{kind: refs.KindStatic}, {kind: refs.KindNamespace}, {kind: refs.KindStatic}},
	)
	rec := Select(c, Options{Aggregators: barrels})

	require.Equal(t, DirectImport, rec.Strategy)
	assert.Equal(t, "/p/index.ts", rec.Aggregator)
	assert.Equal(t, "/p/z.ts", rec.Concrete)
	assert.Equal(t, []string{"/p/a.ts"}, rec.Bypass)
}

func TestSelectDependencyInjectionEndpoints(t *testing.T) {
	static := edge{kind: refs.KindStatic}
	typed := edge{kind: refs.KindTypeOnly}

	both := Select(build([]string{"/p/a.ts", "/p/b.ts"}, []edge{static, static}), Options{})
	assert.Equal(t, "/p/b.ts", both.Dependent)
	assert.Equal(t, "/p/a.ts", both.Dependency)

	// only a -> b is runtime, so that is the one to invert
	one := Select(build([]string{"/p/a.ts", "/p/b.ts"}, []edge{static, typed}), Options{})
	assert.Equal(t, "/p/a.ts", one.Dependent)
	assert.Equal(t, "/p/b.ts", one.Dependency)
}

func TestSelectModuleSplitNaming(t *testing.T) {
	c := build(
		[]string{"/p/a.ts", "/p/b.ts", "/p/c.ts"},
		[]edge{
			{kind: refs.KindStatic, names: []string{"x", "y"}},
			{kind: refs.KindStatic, names: []string{"formatDate"}},
			{kind: refs.KindStatic, names: []string{"p", "q", "r"}},
		},
	)

	semantic := Select(c, Options{Naming: Semantic, Exists: nothingExists})
	require.Equal(t, ModuleSplit, semantic.Strategy)
	assert.Equal(t, "/p/b.ts", semantic.SplitModule)
	assert.Equal(t, []string{"formatDate"}, semantic.Symbols)
	assert.Equal(t, "/p/b-format-date.ts", semantic.NewModule)

	taken := map[string]bool{"/p/b-2.ts": true, "/p/b-3.ts": true}
	numberedRec := Select(c, Options{Naming: Numbered, Exists: func(p string) bool { return taken[p] }})
	assert.Equal(t, "/p/b-4.ts", numberedRec.NewModule)
}

func TestSelectExtractSharedNaming(t *testing.T) {
	typed := edge{kind: refs.KindTypeOnly}
	c := build([]string{"/p/user.ts", "/p/userStore.ts"}, []edge{typed, typed})

	semantic := Select(c, Options{Exists: nothingExists})
	require.Equal(t, ExtractShared, semantic.Strategy)
	assert.Equal(t, "/p/user-user-store-types.ts", semantic.NewModule)

	taken := map[string]bool{"/p/shared-types.ts": true}
	numberedRec := Select(c, Options{Naming: Numbered, Exists: func(p string) bool { return taken[p] }})
	assert.Equal(t, "/p/shared-types-2.ts", numberedRec.NewModule)
}

func TestParse(t *testing.T) {
	for _, s := range Strategies {
		got, err := Parse(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, Auto, got)

	_, err = Parse("rewrite-everything")
	assert.Error(t, err)
}

func TestParseNaming(t *testing.T) {
	n, err := ParseNaming("")
	require.NoError(t, err)
	assert.Equal(t, Semantic, n)

	n, err = ParseNaming("numbered")
	require.NoError(t, err)
	assert.Equal(t, Numbered, n)

	_, err = ParseNaming("random")
	assert.Error(t, err)
}

func TestKebab(t *testing.T) {
	tests := map[string]string{
		"formatDate":   "format-date",
		"XMLParser":    "xml-parser",
		"user_service": "user-service",
		"parseV2Data":  "parse-v2-data",
		"plain":        "plain",
	}
	for in, want := range tests {
		assert.Equal(t, want, kebab(in), in)
	}
}

func TestSplitExt(t *testing.T) {
	stem, ext := splitExt("types.d.ts")
	assert.Equal(t, "types", stem)
	assert.Equal(t, ".d.ts", ext)

	stem, ext = splitExt("component.tsx")
	assert.Equal(t, "component", stem)
	assert.Equal(t, ".tsx", ext)
}
