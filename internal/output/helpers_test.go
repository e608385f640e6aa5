package output

import (
	"errors"
	"time"

	"github.com/dotcommander/modcycle/internal/cycle"
	"github.com/dotcommander/modcycle/internal/lint"
	"github.com/dotcommander/modcycle/internal/refs"
	"github.com/dotcommander/modcycle/internal/strategy"
)

const testRoot = "/project"

// pairCycle is src/a.ts <-> src/b.ts with one runtime import each way
func pairCycle() cycle.Cycle {
	a, b := testRoot+"/src/a.ts", testRoot+"/src/b.ts"
	return cycle.Cycle{
		Modules: []string{a, b},
		Links: []cycle.Link{
			{From: a, To: b, Edges: []cycle.Edge{{From: a, To: b, Specifier: "./b", Kind: refs.KindStatic, Names: []string{"b"}, Line: 1}}},
			{From: b, To: a, Edges: []cycle.Edge{{From: b, To: a, Specifier: "./a", Kind: refs.KindStatic, Names: []string{"a"}, Line: 3}}},
		},
	}
}

func sampleSummary() *lint.Summary {
	c := pairCycle()
	return &lint.Summary{
		Root:          testRoot,
		ProjectType:   "typescript",
		StartTime:     time.Now(),
		Duration:      42 * time.Millisecond,
		FilesAnalyzed: 2,
		Baselined:     1,
		Findings: []lint.Finding{{
			Seed:        c.Modules[0],
			Cycle:       c,
			Fingerprint: "abc123",
			Recommendation: strategy.Recommendation{
				Strategy:   strategy.DependencyInjection,
				Dependent:  c.Modules[1],
				Dependency: c.Modules[0],
			},
		}},
		Errors: []lint.SeedError{{Seed: testRoot + "/src/bad.ts", Err: errors.New("file not found")}},
		Stats:  cycle.Stats{Visited: 2, Unresolved: 1},
	}
}

func emptySummary() *lint.Summary {
	return &lint.Summary{Root: testRoot, ProjectType: "javascript", FilesAnalyzed: 3}
}
