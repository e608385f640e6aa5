package cycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotcommander/modcycle/internal/refs"
)

func loop(modules ...string) Cycle {
	c := Cycle{Modules: modules}
	for i, m := range modules {
		next := modules[(i+1)%len(modules)]
		c.Links = append(c.Links, Link{
			From:  m,
			To:    next,
			Edges: []Edge{{From: m, To: next, Kind: refs.KindStatic}},
		})
	}
	return c
}

func TestCanonicalize(t *testing.T) {
	c := Canonicalize(loop("/p/c.ts", "/p/a.ts", "/p/b.ts"))

	assert.Equal(t, []string{"/p/a.ts", "/p/b.ts", "/p/c.ts"}, c.Modules)
	for i, l := range c.Links {
		assert.Equal(t, c.Modules[i], l.From)
		assert.Equal(t, c.Modules[(i+1)%c.Len()], l.To)
	}
}

func TestCanonicalizeKeepsDirection(t *testing.T) {
	c := Canonicalize(loop("/p/c.ts", "/p/b.ts", "/p/a.ts"))
	assert.Equal(t, []string{"/p/a.ts", "/p/c.ts", "/p/b.ts"}, c.Modules)
}

func TestFingerprint(t *testing.T) {
	abc := Fingerprint(loop("/p/a.ts", "/p/b.ts", "/p/c.ts"))

	assert.Equal(t, abc, Fingerprint(loop("/p/b.ts", "/p/c.ts", "/p/a.ts")), "rotation")
	assert.Equal(t, abc, Fingerprint(loop("/p/c.ts", "/p/a.ts", "/p/b.ts")), "rotation")
	assert.NotEqual(t, abc, Fingerprint(loop("/p/a.ts", "/p/c.ts", "/p/b.ts")), "reverse order is a different cycle")
	assert.NotEqual(t, abc, Fingerprint(loop("/p/a.ts", "/p/b.ts")), "different members")
	assert.Len(t, abc, 64)
}

func TestSeen(t *testing.T) {
	s := make(Seen)
	assert.True(t, s.Add("x"))
	assert.False(t, s.Add("x"))
	assert.True(t, s.Has("x"))
	assert.False(t, s.Has("y"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "a.ts -> b.ts -> a.ts", Format(loop("/p/a.ts", "/q/b.ts")))
	assert.Equal(t, "", Format(Cycle{}))
}

func TestLinkTypeOnly(t *testing.T) {
	typed := Link{Edges: []Edge{{Kind: refs.KindTypeOnly}, {Kind: refs.KindTypeOnly}}}
	mixed := Link{Edges: []Edge{{Kind: refs.KindTypeOnly}, {Kind: refs.KindDefault}}}

	assert.True(t, typed.TypeOnly())
	assert.False(t, mixed.TypeOnly())
	assert.False(t, Link{}.TypeOnly())
}

func TestLinkNames(t *testing.T) {
	l := Link{Edges: []Edge{
		{Names: []string{"a", "b"}},
		{Names: []string{"b", "c"}},
		{Reexport: true},
	}}
	assert.Equal(t, []string{"a", "b", "c"}, l.Names())
	assert.True(t, l.Reexport())
}
