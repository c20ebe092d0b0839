package params_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	params "github.com/kpe/go-params"
)

var baseParams = params.Declare("BaseParams").
	Field("param_a", "a").
	Field("param_b", 1).
	MustBuild()

var subParams = params.Declare("SubParams", baseParams).
	Field("param_b", 2).
	Field("param_c", "c").
	MustBuild()

func TestClass_SubclassOverridesDefaultKeepsPosition(t *testing.T) {
	assert.Equal(t, []string{"param_a", "param_b", "param_c"}, subParams.Names())
	assert.Equal(t, params.Pairs{
		{Key: "param_a", Value: "a"},
		{Key: "param_b", Value: 2},
		{Key: "param_c", Value: "c"},
	}, subParams.Defaults())

	// the parent is untouched by the subclass
	assert.Equal(t, []string{"param_a", "param_b"}, baseParams.Names())
	v, ok := baseParams.Default("param_b")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestClass_ParentFieldsAreNotSharedAcrossClasses(t *testing.T) {
	_, err := baseParams.New(params.KV("param_c", "x"))
	assert.ErrorIs(t, err, params.ErrUnknownField)

	p, err := subParams.New(params.KV("param_c", "x"))
	require.NoError(t, err)
	assert.Equal(t, "x", p.Value("param_c"))
	assert.Equal(t, 2, p.Value("param_b"))
}

func TestClass_MultipleParentsLaterWins(t *testing.T) {
	a := params.Declare("A").Field("x", 1).Field("y", 1).MustBuild()
	b := params.Declare("B").Field("y", 2).Field("z", 2).MustBuild()
	m := params.Declare("M", a, b).MustBuild()

	assert.Equal(t, []string{"x", "y", "z"}, m.Names())
	assert.Equal(t, map[string]any{"x": 1, "y": 2, "z": 2}, m.Defaults().Map())

	f, ok := m.Field("y")
	require.True(t, ok)
	assert.Same(t, b, f.Owner)
}

func TestClass_DeepHierarchyOrder(t *testing.T) {
	p1 := params.Declare("P1").Field("a", 1).Field("b", 1).MustBuild()
	p2 := params.Declare("P2").Field("c", 2).Field("d", 2).MustBuild()
	mid := params.Declare("Mid", p1, p2).Field("e", 3).Field("a", 3).MustBuild()
	p3 := params.Declare("P3").Field("f", 4).Field("g", 4).MustBuild()
	leaf := params.Declare("Leaf", mid, p3).Field("h", 5).Field("j", 5).Field("c", 5).MustBuild()

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h", "j"}, leaf.Names())
	assert.Equal(t, map[string]any{
		"a": 3, "b": 1, "c": 5, "d": 2, "e": 3, "f": 4, "g": 4, "h": 5, "j": 5,
	}, leaf.Defaults().Map())

	assert.True(t, leaf.IsSubclassOf(p1))
	assert.True(t, leaf.IsSubclassOf(leaf))
	assert.False(t, p1.IsSubclassOf(leaf))
	assert.Equal(t, []*params.Class{mid, p3}, leaf.Parents())
	assert.Len(t, leaf.Declared(), 3)
}

func TestClass_OverrideOrderFollowsInput(t *testing.T) {
	c := params.Declare("Ordered").Field("a", 0).Field("b", 0).Field("c", 0).MustBuild()
	p := c.MustNew(params.KV("c", 3), params.KV("a", 1))
	assert.Equal(t, []string{"a", "b", "c"}, p.Keys())
	assert.Equal(t, params.Pairs{{Key: "a", Value: 1}, {Key: "b", Value: 0}, {Key: "c", Value: 3}}, params.Pairs(p.Pairs()))
}

func TestClass_SchemaIsMemoized(t *testing.T) {
	c := params.Declare("Memo").Field("a", 1).MustBuild()

	const n = 32
	got := make([]*params.Schema, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = c.Schema()
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		assert.Same(t, got[0], got[i])
	}
	assert.Same(t, c, got[0].Class())
}

func TestClass_ConcurrentInstancesAreIndependent(t *testing.T) {
	c := params.Declare("Concurrent").
		Field("n", 0).
		Derived("twice", func(p *params.Params) any { return p.Value("n").(int) * 2 }).
		MustBuild()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := c.New(params.KV("n", i))
			if err != nil {
				errs <- err
				return
			}
			if got := p.Value("twice"); got != 2*i {
				errs <- fmt.Errorf("instance %d: twice = %v", i, got)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
