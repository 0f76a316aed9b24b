package ecsworld_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pkg.ecscore.dev/ecscore/component"
	"pkg.ecscore.dev/ecscore/ecsworld"
	"pkg.ecscore.dev/ecscore/entitypool"
	"pkg.ecscore.dev/ecscore/query"
	"pkg.ecscore.dev/ecscore/storage"
)

func newTagWorld(t *testing.T, capacity int, names ...string) (*ecsworld.World, []*component.Descriptor) {
	t.Helper()
	descs := make([]*component.Descriptor, len(names))
	for i, name := range names {
		d, err := component.New(component.Spec{Name: name})
		require.NoError(t, err)
		descs[i] = d
	}
	w, err := ecsworld.New(capacity, descs)
	require.NoError(t, err)
	require.NoError(t, w.Init())
	return w, descs
}

// Scenario 1: empty query never matches.
func TestScenarioEmptyQueryNeverMatches(t *testing.T) {
	w, descs := newTagWorld(t, 8, "A", "B")
	a := descs[0]

	e0, err := w.Entities().Create()
	require.NoError(t, err)
	require.Equal(t, 0, e0)

	pred, err := query.New([]*component.Descriptor{a}, nil, nil)
	require.NoError(t, err)
	entities, err := w.Entities().Query(pred)
	require.NoError(t, err)
	require.Empty(t, entities)
}

// Scenario 2: add moves to new archetype; entered clears after refresh.
func TestScenarioAddMovesToNewArchetype(t *testing.T) {
	w, descs := newTagWorld(t, 8, "A", "B")
	a := descs[0]

	e0, err := w.Entities().Create()
	require.NoError(t, err)

	root, err := w.Archetypes().GetEntityArchetype(e0)
	require.NoError(t, err)

	_, err = w.Components().AddToEntity(e0, a, nil)
	require.NoError(t, err)

	moved, err := w.Archetypes().GetEntityArchetype(e0)
	require.NoError(t, err)
	require.NotEqual(t, root.ID(), moved.ID())

	pred, err := query.New([]*component.Descriptor{a}, nil, nil)
	require.NoError(t, err)
	entities, err := w.Entities().Query(pred)
	require.NoError(t, err)
	require.Equal(t, []int{0}, entities)

	// AddToEntity's own triggered refresh (spec.md §4.6) already clears
	// entered/exited by the time it returns — see
	// archetype.TestRefreshClearsDeltasUnconditionally for that window at
	// the layer where it is actually observable.
	inst, err := w.Register(pred)
	require.NoError(t, err)
	require.Empty(t, w.Archetypes().QueryEntered(inst))
}

// Scenario 3: any/none semantics.
func TestScenarioAnyNoneSemantics(t *testing.T) {
	w, descs := newTagWorld(t, 8, "A", "B", "C")
	a, b, c := descs[0], descs[1], descs[2]

	for i := 0; i < 4; i++ {
		id, err := w.Entities().Create()
		require.NoError(t, err)
		require.Equal(t, i, id)
	}
	_, err := w.Components().AddToEntity(0, a, nil)
	require.NoError(t, err)
	_, err = w.Components().AddToEntity(1, a, nil)
	require.NoError(t, err)
	_, err = w.Components().AddToEntity(1, b, nil)
	require.NoError(t, err)
	_, err = w.Components().AddToEntity(2, c, nil)
	require.NoError(t, err)
	_, err = w.Components().AddToEntity(3, a, nil)
	require.NoError(t, err)
	_, err = w.Components().AddToEntity(3, c, nil)
	require.NoError(t, err)

	p1, err := query.New([]*component.Descriptor{a}, []*component.Descriptor{b, c}, nil)
	require.NoError(t, err)
	r1, err := w.Entities().Query(p1)
	require.NoError(t, err)
	require.ElementsMatch(t, []int{1, 3}, r1)

	p2, err := query.New([]*component.Descriptor{a}, nil, []*component.Descriptor{c})
	require.NoError(t, err)
	r2, err := w.Entities().Query(p2)
	require.NoError(t, err)
	require.ElementsMatch(t, []int{0, 1}, r2)

	p3, err := query.New(nil, []*component.Descriptor{b, c}, nil)
	require.NoError(t, err)
	r3, err := w.Entities().Query(p3)
	require.NoError(t, err)
	require.ElementsMatch(t, []int{1, 2, 3}, r3)
}

// Scenario 4: change tracking honors value equality.
func TestScenarioChangeTrackingHonorsEquality(t *testing.T) {
	posDesc, err := component.New(component.Spec{
		Name: "Pos",
		Schema: map[string]component.ElementType{
			"x": component.F32,
			"y": component.F32,
		},
	})
	require.NoError(t, err)

	w, err := ecsworld.New(4, []*component.Descriptor{posDesc})
	require.NoError(t, err)
	require.NoError(t, w.Init())

	e0, err := w.Entities().Create()
	require.NoError(t, err)

	_, err = w.Components().AddToEntity(e0, posDesc, map[string]any{"x": float32(0), "y": float32(0)})
	require.NoError(t, err)
	changed, err := w.Components().GetChanged(posDesc)
	require.NoError(t, err)
	require.Contains(t, changed, e0)

	require.NoError(t, w.Refresh(false))
	changed, err = w.Components().GetChanged(posDesc)
	require.NoError(t, err)
	require.Empty(t, changed)

	inst, ok := w.Components().GetInstance(posDesc)
	require.True(t, ok)
	proxy := storage.NewProxy(w.Components().Registry(), inst)
	require.NoError(t, proxy.SetEntity(e0))

	storage.Set[float32](proxy, "x", 0)
	changed, err = w.Components().GetChanged(posDesc)
	require.NoError(t, err)
	require.Empty(t, changed, "writing the same value must not mark changed")

	storage.Set[float32](proxy, "x", 1)
	changed, err = w.Components().GetChanged(posDesc)
	require.NoError(t, err)
	require.Contains(t, changed, e0)
}

// Scenario 5: destroy cleans up fully.
func TestScenarioDestroyCleansUpFully(t *testing.T) {
	w, descs := newTagWorld(t, 8, "A", "B")
	a, b := descs[0], descs[1]

	e, err := w.Entities().Create()
	require.NoError(t, err)
	_, err = w.Components().AddToEntity(e, a, nil)
	require.NoError(t, err)
	_, err = w.Components().AddToEntity(e, b, nil)
	require.NoError(t, err)

	pred, err := query.New([]*component.Descriptor{a}, nil, nil)
	require.NoError(t, err)
	inst, err := w.Register(pred)
	require.NoError(t, err)

	require.NoError(t, w.Entities().Destroy(e))

	require.False(t, w.Entities().IsActive(e))
	hasA, err := w.Components().EntityHas(e, a)
	require.NoError(t, err)
	require.False(t, hasA)
	hasB, err := w.Components().EntityHas(e, b)
	require.NoError(t, err)
	require.False(t, hasB)

	inRoot, err := w.Archetypes().IsEntityInRoot(e)
	require.NoError(t, err)
	require.True(t, inRoot)

	require.Contains(t, w.Archetypes().QueryExited(inst), e)
}

// Scenario 6: capacity exhaustion and id reuse.
func TestScenarioCapacityExhaustionAndReuse(t *testing.T) {
	w, err := ecsworld.New(2, mustTagDescs(t, "A"))
	require.NoError(t, err)
	require.NoError(t, w.Init())

	first, err := w.Entities().Create()
	require.NoError(t, err)
	_, err = w.Entities().Create()
	require.NoError(t, err)

	third, err := w.Entities().Create()
	require.NoError(t, err)
	require.Equal(t, entitypool.InvalidID, third)

	require.Equal(t, 0, w.Entities().GetAvailableCount())

	require.NoError(t, w.Entities().Destroy(first))
	reused, err := w.Entities().Create()
	require.NoError(t, err)
	require.Equal(t, first, reused)
}

func TestInitTwiceFails(t *testing.T) {
	w, err := ecsworld.New(2, mustTagDescs(t, "A"))
	require.NoError(t, err)
	require.NoError(t, w.Init())
	require.Error(t, w.Init())
}

func TestOperationsBeforeInitFail(t *testing.T) {
	w, err := ecsworld.New(2, mustTagDescs(t, "A"))
	require.NoError(t, err)
	_, err = w.Entities().Create()
	require.Error(t, err)
}

func mustTagDescs(t *testing.T, names ...string) []*component.Descriptor {
	t.Helper()
	out := make([]*component.Descriptor, len(names))
	for i, n := range names {
		d, err := component.New(component.Spec{Name: n})
		require.NoError(t, err)
		out[i] = d
	}
	return out
}
