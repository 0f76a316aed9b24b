package query_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pkg.ecscore.dev/ecscore/archetype"
	"pkg.ecscore.dev/ecscore/component"
	"pkg.ecscore.dev/ecscore/query"
	"pkg.ecscore.dev/ecscore/storage"
)

type fixture struct {
	reg  *storage.Registry
	arch *archetype.Manager
	qm   *query.Manager
	a    *component.Descriptor
	b    *component.Descriptor
}

func newFixture(t *testing.T, capacity int) *fixture {
	t.Helper()
	a, err := component.New(component.Spec{Name: "A"})
	require.NoError(t, err)
	b, err := component.New(component.Spec{Name: "B"})
	require.NoError(t, err)

	reg, err := storage.NewRegistry(capacity, []*component.Descriptor{a, b})
	require.NoError(t, err)

	arch := archetype.NewManager(reg.Count())
	arch.Init(capacity)

	qm := query.NewManager(reg.Count(), capacity, func(d *component.Descriptor) (*storage.Instance, bool) {
		return reg.GetInstance(d)
	})

	return &fixture{reg: reg, arch: arch, qm: qm, a: a, b: b}
}

func (f *fixture) instances(descs ...*component.Descriptor) []*storage.Instance {
	out := make([]*storage.Instance, 0, len(descs))
	for _, d := range descs {
		inst, _ := f.reg.GetInstance(d)
		out = append(out, inst)
	}
	return out
}

func TestEmptyEntityNeverMatches(t *testing.T) {
	f := newFixture(t, 4)
	pred, err := query.New([]*component.Descriptor{f.a}, nil, nil)
	require.NoError(t, err)
	inst, _, err := f.qm.Register(pred)
	require.NoError(t, err)

	f.arch.Refresh(f.qm.Instances())
	require.Empty(t, f.qm.Entities(inst, f.arch))
}

func TestAllMatchesOnlyWithEveryComponent(t *testing.T) {
	f := newFixture(t, 4)
	aInst, _ := f.reg.GetInstance(f.a)

	_, err := f.arch.Update(0, f.instances(f.a))
	require.NoError(t, err)
	_, err = f.reg.AddToEntity(aInst, 0, nil)
	require.NoError(t, err)

	pred, err := query.New([]*component.Descriptor{f.a}, nil, nil)
	require.NoError(t, err)
	inst, _, err := f.qm.Register(pred)
	require.NoError(t, err)

	f.arch.Refresh(f.qm.Instances())
	require.Equal(t, []int{0}, f.qm.Entities(inst, f.arch))
}

func TestNoneExcludesMatchingEntities(t *testing.T) {
	f := newFixture(t, 4)
	bInst, _ := f.reg.GetInstance(f.b)

	_, err := f.arch.Update(0, f.instances(f.b))
	require.NoError(t, err)
	_, err = f.reg.AddToEntity(bInst, 0, nil)
	require.NoError(t, err)

	pred, err := query.New(nil, nil, []*component.Descriptor{f.b})
	require.NoError(t, err)
	inst, _, err := f.qm.Register(pred)
	require.NoError(t, err)

	f.arch.Refresh(f.qm.Instances())
	require.Empty(t, f.qm.Entities(inst, f.arch))
}

func TestAnyRequiresAtLeastOne(t *testing.T) {
	f := newFixture(t, 4)
	_, err := f.arch.Update(0, f.instances(f.a))
	require.NoError(t, err)
	_, err = f.arch.Update(1, nil)
	require.NoError(t, err)

	pred, err := query.New(nil, []*component.Descriptor{f.a, f.b}, nil)
	require.NoError(t, err)
	inst, _, err := f.qm.Register(pred)
	require.NoError(t, err)

	f.arch.Refresh(f.qm.Instances())
	require.Equal(t, []int{0}, f.qm.Entities(inst, f.arch))
}

func TestRegisterMemoizesEquivalentPredicates(t *testing.T) {
	f := newFixture(t, 4)
	p1, err := query.New([]*component.Descriptor{f.a}, nil, nil)
	require.NoError(t, err)
	p2, err := query.New([]*component.Descriptor{f.a}, nil, nil)
	require.NoError(t, err)

	inst1, isNew1, err := f.qm.Register(p1)
	require.NoError(t, err)
	require.True(t, isNew1)

	inst2, isNew2, err := f.qm.Register(p2)
	require.NoError(t, err)
	require.False(t, isNew2)
	require.Same(t, inst1, inst2)
}

func TestUnknownComponentSilentlyDroppedByDefault(t *testing.T) {
	f := newFixture(t, 4)
	unregistered, err := component.New(component.Spec{Name: "Ghost"})
	require.NoError(t, err)

	pred, err := query.New([]*component.Descriptor{unregistered}, nil, nil)
	require.NoError(t, err)
	_, _, err = f.qm.Register(pred)
	require.NoError(t, err)
}

func TestUnknownComponentErrorsInStrictMode(t *testing.T) {
	f := newFixture(t, 4)
	unregistered, err := component.New(component.Spec{Name: "Ghost"})
	require.NoError(t, err)

	pred, err := query.New([]*component.Descriptor{unregistered}, nil, nil, query.Strict())
	require.NoError(t, err)
	_, _, err = f.qm.Register(pred)
	require.Error(t, err)
}

func TestPredicateRejectsOverlappingSets(t *testing.T) {
	f := newFixture(t, 4)
	_, err := query.New([]*component.Descriptor{f.a}, []*component.Descriptor{f.a}, nil)
	require.Error(t, err)
}

func TestPredicateSilentlyCollapsesWithinSetDuplicates(t *testing.T) {
	f := newFixture(t, 4)
	_, err := query.New([]*component.Descriptor{f.a, f.a}, nil, nil)
	require.NoError(t, err)
}

func TestPredicateRejectsAllEmptySets(t *testing.T) {
	_, err := query.New(nil, nil, nil)
	require.Error(t, err)
}

func TestInvalidateBumpsVersionAndForcesRebuild(t *testing.T) {
	f := newFixture(t, 4)
	aInst, _ := f.reg.GetInstance(f.a)

	pred, err := query.New([]*component.Descriptor{f.a}, nil, nil)
	require.NoError(t, err)
	inst, _, err := f.qm.Register(pred)
	require.NoError(t, err)

	f.arch.Refresh(f.qm.Instances())
	require.Empty(t, f.qm.Entities(inst, f.arch))

	_, err = f.arch.Update(2, f.instances(f.a))
	require.NoError(t, err)
	_, err = f.reg.AddToEntity(aInst, 2, nil)
	require.NoError(t, err)
	f.arch.Refresh(f.qm.Instances())
	f.qm.Invalidate("")

	require.Equal(t, []int{2}, f.qm.Entities(inst, f.arch))
}
