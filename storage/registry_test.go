package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pkg.ecscore.dev/ecscore/component"
	"pkg.ecscore.dev/ecscore/storage"
)

func newTestRegistry(t *testing.T, capacity int) (*storage.Registry, *component.Descriptor, *component.Descriptor) {
	t.Helper()
	tagA, err := component.New(component.Spec{Name: "Frozen"})
	require.NoError(t, err)
	pos, err := component.New(component.Spec{
		Name: "Position",
		Schema: map[string]component.ElementType{
			"x": component.F32,
			"y": component.F32,
		},
	})
	require.NoError(t, err)

	reg, err := storage.NewRegistry(capacity, []*component.Descriptor{tagA, pos})
	require.NoError(t, err)
	return reg, tagA, pos
}

func TestAddToEntitySetsOwnerAndChanged(t *testing.T) {
	reg, tagDesc, posDesc := newTestRegistry(t, 8)
	tagInst, _ := reg.GetInstance(tagDesc)
	posInst, _ := reg.GetInstance(posDesc)

	comps, err := reg.AddToEntity(posInst, 0, map[string]any{"x": float32(1), "y": float32(2)})
	require.NoError(t, err)
	require.Len(t, comps, 1)

	require.True(t, reg.EntityHas(posInst, 0))
	require.Contains(t, reg.GetChanged(posInst), 0)

	_, err = reg.AddToEntity(tagInst, 0, nil)
	require.NoError(t, err)
	require.True(t, reg.EntityHas(tagInst, 0))
	require.ElementsMatch(t, []int{0}, reg.GetOwners(tagInst))

	comps = reg.GetEntityComponents(0)
	require.Len(t, comps, 2)
}

func TestRemoveFromEntityClearsBits(t *testing.T) {
	reg, _, posDesc := newTestRegistry(t, 8)
	posInst, _ := reg.GetInstance(posDesc)

	_, err := reg.AddToEntity(posInst, 1, nil)
	require.NoError(t, err)

	comps, err := reg.RemoveFromEntity(posInst, 1)
	require.NoError(t, err)
	require.Empty(t, comps)
	require.False(t, reg.EntityHas(posInst, 1))
	require.NotContains(t, reg.GetChanged(posInst), 1)
}

func TestRefreshClearsAllChanged(t *testing.T) {
	reg, tagDesc, posDesc := newTestRegistry(t, 8)
	tagInst, _ := reg.GetInstance(tagDesc)
	posInst, _ := reg.GetInstance(posDesc)

	_, _ = reg.AddToEntity(tagInst, 2, nil)
	_, _ = reg.AddToEntity(posInst, 2, nil)
	require.NotEmpty(t, reg.GetChanged(tagInst))
	require.NotEmpty(t, reg.GetChanged(posInst))

	reg.Refresh()

	require.Empty(t, reg.GetChanged(tagInst))
	require.Empty(t, reg.GetChanged(posInst))
}

func TestAddToEntityOutOfRangeEntity(t *testing.T) {
	reg, _, posDesc := newTestRegistry(t, 4)
	posInst, _ := reg.GetInstance(posDesc)

	_, err := reg.AddToEntity(posInst, 99, nil)
	require.Error(t, err)
}

func TestNewRegistryRejectsEmptyComponentList(t *testing.T) {
	_, err := storage.NewRegistry(4, nil)
	require.Error(t, err)
}

func TestNewRegistryRejectsDuplicateNames(t *testing.T) {
	a, err := component.New(component.Spec{Name: "Dup"})
	require.NoError(t, err)
	b, err := component.New(component.Spec{Name: "Dup"})
	require.NoError(t, err)

	_, err = storage.NewRegistry(4, []*component.Descriptor{a, b})
	require.Error(t, err)
}
