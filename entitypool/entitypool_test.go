package entitypool_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pkg.ecscore.dev/ecscore/entitypool"
)

func TestAcquireAssignsAscendingIDs(t *testing.T) {
	p := entitypool.New(4)
	for want := 0; want < 4; want++ {
		got, err := p.Acquire()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestAcquireReturnsInvalidIDWhenExhausted(t *testing.T) {
	p := entitypool.New(1)
	_, err := p.Acquire()
	require.NoError(t, err)

	id, err := p.Acquire()
	require.NoError(t, err, "exhaustion is reported via the null marker, not an error")
	require.Equal(t, entitypool.InvalidID, id)
}

func TestReleaseAllowsReuse(t *testing.T) {
	p := entitypool.New(2)
	a, _ := p.Acquire()
	_, _ = p.Acquire()

	require.NoError(t, p.Release(a))
	require.Equal(t, 1, p.OccupiedCount())

	reused, err := p.Acquire()
	require.NoError(t, err)
	require.Equal(t, a, reused)
}

func TestReleaseRejectsUnoccupiedID(t *testing.T) {
	p := entitypool.New(2)
	require.Error(t, p.Release(0))
}

func TestReleaseRejectsOutOfRangeID(t *testing.T) {
	p := entitypool.New(2)
	require.Error(t, p.Release(5))
}

func TestOccupiedListsAllocatedIDsAscending(t *testing.T) {
	p := entitypool.New(4)
	a, _ := p.Acquire()
	b, _ := p.Acquire()
	require.Equal(t, []int{a, b}, p.Occupied())
}

func TestAvailableCountTracksCapacity(t *testing.T) {
	p := entitypool.New(3)
	require.Equal(t, 3, p.AvailableCount())
	_, _ = p.Acquire()
	require.Equal(t, 2, p.AvailableCount())
}
