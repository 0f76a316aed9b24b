// Package entitypool is a bitset-backed entity id allocator. spec.md
// treats this as an external collaborator with a fixed contract
// (acquire/release/occupied_count/iteration); this package is the
// concrete implementation ecsworld.World composes so the module is
// runnable end to end.
package entitypool

import (
	"github.com/rotisserie/eris"

	"pkg.ecscore.dev/ecscore/bitset"
	"pkg.ecscore.dev/ecscore/ecserr"
)

// InvalidID is returned by Acquire when the pool is exhausted, mirroring
// the source's reserved "no such id" sentinel (iterators.BadID).
const InvalidID = -1

// Pool allocates and recycles entity ids in [0, capacity).
type Pool struct {
	capacity int
	occupied *bitset.Bitset
	freed    []int
	next     int
}

// New builds a Pool over capacity ids, all initially free.
func New(capacity int) *Pool {
	return &Pool{
		capacity: capacity,
		occupied: bitset.New(capacity),
	}
}

// Capacity returns the total number of addressable ids.
func (p *Pool) Capacity() int { return p.capacity }

// Acquire returns the most recently released id if there is one, and
// otherwise the lowest never-used id. Capacity exhaustion is reported by
// returning InvalidID with a nil error, not an error return — per spec.md
// §7, running out of ids is an ordinary, expected outcome callers check
// for explicitly, distinct from a misuse error.
func (p *Pool) Acquire() (int, error) {
	if n := len(p.freed); n > 0 {
		id := p.freed[n-1]
		p.freed = p.freed[:n-1]
		p.occupied.Set(id, true)
		return id, nil
	}
	if p.next >= p.capacity {
		return InvalidID, nil
	}
	id := p.next
	p.next++
	p.occupied.Set(id, true)
	return id, nil
}

// Release returns id to the pool for reuse. No generation counter is
// kept: a released id may be handed back out by a subsequent Acquire, per
// spec.md's explicit "no generation counter" decision.
func (p *Pool) Release(id int) error {
	if err := p.checkID(id); err != nil {
		return err
	}
	if !p.occupied.Get(id) {
		return eris.Wrapf(ecserr.EntityNotFound, "entity %d is not occupied", id)
	}
	p.occupied.Set(id, false)
	p.freed = append(p.freed, id)
	return nil
}

// IsOccupied reports whether id is currently allocated.
func (p *Pool) IsOccupied(id int) bool {
	if id < 0 || id >= p.capacity {
		return false
	}
	return p.occupied.Get(id)
}

// OccupiedCount returns the number of currently allocated ids.
func (p *Pool) OccupiedCount() int { return p.occupied.Popcount() }

// AvailableCount returns the number of ids that could still be acquired.
func (p *Pool) AvailableCount() int { return p.capacity - p.occupied.Popcount() }

// Occupied returns, in ascending order, every currently allocated id.
func (p *Pool) Occupied() []int { return p.occupied.TruthyIndices() }

// Each calls fn for every occupied id in ascending order, stopping early
// if fn returns false.
func (p *Pool) Each(fn func(id int) bool) { p.occupied.Each(fn) }

func (p *Pool) checkID(id int) error {
	if id < 0 || id >= p.capacity {
		return eris.Wrapf(ecserr.EntityNotFound, "entity %d out of range [0,%d)", id, p.capacity)
	}
	return nil
}
