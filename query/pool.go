package query

import "pkg.ecscore.dev/ecscore/bitset"

// resultPool is a free-list of capacity-sized bitsets. Manager.Register
// takes each new Instance's result bitset from it and Manager.Destroy
// returns them; rebuilding a cached result clears the Instance's bitset in
// place without going through the pool.
// spec.md §4.5 calls this out explicitly as the "result pool".
type resultPool struct {
	capacity int
	free     []*bitset.Bitset
}

func newResultPool(capacity int) *resultPool {
	return &resultPool{capacity: capacity}
}

func (p *resultPool) get() *bitset.Bitset {
	n := len(p.free)
	if n == 0 {
		return bitset.New(p.capacity)
	}
	b := p.free[n-1]
	p.free = p.free[:n-1]
	return b.Clear()
}

func (p *resultPool) put(b *bitset.Bitset) {
	p.free = append(p.free, b)
}
