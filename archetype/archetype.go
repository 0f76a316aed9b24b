// Package archetype groups entities by the exact set of components they
// own, and tracks per-archetype membership deltas (entered/exited) across
// refresh epochs.
package archetype

import (
	"encoding/binary"

	"pkg.ecscore.dev/ecscore/bitset"
	"pkg.ecscore.dev/ecscore/storage"
)

// Key canonically identifies an archetype's component mask. It is derived
// from the mask's raw words rather than a decimal per-bit string: this is
// the spec.md §9 design note ("replace [the string-keyed dedup] with a map
// keyed by the mask's word slice") adapted to a comparable Go map key —
// the word buffer is byte-packed once per lookup instead of built bit by
// bit, which is the expensive part the note calls out.
type Key string

func keyForMask(mask *bitset.Bitset) Key {
	words := mask.Words()
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return Key(buf)
}

// Archetype is the equivalence class of entities that own exactly the same
// set of components.
type Archetype struct {
	id         Key
	mask       *bitset.Bitset
	components []*storage.Instance
	entities   *bitset.Bitset
	entered    *bitset.Bitset
	exited     *bitset.Bitset

	// candidateCache memoizes per-query candidacy decisions. Keyed by a
	// query instance's compiled id string (spec.md §4.5) rather than a
	// *query.Instance pointer, so this package has no dependency on the
	// query package — see QueryMatcher in manager.go.
	candidateCache map[string]bool
}

func newArchetype(id Key, mask *bitset.Bitset, components []*storage.Instance, capacity int) *Archetype {
	return &Archetype{
		id:             id,
		mask:           mask,
		components:     components,
		entities:       bitset.New(capacity),
		entered:        bitset.New(capacity),
		exited:         bitset.New(capacity),
		candidateCache: make(map[string]bool),
	}
}

// ID returns the archetype's canonical de-duplication key.
func (a *Archetype) ID() Key { return a.id }

// Mask returns the component-presence bitmask. Callers must not mutate it.
func (a *Archetype) Mask() *bitset.Bitset { return a.mask }

// Components returns the ordered component list this archetype's entities
// own. This is the exact slice the Archetype holds — the spec.md §9 fast
// path for "get entity components" hands this back with no allocation or
// copy, so callers must treat it as read-only.
func (a *Archetype) Components() []*storage.Instance { return a.components }

// Entities returns the bitset of current members.
func (a *Archetype) Entities() *bitset.Bitset { return a.entities }

// Entered returns the bitset of entities that joined this archetype since
// the last refresh.
func (a *Archetype) Entered() *bitset.Bitset { return a.entered }

// Exited returns the bitset of entities that left this archetype since the
// last refresh.
func (a *Archetype) Exited() *bitset.Bitset { return a.exited }

// CachedCandidate returns a previously memoized candidacy decision for the
// query identified by queryID, and whether one was found.
func (a *Archetype) CachedCandidate(queryID string) (matched bool, found bool) {
	matched, found = a.candidateCache[queryID]
	return
}

// SetCachedCandidate memoizes a candidacy decision for queryID.
func (a *Archetype) SetCachedCandidate(queryID string, matched bool) {
	a.candidateCache[queryID] = matched
}

// clearDeltas clears entered/exited. Invoked unconditionally once per
// archetype per Manager.Refresh call, regardless of whether any query
// matched this archetype this round — spec.md §9 preserves this from the
// source on purpose.
func (a *Archetype) clearDeltas() {
	a.entered.Clear()
	a.exited.Clear()
}

// String renders the archetype for logging and test failure messages.
func (a *Archetype) String() string {
	names := make([]byte, 0, len(a.components)*8)
	for i, c := range a.components {
		if i > 0 {
			names = append(names, ',')
		}
		names = append(names, c.Name()...)
	}
	if len(names) == 0 {
		return "archetype(root)"
	}
	return "archetype(" + string(names) + ")"
}
