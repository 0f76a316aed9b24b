package query

import (
	"encoding/binary"

	"pkg.ecscore.dev/ecscore/bitset"
	"pkg.ecscore.dev/ecscore/storage"
)

// Instance is the world-local compiled form of a Predicate: three masks
// sized to the world's component count, the frozen name→instance map for
// its "all ∪ any" components, and a stable id used both for archetype
// candidate-cache memoization and for de-duplicating structurally
// identical predicates across Register calls.
type Instance struct {
	id         string
	and        *bitset.Bitset
	or         *bitset.Bitset
	not        *bitset.Bitset
	components map[string]*storage.Instance

	lastSeenVersion uint64
	forceStale      bool
	result          *bitset.Bitset
}

// QueryID satisfies archetype.QueryMatcher.
func (in *Instance) QueryID() string { return in.id }

// Components returns the frozen name→instance map for this query's
// "all ∪ any" components. Built once at compile time; it never changes
// for the lifetime of the Instance, since a world's component set is
// fixed after construction.
func (in *Instance) Components() map[string]*storage.Instance { return in.components }

// Matches implements the is_match candidacy predicate, word-wise over the
// target mask:
//  1. An empty target (no components at all) never matches.
//  2. Every bit set in "and" must be set in target.
//  3. No bit set in "not" may be set in target.
//  4. If "or" is non-empty, at least one of its bits must be set in target.
func (in *Instance) Matches(target *bitset.Bitset) bool {
	if target.Popcount() == 0 {
		return false
	}

	words := target.Words()
	andWords := in.and.Words()
	notWords := in.not.Words()
	orWords := in.or.Words()

	for i := range words {
		if words[i]&andWords[i] != andWords[i] {
			return false
		}
	}
	for i := range words {
		if words[i]&notWords[i] != 0 {
			return false
		}
	}
	if !in.or.IsZero() {
		anyHit := false
		for i := range words {
			if words[i]&orWords[i] != 0 {
				anyHit = true
				break
			}
		}
		if !anyHit {
			return false
		}
	}
	return true
}

// compileID derives a stable de-duplication key from a query's three
// compiled masks. Each mask's word buffer is packed as little-endian
// bytes and the three buffers are concatenated with separators, mirroring
// spec.md's `stringify(and) + ":" + stringify(or) + ":" + stringify(not)`
// but operating on raw words instead of a decimal per-bit rendering.
func compileID(and, or, not *bitset.Bitset) string {
	buf := make([]byte, 0, (len(and.Words())+len(or.Words())+len(not.Words()))*4+2)
	buf = appendWords(buf, and.Words())
	buf = append(buf, ':')
	buf = appendWords(buf, or.Words())
	buf = append(buf, ':')
	buf = appendWords(buf, not.Words())
	return string(buf)
}

func appendWords(buf []byte, words []uint32) []byte {
	var tmp [4]byte
	for _, w := range words {
		binary.LittleEndian.PutUint32(tmp[:], w)
		buf = append(buf, tmp[:]...)
	}
	return buf
}
