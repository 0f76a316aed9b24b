package archetype

import (
	"github.com/rotisserie/eris"

	"pkg.ecscore.dev/ecscore/bitset"
	"pkg.ecscore.dev/ecscore/ecserr"
	"pkg.ecscore.dev/ecscore/storage"
)

// QueryMatcher is the narrow surface Manager.Refresh needs from a compiled
// query: a stable identity for candidate-cache memoization, and a
// predicate over an archetype's mask. query.Instance implements this; this
// package never imports query, which keeps archetype the lower layer.
type QueryMatcher interface {
	QueryID() string
	Matches(mask *bitset.Bitset) bool
}

// Manager owns every Archetype for one World: the root (empty-mask)
// archetype, the per-entity archetype assignment, and the last computed
// query-to-archetype incidence.
type Manager struct {
	componentCount int
	capacity       int
	byKey          map[Key]*Archetype
	perEntity      []*Archetype
	root           *Archetype
	queryArchetypes map[string][]*Archetype
}

// NewManager builds a Manager sized for componentCount distinct components.
// Capacity is supplied separately via Init, matching spec.md's two-phase
// construction: a Manager may be built before a World's entity capacity is
// fixed.
func NewManager(componentCount int) *Manager {
	return &Manager{
		componentCount:  componentCount,
		byKey:           make(map[Key]*Archetype),
		queryArchetypes: make(map[string][]*Archetype),
	}
}

// Init seats capacity entities into the root archetype. Must be called
// exactly once, before any Update/Reset calls.
func (m *Manager) Init(capacity int) {
	m.capacity = capacity
	rootMask := bitset.New(m.componentCount)
	m.root = newArchetype(keyForMask(rootMask), rootMask, nil, capacity)
	m.byKey[m.root.id] = m.root
	m.perEntity = make([]*Archetype, capacity)
	for e := 0; e < capacity; e++ {
		m.perEntity[e] = m.root
		m.root.entities.Set(e, true)
	}
}

// Root returns the empty-mask archetype every entity starts in.
func (m *Manager) Root() *Archetype { return m.root }

// Get returns the archetype currently housing entity.
func (m *Manager) Get(entity int) (*Archetype, error) {
	if entity < 0 || entity >= m.capacity {
		return nil, eris.Wrapf(ecserr.EntityNotFound, "entity %d out of range [0,%d)", entity, m.capacity)
	}
	return m.perEntity[entity], nil
}

// All returns every archetype that currently exists, in no particular
// order. The slice is built fresh on each call, so it is a snapshot that
// later archetype creation does not change.
func (m *Manager) All() []*Archetype {
	out := make([]*Archetype, 0, len(m.byKey))
	for _, a := range m.byKey {
		out = append(out, a)
	}
	return out
}

func maskFromComponents(componentCount int, components []*storage.Instance) *bitset.Bitset {
	mask := bitset.New(componentCount)
	for _, c := range components {
		mask.Set(int(c.ID()), true)
	}
	return mask
}

// Update moves entity into the archetype matching exactly components,
// creating that archetype on first use. If entity is already in the
// matching archetype this is a no-op beyond the lookup. Satisfies
// invariant A1 (an entity belongs to exactly one archetype at a time):
// the prior archetype's membership bit is cleared in the same call that
// sets the new one.
func (m *Manager) Update(entity int, components []*storage.Instance) (*Archetype, error) {
	if entity < 0 || entity >= m.capacity {
		return nil, eris.Wrapf(ecserr.EntityNotFound, "entity %d out of range [0,%d)", entity, m.capacity)
	}

	mask := maskFromComponents(m.componentCount, components)
	key := keyForMask(mask)

	current := m.perEntity[entity]
	if current != nil && current.id == key {
		return current, nil
	}

	target, ok := m.byKey[key]
	if !ok {
		target = newArchetype(key, mask, components, m.capacity)
		m.byKey[key] = target
	}

	if current != nil {
		current.entities.Set(entity, false)
		current.exited.Set(entity, true)
	}
	target.entities.Set(entity, true)
	target.entered.Set(entity, true)
	m.perEntity[entity] = target

	return target, nil
}

// Reset moves entity back to the root archetype, as on entity destruction.
func (m *Manager) Reset(entity int) (*Archetype, error) {
	return m.Update(entity, nil)
}

// ArchetypesForQuery returns the archetypes the given query matched as of
// the last Refresh call. The slice is owned by Manager; callers must not
// mutate it.
func (m *Manager) ArchetypesForQuery(queryID string) []*Archetype {
	return m.queryArchetypes[queryID]
}

// Refresh recomputes query-to-archetype incidence against the current set
// of archetypes and clears every archetype's entered/exited deltas.
//
// Per-archetype candidacy decisions are memoized in the archetype itself
// (Archetype.candidateCache) and persist across calls — an archetype's
// mask never changes after creation, so a candidacy verdict for a given
// query never goes stale. Only archetype/query pairs not seen by an
// earlier Refresh (a new archetype, or a newly registered query) pay the
// matching cost.
//
// entered/exited are cleared for every archetype this call touches,
// whether or not any query matched it this round: clearing is a function
// of "this archetype was visited during a refresh pass", not of query
// incidence. Queries should be supplied as an already-materialized slice;
// Manager does not retain or iterate a live query registry, which avoids
// the iterator-exhaustion hazard of mutating query registration mid-scan.
func (m *Manager) Refresh(queries []QueryMatcher) {
	m.queryArchetypes = make(map[string][]*Archetype, len(queries))

	for _, a := range m.All() {
		for _, q := range queries {
			matched, cached := a.CachedCandidate(q.QueryID())
			if !cached {
				matched = q.Matches(a.mask)
				a.SetCachedCandidate(q.QueryID(), matched)
			}
			if matched && a.entities.Popcount() > 0 {
				m.queryArchetypes[q.QueryID()] = append(m.queryArchetypes[q.QueryID()], a)
			}
		}
		a.clearDeltas()
	}
}

// Destroy releases every archetype. The Manager must not be used
// afterwards.
func (m *Manager) Destroy() {
	m.byKey = nil
	m.perEntity = nil
	m.queryArchetypes = nil
	m.root = nil
}
