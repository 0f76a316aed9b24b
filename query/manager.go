package query

import (
	"github.com/rotisserie/eris"

	"pkg.ecscore.dev/ecscore/archetype"
	"pkg.ecscore.dev/ecscore/bitset"
	"pkg.ecscore.dev/ecscore/component"
	"pkg.ecscore.dev/ecscore/ecserr"
	"pkg.ecscore.dev/ecscore/storage"
)

// InstanceGetter resolves a component Descriptor to its world-local
// storage Instance. This is the "component-instance getter" spec.md hands
// the query manager at compile time; Manager holds only this narrow
// callback, not a handle to the world or its registry.
type InstanceGetter func(desc *component.Descriptor) (*storage.Instance, bool)

// Manager compiles Predicates into world-local Instances, memoizes them by
// compiled id, and serves version-cached entity results.
type Manager struct {
	componentCount int
	getInstance    InstanceGetter
	byID           map[string]*Instance
	pool           *resultPool
	version        uint64
}

// NewManager builds a Manager for a world with componentCount registered
// components and capacity entities.
func NewManager(componentCount, capacity int, getInstance InstanceGetter) *Manager {
	return &Manager{
		componentCount: componentCount,
		getInstance:    getInstance,
		byID:           make(map[string]*Instance),
		pool:           newResultPool(capacity),
	}
}

// Register compiles p into a world-local Instance, or returns the
// previously compiled Instance if an equivalent predicate (same resolved
// and/or/not masks) was already registered. isNew reports whether this
// call actually compiled a fresh Instance — callers use this to decide
// whether an immediate refresh is needed to populate its archetype set.
func (m *Manager) Register(p *Predicate) (inst *Instance, isNew bool, err error) {
	and := bitset.New(m.componentCount)
	or := bitset.New(m.componentCount)
	not := bitset.New(m.componentCount)
	components := make(map[string]*storage.Instance)

	resolve := func(descs []*component.Descriptor, mask *bitset.Bitset, trackComponents bool) error {
		for _, d := range descs {
			si, ok := m.getInstance(d)
			if !ok {
				if p.strict {
					return eris.Wrapf(ecserr.NotRegistered, "component %q is not registered in this world", d.Name())
				}
				continue
			}
			mask.Set(int(si.ID()), true)
			if trackComponents {
				components[si.Name()] = si
			}
		}
		return nil
	}

	if err := resolve(p.all, and, true); err != nil {
		return nil, false, err
	}
	if err := resolve(p.any, or, true); err != nil {
		return nil, false, err
	}
	if err := resolve(p.none, not, false); err != nil {
		return nil, false, err
	}

	id := compileID(and, or, not)
	if cached, ok := m.byID[id]; ok {
		return cached, false, nil
	}

	inst = &Instance{
		id:         id,
		and:        and,
		or:         or,
		not:        not,
		components: components,
		result:     m.pool.get(),
		forceStale: true,
	}
	m.byID[id] = inst
	return inst, true, nil
}

// Instances returns a snapshot of every registered query instance, in no
// particular order. Manager.Refresh callers materialize this before
// handing it to archetype.Manager.Refresh, per the iterator-exhaustion
// avoidance in spec.md §9.
func (m *Manager) Instances() []archetype.QueryMatcher {
	out := make([]archetype.QueryMatcher, 0, len(m.byID))
	for _, inst := range m.byID {
		out = append(out, inst)
	}
	return out
}

// Entities returns the ascending entity indices matching inst, rebuilding
// its cached result from the archetype manager's current incidence table
// if the cache is stale.
func (m *Manager) Entities(inst *Instance, archMgr *archetype.Manager) []int {
	if inst.forceStale || inst.lastSeenVersion < m.version {
		inst.result.Clear()
		for _, a := range archMgr.ArchetypesForQuery(inst.id) {
			inst.result.Or(a.Entities())
		}
		inst.lastSeenVersion = m.version
		inst.forceStale = false
	}
	return inst.result.TruthyIndices()
}

// Invalidate bumps the global version, invalidating every cached query
// result. If id is non-empty, only that one query is marked stale for its
// next read; every other query's cache is left untouched.
func (m *Manager) Invalidate(id string) {
	if id == "" {
		m.version++
		return
	}
	if inst, ok := m.byID[id]; ok {
		inst.forceStale = true
	}
}

// Destroy releases every Instance's result bitset back to the pool.
func (m *Manager) Destroy() {
	for _, inst := range m.byID {
		m.pool.put(inst.result)
	}
	m.byID = nil
}
