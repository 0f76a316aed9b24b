package ecsworld

import (
	"github.com/rotisserie/eris"

	"pkg.ecscore.dev/ecscore/ecserr"
	"pkg.ecscore.dev/ecscore/ecslog"
	"pkg.ecscore.dev/ecscore/entitypool"
	"pkg.ecscore.dev/ecscore/query"
)

// EntitiesAPI groups entity lifecycle and lookup operations, mirroring
// spec.md's `world.entities` surface.
type EntitiesAPI struct{ w *World }

// Entities returns the entity-lifecycle facade.
func (w *World) Entities() EntitiesAPI { return EntitiesAPI{w: w} }

// Create acquires a fresh entity id. The entity starts in the root
// archetype, owning no components. A full pool is not an error: Create
// returns (entitypool.InvalidID, nil), matching Pool.Acquire's own
// exhaustion contract.
func (e EntitiesAPI) Create() (int, error) {
	if e.w.stage.Current() != Initialized {
		return entitypool.InvalidID, eris.Wrapf(ecserr.WorldStateError, "cannot create entities from stage %q", e.w.stage.Current())
	}
	return e.w.pool.Acquire()
}

// Destroy clears every component the entity owns, resets it to the root
// archetype, releases its id, and invalidates query caches.
func (e EntitiesAPI) Destroy(entity int) error {
	if e.w.stage.Current() != Initialized {
		return eris.Wrapf(ecserr.WorldStateError, "cannot destroy entities from stage %q", e.w.stage.Current())
	}

	arch, err := e.w.archetypes.Get(entity)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(arch.Components()))
	for _, inst := range arch.Components() {
		if _, err := e.w.registry.RemoveFromEntity(inst, entity); err != nil {
			return err
		}
		names = append(names, inst.Name())
	}

	if _, err := e.w.archetypes.Reset(entity); err != nil {
		return err
	}
	if err := e.w.pool.Release(entity); err != nil {
		return err
	}
	e.w.queries.Invalidate("")

	ecslog.EntityDestroyed(&e.w.logger, entity, names)
	return nil
}

// IsActive reports whether entity currently holds an allocated id.
func (e EntitiesAPI) IsActive(entity int) bool {
	return e.w.pool.IsOccupied(entity)
}

// IsEntity reports whether entity is within the world's addressable
// range, active or not.
func (e EntitiesAPI) IsEntity(entity int) bool {
	return entity >= 0 && entity < e.w.capacity
}

// GetActive returns every currently allocated entity id, ascending.
func (e EntitiesAPI) GetActive() []int { return e.w.pool.Occupied() }

// GetActiveCount returns the number of currently allocated entities.
func (e EntitiesAPI) GetActiveCount() int { return e.w.pool.OccupiedCount() }

// GetAvailableCount returns the number of ids still available to Create.
func (e EntitiesAPI) GetAvailableCount() int { return e.w.pool.AvailableCount() }

// Query resolves pred against the current archetype set, registering it
// (and, if the world is initialized and this is the predicate's first
// registration, immediately refreshing so its archetype set is populated)
// before returning the matching entity ids.
func (e EntitiesAPI) Query(pred *query.Predicate) ([]int, error) {
	inst, err := e.w.Register(pred)
	if err != nil {
		return nil, err
	}
	return e.w.queries.Entities(inst, e.w.archetypes), nil
}
