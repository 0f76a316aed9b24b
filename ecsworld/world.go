// Package ecsworld composes the entity id pool, component registry,
// archetype manager, and query manager into the single entry point user
// code drives: World.
package ecsworld

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"pkg.ecscore.dev/ecscore/archetype"
	"pkg.ecscore.dev/ecscore/component"
	"pkg.ecscore.dev/ecscore/ecserr"
	"pkg.ecscore.dev/ecscore/ecslog"
	"pkg.ecscore.dev/ecscore/entitypool"
	"pkg.ecscore.dev/ecscore/query"
	"pkg.ecscore.dev/ecscore/storage"
)

// World owns every subsystem for one fixed-capacity, fixed-component-list
// ECS instance.
type World struct {
	id       uuid.UUID
	logger   zerolog.Logger
	capacity int

	pool       *entitypool.Pool
	registry   *storage.Registry
	archetypes *archetype.Manager
	queries    *query.Manager

	stage        *stageManager
	initHooks    []func(*World) error
	destroyHooks []func(*World) error
}

// New builds a World over capacity entities and the given component
// descriptors. The world starts in Uninitialized; call Init before
// creating entities.
func New(capacity int, descriptors []*component.Descriptor, opts ...Option) (*World, error) {
	if capacity <= 0 {
		return nil, eris.Wrap(ecserr.SpecError, "world capacity must be positive")
	}

	registry, err := storage.NewRegistry(capacity, descriptors)
	if err != nil {
		return nil, err
	}

	archetypes := archetype.NewManager(registry.Count())
	queries := query.NewManager(registry.Count(), capacity, registry.GetInstance)

	w := &World{
		id:         uuid.New(),
		logger:     ecslog.New(),
		capacity:   capacity,
		pool:       entitypool.New(capacity),
		registry:   registry,
		archetypes: archetypes,
		queries:    queries,
		stage:      newStageManager(),
	}

	for _, opt := range opts {
		opt(w)
	}
	w.logger = ecslog.WithWorldID(w.logger, w.id)

	return w, nil
}

// ID returns this world's instance id, used to correlate its log lines.
func (w *World) ID() uuid.UUID { return w.id }

// Capacity returns the fixed entity capacity.
func (w *World) Capacity() int { return w.capacity }

// Stage returns the world's current lifecycle stage.
func (w *World) Stage() Stage { return w.stage.Current() }

// Init seats every entity slot in the root archetype, runs registered init
// hooks, transitions to Initialized, and runs one Refresh.
func (w *World) Init() error {
	if w.stage.Current() != Uninitialized {
		return eris.Wrapf(ecserr.WorldStateError, "cannot init from stage %q", w.stage.Current())
	}

	w.archetypes.Init(w.capacity)

	for _, hook := range w.initHooks {
		if err := hook(w); err != nil {
			w.stage.Store(Errored)
			return eris.Wrap(err, "init hook failed")
		}
	}

	if !w.stage.CompareAndSwap(Uninitialized, Initialized) {
		return eris.Wrapf(ecserr.WorldStateError, "cannot init from stage %q", w.stage.Current())
	}

	if err := w.Refresh(false); err != nil {
		w.stage.Store(Errored)
		return err
	}

	ecslog.StageTransition(&w.logger, string(Uninitialized), string(Initialized))
	return nil
}

// Destroy runs registered destroy hooks and transitions to Destroyed.
func (w *World) Destroy() error {
	if w.stage.Current() != Initialized {
		return eris.Wrapf(ecserr.WorldStateError, "cannot destroy from stage %q", w.stage.Current())
	}

	for _, hook := range w.destroyHooks {
		if err := hook(w); err != nil {
			w.stage.Store(Errored)
			return eris.Wrap(err, "destroy hook failed")
		}
	}

	w.stage.Store(Destroyed)
	w.archetypes.Destroy()
	w.queries.Destroy()
	ecslog.StageTransition(&w.logger, string(Initialized), string(Destroyed))
	return nil
}

// Refresh rebuilds archetype/query incidence and, unless retainChanged is
// set, clears every component's changed bitset.
func (w *World) Refresh(retainChanged bool) error {
	if w.stage.Current() != Initialized {
		return eris.Wrapf(ecserr.WorldStateError, "cannot refresh from stage %q", w.stage.Current())
	}

	w.archetypes.Refresh(w.queries.Instances())
	if !retainChanged {
		w.registry.Refresh()
	}
	w.queries.Invalidate("")

	ecslog.RefreshSummary(&w.logger, len(w.archetypes.All()), retainChanged)
	return nil
}

// Register compiles pred into its world-local query.Instance (or returns
// the existing one for a structurally identical predicate), and — if this
// is a first-time registration on an initialized world — immediately
// refreshes with changed bits retained so the instance's archetype set is
// populated before it is used.
func (w *World) Register(pred *query.Predicate) (*query.Instance, error) {
	inst, isNew, err := w.queries.Register(pred)
	if err != nil {
		return nil, err
	}
	if isNew && w.stage.Current() == Initialized {
		if err := w.Refresh(true); err != nil {
			return nil, err
		}
	}
	return inst, nil
}
