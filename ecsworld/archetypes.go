package ecsworld

import (
	"pkg.ecscore.dev/ecscore/archetype"
	"pkg.ecscore.dev/ecscore/query"
	"pkg.ecscore.dev/ecscore/storage"
)

// ArchetypesAPI groups archetype introspection operations, mirroring
// spec.md's `world.archetypes` surface.
type ArchetypesAPI struct{ w *World }

// Archetypes returns the archetype-introspection facade.
func (w *World) Archetypes() ArchetypesAPI { return ArchetypesAPI{w: w} }

// GetEntityArchetype returns the archetype currently housing entity.
func (a ArchetypesAPI) GetEntityArchetype(entity int) (*archetype.Archetype, error) {
	return a.w.archetypes.Get(entity)
}

// IsEntityInRoot reports whether entity currently owns zero components.
func (a ArchetypesAPI) IsEntityInRoot(entity int) (bool, error) {
	arch, err := a.w.archetypes.Get(entity)
	if err != nil {
		return false, err
	}
	return arch == a.w.archetypes.Root(), nil
}

// QueryComponents returns the frozen name→instance map inst resolved at
// registration time.
func (a ArchetypesAPI) QueryComponents(inst *query.Instance) map[string]*storage.Instance {
	return inst.Components()
}

// QueryEntities returns the entity ids currently matching inst, per the
// most recent Refresh.
func (a ArchetypesAPI) QueryEntities(inst *query.Instance) []int {
	return a.w.queries.Entities(inst, a.w.archetypes)
}

// QueryEntered returns the entities that joined any of inst's matching
// archetypes since the last Refresh.
func (a ArchetypesAPI) QueryEntered(inst *query.Instance) []int {
	out := make([]int, 0)
	for _, arch := range a.w.archetypes.ArchetypesForQuery(inst.QueryID()) {
		out = append(out, arch.Entered().TruthyIndices()...)
	}
	return out
}

// QueryExited returns the entities that left any of inst's matching
// archetypes since the last Refresh.
func (a ArchetypesAPI) QueryExited(inst *query.Instance) []int {
	out := make([]int, 0)
	for _, arch := range a.w.archetypes.ArchetypesForQuery(inst.QueryID()) {
		out = append(out, arch.Exited().TruthyIndices()...)
	}
	return out
}
