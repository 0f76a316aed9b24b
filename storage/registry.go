package storage

import (
	"github.com/rotisserie/eris"

	"pkg.ecscore.dev/ecscore/bitset"
	"pkg.ecscore.dev/ecscore/component"
	"pkg.ecscore.dev/ecscore/ecserr"
)

// ComponentID is a world-local, dense component index in [0, componentCount).
type ComponentID int

// Instance is the world-local binding of a component Descriptor: a dense
// id, the descriptor it was bound from, and (for non-tag components) the
// storage partition holding its field data. Instances are frozen after
// Registry construction.
type Instance struct {
	id         ComponentID
	descriptor *component.Descriptor
	partition  *Partition // nil for tag components
}

func (inst *Instance) ID() ComponentID                  { return inst.id }
func (inst *Instance) Descriptor() *component.Descriptor { return inst.descriptor }
func (inst *Instance) Name() string                     { return inst.descriptor.Name() }
func (inst *Instance) IsTag() bool                       { return inst.partition == nil }
func (inst *Instance) Partition() *Partition             { return inst.partition }

// Registry owns per-component storage, ownership bits, and change bits for
// one World. It has no notion of archetypes: get_entity_components here is
// always the O(componentCount) fallback scan described in spec.md §4.3;
// the fast path through archetype membership is layered on top by the
// caller (the World type), which is the only thing that knows both the
// registry and the archetype manager.
type Registry struct {
	capacity int
	byID     []*Instance
	byName   map[string]*Instance
	byDesc   map[*component.Descriptor]*Instance
	owners   []*bitset.Bitset
	changed  []*bitset.Bitset
}

// NewRegistry builds a Registry for capacity entities over the given
// descriptors, assigned dense ids in the given order.
func NewRegistry(capacity int, descriptors []*component.Descriptor) (*Registry, error) {
	if len(descriptors) == 0 {
		return nil, eris.Wrap(ecserr.NoComponentsFound, "world requires at least one component")
	}

	r := &Registry{
		capacity: capacity,
		byID:     make([]*Instance, len(descriptors)),
		byName:   make(map[string]*Instance, len(descriptors)),
		byDesc:   make(map[*component.Descriptor]*Instance, len(descriptors)),
		owners:   make([]*bitset.Bitset, len(descriptors)),
		changed:  make([]*bitset.Bitset, len(descriptors)),
	}

	for i, desc := range descriptors {
		if _, dup := r.byName[desc.Name()]; dup {
			return nil, eris.Wrapf(ecserr.SpecError, "duplicate component name %q", desc.Name())
		}

		var partition *Partition
		if !desc.IsTag() {
			partition = NewPartition(capacity, desc.Partition())
		}

		inst := &Instance{id: ComponentID(i), descriptor: desc, partition: partition}
		r.byID[i] = inst
		r.byName[desc.Name()] = inst
		r.byDesc[desc] = inst
		r.owners[i] = bitset.New(capacity)
		r.changed[i] = bitset.New(capacity)
	}

	return r, nil
}

// Count returns the number of registered components.
func (r *Registry) Count() int { return len(r.byID) }

// Capacity returns the entity capacity the registry was built for.
func (r *Registry) Capacity() int { return r.capacity }

// All returns every instance in id order. Callers must not mutate the
// returned slice.
func (r *Registry) All() []*Instance { return r.byID }

// GetInstance resolves a descriptor to its world-local instance.
func (r *Registry) GetInstance(desc *component.Descriptor) (*Instance, bool) {
	inst, ok := r.byDesc[desc]
	return inst, ok
}

// GetInstanceByName resolves a component name to its world-local instance.
func (r *Registry) GetInstanceByName(name string) (*Instance, bool) {
	inst, ok := r.byName[name]
	return inst, ok
}

func (r *Registry) checkEntity(entity int) error {
	if entity < 0 || entity >= r.capacity {
		return eris.Wrapf(ecserr.EntityNotFound, "entity %d out of range [0,%d)", entity, r.capacity)
	}
	return nil
}

// AddToEntity sets the ownership and changed bits for (component, entity),
// optionally copying provided field values into storage, and returns the
// entity's full, freshly-scanned component instance list.
func (r *Registry) AddToEntity(inst *Instance, entity int, data map[string]any) ([]*Instance, error) {
	if _, ok := r.byDesc[inst.descriptor]; !ok {
		return nil, eris.Wrap(ecserr.NotRegistered, "component is not registered in this world")
	}
	if err := r.checkEntity(entity); err != nil {
		return nil, err
	}

	r.owners[inst.id].Set(entity, true)
	r.changed[inst.id].Set(entity, true)

	if !inst.IsTag() {
		for field, value := range data {
			if err := writeField(inst.partition, field, entity, value); err != nil {
				return nil, eris.Wrapf(ecserr.SpecError, "writing field %q of %q: %v", field, inst.Name(), err)
			}
		}
	}

	return r.GetEntityComponents(entity), nil
}

// RemoveFromEntity clears the ownership and changed bits for
// (component, entity). Storage is not zeroed; it is reclaimed on next
// write. Returns the entity's remaining component instance list.
func (r *Registry) RemoveFromEntity(inst *Instance, entity int) ([]*Instance, error) {
	if _, ok := r.byDesc[inst.descriptor]; !ok {
		return nil, eris.Wrap(ecserr.NotRegistered, "component is not registered in this world")
	}
	if err := r.checkEntity(entity); err != nil {
		return nil, err
	}

	r.owners[inst.id].Set(entity, false)
	r.changed[inst.id].Set(entity, false)

	return r.GetEntityComponents(entity), nil
}

// EntityHas reports whether entity owns the given component.
func (r *Registry) EntityHas(inst *Instance, entity int) bool {
	return r.owners[inst.id].Get(entity)
}

// GetChanged returns, in ascending order, the entities whose data for inst
// changed since the last Refresh.
func (r *Registry) GetChanged(inst *Instance) []int {
	return r.changed[inst.id].TruthyIndices()
}

// GetOwners returns, in ascending order, the entities that currently own
// inst.
func (r *Registry) GetOwners(inst *Instance) []int {
	return r.owners[inst.id].TruthyIndices()
}

// GetEntityComponents scans every registered component's owner bit for
// entity. This is the fallback path from spec.md §4.3; prefer an
// archetype's component list when one is available.
func (r *Registry) GetEntityComponents(entity int) []*Instance {
	out := make([]*Instance, 0, len(r.byID))
	for _, inst := range r.byID {
		if r.owners[inst.id].Get(entity) {
			out = append(out, inst)
		}
	}
	return out
}

// markChanged is used by Proxy writes to flag a real value change.
func (r *Registry) markChanged(id ComponentID, entity int) {
	r.changed[id].Set(entity, true)
}

// Refresh clears every component's changed bitset. Called by World.Refresh
// unless retainChanged was requested.
func (r *Registry) Refresh() {
	for _, c := range r.changed {
		c.Clear()
	}
}

// SetEntityData writes every (field, value) pair in data into inst's
// partition for entity and marks the component changed for that entity.
// Unlike Proxy.Set, writes are unconditional: this is the bulk "load new
// state" path (spec.md's `world.components.set_entity_data`), not a
// per-field change-tracked accessor.
func (r *Registry) SetEntityData(inst *Instance, entity int, data map[string]any) error {
	if _, ok := r.byDesc[inst.descriptor]; !ok {
		return eris.Wrap(ecserr.NotRegistered, "component is not registered in this world")
	}
	if err := r.checkEntity(entity); err != nil {
		return err
	}
	if inst.IsTag() {
		if len(data) > 0 {
			return eris.Errorf("component %q is a tag and has no fields to set", inst.Name())
		}
		return nil
	}
	for field, value := range data {
		if err := writeField(inst.partition, field, entity, value); err != nil {
			return eris.Wrapf(ecserr.SpecError, "writing field %q of %q: %v", field, inst.Name(), err)
		}
	}
	r.markChanged(inst.id, entity)
	return nil
}

// GetEntityData reads every field of inst for entity into a fresh
// name→value map. Tag components have no fields and return an empty map.
func (r *Registry) GetEntityData(inst *Instance, entity int) (map[string]any, error) {
	if _, ok := r.byDesc[inst.descriptor]; !ok {
		return nil, eris.Wrap(ecserr.NotRegistered, "component is not registered in this world")
	}
	if err := r.checkEntity(entity); err != nil {
		return nil, err
	}
	out := make(map[string]any)
	if inst.IsTag() {
		return out, nil
	}
	for _, f := range inst.partition.layout.Fields {
		out[f.Name] = readField(inst.partition, f, entity)
	}
	return out, nil
}

func readField(p *Partition, f component.FieldLayout, entity int) any {
	switch f.Type {
	case component.I8:
		return FieldView[int8](p, f.Name)[entity]
	case component.U8:
		return FieldView[uint8](p, f.Name)[entity]
	case component.I16:
		return FieldView[int16](p, f.Name)[entity]
	case component.U16:
		return FieldView[uint16](p, f.Name)[entity]
	case component.I32:
		return FieldView[int32](p, f.Name)[entity]
	case component.U32:
		return FieldView[uint32](p, f.Name)[entity]
	case component.F32:
		return FieldView[float32](p, f.Name)[entity]
	case component.F64:
		return FieldView[float64](p, f.Name)[entity]
	}
	return nil
}

func writeField(p *Partition, field string, entity int, value any) error {
	for _, f := range p.layout.Fields {
		if f.Name != field {
			continue
		}
		switch f.Type {
		case component.I8:
			v, ok := value.(int8)
			if !ok {
				return eris.Errorf("expected int8 for field %q", field)
			}
			FieldView[int8](p, field)[entity] = v
		case component.U8:
			v, ok := value.(uint8)
			if !ok {
				return eris.Errorf("expected uint8 for field %q", field)
			}
			FieldView[uint8](p, field)[entity] = v
		case component.I16:
			v, ok := value.(int16)
			if !ok {
				return eris.Errorf("expected int16 for field %q", field)
			}
			FieldView[int16](p, field)[entity] = v
		case component.U16:
			v, ok := value.(uint16)
			if !ok {
				return eris.Errorf("expected uint16 for field %q", field)
			}
			FieldView[uint16](p, field)[entity] = v
		case component.I32:
			v, ok := value.(int32)
			if !ok {
				return eris.Errorf("expected int32 for field %q", field)
			}
			FieldView[int32](p, field)[entity] = v
		case component.U32:
			v, ok := value.(uint32)
			if !ok {
				return eris.Errorf("expected uint32 for field %q", field)
			}
			FieldView[uint32](p, field)[entity] = v
		case component.F32:
			v, ok := value.(float32)
			if !ok {
				return eris.Errorf("expected float32 for field %q", field)
			}
			FieldView[float32](p, field)[entity] = v
		case component.F64:
			v, ok := value.(float64)
			if !ok {
				return eris.Errorf("expected float64 for field %q", field)
			}
			FieldView[float64](p, field)[entity] = v
		}
		return nil
	}
	return eris.Errorf("no such field %q", field)
}
