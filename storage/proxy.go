package storage

import (
	"github.com/rotisserie/eris"

	"pkg.ecscore.dev/ecscore/ecserr"
)

// Proxy is a cursor-like, change-tracked accessor bound to one component
// Instance. SetEntity moves the cursor; reads/writes through the
// generic Get/Set helpers below address that entity's fields in the
// Instance's partition.
//
// This is design option (c) from spec.md §9: rather than generating
// per-schema accessor code or dynamically installed getters/setters, the
// proxy exposes a typed Get/Set pair per element kind and gates every write
// through an equality check, mirroring the source's dynamic-property
// proxy without runtime codegen.
type Proxy struct {
	registry *Registry
	instance *Instance
	entity   int
}

// NewProxy binds a Proxy to inst. The cursor starts unset; SetEntity must
// be called before Get/Set.
func NewProxy(registry *Registry, inst *Instance) *Proxy {
	return &Proxy{registry: registry, instance: inst, entity: -1}
}

// SetEntity moves the cursor to entity, range-checked against the
// registry's capacity.
func (p *Proxy) SetEntity(entity int) error {
	if entity < 0 || entity >= p.registry.capacity {
		return eris.Wrapf(ecserr.EntityNotFound, "entity %d out of range [0,%d)", entity, p.registry.capacity)
	}
	p.entity = entity
	return nil
}

// Entity returns the cursor's current entity.
func (p *Proxy) Entity() int { return p.entity }

// Instance returns the component Instance this proxy is bound to.
func (p *Proxy) Instance() *Instance { return p.instance }

// Get reads field F (of numeric kind T) at the proxy's current entity.
// Direct access through Instance().Partition()'s views reads the same data
// but bypasses nothing — only writes need gating.
func Get[T Numeric](p *Proxy, field string) T {
	view := FieldView[T](p.instance.partition, field)
	return view[p.entity]
}

// Set writes field F (of numeric kind T) at the proxy's current entity. If
// the new value differs from the stored value, the write is applied and
// the component's changed bit is set for this entity; if the value is
// unchanged, nothing is written and the changed bit is left untouched.
func Set[T Numeric](p *Proxy, field string, value T) {
	view := FieldView[T](p.instance.partition, field)
	if view[p.entity] == value {
		return
	}
	view[p.entity] = value
	p.registry.markChanged(p.instance.id, p.entity)
}
