// Package component implements Component descriptors: the immutable,
// world-independent definition of a named, optionally-schema'd piece of
// per-entity data.
package component

import (
	"github.com/rotisserie/eris"
)

// Reserved names rejected at construction, mirroring the source's reserved
// symbolic keys (spec.md §6, §9): "id" is reserved for the entity index
// itself, and the three sentinel tokens below stand in for the source's
// module-scoped hidden-method keys, made first-class here instead.
const (
	reservedID             = "id"
	reservedPartitionKey   = "__partition__"
	reservedInitHookKey    = "__init_hook__"
	reservedDestroyHookKey = "__destroy_hook__"
)

var reservedNames = map[string]struct{}{
	reservedID:             {},
	reservedPartitionKey:   {},
	reservedInitHookKey:    {},
	reservedDestroyHookKey: {},
}

// ErrReservedName is returned when a component or field name collides with
// a reserved token, and when the component name is empty.
var ErrReservedName = eris.New("reserved name")

// Spec is the construction argument for a Descriptor.
type Spec struct {
	Name string
	// Schema maps field name to element type. A nil or empty Schema marks
	// the component as a tag: no storage, only an ownership bit.
	Schema map[string]ElementType
	// MaxEntities is advisory only; the core never enforces it as a hard
	// cap on adds (spec.md §9).
	MaxEntities *uint32
}

// Descriptor is an immutable component definition, shareable across
// multiple Worlds. A Descriptor does not itself hold storage; each World
// binds a Descriptor to a world-local Instance.
type Descriptor struct {
	name        string
	schema      Schema
	maxEntities *uint32
	partition   PartitionDescriptor
}

// New validates spec and returns a frozen Descriptor.
func New(spec Spec) (*Descriptor, error) {
	if spec.Name == "" {
		return nil, eris.Wrap(ErrReservedName, "component name must not be empty")
	}
	if _, bad := reservedNames[spec.Name]; bad {
		return nil, eris.Wrapf(ErrReservedName, "component name %q is reserved", spec.Name)
	}
	for field := range spec.Schema {
		if _, bad := reservedNames[field]; bad {
			return nil, eris.Wrapf(ErrReservedName, "field name %q is reserved", field)
		}
	}

	schema := NewSchema(spec.Schema)
	return &Descriptor{
		name:        spec.Name,
		schema:      schema,
		maxEntities: spec.MaxEntities,
		partition:   derivePartitionDescriptor(schema),
	}, nil
}

// Name returns the component's unique (within a world) name.
func (d *Descriptor) Name() string { return d.name }

// Schema returns the component's field schema, or nil for a tag.
func (d *Descriptor) Schema() Schema { return d.schema }

// IsTag reports whether this descriptor has no schema (ownership bit only).
func (d *Descriptor) IsTag() bool { return d.schema.IsTag() }

// MaxEntities returns the advisory entity cap, or nil if unset.
func (d *Descriptor) MaxEntities() *uint32 { return d.maxEntities }

// Partition returns the derived partition layout for non-tag components.
func (d *Descriptor) Partition() PartitionDescriptor { return d.partition }

// String renders the descriptor for logging and test failure messages.
func (d *Descriptor) String() string {
	if d.IsTag() {
		return d.name + "(tag)"
	}
	return d.name
}
