package component

import "sort"

// FieldSpec names one schema field and its element type.
type FieldSpec struct {
	Name string
	Type ElementType
}

// Schema is an ordered list of fields. A nil or empty Schema marks a
// descriptor as a tag component: it owns no storage, only an ownership bit.
type Schema []FieldSpec

// NewSchema builds a Schema from a field-name-to-element-type mapping. Field
// order is not meaningful to callers, so it is normalized to ascending name
// order here, which keeps the derived PartitionDescriptor's layout
// deterministic across runs for a given field set.
func NewSchema(fields map[string]ElementType) Schema {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	schema := make(Schema, 0, len(names))
	for _, name := range names {
		schema = append(schema, FieldSpec{Name: name, Type: fields[name]})
	}
	return schema
}

// IsTag reports whether the schema describes a tag component (no fields).
func (s Schema) IsTag() bool {
	return len(s) == 0
}

// FieldLayout is one field's position and type within a partition. Index is
// the field's ordinal among its component's fields; the storage package
// turns Index into an actual byte offset once a World's entity capacity is
// known (each field gets a capacity-sized array, laid out one after the
// other, so field i's byte offset depends on the sizes of fields 0..i-1 and
// on capacity, not on Index alone).
type FieldLayout struct {
	Name  string
	Type  ElementType
	Index int
}

// PartitionDescriptor records a non-tag component's field layout and its
// total per-entity footprint in bytes. It is independent of any particular
// World's capacity; the storage package lays out one capacity-length array
// per field, so a partition takes FootprintBytes × capacity bytes plus any
// padding inserted to align a field's start.
type PartitionDescriptor struct {
	Fields         []FieldLayout
	FootprintBytes int
}

func derivePartitionDescriptor(schema Schema) PartitionDescriptor {
	desc := PartitionDescriptor{Fields: make([]FieldLayout, 0, len(schema))}
	footprint := 0
	for i, f := range schema {
		desc.Fields = append(desc.Fields, FieldLayout{Name: f.Name, Type: f.Type, Index: i})
		footprint += f.Type.Size()
	}
	desc.FootprintBytes = footprint
	return desc
}
