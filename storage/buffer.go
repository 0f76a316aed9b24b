// Package storage implements the partitioned component buffer and the
// component registry: per-component ownership/changed tracking, typed
// struct-of-arrays views, and a write-through proxy.
package storage

import (
	"unsafe"

	"pkg.ecscore.dev/ecscore/component"
)

// Numeric constrains the eight element-type kinds a schema field may use.
type Numeric interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~float32 | ~float64
}

// Partition is the byte-buffer region owned by one non-tag component. Its
// backing []byte is subdivided, field by field in schema order, into
// capacity-sized contiguous runs — struct-of-arrays layout, laid out
// sequentially rather than interleaved per entity.
type Partition struct {
	capacity int
	data     []byte
	offset   map[string]int
	layout   component.PartitionDescriptor
}

// NewPartition allocates a zeroed partition sized for capacity entities
// according to desc. Fields are laid out in schema order, but each field's
// start is padded up to its own element size first: schema fields are
// name-sorted, so a wide field (e.g. f64) can otherwise follow a narrow one
// (i8) at an offset unaligned for its type when capacity is odd, which is
// undefined behavior for the unsafe.Slice cast in FieldView on
// strict-alignment targets.
func NewPartition(capacity int, desc component.PartitionDescriptor) *Partition {
	offsets := make(map[string]int, len(desc.Fields))
	total := 0
	for _, f := range desc.Fields {
		if align := f.Type.Size(); align > 0 {
			if rem := total % align; rem != 0 {
				total += align - rem
			}
		}
		offsets[f.Name] = total
		total += capacity * f.Type.Size()
	}
	return &Partition{
		capacity: capacity,
		data:     make([]byte, total),
		offset:   offsets,
		layout:   desc,
	}
}

// FieldView returns the typed, capacity-length array view for field, or nil
// if the partition has no such field. T is not checked against the field's
// declared element type: the caller must request the type the schema
// declared for that field.
func FieldView[T Numeric](p *Partition, field string) []T {
	if p.capacity == 0 {
		return []T{}
	}
	off, ok := p.offset[field]
	if !ok {
		return nil
	}
	ptr := unsafe.Pointer(&p.data[off])
	return unsafe.Slice((*T)(ptr), p.capacity)
}

// Fields returns a name-keyed map of the partition's typed views, boxed as
// `any`. Direct access through this map bypasses change tracking — it is
// meant for bulk/debug inspection, not hot-path writes.
func (p *Partition) Fields() map[string]any {
	out := make(map[string]any, len(p.layout.Fields))
	for _, f := range p.layout.Fields {
		switch f.Type {
		case component.I8:
			out[f.Name] = FieldView[int8](p, f.Name)
		case component.U8:
			out[f.Name] = FieldView[uint8](p, f.Name)
		case component.I16:
			out[f.Name] = FieldView[int16](p, f.Name)
		case component.U16:
			out[f.Name] = FieldView[uint16](p, f.Name)
		case component.I32:
			out[f.Name] = FieldView[int32](p, f.Name)
		case component.U32:
			out[f.Name] = FieldView[uint32](p, f.Name)
		case component.F32:
			out[f.Name] = FieldView[float32](p, f.Name)
		case component.F64:
			out[f.Name] = FieldView[float64](p, f.Name)
		}
	}
	return out
}

// Capacity returns the number of entity slots this partition was sized for.
func (p *Partition) Capacity() int {
	return p.capacity
}
