// Package query compiles component predicates into archetype-mask
// matchers and caches their entity results, keyed by a monotonic version
// that the world bumps on every mutation that could change which entities
// match.
package query

import (
	"github.com/rotisserie/eris"

	"pkg.ecscore.dev/ecscore/component"
	"pkg.ecscore.dev/ecscore/ecserr"
)

// Predicate is a user-authored, world-independent query specification: the
// three descriptor sets a caller wants matched against an entity's
// component set. It is compiled into a world-local Instance by Manager.
type Predicate struct {
	all, any, none []*component.Descriptor
	strict         bool
}

// Option configures Predicate construction.
type Option func(*Predicate)

// Strict makes an unknown descriptor (one the target world never
// registered) a NotRegistered error at compile time, instead of the
// default behavior of silently dropping it from the compiled mask.
func Strict() Option {
	return func(p *Predicate) { p.strict = true }
}

// New validates and constructs a Predicate. Duplicates within a single set
// are silently collapsed; the three sets must still be pairwise disjoint
// from each other, and at least one must be non-empty.
func New(all, any, none []*component.Descriptor, opts ...Option) (*Predicate, error) {
	all = dedup(all)
	any = dedup(any)
	none = dedup(none)

	p := &Predicate{all: all, any: any, none: none}
	for _, opt := range opts {
		opt(p)
	}

	if len(all) == 0 && len(any) == 0 && len(none) == 0 {
		return nil, eris.Wrap(ecserr.SpecError, "query predicate must name at least one component")
	}

	seen := make(map[*component.Descriptor]string, len(all)+len(any)+len(none))
	for _, d := range all {
		seen[d] = "all"
	}
	for _, d := range any {
		if other, dup := seen[d]; dup {
			return nil, eris.Wrapf(ecserr.SpecError, "component %q appears in both %q and \"any\"", d.Name(), other)
		}
		seen[d] = "any"
	}
	for _, d := range none {
		if other, dup := seen[d]; dup {
			return nil, eris.Wrapf(ecserr.SpecError, "component %q appears in both %q and \"none\"", d.Name(), other)
		}
		seen[d] = "none"
	}

	return p, nil
}

// dedup returns descs with repeated descriptors collapsed, preserving first
// occurrence order. spec.md §3 treats a duplicate within one set as
// redundant, not an error — only cross-set overlap is rejected.
func dedup(descs []*component.Descriptor) []*component.Descriptor {
	if len(descs) < 2 {
		return descs
	}
	seen := make(map[*component.Descriptor]struct{}, len(descs))
	out := make([]*component.Descriptor, 0, len(descs))
	for _, d := range descs {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
