// Package ecserr defines the named error kinds shared by every subsystem,
// mirroring cardinal/gamestate's package-level eris.New sentinels: callers
// wrap a sentinel with eris.Wrap for context instead of constructing a new
// error type per call site.
package ecserr

import "github.com/rotisserie/eris"

// Kind is the common base every named error kind derives from (spec.md §6:
// "all derive from a single base error kind").
type Kind = error

var (
	// SpecError covers malformed construction arguments: invalid Query
	// predicates and invalid World specs. Invalid Component specs are
	// reported by component.New as component.ErrReservedName instead.
	SpecError Kind = eris.New("spec error")

	// EntityNotFound is returned when an entity id is out of range or not
	// currently occupied.
	EntityNotFound Kind = eris.New("entity not found")

	// WorldStateError is returned when an operation is attempted in a
	// World lifecycle stage that does not permit it.
	WorldStateError Kind = eris.New("invalid world state")

	// ComponentNotFound is returned when a component descriptor has no
	// world-local instance.
	ComponentNotFound Kind = eris.New("component not found")

	// NoComponentsFound is returned when a World is constructed with an
	// empty component list.
	NoComponentsFound Kind = eris.New("no components found")

	// NotRegistered is returned when an archetype transition references a
	// component, or a query references a component, that the registry
	// does not recognize.
	NotRegistered Kind = eris.New("not registered")
)
