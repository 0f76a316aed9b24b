package ecsworld

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Option configures a World at construction, grounded on cardinal's
// options.Option func(w public.IWorld) pattern.
type Option func(w *World)

// WithLogger overrides the default console logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *World) { w.logger = logger }
}

// WithID pins a World's instance id instead of generating a random one.
// Mainly useful in tests that want a deterministic log correlation id.
func WithID(id uuid.UUID) Option {
	return func(w *World) { w.id = id }
}

// WithInitHook registers a function run during Init, in registration
// order, before the world transitions to Initialized. A hook error aborts
// initialization and moves the world to Errored.
func WithInitHook(hook func(*World) error) Option {
	return func(w *World) { w.initHooks = append(w.initHooks, hook) }
}

// WithDestroyHook registers a function run during Destroy, in
// registration order, before the world transitions to Destroyed.
func WithDestroyHook(hook func(*World) error) Option {
	return func(w *World) { w.destroyHooks = append(w.destroyHooks, hook) }
}
