// Package ecslog provides zerolog-based structured logging helpers for
// world lifecycle and refresh events, grounded on cardinal/log's
// event-builder style: small functions that populate a *zerolog.Event and
// Send it, rather than returning formatted strings.
package ecslog

import (
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// New builds the default logger: console-friendly output at info level,
// matching the teacher's zerolog.ConsoleWriter demo setup.
func New() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

// WithWorldID returns a sub-logger tagged with this world instance's id,
// so log lines from concurrently running worlds (in tests, or multiple
// demo runs) can be told apart.
func WithWorldID(logger zerolog.Logger, id uuid.UUID) zerolog.Logger {
	return logger.With().Str("world_id", id.String()).Logger()
}

// StageTransition logs a world lifecycle state change.
func StageTransition(logger *zerolog.Logger, from, to string) {
	logger.Info().
		Str("from_stage", string(from)).
		Str("to_stage", string(to)).
		Msg("world stage transition")
}

// RefreshSummary logs one refresh cycle's effect: how many archetypes
// exist and whether changed bitsets were cleared.
func RefreshSummary(logger *zerolog.Logger, archetypeCount int, retainedChanged bool) {
	logger.Debug().
		Int("archetype_count", archetypeCount).
		Bool("retained_changed", retainedChanged).
		Msg("world refresh complete")
}

// EntityDestroyed logs an entity's removal and the components it was
// carrying at the time.
func EntityDestroyed(logger *zerolog.Logger, entity int, componentNames []string) {
	arr := zerolog.Arr()
	for _, name := range componentNames {
		arr = arr.Str(name)
	}
	logger.Debug().
		Int("entity_id", entity).
		Array("components", arr).
		Msg("entity destroyed")
}

// ComponentMutation logs an add/remove-component-to-entity operation.
func ComponentMutation(logger *zerolog.Logger, op, componentName string, entity int) {
	logger.Debug().
		Str("op", op).
		Str("component", componentName).
		Int("entity_id", entity).
		Msg("component mutation")
}
