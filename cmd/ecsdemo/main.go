// Command ecsdemo exercises a World's full lifecycle end to end over a
// small position/velocity/frozen component set, grounded on cardinal's
// own demo-oriented StartGame flow, minus the HTTP server and game loop.
package main

import (
	"github.com/rs/zerolog"

	"pkg.ecscore.dev/ecscore/component"
	"pkg.ecscore.dev/ecscore/ecslog"
	"pkg.ecscore.dev/ecscore/ecsworld"
	"pkg.ecscore.dev/ecscore/query"
)

func main() {
	cfg := loadConfig()

	logger := ecslog.New()
	if cfg.Verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	posDesc, err := component.New(component.Spec{
		Name: "Position",
		Schema: map[string]component.ElementType{
			"x": component.F32,
			"y": component.F32,
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build Position component")
	}

	velDesc, err := component.New(component.Spec{
		Name: "Velocity",
		Schema: map[string]component.ElementType{
			"x": component.F32,
			"y": component.F32,
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build Velocity component")
	}

	frozenDesc, err := component.New(component.Spec{Name: "Frozen"})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build Frozen component")
	}

	world, err := ecsworld.New(
		cfg.WorldCapacity,
		[]*component.Descriptor{posDesc, velDesc, frozenDesc},
		ecsworld.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build world")
	}

	if err := world.Init(); err != nil {
		logger.Fatal().Err(err).Msg("failed to init world")
	}
	defer func() {
		if err := world.Destroy(); err != nil {
			logger.Error().Err(err).Msg("failed to destroy world")
		}
	}()

	moving, err := world.Entities().Create()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create entity")
	}
	if _, err := world.Components().AddToEntity(moving, posDesc, map[string]any{"x": float32(0), "y": float32(0)}); err != nil {
		logger.Fatal().Err(err).Msg("failed to add Position")
	}
	if _, err := world.Components().AddToEntity(moving, velDesc, map[string]any{"x": float32(1), "y": float32(0)}); err != nil {
		logger.Fatal().Err(err).Msg("failed to add Velocity")
	}

	frozen, err := world.Entities().Create()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create entity")
	}
	if _, err := world.Components().AddToEntity(frozen, posDesc, map[string]any{"x": float32(5), "y": float32(5)}); err != nil {
		logger.Fatal().Err(err).Msg("failed to add Position")
	}
	if _, err := world.Components().AddToEntity(frozen, frozenDesc, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to add Frozen")
	}

	movers, err := query.New([]*component.Descriptor{posDesc, velDesc}, nil, []*component.Descriptor{frozenDesc})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build movers query")
	}

	entities, err := world.Entities().Query(movers)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to run movers query")
	}

	for _, e := range entities {
		pos, err := world.Components().GetEntityData(e, posDesc)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to read position")
		}
		vel, err := world.Components().GetEntityData(e, velDesc)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to read velocity")
		}
		next := map[string]any{
			"x": pos["x"].(float32) + vel["x"].(float32),
			"y": pos["y"].(float32) + vel["y"].(float32),
		}
		if err := world.Components().SetEntityData(e, posDesc, next); err != nil {
			logger.Fatal().Err(err).Msg("failed to write position")
		}
		logger.Info().Int("entity", e).Interface("position", next).Msg("moved entity")
	}

	if err := world.Refresh(false); err != nil {
		logger.Fatal().Err(err).Msg("failed to refresh world")
	}
}
