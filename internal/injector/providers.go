package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/rifts/internal/core/config"
	"github.com/zeusync/rifts/internal/core/events/bus"
	"github.com/zeusync/rifts/internal/core/game"
	"github.com/zeusync/rifts/internal/core/observability/log"
	"github.com/zeusync/rifts/internal/server"
)

// App is the assembled binary: a simulation driven by a loop, plus the display bridge.
type App struct {
	Config     config.Config
	Logger     *log.Logger
	Simulation *game.Simulation
	Loop       *game.Loop
	Server     *server.Server
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	bus.New,
	ProvideSimulation,
	game.NewInputLatch,
	ProvideLoop,
	ProvideServer,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg config.Config) (*log.Logger, func()) {
	logger := log.NewWithEncoding(log.ParseLevel(cfg.Log.Level), cfg.Log.Encoding)
	return logger, func() { _ = logger.Sync() }
}

func ProvideSimulation(cfg config.Config, eventBus bus.EventBus, logger *log.Logger) (*game.Simulation, func(), error) {
	sim, err := game.NewSimulation(cfg, eventBus, logger)
	if err != nil {
		return nil, nil, err
	}
	return sim, func() { _ = sim.Close() }, nil
}

func ProvideLoop(sim *game.Simulation, latch *game.InputLatch, logger *log.Logger) *game.Loop {
	return game.NewLoop(sim, latch, logger)
}

func ProvideServer(cfg config.Config, loop *game.Loop, latch *game.InputLatch, logger *log.Logger) (*server.Server, func()) {
	srv := server.NewServer(server.ConfigFrom(cfg.Server), loop, latch, logger)
	return srv, func() { _ = srv.Close() }
}
