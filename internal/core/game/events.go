package game

import (
	"github.com/zeusync/rifts/internal/core/events/bus"
	"github.com/zeusync/rifts/internal/core/models"
	"github.com/zeusync/rifts/internal/core/observability/log"
	"github.com/zeusync/rifts/internal/core/systems/physics"
)

const (
	EventPlayerHealthChanged = "player.health_changed"
	EventPlayerDied          = "player.died"
	EventEnemyKilled         = "enemy.killed"
	EventEnemySpawned        = "enemy.spawned"
	EventRiftOpened          = "rift.opened"
	EventGemCollected        = "gem.collected"
	EventStateChanged        = "state.changed"
)

type PlayerHealthChanged struct {
	Current float64
	Max     float64
}

type PlayerDied struct {
	Position physics.Vec2
}

type EnemyKilled struct {
	Entity     models.EntityID
	Position   physics.Vec2
	GemDropped bool
	Score      int
}

type EnemySpawned struct {
	Rift      models.EntityID
	Position  physics.Vec2
	Remaining int
}

type RiftOpened struct {
	Position physics.Vec2
}

type GemCollected struct {
	Value float64
	Total float64
}

type StateChanged struct {
	From GameState
	To   GameState
}

// eventLogger is a bus observer writing every delivered event at debug level.
type eventLogger struct {
	logger log.Log
}

func (o eventLogger) OnPublish(string, bus.Event) {}

func (o eventLogger) OnDelivered(eventType string, handlers int, err error) {
	if err != nil {
		o.logger.Warn("Event handler failed",
			log.String("event", eventType),
			log.Int("handlers", handlers),
			log.Error(err))
		return
	}
	o.logger.Debug("Event delivered",
		log.String("event", eventType),
		log.Int("handlers", handlers))
}
