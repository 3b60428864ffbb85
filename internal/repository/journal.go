package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

const (
	DefaultJournalChannel = "tictactoe:events"
	DefaultJournalBuffer  = 64
)

// GameJournal publishes game events on a Redis channel. Record never blocks
// the game loop: events are queued and published by the Start worker, and
// dropped when the queue is full.
type GameJournal struct {
	logger  *slog.Logger
	client  *redis.Client
	channel string

	events chan *entity.GameEvent
}

func NewGameJournal(logger *slog.Logger, client *redis.Client, channel string, buffer int) *GameJournal {
	if channel == "" {
		channel = DefaultJournalChannel
	}

	if buffer < 1 {
		buffer = DefaultJournalBuffer
	}

	return &GameJournal{
		logger:  logger.With("component", "game_journal"),
		client:  client,
		channel: channel,

		events: make(chan *entity.GameEvent, buffer),
	}
}

func (that *GameJournal) Channel() string {
	return that.channel
}

// Record - queues event for publishing.
func (that *GameJournal) Record(event *entity.GameEvent) {
	select {
	case that.events <- event:
	default:
		that.logger.Warn("journal queue is full, event dropped",
			"method", "Record", "game_id", event.GameID, "type", event.Type)
	}
}

// Start - publishes queued events until ctx is canceled.
func (that *GameJournal) Start(ctx context.Context) {
	log := that.logger.With("method", "Start")

	for {
		select {
		case <-ctx.Done():
			log.Info("journal stopped")
			return
		case event := <-that.events:
			if err := that.Publish(ctx, event); err != nil {
				log.Error("failed to publish game event", "error", err)
			}
		}
	}
}

// Publish - sends one event to the channel.
func (that *GameJournal) Publish(ctx context.Context, event *entity.GameEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal game event: %w", err)
	}

	if err = that.client.Publish(ctx, that.channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish game event: %w", err)
	}

	return nil
}
