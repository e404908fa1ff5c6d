package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"studymate-backend/internal/logger"
	"studymate-backend/internal/models"
)

// ProgressPublisher delivers generation progress to a user's open sockets.
// Publishing is best-effort and never fails the caller.
type ProgressPublisher interface {
	Publish(ctx context.Context, userID uuid.UUID, msg models.WSMessage)
}

// UserChannel is the pub/sub channel carrying one user's updates.
func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user_updates:%s", userID.String())
}

type RedisProgressPublisher struct {
	redis *redis.Client
	log   *logger.Logger
}

func NewRedisProgressPublisher(client *redis.Client, log *logger.Logger) *RedisProgressPublisher {
	return &RedisProgressPublisher{redis: client, log: log}
}

func (p *RedisProgressPublisher) Publish(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		p.log.Warn("Failed to encode progress update", "user_id", userID, "error", err)
		return
	}
	if err := p.redis.Publish(ctx, UserChannel(userID), data).Err(); err != nil {
		p.log.Warn("Failed to publish progress update", "user_id", userID, "error", err)
	}
}

type NopProgressPublisher struct{}

func (NopProgressPublisher) Publish(context.Context, uuid.UUID, models.WSMessage) {}

func statusUpdate(sessionID *uuid.UUID, topic string, step int, name string) models.WSMessage {
	return models.WSMessage{
		Type: "status_update",
		Payload: models.StatusUpdate{
			SessionID: sessionID,
			Topic:     topic,
			Step:      step,
			StepName:  name,
		},
	}
}
