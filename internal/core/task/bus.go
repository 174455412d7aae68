package task

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/voicedesk/receptionist-service/pkg/logger"
	"github.com/voicedesk/receptionist-service/pkg/redis"
)

const (
	TaskChannel = "receptionist:call:summary:tasks"
)

// RedisBus implements the Bus interface using Redis Pub/Sub
type RedisBus struct {
	redisSvc redis.ServiceInterface
}

// NewRedisBus creates a new Redis-based task bus
func NewRedisBus(redisSvc redis.ServiceInterface) *RedisBus {
	return &RedisBus{redisSvc: redisSvc}
}

// Publish sends a task to the bus
func (b *RedisBus) Publish(ctx context.Context, task SummaryTask) error {
	logger.Base().Debug("Publishing summary task",
		zap.String("call_id", task.CallID),
		zap.String("business_id", task.BusinessID))
	return b.redisSvc.Publish(ctx, TaskChannel, task)
}

// Subscribe listens for tasks on the bus
func (b *RedisBus) Subscribe(ctx context.Context, handler func(SummaryTask)) error {
	logger.Base().Info("Subscribing to summary tasks")
	return b.redisSvc.Subscribe(ctx, TaskChannel, func(payload string) {
		var task SummaryTask
		if err := json.Unmarshal([]byte(payload), &task); err != nil {
			logger.Base().Error("Failed to unmarshal task payload", zap.Error(err))
			return
		}
		handler(task)
	})
}
