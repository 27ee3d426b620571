package worker

import (
	"context"

	"github.com/devphaseX/voltvista-payments/internal/store"
	"github.com/hibiken/asynq"
)

type TaskDistributor interface {
	DistributeTaskSendPaymentNotification(ctx context.Context, payload *PayloadSendPaymentNotification, opts ...asynq.Option) error
	PaymentRecorded(ctx context.Context, record *store.PaymentRecord) error
	Close() error
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type RedisTaskDistributor struct {
	logger asynq.Logger
	client enqueuer
}

func NewTaskDistributor(redisOpt asynq.RedisClientOpt, logger asynq.Logger) TaskDistributor {
	client := asynq.NewClient(redisOpt)

	return &RedisTaskDistributor{
		logger: logger,
		client: client,
	}
}

// Close releases the underlying redis connection.
func (rt *RedisTaskDistributor) Close() error {
	if c, ok := rt.client.(*asynq.Client); ok {
		return c.Close()
	}
	return nil
}
