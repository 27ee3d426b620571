package worker

import (
	"context"

	"github.com/devphaseX/voltvista-payments/internal/mailer"
	"github.com/devphaseX/voltvista-payments/internal/store"
	"github.com/hibiken/asynq"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

type TaskProcessor interface {
	Start() error
	Close()
	ProcessTaskSendPaymentNotification(ctx context.Context, task *asynq.Task) error
}

type RedisTaskProcessor struct {
	server       *asynq.Server
	store        *store.Storage
	logger       asynq.Logger
	mailClient   mailer.Client
	appName      string
	ownerAddress string
}

func NewRedisTaskProcessor(redisOpt asynq.RedisClientOpt, store *store.Storage, mailClient mailer.Client, appName, ownerAddress string, logger asynq.Logger) TaskProcessor {
	server := asynq.NewServer(redisOpt, asynq.Config{
		Queues: map[string]int{
			QueueCritical: 10,
			QueueDefault:  5,
		},

		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error(
				"message", "failed to process task", "type",
				task.Type(), "payload", string(task.Payload()),
				"err", err,
			)
		}),
		Concurrency: 10,
		Logger:      logger,
	})

	return &RedisTaskProcessor{
		server:       server,
		store:        store,
		mailClient:   mailClient,
		appName:      appName,
		ownerAddress: ownerAddress,
		logger:       logger,
	}
}

func (processor *RedisTaskProcessor) Start() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskSendPaymentNotification, processor.ProcessTaskSendPaymentNotification)

	return processor.server.Start(mux)
}

func (processor *RedisTaskProcessor) Close() {
	processor.server.Shutdown()
}
