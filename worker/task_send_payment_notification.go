package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/devphaseX/voltvista-payments/internal/mailer"
	"github.com/devphaseX/voltvista-payments/internal/store"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

const TaskSendPaymentNotification = "task:send_payment_notification"

type PayloadSendPaymentNotification struct {
	RecordID          string         `json:"record_id"`
	Provider          store.Provider `json:"provider"`
	ProviderPaymentID string         `json:"provider_payment_id"`
}

func (rt *RedisTaskDistributor) DistributeTaskSendPaymentNotification(ctx context.Context, payload *PayloadSendPaymentNotification, opts ...asynq.Option) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TaskSendPaymentNotification, jsonPayload, opts...)

	taskInfo, err := rt.client.EnqueueContext(ctx,
		task,
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
		asynq.TaskID(payload.RecordID),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			rt.logger.Info("message", "task already enqueued", "type", TaskSendPaymentNotification, "id", payload.RecordID)
			return nil
		}
		return err
	}

	rt.logger.Info(
		"message", "enqueued task",
		"type", taskInfo.Type,
		"queue", taskInfo.Queue,
		"max_retry", taskInfo.MaxRetry,
	)

	return nil
}

// PaymentRecorded enqueues the notification for a newly stored record.
func (rt *RedisTaskDistributor) PaymentRecorded(ctx context.Context, record *store.PaymentRecord) error {
	return rt.DistributeTaskSendPaymentNotification(ctx, &PayloadSendPaymentNotification{
		RecordID:          record.ID,
		Provider:          record.Provider,
		ProviderPaymentID: record.ProviderPaymentID,
	})
}

type paymentNotificationData struct {
	AppName           string
	Provider          store.Provider
	Purpose           store.Purpose
	Amount            string
	Currency          string
	ProviderPaymentID string
	RecordID          string
	CreatedAt         string
	Email             string
	Notes             string
}

func (processor *RedisTaskProcessor) ProcessTaskSendPaymentNotification(ctx context.Context, task *asynq.Task) error {
	var payload PayloadSendPaymentNotification
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	record, err := processor.store.Payments.GetByProviderPaymentID(ctx, payload.Provider, payload.ProviderPaymentID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return fmt.Errorf("payment record %s not found: %w", payload.RecordID, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to fetch payment record: %w", err)
	}

	data := paymentNotificationData{
		AppName:           processor.appName,
		Provider:          record.Provider,
		Purpose:           record.Purpose,
		Amount:            decimal.NewFromFloat(record.Amount).StringFixed(2),
		Currency:          record.Currency,
		ProviderPaymentID: record.ProviderPaymentID,
		RecordID:          record.ID,
		CreatedAt:         record.CreatedAt.UTC().Format(time.RFC3339),
		Email:             record.Email,
		Notes:             record.Notes,
	}

	recipients := []string{processor.ownerAddress}
	if record.Email != "" && record.Email != processor.ownerAddress {
		recipients = append(recipients, record.Email)
	}

	err = processor.mailClient.Send(&mailer.MailOption{
		TemplateFile: mailer.PaymentNotificationTemplate,
		To:           recipients,
		ReplyTo:      record.Email,
	}, data)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	processor.logger.Info("message", "payment notification sent", "record_id", record.ID, "recipients", len(recipients))

	return nil
}
