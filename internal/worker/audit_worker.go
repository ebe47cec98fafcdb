// Package worker persists audit messages consumed from the broker. The API
// publishes and forgets; this worker is the only writer of the audit_events
// table.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/storage"
)

type AuditWorker struct {
	storage *storage.SQLiteRepository
}

func NewAuditWorker(storage *storage.SQLiteRepository) *AuditWorker {
	return &AuditWorker{storage: storage}
}

// HandleAuditMessage stores one audit message. An error here makes the
// consumer requeue the delivery.
func (w *AuditWorker) HandleAuditMessage(ctx context.Context, msg *amqp.AuditMessage) error {
	slog.DebugContext(ctx, "processing audit message",
		"event", msg.Event,
		"user_id", msg.UserID)

	err := w.storage.InsertAuditEvent(ctx, storage.AuditEvent{
		Event:      msg.Event,
		UserID:     msg.UserID,
		ResourceID: msg.ResourceID,
		Detail:     msg.Detail,
		OccurredAt: msg.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	slog.InfoContext(ctx, "audit event stored",
		"event", msg.Event,
		"user_id", msg.UserID,
		"resource_id", msg.ResourceID)
	return nil
}
