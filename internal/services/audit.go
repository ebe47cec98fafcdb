package services

import (
	"context"
	"log/slog"

	"fintrack/internal/amqp"
)

// publishAudit sends an audit message when a broker is configured. Failures
// are logged and swallowed: the operation that produced the event already
// committed.
func publishAudit(ctx context.Context, client *amqp.Client, event, userID, resourceID, detail string) {
	if client == nil {
		return
	}
	msg := amqp.NewAuditMessage(event, userID, resourceID, detail)
	if err := client.PublishAudit(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish audit message",
			"event", event, "user_id", userID, "error", err)
	}
}
