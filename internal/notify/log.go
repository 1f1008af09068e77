package notify

import (
	"context"

	"pipeline-backend/internal/shared/telemetry"
)

// LogSink writes notifications to the structured log. It keeps local
// development working without a broker.
type LogSink struct{}

// Send logs the notification.
func (LogSink) Send(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	telemetry.Info("notification.emit", map[string]any{
		"notification_id": n.ID,
		"recipient_id":    n.RecipientID,
		"category":        n.Category,
		"title":           n.Title,
		"entity_type":     n.EntityType,
		"entity_id":       n.EntityID,
	})
	return nil
}
