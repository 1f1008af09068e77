package notify

import (
	"context"
	"encoding/json"
	"time"
)

// Notification categories emitted by the engine.
const (
	CategorySLAWarning    = "sla_warning"
	CategorySLAOverdue    = "sla_overdue"
	CategorySLAEscalation = "sla_escalation"
)

// Notification is one outbound message for a recipient actor.
// Delivery is fire-and-forget; the sink owns retries.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipientId"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	EntityType  string    `json:"entityType"`
	EntityID    string    `json:"entityId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Notifier delivers notifications to recipients.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// Encode returns the JSON representation of a notification.
func Encode(n Notification) ([]byte, error) {
	return json.Marshal(n)
}

// Decode parses a JSON payload into a Notification.
func Decode(payload []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return Notification{}, err
	}
	return n, nil
}
