package amqp

import (
	"encoding/json"
	"time"
)

// Audit event names published by the API and consumed by the audit worker.
const (
	EventRegister           = "auth.register"
	EventLoginSuccess       = "auth.login.success"
	EventLoginFailure       = "auth.login.failure"
	EventTokenRefresh       = "auth.token.refresh"
	EventOwnershipRejected  = "resource.ownership.rejected"
	EventTransactionCreated = "transaction.created"
	EventTransactionUpdated = "transaction.updated"
	EventTransactionDeleted = "transaction.deleted"
	EventBudgetCreated      = "budget.created"
)

// AuditMessage is the lightweight payload on the audit queue. It carries
// identifiers only; the worker persists it as-is without fetching anything.
type AuditMessage struct {
	Event      string    `json:"event"`
	UserID     string    `json:"user_id,omitempty"`
	ResourceID string    `json:"resource_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewAuditMessage(event, userID, resourceID, detail string) *AuditMessage {
	return &AuditMessage{
		Event:      event,
		UserID:     userID,
		ResourceID: resourceID,
		Detail:     detail,
		Timestamp:  time.Now().UTC(),
	}
}

func (m *AuditMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AuditMessageFromJSON(data []byte) (*AuditMessage, error) {
	var msg AuditMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
