package models

import "time"

// Lifecycle states of a webhook event. Received is the only non-terminal
// state; once a row leaves it, it never changes again.
const (
	WebhookLifecycleReceived  = "received"
	WebhookLifecycleIgnored   = "ignored"
	WebhookLifecycleProcessed = "processed"
)

// WebhookEvent is the durable idempotency ledger: one row per sender-assigned
// delivery identifier, kept for audit and replay safety, never deleted.
type WebhookEvent struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	IdempotencyKey string `gorm:"type:varchar(191);not null;uniqueIndex:ux_webhook_events_idempotency_key" json:"idempotency_key"`
	Signature      string `gorm:"type:varchar(512);not null;default:''" json:"signature"`
	EventType      string `gorm:"type:varchar(100);not null;default:'';index" json:"event_type"`
	PayloadJSON    string `gorm:"type:longtext;not null" json:"payload_json"`
	Lifecycle      string `gorm:"type:varchar(20);not null;default:'received';index" json:"lifecycle"`
	// ResolvedOutcome is the order status this event produced; set only when
	// Lifecycle is processed.
	ResolvedOutcome *string `gorm:"type:varchar(20)" json:"resolved_outcome,omitempty"`
	// ClaimToken/ClaimedAt mark the attempt currently working on this event so
	// a concurrent or resumed delivery can be told apart from a stalled one.
	ClaimToken  string     `gorm:"type:varchar(64);not null;default:''" json:"-"`
	ClaimedAt   *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	ProcessedAt *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the event left the received state.
func (e *WebhookEvent) IsTerminal() bool {
	return e.Lifecycle != WebhookLifecycleReceived
}
