package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WebhookEvent is the dedup ledger for provider completion notifications.
// The unique (provider, event_id) index is what absorbs at-least-once
// delivery: a second insert for the same event fails and the caller treats
// the event as already processed. Rows are pruned after the retention
// window, which is sized to outlast provider retry schedules.
type WebhookEvent struct {
	gorm.Model
	Provider    string         `json:"provider" gorm:"size:32;not null;uniqueIndex:ux_webhook_events_provider_event,priority:1"`
	EventID     string         `json:"event_id" gorm:"size:128;not null;uniqueIndex:ux_webhook_events_provider_event,priority:2"`
	EventType   string         `json:"event_type" gorm:"size:64"`
	Payload     datatypes.JSON `json:"-"`
	ProcessedAt time.Time      `json:"processed_at"`
}
