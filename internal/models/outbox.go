package models

import (
	"time"

	"gorm.io/datatypes"
)

// Outbox actions
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// OutboxEntry is one pending mutation awaiting delivery to the remote
// authority. It is appended in the same transaction as the mutation it
// describes and deleted only after the whole batch it was sent in is
// confirmed accepted. (entity_type, entity_id, action) is the remote
// idempotency key.
type OutboxEntry struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	EntityType string         `gorm:"type:varchar(50);not null;index" json:"entity_type"`
	EntityID   string         `gorm:"type:varchar(64);not null" json:"entity_id"`
	Action     string         `gorm:"type:varchar(20);not null" json:"action"`
	Payload    datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (OutboxEntry) TableName() string { return "outbox" }
