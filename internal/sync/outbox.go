package sync

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tezpos/tezpos/internal/models"
)

// Entity type names on the wire. The remote authority keys idempotency on
// (dataType, id, action).
const (
	EntityTable       = "tables"
	EntityProduct     = "products"
	EntitySale        = "sales"
	EntityShift       = "shifts"
	EntitySupply      = "supplies"
	EntityMovement    = "stock-movements"
	EntityReservation = "reservations"
	EntityCustomer    = "customers"
)

// Enqueue appends an outbox entry inside the transaction that produced the
// mutation. Both commit or neither does: the entry can never be orphaned
// from its cause, nor the cause commit without the entry.
func Enqueue(tx *gorm.DB, entityType, entityID, action string, payload interface{}) error {
	snapshot, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to snapshot %s %s: %w", entityType, entityID, err)
	}

	entry := models.OutboxEntry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Payload:    datatypes.JSON(snapshot),
	}
	return tx.Create(&entry).Error
}
