package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderItem is one live order line on an occupied table. Name, price and
// destination are snapshots taken at add time; later product edits do not
// retroactively change open orders. Rows are deleted on remove, return,
// checkout or cancel and only ever updated to decrement quantity on a
// partial return.
type OrderItem struct {
	ID          string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TableID     string  `gorm:"index;not null" json:"table_id"`
	ProductID   string  `gorm:"index" json:"product_id"`
	Name        string  `gorm:"not null" json:"name"`
	Price       float64 `gorm:"not null" json:"price"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	Destination string  `gorm:"type:varchar(50)" json:"destination"`
	WaiterID    *string `gorm:"type:varchar(64)" json:"waiter_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrderItem) TableName() string { return "order_items" }

// BeforeCreate assigns a local ID
func (oi *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if oi.ID == "" {
		oi.ID = uuid.New().String()
	}
	return nil
}

// Subtotal returns price * quantity for the line
func (oi *OrderItem) Subtotal() float64 {
	return oi.Price * float64(oi.Quantity)
}

// ReturnedItem is the audit row written when an order line is removed or
// partially returned before checkout
type ReturnedItem struct {
	ID          string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TableID     string  `gorm:"index" json:"table_id"`
	OrderItemID string  `gorm:"type:varchar(64)" json:"order_item_id"`
	ProductID   string  `gorm:"index" json:"product_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
	Reason      string  `json:"reason"`
	Actor       string  `json:"actor"`

	CreatedAt time.Time `json:"created_at"`
}

func (ReturnedItem) TableName() string { return "returned_items" }

// BeforeCreate assigns a local ID
func (ri *ReturnedItem) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == "" {
		ri.ID = uuid.New().String()
	}
	return nil
}

// CancelledOrder archives the full item snapshot of an order cancelled
// before checkout. No stock or financial impact, the items were never sold.
type CancelledOrder struct {
	ID          string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TableID     string         `gorm:"index" json:"table_id"`
	TableLabel  string         `json:"table_name"`
	CheckNumber int64          `json:"check_number"`
	Total       float64        `json:"total"`
	Reason      string         `json:"reason"`
	Items       datatypes.JSON `json:"items"`

	CreatedAt time.Time `json:"created_at"`
}

func (CancelledOrder) TableName() string { return "cancelled_orders" }

// BeforeCreate assigns a local ID
func (co *CancelledOrder) BeforeCreate(tx *gorm.DB) error {
	if co.ID == "" {
		co.ID = uuid.New().String()
	}
	return nil
}
