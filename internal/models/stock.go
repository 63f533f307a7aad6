package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementType defines the direction and cause of a stock movement
type MovementType string

const (
	MovementIn     MovementType = "in"
	MovementOut    MovementType = "out"
	MovementSale   MovementType = "sale"
	MovementReturn MovementType = "return"
	MovementCancel MovementType = "cancel"
)

// Increases reports whether the movement type adds stock
func (m MovementType) Increases() bool {
	return m == MovementIn || m == MovementReturn
}

// StockMovement is one append-only row of the movement log. CurrentStock is
// the authoritative balance right after the movement was applied; for any
// product the latest movement's balance equals the product's current stock.
// Rows are never mutated or deleted.
type StockMovement struct {
	ID           string       `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ProductID    string       `gorm:"index;not null" json:"product_id"`
	Quantity     float64      `gorm:"not null" json:"quantity"` // signed
	CurrentStock float64      `gorm:"not null" json:"current_stock"`
	Type         MovementType `gorm:"type:varchar(20);not null;index" json:"type"`
	Reason       string       `json:"reason"`
	Actor        string       `json:"actor"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (StockMovement) TableName() string { return "stock_movements" }

// BeforeCreate assigns a local ID
func (sm *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if sm.ID == "" {
		sm.ID = uuid.New().String()
	}
	return nil
}

// SupplyStatus defines supply document states
type SupplyStatus string

const (
	SupplyDraft     SupplyStatus = "draft"
	SupplyCompleted SupplyStatus = "completed"
)

// Supply is an incoming-stock document. Lines are mutable while draft;
// completion applies every line to inventory exactly once and freezes the
// document.
type Supply struct {
	ID          string       `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Supplier    string       `json:"supplier"`
	Status      SupplyStatus `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	Total       float64      `gorm:"default:0" json:"total"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`

	Items []SupplyItem `gorm:"foreignKey:SupplyID" json:"items,omitempty"`

	Dirty     bool      `gorm:"default:true" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Supply) TableName() string { return "supplies" }

// BeforeCreate assigns a local ID
func (s *Supply) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// SupplyItem is one line of a supply document
type SupplyItem struct {
	ID        string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	SupplyID  string  `gorm:"index;not null" json:"supply_id"`
	ProductID string  `gorm:"index;not null" json:"product_id"`
	Name      string  `json:"name"`
	Quantity  float64 `gorm:"not null" json:"quantity"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SupplyItem) TableName() string { return "supply_items" }

// BeforeCreate assigns a local ID
func (si *SupplyItem) BeforeCreate(tx *gorm.DB) error {
	if si.ID == "" {
		si.ID = uuid.New().String()
	}
	return nil
}
