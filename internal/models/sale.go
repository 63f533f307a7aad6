package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sale is the immutable record of a completed checkout. Payment holds the
// structured breakdown: a plain method for single payments, per-leg amounts
// for splits.
type Sale struct {
	ID            string           `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ShiftID       string           `gorm:"index;not null" json:"shift_id"`
	TableID       string           `gorm:"index" json:"table_id"`
	TableLabel    string           `json:"table_name"`
	CheckNumber   int64            `json:"check_number"`
	TotalAmount   float64          `gorm:"not null" json:"total_amount"`
	PaymentMethod string           `gorm:"type:varchar(20);index" json:"payment_method"`
	Payment       PaymentBreakdown `gorm:"type:jsonb" json:"payment"`
	CustomerID    *string          `gorm:"type:varchar(64);index" json:"customer_id,omitempty"`
	WaiterName    string           `json:"waiter_name"`
	Guests        int              `json:"guests"`

	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`

	Dirty     bool      `gorm:"default:true" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Sale) TableName() string { return "sales" }

// BeforeCreate assigns a local ID
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// SaleItem is one sold line, derived at checkout for reporting
type SaleItem struct {
	ID        string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	SaleID    string  `gorm:"index;not null" json:"sale_id"`
	ProductID string  `gorm:"index" json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`

	CreatedAt time.Time `json:"created_at"`
}

func (SaleItem) TableName() string { return "sale_items" }

// BeforeCreate assigns a local ID
func (si *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if si.ID == "" {
		si.ID = uuid.New().String()
	}
	return nil
}
