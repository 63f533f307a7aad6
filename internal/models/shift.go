package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShiftStatus defines cash session states
type ShiftStatus string

const (
	ShiftOpen   ShiftStatus = "open"
	ShiftClosed ShiftStatus = "closed"
)

// Shift is one cash-drawer session. Exactly one shift may be open at a
// time; totals and variances are computed once at close.
type Shift struct {
	ID       string      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Number   int64       `gorm:"index" json:"number"`
	Cashier  string      `gorm:"not null" json:"cashier"`
	Status   ShiftStatus `gorm:"type:varchar(20);default:'open';index" json:"status"`
	OpenedAt time.Time   `json:"opened_at"`
	ClosedAt *time.Time  `json:"closed_at,omitempty"`

	StartCash    float64 `gorm:"default:0" json:"start_cash"`
	DeclaredCash float64 `json:"declared_cash"`
	DeclaredCard float64 `json:"declared_card"`

	TotalSales    float64 `json:"total_sales"`
	TotalCash     float64 `json:"total_cash"`
	TotalCard     float64 `json:"total_card"`
	TotalTransfer float64 `json:"total_transfer"`
	TotalDebt     float64 `json:"total_debt"`
	ExpectedCash  float64 `json:"expected_cash"`
	DiffCash      float64 `json:"diff_cash"`
	DiffCard      float64 `json:"diff_card"`

	Dirty     bool      `gorm:"default:true" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Shift) TableName() string { return "shifts" }

// BeforeCreate assigns a local ID
func (s *Shift) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
