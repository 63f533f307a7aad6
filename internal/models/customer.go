package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer carries running debt and cashback balances. Both are mutated
// only by checkout and explicit payment operations, with append-only
// history rows for audit.
type Customer struct {
	ID              string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name            string  `gorm:"not null;index" json:"name"`
	Phone           string  `gorm:"index" json:"phone"`
	Debt            float64 `gorm:"default:0" json:"debt"`
	Cashback        float64 `gorm:"default:0" json:"cashback"`
	CashbackPercent float64 `gorm:"default:0" json:"cashback_percent"`

	Dirty     bool       `gorm:"default:true" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (Customer) TableName() string { return "customers" }

// BeforeCreate assigns a local ID
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// DebtStatus defines customer debt states
type DebtStatus string

const (
	DebtDue  DebtStatus = "due"
	DebtPaid DebtStatus = "paid"
)

// CustomerDebt is one outstanding amount created by a debt checkout
type CustomerDebt struct {
	ID         string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	CustomerID string     `gorm:"index;not null" json:"customer_id"`
	SaleID     *string    `gorm:"type:varchar(64)" json:"sale_id,omitempty"`
	Amount     float64    `gorm:"not null" json:"amount"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	Status     DebtStatus `gorm:"type:varchar(20);default:'due';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CustomerDebt) TableName() string { return "customer_debts" }

// BeforeCreate assigns a local ID
func (cd *CustomerDebt) BeforeCreate(tx *gorm.DB) error {
	if cd.ID == "" {
		cd.ID = uuid.New().String()
	}
	return nil
}

// DebtHistoryKind defines what produced a history row
type DebtHistoryKind string

const (
	DebtHistorySale    DebtHistoryKind = "sale"
	DebtHistoryPayment DebtHistoryKind = "payment"
)

// DebtHistory is the append-only audit trail of debt balance changes.
// Amount is signed: positive for new debt, negative for payments.
type DebtHistory struct {
	ID         string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	CustomerID string          `gorm:"index;not null" json:"customer_id"`
	Amount     float64         `gorm:"not null" json:"amount"`
	Balance    float64         `json:"balance"`
	Kind       DebtHistoryKind `gorm:"type:varchar(20)" json:"kind"`
	Note       string          `json:"note"`

	CreatedAt time.Time `json:"created_at"`
}

func (DebtHistory) TableName() string { return "debt_history" }

// BeforeCreate assigns a local ID
func (dh *DebtHistory) BeforeCreate(tx *gorm.DB) error {
	if dh.ID == "" {
		dh.ID = uuid.New().String()
	}
	return nil
}
