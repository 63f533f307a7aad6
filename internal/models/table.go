package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TableStatus defines possible table states
type TableStatus string

const (
	TableFree     TableStatus = "free"
	TableOccupied TableStatus = "occupied"
	TablePayment  TableStatus = "payment"
)

// Hall groups tables into a physical room
type Hall struct {
	ID        string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (Hall) TableName() string { return "halls" }

// BeforeCreate assigns a local ID so the remote side never mints one
func (h *Hall) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return nil
}

// Table represents a dining table and its current occupancy state.
// TotalAmount is a denormalized running sum over the table's live order
// items; status=free always implies zero total, guests and check number.
type Table struct {
	ID          string      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	HallID      string      `gorm:"index" json:"hall_id"`
	Name        string      `gorm:"not null;index" json:"name"`
	Capacity    int         `gorm:"default:4" json:"capacity"`
	Status      TableStatus `gorm:"type:varchar(20);default:'free';index" json:"status"`
	StartTime   *time.Time  `json:"start_time,omitempty"`
	TotalAmount float64     `gorm:"default:0" json:"total_amount"`
	CheckNumber int64       `gorm:"default:0" json:"check_number"`
	WaiterID    *string     `gorm:"type:varchar(64)" json:"waiter_id,omitempty"`
	WaiterName  string      `json:"waiter_name"`
	Guests      int         `gorm:"default:0" json:"guests"`

	Dirty     bool       `gorm:"default:true" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (Table) TableName() string { return "tables" }

// BeforeCreate assigns a local ID
func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// Reset clears occupancy state back to a free table
func (t *Table) Reset() {
	t.Status = TableFree
	t.StartTime = nil
	t.TotalAmount = 0
	t.CheckNumber = 0
	t.WaiterID = nil
	t.WaiterName = ""
	t.Guests = 0
}

// Counter is a persisted monotonic sequence (check numbers)
type Counter struct {
	Name  string `gorm:"primaryKey;type:varchar(50)" json:"name"`
	Value int64  `gorm:"default:0" json:"value"`
}

func (Counter) TableName() string { return "counters" }

// CounterCheckNumber names the check number sequence
const CounterCheckNumber = "check_number"
