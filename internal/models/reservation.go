package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReservationStatus defines reservation states
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation occupies a fixed-length window starting at Time. TableID is
// nil when no table could be assigned; the reservation is accepted anyway
// and left unassigned. Deletion is a tombstone, status transitions keep the
// row in place.
type Reservation struct {
	ID           string            `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TableID      *string           `gorm:"type:varchar(64);index" json:"table_id,omitempty"`
	CustomerName string            `gorm:"not null" json:"customer_name"`
	Phone        string            `json:"phone"`
	Time         time.Time         `gorm:"not null;index" json:"time"`
	Guests       int               `gorm:"default:1" json:"guests"`
	Status       ReservationStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`
	Note         string            `json:"note"`

	Dirty     bool       `gorm:"default:true" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (Reservation) TableName() string { return "reservations" }

// BeforeCreate assigns a local ID
func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// Window returns the half-open interval [Time, Time+duration) the
// reservation occupies
func (r *Reservation) Window(duration time.Duration) (time.Time, time.Time) {
	return r.Time, r.Time.Add(duration)
}
