package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// StaffRole defines staff roles
type StaffRole string

const (
	RoleWaiter  StaffRole = "waiter"
	RoleCashier StaffRole = "cashier"
	RoleAdmin   StaffRole = "admin"
)

// Staff is a waiter or cashier identified on the terminal by a short PIN
type Staff struct {
	ID      string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name    string    `gorm:"not null;index" json:"name"`
	Role    StaffRole `gorm:"type:varchar(20);default:'waiter'" json:"role"`
	PinHash string    `json:"-"`
	Active  bool      `gorm:"default:true" json:"active"`

	Dirty     bool       `gorm:"default:true" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (Staff) TableName() string { return "staff" }

// BeforeCreate assigns a local ID
func (s *Staff) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// SetPIN hashes and stores the terminal PIN
func (s *Staff) SetPIN(pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), 10)
	if err != nil {
		return err
	}
	s.PinHash = string(hash)
	return nil
}

// CheckPIN compares a PIN against the stored hash
func (s *Staff) CheckPIN(pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(s.PinHash), []byte(pin)) == nil
}
