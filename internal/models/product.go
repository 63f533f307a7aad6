package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups products on the menu
type Category struct {
	ID        string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (Category) TableName() string { return "categories" }

// BeforeCreate assigns a local ID
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Product is a menu item. Stock is the current balance and is only moved
// together with an appended StockMovement when TrackStock is set.
type Product struct {
	ID          string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	CategoryID  string  `gorm:"index" json:"category_id"`
	Name        string  `gorm:"not null;index" json:"name"`
	Price       float64 `gorm:"not null" json:"price"`
	Stock       float64 `gorm:"default:0" json:"stock"`
	TrackStock  bool    `gorm:"default:false" json:"track_stock"`
	Destination string  `gorm:"type:varchar(50);default:'kitchen'" json:"destination"`

	Dirty     bool       `gorm:"default:true" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (Product) TableName() string { return "products" }

// BeforeCreate assigns a local ID
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
