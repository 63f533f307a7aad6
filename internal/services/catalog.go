package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tezpos/tezpos/internal/models"
	"github.com/tezpos/tezpos/internal/notify"
	"github.com/tezpos/tezpos/internal/sync"
)

// CatalogService manages the static layout and menu: halls, tables,
// categories and products. Tables and products are synced entities, halls
// and categories stay local.
type CatalogService struct {
	deps Deps
}

// NewCatalogService creates the catalog manager
func NewCatalogService(deps Deps) *CatalogService {
	return &CatalogService{deps: deps}
}

// Halls returns all non-deleted halls
func (s *CatalogService) Halls() ([]models.Hall, error) {
	var halls []models.Hall
	err := s.deps.DB.Where("deleted_at IS NULL").Order("name ASC").Find(&halls).Error
	return halls, err
}

// CreateHall adds a hall
func (s *CatalogService) CreateHall(name string) (*models.Hall, error) {
	hall := models.Hall{Name: strings.TrimSpace(name)}
	if err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		return tx.Create(&hall).Error
	}); err != nil {
		return nil, err
	}
	return &hall, nil
}

// TableInput validates table create/update payloads
type TableInput struct {
	HallID   string `json:"hall_id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"gte=1"`
}

// CreateTable adds a free table to a hall
func (s *CatalogService) CreateTable(in TableInput) (*models.Table, error) {
	table := models.Table{
		HallID:   in.HallID,
		Name:     strings.TrimSpace(in.Name),
		Capacity: in.Capacity,
		Status:   models.TableFree,
		Dirty:    true,
	}
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		if err := tx.Create(&table).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntityTable, table.ID, models.ActionCreate, table); err != nil {
			return err
		}
		fx.notifyChange(s.deps.Bus, notify.ChangeTables, table.ID)
		fx.kickSync(s.deps.SyncKick)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return &table, nil
}

// UpdateTable edits a table's layout fields. Occupancy state is owned by
// the order engine and never touched here.
func (s *CatalogService) UpdateTable(id string, in TableInput) (*models.Table, error) {
	var table *models.Table
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		found, err := findTable(tx, nil, id)
		if err != nil {
			return err
		}
		found.HallID = in.HallID
		found.Name = strings.TrimSpace(in.Name)
		found.Capacity = in.Capacity
		found.Dirty = true
		if err := tx.Save(found).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntityTable, found.ID, models.ActionUpdate, found); err != nil {
			return err
		}
		table = found
		fx.notifyChange(s.deps.Bus, notify.ChangeTables, found.ID)
		fx.kickSync(s.deps.SyncKick)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return table, nil
}

// DeleteTable tombstones a free table. Occupied tables must be settled
// first.
func (s *CatalogService) DeleteTable(id string) error {
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		found, err := findTable(tx, nil, id)
		if err != nil {
			return err
		}
		if found.Status != models.TableFree {
			return ErrTableOccupied
		}
		now := time.Now().UTC()
		found.DeletedAt = &now
		found.Dirty = true
		if err := tx.Save(found).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntityTable, found.ID, models.ActionDelete, found); err != nil {
			return err
		}
		fx.notifyChange(s.deps.Bus, notify.ChangeTables, found.ID)
		fx.kickSync(s.deps.SyncKick)
		return nil
	})
	if err != nil {
		return err
	}
	fx.run()
	return nil
}

// Categories returns all non-deleted categories
func (s *CatalogService) Categories() ([]models.Category, error) {
	var categories []models.Category
	err := s.deps.DB.Where("deleted_at IS NULL").Order("name ASC").Find(&categories).Error
	return categories, err
}

// CreateCategory adds a category
func (s *CatalogService) CreateCategory(name string) (*models.Category, error) {
	category := models.Category{Name: strings.TrimSpace(name)}
	if err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		return tx.Create(&category).Error
	}); err != nil {
		return nil, err
	}
	return &category, nil
}

// ProductInput validates product create/update payloads
type ProductInput struct {
	CategoryID  string  `json:"category_id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Destination string  `json:"destination" validate:"omitempty,oneof=kitchen bar"`
	TrackStock  bool    `json:"track_stock"`
}

// CreateProduct adds a product to the menu
func (s *CatalogService) CreateProduct(in ProductInput) (*models.Product, error) {
	destination := in.Destination
	if destination == "" {
		destination = "kitchen"
	}
	product := models.Product{
		CategoryID:  in.CategoryID,
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Destination: destination,
		TrackStock:  in.TrackStock,
		Dirty:       true,
	}
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntityProduct, product.ID, models.ActionCreate, product); err != nil {
			return err
		}
		fx.notifyChange(s.deps.Bus, notify.ChangeProducts, product.ID)
		fx.kickSync(s.deps.SyncKick)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return &product, nil
}

// UpdateProduct edits a product. Stock is owned by the stock ledger and
// never set here.
func (s *CatalogService) UpdateProduct(id string, in ProductInput) (*models.Product, error) {
	var product *models.Product
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		found, err := findProduct(tx, id)
		if err != nil {
			return err
		}
		found.CategoryID = in.CategoryID
		found.Name = strings.TrimSpace(in.Name)
		found.Price = in.Price
		if in.Destination != "" {
			found.Destination = in.Destination
		}
		found.TrackStock = in.TrackStock
		found.Dirty = true
		if err := tx.Save(found).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntityProduct, found.ID, models.ActionUpdate, found); err != nil {
			return err
		}
		product = found
		fx.notifyChange(s.deps.Bus, notify.ChangeProducts, found.ID)
		fx.kickSync(s.deps.SyncKick)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return product, nil
}

// DeleteProduct tombstones a product. Past sale items keep their price and
// name snapshots.
func (s *CatalogService) DeleteProduct(id string) error {
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		found, err := findProduct(tx, id)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		found.DeletedAt = &now
		found.Dirty = true
		if err := tx.Save(found).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntityProduct, found.ID, models.ActionDelete, found); err != nil {
			return err
		}
		fx.notifyChange(s.deps.Bus, notify.ChangeProducts, found.ID)
		fx.kickSync(s.deps.SyncKick)
		return nil
	})
	if err != nil {
		return err
	}
	fx.run()
	return nil
}

// Products returns the menu, optionally filtered by category
func (s *CatalogService) Products(categoryID string) ([]models.Product, error) {
	q := s.deps.DB.Where("deleted_at IS NULL")
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}
	var products []models.Product
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

// Product returns one product by id
func (s *CatalogService) Product(id string) (*models.Product, error) {
	var product models.Product
	err := s.deps.DB.Where("id = ? AND deleted_at IS NULL", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
