package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tezpos/tezpos/internal/models"
	"github.com/tezpos/tezpos/internal/notify"
	"github.com/tezpos/tezpos/internal/sync"
)

// StockService owns the movement ledger and the supply-intake workflow
type StockService struct {
	deps Deps
}

// NewStockService creates the stock ledger service
func NewStockService(deps Deps) *StockService {
	return &StockService{deps: deps}
}

// applyMovement adjusts a product's balance and appends the movement row
// whose current_stock is the authoritative post-adjustment balance. Shared
// with checkout, which records "sale" movements in its own transaction.
func applyMovement(tx *gorm.DB, product *models.Product, delta float64, mtype models.MovementType, reason, actor string) (*models.StockMovement, error) {
	product.Stock += delta
	product.Dirty = true
	if err := tx.Save(product).Error; err != nil {
		return nil, err
	}

	movement := models.StockMovement{
		ProductID:    product.ID,
		Quantity:     delta,
		CurrentStock: product.Stock,
		Type:         mtype,
		Reason:       reason,
		Actor:        actor,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, err
	}

	if err := sync.Enqueue(tx, sync.EntityProduct, product.ID, models.ActionUpdate, product); err != nil {
		return nil, err
	}
	if err := sync.Enqueue(tx, sync.EntityMovement, movement.ID, models.ActionCreate, movement); err != nil {
		return nil, err
	}
	return &movement, nil
}

// AddSupply is the direct manual adjustment path: receiving outside the
// draft workflow, spoilage write-offs and similar corrections.
func (s *StockService) AddSupply(productID string, qty float64, mtype models.MovementType, reason, actor string) (*models.StockMovement, error) {
	if qty <= 0 {
		return nil, ErrInvalidAmount
	}

	delta := qty
	switch mtype {
	case models.MovementIn, models.MovementReturn:
	case models.MovementOut, models.MovementSale, models.MovementCancel:
		delta = -qty
	default:
		return nil, ErrInvalidMovementType
	}

	var result *models.StockMovement
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		product, err := findProduct(tx, productID)
		if err != nil {
			return err
		}
		movement, err := applyMovement(tx, product, delta, mtype, reason, actor)
		if err != nil {
			return err
		}
		result = movement

		fx.notifyChange(s.deps.Bus, notify.ChangeStock, product.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return result, nil
}

// CreateSupply opens a new draft supply document
func (s *StockService) CreateSupply(supplier string) (*models.Supply, error) {
	supply := models.Supply{Supplier: supplier, Status: models.SupplyDraft}

	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		if err := tx.Create(&supply).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntitySupply, supply.ID, models.ActionCreate, supply); err != nil {
			return err
		}
		fx.notifyChange(s.deps.Bus, notify.ChangeSupplies, supply.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return &supply, nil
}

// AddSupplyItem adds a line to a draft supply and recomputes its total
func (s *StockService) AddSupplyItem(supplyID, productID string, qty, price float64) (*models.SupplyItem, error) {
	if qty <= 0 {
		return nil, ErrInvalidAmount
	}

	var item models.SupplyItem
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		supply, err := findDraftSupply(tx, supplyID)
		if err != nil {
			return err
		}
		product, err := findProduct(tx, productID)
		if err != nil {
			return err
		}

		item = models.SupplyItem{
			SupplyID:  supply.ID,
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  qty,
			Price:     price,
			Total:     qty * price,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		if err := s.recomputeTotal(tx, supply, fx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return &item, nil
}

// RemoveSupplyItem removes a line from a draft supply and recomputes its total
func (s *StockService) RemoveSupplyItem(itemID string) error {
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		var item models.SupplyItem
		err := tx.Where("id = ?", itemID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSupplyItemNotFound
		}
		if err != nil {
			return err
		}

		supply, err := findDraftSupply(tx, item.SupplyID)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.SupplyItem{}, "id = ?", item.ID).Error; err != nil {
			return err
		}
		return s.recomputeTotal(tx, supply, fx)
	})
	if err != nil {
		return err
	}
	fx.run()
	return nil
}

// CompleteSupply applies every line to inventory and freezes the document.
// One-way: completing an empty or already-completed supply fails.
func (s *StockService) CompleteSupply(supplyID, actor string) (*models.Supply, error) {
	var completed *models.Supply
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		supply, err := findDraftSupply(tx, supplyID)
		if err != nil {
			return err
		}

		var items []models.SupplyItem
		if err := tx.Where("supply_id = ?", supply.ID).Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrSupplyEmpty
		}

		for _, line := range items {
			product, err := findProduct(tx, line.ProductID)
			if err != nil {
				return err
			}
			if _, err := applyMovement(tx, product, line.Quantity, models.MovementIn,
				"supply "+supply.ID, actor); err != nil {
				return err
			}
			fx.notifyChange(s.deps.Bus, notify.ChangeStock, product.ID)
		}

		now := time.Now().UTC()
		supply.Status = models.SupplyCompleted
		supply.CompletedAt = &now
		supply.Dirty = true
		if err := tx.Save(supply).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntitySupply, supply.ID, models.ActionUpdate, supply); err != nil {
			return err
		}

		completed = supply
		fx.notifyChange(s.deps.Bus, notify.ChangeSupplies, supply.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return completed, nil
}

// DeleteSupply hard-deletes a draft. Completed supplies are immutable: the
// stock and movements they produced already exist.
func (s *StockService) DeleteSupply(supplyID string) error {
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		supply, err := findSupply(tx, supplyID)
		if err != nil {
			return err
		}
		if supply.Status == models.SupplyCompleted {
			return ErrSupplyCompleted
		}

		if err := tx.Where("supply_id = ?", supply.ID).Delete(&models.SupplyItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Supply{}, "id = ?", supply.ID).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntitySupply, supply.ID, models.ActionDelete, supply); err != nil {
			return err
		}
		fx.notifyChange(s.deps.Bus, notify.ChangeSupplies, supply.ID)
		return nil
	})
	if err != nil {
		return err
	}
	fx.run()
	return nil
}

// Supplies lists all supplies with their lines, newest first
func (s *StockService) Supplies() ([]models.Supply, error) {
	var supplies []models.Supply
	err := s.deps.DB.Preload("Items").Order("created_at DESC").Find(&supplies).Error
	return supplies, err
}

// Supply returns one supply with its lines
func (s *StockService) Supply(id string) (*models.Supply, error) {
	var supply models.Supply
	err := s.deps.DB.Preload("Items").Where("id = ?", id).First(&supply).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSupplyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &supply, nil
}

// Movements lists the movement log for a product, newest first
func (s *StockService) Movements(productID string, limit int) ([]models.StockMovement, error) {
	if limit <= 0 {
		limit = 100
	}
	var movements []models.StockMovement
	err := s.deps.DB.Where("product_id = ?", productID).
		Order("created_at DESC").Limit(limit).Find(&movements).Error
	return movements, err
}

func (s *StockService) recomputeTotal(tx *gorm.DB, supply *models.Supply, fx *effects) error {
	var total float64
	err := tx.Model(&models.SupplyItem{}).
		Where("supply_id = ?", supply.ID).
		Select("COALESCE(SUM(total), 0)").Scan(&total).Error
	if err != nil {
		return err
	}

	supply.Total = total
	supply.Dirty = true
	if err := tx.Save(supply).Error; err != nil {
		return err
	}
	if err := sync.Enqueue(tx, sync.EntitySupply, supply.ID, models.ActionUpdate, supply); err != nil {
		return err
	}
	fx.notifyChange(s.deps.Bus, notify.ChangeSupplies, supply.ID)
	return nil
}

func findProduct(tx *gorm.DB, id string) (*models.Product, error) {
	var product models.Product
	err := tx.Where("id = ? AND deleted_at IS NULL", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func findSupply(tx *gorm.DB, id string) (*models.Supply, error) {
	var supply models.Supply
	err := tx.Where("id = ?", id).First(&supply).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSupplyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &supply, nil
}

func findDraftSupply(tx *gorm.DB, id string) (*models.Supply, error) {
	supply, err := findSupply(tx, id)
	if err != nil {
		return nil, err
	}
	if supply.Status != models.SupplyDraft {
		return nil, ErrSupplyCompleted
	}
	return supply, nil
}
