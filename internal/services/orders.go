package services

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tezpos/tezpos/internal/database"
	"github.com/tezpos/tezpos/internal/models"
	"github.com/tezpos/tezpos/internal/notify"
	"github.com/tezpos/tezpos/internal/sync"
)

// OrderService is the table/order engine: item lifecycle, table state
// machine, check numbers and checkout.
type OrderService struct {
	deps Deps
}

// NewOrderService creates the table/order engine
func NewOrderService(deps Deps) *OrderService {
	if deps.Resolver == nil {
		deps.Resolver = NameResolver{}
	}
	return &OrderService{deps: deps}
}

// Waiter identifies who is serving the table on first contact
type Waiter struct {
	ID     *string
	Name   string
	Guests int
}

// BulkItem is one order line as submitted by the terminal. Name and price
// are snapshots; destination is re-checked against the product catalog.
type BulkItem struct {
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
	Destination string  `json:"destination"`
}

// AddItem adds one product to a table, snapshotting name, price and
// destination from the catalog.
func (s *OrderService) AddItem(tableID, productID string, qty int, waiter Waiter) (*models.OrderItem, error) {
	if qty <= 0 {
		return nil, ErrInvalidAmount
	}

	var created *models.OrderItem
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		if _, err := requireOpenShift(tx); err != nil {
			return err
		}

		var product models.Product
		err := tx.Where("id = ? AND deleted_at IS NULL", productID).First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}

		item := BulkItem{
			ProductID:   product.ID,
			Name:        product.Name,
			Price:       product.Price,
			Quantity:    qty,
			Destination: product.Destination,
		}
		oi, err := s.addItems(tx, tableID, []BulkItem{item}, waiter, fx)
		if err != nil {
			return err
		}
		created = oi[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return created, nil
}

// AddBulkItems adds several order lines in one transaction
func (s *OrderService) AddBulkItems(tableID string, items []BulkItem, waiter Waiter) ([]*models.OrderItem, error) {
	if len(items) == 0 {
		return nil, ErrInvalidAmount
	}

	var created []*models.OrderItem
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		if _, err := requireOpenShift(tx); err != nil {
			return err
		}
		var err error
		created, err = s.addItems(tx, tableID, items, waiter, fx)
		return err
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return created, nil
}

func (s *OrderService) addItems(tx *gorm.DB, tableID string, items []BulkItem, waiter Waiter, fx *effects) ([]*models.OrderItem, error) {
	table, err := findTable(tx, s.deps.Resolver, tableID)
	if err != nil {
		return nil, err
	}

	// First item of an occupancy: allocate the check number once and
	// flip the table to occupied.
	if table.Status == models.TableFree {
		number, err := database.NextCheckNumber(tx)
		if err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		table.Status = models.TableOccupied
		table.StartTime = &now
		table.CheckNumber = number
		table.WaiterID = waiter.ID
		table.WaiterName = waiter.Name
		if waiter.Guests > 0 {
			table.Guests = waiter.Guests
		}
	}

	created := make([]*models.OrderItem, 0, len(items))
	for _, in := range items {
		line := models.OrderItem{
			TableID:     table.ID,
			ProductID:   in.ProductID,
			Name:        in.Name,
			Price:       in.Price,
			Quantity:    in.Quantity,
			Destination: in.Destination,
			WaiterID:    waiter.ID,
		}
		if in.Quantity <= 0 {
			return nil, ErrInvalidAmount
		}

		// Repair step: a stale caller-supplied destination is
		// replaced with the catalog's current routing.
		if in.ProductID != "" {
			var product models.Product
			if err := tx.Where("id = ?", in.ProductID).First(&product).Error; err == nil {
				if line.Destination == "" || line.Destination != product.Destination {
					line.Destination = product.Destination
				}
			}
		}

		if err := tx.Create(&line).Error; err != nil {
			return nil, err
		}
		table.TotalAmount += line.Subtotal()
		created = append(created, &line)
	}

	if err := s.persistTable(tx, table); err != nil {
		return nil, err
	}

	fx.notifyChange(s.deps.Bus, notify.ChangeTables, table.ID)
	fx.notifyChange(s.deps.Bus, notify.ChangeTableItems, table.ID)
	return created, nil
}

// RemoveItem deletes an order line entirely, writing the audit row
func (s *OrderService) RemoveItem(itemID, reason, actor string) error {
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		item, err := findOrderItem(tx, itemID)
		if err != nil {
			return err
		}
		return s.returnQuantity(tx, item, item.Quantity, reason, actor, fx)
	})
	if err != nil {
		return err
	}
	fx.run()
	return nil
}

// ReturnItem returns part or all of an order line before checkout. Returns
// cannot exceed the original quantity.
func (s *OrderService) ReturnItem(itemID string, qty int, reason, actor string) error {
	if qty <= 0 {
		return ErrInvalidAmount
	}

	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		item, err := findOrderItem(tx, itemID)
		if err != nil {
			return err
		}
		if qty > item.Quantity {
			return ErrQuantityExceedsAvailable
		}
		return s.returnQuantity(tx, item, qty, reason, actor, fx)
	})
	if err != nil {
		return err
	}
	fx.run()
	return nil
}

func (s *OrderService) returnQuantity(tx *gorm.DB, item *models.OrderItem, qty int, reason, actor string, fx *effects) error {
	table, err := findTable(tx, s.deps.Resolver, item.TableID)
	if err != nil {
		return err
	}

	subtotal := item.Price * float64(qty)
	audit := models.ReturnedItem{
		TableID:     table.ID,
		OrderItemID: item.ID,
		ProductID:   item.ProductID,
		Name:        item.Name,
		Price:       item.Price,
		Quantity:    qty,
		Subtotal:    subtotal,
		Reason:      reason,
		Actor:       actor,
	}
	if err := tx.Create(&audit).Error; err != nil {
		return err
	}

	if qty == item.Quantity {
		if err := tx.Delete(&models.OrderItem{}, "id = ?", item.ID).Error; err != nil {
			return err
		}
	} else {
		item.Quantity -= qty
		if err := tx.Save(item).Error; err != nil {
			return err
		}
	}

	table.TotalAmount -= subtotal
	if table.TotalAmount < 0 {
		table.TotalAmount = 0
	}

	var remaining int64
	if err := tx.Model(&models.OrderItem{}).Where("table_id = ?", table.ID).Count(&remaining).Error; err != nil {
		return err
	}
	if remaining == 0 {
		table.Reset()
	}

	if err := s.persistTable(tx, table); err != nil {
		return err
	}

	fx.notifyChange(s.deps.Bus, notify.ChangeTables, table.ID)
	fx.notifyChange(s.deps.Bus, notify.ChangeTableItems, table.ID)
	return nil
}

// MoveTable moves or merges an occupied table onto another. A free target
// receives the source's full occupancy state (MOVE); an occupied target
// keeps its own waiter and guests and absorbs the items (MERGE).
func (s *OrderService) MoveTable(fromID, toID string) error {
	if fromID == toID {
		return ErrSameTableMove
	}

	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		source, err := findTable(tx, s.deps.Resolver, fromID)
		if err != nil {
			return err
		}
		if source.Status == models.TableFree {
			return ErrTableAlreadyFree
		}
		target, err := findTable(tx, s.deps.Resolver, toID)
		if err != nil {
			return err
		}
		if source.ID == target.ID {
			return ErrSameTableMove
		}

		if err := tx.Model(&models.OrderItem{}).
			Where("table_id = ?", source.ID).
			Update("table_id", target.ID).Error; err != nil {
			return err
		}

		if target.Status == models.TableFree {
			target.Status = source.Status
			target.StartTime = source.StartTime
			target.TotalAmount = source.TotalAmount
			target.CheckNumber = source.CheckNumber
			target.WaiterID = source.WaiterID
			target.WaiterName = source.WaiterName
			target.Guests = source.Guests
		} else {
			target.TotalAmount += source.TotalAmount
		}

		source.Reset()
		if err := s.persistTable(tx, source); err != nil {
			return err
		}
		if err := s.persistTable(tx, target); err != nil {
			return err
		}

		fx.notifyChange(s.deps.Bus, notify.ChangeTables, source.ID)
		fx.notifyChange(s.deps.Bus, notify.ChangeTables, target.ID)
		fx.notifyChange(s.deps.Bus, notify.ChangeTableItems, target.ID)
		return nil
	})
	if err != nil {
		return err
	}
	fx.run()
	return nil
}

// CheckoutInput carries everything the terminal submits at payment time
type CheckoutInput struct {
	TableID    string
	Payment    models.PaymentBreakdown
	CustomerID *string
}

// Checkout settles a table in one atomic transaction: the sale, its items,
// stock decrements for tracked products, customer debt and cashback, and
// the table reset all commit together or not at all.
func (s *OrderService) Checkout(in CheckoutInput) (*models.Sale, error) {
	var sale *models.Sale
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		shift, err := requireOpenShift(tx)
		if err != nil {
			return err
		}
		table, err := findTable(tx, s.deps.Resolver, in.TableID)
		if err != nil {
			return err
		}
		if table.Status == models.TableFree {
			return ErrTableAlreadyFree
		}

		var items []models.OrderItem
		if err := tx.Where("table_id = ?", table.ID).Order("created_at ASC").Find(&items).Error; err != nil {
			return err
		}

		method := in.Payment.Method
		if in.Payment.IsSplit() {
			method = "split"
		}
		record := models.Sale{
			ShiftID:       shift.ID,
			TableID:       table.ID,
			TableLabel:    table.Name,
			CheckNumber:   table.CheckNumber,
			TotalAmount:   table.TotalAmount,
			PaymentMethod: method,
			Payment:       in.Payment,
			CustomerID:    in.CustomerID,
			WaiterName:    table.WaiterName,
			Guests:        table.Guests,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		// One SaleItem per product and price snapshot. A product added at
		// two prices in one occupancy keeps two lines, so sale item totals
		// always sum to the sale total.
		type saleKey struct {
			productID string
			price     float64
		}
		type aggregate struct {
			name string
			qty  int
		}
		byLine := make(map[saleKey]*aggregate)
		order := make([]saleKey, 0, len(items))
		for _, item := range items {
			id := item.ProductID
			if id == "" {
				id = item.Name
			}
			key := saleKey{productID: id, price: item.Price}
			agg, ok := byLine[key]
			if !ok {
				agg = &aggregate{name: item.Name}
				byLine[key] = agg
				order = append(order, key)
			}
			agg.qty += item.Quantity
		}
		for _, key := range order {
			agg := byLine[key]
			productID := key.productID
			if productID == agg.name {
				productID = ""
			}
			saleItem := models.SaleItem{
				SaleID:    record.ID,
				ProductID: productID,
				Name:      agg.name,
				Price:     key.price,
				Quantity:  agg.qty,
				Total:     key.price * float64(agg.qty),
			}
			if err := tx.Create(&saleItem).Error; err != nil {
				return err
			}

			if productID == "" {
				continue
			}
			var product models.Product
			if err := tx.Where("id = ?", productID).First(&product).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return err
			}
			if !product.TrackStock {
				continue
			}
			if _, err := applyMovement(tx, &product, -float64(agg.qty), models.MovementSale,
				"sale "+record.ID, table.WaiterName); err != nil {
				return err
			}
		}

		// Debt legs and cashback
		debt := in.Payment.DebtAmount()
		if debt > 0 || in.CustomerID != nil {
			if debt > 0 && in.CustomerID == nil {
				return ErrCustomerRequired
			}
			if in.CustomerID != nil {
				customer, err := findCustomer(tx, *in.CustomerID)
				if err != nil {
					return err
				}
				if debt > 0 {
					if err := addCustomerDebt(tx, customer, debt, record.ID, in.Payment.DebtDueDate()); err != nil {
						return err
					}
				}
				if customer.CashbackPercent > 0 {
					customer.Cashback += record.TotalAmount * customer.CashbackPercent / 100
				}
				customer.Dirty = true
				if err := tx.Save(customer).Error; err != nil {
					return err
				}
				if err := sync.Enqueue(tx, sync.EntityCustomer, customer.ID, models.ActionUpdate, customer); err != nil {
					return err
				}
				fx.notifyChange(s.deps.Bus, notify.ChangeCustomers, customer.ID)
			}
		}

		// Clear the order and free the table
		if err := tx.Where("table_id = ?", table.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		table.Reset()
		if err := s.persistTable(tx, table); err != nil {
			return err
		}

		if err := sync.Enqueue(tx, sync.EntitySale, record.ID, models.ActionCreate, record); err != nil {
			return err
		}

		sale = &record
		fx.notifyChange(s.deps.Bus, notify.ChangeTables, table.ID)
		fx.notifyChange(s.deps.Bus, notify.ChangeTableItems, table.ID)
		fx.notifyChange(s.deps.Bus, notify.ChangeSales, record.ID)
		fx.kickSync(s.deps.SyncKick)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return sale, nil
}

// CancelOrder archives the table's current items and frees it. No stock or
// financial impact: nothing was sold.
func (s *OrderService) CancelOrder(tableID, reason string) error {
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		table, err := findTable(tx, s.deps.Resolver, tableID)
		if err != nil {
			return err
		}
		if table.Status == models.TableFree {
			return ErrTableAlreadyFree
		}

		var items []models.OrderItem
		if err := tx.Where("table_id = ?", table.ID).Find(&items).Error; err != nil {
			return err
		}
		snapshot, err := json.Marshal(items)
		if err != nil {
			return err
		}

		archive := models.CancelledOrder{
			TableID:     table.ID,
			TableLabel:  table.Name,
			CheckNumber: table.CheckNumber,
			Total:       table.TotalAmount,
			Reason:      reason,
			Items:       snapshot,
		}
		if err := tx.Create(&archive).Error; err != nil {
			return err
		}

		if err := tx.Where("table_id = ?", table.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		table.Reset()
		if err := s.persistTable(tx, table); err != nil {
			return err
		}

		fx.notifyChange(s.deps.Bus, notify.ChangeTables, table.ID)
		fx.notifyChange(s.deps.Bus, notify.ChangeTableItems, table.ID)
		return nil
	})
	if err != nil {
		return err
	}
	fx.run()
	return nil
}

// Items lists the live order lines for a table
func (s *OrderService) Items(tableID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.deps.DB.Where("table_id = ?", tableID).Order("created_at ASC").Find(&items).Error
	return items, err
}

// Tables lists all non-deleted tables
func (s *OrderService) Tables() ([]models.Table, error) {
	var tables []models.Table
	err := s.deps.DB.Where("deleted_at IS NULL").Order("name ASC").Find(&tables).Error
	return tables, err
}

// persistTable saves the table and queues its new state for the remote
// authority.
func (s *OrderService) persistTable(tx *gorm.DB, table *models.Table) error {
	table.Dirty = true
	if err := tx.Save(table).Error; err != nil {
		return err
	}
	return sync.Enqueue(tx, sync.EntityTable, table.ID, models.ActionUpdate, table)
}

func findOrderItem(tx *gorm.DB, id string) (*models.OrderItem, error) {
	var item models.OrderItem
	err := tx.Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}
