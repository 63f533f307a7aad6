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

// CustomerService manages the customer book: debt accrual and repayment,
// cashback accounts, and the accompanying history trail.
type CustomerService struct {
	deps Deps
}

// NewCustomerService creates the customer book
func NewCustomerService(deps Deps) *CustomerService {
	return &CustomerService{deps: deps}
}

// CustomerInput validates customer create/update payloads
type CustomerInput struct {
	Name            string  `json:"name" validate:"required"`
	Phone           string  `json:"phone"`
	CashbackPercent float64 `json:"cashback_percent" validate:"gte=0,lte=100"`
}

// Create adds a customer
func (s *CustomerService) Create(in CustomerInput) (*models.Customer, error) {
	customer := models.Customer{
		Name:            strings.TrimSpace(in.Name),
		Phone:           strings.TrimSpace(in.Phone),
		CashbackPercent: in.CashbackPercent,
		Dirty:           true,
	}
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		if err := tx.Create(&customer).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntityCustomer, customer.ID, models.ActionCreate, customer); err != nil {
			return err
		}
		fx.notifyChange(s.deps.Bus, notify.ChangeCustomers, customer.ID)
		fx.kickSync(s.deps.SyncKick)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return &customer, nil
}

// Update edits customer details. Balances are never set directly; they move
// only through sales and repayments.
func (s *CustomerService) Update(id string, in CustomerInput) (*models.Customer, error) {
	var customer *models.Customer
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		found, err := findCustomer(tx, id)
		if err != nil {
			return err
		}
		found.Name = strings.TrimSpace(in.Name)
		found.Phone = strings.TrimSpace(in.Phone)
		found.CashbackPercent = in.CashbackPercent
		found.Dirty = true
		if err := tx.Save(found).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntityCustomer, found.ID, models.ActionUpdate, found); err != nil {
			return err
		}
		customer = found
		fx.notifyChange(s.deps.Bus, notify.ChangeCustomers, found.ID)
		fx.kickSync(s.deps.SyncKick)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return customer, nil
}

// Delete soft-deletes a customer. History and debt rows stay for audit.
func (s *CustomerService) Delete(id string) error {
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		customer, err := findCustomer(tx, id)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		customer.DeletedAt = &now
		customer.Dirty = true
		if err := tx.Save(customer).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntityCustomer, customer.ID, models.ActionDelete, customer); err != nil {
			return err
		}
		fx.notifyChange(s.deps.Bus, notify.ChangeCustomers, customer.ID)
		fx.kickSync(s.deps.SyncKick)
		return nil
	})
	if err != nil {
		return err
	}
	fx.run()
	return nil
}

// PayDebt records a repayment: the balance drops, due debts are settled
// oldest first, and a history row keeps the running balance.
func (s *CustomerService) PayDebt(id string, amount float64, note string) (*models.Customer, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	var customer *models.Customer
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		found, err := findCustomer(tx, id)
		if err != nil {
			return err
		}

		found.Debt -= amount
		if found.Debt < 0 {
			found.Debt = 0
		}
		found.Dirty = true
		if err := tx.Save(found).Error; err != nil {
			return err
		}

		// Settle due debts oldest first until the repayment is spent.
		var debts []models.CustomerDebt
		err = tx.Where("customer_id = ? AND status = ?", found.ID, models.DebtDue).
			Order("created_at ASC").Find(&debts).Error
		if err != nil {
			return err
		}
		remaining := amount
		for i := range debts {
			if remaining < debts[i].Amount {
				break
			}
			remaining -= debts[i].Amount
			debts[i].Status = models.DebtPaid
			if err := tx.Save(&debts[i]).Error; err != nil {
				return err
			}
		}

		history := models.DebtHistory{
			CustomerID: found.ID,
			Amount:     -amount,
			Balance:    found.Debt,
			Kind:       models.DebtHistoryPayment,
			Note:       note,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntityCustomer, found.ID, models.ActionUpdate, found); err != nil {
			return err
		}

		customer = found
		fx.notifyChange(s.deps.Bus, notify.ChangeCustomers, found.ID)
		fx.kickSync(s.deps.SyncKick)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return customer, nil
}

// Get returns a customer with its debt and history rows
func (s *CustomerService) Get(id string) (*models.Customer, []models.CustomerDebt, []models.DebtHistory, error) {
	var customer models.Customer
	err := s.deps.DB.Where("id = ? AND deleted_at IS NULL", id).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, nil, nil, err
	}

	var debts []models.CustomerDebt
	if err := s.deps.DB.Where("customer_id = ?", id).
		Order("created_at DESC").Find(&debts).Error; err != nil {
		return nil, nil, nil, err
	}
	var history []models.DebtHistory
	if err := s.deps.DB.Where("customer_id = ?", id).
		Order("created_at DESC").Find(&history).Error; err != nil {
		return nil, nil, nil, err
	}
	return &customer, debts, history, nil
}

// List returns all non-deleted customers
func (s *CustomerService) List() ([]models.Customer, error) {
	var customers []models.Customer
	err := s.deps.DB.Where("deleted_at IS NULL").Order("name ASC").Find(&customers).Error
	return customers, err
}

func findCustomer(tx *gorm.DB, id string) (*models.Customer, error) {
	var customer models.Customer
	err := tx.Where("id = ? AND deleted_at IS NULL", id).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// addCustomerDebt accrues a sale's debt portion onto the customer: the
// balance grows, a due debt row binds the amount to its sale, and a history
// row records the new balance.
func addCustomerDebt(tx *gorm.DB, customer *models.Customer, amount float64, saleID string, due *time.Time) error {
	customer.Debt += amount
	customer.Dirty = true
	if err := tx.Save(customer).Error; err != nil {
		return err
	}

	debt := models.CustomerDebt{
		CustomerID: customer.ID,
		SaleID:     &saleID,
		Amount:     amount,
		DueDate:    due,
		Status:     models.DebtDue,
	}
	if err := tx.Create(&debt).Error; err != nil {
		return err
	}

	history := models.DebtHistory{
		CustomerID: customer.ID,
		Amount:     amount,
		Balance:    customer.Debt,
		Kind:       models.DebtHistorySale,
		Note:       "check payment",
	}
	if err := tx.Create(&history).Error; err != nil {
		return err
	}
	return sync.Enqueue(tx, sync.EntityCustomer, customer.ID, models.ActionUpdate, customer)
}
