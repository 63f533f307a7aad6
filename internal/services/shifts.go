package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tezpos/tezpos/internal/models"
	"github.com/tezpos/tezpos/internal/notify"
	"github.com/tezpos/tezpos/internal/sync"
)

// ShiftService owns the cash-session lifecycle and end-of-shift
// reconciliation against recorded sales.
type ShiftService struct {
	deps Deps
}

// NewShiftService creates the shift register
func NewShiftService(deps Deps) *ShiftService {
	return &ShiftService{deps: deps}
}

// OpenShift starts a new cash session. Only one shift may be open at a time.
func (s *ShiftService) OpenShift(cashier string, startCash float64) (*models.Shift, error) {
	var shift models.Shift
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		var open models.Shift
		err := tx.Where("status = ?", models.ShiftOpen).First(&open).Error
		if err == nil {
			return ErrShiftAlreadyOpen
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var maxNumber int64
		if err := tx.Model(&models.Shift{}).
			Select("COALESCE(MAX(number), 0)").Scan(&maxNumber).Error; err != nil {
			return err
		}

		shift = models.Shift{
			Number:    maxNumber + 1,
			Cashier:   cashier,
			Status:    models.ShiftOpen,
			OpenedAt:  time.Now().UTC(),
			StartCash: startCash,
		}
		if err := tx.Create(&shift).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntityShift, shift.ID, models.ActionCreate, shift); err != nil {
			return err
		}

		fx.notifyChange(s.deps.Bus, notify.ChangeShiftStatus, shift.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return &shift, nil
}

// CloseShift reconciles the open session against its sales and closes it.
// Split-payment sales attribute each leg to its own method, not the sale
// total. Fails while any table is still unsettled.
func (s *ShiftService) CloseShift(declaredCash, declaredCard float64) (*models.Shift, error) {
	var closed *models.Shift
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		shift, err := requireOpenShift(tx)
		if err != nil {
			return err
		}

		var activeTables int64
		err = tx.Model(&models.Table{}).
			Where("deleted_at IS NULL AND status <> ?", models.TableFree).
			Count(&activeTables).Error
		if err != nil {
			return err
		}
		if activeTables > 0 {
			return ErrActiveTablesExist
		}

		var sales []models.Sale
		if err := tx.Where("shift_id = ?", shift.ID).Find(&sales).Error; err != nil {
			return err
		}

		totals := Reconcile(shift.StartCash, sales, declaredCash, declaredCard)

		now := time.Now().UTC()
		shift.Status = models.ShiftClosed
		shift.ClosedAt = &now
		shift.DeclaredCash = declaredCash
		shift.DeclaredCard = declaredCard
		shift.TotalSales = totals.TotalSales
		shift.TotalCash = totals.TotalCash
		shift.TotalCard = totals.TotalCard
		shift.TotalTransfer = totals.TotalTransfer
		shift.TotalDebt = totals.TotalDebt
		shift.ExpectedCash = totals.ExpectedCash
		shift.DiffCash = totals.DiffCash
		shift.DiffCard = totals.DiffCard
		shift.Dirty = true
		if err := tx.Save(shift).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntityShift, shift.ID, models.ActionUpdate, shift); err != nil {
			return err
		}

		closed = shift
		fx.notifyChange(s.deps.Bus, notify.ChangeShiftStatus, shift.ID)
		fx.kickSync(s.deps.SyncKick)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return closed, nil
}

// CurrentShift returns the open shift, if any
func (s *ShiftService) CurrentShift() (*models.Shift, error) {
	var shift models.Shift
	err := s.deps.DB.Where("status = ?", models.ShiftOpen).First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShiftNotOpen
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// Totals is the reconciliation arithmetic of a shift close
type Totals struct {
	TotalSales    float64
	TotalCash     float64
	TotalCard     float64
	TotalTransfer float64
	TotalDebt     float64
	ExpectedCash  float64
	DiffCash      float64
	DiffCard      float64
}

// Reconcile aggregates sales by payment method and computes the expected
// drawer contents and variances. Pure so the arithmetic is testable on its
// own.
func Reconcile(startCash float64, sales []models.Sale, declaredCash, declaredCard float64) Totals {
	var t Totals
	for _, sale := range sales {
		t.TotalSales += sale.TotalAmount
		for method, amount := range sale.Payment.PerMethod() {
			switch method {
			case models.PaymentCash:
				t.TotalCash += amount
			case models.PaymentCard:
				t.TotalCard += amount
			case models.PaymentTransfer:
				t.TotalTransfer += amount
			case models.PaymentDebt:
				t.TotalDebt += amount
			}
		}
	}
	t.ExpectedCash = startCash + t.TotalCash
	t.DiffCash = declaredCash - t.ExpectedCash
	t.DiffCard = declaredCard - t.TotalCard
	return t
}

// ProductSummary is one line of the per-product shift report
type ProductSummary struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
}

// ZReport is the read-only end-of-shift report. It reflects exactly the
// sales whose shift reference equals the given shift.
type ZReport struct {
	Shift    models.Shift     `json:"shift"`
	Sales    int64            `json:"sales_count"`
	Products []ProductSummary `json:"products"`
}

// Report builds the Z-report for a shift
func (s *ShiftService) Report(shiftID string) (*ZReport, error) {
	var shift models.Shift
	err := s.deps.DB.Where("id = ?", shiftID).First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShiftNotFound
	}
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.deps.DB.Model(&models.Sale{}).
		Where("shift_id = ?", shift.ID).Count(&count).Error; err != nil {
		return nil, err
	}

	var products []ProductSummary
	err = s.deps.DB.Model(&models.SaleItem{}).
		Select("sale_items.product_id, sale_items.name, SUM(sale_items.quantity) AS quantity, SUM(sale_items.total) AS total").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.shift_id = ?", shift.ID).
		Group("sale_items.product_id, sale_items.name").
		Order("total DESC").
		Scan(&products).Error
	if err != nil {
		return nil, err
	}

	return &ZReport{Shift: shift, Sales: count, Products: products}, nil
}
