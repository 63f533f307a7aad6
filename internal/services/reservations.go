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

// ReservationService schedules fixed-length table reservations. Two active
// reservations conflict when their windows overlap on the same table.
type ReservationService struct {
	deps Deps
}

// NewReservationService creates the reservation scheduler
func NewReservationService(deps Deps) *ReservationService {
	return &ReservationService{deps: deps}
}

// ReservationInput validates reservation create/update payloads
type ReservationInput struct {
	TableID      *string   `json:"table_id"`
	CustomerName string    `json:"customer_name" validate:"required"`
	Phone        string    `json:"phone"`
	Time         time.Time `json:"time" validate:"required"`
	Guests       int       `json:"guests" validate:"gte=1"`
	Note         string    `json:"note"`
}

// Create books a reservation. An explicitly requested table must be free in
// the window; otherwise the smallest table with enough seats is picked, and
// when no table fits the reservation is accepted unassigned.
func (s *ReservationService) Create(in ReservationInput) (*models.Reservation, error) {
	var reservation models.Reservation
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		if err := s.checkTime(in.Time); err != nil {
			return err
		}

		tableID, err := s.assignTable(tx, in.TableID, in.Time, in.Guests, "")
		if err != nil {
			return err
		}

		reservation = models.Reservation{
			TableID:      tableID,
			CustomerName: strings.TrimSpace(in.CustomerName),
			Phone:        strings.TrimSpace(in.Phone),
			Time:         in.Time,
			Guests:       in.Guests,
			Status:       models.ReservationActive,
			Note:         in.Note,
			Dirty:        true,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntityReservation, reservation.ID, models.ActionCreate, reservation); err != nil {
			return err
		}
		fx.notifyChange(s.deps.Bus, notify.ChangeReservations, reservation.ID)
		fx.kickSync(s.deps.SyncKick)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return &reservation, nil
}

// Update reschedules or edits a reservation. The reservation's own window is
// excluded from conflict checks so it can keep its table.
func (s *ReservationService) Update(id string, in ReservationInput) (*models.Reservation, error) {
	var reservation *models.Reservation
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		found, err := findReservation(tx, id)
		if err != nil {
			return err
		}
		if err := s.checkTime(in.Time); err != nil {
			return err
		}

		tableID, err := s.assignTable(tx, in.TableID, in.Time, in.Guests, found.ID)
		if err != nil {
			return err
		}

		found.TableID = tableID
		found.CustomerName = strings.TrimSpace(in.CustomerName)
		found.Phone = strings.TrimSpace(in.Phone)
		found.Time = in.Time
		found.Guests = in.Guests
		found.Note = in.Note
		found.Dirty = true
		if err := tx.Save(found).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntityReservation, found.ID, models.ActionUpdate, found); err != nil {
			return err
		}
		reservation = found
		fx.notifyChange(s.deps.Bus, notify.ChangeReservations, found.ID)
		fx.kickSync(s.deps.SyncKick)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return reservation, nil
}

// SetStatus marks a reservation completed or cancelled
func (s *ReservationService) SetStatus(id string, status models.ReservationStatus) (*models.Reservation, error) {
	var reservation *models.Reservation
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		found, err := findReservation(tx, id)
		if err != nil {
			return err
		}
		found.Status = status
		found.Dirty = true
		if err := tx.Save(found).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntityReservation, found.ID, models.ActionUpdate, found); err != nil {
			return err
		}
		reservation = found
		fx.notifyChange(s.deps.Bus, notify.ChangeReservations, found.ID)
		fx.kickSync(s.deps.SyncKick)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fx.run()
	return reservation, nil
}

// Delete tombstones a reservation
func (s *ReservationService) Delete(id string) error {
	fx := &effects{}
	err := s.deps.DB.WriteTx(func(tx *gorm.DB) error {
		found, err := findReservation(tx, id)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		found.DeletedAt = &now
		found.Dirty = true
		if err := tx.Save(found).Error; err != nil {
			return err
		}
		if err := sync.Enqueue(tx, sync.EntityReservation, found.ID, models.ActionDelete, found); err != nil {
			return err
		}
		fx.notifyChange(s.deps.Bus, notify.ChangeReservations, found.ID)
		fx.kickSync(s.deps.SyncKick)
		return nil
	})
	if err != nil {
		return err
	}
	fx.run()
	return nil
}

// List returns non-deleted reservations ordered by time
func (s *ReservationService) List() ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.deps.DB.Where("deleted_at IS NULL").Order("time ASC").Find(&reservations).Error
	return reservations, err
}

// IsTableBusy reports whether an active reservation on the table overlaps
// the window around t. Windows are half-open, so back-to-back bookings
// exactly one window apart do not conflict. excludeID skips the reservation
// being edited.
func (s *ReservationService) IsTableBusy(tx *gorm.DB, tableID string, t time.Time, excludeID string) (bool, error) {
	d := s.deps.Cfg.Reservation.Duration
	q := tx.Model(&models.Reservation{}).
		Where("table_id = ? AND status = ? AND deleted_at IS NULL", tableID, models.ReservationActive).
		Where("time > ? AND time < ?", t.Add(-d), t.Add(d))
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *ReservationService) checkTime(t time.Time) error {
	if t.Before(time.Now().Add(-s.deps.Cfg.Reservation.PastGrace)) {
		return ErrReservationInPast
	}
	return nil
}

// assignTable resolves the table for a reservation window. A requested
// table that is busy is a hard conflict; with no request the smallest free
// table with enough seats wins, and nil means accepted unassigned.
func (s *ReservationService) assignTable(tx *gorm.DB, requested *string, t time.Time, guests int, excludeID string) (*string, error) {
	if requested != nil && *requested != "" {
		var table models.Table
		err := tx.Where("id = ? AND deleted_at IS NULL", *requested).First(&table).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		if err != nil {
			return nil, err
		}
		busy, err := s.IsTableBusy(tx, table.ID, t, excludeID)
		if err != nil {
			return nil, err
		}
		if busy {
			return nil, ErrTableConflict
		}
		return &table.ID, nil
	}

	var tables []models.Table
	err := tx.Where("deleted_at IS NULL AND capacity >= ?", guests).
		Order("capacity ASC, name ASC").Find(&tables).Error
	if err != nil {
		return nil, err
	}
	for i := range tables {
		busy, err := s.IsTableBusy(tx, tables[i].ID, t, excludeID)
		if err != nil {
			return nil, err
		}
		if !busy {
			return &tables[i].ID, nil
		}
	}
	return nil, nil
}

func findReservation(tx *gorm.DB, id string) (*models.Reservation, error) {
	var reservation models.Reservation
	err := tx.Where("id = ? AND deleted_at IS NULL", id).First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}
