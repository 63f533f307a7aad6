package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tezpos/tezpos/internal/config"
	"github.com/tezpos/tezpos/internal/database"
	"github.com/tezpos/tezpos/internal/models"
	"github.com/tezpos/tezpos/internal/notify"
)

// Deps bundles what every service needs: the store, the change bus, the
// config object and a trigger for the sync engine. Passed explicitly at
// construction, never held in package state.
type Deps struct {
	DB       *database.DB
	Bus      *notify.Bus
	Cfg      *config.Config
	SyncKick func()
	Resolver TableResolver
}

// effects is the queue of side effects to run after a transaction commits.
// They are deliberately detached from the unit of work: a failed
// notification or sync kick never rolls back the business transaction.
type effects struct {
	fns []func()
}

func (e *effects) add(fn func()) {
	e.fns = append(e.fns, fn)
}

func (e *effects) run() {
	for _, fn := range e.fns {
		fn()
	}
}

// notifyChange schedules a bus publish for after commit
func (e *effects) notifyChange(bus *notify.Bus, changeType, affectedID string) {
	e.add(func() { bus.Publish(changeType, affectedID) })
}

// kickSync schedules an immediate outbox flush for after commit
func (e *effects) kickSync(kick func()) {
	if kick != nil {
		e.add(kick)
	}
}

// requireOpenShift loads the single open shift or fails with ShiftNotOpen
func requireOpenShift(tx *gorm.DB) (*models.Shift, error) {
	var shift models.Shift
	err := tx.Where("status = ?", models.ShiftOpen).First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShiftNotOpen
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}
