package database

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tezpos/tezpos/internal/models"
)

// Migrate synchronizes the schema and seeds bootstrap rows. It is run on
// every startup and must stay idempotent: AutoMigrate is additive-only and
// seeds use create-if-missing semantics.
func (db *DB) Migrate() error {
	err := db.AutoMigrate(
		&models.Hall{},
		&models.Table{},
		&models.Counter{},
		&models.OrderItem{},
		&models.ReturnedItem{},
		&models.CancelledOrder{},
		&models.Category{},
		&models.Product{},
		&models.StockMovement{},
		&models.Supply{},
		&models.SupplyItem{},
		&models.Sale{},
		&models.SaleItem{},
		&models.Shift{},
		&models.Reservation{},
		&models.Customer{},
		&models.CustomerDebt{},
		&models.DebtHistory{},
		&models.Staff{},
		&models.OutboxEntry{},
	)
	if err != nil {
		return err
	}

	// Check number sequence, allocated once per occupancy
	counter := models.Counter{Name: models.CounterCheckNumber}
	if err := db.Where(models.Counter{Name: models.CounterCheckNumber}).
		FirstOrCreate(&counter).Error; err != nil {
		return err
	}

	log.Info().Msg("Schema synchronized")
	return nil
}

// NextCheckNumber increments and returns the persisted check number
// sequence inside the caller's transaction.
func NextCheckNumber(tx *gorm.DB) (int64, error) {
	var counter models.Counter
	if err := tx.Where("name = ?", models.CounterCheckNumber).First(&counter).Error; err != nil {
		return 0, err
	}
	counter.Value++
	if err := tx.Model(&models.Counter{}).
		Where("name = ?", models.CounterCheckNumber).
		Update("value", counter.Value).Error; err != nil {
		return 0, err
	}
	return counter.Value, nil
}
