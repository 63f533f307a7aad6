package database

import (
	"fmt"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectTest starts a throwaway embedded PostgreSQL on the given port with
// the given data/runtime directory and returns a connected DB. Test packages
// call this from TestMain so each package owns one instance.
func ConnectTest(dataPath string, port uint32) (*DB, error) {
	cfg := embeddedpostgres.DefaultConfig().
		DataPath(dataPath + "/data").
		RuntimePath(dataPath + "/runtime").
		Port(port).
		Database("tezpos_test").
		Username("postgres").
		Password("postgres").
		StartParameters(map[string]string{"synchronous_commit": "local"})

	embedded := embeddedpostgres.NewDatabase(cfg)
	if err := embedded.Start(); err != nil {
		return nil, fmt.Errorf("failed to start test database: %w", err)
	}

	dsn := fmt.Sprintf(
		"host=localhost port=%d user=postgres password=postgres dbname=tezpos_test sslmode=disable",
		port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		_ = embedded.Stop()
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	wrapped := &DB{DB: db, embedded: embedded}
	if err := wrapped.Migrate(); err != nil {
		_ = wrapped.Close()
		return nil, err
	}
	return wrapped, nil
}

// Truncate wipes the given tables between tests
func (db *DB) Truncate(tables ...string) error {
	for _, table := range tables {
		if err := db.Exec("TRUNCATE TABLE " + table + " CASCADE").Error; err != nil {
			return err
		}
	}
	return nil
}
