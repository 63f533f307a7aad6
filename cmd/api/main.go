package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tezpos/tezpos/internal/config"
	"github.com/tezpos/tezpos/internal/database"
	"github.com/tezpos/tezpos/internal/handlers"
	"github.com/tezpos/tezpos/internal/license"
	"github.com/tezpos/tezpos/internal/notify"
	"github.com/tezpos/tezpos/internal/services"
	"github.com/tezpos/tezpos/internal/sync"
	"github.com/tezpos/tezpos/internal/websocket"
	"github.com/tezpos/tezpos/pkg/logger"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Init(cfg.NodeEnv)

	// 2. Initialize database (detects embedded vs external automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	// Note: db.Close() is called manually in the shutdown handler below

	// 3. Synchronize schema and seed bootstrap rows
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Msg("schema synchronized")

	// 4. Machine identity and license validation
	identity, err := license.LoadOrGenerateIdentity(cfg.License.IdentityFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load machine identity")
	}
	licenseValidator := license.NewValidator(cfg.License.Secret, identity.MachineID)
	log.Info().Str("machine_id", identity.MachineID).Msg("machine identity ready")

	// 5. Change bus and realtime fan-out
	bus := notify.NewBus()
	hub := websocket.NewHub()
	go hub.Run()
	events, cancelEvents := bus.Subscribe()
	go hub.Relay(events)

	// 6. Sync engine draining the outbox to the remote authority
	engine := sync.NewEngine(db, cfg.Sync)
	engine.Start()

	// 7. Service layer
	deps := services.Deps{
		DB:       db,
		Bus:      bus,
		Cfg:      cfg,
		SyncKick: engine.Kick,
	}
	router := handlers.NewRouter(handlers.RouterDeps{
		Cfg:          cfg,
		DB:           db,
		Orders:       services.NewOrderService(deps),
		Stock:        services.NewStockService(deps),
		Shifts:       services.NewShiftService(deps),
		Reservations: services.NewReservationService(deps),
		Customers:    services.NewCustomerService(deps),
		Catalog:      services.NewCatalogService(deps),
		Staff:        services.NewStaffService(deps),
		Engine:       engine,
		Hub:          hub,
		License:      licenseValidator,
	})

	// 8. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Info().Str("port", cfg.Port).Str("restaurant_id", cfg.RestaurantID).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	sig := <-shutdown
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	// Stop the sync engine before the database goes away
	engine.Stop()
	cancelEvents()

	log.Info().Msg("closing database")
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("database close")
	}

	log.Info().Msg("shutdown complete")
}
