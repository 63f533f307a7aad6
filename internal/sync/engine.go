package sync

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tezpos/tezpos/internal/config"
	"github.com/tezpos/tezpos/internal/database"
	"github.com/tezpos/tezpos/internal/models"
)

// dirtyTables maps wire entity types to the local table whose dirty marker
// is cleared once the entity has been delivered. Append-only logs carry no
// marker.
var dirtyTables = map[string]string{
	EntityTable:       "tables",
	EntityProduct:     "products",
	EntitySale:        "sales",
	EntityShift:       "shifts",
	EntitySupply:      "supplies",
	EntityReservation: "reservations",
	EntityCustomer:    "customers",
}

// Engine drains the outbox to the remote authority. A periodic ticker plus
// an immediate Kick after high-value events (sale, shift close) trigger
// flushes; a busy flag keeps flushes from overlapping. Delivery is
// at-least-once: a batch is removed from the outbox only after a confirmed
// success response, never partially.
type Engine struct {
	db     *database.DB
	cfg    config.SyncConfig
	pusher *Pusher

	mu        sync.Mutex
	flushing  bool
	isRunning bool

	stopChan chan struct{}
	kickChan chan struct{}
	wg       sync.WaitGroup
}

// NewEngine creates an outbox sync engine
func NewEngine(db *database.DB, cfg config.SyncConfig) *Engine {
	return &Engine{
		db:       db,
		cfg:      cfg,
		pusher:   NewPusher(cfg.Endpoint, cfg.Token, cfg.PushTimeout),
		stopChan: make(chan struct{}),
		kickChan: make(chan struct{}, 1),
	}
}

// Start launches the background flush loop
func (e *Engine) Start() {
	e.mu.Lock()
	if e.isRunning {
		e.mu.Unlock()
		return
	}
	e.isRunning = true
	e.mu.Unlock()

	log.Info().Dur("interval", e.cfg.FlushInterval).Msg("Sync engine starting")
	e.wg.Add(1)
	go e.loop()
}

// Stop stops the background loop and waits for an in-flight flush
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.isRunning {
		e.mu.Unlock()
		return
	}
	e.isRunning = false
	e.mu.Unlock()

	close(e.stopChan)
	e.wg.Wait()
	log.Info().Msg("Sync engine stopped")
}

// Kick requests an immediate flush. Non-blocking; a pending kick is enough.
func (e *Engine) Kick() {
	select {
	case e.kickChan <- struct{}{}:
	default:
	}
}

func (e *Engine) loop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.Flush(context.Background())
		case <-e.kickChan:
			e.Flush(context.Background())
		case <-e.stopChan:
			return
		}
	}
}

// Flush drains the oldest batch of pending entries. Failures leave the
// batch intact for the next cycle and are logged, never surfaced to the
// caller who produced the entries. Returns the number of entries delivered.
func (e *Engine) Flush(ctx context.Context) int {
	// No credential configured: local-only mode, nothing to do
	if e.cfg.Token == "" || e.cfg.Endpoint == "" {
		return 0
	}

	e.mu.Lock()
	if e.flushing {
		e.mu.Unlock()
		return 0
	}
	e.flushing = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.flushing = false
		e.mu.Unlock()
	}()

	var entries []models.OutboxEntry
	err := e.db.Order("id ASC").Limit(e.cfg.BatchSize).Find(&entries).Error
	if err != nil {
		log.Error().Err(err).Msg("Sync: failed to read outbox")
		return 0
	}
	if len(entries) == 0 {
		return 0
	}

	items := make([]PushItem, 0, len(entries))
	ids := make([]uint, 0, len(entries))
	for _, entry := range entries {
		items = append(items, PushItem{
			ID:       entry.EntityID,
			Action:   entry.Action,
			DataType: entry.EntityType,
			Payload:  json.RawMessage(entry.Payload),
		})
		ids = append(ids, entry.ID)
	}

	if err := e.pusher.Push(ctx, items); err != nil {
		log.Warn().Err(err).Int("batch", len(items)).Msg("Sync: push failed, batch kept for retry")
		return 0
	}

	// Whole batch accepted: dequeue exactly the sent ids and clear the
	// dirty markers of the delivered entities.
	if err := e.db.Where("id IN ?", ids).Delete(&models.OutboxEntry{}).Error; err != nil {
		// Entries stay queued and will be resent; the remote side
		// deduplicates on its idempotency key.
		log.Error().Err(err).Msg("Sync: failed to dequeue pushed batch")
		return 0
	}
	e.clearDirty(entries)

	log.Info().Int("batch", len(items)).Msg("Sync: batch delivered")
	return len(items)
}

func (e *Engine) clearDirty(entries []models.OutboxEntry) {
	byTable := make(map[string][]string)
	for _, entry := range entries {
		if table, ok := dirtyTables[entry.EntityType]; ok && entry.Action != models.ActionDelete {
			byTable[table] = append(byTable[table], entry.EntityID)
		}
	}
	for table, ids := range byTable {
		if err := e.db.Table(table).Where("id IN ?", ids).Update("dirty", false).Error; err != nil {
			log.Warn().Err(err).Str("table", table).Msg("Sync: failed to clear dirty markers")
		}
	}
}

// Pending returns the current outbox depth
func (e *Engine) Pending() (int64, error) {
	var count int64
	err := e.db.Model(&models.OutboxEntry{}).Count(&count).Error
	return count, err
}

// Status reports the engine state for the status endpoint
func (e *Engine) Status() map[string]interface{} {
	e.mu.Lock()
	flushing := e.flushing
	running := e.isRunning
	e.mu.Unlock()

	pending, _ := e.Pending()
	return map[string]interface{}{
		"running":    running,
		"flushing":   flushing,
		"pending":    pending,
		"configured": e.cfg.Token != "" && e.cfg.Endpoint != "",
	}
}
