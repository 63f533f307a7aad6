package notify

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Change types published after committed transactions. Consumers decide
// their own fan-out (per-hall broadcast, global broadcast, refresh).
const (
	ChangeTables       = "tables"
	ChangeTableItems   = "table-items"
	ChangeProducts     = "products"
	ChangeStock        = "stock"
	ChangeSupplies     = "supplies"
	ChangeShiftStatus  = "shift-status"
	ChangeReservations = "reservation-update"
	ChangeCustomers    = "customers"
	ChangeSales        = "sales"
)

// Change is one post-commit notification: what kind of data changed and
// which entity was affected.
type Change struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Bus is the in-process publish/subscribe channel between the core and its
// UI/transport consumers. The core never blocks on a subscriber: publishes
// to a full subscription are dropped and logged.
type Bus struct {
	mu      sync.RWMutex
	subs    map[int]chan Change
	nextID  int
	bufSize int
}

// NewBus creates a change notification bus
func NewBus() *Bus {
	return &Bus{
		subs:    make(map[int]chan Change),
		bufSize: 64,
	}
}

// Subscribe registers a consumer and returns its event channel plus an
// unsubscribe function. The channel is closed on unsubscribe.
func (b *Bus) Subscribe() (<-chan Change, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Change, b.bufSize)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers a change event to every subscriber without blocking
func (b *Bus) Publish(changeType, affectedID string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	event := Change{Type: changeType, ID: affectedID}
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			log.Warn().Str("type", changeType).Msg("Dropping change event for slow subscriber")
		}
	}
}
