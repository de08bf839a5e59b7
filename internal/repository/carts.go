package repository

import (
	"context"
	"sync"
	"time"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/cart"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/logging"
)

const (
	defaultCartIdleTTL   = 24 * time.Hour
	defaultSweepInterval = 10 * time.Minute
)

// CartStore keeps one cart per session. Each cart is handed to exactly one
// caller at a time through Update.
type CartStore struct {
	mu      sync.Mutex
	carts   map[string]*cartEntry
	step    int
	idleTTL time.Duration
	now     func() time.Time
}

type cartEntry struct {
	mu      sync.Mutex
	cart    *cart.Cart
	touched time.Time
}

// NewCartStore creates a store whose carts use step for increments and are
// dropped after idleTTL without access.
func NewCartStore(step int, idleTTL time.Duration) *CartStore {
	if idleTTL <= 0 {
		idleTTL = defaultCartIdleTTL
	}
	return &CartStore{
		carts:   make(map[string]*cartEntry),
		step:    step,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

func (s *CartStore) entry(sessionID string) *cartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts[sessionID]
	if !ok {
		e = &cartEntry{cart: cart.New(s.step)}
		s.carts[sessionID] = e
	}
	e.touched = s.now()
	return e
}

// Update runs fn with exclusive access to the session's cart, creating an
// empty cart on first use.
func (s *CartStore) Update(sessionID string, fn func(*cart.Cart) error) error {
	e := s.entry(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.cart)
}

// Drop forgets the session's cart.
func (s *CartStore) Drop(sessionID string) {
	s.mu.Lock()
	delete(s.carts, sessionID)
	s.mu.Unlock()
}

// Len is the number of live carts.
func (s *CartStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// Sweep drops carts idle for longer than the store's TTL and returns how many
// were dropped.
func (s *CartStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	dropped := 0
	for id, e := range s.carts {
		if e.touched.Before(cutoff) {
			delete(s.carts, id)
			dropped++
		}
	}
	return dropped
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *CartStore) RunSweeper(ctx context.Context, interval time.Duration, logger *logging.LoggerV2) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.Info("Dropped idle carts", logging.Fields{"count": n, "remaining": s.Len()})
			}
		}
	}
}
