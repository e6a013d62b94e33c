// Package cart implements the session-scoped shopping cart. The Store
// is a plain state container; durability is delegated to an injected
// Persister so the cart logic stays testable without Redis.
package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insany/shop/internal/domain"
)

// Store holds the cart lines for one session. Reads before Hydrate see
// an empty cart; mutations persist the whole line list after applying.
type Store struct {
	mu        sync.Mutex
	sessionID string
	lines     []domain.CartLine
	hydrated  bool
	persister Persister
	logger    zerolog.Logger
}

// NewStore builds a cart bound to a session key. The persister may be
// nil for a purely in-memory cart.
func NewStore(sessionID string, persister Persister, logger zerolog.Logger) *Store {
	return &Store{
		sessionID: sessionID,
		persister: persister,
		logger:    logger.With().Str("component", "cart").Str("session_id", sessionID).Logger(),
	}
}

// Hydrate loads the persisted lines once. A missing or corrupt payload
// leaves an empty, fully usable cart; the store still counts as
// hydrated so later reads are trusted.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hydrated {
		return
	}
	s.hydrated = true
	if s.persister == nil {
		return
	}
	lines, err := s.persister.Load(ctx, s.sessionID)
	if err != nil {
		s.logger.Debug().Err(err).Msg("cart hydrate failed, starting empty")
		return
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		s.lines = append(s.lines, l)
	}
}

// Hydrated reports whether the persisted state has been loaded.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// AddItem inserts a line or, when a line with the same identity already
// exists, adds the quantities together in place. Line order is stable:
// merging never moves a line.
func (s *Store) AddItem(ctx context.Context, line domain.CartLine) error {
	if err := line.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	key := line.Key()
	merged := false
	for i := range s.lines {
		if s.lines[i].Key() == key {
			s.lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		if line.ID == "" {
			line.ID = uuid.New().String()
		}
		s.lines = append(s.lines, line)
	}
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// Increment raises a line's quantity by one.
func (s *Store) Increment(ctx context.Context, lineID string) error {
	return s.adjust(ctx, lineID, +1)
}

// Decrement lowers a line's quantity by one, clamped at 1. Reaching the
// floor is not an error and never removes the line; removal is always
// an explicit action.
func (s *Store) Decrement(ctx context.Context, lineID string) error {
	return s.adjust(ctx, lineID, -1)
}

func (s *Store) adjust(ctx context.Context, lineID string, delta int) error {
	s.mu.Lock()
	found := false
	for i := range s.lines {
		if s.lines[i].ID != lineID {
			continue
		}
		found = true
		q := s.lines[i].Quantity + delta
		if q < 1 {
			q = 1
		}
		s.lines[i].Quantity = q
		break
	}
	s.mu.Unlock()

	if !found {
		return domain.NotFound("cart.adjust", "Cart line", lineID)
	}
	s.persist(ctx)
	return nil
}

// Remove deletes a line. Removing an unknown line is a no-op.
func (s *Store) Remove(ctx context.Context, lineID string) {
	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.persist(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()

	s.persist(ctx)
}

// Count is the total unit count across lines. Before hydration it
// reports 0 so the UI never flashes a stale badge.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return 0
	}
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// SubtotalCents sums quantity times unit price across lines.
func (s *Store) SubtotalCents() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, l := range s.lines {
		total += l.LineTotalCents()
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// persist writes the full line list. Persistence failures never bubble
// up to the shopper; the in-memory cart remains the source of truth for
// the session.
func (s *Store) persist(ctx context.Context) {
	if s.persister == nil {
		return
	}
	s.mu.Lock()
	lines := make([]domain.CartLine, len(s.lines))
	copy(lines, s.lines)
	s.mu.Unlock()

	if err := s.persister.Save(ctx, s.sessionID, lines); err != nil {
		s.logger.Debug().Err(err).Msg("cart persist failed")
	}
}
