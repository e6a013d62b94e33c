// Package wishlist implements the session-scoped wishlist: a set of
// product slugs that survives page loads via an injected persister and
// reconciles against the server copy when a customer signs in.
package wishlist

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Remote is the server-side wishlist boundary used during sync.
type Remote interface {
	// Push saves a slug for the user on the server.
	Push(ctx context.Context, userID, slug string) error
	// Fetch returns the server's authoritative slug list for the user.
	Fetch(ctx context.Context, userID string) ([]string, error)
}

// SyncResult summarizes a SyncWithServer call. Callers are free to
// ignore it; sync failures never escape as errors.
type SyncResult struct {
	Pushed   int
	Fetched  int
	Failures int
}

// Store is one session's wishlist.
type Store struct {
	mu        sync.Mutex
	sessionID string
	slugs     map[string]struct{}
	persister Persister
	logger    zerolog.Logger
}

// NewStore builds a wishlist bound to a session key. The persister may
// be nil for a purely in-memory list.
func NewStore(sessionID string, persister Persister, logger zerolog.Logger) *Store {
	return &Store{
		sessionID: sessionID,
		slugs:     make(map[string]struct{}),
		persister: persister,
		logger:    logger.With().Str("component", "wishlist").Str("session_id", sessionID).Logger(),
	}
}

// Hydrate loads the persisted slugs. Failures leave an empty list.
func (s *Store) Hydrate(ctx context.Context) {
	if s.persister == nil {
		return
	}
	slugs, err := s.persister.Load(ctx, s.sessionID)
	if err != nil {
		s.logger.Debug().Err(err).Msg("wishlist hydrate failed, starting empty")
		return
	}
	s.mu.Lock()
	for _, slug := range slugs {
		s.slugs[slug] = struct{}{}
	}
	s.mu.Unlock()
}

// Has reports whether the product is on the list.
func (s *Store) Has(slug string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.slugs[slug]
	return ok
}

// Add puts a product on the list. Adding an existing slug is a no-op.
func (s *Store) Add(ctx context.Context, slug string) {
	if slug == "" {
		return
	}
	s.mu.Lock()
	_, exists := s.slugs[slug]
	if !exists {
		s.slugs[slug] = struct{}{}
	}
	s.mu.Unlock()
	if !exists {
		s.persist(ctx)
	}
}

// RemoveBySlug takes a product off the list. Absent slugs are a no-op.
func (s *Store) RemoveBySlug(ctx context.Context, slug string) {
	s.mu.Lock()
	_, exists := s.slugs[slug]
	delete(s.slugs, slug)
	s.mu.Unlock()
	if exists {
		s.persist(ctx)
	}
}

// Slugs returns the list in sorted order for stable rendering.
func (s *Store) Slugs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.slugs))
	for slug := range s.slugs {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

// Count is the number of saved products.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slugs)
}

// SyncWithServer pushes local-only slugs to the server and then adopts
// the server's list as the local state. Individual push failures and a
// failed fetch are tallied in the result, never returned: a broken sync
// must not break the page that triggered it.
func (s *Store) SyncWithServer(ctx context.Context, remote Remote, userID string) SyncResult {
	var res SyncResult

	for _, slug := range s.Slugs() {
		if err := remote.Push(ctx, userID, slug); err != nil {
			s.logger.Debug().Err(err).Str("slug", slug).Msg("wishlist push failed")
			res.Failures++
			continue
		}
		res.Pushed++
	}

	serverSlugs, err := remote.Fetch(ctx, userID)
	if err != nil {
		s.logger.Debug().Err(err).Msg("wishlist fetch failed, keeping local state")
		res.Failures++
		return res
	}
	res.Fetched = len(serverSlugs)

	s.mu.Lock()
	s.slugs = make(map[string]struct{}, len(serverSlugs))
	for _, slug := range serverSlugs {
		s.slugs[slug] = struct{}{}
	}
	s.mu.Unlock()

	s.persist(ctx)
	return res
}

func (s *Store) persist(ctx context.Context) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(ctx, s.sessionID, s.Slugs()); err != nil {
		s.logger.Debug().Err(err).Msg("wishlist persist failed")
	}
}
