package domain

import (
	"context"
	"time"
)

// WishlistItem is one saved product on a customer's server-side wishlist.
type WishlistItem struct {
	UserID      string
	ProductSlug string
	CreatedAt   time.Time
}

// WishlistService stores the authoritative per-user wishlist. Guest
// wishlists live client-side and are reconciled against this on sync.
type WishlistService interface {
	// ListSlugs returns the user's saved product slugs.
	ListSlugs(ctx context.Context, userID string) ([]string, error)

	// Add saves a slug for the user. Adding an existing slug is a no-op.
	Add(ctx context.Context, userID, productSlug string) error

	// Remove deletes a slug for the user. Removing an absent slug is a
	// no-op.
	Remove(ctx context.Context, userID, productSlug string) error

	// Merge pushes guest slugs into the user's list and returns the
	// resulting authoritative set.
	Merge(ctx context.Context, userID string, slugs []string) ([]string, error)
}
