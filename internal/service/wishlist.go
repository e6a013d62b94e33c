package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/insany/shop/internal/domain"
)

// WishlistStore is the storage surface the wishlist service needs.
type WishlistStore interface {
	ListWishlistSlugs(ctx context.Context, userID string) ([]string, error)
	AddWishlistSlug(ctx context.Context, userID, slug string) error
	RemoveWishlistSlug(ctx context.Context, userID, slug string) error
	MergeWishlistSlugs(ctx context.Context, userID string, slugs []string) ([]string, error)
}

type wishlistService struct {
	store  WishlistStore
	logger zerolog.Logger
}

// NewWishlistService creates the server-side wishlist service.
func NewWishlistService(store WishlistStore, logger zerolog.Logger) domain.WishlistService {
	return &wishlistService{
		store:  store,
		logger: logger.With().Str("service", "wishlist").Logger(),
	}
}

func (s *wishlistService) ListSlugs(ctx context.Context, userID string) ([]string, error) {
	slugs, err := s.store.ListWishlistSlugs(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, "wishlist.list", "Unable to load wishlist")
	}
	return slugs, nil
}

func (s *wishlistService) Add(ctx context.Context, userID, productSlug string) error {
	if productSlug == "" {
		return domain.Invalid("wishlist.add", "Product slug is required")
	}
	if err := s.store.AddWishlistSlug(ctx, userID, productSlug); err != nil {
		return domain.Internal(err, "wishlist.add", "Unable to save wishlist item")
	}
	return nil
}

func (s *wishlistService) Remove(ctx context.Context, userID, productSlug string) error {
	if err := s.store.RemoveWishlistSlug(ctx, userID, productSlug); err != nil {
		return domain.Internal(err, "wishlist.remove", "Unable to remove wishlist item")
	}
	return nil
}

func (s *wishlistService) Merge(ctx context.Context, userID string, slugs []string) ([]string, error) {
	merged, err := s.store.MergeWishlistSlugs(ctx, userID, slugs)
	if err != nil {
		return nil, domain.Internal(err, "wishlist.merge", "Unable to merge wishlist")
	}
	s.logger.Debug().Str("user_id", userID).Int("count", len(merged)).Msg("wishlist merged")
	return merged, nil
}
