package postgres

import (
	"context"
	"fmt"
)

// ListWishlistSlugs returns the user's saved slugs in insertion order.
func (s *Store) ListWishlistSlugs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT product_slug FROM wishlist_items WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("scan wishlist slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// AddWishlistSlug saves a slug; duplicates are silently kept as-is.
func (s *Store) AddWishlistSlug(ctx context.Context, userID, slug string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO wishlist_items (user_id, product_slug) VALUES ($1, $2)
		 ON CONFLICT (user_id, product_slug) DO NOTHING`, userID, slug)
	if err != nil {
		return fmt.Errorf("add wishlist slug: %w", err)
	}
	return nil
}

// RemoveWishlistSlug deletes a slug; removing an absent slug is a no-op.
func (s *Store) RemoveWishlistSlug(ctx context.Context, userID, slug string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_slug = $2`, userID, slug)
	if err != nil {
		return fmt.Errorf("remove wishlist slug: %w", err)
	}
	return nil
}

// MergeWishlistSlugs pushes the given slugs and returns the resulting
// authoritative list.
func (s *Store) MergeWishlistSlugs(ctx context.Context, userID string, slugs []string) ([]string, error) {
	for _, slug := range slugs {
		if err := s.AddWishlistSlug(ctx, userID, slug); err != nil {
			return nil, err
		}
	}
	return s.ListWishlistSlugs(ctx, userID)
}
