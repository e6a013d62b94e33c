package storefront

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/insany/shop/internal/domain"
	"github.com/insany/shop/internal/handler"
	"github.com/insany/shop/internal/wishlist"
)

// WishlistHandler serves the guest wishlist plus its server sync.
type WishlistHandler struct {
	persister wishlist.Persister
	service   domain.WishlistService
	secure    bool
	logger    zerolog.Logger
}

// NewWishlistHandler creates a wishlist handler.
func NewWishlistHandler(persister wishlist.Persister, service domain.WishlistService, secure bool, logger zerolog.Logger) *WishlistHandler {
	return &WishlistHandler{
		persister: persister,
		service:   service,
		secure:    secure,
		logger:    logger,
	}
}

func (h *WishlistHandler) store(ctx context.Context, sessionID string) *wishlist.Store {
	s := wishlist.NewStore(sessionID, h.persister, h.logger)
	s.Hydrate(ctx)
	return s
}

type wishlistView struct {
	Slugs []string `json:"slugs"`
	Count int      `json:"count"`
}

// View handles GET /wishlist.
func (h *WishlistHandler) View(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(r)
	if sessionID == "" {
		handler.RespondJSON(w, http.StatusOK, wishlistView{Slugs: []string{}})
		return
	}
	s := h.store(r.Context(), sessionID)
	handler.RespondJSON(w, http.StatusOK, wishlistView{Slugs: s.Slugs(), Count: s.Count()})
}

type wishlistAddRequest struct {
	Slug string `json:"slug" validate:"required,max=200"`
}

// Add handles POST /wishlist.
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req wishlistAddRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	sessionID := EnsureSession(w, r, h.secure)
	s := h.store(r.Context(), sessionID)
	s.Add(r.Context(), req.Slug)

	handler.RespondJSON(w, http.StatusOK, wishlistView{Slugs: s.Slugs(), Count: s.Count()})
}

// Remove handles DELETE /wishlist/{slug}.
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	slug, err := handler.PathValue(r, "slug")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	sessionID := SessionID(r)
	if sessionID == "" {
		handler.RespondJSON(w, http.StatusOK, wishlistView{Slugs: []string{}})
		return
	}
	s := h.store(r.Context(), sessionID)
	s.RemoveBySlug(r.Context(), slug)

	handler.RespondJSON(w, http.StatusOK, wishlistView{Slugs: s.Slugs(), Count: s.Count()})
}

type wishlistSyncRequest struct {
	UserID string `json:"userId" validate:"required,max=128"`
}

// Sync handles POST /wishlist/sync: pushes the guest list to the
// server-side wishlist and adopts the merged result. The response
// always succeeds; partial failures are reported in the body.
func (h *WishlistHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req wishlistSyncRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	sessionID := EnsureSession(w, r, h.secure)
	s := h.store(r.Context(), sessionID)

	res := s.SyncWithServer(r.Context(), serviceRemote{h.service}, req.UserID)

	handler.RespondJSON(w, http.StatusOK, map[string]any{
		"slugs":    s.Slugs(),
		"pushed":   res.Pushed,
		"fetched":  res.Fetched,
		"failures": res.Failures,
	})
}

type wishlistMergeRequest struct {
	UserID string   `json:"userId" validate:"required,max=128"`
	Slugs  []string `json:"slugs" validate:"max=500,dive,required,max=200"`
}

// Merge handles POST /wishlist/merge: bulk-merges a client-held slug
// list into the server-side wishlist and returns the authoritative
// result. Used by clients that keep the wishlist in local storage
// instead of the session.
func (h *WishlistHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req wishlistMergeRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	slugs, err := h.service.Merge(r.Context(), req.UserID, req.Slugs)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, wishlistView{Slugs: slugs, Count: len(slugs)})
}

// serviceRemote adapts the server-side wishlist service to the store's
// Remote port.
type serviceRemote struct {
	svc domain.WishlistService
}

func (r serviceRemote) Push(ctx context.Context, userID, slug string) error {
	return r.svc.Add(ctx, userID, slug)
}

func (r serviceRemote) Fetch(ctx context.Context, userID string) ([]string, error) {
	return r.svc.ListSlugs(ctx, userID)
}
