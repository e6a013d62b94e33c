package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/insany/shop/internal/cart"
	"github.com/insany/shop/internal/domain"
)

// mockProductService implements domain.ProductService with func fields.
type mockProductService struct {
	getVariantFunc func(ctx context.Context, variantID string) (*domain.Variant, error)
}

func (m *mockProductService) ListProducts(context.Context, domain.ProductFilter) ([]domain.ProductListItem, error) {
	return nil, nil
}

func (m *mockProductService) GetProductDetail(context.Context, string) (*domain.ProductDetail, error) {
	return nil, domain.ErrProductNotFound
}

func (m *mockProductService) GetVariant(ctx context.Context, variantID string) (*domain.Variant, error) {
	if m.getVariantFunc != nil {
		return m.getVariantFunc(ctx, variantID)
	}
	return nil, domain.ErrVariantNotFound
}

func (m *mockProductService) CreateProduct(context.Context, domain.CreateProductParams) (*domain.Product, error) {
	return nil, nil
}

func (m *mockProductService) UpdateProduct(context.Context, string, domain.UpdateProductParams) error {
	return nil
}

func (m *mockProductService) ArchiveProduct(context.Context, string) error {
	return nil
}

func (m *mockProductService) CreateVariant(context.Context, domain.CreateVariantParams) (*domain.Variant, error) {
	return nil, nil
}

func (m *mockProductService) AdjustInventory(context.Context, domain.AdjustInventoryParams) (*domain.Variant, error) {
	return nil, nil
}

func catalogVariant() *domain.Variant {
	return &domain.Variant{
		ID:            "v1",
		ProductID:     "p1",
		SKU:           "TEE-M-BLACK",
		PriceCents:    9900,
		Currency:      "BRL",
		StockQuantity: 5,
		IsActive:      true,
		Attributes:    map[string]string{"size": "m", "color": "black"},
	}
}

func testCartHandler(products domain.ProductService) (*CartHandler, *cart.MemoryPersister) {
	persister := cart.NewMemoryPersister()
	h := NewCartHandler(persister, products, "pt", false, zerolog.Nop())
	return h, persister
}

func withSession(req *http.Request, sessionID string) *http.Request {
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionID})
	return req
}

func decodeCartView(t *testing.T, body *bytes.Buffer) cartView {
	t.Helper()
	var view cartView
	if err := json.Unmarshal(body.Bytes(), &view); err != nil {
		t.Fatalf("decoding cart view: %v", err)
	}
	return view
}

func TestCartViewWithoutSession(t *testing.T) {
	h, _ := testCartHandler(&mockProductService{})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	h.View(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	view := decodeCartView(t, rec.Body)
	if view.Count != 0 || len(view.Lines) != 0 {
		t.Errorf("expected empty cart, got %+v", view)
	}
}

func TestCartAddUsesCatalogPrice(t *testing.T) {
	products := &mockProductService{
		getVariantFunc: func(_ context.Context, id string) (*domain.Variant, error) {
			if id != "v1" {
				return nil, domain.ErrVariantNotFound
			}
			return catalogVariant(), nil
		},
	}
	h, _ := testCartHandler(products)

	body := bytes.NewBufferString(`{"variantId":"v1","quantity":2,"slug":"tee","title":"Logo Tee"}`)
	req := httptest.NewRequest(http.MethodPost, "/cart/items", body)
	rec := httptest.NewRecorder()
	h.Add(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	view := decodeCartView(t, rec.Body)
	if view.Count != 2 {
		t.Errorf("count = %d, want 2", view.Count)
	}
	if len(view.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(view.Lines))
	}
	line := view.Lines[0]
	if line.UnitPriceCents != 9900 || line.Currency != "BRL" {
		t.Errorf("price = %d %s, want catalog 9900 BRL", line.UnitPriceCents, line.Currency)
	}
	if line.Attributes["size"] != "m" {
		t.Errorf("attributes should come from the catalog, got %v", line.Attributes)
	}

	// A session cookie must be minted for the fresh visitor.
	cookies := rec.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == sessionCookie && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a session cookie on first add")
	}
}

func TestCartAddUnknownVariant(t *testing.T) {
	h, _ := testCartHandler(&mockProductService{})

	body := bytes.NewBufferString(`{"variantId":"nope","quantity":1}`)
	req := httptest.NewRequest(http.MethodPost, "/cart/items", body)
	rec := httptest.NewRecorder()
	h.Add(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCartAddRejectsZeroQuantity(t *testing.T) {
	h, _ := testCartHandler(&mockProductService{})

	body := bytes.NewBufferString(`{"variantId":"v1","quantity":0}`)
	req := httptest.NewRequest(http.MethodPost, "/cart/items", body)
	rec := httptest.NewRecorder()
	h.Add(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCartUpdateLineIncrement(t *testing.T) {
	persister := cart.NewMemoryPersister()
	line := domain.CartLine{
		ID:             "l1",
		ProductID:      "p1",
		VariantID:      "v1",
		Title:          "Logo Tee",
		UnitPriceCents: 9900,
		Currency:       "BRL",
		Quantity:       1,
	}
	if err := persister.Save(context.Background(), "s1", []domain.CartLine{line}); err != nil {
		t.Fatal(err)
	}
	h := NewCartHandler(persister, &mockProductService{}, "pt", false, zerolog.Nop())

	body := bytes.NewBufferString(`{"op":"increment"}`)
	req := withSession(httptest.NewRequest(http.MethodPatch, "/cart/items/l1", body), "s1")
	req.SetPathValue("lineId", "l1")
	rec := httptest.NewRecorder()
	h.UpdateLine(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	view := decodeCartView(t, rec.Body)
	if view.Count != 2 {
		t.Errorf("count = %d, want 2", view.Count)
	}
}

func TestCartUpdateLineWithoutSession(t *testing.T) {
	h, _ := testCartHandler(&mockProductService{})

	body := bytes.NewBufferString(`{"op":"increment"}`)
	req := httptest.NewRequest(http.MethodPatch, "/cart/items/l1", body)
	req.SetPathValue("lineId", "l1")
	rec := httptest.NewRecorder()
	h.UpdateLine(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCartClear(t *testing.T) {
	persister := cart.NewMemoryPersister()
	line := domain.CartLine{
		ID: "l1", ProductID: "p1", VariantID: "v1",
		Title: "Tee", UnitPriceCents: 9900, Quantity: 3,
	}
	if err := persister.Save(context.Background(), "s1", []domain.CartLine{line}); err != nil {
		t.Fatal(err)
	}
	h := NewCartHandler(persister, &mockProductService{}, "pt", false, zerolog.Nop())

	req := withSession(httptest.NewRequest(http.MethodDelete, "/cart", nil), "s1")
	rec := httptest.NewRecorder()
	h.Clear(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	view := decodeCartView(t, rec.Body)
	if view.Count != 0 {
		t.Errorf("count = %d, want 0", view.Count)
	}
	if lines, _ := persister.Load(context.Background(), "s1"); len(lines) != 0 {
		t.Errorf("persisted lines = %d, want 0", len(lines))
	}
}
