package domain

import "sort"

// CartLine is one entry in a shopping cart. It snapshots the display
// fields at add time so the cart stays renderable even if the catalog
// changes underneath it.
type CartLine struct {
	ID             string            `json:"id"`
	ProductID      string            `json:"productId"`
	VariantID      string            `json:"variantId"`
	Slug           string            `json:"slug"`
	Title          string            `json:"title"`
	UnitPriceCents int64             `json:"unitPriceCents"`
	Currency       string            `json:"currency"`
	Quantity       int               `json:"quantity"`
	ImageURL       string            `json:"imageUrl,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
}

// Key is the merge identity of a line. Lines with resolved IDs merge on
// (productId, variantId); lines without IDs fall back to the slug plus
// the canonical attribute set.
func (l CartLine) Key() string {
	if l.ProductID != "" || l.VariantID != "" {
		return l.ProductID + "|" + l.VariantID
	}
	return l.Slug + "|" + canonicalAttributes(l.Attributes)
}

// LineTotalCents is quantity times unit price.
func (l CartLine) LineTotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// Validate checks the line invariants before it enters a cart.
func (l CartLine) Validate() error {
	const op = "cart.line.validate"
	if l.Slug == "" && l.ProductID == "" {
		return Invalid(op, "Cart line must reference a product")
	}
	if l.Quantity < 1 {
		return Invalid(op, "Quantity must be at least 1")
	}
	if l.UnitPriceCents < 0 {
		return Invalid(op, "Unit price cannot be negative")
	}
	return nil
}

func canonicalAttributes(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for _, k := range keys {
		out += k + "=" + attrs[k] + ";"
	}
	return out
}
