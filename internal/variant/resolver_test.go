package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insany/shop/internal/domain"
)

func shirtOptions() []domain.Option {
	return []domain.Option{
		{
			Slug: "size",
			Name: "Size",
			Values: []domain.OptionValue{
				{Slug: "p", Label: "P"},
				{Slug: "m", Label: "M"},
				{Slug: "g", Label: "G"},
			},
		},
		{
			Slug: "color",
			Name: "Color",
			Values: []domain.OptionValue{
				{Slug: "black", Label: "Black"},
				{Slug: "white", Label: "White"},
			},
		},
	}
}

func v(id, size, color string, stock int32) domain.Variant {
	return domain.Variant{
		ID:            id,
		SKU:           "TS-" + size + "-" + color,
		PriceCents:    9900,
		Currency:      "BRL",
		StockQuantity: stock,
		IsActive:      true,
		Attributes:    map[string]string{"size": size, "color": color},
	}
}

// The matrix under test: black exists in P and M, white only in M and G,
// and M/white is sold out.
func shirtVariants() []domain.Variant {
	return []domain.Variant{
		v("v1", "p", "black", 5),
		v("v2", "m", "black", 3),
		v("v3", "m", "white", 0),
		v("v4", "g", "white", 2),
	}
}

func TestResolveFullSelection(t *testing.T) {
	res := Resolve(shirtOptions(), shirtVariants(), Selection{"size": "m", "color": "black"})

	require.NotNil(t, res.Selected)
	assert.Equal(t, "v2", res.Selected.ID)
}

func TestResolvePartialSelectionHasNoVariant(t *testing.T) {
	res := Resolve(shirtOptions(), shirtVariants(), Selection{"color": "black"})
	assert.Nil(t, res.Selected)
}

func TestResolveNoMatchingCombination(t *testing.T) {
	// G/black was never produced.
	res := Resolve(shirtOptions(), shirtVariants(), Selection{"size": "g", "color": "black"})
	assert.Nil(t, res.Selected)
}

func TestAvailabilityWithColorSelected(t *testing.T) {
	res := Resolve(shirtOptions(), shirtVariants(), Selection{"color": "black"})

	sizes := res.Availability["size"]
	assert.True(t, sizes["p"], "P/black is in stock")
	assert.True(t, sizes["m"], "M/black is in stock")
	assert.False(t, sizes["g"], "G/black does not exist")

	// The color axis ignores the color selection itself: white is still
	// offered because switching to it keeps a purchasable variant (G).
	colors := res.Availability["color"]
	assert.True(t, colors["black"])
	assert.True(t, colors["white"])
}

func TestAvailabilityExcludesSoldOut(t *testing.T) {
	res := Resolve(shirtOptions(), shirtVariants(), Selection{"size": "m"})

	colors := res.Availability["color"]
	assert.True(t, colors["black"], "M/black has stock")
	assert.False(t, colors["white"], "M/white is sold out")
}

func TestAvailabilityRespectsReservedStock(t *testing.T) {
	variants := shirtVariants()
	variants[0].StockReserved = 5 // P/black fully reserved

	res := Resolve(shirtOptions(), variants, Selection{"color": "black"})
	assert.False(t, res.Availability["size"]["p"])
	assert.True(t, res.Availability["size"]["m"])
}

func TestAvailabilityIgnoresInactiveVariants(t *testing.T) {
	variants := shirtVariants()
	variants[1].IsActive = false // M/black retired

	res := Resolve(shirtOptions(), variants, Selection{"color": "black"})
	assert.False(t, res.Availability["size"]["m"])
}

func TestResolveEmptySelection(t *testing.T) {
	res := Resolve(shirtOptions(), shirtVariants(), Selection{})

	assert.Nil(t, res.Selected)
	// Every value reachable on some in-stock variant is available.
	assert.True(t, res.Availability["size"]["p"])
	assert.True(t, res.Availability["size"]["m"])
	assert.True(t, res.Availability["size"]["g"])
	assert.True(t, res.Availability["color"]["black"])
	assert.True(t, res.Availability["color"]["white"])
}
