package price

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		locale   string
		currency []string
		want     string
	}{
		{name: "pt brl", cents: 19900, locale: "pt", want: "R$ 199,00"},
		{name: "en usd", cents: 19900, locale: "en", want: "$199.00"},
		{name: "pt grouping", cents: 123456789, locale: "pt", want: "R$ 1.234.567,89"},
		{name: "en grouping", cents: 123456789, locale: "en", want: "$1,234,567.89"},
		{name: "zero", cents: 0, locale: "pt", want: "R$ 0,00"},
		{name: "single cent", cents: 1, locale: "en", want: "$0.01"},
		{name: "negative", cents: -5000, locale: "en", want: "-$50.00"},
		{name: "region suffix ignored", cents: 19900, locale: "pt-BR", want: "R$ 199,00"},
		{name: "unknown locale falls back to en", cents: 19900, locale: "xx", want: "$199.00"},
		{name: "explicit currency override", cents: 19900, locale: "en", currency: []string{"EUR"}, want: "€199.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.cents, tt.locale, tt.currency...))
		})
	}
}

func TestParseCents(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"199.00", 19900},
		{"199,00", 19900},
		{"R$ 199,00", 19900},
		{"$1,234.56", 123456},
		{"1.234,56", 123456},
		{"199", 19900},
		{"199.9", 19990},
		{"0.005", 1},
		{"", 0},
		{"abc", 0},
		{"R$", 0},
		{"-12.50", -1250},
		{"999999999999999", 99999999999999900},
		{"9999999999999999", 0},
		{"99999999999999999999999999999999", 0},
		{"-99999999999999999999999999999999", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCents(tt.input))
		})
	}
}

func TestOrderTotal(t *testing.T) {
	assert.Equal(t, int64(11500), OrderTotal(10000, 1500, 0))
	assert.Equal(t, int64(10500), OrderTotal(10000, 1500, 1000))
	assert.Equal(t, int64(0), OrderTotal(1000, 500, 2000), "discount never pushes total below zero")
	assert.Equal(t, int64(0), OrderTotal(0, 0, 0))
}

func TestApply(t *testing.T) {
	rules := DefaultRules()

	t.Run("percentage coupon", func(t *testing.T) {
		res := Apply(rules, "insany10", 10000)
		assert.True(t, res.Valid)
		assert.Equal(t, int64(1000), res.DiscountCents)
		assert.False(t, res.FreeShipping)
		assert.Equal(t, "coupon.applied.percentage", res.Message)
	})

	t.Run("free shipping coupon", func(t *testing.T) {
		res := Apply(rules, "insanyfrete", 10000)
		assert.True(t, res.Valid)
		assert.Zero(t, res.DiscountCents)
		assert.True(t, res.FreeShipping)
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		res := Apply(rules, "  InSaNy10  ", 20000)
		assert.True(t, res.Valid)
		assert.Equal(t, int64(2000), res.DiscountCents)
	})

	t.Run("unknown code", func(t *testing.T) {
		res := Apply(rules, "bogus", 10000)
		assert.False(t, res.Valid)
		assert.Zero(t, res.DiscountCents)
		assert.Equal(t, "coupon.invalid", res.Message)
	})

	t.Run("empty code", func(t *testing.T) {
		res := Apply(rules, "   ", 10000)
		assert.False(t, res.Valid)
		assert.Equal(t, "coupon.empty", res.Message)
	})

	t.Run("percentage truncates toward zero", func(t *testing.T) {
		res := Apply(rules, "insany10", 999)
		assert.Equal(t, int64(99), res.DiscountCents)
	})
}
