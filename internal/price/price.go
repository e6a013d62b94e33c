// Package price holds the money arithmetic for the storefront. All
// amounts are integer cents; floats only appear transiently inside the
// tolerant parser.
package price

import (
	"math"
	"strings"
)

// localeDefaults maps a locale to its default currency and separators.
var localeDefaults = map[string]struct {
	currency string
	decimal  byte
	group    byte
}{
	"pt": {"BRL", ',', '.'},
	"en": {"USD", '.', ','},
}

// CurrencyForLocale returns the locale's default currency code.
// Unknown locales fall back to "en".
func CurrencyForLocale(locale string) string {
	if def, ok := localeDefaults[normalizeLocale(locale)]; ok {
		return def.currency
	}
	return localeDefaults["en"].currency
}

var currencySymbols = map[string]string{
	"BRL": "R$",
	"USD": "$",
	"EUR": "€",
}

// Format renders cents as a locale-aware price string. The locale picks
// the currency and separators; an optional explicit currency overrides
// the symbol while keeping the locale's separators. Unknown locales fall
// back to "en".
//
//	Format(19900, "pt")        -> "R$ 199,00"
//	Format(19900, "en")        -> "$199.00"
//	Format(123456789, "pt")    -> "R$ 1.234.567,89"
func Format(cents int64, locale string, currency ...string) string {
	def, ok := localeDefaults[normalizeLocale(locale)]
	if !ok {
		def = localeDefaults["en"]
	}

	cur := def.currency
	if len(currency) > 0 && currency[0] != "" {
		cur = strings.ToUpper(currency[0])
	}
	symbol, ok := currencySymbols[cur]
	if !ok {
		symbol = cur
	}

	negative := cents < 0
	if negative {
		cents = -cents
	}

	whole := cents / 100
	frac := cents % 100

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString(symbol)
	// BRL keeps a space between symbol and amount, USD does not.
	if cur == "BRL" {
		b.WriteByte(' ')
	}
	b.WriteString(groupDigits(whole, def.group))
	b.WriteByte(def.decimal)
	b.WriteByte(byte('0' + frac/10))
	b.WriteByte(byte('0' + frac%10))
	return b.String()
}

// maxParseDigits bounds ParseCents input; 15 digits times 100 still
// fits comfortably in int64.
const maxParseDigits = 15

// ParseCents converts a human-entered price string into cents. It is
// deliberately tolerant: currency symbols and stray characters are
// stripped, both "," and "." are accepted as the decimal separator
// (the last one wins, the other is treated as grouping), and fractions
// are rounded to the nearest cent. Anything unparseable, including
// inputs with more digits than any plausible price, yields 0.
func ParseCents(input string) int64 {
	var digits []byte
	lastSep := -1
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, c)
		case c == ',' || c == '.':
			lastSep = len(digits)
		case c == '-' && len(digits) == 0:
			digits = append(digits, c)
		}
	}
	if len(digits) == 0 || (len(digits) == 1 && digits[0] == '-') {
		return 0
	}

	negative := digits[0] == '-'
	if negative {
		digits = digits[1:]
		if lastSep > 0 {
			lastSep--
		}
	}
	if len(digits) == 0 {
		return 0
	}

	// More digits than int64 can hold is not a price; without this cap
	// the accumulator below would overflow into garbage.
	if len(digits) > maxParseDigits {
		return 0
	}

	fracLen := 0
	if lastSep >= 0 && lastSep < len(digits) {
		fracLen = len(digits) - lastSep
	}

	var whole int64
	for _, c := range digits {
		whole = whole*10 + int64(c-'0')
	}

	cents := float64(whole) * 100 / math.Pow10(fracLen)
	out := int64(math.Round(cents))
	if negative {
		out = -out
	}
	return out
}

// OrderTotal computes the payable amount. A discount can never push the
// total below zero.
func OrderTotal(subtotalCents, shippingCents, discountCents int64) int64 {
	total := subtotalCents + shippingCents - discountCents
	if total < 0 {
		return 0
	}
	return total
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	return locale
}

func groupDigits(n int64, sep byte) string {
	s := make([]byte, 0, 24)
	if n == 0 {
		return "0"
	}
	count := 0
	for n > 0 {
		if count > 0 && count%3 == 0 {
			s = append(s, sep)
		}
		s = append(s, byte('0'+n%10))
		n /= 10
		count++
	}
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
	return string(s)
}
