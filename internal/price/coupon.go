package price

import "strings"

// RuleKind selects how a coupon affects the order.
type RuleKind string

const (
	KindPercentage   RuleKind = "percentage"
	KindFreeShipping RuleKind = "free_shipping"
)

// Rule is one redeemable coupon. Value is the percentage (0-100) for
// percentage rules and unused for free-shipping rules.
type Rule struct {
	Code  string
	Kind  RuleKind
	Value int64
}

// DefaultRules returns the launch coupon set. Deployments override this
// through configuration.
func DefaultRules() []Rule {
	return []Rule{
		{Code: "insany10", Kind: KindPercentage, Value: 10},
		{Code: "insanyfrete", Kind: KindFreeShipping},
	}
}

// CouponResult describes the outcome of applying a coupon code.
type CouponResult struct {
	Valid         bool   `json:"valid"`
	Code          string `json:"code,omitempty"`
	DiscountCents int64  `json:"discountCents"`
	FreeShipping  bool   `json:"freeShipping"`
	// Message is an i18n key, not display text.
	Message string `json:"message"`
}

// Apply matches a user-entered code against the rules and computes its
// effect on the given subtotal. Matching is case-insensitive and
// ignores surrounding whitespace. An empty input is not an error, just
// an invalid result.
func Apply(rules []Rule, code string, subtotalCents int64) CouponResult {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return CouponResult{Message: "coupon.empty"}
	}

	for _, r := range rules {
		if strings.ToLower(r.Code) != normalized {
			continue
		}
		switch r.Kind {
		case KindPercentage:
			return CouponResult{
				Valid:         true,
				Code:          r.Code,
				DiscountCents: subtotalCents * r.Value / 100,
				Message:       "coupon.applied.percentage",
			}
		case KindFreeShipping:
			return CouponResult{
				Valid:        true,
				Code:         r.Code,
				FreeShipping: true,
				Message:      "coupon.applied.free_shipping",
			}
		}
	}
	return CouponResult{Message: "coupon.invalid"}
}
