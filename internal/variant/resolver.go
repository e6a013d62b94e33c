// Package variant resolves a customer's option selection against a
// product's variant matrix. Resolution is pure and recomputed per call;
// the matrices are small enough that caching would only add staleness.
package variant

import "github.com/insany/shop/internal/domain"

// Selection maps option slug to the chosen value slug. Options absent
// from the map are unselected.
type Selection map[string]string

// Result is the outcome of resolving a selection.
type Result struct {
	// Selected is the single variant matching a complete selection, nil
	// while the selection is partial or matches nothing.
	Selected *domain.Variant

	// Availability reports, per option value, whether choosing it keeps
	// the rest of the current selection purchasable.
	Availability map[string]map[string]bool
}

// Resolve matches the selection against the variants and computes the
// availability matrix. A selected option must match the variant's value
// exactly; an unselected option matches any value. A value is available
// when some in-stock variant carries it together with every value the
// customer selected on the other options.
func Resolve(options []domain.Option, variants []domain.Variant, sel Selection) Result {
	res := Result{Availability: make(map[string]map[string]bool, len(options))}

	for _, opt := range options {
		vals := make(map[string]bool, len(opt.Values))
		for _, v := range opt.Values {
			vals[v.Slug] = valueAvailable(variants, sel, opt.Slug, v.Slug)
		}
		res.Availability[opt.Slug] = vals
	}

	if len(sel) < len(options) {
		return res
	}
	for _, opt := range options {
		if _, ok := sel[opt.Slug]; !ok {
			return res
		}
	}

	var match *domain.Variant
	for i := range variants {
		if !matches(&variants[i], sel, "", "") {
			continue
		}
		if match != nil {
			// Ambiguous matrix; refuse to pick.
			return res
		}
		match = &variants[i]
	}
	res.Selected = match
	return res
}

// valueAvailable reports whether picking value for option is compatible
// with the selection on all other options on some purchasable variant.
func valueAvailable(variants []domain.Variant, sel Selection, option, value string) bool {
	for i := range variants {
		v := &variants[i]
		if !v.IsActive || v.Available() <= 0 {
			continue
		}
		if matches(v, sel, option, value) {
			return true
		}
	}
	return false
}

// matches checks the variant against the selection, with the candidate
// option forced to the candidate value. Unselected options are
// wildcards.
func matches(v *domain.Variant, sel Selection, option, value string) bool {
	if option != "" && v.Attributes[option] != value {
		return false
	}
	for opt, val := range sel {
		if opt == option {
			continue
		}
		if v.Attributes[opt] != val {
			return false
		}
	}
	return true
}
