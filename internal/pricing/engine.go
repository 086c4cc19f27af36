package pricing

import "math"

// Money is a monetary amount in major currency units. Values are kept exact
// through computation and only rounded for display.
type Money = float64

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Rules parameterises the totals formula.
type Rules struct {
	TaxRate          float64
	FreeShippingOver Money
	FlatShipping     Money
}

// DefaultRules returns 8% tax with flat 10.00 shipping waived above 50.00.
func DefaultRules() Rules {
	return Rules{TaxRate: 0.08, FreeShippingOver: 50, FlatShipping: 10}
}

// Totals aggregates computed pricing components.
type Totals struct {
	Subtotal Money `json:"subtotal"`
	Shipping Money `json:"shipping"`
	Tax      Money `json:"tax"`
	Total    Money `json:"total"`
}

// Compute derives order totals from the provided items. Shipping is free only
// when the subtotal is strictly greater than the threshold.
func Compute(items []Item, rules Rules) Totals {
	var subtotal Money
	for _, it := range items {
		if it.Qty <= 0 || it.UnitPrice < 0 {
			continue
		}
		subtotal += Money(it.Qty) * it.UnitPrice
	}
	shipping := rules.FlatShipping
	if subtotal > rules.FreeShippingOver {
		shipping = 0
	}
	tax := subtotal * rules.TaxRate
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}

// Round applies the display rule: two decimals, half away from zero.
func Round(v Money) Money {
	return math.Round(v*100) / 100
}

// Display returns a copy of t with every component rounded for presentation.
func (t Totals) Display() Totals {
	return Totals{
		Subtotal: Round(t.Subtotal),
		Shipping: Round(t.Shipping),
		Tax:      Round(t.Tax),
		Total:    Round(t.Total),
	}
}

// FreeShipping reports whether the shipping component was waived.
func (t Totals) FreeShipping() bool {
	return t.Shipping == 0
}
