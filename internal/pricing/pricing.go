package pricing

import (
	"math"
	"strconv"
)

// ReferenceWidthInches is the roll width every customer's benchmark rate is
// quoted against. Rates for other widths scale linearly off it.
const ReferenceWidthInches = 44.0

// LineRequest is the input to pricing a single order line.
type LineRequest struct {
	WidthInches   float64 `json:"width_inches"`
	QuantityRolls int     `json:"quantity_rolls"`

	// OverrideRate is a manually quoted per-roll rate. nil derives the rate
	// from the benchmark; a set value always wins, including an explicit
	// zero for a free-of-charge line.
	OverrideRate *float64 `json:"override_rate,omitempty"`

	TaxRatePercent float64 `json:"tax_rate_percent"`
}

// PricedLine is the monetary breakdown of a single line.
type PricedLine struct {
	DerivedRate   float64 `json:"derived_rate"`
	EffectiveRate float64 `json:"effective_rate"`
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	TaxableAmount float64 `json:"taxable_amount"`
	Tax           float64 `json:"tax"`
	Total         float64 `json:"total"`
}

// OrderTotals is the aggregate breakdown over all lines of an order.
type OrderTotals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	GrandTotal     float64 `json:"grand_total"`
}

// DeriveRate scales a customer's 44-inch benchmark rate to the requested
// width and rounds to the nearest whole currency unit. A non-positive
// benchmark or width yields zero: a line whose SKU has not been selected yet
// is not priceable, but must not error.
func DeriveRate(benchmarkRate44, widthInches float64) float64 {
	if benchmarkRate44 <= 0 || widthInches <= 0 {
		return 0
	}
	return math.Round(benchmarkRate44 * widthInches / ReferenceWidthInches)
}

// PriceLine computes the full monetary breakdown for one line. The order
// discount is applied per line, then tax on the discounted amount. Range
// validation of discount and tax percentages is the caller's responsibility.
func PriceLine(benchmarkRate44 float64, line LineRequest, orderDiscountPercent float64) PricedLine {
	if benchmarkRate44 <= 0 || line.WidthInches <= 0 {
		return PricedLine{}
	}

	derived := DeriveRate(benchmarkRate44, line.WidthInches)

	effective := derived
	if line.OverrideRate != nil {
		effective = *line.OverrideRate
	}

	subtotal := float64(line.QuantityRolls) * effective
	discount := subtotal * orderDiscountPercent / 100
	taxable := subtotal - discount
	tax := taxable * line.TaxRatePercent / 100

	return PricedLine{
		DerivedRate:   derived,
		EffectiveRate: effective,
		Subtotal:      subtotal,
		Discount:      discount,
		TaxableAmount: taxable,
		Tax:           tax,
		Total:         taxable + tax,
	}
}

// AggregateOrder prices every line and folds the results into order totals.
// The discount amount is the sum of per-line contributions, which equals
// subtotal*pct/100 for a flat order discount but stays correct should
// per-line discounts ever diverge.
func AggregateOrder(benchmarkRate44 float64, lines []LineRequest, orderDiscountPercent float64) OrderTotals {
	var totals OrderTotals
	for _, line := range lines {
		priced := PriceLine(benchmarkRate44, line, orderDiscountPercent)
		totals.Subtotal += priced.Subtotal
		totals.DiscountAmount += priced.Discount
		totals.TaxAmount += priced.Tax
	}
	totals.GrandTotal = totals.Subtotal - totals.DiscountAmount + totals.TaxAmount
	return totals
}

// ParseOverrideRate coerces a raw form value into the override tri-state.
// Empty or non-numeric input means "not set", never "zero": an explicit "0"
// is a deliberate free-of-charge rate and must survive the round trip.
func ParseOverrideRate(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
