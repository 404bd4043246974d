package models

import (
	"time"

	"github.com/paperkart/paperkart-sales-service/internal/pricing"
)

// OrderStatus represents the lifecycle state of a sales order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusDispatched OrderStatus = "dispatched"
	OrderStatusInvoiced   OrderStatus = "invoiced"
	OrderStatusClosed     OrderStatus = "closed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// SalesOrder is a customer order for paper rolls, priced off the customer's
// 44-inch benchmark rate at creation time.
type SalesOrder struct {
	ID              string      `json:"id"`
	CustomerID      string      `json:"customer_id"`
	Status          OrderStatus `json:"status"`
	BenchmarkRate44 float64     `json:"benchmark_rate_44"`
	DiscountPercent float64     `json:"discount_percent"`
	Lines           []OrderLine `json:"lines"`

	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	GrandTotal     float64 `json:"grand_total"`

	ChallanNumber string `json:"challan_number,omitempty"`
	Notes         string `json:"notes,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DispatchedAt *time.Time `json:"dispatched_at,omitempty"`
	InvoicedAt   *time.Time `json:"invoiced_at,omitempty"`
}

// OrderLine is a single roll line on a sales order, with its pricing
// breakdown computed by the pricing engine.
type OrderLine struct {
	ID            string  `json:"id"`
	SKUID         string  `json:"sku_id"`
	SKUName       string  `json:"sku_name,omitempty"`
	WidthInches   float64 `json:"width_inches"`
	QuantityRolls int     `json:"quantity_rolls"`

	// OverrideRate supersedes the derived rate when set, including an
	// explicit zero. nil means the rate was derived from the benchmark.
	OverrideRate *float64 `json:"override_rate,omitempty"`

	TaxRatePercent float64 `json:"tax_rate_percent"`

	DerivedRate   float64 `json:"derived_rate"`
	EffectiveRate float64 `json:"effective_rate"`
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	TaxableAmount float64 `json:"taxable_amount"`
	Tax           float64 `json:"tax"`
	Total         float64 `json:"total"`
}

// PricingRequest converts the line into the pricing engine's input shape.
func (l *OrderLine) PricingRequest() pricing.LineRequest {
	return pricing.LineRequest{
		WidthInches:    l.WidthInches,
		QuantityRolls:  l.QuantityRolls,
		OverrideRate:   l.OverrideRate,
		TaxRatePercent: l.TaxRatePercent,
	}
}

// ApplyPricing copies a priced breakdown back onto the line.
func (l *OrderLine) ApplyPricing(p pricing.PricedLine) {
	l.DerivedRate = p.DerivedRate
	l.EffectiveRate = p.EffectiveRate
	l.Subtotal = p.Subtotal
	l.Discount = p.Discount
	l.TaxableAmount = p.TaxableAmount
	l.Tax = p.Tax
	l.Total = p.Total
}

// Reprice recomputes every line and the order totals from the stored
// benchmark rate and discount percent.
func (o *SalesOrder) Reprice() {
	requests := make([]pricing.LineRequest, len(o.Lines))
	for i := range o.Lines {
		req := o.Lines[i].PricingRequest()
		requests[i] = req
		o.Lines[i].ApplyPricing(pricing.PriceLine(o.BenchmarkRate44, req, o.DiscountPercent))
	}

	totals := pricing.AggregateOrder(o.BenchmarkRate44, requests, o.DiscountPercent)
	o.Subtotal = totals.Subtotal
	o.DiscountAmount = totals.DiscountAmount
	o.TaxAmount = totals.TaxAmount
	o.GrandTotal = totals.GrandTotal
}

// CanCancel reports whether the order may still be cancelled. Once rolls
// leave the godown on a challan the order is past the point of no return.
func (o *SalesOrder) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// CreateOrderRequest is the payload for creating (or quoting) an order.
type CreateOrderRequest struct {
	CustomerID      string             `json:"customer_id"`
	DiscountPercent float64            `json:"discount_percent"`
	Notes           string             `json:"notes"`
	Lines           []OrderLineRequest `json:"lines"`
}

// OrderLineRequest is a single requested line before SKU resolution. Width
// and the default tax rate come from the catalogue; the client only selects
// the SKU, a quantity, and optionally a manual rate.
type OrderLineRequest struct {
	SKUID          string   `json:"sku_id"`
	QuantityRolls  int      `json:"quantity_rolls"`
	OverrideRate   *float64 `json:"override_rate,omitempty"`
	TaxRatePercent *float64 `json:"tax_rate_percent,omitempty"`
}

// UpdateOrderStatusRequest moves an order through its lifecycle.
type UpdateOrderStatusRequest struct {
	Status        OrderStatus `json:"status"`
	ChallanNumber string      `json:"challan_number,omitempty"`
	Notes         string      `json:"notes,omitempty"`
}

// OrderListFilter narrows an order listing.
type OrderListFilter struct {
	CustomerID string
	Status     *OrderStatus
	Limit      int
	Offset     int
}

// QuoteResponse is the pricing preview for an order that has not been
// persisted.
type QuoteResponse struct {
	CustomerID      string              `json:"customer_id"`
	BenchmarkRate44 float64             `json:"benchmark_rate_44"`
	DiscountPercent float64             `json:"discount_percent"`
	Lines           []QuotedLine        `json:"lines"`
	Totals          pricing.OrderTotals `json:"totals"`
}

// QuotedLine pairs a resolved SKU with its priced breakdown.
type QuotedLine struct {
	SKUID         string             `json:"sku_id"`
	SKUName       string             `json:"sku_name,omitempty"`
	WidthInches   float64            `json:"width_inches"`
	QuantityRolls int                `json:"quantity_rolls"`
	Pricing       pricing.PricedLine `json:"pricing"`
}
