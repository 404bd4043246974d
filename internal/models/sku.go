package models

// SKU is the slice of the catalogue this service consumes per roll variant:
// the width that drives rate derivation and the default tax rate.
type SKU struct {
	ID                    string  `json:"id"`
	ProductID             string  `json:"product_id"`
	Name                  string  `json:"name"`
	WidthInches           float64 `json:"width_inches"`
	GSM                   int     `json:"gsm"`
	Quality               string  `json:"quality"`
	DefaultTaxRatePercent float64 `json:"default_tax_rate_percent"`
}
