package domain

// CartItem is a single storefront cart line. The name and unit price are
// snapshots taken when the product was added.
type CartItem struct {
	ProductID    string  `json:"product_id"`
	Name         string  `json:"name"`
	UnitPriceUSD float64 `json:"unit_price"`
	Quantity     int     `json:"quantity"`
}

// CartTotals is the priced breakdown of a cart in canonical USD.
type CartTotals struct {
	SubtotalUSD float64 `json:"subtotal"`
	ShippingUSD float64 `json:"shipping"`
	TaxUSD      float64 `json:"tax"`
	TotalUSD    float64 `json:"total"`
}
