package domain

import "github.com/shopspring/decimal"

// FreeCurrency marks the price of a free-to-play item
const FreeCurrency = "FREE"

// Fuzzy acceptance thresholds. Adding by name uses a stricter word-order
// insensitive match; lookups against tracked items accept looser subset matches.
const (
	AddMatchThreshold    = 80.0
	LookupMatchThreshold = 70.0
)

// Item is one catalog entry
type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Price is the current store price of an item in the configured region
type Price struct {
	IsFree   bool            `json:"is_free"`
	Current  decimal.Decimal `json:"current"`
	Original decimal.Decimal `json:"original"`
	Discount int             `json:"discount"`
	Currency string          `json:"currency"`
}

// FreePrice is what a free item is recorded as
func FreePrice() Price {
	return Price{
		IsFree:   true,
		Current:  decimal.Zero,
		Original: decimal.Zero,
		Discount: 100,
		Currency: FreeCurrency,
	}
}
