package domain

import (
	"time"
)

// Address mirrors the sandbox's street address object.
type Address struct {
	StreetNumber string `json:"street_number"`
	StreetName   string `json:"street_name"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip"`
}

// Geocode is a latitude/longitude pair attached to merchant records.
type Geocode struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Customer mirrors a sandbox customer record.
type Customer struct {
	ID        string  `json:"_id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Address   Address `json:"address"`
}

// Account mirrors a sandbox account record. Only Balance is consumed by the
// analytics core; the rest is carried for the API surface.
type Account struct {
	ID            string  `json:"_id"`
	Type          string  `json:"type"`
	Nickname      string  `json:"nickname"`
	Rewards       float64 `json:"rewards"`
	Balance       float64 `json:"balance"`
	AccountNumber string  `json:"account_number"`
	CustomerID    string  `json:"customer_id"`
}

// Purchase is one raw purchase as returned by the banking sandbox.
// Purchases are immutable snapshots; the analytics core never mutates them.
type Purchase struct {
	ID           string  `json:"_id"`
	Type         string  `json:"type"`
	MerchantID   string  `json:"merchant_id"`
	PayerID      string  `json:"payer_id"`
	PurchaseDate string  `json:"purchase_date"` // ISO date, "YYYY-MM-DD"
	Amount       float64 `json:"amount"`
	Status       string  `json:"status"`
	Medium       string  `json:"medium"`
	Description  string  `json:"description"`
}

// Date parses the purchase date. Malformed dates yield the zero time; the
// aggregators treat such purchases as undatable rather than failing.
func (p Purchase) Date() time.Time {
	t, err := time.Parse("2006-01-02", p.PurchaseDate)
	if err != nil {
		// Some sandbox records carry full RFC 3339 timestamps.
		t, err = time.Parse(time.RFC3339, p.PurchaseDate)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}

// Merchant is sandbox reference data. Category is an uncontrolled free-text
// string; the categorizer must be defensive about its contents.
type Merchant struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Address  Address `json:"address"`
	Geocode  Geocode `json:"geocode"`
}

// CategorizedPurchase is a purchase enriched with its resolved category and,
// when a merchant record was available, the merchant's display name. It is a
// derived value recomputed per request and never persisted.
type CategorizedPurchase struct {
	Purchase
	Category     Category `json:"category"`
	MerchantName string   `json:"merchant_name,omitempty"`
}

// SpendingByCategory is the per-category aggregate over a purchase set.
// Percentage is amount over the grand total on a 0-100 scale, 0 when the
// grand total is 0.
type SpendingByCategory struct {
	Category   Category `json:"category"`
	Amount     float64  `json:"amount"`
	Percentage float64  `json:"percentage"`
}

// SpendingTrend is one time bucket of summed spending. Date is the bucket key
// ("YYYY-MM-DD", "YYYY-Www" or "YYYY-MM" depending on granularity) and sorts
// lexicographically in chronological order.
type SpendingTrend struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// Granularity selects the trend bucket size.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// Valid reports whether g is a known granularity.
func (g Granularity) Valid() bool {
	switch g {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return true
	}
	return false
}
