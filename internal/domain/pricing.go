package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// vipPremiumRatio is applied when a showtime leaves the VIP price unset.
var vipPremiumRatio = decimal.NewFromFloat(1.5)

// PriceTable maps seat categories to unit prices for one showtime. It is
// immutable once attached to a showtime.
type PriceTable struct {
	prices map[Category]decimal.Decimal
}

// NewPriceTable builds a price table from the standard and premium unit
// prices. A zero VIP price means "unset" and defaults to 1.5x the premium
// price. Negative prices are rejected.
func NewPriceTable(standard, premium, vip decimal.Decimal) (PriceTable, error) {
	if standard.IsNegative() || premium.IsNegative() || vip.IsNegative() {
		return PriceTable{}, fmt.Errorf("unit prices must not be negative")
	}

	if vip.IsZero() {
		vip = premium.Mul(vipPremiumRatio)
	}

	return PriceTable{
		prices: map[Category]decimal.Decimal{
			Standard: standard,
			Premium:  premium,
			VIP:      vip,
		},
	}, nil
}

func (pt PriceTable) UnitPrice(category Category) (decimal.Decimal, error) {
	price, ok := pt.prices[category]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	return price, nil
}
