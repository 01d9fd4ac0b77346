package pricing

import (
	"fmt"
)

// Tier maps a minimum aggregate unit count to a wholesale discount.
// Tiers apply from MinUnits (inclusive) up to the next tier's MinUnits
// (exclusive).
type Tier struct {
	MinUnits int     `json:"min_units"`
	Discount float64 `json:"discount_percentage"`
}

// Table is a versioned discount schedule. Business changes to the tier
// thresholds are data edits on the table, not code edits.
type Table struct {
	Version string `json:"version"`
	Tiers   []Tier `json:"tiers"`
}

// Quote is the computed pricing for a cart aggregate.
type Quote struct {
	TotalMSRP          float64 `json:"total_msrp"`
	TotalUnits         int     `json:"total_units"`
	DiscountPercentage float64 `json:"discount_percentage"`
	UnitPrice          float64 `json:"unit_price"`
	EstimatedTotal     float64 `json:"estimated_total"`
	StatusMessage      string  `json:"status_message"`
}

// DefaultTable returns the current wholesale discount schedule.
func DefaultTable() Table {
	return Table{
		Version: "2025-06",
		Tiers: []Tier{
			{MinUnits: 250, Discount: 73.5},
			{MinUnits: 900, Discount: 78},
			{MinUnits: 1800, Discount: 81},
			{MinUnits: 4000, Discount: 84},
		},
	}
}

// FloorUnits returns the minimum unit count at which any discount applies,
// i.e. the first tier threshold. Zero for an empty table.
func (t Table) FloorUnits() int {
	if len(t.Tiers) == 0 {
		return 0
	}
	return t.Tiers[0].MinUnits
}

// discountFor picks the highest tier whose threshold totalUnits meets.
// Thresholds are inclusive: exactly 900 units lands in the 900 tier.
func (t Table) discountFor(totalUnits int) float64 {
	discount := 0.0
	for _, tier := range t.Tiers {
		if totalUnits >= tier.MinUnits {
			discount = tier.Discount
		}
	}
	return discount
}

// Quote computes the discount tier, discounted unit price and estimated
// total for the given cart aggregate. Pure arithmetic, no I/O. Negative
// inputs are rejected.
func (t Table) Quote(totalMSRP float64, totalUnits int) (Quote, error) {
	if totalMSRP < 0 {
		return Quote{}, fmt.Errorf("total MSRP must not be negative, got %v", totalMSRP)
	}
	if totalUnits < 0 {
		return Quote{}, fmt.Errorf("total units must not be negative, got %v", totalUnits)
	}

	q := Quote{
		TotalMSRP:     totalMSRP,
		TotalUnits:    totalUnits,
		StatusMessage: "Estimated total confirmed.",
	}

	floor := t.FloorUnits()
	if totalUnits < floor {
		// Below the wholesale floor the cart is priced at MSRP.
		q.DiscountPercentage = 0
		q.EstimatedTotal = totalMSRP
		if totalUnits > 0 {
			q.UnitPrice = totalMSRP / float64(totalUnits)
		}
		q.StatusMessage = fmt.Sprintf(
			"Minimum purchase of %d units not met. Please add %d more units to your cart.",
			floor, floor-totalUnits)
		return q, nil
	}

	q.DiscountPercentage = t.discountFor(totalUnits)
	q.EstimatedTotal = totalMSRP * (1 - q.DiscountPercentage/100)
	if totalUnits > 0 {
		q.UnitPrice = q.EstimatedTotal / float64(totalUnits)
	}
	return q, nil
}
