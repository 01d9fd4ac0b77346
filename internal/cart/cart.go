package cart

import (
	"time"

	"github.com/namexuser/body-products/internal/pricing"
)

// LineItem is one product entry in a session cart. The unit MSRP and
// descriptive fields are copied from the catalog at add time so the cart
// renders without a catalog round trip.
type LineItem struct {
	ProductID   string    `bson:"product_id" json:"product_id"`
	Name        string    `bson:"name" json:"name"`
	SKU         string    `bson:"sku" json:"sku"`
	UnitMSRP    float64   `bson:"unit_msrp" json:"unit_msrp"`
	Quantity    int       `bson:"quantity" json:"quantity"`
	ProductType string    `bson:"product_type" json:"product_type"`
	Size        string    `bson:"size,omitempty" json:"size,omitempty"`
	Scent       string    `bson:"scent,omitempty" json:"scent,omitempty"`
	CaseSize    int       `bson:"case_size" json:"case_size"`
	AddedAt     time.Time `bson:"added_at" json:"added_at"`
}

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	SessionID string     `bson:"session_id" json:"session_id"`
	Items     []LineItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// TotalMSRP is the undiscounted cart value.
func (c *Cart) TotalMSRP() float64 {
	var sum float64
	for _, item := range c.Items {
		sum += item.UnitMSRP * float64(item.Quantity)
	}
	return sum
}

// TotalUnits is the aggregate quantity across all line items.
func (c *Cart) TotalUnits() int {
	var sum int
	for _, item := range c.Items {
		sum += item.Quantity
	}
	return sum
}

// Snapshot is the derived cart state: line items plus the tiered pricing
// quote. It is recomputed on every read and never stored.
type Snapshot struct {
	Items []LineItem    `json:"items"`
	Quote pricing.Quote `json:"totals"`
}

// Snapshot prices the cart against the given tier table.
func (c *Cart) Snapshot(table pricing.Table) (Snapshot, error) {
	quote, err := table.Quote(c.TotalMSRP(), c.TotalUnits())
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Items: c.Items, Quote: quote}, nil
}

// RoundUpToCase rounds a requested quantity up to the nearest multiple of
// the product's case size. Case sizes below one behave as one.
func RoundUpToCase(quantity, caseSize int) int {
	if caseSize <= 1 {
		return quantity
	}
	if quantity <= 0 {
		return 0
	}
	remainder := quantity % caseSize
	if remainder == 0 {
		return quantity
	}
	return quantity + caseSize - remainder
}
