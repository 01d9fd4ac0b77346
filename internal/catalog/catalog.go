package catalog

import "time"

// Product is a catalog record. The catalog is read-only for the storefront;
// stock levels live in the inventory store.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SKU         string    `json:"sku"`
	ItemNumber  string    `json:"item_number"`
	ProductType string    `json:"product_type"`
	Size        string    `json:"size"`
	Scent       string    `json:"scent,omitempty"`
	Ingredients []string  `json:"ingredients,omitempty"`
	MSRP        float64   `json:"msrp"`
	CaseSize    int       `json:"case_size"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
