package checkout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/namexuser/body-products/internal/pricing"
)

// CustomerInfo is the contact block required on every submission.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	City  string `json:"city"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Floor is the minimum-order predicate evaluated over the priced cart.
// Zero-valued constraints are not enforced, so the default of
// {MinUnits: 250} matches the current storefront policy while a dollar
// floor can be layered on via config.
type Floor struct {
	MinUnits int
	MinMSRP  float64
}

func DefaultFloor() Floor {
	return Floor{MinUnits: 250}
}

func (f Floor) check(q pricing.Quote) error {
	if f.MinUnits > 0 && q.TotalUnits < f.MinUnits {
		return &ValidationError{Reason: fmt.Sprintf(
			"minimum order of %d units not met, cart has %d", f.MinUnits, q.TotalUnits)}
	}
	if f.MinMSRP > 0 && q.TotalMSRP < f.MinMSRP {
		return &ValidationError{Reason: fmt.Sprintf(
			"minimum purchase of $%.2f not met, cart totals $%.2f", f.MinMSRP, q.TotalMSRP)}
	}
	return nil
}

func validateCustomerInfo(info CustomerInfo) error {
	if strings.TrimSpace(info.Name) == "" {
		return &ValidationError{Reason: "customer name is required"}
	}
	if strings.TrimSpace(info.Email) == "" {
		return &ValidationError{Reason: "customer email is required"}
	}
	if !emailPattern.MatchString(info.Email) {
		return &ValidationError{Reason: "invalid customer email format"}
	}
	if strings.TrimSpace(info.Phone) == "" {
		return &ValidationError{Reason: "customer phone is required"}
	}
	if strings.TrimSpace(info.City) == "" {
		return &ValidationError{Reason: "customer city is required"}
	}
	return nil
}

func validateItems(items []SubmittedItem) error {
	if len(items) == 0 {
		return &ValidationError{Reason: ErrEmptyCart.Error()}
	}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			return &ValidationError{Reason: "item is missing a product id"}
		}
		if item.Quantity <= 0 {
			return &ValidationError{Reason: fmt.Sprintf(
				"invalid quantity %d for product %s", item.Quantity, item.ProductID)}
		}
		if _, dup := seen[item.ProductID]; dup {
			return &ValidationError{Reason: "duplicate product " + item.ProductID}
		}
		seen[item.ProductID] = struct{}{}
	}
	return nil
}
