package mail

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namexuser/body-products/internal/order"
)

func TestRenderConfirmation(t *testing.T) {
	o := &order.Order{
		ID:                 uuid.New(),
		CustomerName:       "Jamie Rivera",
		CustomerEmail:      "jamie@example.com",
		CustomerPhone:      "555-0101",
		CustomerCity:       "Portland",
		TotalMSRP:          10000,
		TotalUnits:         500,
		UnitPrice:          5.30,
		DiscountPercentage: 73.5,
		EstimatedTotal:     2650,
		Status:             order.StatusPending,
		CreatedAt:          time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC),
	}
	items := []order.Item{
		{ProductName: "Deep Hydration Body Lotion", SKU: "BH-001", Quantity: 300, MSRPAtPurchase: 15, Subtotal: 4500},
		{ProductName: "Exfoliating Body Scrub", SKU: "ES-003", Quantity: 200, MSRPAtPurchase: 27.5, Subtotal: 5500},
	}

	html, err := RenderConfirmation(o, items, "offprice.pro")
	require.NoError(t, err)

	assert.Contains(t, html, o.ID.String())
	assert.Contains(t, html, "Jamie Rivera")
	assert.Contains(t, html, "Deep Hydration Body Lotion")
	assert.Contains(t, html, "BH-001")
	assert.Contains(t, html, "$4500.00")
	assert.Contains(t, html, "73.5%")
	assert.Contains(t, html, "$5.30")
	assert.Contains(t, html, "Estimated Total: $2650.00")
	assert.Contains(t, html, "offprice.pro")
}

func TestRenderConfirmation_EscapesCustomerInput(t *testing.T) {
	o := &order.Order{
		ID:           uuid.New(),
		CustomerName: `<script>alert("x")</script>`,
		CreatedAt:    time.Now(),
	}

	html, err := RenderConfirmation(o, nil, "offprice.pro")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestConfirmationSubject(t *testing.T) {
	o := &order.Order{ID: uuid.New()}
	assert.Contains(t, ConfirmationSubject(o), o.ID.String())
}
