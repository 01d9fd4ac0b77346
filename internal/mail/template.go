package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/namexuser/body-products/internal/order"
)

// ConfirmationSubject is the subject line for order confirmation emails.
func ConfirmationSubject(o *order.Order) string {
	return fmt.Sprintf("Purchase Order Confirmation - Order ID: %s", o.ID)
}

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"pct":   func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
}).Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #333; text-align: center;">Purchase Order Confirmation</h1>

  <div style="background: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h2 style="color: #333; margin-top: 0;">Order Details</h2>
    <p><strong>Order ID:</strong> {{.Order.ID}}</p>
    <p><strong>Customer:</strong> {{.Order.CustomerName}}</p>
    <p><strong>Email:</strong> {{.Order.CustomerEmail}}</p>
    <p><strong>City:</strong> {{.Order.CustomerCity}}</p>
    <p><strong>Phone:</strong> {{.Order.CustomerPhone}}</p>
    <p><strong>Order Date:</strong> {{.Order.CreatedAt.Format "Jan 2, 2006 3:04 PM"}}</p>
  </div>

  <h3 style="color: #333;">Items Ordered</h3>
  <table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
    <thead>
      <tr style="background: #f1f3f4;">
        <th style="padding: 12px; text-align: left; border-bottom: 2px solid #ddd;">Product</th>
        <th style="padding: 12px; text-align: left; border-bottom: 2px solid #ddd;">SKU</th>
        <th style="padding: 12px; text-align: left; border-bottom: 2px solid #ddd;">Qty</th>
        <th style="padding: 12px; text-align: left; border-bottom: 2px solid #ddd;">MSRP</th>
        <th style="padding: 12px; text-align: left; border-bottom: 2px solid #ddd;">Subtotal</th>
      </tr>
    </thead>
    <tbody>
      {{range .Items}}
      <tr>
        <td style="padding: 8px; border-bottom: 1px solid #eee;">{{.ProductName}}</td>
        <td style="padding: 8px; border-bottom: 1px solid #eee;">{{.SKU}}</td>
        <td style="padding: 8px; border-bottom: 1px solid #eee;">{{.Quantity}}</td>
        <td style="padding: 8px; border-bottom: 1px solid #eee;">{{money .MSRPAtPurchase}}</td>
        <td style="padding: 8px; border-bottom: 1px solid #eee;">{{money .Subtotal}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>

  <div style="background: #e8f5e8; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #333; margin-top: 0;">Order Summary</h3>
    <p><strong>Total Units:</strong> {{.Order.TotalUnits}}</p>
    <p><strong>Total MSRP:</strong> {{money .Order.TotalMSRP}}</p>
    <p><strong>Discount:</strong> {{pct .Order.DiscountPercentage}}</p>
    <p><strong>Discounted Unit Price:</strong> {{money .Order.UnitPrice}}</p>
    <p style="font-size: 18px; color: #2d5016;"><strong>Estimated Total: {{money .Order.EstimatedTotal}}</strong></p>
  </div>

  <div style="background: #fff3cd; padding: 15px; border-radius: 8px; margin: 20px 0;">
    <p style="margin: 0; color: #856404;"><strong>Note:</strong> This is a purchase order confirmation. Final pricing will be confirmed upon processing. You will receive updates on your order status via email.</p>
  </div>

  <p style="text-align: center; color: #666; margin-top: 30px;">
    Thank you for your business!<br>
    <strong>{{.StoreName}}</strong>
  </p>
</div>
`))

type confirmationData struct {
	Order     *order.Order
	Items     []order.Item
	StoreName string
}

// RenderConfirmation builds the HTML body for an order confirmation email.
func RenderConfirmation(o *order.Order, items []order.Item, storeName string) (string, error) {
	var buf bytes.Buffer
	err := confirmationTmpl.Execute(&buf, confirmationData{
		Order:     o,
		Items:     items,
		StoreName: storeName,
	})
	if err != nil {
		return "", fmt.Errorf("render confirmation email: %w", err)
	}
	return buf.String(), nil
}
