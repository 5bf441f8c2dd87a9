package email

import (
	"bytes"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/money"
)

// OrderItem is an order line as shown in an email
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	Price     decimal.Decimal
}

// OrderSummary carries what the confirmation mail shows
type OrderSummary struct {
	OrderID     string
	Items       []OrderItem
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
	Currency    string
}

var funcs = template.FuncMap{
	"amount": func(d decimal.Decimal, currency string) string {
		return money.Format(d, currency)
	},
	"lineTotal": func(item OrderItem) decimal.Decimal {
		return item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	},
	"label": func(item OrderItem) string {
		if item.Name == "" {
			return item.ProductID
		}
		return item.Name
	},
}

const layout = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
{{template "content" .}}
<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
<p style="font-size: 12px; color: #999;">This message was sent automatically. Please do not reply.</p>
</body>
</html>`

var confirmationTmpl = template.Must(template.Must(template.New("confirmation").Funcs(funcs).Parse(layout)).Parse(`
{{define "content"}}
<h1 style="font-size: 22px;">Thank you for your order</h1>
<p>Order number: <strong style="font-family: monospace;">{{.OrderID}}</strong></p>
<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
	<thead>
		<tr style="background: #f8f9fa;">
			<th style="padding: 8px; text-align: left;">Item</th>
			<th style="padding: 8px; text-align: center;">Qty</th>
			<th style="padding: 8px; text-align: right;">Price</th>
			<th style="padding: 8px; text-align: right;">Line total</th>
		</tr>
	</thead>
	<tbody>
	{{- $currency := .Currency}}
	{{- range .Items}}
		<tr>
			<td style="padding: 8px; border-bottom: 1px solid #eee;">{{label .}}</td>
			<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: center;">{{.Quantity}}</td>
			<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">{{amount .Price $currency}}</td>
			<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">{{amount (lineTotal .) $currency}}</td>
		</tr>
	{{- end}}
	</tbody>
</table>
<table style="width: 100%;">
	<tr><td>Subtotal</td><td style="text-align: right;">{{amount .Subtotal .Currency}}</td></tr>
	<tr><td>Shipping</td><td style="text-align: right;">{{if .ShippingFee.IsZero}}FREE{{else}}{{amount .ShippingFee .Currency}}{{end}}</td></tr>
	<tr><td>Tax</td><td style="text-align: right;">{{amount .Tax .Currency}}</td></tr>
	<tr><td><strong>Total</strong></td><td style="text-align: right;"><strong>{{amount .Total .Currency}}</strong></td></tr>
</table>
{{end}}`))

var statusTmpl = template.Must(template.Must(template.New("status").Funcs(funcs).Parse(layout)).Parse(`
{{define "content"}}
<h1 style="font-size: 22px;">Your order is {{.Status}}</h1>
<p>Order <strong style="font-family: monospace;">{{.OrderID}}</strong> changed from {{.Previous}} to <strong>{{.Status}}</strong>.</p>
{{end}}`))

var deletedTmpl = template.Must(template.Must(template.New("deleted").Funcs(funcs).Parse(layout)).Parse(`
{{define "content"}}
<h1 style="font-size: 22px;">Your order was cancelled</h1>
<p>Order <strong style="font-family: monospace;">{{.OrderID}}</strong> has been removed by our team. If you were charged, a refund will follow.</p>
{{end}}`))

type statusData struct {
	OrderID  string
	Previous string
	Status   string
}

// BuildOrderConfirmationBody renders the HTML confirmation mail
func BuildOrderConfirmationBody(summary OrderSummary) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, summary); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildStatusChangedBody renders the HTML status update mail
func BuildStatusChangedBody(orderID, previous, status string) (string, error) {
	var buf bytes.Buffer
	if err := statusTmpl.Execute(&buf, statusData{OrderID: orderID, Previous: previous, Status: status}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildOrderDeletedBody renders the HTML mail sent when an order is removed
func BuildOrderDeletedBody(orderID string) (string, error) {
	var buf bytes.Buffer
	if err := deletedTmpl.Execute(&buf, statusData{OrderID: orderID}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
