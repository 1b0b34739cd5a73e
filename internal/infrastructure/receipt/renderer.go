// Package receipt renders order receipts as PDF and HTML.
package receipt

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/printcraft/storefront/internal/core/domain"
)

var htmlTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html><body style="font-family:Helvetica,Arial,sans-serif;color:#222">
<h2>{{.Shop}}</h2>
<p>Hi {{.Customer}},</p>
<p>Thank you for your order <strong>#{{.Reference}}</strong> placed on {{.Date}}.</p>
<table cellpadding="6" style="border-collapse:collapse;width:100%">
<tr style="background:#f3f3f3"><th align="left">Item</th><th>Qty</th><th align="right">Price</th><th align="right">Total</th></tr>
{{range .Lines}}<tr><td>{{.Name}}{{if .Variant}}<br><small>{{.Variant}}</small>{{end}}</td><td align="center">{{.Quantity}}</td><td align="right">{{.Price}}</td><td align="right">{{.Total}}</td></tr>
{{end}}<tr><td colspan="3" align="right"><strong>Total</strong></td><td align="right"><strong>{{.Total}}</strong></td></tr>
</table>
<p>Payment: {{.Payment}}</p>
{{with .Address}}<p>Shipping to:<br>{{.}}</p>{{end}}
</body></html>`))

// Renderer implements ports.ReceiptRenderer.
type Renderer struct {
	shop string
}

func NewRenderer(shop string) *Renderer {
	if shop == "" {
		shop = "Storefront"
	}
	return &Renderer{shop: shop}
}

type line struct {
	Name     string
	Variant  string
	Quantity int
	Price    string
	Total    string
}

type view struct {
	Shop      string
	Customer  string
	Reference string
	Date      string
	Lines     []line
	Total     string
	Payment   string
	Address   string
}

func (r *Renderer) view(order *domain.Order, customer *domain.User) view {
	currency := order.PaymentInfo.Currency
	v := view{
		Shop:      r.shop,
		Customer:  "customer",
		Reference: reference(order.ID),
		Date:      order.CreatedAt.Format("02 Jan 2006"),
		Total:     money(currency, order.TotalAmount),
		Payment:   paymentLabel(order.PaymentInfo),
		Address:   formatAddress(order.ShippingAddress),
	}
	if customer != nil && customer.Name != "" {
		v.Customer = customer.Name
	}
	for _, it := range order.Items {
		v.Lines = append(v.Lines, line{
			Name:     it.Name,
			Variant:  variantLabel(it.Variant),
			Quantity: it.Quantity,
			Price:    money(currency, it.Price),
			Total:    money(currency, it.LineTotal().InexactFloat64()),
		})
	}
	return v
}

func (r *Renderer) HTML(order *domain.Order, customer *domain.User) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, r.view(order, customer)); err != nil {
		return "", fmt.Errorf("render receipt html: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) PDF(order *domain.Order, customer *domain.User) ([]byte, error) {
	v := r.view(order, customer)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt "+v.Reference, true)
	pdf.SetCreationDate(order.CreatedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(v.Shop), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr("Receipt #"+v.Reference), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Date: "+v.Date), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Customer: "+v.Customer), "", 1, "L", false, 0, "")
	if v.Address != "" {
		pdf.MultiCell(0, 6, tr("Ship to: "+v.Address), "", "L", false)
	}
	pdf.Ln(4)

	widths := []float64{90, 20, 35, 35}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range []string{"Item", "Qty", "Price", "Total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, l := range v.Lines {
		name := l.Name
		if l.Variant != "" {
			name += " (" + l.Variant + ")"
		}
		pdf.CellFormat(widths[0], 7, tr(truncate(name, 55)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprint(l.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, l.Price, "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, l.Total, "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, v.Total, "1", 1, "R", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Payment: "+v.Payment), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func money(currency string, amount float64) string {
	if currency == "" {
		currency = "INR"
	}
	return currency + " " + decimal.NewFromFloat(amount).StringFixed(2)
}

func reference(id string) string {
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return strings.ToUpper(id)
}

func paymentLabel(p domain.PaymentInfo) string {
	switch p.Method {
	case domain.PaymentCOD:
		return "Cash on delivery"
	case domain.PaymentRazorpay:
		label := "Paid online"
		if p.PaymentID != "" {
			label += " (" + p.PaymentID + ")"
		}
		if !p.Timestamp.IsZero() {
			label += " on " + p.Timestamp.Format(time.RFC822)
		}
		return label
	}
	return p.Method
}

func variantLabel(v *domain.VariantSnapshot) string {
	if v == nil {
		return ""
	}
	var parts []string
	for _, s := range []string{v.Size, v.Color, v.Material} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " / ")
}

func formatAddress(a domain.Address) string {
	var parts []string
	for _, s := range []string{a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
