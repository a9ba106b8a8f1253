// Package invoice renders printable invoice documents.
package invoice

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/aquashop/internal/models"
)

//go:embed invoice.html
var invoiceHTML string

type Store struct {
	Name    string
	Address string
	GSTIN   string
}

type Renderer struct {
	Store Store
	tmpl  *template.Template
}

func NewRenderer(store Store) (*Renderer, error) {
	tmpl, err := template.New("invoice").Funcs(template.FuncMap{
		"money": money,
		"inc":   func(i int) int { return i + 1 },
		"date":  func(t time.Time) string { return t.Format("02 Jan 2006") },
		"line":  func(it models.LineItem) string { return money(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))) },
	}).Parse(invoiceHTML)
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	return &Renderer{Store: store, tmpl: tmpl}, nil
}

func money(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

type view struct {
	Store   Store
	Invoice *models.Invoice
}

// Render produces a standalone HTML document from the invoice snapshot.
func (r *Renderer) Render(inv *models.Invoice) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view{Store: r.Store, Invoice: inv}); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}
