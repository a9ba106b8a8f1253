package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/aquashop/internal/events"
	"github.com/Skotchmaster/aquashop/internal/invoice"
	"github.com/Skotchmaster/aquashop/internal/models"
	"github.com/Skotchmaster/aquashop/internal/repo"
)

type InvoiceService struct {
	Repo     *repo.GormRepo
	Renderer *invoice.Renderer
	TaxRate  decimal.Decimal
	Events   events.Publisher
	Clock    func() time.Time
}

func (s *InvoiceService) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

// InvoiceNumber formats the n-th invoice of the month of t.
func InvoiceNumber(t time.Time, n int64) string {
	return fmt.Sprintf("INV-%04d%02d-%06d", t.Year(), int(t.Month()), n)
}

func invoiceCounter(t time.Time) string {
	return fmt.Sprintf("invoices:%04d%02d", t.Year(), int(t.Month()))
}

// Discount sums the markdown against mrp over all lines that carry one.
func Discount(items []models.LineItem) decimal.Decimal {
	d := decimal.Zero
	for _, it := range items {
		if it.Mrp == nil || !it.Mrp.GreaterThan(it.Price) {
			continue
		}
		d = d.Add(it.Mrp.Sub(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return d
}

func (s *InvoiceService) snapshot(o *models.Order, number string) *models.Invoice {
	billing := strings.Join(nonEmpty(o.ShippingAddress, o.ShippingCity, o.ShippingState, o.ShippingPincode), ", ")
	inv := &models.Invoice{
		OrderID:         o.ID,
		UserID:          o.UserID,
		InvoiceNumber:   number,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		BillingAddress:  billing,
		ShippingAddress: o.ShippingAddress,
		ShippingCity:    o.ShippingCity,
		ShippingState:   o.ShippingState,
		ShippingPincode: o.ShippingPincode,
		Items:           append([]models.LineItem(nil), o.Products...),
		Subtotal:        o.Subtotal,
		ShippingCharge:  o.ShippingCharge,
		Tax:             o.Subtotal.Mul(s.TaxRate).Round(2),
		Discount:        Discount(o.Products),
		TotalAmount:     o.TotalAmount,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		OrderDate:       o.CreatedAt,
	}
	if o.RazorpayOrderID != nil {
		inv.RazorpayOrderID = *o.RazorpayOrderID
	}
	if o.RazorpayPaymentID != nil {
		inv.RazorpayPaymentID = *o.RazorpayPaymentID
	}
	return inv
}

func nonEmpty(vals ...string) []string {
	out := vals[:0:0]
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// GetOrCreate returns the invoice of the order, creating it on first use.
// Repeated and concurrent calls converge on one invoice row.
func (s *InvoiceService) GetOrCreate(ctx context.Context, caller Caller, rawOrderID string) (*models.Invoice, bool, error) {
	orderID, err := uuid.Parse(strings.TrimSpace(rawOrderID))
	if err != nil {
		return nil, false, fmt.Errorf("%w: orderId required", ErrValidation)
	}

	order, err := s.Repo.GetOrder(ctx, orderID)
	if repo.IsNotFound(err) {
		return nil, false, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, false, err
	}
	if !caller.CanAccess(order.UserID) {
		return nil, false, fmt.Errorf("%w: order belongs to another user", ErrForbidden)
	}

	now := s.now()
	inv, created, err := s.Repo.GetOrCreateInvoice(ctx, order.ID, invoiceCounter(now), func(seq int64) *models.Invoice {
		return s.snapshot(order, InvoiceNumber(now, seq))
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		publish(ctx, s.Events, events.TopicInvoices, inv.UserID.String(), events.New(events.InvoiceCreated, invoiceEvent{
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			OrderID:       inv.OrderID,
			UserID:        inv.UserID,
		}))
	}
	return inv, created, nil
}

// Document returns the printable HTML invoice of the order.
func (s *InvoiceService) Document(ctx context.Context, caller Caller, rawOrderID string) ([]byte, error) {
	inv, _, err := s.GetOrCreate(ctx, caller, rawOrderID)
	if err != nil {
		return nil, err
	}
	return s.Renderer.Render(inv)
}
