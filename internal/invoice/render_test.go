package invoice

import (
	"bytes"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/aquashop/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func sampleInvoice() *models.Invoice {
	return &models.Invoice{
		ID:              uuid.New(),
		OrderID:         uuid.New(),
		InvoiceNumber:   "INV-202601-000042",
		CustomerName:    "Asha <b>Rao</b>",
		CustomerEmail:   "asha@example.in",
		CustomerPhone:   "9876543210",
		BillingAddress:  "12 Lake Road, Pune, Pune, 411001",
		ShippingAddress: "12 Lake Road",
		ShippingCity:    "Pune",
		ShippingState:   "Pune",
		ShippingPincode: "411001",
		Items: []models.LineItem{
			{ID: uuid.New(), Name: "Betta Fish", Price: dec("300"), Mrp: decPtr("350"), Quantity: 2},
			{ID: uuid.New(), Name: "Fish Food <script>alert(1)</script>", Price: dec("1200"), Quantity: 1},
		},
		Subtotal:          dec("1800"),
		ShippingCharge:    dec("99"),
		Tax:               dec("0"),
		Discount:          dec("100"),
		TotalAmount:       dec("1899"),
		PaymentMethod:     models.PaymentMethodRazorpay,
		PaymentStatus:     models.PaymentStatusCompleted,
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_xyz",
		OrderDate:         time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
		CreatedAt:         time.Date(2026, 1, 6, 10, 0, 0, 0, time.UTC),
	}
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer(Store{Name: "Aquashop", Address: "Pune", GSTIN: "27ABCDE1234F1Z5"})
	require.NoError(t, err)

	out, err := r.Render(sampleInvoice())
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, "Aquashop", doc.Find("#store-name").Text())
	assert.Equal(t, "GSTIN: 27ABCDE1234F1Z5", doc.Find("#store-gstin").Text())
	assert.Equal(t, "INV-202601-000042", doc.Find("#invoice-number").Text())
	assert.Equal(t, "06 Jan 2026", doc.Find("#invoice-date").Text())

	rows := doc.Find("#items tbody tr.item")
	require.Equal(t, 2, rows.Length())
	first := rows.First()
	assert.Equal(t, "Betta Fish", first.Find(".item-name").Text())
	assert.Equal(t, "2", first.Find(".qty").Text())
	assert.Equal(t, "₹300.00", first.Find(".price").Text())
	assert.Equal(t, "₹600.00", first.Find(".amount").Text())

	assert.Equal(t, "₹1800.00", doc.Find("#subtotal .num").Text())
	assert.Equal(t, "₹99.00", doc.Find("#shipping-charge .num").Text())
	assert.Equal(t, "₹0.00", doc.Find("#tax .num").Text())
	assert.Equal(t, "₹100.00", doc.Find("#discount .num").Text())
	assert.Equal(t, "₹1899.00", doc.Find("#total .num").Text())
	assert.Equal(t, "pay_xyz", doc.Find("#payment-id").Text())
	assert.Equal(t, 1, doc.Find("button[onclick='window.print()']").Length())

	// customer text is escaped, not interpreted
	assert.Equal(t, 0, doc.Find("#billing .name b").Length())
	assert.Equal(t, "Asha <b>Rao</b>", doc.Find("#billing .name").Text())
	assert.Equal(t, 0, doc.Find("#items script").Length())
}

func TestRenderer_FreeShipping(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer(Store{Name: "Aquashop"})
	require.NoError(t, err)

	inv := sampleInvoice()
	inv.ShippingCharge = decimal.Zero
	inv.RazorpayPaymentID = ""
	out, err := r.Render(inv)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "Free", doc.Find("#shipping-charge .num").Text())
	assert.Equal(t, 0, doc.Find("#payment-id").Length())
	assert.Equal(t, 0, doc.Find("#store-gstin").Length())
}
