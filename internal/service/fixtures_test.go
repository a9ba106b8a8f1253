package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/aquashop/internal/dbtest"
	"github.com/Skotchmaster/aquashop/internal/events"
	"github.com/Skotchmaster/aquashop/internal/gateway"
	"github.com/Skotchmaster/aquashop/internal/gateway/gatewaytest"
	"github.com/Skotchmaster/aquashop/internal/invoice"
	"github.com/Skotchmaster/aquashop/internal/models"
	"github.com/Skotchmaster/aquashop/internal/repo"
	"github.com/Skotchmaster/aquashop/internal/shipping"
	"github.com/Skotchmaster/aquashop/internal/transport"
)

const testGatewaySecret = "rzp_test_secret"

type fixture struct {
	DB       *gorm.DB
	Repo     *repo.GormRepo
	Events   *events.Recorder
	Provider *gatewaytest.Provider

	Addresses *AddressService
	Orders    *OrderService
	Payments  *PaymentService
	Invoices  *InvoiceService
	Carts     *CartService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.SQLite(t)
	r := repo.New(db)
	rec := &events.Recorder{}
	provider := gatewaytest.New(testGatewaySecret)
	tolerance := decimal.RequireFromString("0.01")

	renderer, err := invoice.NewRenderer(invoice.Store{Name: "Aquashop"})
	require.NoError(t, err)

	return &fixture{
		DB:        db,
		Repo:      r,
		Events:    rec,
		Provider:  provider,
		Addresses: NewAddressService(r),
		Orders: &OrderService{
			Repo:      r,
			Shipping:  shipping.New(decimal.NewFromInt(2000), decimal.NewFromInt(99)),
			Tolerance: tolerance,
			Events:    rec,
		},
		Payments: &PaymentService{
			Repo:      r,
			Gateway:   provider,
			Verifier:  gateway.Verifier{Secret: testGatewaySecret},
			Currency:  "INR",
			Tolerance: tolerance,
			Events:    rec,
		},
		Invoices: &InvoiceService{Repo: r, Renderer: renderer, TaxRate: decimal.Zero, Events: rec},
		Carts:    &CartService{Repo: r},
	}
}

func (f *fixture) product(t *testing.T, name, price string, mrp string) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: decimal.RequireFromString(price), Active: true}
	if mrp != "" {
		m := decimal.RequireFromString(mrp)
		p.Mrp = &m
	}
	require.NoError(t, f.DB.Create(&p).Error)
	return p
}

func customer() Caller {
	return Caller{UserID: uuid.New(), Email: "buyer@example.in"}
}

func orderRequest(lines ...transport.OrderItemRequest) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{
		CustomerName:    "Asha Rao",
		CustomerEmail:   "asha@example.in",
		CustomerPhone:   "9876543210",
		ShippingAddress: "12 Lake Road",
		ShippingCity:    "Pune",
		ShippingState:   "Pune",
		ShippingPincode: "411001",
		Products:        lines,
		PaymentMethod:   models.PaymentMethodRazorpay,
	}
}

func line(p models.Product, qty int) transport.OrderItemRequest {
	return transport.OrderItemRequest{ID: p.ID.String(), Name: p.Name, Price: p.Price, Quantity: qty}
}

func (f *fixture) placeOrder(t *testing.T, caller Caller, lines ...transport.OrderItemRequest) *models.Order {
	t.Helper()
	order, created, err := f.Orders.Create(context.Background(), caller, orderRequest(lines...))
	require.NoError(t, err)
	require.True(t, created)
	return order
}

func ptr[T any](v T) *T { return &v }
