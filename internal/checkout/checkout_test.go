package checkout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/aquashop/internal/apiclient"
	"github.com/Skotchmaster/aquashop/internal/apptest"
	"github.com/Skotchmaster/aquashop/internal/cartsync"
	"github.com/Skotchmaster/aquashop/internal/checkout"
	"github.com/Skotchmaster/aquashop/internal/gateway/gatewaytest"
	"github.com/Skotchmaster/aquashop/internal/models"
	"github.com/Skotchmaster/aquashop/internal/shipping"
	"github.com/Skotchmaster/aquashop/internal/transport"
)

type payingWidget struct {
	provider *gatewaytest.Provider
	tamper   bool
	opened   []checkout.WidgetOptions
}

func (w *payingWidget) Open(_ context.Context, opts checkout.WidgetOptions) (*checkout.PaymentResult, error) {
	w.opened = append(w.opened, opts)
	paymentID, sig := w.provider.Pay(opts.Order.ID)
	if w.tamper {
		if sig[:2] == "ff" {
			sig = "00" + sig[2:]
		} else {
			sig = "ff" + sig[2:]
		}
	}
	return &checkout.PaymentResult{GatewayOrderID: opts.Order.ID, PaymentID: paymentID, Signature: sig}, nil
}

type dismissingWidget struct{ opened int }

func (w *dismissingWidget) Open(context.Context, checkout.WidgetOptions) (*checkout.PaymentResult, error) {
	w.opened++
	return nil, checkout.ErrPaymentDismissed
}

// flakyAPI fails the steps checkout treats as best effort.
type flakyAPI struct {
	*apiclient.Client
}

func (flakyAPI) AddAddress(context.Context, transport.AddressRequest) (*transport.AddressResponse, error) {
	return nil, errors.New("address store down")
}

func (flakyAPI) CreateInvoice(context.Context, uuid.UUID) (*models.Invoice, error) {
	return nil, errors.New("invoice service down")
}

// lostReplyAPI lets the server verify the payment and then drops the reply.
type lostReplyAPI struct {
	*apiclient.Client
	drops int
}

func (a *lostReplyAPI) VerifyPayment(ctx context.Context, req transport.VerifyPaymentRequest) (*models.Order, error) {
	order, err := a.Client.VerifyPayment(ctx, req)
	if err == nil && a.drops > 0 {
		a.drops--
		return nil, &apiclient.Error{Status: 502, Message: "bad gateway"}
	}
	return order, err
}

type harness struct {
	env     *apptest.Env
	client  *apiclient.Client
	session *cartsync.Session
	product models.Product
	userID  uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	env := apptest.New(t)
	srv := env.Server(t)
	userID := uuid.New()
	client := apiclient.NewClient(srv.URL, env.Token(t, userID, "user"))

	p := env.Product(t, "Neon Tetra School", "900", "1000")
	session := cartsync.NewSession(client)
	ctx := context.Background()
	require.NoError(t, session.Load(ctx))
	require.NoError(t, session.Add(models.CartProduct{ID: p.ID, Name: p.Name, Price: p.Price, Mrp: p.Mrp}, 2))
	require.NoError(t, session.Flush(ctx))

	return &harness{env: env, client: client, session: session, product: p, userID: userID}
}

func (h *harness) orchestrator(api checkout.API, widget checkout.PaymentWidget) *checkout.Orchestrator {
	calc := shipping.New(h.env.Config.FreeShippingThreshold, h.env.Config.ShippingFee)
	return checkout.New(api, h.session, widget, calc, h.env.Config.RazorpayKeyID, "INR")
}

func details() checkout.ShippingDetails {
	return checkout.ShippingDetails{
		FullName: "Asha Rao",
		Email:    "asha@example.in",
		Phone:    "9876543210",
		Address:  "12 Lake Road",
		City:     "Pune",
		District: "Pune",
		State:    "Maharashtra",
		Pincode:  "411001",
	}
}

func advance(t *testing.T, o *checkout.Orchestrator, method string) {
	t.Helper()
	require.NoError(t, o.SubmitShipping(details()))
	require.NoError(t, o.SelectPayment(method))
	require.Equal(t, checkout.StateConfirm, o.State())
}

func (h *harness) storedOrder(t *testing.T, id uuid.UUID) models.Order {
	t.Helper()
	var o models.Order
	require.NoError(t, h.env.DB.First(&o, "id = ?", id).Error)
	return o
}

func (h *harness) invoiceCount(t *testing.T, orderID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.env.DB.Model(&models.Invoice{}).Where("order_id = ?", orderID).Count(&n).Error)
	return n
}

func (h *harness) serverCart(t *testing.T) *transport.CartPayload {
	t.Helper()
	cart, err := h.client.GetCart(context.Background())
	require.NoError(t, err)
	return cart
}

func TestCheckout_GatewayPaymentCompletes(t *testing.T) {
	h := newHarness(t)
	widget := &payingWidget{provider: h.env.Provider}
	o := h.orchestrator(h.client, widget)
	advance(t, o, "")

	outcome, err := o.PlaceOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, checkout.OutcomeRedirected, outcome)
	assert.Equal(t, checkout.StateDone, o.State())

	order := h.storedOrder(t, o.Order().ID)
	assert.Equal(t, models.PaymentStatusCompleted, order.PaymentStatus)
	assert.True(t, decimal.NewFromInt(1899).Equal(order.TotalAmount))
	require.NotNil(t, order.RazorpayPaymentID)

	require.Len(t, widget.opened, 1)
	assert.Equal(t, "Asha Rao", widget.opened[0].Name)
	assert.Equal(t, "9876543210", widget.opened[0].Phone)
	assert.EqualValues(t, 189900, widget.opened[0].Order.Amount)

	assert.EqualValues(t, 1, h.invoiceCount(t, order.ID))
	assert.Empty(t, h.session.Items())
	assert.Empty(t, h.serverCart(t).Items)

	addrs, err := h.client.ListAddresses(context.Background())
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.True(t, addrs[0].IsDefault)
}

func TestCheckout_DismissedPaymentKeepsOrderAndRetryReusesIt(t *testing.T) {
	h := newHarness(t)
	dismiss := &dismissingWidget{}
	o := h.orchestrator(h.client, dismiss)
	advance(t, o, "razorpay")

	outcome, err := o.PlaceOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, checkout.OutcomePaymentCancelled, outcome)
	assert.Equal(t, checkout.StateConfirm, o.State())

	first := o.Order()
	require.NotNil(t, first)
	assert.Equal(t, models.PaymentStatusPending, h.storedOrder(t, first.ID).PaymentStatus)
	assert.Len(t, h.session.Items(), 1)

	o.Widget = &payingWidget{provider: h.env.Provider}
	outcome, err = o.PlaceOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, checkout.OutcomeRedirected, outcome)
	assert.Equal(t, first.ID, o.Order().ID)

	var orders int64
	require.NoError(t, h.env.DB.Model(&models.Order{}).Where("user_id = ?", h.userID).Count(&orders).Error)
	assert.EqualValues(t, 1, orders)

	addrs, err := h.client.ListAddresses(context.Background())
	require.NoError(t, err)
	assert.Len(t, addrs, 1)
}

func TestCheckout_RetryAfterLostVerifyReplyFinishes(t *testing.T) {
	h := newHarness(t)
	widget := &payingWidget{provider: h.env.Provider}
	api := &lostReplyAPI{Client: h.client, drops: 1}
	o := h.orchestrator(api, widget)
	advance(t, o, "razorpay")

	_, err := o.PlaceOrder(context.Background())
	require.Error(t, err)
	assert.Equal(t, checkout.StateConfirm, o.State())
	first := o.Order()
	require.NotNil(t, first)
	assert.Equal(t, models.PaymentStatusCompleted, h.storedOrder(t, first.ID).PaymentStatus)

	outcome, err := o.PlaceOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, checkout.OutcomeRedirected, outcome)
	assert.Equal(t, checkout.StateDone, o.State())
	assert.Equal(t, first.ID, o.Order().ID)
	assert.Len(t, widget.opened, 1, "paid order is not charged again")

	assert.Empty(t, h.session.Items())
	assert.Empty(t, h.serverCart(t).Items)
	assert.EqualValues(t, 1, h.invoiceCount(t, first.ID))
}

func TestCheckout_TamperedSignatureBlocksRedirect(t *testing.T) {
	h := newHarness(t)
	o := h.orchestrator(h.client, &payingWidget{provider: h.env.Provider, tamper: true})
	advance(t, o, "")

	_, err := o.PlaceOrder(context.Background())
	require.Error(t, err)
	assert.Equal(t, 400, apiclient.StatusOf(err))
	assert.Equal(t, checkout.StateConfirm, o.State())

	assert.Equal(t, models.PaymentStatusPending, h.storedOrder(t, o.Order().ID).PaymentStatus)
	assert.Len(t, h.session.Items(), 1)
	assert.Len(t, h.serverCart(t).Items, 1)
	assert.Zero(t, h.invoiceCount(t, o.Order().ID))
}

func TestCheckout_GatewayFailureDoesNotOpenWidget(t *testing.T) {
	h := newHarness(t)
	h.env.Provider.Err = errors.New("provider unavailable")
	widget := &payingWidget{provider: h.env.Provider}
	o := h.orchestrator(h.client, widget)
	advance(t, o, "")

	_, err := o.PlaceOrder(context.Background())
	require.Error(t, err)
	assert.Equal(t, 502, apiclient.StatusOf(err))
	assert.Empty(t, widget.opened)
	assert.Len(t, h.session.Items(), 1)
}

func TestCheckout_CashOnDelivery(t *testing.T) {
	h := newHarness(t)
	widget := &payingWidget{provider: h.env.Provider}
	o := h.orchestrator(h.client, widget)
	advance(t, o, "cod")

	outcome, err := o.PlaceOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, checkout.OutcomeRedirected, outcome)

	order := h.storedOrder(t, o.Order().ID)
	assert.Equal(t, models.PaymentMethodCOD, order.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Empty(t, widget.opened)
	assert.Empty(t, h.env.Provider.Requests)
	assert.EqualValues(t, 1, h.invoiceCount(t, order.ID))
	assert.Empty(t, h.session.Items())
}

func TestCheckout_BestEffortStepsDoNotBlock(t *testing.T) {
	h := newHarness(t)
	o := h.orchestrator(flakyAPI{h.client}, &payingWidget{provider: h.env.Provider})
	advance(t, o, "")

	outcome, err := o.PlaceOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, checkout.OutcomeRedirected, outcome)
	assert.Equal(t, models.PaymentStatusCompleted, h.storedOrder(t, o.Order().ID).PaymentStatus)
	assert.Zero(t, h.invoiceCount(t, o.Order().ID))
	assert.Empty(t, h.session.Items())
}

type staticCart struct{ items []models.CartLine }

func (c *staticCart) Items() []models.CartLine    { return c.items }
func (c *staticCart) Subtotal() decimal.Decimal   { return decimal.Zero }
func (c *staticCart) Flush(context.Context) error { return nil }

func (c *staticCart) Clear() error {
	c.items = nil
	return nil
}

func TestCheckout_RequiresLoginAndItems(t *testing.T) {
	env := apptest.New(t)
	srv := env.Server(t)
	calc := shipping.New(decimal.NewFromInt(2000), decimal.NewFromInt(99))

	line := models.CartLine{Product: models.CartProduct{ID: uuid.New(), Price: decimal.NewFromInt(10)}, Quantity: 1}
	anon := checkout.New(apiclient.NewClient(srv.URL, ""), &staticCart{items: []models.CartLine{line}}, &dismissingWidget{}, calc, "key", "INR")
	advance(t, anon, "")
	_, err := anon.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, checkout.ErrNotAuthenticated)

	client := apiclient.NewClient(srv.URL, env.Token(t, uuid.New(), "user"))
	empty := checkout.New(client, &staticCart{}, &dismissingWidget{}, calc, "key", "INR")
	advance(t, empty, "")
	_, err = empty.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
}

func TestCheckout_Steps(t *testing.T) {
	o := checkout.New(nil, &staticCart{}, &dismissingWidget{}, shipping.Calculator{}, "key", "INR")
	assert.Equal(t, checkout.StateShipping, o.State())

	_, err := o.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, checkout.ErrWrongState)
	assert.ErrorIs(t, o.SelectPayment(""), checkout.ErrWrongState)

	bad := details()
	bad.Phone = "12345"
	assert.ErrorIs(t, o.SubmitShipping(bad), checkout.ErrValidation)
	assert.Equal(t, checkout.StateShipping, o.State())

	require.NoError(t, o.SubmitShipping(details()))
	assert.ErrorIs(t, o.SelectPayment("bitcoin"), checkout.ErrValidation)
	require.NoError(t, o.SelectPayment("COD"))
	assert.Equal(t, checkout.StateConfirm, o.State())

	o.Back()
	assert.Equal(t, checkout.StatePayment, o.State())
	o.Back()
	assert.Equal(t, checkout.StateShipping, o.State())
}

func TestShippingDetails_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *checkout.ShippingDetails)
		wantErr bool
	}{
		{name: "valid", mutate: func(d *checkout.ShippingDetails) {}},
		{name: "padded values", mutate: func(d *checkout.ShippingDetails) { d.Phone = " 9876543210 " }},
		{name: "missing name", mutate: func(d *checkout.ShippingDetails) { d.FullName = "" }, wantErr: true},
		{name: "bad email", mutate: func(d *checkout.ShippingDetails) { d.Email = "asha" }, wantErr: true},
		{name: "short phone", mutate: func(d *checkout.ShippingDetails) { d.Phone = "987654321" }, wantErr: true},
		{name: "letters in phone", mutate: func(d *checkout.ShippingDetails) { d.Phone = "98765abcde" }, wantErr: true},
		{name: "five digit pincode", mutate: func(d *checkout.ShippingDetails) { d.Pincode = "41100" }, wantErr: true},
		{name: "missing district", mutate: func(d *checkout.ShippingDetails) { d.District = " " }, wantErr: true},
		{name: "missing city", mutate: func(d *checkout.ShippingDetails) { d.City = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := details()
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, checkout.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}
