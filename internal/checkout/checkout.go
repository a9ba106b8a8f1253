// Package checkout drives the storefront checkout from the shipping form to
// a paid order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/aquashop/internal/gateway"
	"github.com/Skotchmaster/aquashop/internal/models"
	"github.com/Skotchmaster/aquashop/internal/shipping"
	"github.com/Skotchmaster/aquashop/internal/transport"
	"github.com/Skotchmaster/aquashop/pkg/logging"
)

type State string

const (
	StateShipping State = "shipping"
	StatePayment  State = "payment"
	StateConfirm  State = "confirm"
	StateDone     State = "done"
)

type Outcome string

const (
	OutcomeRedirected       Outcome = "redirected"
	OutcomePaymentCancelled Outcome = "payment_cancelled"
)

var (
	ErrNotAuthenticated = errors.New("please login to place the order")
	ErrValidation       = errors.New("validation")
	ErrWrongState       = errors.New("checkout step not available")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrPaymentDismissed = errors.New("payment dismissed")
)

// API is the part of the storefront client checkout needs.
type API interface {
	Authenticated() bool
	AddAddress(ctx context.Context, req transport.AddressRequest) (*transport.AddressResponse, error)
	CreateOrder(ctx context.Context, req transport.CreateOrderRequest, idempotencyKey string) (*models.Order, bool, error)
	CreateGatewayOrder(ctx context.Context, req transport.GatewayOrderRequest) (*gateway.Order, error)
	VerifyPayment(ctx context.Context, req transport.VerifyPaymentRequest) (*models.Order, error)
	CreateInvoice(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error)
}

type Cart interface {
	Items() []models.CartLine
	Subtotal() decimal.Decimal
	Clear() error
	Flush(ctx context.Context) error
}

type WidgetOptions struct {
	KeyID string
	Order *gateway.Order
	Name  string
	Email string
	Phone string
}

type PaymentResult struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

// PaymentWidget collects the payment from the customer. It returns
// ErrPaymentDismissed when the customer closes it without paying.
type PaymentWidget interface {
	Open(ctx context.Context, opts WidgetOptions) (*PaymentResult, error)
}

type Orchestrator struct {
	API      API
	Cart     Cart
	Widget   PaymentWidget
	Shipping shipping.Calculator
	KeyID    string
	Currency string

	mu         sync.Mutex
	state      State
	details    ShippingDetails
	method     string
	attemptKey string
	order      *models.Order
	placing    bool
}

func New(api API, cart Cart, widget PaymentWidget, calc shipping.Calculator, keyID, currency string) *Orchestrator {
	return &Orchestrator{
		API:      api,
		Cart:     cart,
		Widget:   widget,
		Shipping: calc,
		KeyID:    keyID,
		Currency: currency,
		state:    StateShipping,
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Order is the order placed by the current attempt, if any.
func (o *Orchestrator) Order() *models.Order {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.order
}

func (o *Orchestrator) SubmitShipping(d ShippingDetails) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateShipping {
		return fmt.Errorf("%w: %s", ErrWrongState, o.state)
	}
	if err := d.Validate(); err != nil {
		return err
	}
	// New details start a new attempt.
	o.details = d.trimmed()
	o.attemptKey = ""
	o.state = StatePayment
	return nil
}

// SelectPayment picks the payment method. Empty means the gateway.
func (o *Orchestrator) SelectPayment(method string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StatePayment {
		return fmt.Errorf("%w: %s", ErrWrongState, o.state)
	}
	method = strings.ToLower(strings.TrimSpace(method))
	switch method {
	case "":
		method = models.PaymentMethodRazorpay
	case models.PaymentMethodRazorpay, models.PaymentMethodCOD:
	default:
		return fmt.Errorf("%w: unsupported payment method %q", ErrValidation, method)
	}
	if method != o.method {
		o.attemptKey = ""
	}
	o.method = method
	o.state = StateConfirm
	return nil
}

// Back returns to the previous step. The placed order of the attempt, if
// any, is kept.
func (o *Orchestrator) Back() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.placing {
		return
	}
	switch o.state {
	case StatePayment:
		o.state = StateShipping
	case StateConfirm:
		o.state = StatePayment
	}
}

// PlaceOrder runs the confirm step. Retrying after a failure or a dismissed
// payment reuses the same idempotency key, so the attempt keeps one order.
// State and Order stay readable while the payment widget is open.
func (o *Orchestrator) PlaceOrder(ctx context.Context) (Outcome, error) {
	o.mu.Lock()
	if o.state != StateConfirm || o.placing {
		state := o.state
		o.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrWrongState, state)
	}
	if o.attemptKey == "" {
		o.attemptKey = "chk_" + strings.ToLower(ulid.Make().String())
	}
	o.placing = true
	o.mu.Unlock()

	outcome, err := o.place(ctx)

	o.mu.Lock()
	o.placing = false
	if err == nil && outcome == OutcomeRedirected {
		o.state = StateDone
		o.attemptKey = ""
	}
	o.mu.Unlock()
	return outcome, err
}

// place runs the network steps. The caller holds the placing flag, so the
// attempt fields are not written concurrently.
func (o *Orchestrator) place(ctx context.Context) (Outcome, error) {
	l := logging.FromContext(ctx).With("component", "checkout")

	if !o.API.Authenticated() {
		return "", ErrNotAuthenticated
	}
	items := o.Cart.Items()
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	if o.details.SavedAddressID == uuid.Nil {
		o.saveAddress(ctx, l)
	}

	order, err := o.createOrder(ctx, items)
	if err != nil {
		l.Error("checkout_order_failed", "error", err)
		return "", err
	}
	o.setOrder(order)

	if o.method == models.PaymentMethodCOD {
		return o.finish(ctx, l, order)
	}
	if order.PaymentStatus == models.PaymentStatusCompleted {
		// an earlier try of this attempt was verified but its reply was lost
		l.Info("checkout_order_already_paid", "order_id", order.ID)
		return o.finish(ctx, l, order)
	}

	gwOrder, err := o.API.CreateGatewayOrder(ctx, transport.GatewayOrderRequest{
		Amount:   order.TotalAmount,
		Currency: o.Currency,
		Receipt:  "rcpt_" + strings.ReplaceAll(order.ID.String(), "-", ""),
		Notes:    map[string]string{"orderId": order.ID.String()},
	})
	if err != nil {
		l.Error("checkout_gateway_order_failed", "order_id", order.ID, "error", err)
		return "", fmt.Errorf("create payment: %w", err)
	}

	res, err := o.Widget.Open(ctx, WidgetOptions{
		KeyID: o.KeyID,
		Order: gwOrder,
		Name:  o.details.FullName,
		Email: o.details.Email,
		Phone: o.details.Phone,
	})
	if errors.Is(err, ErrPaymentDismissed) {
		l.Info("checkout_payment_cancelled", "order_id", order.ID)
		return OutcomePaymentCancelled, nil
	}
	if err != nil {
		l.Error("checkout_payment_failed", "order_id", order.ID, "error", err)
		return "", fmt.Errorf("payment: %w", err)
	}

	paid, err := o.API.VerifyPayment(ctx, transport.VerifyPaymentRequest{
		RazorpayOrderID:   res.GatewayOrderID,
		RazorpayPaymentID: res.PaymentID,
		RazorpaySignature: res.Signature,
		OrderID:           order.ID.String(),
	})
	if err != nil {
		l.Error("checkout_verification_failed", "order_id", order.ID, "error", err)
		return "", fmt.Errorf("verify payment: %w", err)
	}
	o.setOrder(paid)
	return o.finish(ctx, l, paid)
}

func (o *Orchestrator) setOrder(order *models.Order) {
	o.mu.Lock()
	o.order = order
	o.mu.Unlock()
}

func (o *Orchestrator) saveAddress(ctx context.Context, l *slog.Logger) {
	d := o.details
	resp, err := o.API.AddAddress(ctx, transport.AddressRequest{
		FullName: &d.FullName,
		Phone:    &d.Phone,
		Email:    &d.Email,
		Address:  &d.Address,
		City:     &d.City,
		District: &d.District,
		PinCode:  &d.Pincode,
	})
	if err != nil {
		l.Warn("checkout_address_save_failed", "error", err)
		return
	}
	if resp != nil && resp.Address != nil {
		o.details.SavedAddressID = resp.Address.ID
	}
}

func (o *Orchestrator) createOrder(ctx context.Context, items []models.CartLine) (*models.Order, error) {
	lines := make([]transport.OrderItemRequest, 0, len(items))
	for _, it := range items {
		lines = append(lines, transport.OrderItemRequest{
			ID:       it.Product.ID.String(),
			Name:     it.Product.Name,
			Image:    it.Product.Image,
			Price:    it.Product.Price,
			Mrp:      it.Product.Mrp,
			Quantity: it.Quantity,
		})
	}

	subtotal := o.Cart.Subtotal()
	charge := o.Shipping.Cost(subtotal)
	total := subtotal.Add(charge)

	state := o.details.State
	if state == "" {
		state = o.details.District
	}

	order, _, err := o.API.CreateOrder(ctx, transport.CreateOrderRequest{
		CustomerName:    o.details.FullName,
		CustomerEmail:   o.details.Email,
		CustomerPhone:   o.details.Phone,
		ShippingAddress: o.details.Address,
		ShippingCity:    o.details.City,
		ShippingState:   state,
		ShippingPincode: o.details.Pincode,
		Products:        lines,
		Subtotal:        &subtotal,
		ShippingCharge:  &charge,
		TotalAmount:     &total,
		PaymentMethod:   o.method,
	}, o.attemptKey)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// finish issues the invoice and empties the cart. Neither failure blocks the
// redirect.
func (o *Orchestrator) finish(ctx context.Context, l *slog.Logger, order *models.Order) (Outcome, error) {
	if _, err := o.API.CreateInvoice(ctx, order.ID); err != nil {
		l.Warn("checkout_invoice_failed", "order_id", order.ID, "error", err)
	}
	if err := o.Cart.Clear(); err != nil {
		l.Warn("checkout_cart_clear_failed", "order_id", order.ID, "error", err)
	} else if err := o.Cart.Flush(ctx); err != nil {
		l.Warn("checkout_cart_flush_failed", "order_id", order.ID, "error", err)
	}

	l.Info("checkout_completed", "order_id", order.ID, "payment_method", order.PaymentMethod)
	return OutcomeRedirected, nil
}
