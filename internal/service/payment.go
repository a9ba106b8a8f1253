package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/aquashop/internal/events"
	"github.com/Skotchmaster/aquashop/internal/gateway"
	"github.com/Skotchmaster/aquashop/internal/models"
	"github.com/Skotchmaster/aquashop/internal/repo"
	"github.com/Skotchmaster/aquashop/internal/transport"
	"github.com/Skotchmaster/aquashop/pkg/logging"
)

type PaymentService struct {
	Repo      *repo.GormRepo
	Gateway   gateway.OrderCreator
	Verifier  gateway.Verifier
	Currency  string
	Tolerance decimal.Decimal
	Events    events.Publisher
	Index     OrderIndexer
}

func (s *PaymentService) loadOwned(ctx context.Context, caller Caller, raw string) (*models.Order, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id", ErrValidation)
	}
	order, err := s.Repo.GetOrder(ctx, id)
	if repo.IsNotFound(err) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(order.UserID) {
		return nil, fmt.Errorf("%w: order belongs to another user", ErrForbidden)
	}
	return order, nil
}

// CreateGatewayOrder opens a provider order for the local order named in
// notes.orderId and records the provider id on it. The charged amount is
// always the stored order total.
func (s *PaymentService) CreateGatewayOrder(ctx context.Context, caller Caller, req transport.GatewayOrderRequest) (*gateway.Order, error) {
	l := logging.FromContext(ctx)

	order, err := s.loadOwned(ctx, caller, req.Notes["orderId"])
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != models.PaymentMethodRazorpay {
		return nil, fmt.Errorf("%w: order is not paid online", ErrValidation)
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		return nil, fmt.Errorf("%w: order payment is %s", ErrConflict, order.PaymentStatus)
	}

	if !req.Amount.IsZero() && req.Amount.Sub(order.TotalAmount).Abs().GreaterThan(s.Tolerance) {
		return nil, fmt.Errorf("%w: amount %s does not match order total %s",
			ErrValidation, req.Amount.StringFixed(2), order.TotalAmount.StringFixed(2))
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.Currency
	}
	if currency != s.Currency {
		return nil, fmt.Errorf("%w: unsupported currency %q", ErrValidation, req.Currency)
	}

	receipt := strings.TrimSpace(req.Receipt)
	if receipt == "" {
		receipt = gateway.NewReceipt()
	}
	if len(receipt) > gateway.MaxReceiptLen {
		return nil, fmt.Errorf("%w: receipt longer than %d characters", ErrValidation, gateway.MaxReceiptLen)
	}

	notes := make(map[string]string, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}
	notes["orderId"] = order.ID.String()

	gwOrder, err := s.Gateway.CreateOrder(ctx, gateway.OrderRequest{
		Amount:   gateway.MinorUnits(order.TotalAmount),
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if err := s.Repo.SetGatewayOrder(ctx, order.ID, gwOrder.ID); err != nil {
		if errors.Is(err, repo.ErrStale) {
			return nil, fmt.Errorf("%w: order payment changed concurrently", ErrConflict)
		}
		return nil, err
	}

	l.Info("gateway_order_created", "order_id", order.ID, "gateway_order_id", gwOrder.ID, "amount", gwOrder.Amount)
	publish(ctx, s.Events, events.TopicPayments, order.UserID.String(), events.New(events.PaymentGatewayOrderCreated, paymentEvent{
		OrderID:         order.ID,
		UserID:          order.UserID,
		RazorpayOrderID: gwOrder.ID,
		Amount:          gwOrder.Amount,
		Currency:        gwOrder.Currency,
	}))
	return gwOrder, nil
}

// VerifyPayment authenticates a client-reported payment with the provider
// signature and completes the order payment on success. On any failure the
// order is left untouched.
func (s *PaymentService) VerifyPayment(ctx context.Context, caller Caller, req transport.VerifyPaymentRequest) (*models.Order, error) {
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" || req.OrderID == "" {
		return nil, fmt.Errorf("%w: missing payment fields", ErrVerification)
	}

	order, err := s.loadOwned(ctx, caller, req.OrderID)
	if errors.Is(err, ErrValidation) {
		return nil, fmt.Errorf("%w: invalid order id", ErrVerification)
	}
	if err != nil {
		return nil, err
	}

	fail := func(reason string) (*models.Order, error) {
		publish(ctx, s.Events, events.TopicPayments, order.UserID.String(), events.New(events.PaymentVerificationFailed, paymentEvent{
			OrderID:           order.ID,
			UserID:            order.UserID,
			RazorpayOrderID:   req.RazorpayOrderID,
			RazorpayPaymentID: req.RazorpayPaymentID,
			Reason:            reason,
		}))
		return nil, fmt.Errorf("%w: %s", ErrVerification, reason)
	}

	if err := s.Verifier.Verify(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature); err != nil {
		return fail(err.Error())
	}
	if order.RazorpayOrderID == nil {
		return fail("no gateway order was opened for this order")
	}
	if *order.RazorpayOrderID != req.RazorpayOrderID {
		return fail("gateway order does not belong to this order")
	}

	if order.PaymentStatus == models.PaymentStatusCompleted {
		if order.RazorpayPaymentID != nil && *order.RazorpayPaymentID == req.RazorpayPaymentID {
			return order, nil
		}
		return nil, fmt.Errorf("%w: order already paid", ErrConflict)
	}

	paid, err := s.Repo.MarkPaid(ctx, order.ID, req.RazorpayOrderID, req.RazorpayPaymentID)
	if errors.Is(err, repo.ErrStale) {
		current, getErr := s.Repo.GetOrder(ctx, order.ID)
		if getErr == nil && current.PaymentStatus == models.PaymentStatusCompleted &&
			current.RazorpayPaymentID != nil && *current.RazorpayPaymentID == req.RazorpayPaymentID {
			return current, nil
		}
		return nil, fmt.Errorf("%w: order payment changed concurrently", ErrConflict)
	}
	if errors.Is(err, repo.ErrPaymentReused) {
		return fail("payment already settled another order")
	}
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicPayments, paid.UserID.String(), events.New(events.PaymentVerified, paymentEvent{
		OrderID:           paid.ID,
		UserID:            paid.UserID,
		RazorpayOrderID:   req.RazorpayOrderID,
		RazorpayPaymentID: req.RazorpayPaymentID,
		Amount:            gateway.MinorUnits(paid.TotalAmount),
		Currency:          s.Currency,
	}))
	reindex(ctx, s.Index, paid)
	return paid, nil
}
