package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/aquashop/internal/events"
	"github.com/Skotchmaster/aquashop/internal/models"
	"github.com/Skotchmaster/aquashop/pkg/logging"
)

type OrderIndexer interface {
	IndexOrder(ctx context.Context, o *models.Order) error
}

type OrderSearcher interface {
	SearchOrders(ctx context.Context, query string, from, size int) (int64, []uuid.UUID, error)
}

// publish sends evt and only logs a failure. Events never fail a request.
func publish(ctx context.Context, p events.Publisher, topic, key string, evt events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, key, evt); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed",
			"topic", topic,
			"event", evt.Type,
			"error", err,
		)
	}
}

func reindex(ctx context.Context, idx OrderIndexer, o *models.Order) {
	if idx == nil || o == nil {
		return
	}
	if err := idx.IndexOrder(ctx, o); err != nil {
		logging.FromContext(ctx).Warn("order_index_failed", "order_id", o.ID, "error", err)
	}
}

type orderEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	UserID        uuid.UUID `json:"user_id"`
	OrderStatus   string    `json:"order_status"`
	PaymentStatus string    `json:"payment_status"`
	PaymentMethod string    `json:"payment_method"`
	TotalAmount   string    `json:"total_amount"`
	PrevStatus    string    `json:"prev_status,omitempty"`
}

func newOrderEvent(o *models.Order) orderEvent {
	return orderEvent{
		OrderID:       o.ID,
		UserID:        o.UserID,
		OrderStatus:   o.OrderStatus,
		PaymentStatus: o.PaymentStatus,
		PaymentMethod: o.PaymentMethod,
		TotalAmount:   o.TotalAmount.StringFixed(2),
	}
}

type paymentEvent struct {
	OrderID           uuid.UUID `json:"order_id"`
	UserID            uuid.UUID `json:"user_id"`
	RazorpayOrderID   string    `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string    `json:"razorpay_payment_id,omitempty"`
	Amount            int64     `json:"amount,omitempty"`
	Currency          string    `json:"currency,omitempty"`
	Reason            string    `json:"reason,omitempty"`
}

type invoiceEvent struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	OrderID       uuid.UUID `json:"order_id"`
	UserID        uuid.UUID `json:"user_id"`
}
