package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/aquashop/internal/events"
	"github.com/Skotchmaster/aquashop/internal/models"
	"github.com/Skotchmaster/aquashop/internal/repo"
	"github.com/Skotchmaster/aquashop/internal/shipping"
	"github.com/Skotchmaster/aquashop/internal/transport"
)

const maxIdempotencyKeyLen = 128

type OrderService struct {
	Repo      *repo.GormRepo
	Shipping  shipping.Calculator
	Tolerance decimal.Decimal
	Events    events.Publisher
	Index     OrderIndexer
	Search    OrderSearcher
}

// Create prices the order from the products table and stores it. When the
// request carries an idempotency key already used by the caller, the stored
// order is returned and created is false.
func (s *OrderService) Create(ctx context.Context, caller Caller, req transport.CreateOrderRequest) (*models.Order, bool, error) {
	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if method == "" {
		method = models.PaymentMethodRazorpay
	}
	if method != models.PaymentMethodRazorpay && method != models.PaymentMethodCOD {
		return nil, false, fmt.Errorf("%w: unsupported payment method %q", ErrValidation, req.PaymentMethod)
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"customer_name", req.CustomerName},
		{"customer_phone", req.CustomerPhone},
		{"shipping_address", req.ShippingAddress},
		{"shipping_city", req.ShippingCity},
		{"shipping_state", req.ShippingState},
		{"shipping_pincode", req.ShippingPincode},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, false, fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if len(req.Products) == 0 {
		return nil, false, fmt.Errorf("%w: products required", ErrValidation)
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		return nil, false, fmt.Errorf("%w: idempotency key too long", ErrValidation)
	}
	if key != "" {
		existing, err := s.Repo.OrderByIdempotencyKey(ctx, caller.UserID, key)
		if err == nil {
			return existing, false, nil
		}
		if !repo.IsNotFound(err) {
			return nil, false, err
		}
	}

	items, subtotal, err := s.price(ctx, req.Products)
	if err != nil {
		return nil, false, err
	}
	shippingCharge := s.Shipping.Cost(subtotal)
	total := subtotal.Add(shippingCharge)

	if req.TotalAmount != nil && req.TotalAmount.Sub(total).Abs().GreaterThan(s.Tolerance) {
		return nil, false, fmt.Errorf("%w: total_amount %s does not match computed total %s",
			ErrValidation, req.TotalAmount.StringFixed(2), total.StringFixed(2))
	}

	order := &models.Order{
		UserID:          caller.UserID,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		ShippingCity:    strings.TrimSpace(req.ShippingCity),
		ShippingState:   strings.TrimSpace(req.ShippingState),
		ShippingPincode: strings.TrimSpace(req.ShippingPincode),
		Products:        items,
		Subtotal:        subtotal,
		ShippingCharge:  shippingCharge,
		TotalAmount:     total,
		OrderStatus:     models.OrderStatusPlaced,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMethod:   method,
	}
	if order.CustomerEmail == "" {
		order.CustomerEmail = caller.Email
	}
	if key != "" {
		order.IdempotencyKey = &key
	}

	saved, created, err := s.Repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, false, err
	}
	if created {
		publish(ctx, s.Events, events.TopicOrders, saved.UserID.String(), events.New(events.OrderCreated, newOrderEvent(saved)))
		reindex(ctx, s.Index, saved)
	}
	return saved, created, nil
}

// price merges duplicate lines and snapshots the stored product data.
func (s *OrderService) price(ctx context.Context, lines []transport.OrderItemRequest) ([]models.LineItem, decimal.Decimal, error) {
	qty := make(map[uuid.UUID]int, len(lines))
	var ids []uuid.UUID
	for _, l := range lines {
		id, err := uuid.Parse(l.ID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("%w: invalid product id %q", ErrValidation, l.ID)
		}
		if l.Quantity <= 0 {
			return nil, decimal.Zero, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
		}
		if _, seen := qty[id]; !seen {
			ids = append(ids, id)
		}
		qty[id] += l.Quantity
	}

	products, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}

	subtotal := decimal.Zero
	items := make([]models.LineItem, 0, len(ids))
	for _, id := range ids {
		p, ok := products[id]
		if !ok || !p.Active {
			return nil, decimal.Zero, fmt.Errorf("%w: product %s is not available", ErrValidation, id)
		}
		items = append(items, models.LineItem{
			ID:       p.ID,
			Name:     p.Name,
			Image:    p.Image,
			Price:    p.Price,
			Mrp:      p.Mrp,
			Quantity: qty[id],
		})
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(qty[id]))))
	}
	return items, subtotal, nil
}

func (s *OrderService) Get(ctx context.Context, caller Caller, id uuid.UUID) (*models.Order, error) {
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

// List returns the caller's orders, or every order for an admin.
func (s *OrderService) List(ctx context.Context, caller Caller, limit, offset int) ([]models.Order, error) {
	if caller.Admin {
		return s.Repo.ListOrders(ctx, nil, limit, offset)
	}
	uid := caller.UserID
	return s.Repo.ListOrders(ctx, &uid, limit, offset)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, to string) (*models.Order, error) {
	to = strings.ToLower(strings.TrimSpace(to))
	if !IsOrderStatus(to) {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrValidation, to)
	}

	order, err := s.Repo.GetOrder(ctx, id)
	if repo.IsNotFound(err) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	from := order.OrderStatus
	if !CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	updated, err := s.Repo.UpdateOrderStatus(ctx, id, from, to)
	if errors.Is(err, repo.ErrStale) {
		return nil, fmt.Errorf("%w: order status changed concurrently", ErrConflict)
	}
	if err != nil {
		return nil, err
	}

	evt := newOrderEvent(updated)
	evt.PrevStatus = from
	publish(ctx, s.Events, events.TopicOrders, updated.UserID.String(), events.New(events.OrderStatusChanged, evt))
	reindex(ctx, s.Index, updated)
	return updated, nil
}

// SearchOrders looks orders up in the search index and loads them from the
// database in relevance order.
func (s *OrderService) SearchOrders(ctx context.Context, query string, from, size int) (int64, []models.Order, error) {
	if s.Search == nil {
		return 0, nil, fmt.Errorf("%w: order search is not configured", ErrUnavailable)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("%w: query required", ErrValidation)
	}

	total, ids, err := s.Search.SearchOrders(ctx, query, from, size)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	orders := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		o, err := s.Repo.GetOrder(ctx, id)
		if repo.IsNotFound(err) {
			continue
		}
		if err != nil {
			return 0, nil, err
		}
		orders = append(orders, *o)
	}
	return total, orders, nil
}
