package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/aquashop/internal/models"
)

func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	var products []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *GormRepo) OrderByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Where("user_id = ? AND idempotency_key = ?", userID, key).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder inserts order. With an idempotency key an existing order for the
// same user and key is returned instead, and created reports false.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, bool, error) {
	if order.IdempotencyKey == nil {
		if err := r.DB.WithContext(ctx).Create(order).Error; err != nil {
			return nil, false, err
		}
		return order, true, nil
	}

	existing, err := r.OrderByIdempotencyKey(ctx, order.UserID, *order.IdempotencyKey)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if createErr := r.DB.WithContext(ctx).Create(order).Error; createErr != nil {
		// a concurrent request with the same key may have won the insert
		existing, err := r.OrderByIdempotencyKey(ctx, order.UserID, *order.IdempotencyKey)
		if err == nil {
			return existing, false, nil
		}
		return nil, false, createErr
	}
	return order, true, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns orders newest first. A nil userID lists every order and
// a limit of zero or less lists them all.
func (r *GormRepo) ListOrders(ctx context.Context, userID *uuid.UUID, limit, offset int) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Order("created_at DESC")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus moves the order from one status to another. ErrStale means
// the status was no longer from.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to string) (*models.Order, error) {
	db := r.DB.WithContext(ctx)
	res := db.Model(&models.Order{}).
		Where("id = ? AND order_status = ?", id, from).
		Update("order_status", to)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrStale
	}
	return r.GetOrder(ctx, id)
}

// SetGatewayOrder records the provider order id on an unpaid order.
func (r *GormRepo) SetGatewayOrder(ctx context.Context, id uuid.UUID, gatewayOrderID string) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, models.PaymentStatusPending).
		Update("razorpay_order_id", gatewayOrderID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// MarkPaid completes payment for a pending order whose recorded provider
// order is gatewayOrderID. A payment id settles at most one order.
func (r *GormRepo) MarkPaid(ctx context.Context, id uuid.UUID, gatewayOrderID, paymentID string) (*models.Order, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ? AND razorpay_order_id = ?", id, models.PaymentStatusPending, gatewayOrderID).
		Updates(map[string]any{
			"payment_status":      models.PaymentStatusCompleted,
			"razorpay_payment_id": paymentID,
		})
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return nil, ErrPaymentReused
	}
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrStale
	}
	return r.GetOrder(ctx, id)
}
