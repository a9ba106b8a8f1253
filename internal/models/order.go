package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OrderStatusPlaced    = "placed"
	OrderStatusPacked    = "packed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

const (
	PaymentMethodRazorpay = "razorpay"
	PaymentMethodCOD      = "cod"
)

// LineItem is a product snapshot taken when the order is placed.
type LineItem struct {
	ID       uuid.UUID        `json:"id"`
	Name     string           `json:"name"`
	Image    string           `json:"image"`
	Price    decimal.Decimal  `json:"price"`
	Mrp      *decimal.Decimal `json:"mrp,omitempty"`
	Quantity int              `json:"quantity"`
}

type Order struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"                                json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_order_idem" json:"user_id"`

	CustomerName  string `gorm:"not null" json:"customer_name"`
	CustomerEmail string `                json:"customer_email"`
	CustomerPhone string `gorm:"not null" json:"customer_phone"`

	ShippingAddress string `gorm:"not null" json:"shipping_address"`
	ShippingCity    string `gorm:"not null" json:"shipping_city"`
	ShippingState   string `gorm:"not null" json:"shipping_state"`
	ShippingPincode string `gorm:"not null" json:"shipping_pincode"`

	Products []LineItem `gorm:"type:jsonb;serializer:json;not null" json:"products"`

	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	ShippingCharge decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping_charge"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`

	OrderStatus       string  `gorm:"not null;index"          json:"order_status"`
	PaymentStatus     string  `gorm:"not null"                json:"payment_status"`
	PaymentMethod     string  `gorm:"not null"                json:"payment_method"`
	RazorpayOrderID   *string `gorm:"index"                   json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID *string `gorm:"uniqueIndex"             json:"razorpay_payment_id,omitempty"`
	IdempotencyKey    *string `gorm:"uniqueIndex:idx_order_idem" json:"idempotency_key,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `             json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (Order) TableName() string {
	return "orders"
}
