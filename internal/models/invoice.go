package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is a frozen copy of an order taken the first time an invoice is
// requested for it.
type Invoice struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"             json:"id"`
	OrderID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"   json:"order_id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"         json:"user_id"`
	InvoiceNumber string    `gorm:"not null;uniqueIndex"             json:"invoice_number"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`

	BillingAddress  string `json:"billing_address"`
	ShippingAddress string `json:"shipping_address"`
	ShippingCity    string `json:"shipping_city"`
	ShippingState   string `json:"shipping_state"`
	ShippingPincode string `json:"shipping_pincode"`

	Items []LineItem `gorm:"type:jsonb;serializer:json;not null" json:"items"`

	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	ShippingCharge decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping_charge"`
	Tax            decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	Discount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`

	PaymentMethod     string `json:"payment_method"`
	PaymentStatus     string `json:"payment_status"`
	RazorpayOrderID   string `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string `json:"razorpay_payment_id,omitempty"`

	OrderDate time.Time `json:"order_date"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (Invoice) TableName() string {
	return "invoices"
}

// Counter is a named monotonically increasing sequence.
type Counter struct {
	Name      string    `gorm:"primaryKey"       json:"name"`
	Value     int64     `gorm:"not null"         json:"value"`
	UpdatedAt time.Time `                        json:"updated_at"`
}

func (Counter) TableName() string {
	return "counters"
}
