package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/aquashop/internal/gateway"
	"github.com/Skotchmaster/aquashop/internal/models"
)

type AddressRequest struct {
	ID        string  `json:"id,omitempty"`
	FullName  *string `json:"full_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	Address   *string `json:"address,omitempty"`
	City      *string `json:"city,omitempty"`
	District  *string `json:"district,omitempty"`
	PinCode   *string `json:"pin_code,omitempty"`
	IsDefault *bool   `json:"is_default,omitempty"`
	Version   *int    `json:"version,omitempty"`
}

type AddressListResponse struct {
	Addresses []models.Address `json:"addresses"`
}

type AddressResponse struct {
	Address   *models.Address  `json:"address"`
	Addresses []models.Address `json:"addresses"`
}

type AddressDeleteResponse struct {
	Success   bool             `json:"success"`
	Addresses []models.Address `json:"addresses"`
}

type OrderItemRequest struct {
	ID       string           `json:"id"`
	Name     string           `json:"name,omitempty"`
	Image    string           `json:"image,omitempty"`
	Price    decimal.Decimal  `json:"price"`
	Mrp      *decimal.Decimal `json:"mrp,omitempty"`
	Quantity int              `json:"quantity"`
}

type CreateOrderRequest struct {
	CustomerName    string             `json:"customer_name"`
	CustomerEmail   string             `json:"customer_email"`
	CustomerPhone   string             `json:"customer_phone"`
	ShippingAddress string             `json:"shipping_address"`
	ShippingCity    string             `json:"shipping_city"`
	ShippingState   string             `json:"shipping_state"`
	ShippingPincode string             `json:"shipping_pincode"`
	Products        []OrderItemRequest `json:"products"`
	Subtotal        *decimal.Decimal   `json:"subtotal,omitempty"`
	ShippingCharge  *decimal.Decimal   `json:"shipping_charge,omitempty"`
	TotalAmount     *decimal.Decimal   `json:"total_amount,omitempty"`
	PaymentMethod   string             `json:"payment_method"`
	IdempotencyKey  string             `json:"idempotency_key,omitempty"`
}

type UpdateOrderStatusRequest struct {
	OrderStatus string `json:"order_status"`
}

type OrderResponse struct {
	Order *models.Order `json:"order"`
}

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
}

type OrderSearchResponse struct {
	Total  int64          `json:"total"`
	Orders []models.Order `json:"orders"`
}

type GatewayOrderRequest struct {
	Amount   decimal.Decimal   `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

type GatewayOrderResponse struct {
	Order *gateway.Order `json:"order"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	OrderID           string `json:"orderId"`
}

type VerifyPaymentResponse struct {
	Success bool          `json:"success"`
	Order   *models.Order `json:"order"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type InvoiceRequest struct {
	OrderID string `json:"orderId"`
}

type InvoiceResponse struct {
	Invoice *models.Invoice `json:"invoice"`
}

type CartPayload struct {
	Items    []models.CartLine `json:"items"`
	Wishlist []uuid.UUID       `json:"wishlist"`
}
