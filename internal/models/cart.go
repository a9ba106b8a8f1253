package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartProduct struct {
	ID    uuid.UUID        `json:"id"`
	Name  string           `json:"name"`
	Image string           `json:"image"`
	Price decimal.Decimal  `json:"price"`
	Mrp   *decimal.Decimal `json:"mrp,omitempty"`
}

type CartLine struct {
	Product  CartProduct `json:"product"`
	Quantity int         `json:"quantity"`
}

// UserCart mirrors a customer's cart and wishlist. One row per user.
type UserCart struct {
	UserID    uuid.UUID   `gorm:"type:uuid;primaryKey"                 json:"-"`
	Items     []CartLine  `gorm:"type:jsonb;serializer:json;not null"  json:"items"`
	Wishlist  []uuid.UUID `gorm:"type:jsonb;serializer:json;not null"  json:"wishlist"`
	UpdatedAt time.Time   `                                            json:"updated_at"`
}

func (UserCart) TableName() string {
	return "user_carts"
}

func All() []any {
	return []any{&Product{}, &Address{}, &Order{}, &Invoice{}, &Counter{}, &UserCart{}}
}
