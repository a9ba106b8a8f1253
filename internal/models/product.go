package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the authoritative price source for order line items. Catalog
// management writes it; checkout only reads it.
type Product struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey"           json:"id"`
	Name      string           `gorm:"not null"                       json:"name"`
	Image     string           `                                      json:"image"`
	Price     decimal.Decimal  `gorm:"type:numeric(12,2);not null"    json:"price"`
	Mrp       *decimal.Decimal `gorm:"type:numeric(12,2)"             json:"mrp,omitempty"`
	Active    bool             `gorm:"not null;default:true"          json:"active"`
	CreatedAt time.Time        `                                      json:"created_at"`
	UpdatedAt time.Time        `                                      json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Product) TableName() string {
	return "products"
}
