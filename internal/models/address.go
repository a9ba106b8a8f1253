package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is one saved shipping address of a user. Version is bumped on
// every write and guards conditional updates. A partial unique index allows
// one default per user.
type Address struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_address_one_default,where:is_default" json:"-"`
	FullName  string    `gorm:"not null"                 json:"full_name"`
	Phone     string    `gorm:"not null"                 json:"phone"`
	Email     string    `                                json:"email"`
	Address   string    `gorm:"not null"                 json:"address"`
	City      string    `gorm:"not null"                 json:"city"`
	District  string    `gorm:"not null"                 json:"district"`
	PinCode   string    `gorm:"not null"                 json:"pin_code"`
	IsDefault bool      `gorm:"not null;default:false"   json:"is_default"`
	Version   int       `gorm:"not null;default:1"       json:"version"`
	CreatedAt time.Time `                                json:"created_at"`
	UpdatedAt time.Time `                                json:"updated_at"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (Address) TableName() string {
	return "user_addresses"
}
