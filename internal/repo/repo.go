package repo

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/aquashop/internal/models"
)

// ErrStale is returned when a conditional write matched no row because the
// row changed since it was read.
var ErrStale = errors.New("stale write")

// ErrPaymentReused is returned when a provider payment id is already recorded
// on another order.
var ErrPaymentReused = errors.New("payment id already used")

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
