package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/aquashop/internal/models"
)

// GetCart returns the stored cart of the user or an empty one.
func (r *GormRepo) GetCart(ctx context.Context, userID uuid.UUID) (*models.UserCart, error) {
	var cart models.UserCart
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserCart{UserID: userID, Items: []models.CartLine{}, Wishlist: []uuid.UUID{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) PutCart(ctx context.Context, cart *models.UserCart) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"items", "wishlist", "updated_at"}),
	}).Create(cart).Error
}
