package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/aquashop/internal/models"
	"github.com/Skotchmaster/aquashop/internal/repo"
	"github.com/Skotchmaster/aquashop/internal/transport"
)

type CartService struct {
	Repo *repo.GormRepo
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.UserCart, error) {
	return s.Repo.GetCart(ctx, userID)
}

// PutCart replaces the stored cart and wishlist. Lines for the same product
// are merged and non-positive quantities dropped.
func (s *CartService) PutCart(ctx context.Context, userID uuid.UUID, req transport.CartPayload) (*models.UserCart, error) {
	items := make([]models.CartLine, 0, len(req.Items))
	pos := make(map[uuid.UUID]int, len(req.Items))
	for _, line := range req.Items {
		if line.Product.ID == uuid.Nil {
			return nil, fmt.Errorf("%w: cart item without product id", ErrValidation)
		}
		if i, ok := pos[line.Product.ID]; ok {
			items[i].Quantity += line.Quantity
			continue
		}
		pos[line.Product.ID] = len(items)
		items = append(items, line)
	}
	kept := items[:0]
	for _, line := range items {
		if line.Quantity > 0 {
			kept = append(kept, line)
		}
	}

	seen := make(map[uuid.UUID]bool, len(req.Wishlist))
	wishlist := make([]uuid.UUID, 0, len(req.Wishlist))
	for _, id := range req.Wishlist {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		wishlist = append(wishlist, id)
	}

	cart := &models.UserCart{UserID: userID, Items: kept, Wishlist: wishlist}
	if err := s.Repo.PutCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
