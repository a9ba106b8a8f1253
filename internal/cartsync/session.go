// Package cartsync keeps a user's cart and wishlist in memory and writes them
// back to the storefront on Flush.
package cartsync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/aquashop/internal/models"
	"github.com/Skotchmaster/aquashop/internal/transport"
)

var (
	ErrNotLoaded  = errors.New("cart not loaded")
	ErrValidation = errors.New("validation")
)

type Store interface {
	GetCart(ctx context.Context) (*transport.CartPayload, error)
	PutCart(ctx context.Context, cart transport.CartPayload) (*transport.CartPayload, error)
}

// Session owns one user's cart. Mutations before Load fail with ErrNotLoaded
// so a remote copy is never overwritten by an empty local one.
type Session struct {
	store Store

	mu       sync.Mutex
	loaded   bool
	dirty    bool
	gen      uint64
	items    []models.CartLine
	wishlist []uuid.UUID
}

func NewSession(store Store) *Session {
	return &Session{store: store}
}

func (s *Session) Load(ctx context.Context) error {
	remote, err := s.store.GetCart(ctx)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]models.CartLine(nil), remote.Items...)
	s.wishlist = append([]uuid.UUID(nil), remote.Wishlist...)
	s.loaded = true
	s.dirty = false
	return nil
}

func (s *Session) mutate(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	if err := fn(); err != nil {
		return err
	}
	s.dirty = true
	s.gen++
	return nil
}

func (s *Session) indexOf(id uuid.UUID) int {
	for i, line := range s.items {
		if line.Product.ID == id {
			return i
		}
	}
	return -1
}

// Add puts qty units of p in the cart, merging with an existing line.
func (s *Session) Add(p models.CartProduct, qty int) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: product id required", ErrValidation)
	}
	if qty < 1 {
		qty = 1
	}
	return s.mutate(func() error {
		if i := s.indexOf(p.ID); i >= 0 {
			s.items[i].Quantity += qty
			return nil
		}
		s.items = append(s.items, models.CartLine{Product: p, Quantity: qty})
		return nil
	})
}

// SetQuantity sets the quantity of a line. Zero or less removes it.
func (s *Session) SetQuantity(id uuid.UUID, qty int) error {
	return s.mutate(func() error {
		i := s.indexOf(id)
		if i < 0 {
			return fmt.Errorf("%w: product %s not in cart", ErrValidation, id)
		}
		if qty <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
		s.items[i].Quantity = qty
		return nil
	})
}

func (s *Session) Remove(id uuid.UUID) error {
	return s.mutate(func() error {
		if i := s.indexOf(id); i >= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		}
		return nil
	})
}

// ToggleWishlist adds id to the wishlist or removes it, reporting whether it
// is on the list afterwards.
func (s *Session) ToggleWishlist(id uuid.UUID) (bool, error) {
	var on bool
	err := s.mutate(func() error {
		for i, w := range s.wishlist {
			if w == id {
				s.wishlist = append(s.wishlist[:i], s.wishlist[i+1:]...)
				return nil
			}
		}
		s.wishlist = append(s.wishlist, id)
		on = true
		return nil
	})
	return on, err
}

// Clear empties the cart. The wishlist is kept.
func (s *Session) Clear() error {
	return s.mutate(func() error {
		s.items = nil
		return nil
	})
}

// Flush writes the cart back when it changed since the last Load or Flush.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	gen := s.gen
	payload := transport.CartPayload{
		Items:    append([]models.CartLine{}, s.items...),
		Wishlist: append([]uuid.UUID{}, s.wishlist...),
	}
	s.mu.Unlock()

	saved, err := s.store.PutCart(ctx, payload)
	if err != nil {
		return fmt.Errorf("flush cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Local changes made while the write was in flight stay dirty.
	if s.gen != gen {
		return nil
	}
	s.items = saved.Items
	s.wishlist = saved.Wishlist
	s.dirty = false
	return nil
}

func (s *Session) Items() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartLine(nil), s.items...)
}

func (s *Session) Wishlist() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uuid.UUID(nil), s.wishlist...)
}

func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Subtotal is the cart value at the prices the cart was filled with. The
// server reprices on order placement.
func (s *Session) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, line := range s.items {
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}
