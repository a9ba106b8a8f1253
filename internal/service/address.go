package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/Skotchmaster/aquashop/internal/models"
	"github.com/Skotchmaster/aquashop/internal/repo"
	"github.com/Skotchmaster/aquashop/internal/transport"
)

type AddressService struct {
	Repo   *repo.GormRepo
	policy *bluemonday.Policy
}

func NewAddressService(r *repo.GormRepo) *AddressService {
	return &AddressService{Repo: r, policy: bluemonday.StrictPolicy()}
}

// clean strips markup from free text. The policy escapes entities, the
// stored value is plain text so they are decoded again.
func (s *AddressService) clean(v string) string {
	p := s.policy
	if p == nil {
		p = bluemonday.StrictPolicy()
	}
	return strings.TrimSpace(html.UnescapeString(p.Sanitize(v)))
}

func (s *AddressService) cleanPtr(v *string) *string {
	if v == nil {
		return nil
	}
	c := s.clean(*v)
	return &c
}

func (s *AddressService) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	return s.Repo.ListAddresses(ctx, userID)
}

func (s *AddressService) Add(ctx context.Context, userID uuid.UUID, req transport.AddressRequest) (*models.Address, []models.Address, error) {
	val := func(p *string) string {
		if p == nil {
			return ""
		}
		return s.clean(*p)
	}

	addr := &models.Address{
		UserID:    userID,
		FullName:  val(req.FullName),
		Phone:     val(req.Phone),
		Email:     val(req.Email),
		Address:   val(req.Address),
		City:      val(req.City),
		District:  val(req.District),
		PinCode:   val(req.PinCode),
		IsDefault: req.IsDefault != nil && *req.IsDefault,
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"full_name", addr.FullName},
		{"phone", addr.Phone},
		{"address", addr.Address},
		{"city", addr.City},
		{"district", addr.District},
		{"pin_code", addr.PinCode},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}

	list, err := s.Repo.AddAddress(ctx, addr)
	if errors.Is(err, repo.ErrStale) {
		return nil, nil, fmt.Errorf("%w: addresses were modified concurrently", ErrConflict)
	}
	if err != nil {
		return nil, nil, err
	}
	return addr, list, nil
}

func (s *AddressService) Update(ctx context.Context, userID uuid.UUID, req transport.AddressRequest) (*models.Address, []models.Address, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: address id required", ErrValidation)
	}

	patch := repo.AddressPatch{
		FullName:  s.cleanPtr(req.FullName),
		Phone:     s.cleanPtr(req.Phone),
		Email:     s.cleanPtr(req.Email),
		Address:   s.cleanPtr(req.Address),
		City:      s.cleanPtr(req.City),
		District:  s.cleanPtr(req.District),
		PinCode:   s.cleanPtr(req.PinCode),
		IsDefault: req.IsDefault,
	}
	for name, v := range map[string]*string{
		"full_name": patch.FullName,
		"phone":     patch.Phone,
		"address":   patch.Address,
		"city":      patch.City,
		"district":  patch.District,
		"pin_code":  patch.PinCode,
	} {
		if v != nil && *v == "" {
			return nil, nil, fmt.Errorf("%w: %s must not be empty", ErrValidation, name)
		}
	}

	addr, list, err := s.Repo.UpdateAddress(ctx, userID, id, patch, req.Version)
	switch {
	case repo.IsNotFound(err):
		return nil, nil, fmt.Errorf("%w: address %s", ErrNotFound, id)
	case errors.Is(err, repo.ErrStale):
		return nil, nil, fmt.Errorf("%w: address was modified concurrently", ErrConflict)
	case err != nil:
		return nil, nil, err
	}
	return addr, list, nil
}

func (s *AddressService) Delete(ctx context.Context, userID uuid.UUID, rawID string) ([]models.Address, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: address id required", ErrValidation)
	}

	list, err := s.Repo.DeleteAddress(ctx, userID, id)
	switch {
	case repo.IsNotFound(err):
		return nil, fmt.Errorf("%w: address %s", ErrNotFound, id)
	case errors.Is(err, repo.ErrStale):
		return nil, fmt.Errorf("%w: address was modified concurrently", ErrConflict)
	case err != nil:
		return nil, err
	}
	return list, nil
}
