package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/aquashop/internal/models"
)

// AddressPatch carries the fields of a partial update. Nil keeps the stored
// value.
type AddressPatch struct {
	FullName  *string
	Phone     *string
	Email     *string
	Address   *string
	City      *string
	District  *string
	PinCode   *string
	IsDefault *bool
}

// defaultRetries bounds retries of a write that lost the one-default index to
// a concurrent write for the same user.
const defaultRetries = 3

func listAddresses(tx *gorm.DB, userID uuid.UUID) ([]models.Address, error) {
	var out []models.Address
	err := tx.Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// lockAddresses takes row locks on every address of the user, oldest first,
// so writers touching the default flag run one after another.
func lockAddresses(tx *gorm.DB, userID uuid.UUID) ([]models.Address, error) {
	var rows []models.Address
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func clearDefault(tx *gorm.DB, userID, keep uuid.UUID) error {
	return tx.Model(&models.Address{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userID, keep, true).
		Updates(map[string]any{
			"is_default": false,
			"version":    gorm.Expr("version + 1"),
		}).Error
}

func retryOnDefaultRace(fn func() error) error {
	for attempt := 0; attempt < defaultRetries; attempt++ {
		if err := fn(); !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return ErrStale
}

func (r *GormRepo) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	return listAddresses(r.DB.WithContext(ctx), userID)
}

// AddAddress stores addr for its user. The first address of a user becomes
// default regardless of addr.IsDefault.
func (r *GormRepo) AddAddress(ctx context.Context, addr *models.Address) ([]models.Address, error) {
	var list []models.Address
	wantDefault := addr.IsDefault
	err := retryOnDefaultRace(func() error {
		addr.IsDefault = wantDefault
		return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			existing, err := lockAddresses(tx, addr.UserID)
			if err != nil {
				return err
			}
			if len(existing) == 0 {
				addr.IsDefault = true
			}
			if addr.IsDefault {
				if err := clearDefault(tx, addr.UserID, addr.ID); err != nil {
					return err
				}
			}
			addr.Version = 1
			if err := tx.Create(addr).Error; err != nil {
				return err
			}
			list, err = listAddresses(tx, addr.UserID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateAddress applies patch to the address. When expectedVersion is set it
// must match the stored version. The write itself is conditional on the
// version read inside the transaction.
func (r *GormRepo) UpdateAddress(ctx context.Context, userID, id uuid.UUID, patch AddressPatch, expectedVersion *int) (*models.Address, []models.Address, error) {
	var (
		addr models.Address
		list []models.Address
	)
	err := retryOnDefaultRace(func() error {
		return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if _, err := lockAddresses(tx, userID); err != nil {
				return err
			}
			if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&addr).Error; err != nil {
				return err
			}
			if expectedVersion != nil && *expectedVersion != addr.Version {
				return ErrStale
			}

			updates := map[string]any{"version": addr.Version + 1}
			set := func(col string, v *string) {
				if v != nil {
					updates[col] = *v
				}
			}
			set("full_name", patch.FullName)
			set("phone", patch.Phone)
			set("email", patch.Email)
			set("address", patch.Address)
			set("city", patch.City)
			set("district", patch.District)
			set("pin_code", patch.PinCode)

			if patch.IsDefault != nil && *patch.IsDefault {
				if err := clearDefault(tx, userID, addr.ID); err != nil {
					return err
				}
				updates["is_default"] = true
			}

			res := tx.Model(&models.Address{}).
				Where("id = ? AND version = ?", addr.ID, addr.Version).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrStale
			}

			if err := tx.First(&addr, "id = ?", addr.ID).Error; err != nil {
				return err
			}
			var err error
			list, err = listAddresses(tx, userID)
			return err
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return &addr, list, nil
}

// DeleteAddress removes the address. When it was the default, the oldest
// remaining address is promoted.
func (r *GormRepo) DeleteAddress(ctx context.Context, userID, id uuid.UUID) ([]models.Address, error) {
	var list []models.Address
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := lockAddresses(tx, userID)
		if err != nil {
			return err
		}
		var addr models.Address
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&addr).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND version = ?", addr.ID, addr.Version).Delete(&models.Address{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStale
		}

		if addr.IsDefault {
			for _, next := range rows {
				if next.ID == addr.ID {
					continue
				}
				res = tx.Model(&models.Address{}).
					Where("id = ? AND version = ?", next.ID, next.Version).
					Updates(map[string]any{"is_default": true, "version": next.Version + 1})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return ErrStale
				}
				break
			}
		}

		list, err = listAddresses(tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
