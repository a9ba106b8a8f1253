package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/aquashop/internal/models"
)

func (r *GormRepo) InvoiceByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// NextCounter increments the named counter inside tx and returns the new
// value. Missing counters start at 1.
func NextCounter(tx *gorm.DB, name string) (int64, error) {
	res := tx.Model(&models.Counter{}).
		Where("name = ?", name).
		Update("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		if err := tx.Create(&models.Counter{Name: name, Value: 1}).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}

	var c models.Counter
	if err := tx.First(&c, "name = ?", name).Error; err != nil {
		return 0, err
	}
	return c.Value, nil
}

// GetOrCreateInvoice returns the invoice of orderID, creating it with build
// when none exists. build receives the next value of counterName. When a
// concurrent request creates the invoice first, its row is returned and
// created is false.
func (r *GormRepo) GetOrCreateInvoice(ctx context.Context, orderID uuid.UUID, counterName string, build func(seq int64) *models.Invoice) (*models.Invoice, bool, error) {
	var err error
	// the second attempt covers two transactions racing to create a new
	// counter row
	for attempt := 0; attempt < 2; attempt++ {
		var (
			inv     *models.Invoice
			created bool
		)
		inv, created, err = r.getOrCreateInvoiceTx(ctx, orderID, counterName, build)
		if err == nil {
			return inv, created, nil
		}
		if winner, findErr := r.InvoiceByOrder(ctx, orderID); findErr == nil {
			return winner, false, nil
		}
		if ctx.Err() != nil {
			break
		}
	}
	return nil, false, err
}

func (r *GormRepo) getOrCreateInvoiceTx(ctx context.Context, orderID uuid.UUID, counterName string, build func(seq int64) *models.Invoice) (*models.Invoice, bool, error) {
	var (
		inv     *models.Invoice
		created bool
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Invoice
		err := tx.Where("order_id = ?", orderID).First(&existing).Error
		if err == nil {
			inv = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		seq, err := NextCounter(tx, counterName)
		if err != nil {
			return err
		}
		inv = build(seq)
		if err := tx.Create(inv).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return inv, created, nil
}
