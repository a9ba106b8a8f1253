package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/aquashop/internal/events"
	"github.com/Skotchmaster/aquashop/internal/models"
)

func TestInvoiceNumber(t *testing.T) {
	t.Parallel()
	ts := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "INV-202603-000123", InvoiceNumber(ts, 123))
	assert.Equal(t, "invoices:202603", invoiceCounter(ts))
}

func TestDiscount(t *testing.T) {
	t.Parallel()
	mrp := decimal.NewFromInt(350)
	lower := decimal.NewFromInt(100)
	items := []models.LineItem{
		{Price: decimal.NewFromInt(300), Mrp: &mrp, Quantity: 2},
		{Price: decimal.NewFromInt(1200), Quantity: 1},
		{Price: decimal.NewFromInt(150), Mrp: &lower, Quantity: 1},
	}
	assert.Equal(t, "100", Discount(items).String())
}

func TestInvoice_GetOrCreateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := customer()
	betta := f.product(t, "Betta Fish", "300", "350")
	order := f.placeOrder(t, caller, line(betta, 2))

	f.Invoices.Clock = func() time.Time { return time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC) }

	first, created, err := f.Invoices.GetOrCreate(ctx, caller, order.ID.String())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "INV-202601-000001", first.InvoiceNumber)
	assert.Equal(t, order.ID, first.OrderID)
	assert.Equal(t, "Asha Rao", first.CustomerName)
	assert.Equal(t, "600", first.Subtotal.String())
	assert.Equal(t, "100", first.Discount.String())
	assert.Equal(t, "699", first.TotalAmount.String())
	assert.Equal(t, "12 Lake Road, Pune, Pune, 411001", first.BillingAddress)
	require.Len(t, first.Items, 1)

	second, created, err := f.Invoices.GetOrCreate(ctx, caller, order.ID.String())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.InvoiceNumber, second.InvoiceNumber)
	assert.Equal(t, first.ID, second.ID)

	other := f.placeOrder(t, caller, line(betta, 1))
	third, _, err := f.Invoices.GetOrCreate(ctx, caller, other.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "INV-202601-000002", third.InvoiceNumber)

	var count int64
	require.NoError(t, f.DB.Model(&models.Invoice{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Len(t, f.Events.Types(events.TopicInvoices), 2)
}

func TestInvoice_ConcurrentRequestsCreateOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := customer()
	betta := f.product(t, "Betta Fish", "300", "")
	order := f.placeOrder(t, caller, line(betta, 1))

	const workers = 8
	numbers := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			inv, _, err := f.Invoices.GetOrCreate(ctx, caller, order.ID.String())
			errs[i] = err
			if err == nil {
				numbers[i] = inv.InvoiceNumber
			}
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, numbers[0], numbers[i])
	}

	var count int64
	require.NoError(t, f.DB.Model(&models.Invoice{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Len(t, f.Events.Types(events.TopicInvoices), 1)
}

func TestInvoice_SnapshotIsFrozen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := customer()
	betta := f.product(t, "Betta Fish", "300", "")
	order := f.placeOrder(t, caller, line(betta, 1))

	inv, _, err := f.Invoices.GetOrCreate(ctx, caller, order.ID.String())
	require.NoError(t, err)

	require.NoError(t, f.DB.Model(&models.Order{}).Where("id = ?", order.ID).Update("customer_name", "Someone Else").Error)

	again, _, err := f.Invoices.GetOrCreate(ctx, caller, order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, inv.CustomerName, again.CustomerName)
	assert.Equal(t, "Asha Rao", again.CustomerName)
}

func TestInvoice_AccessAndDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := customer()
	betta := f.product(t, "Betta Fish", "300", "")
	order := f.placeOrder(t, caller, line(betta, 1))

	_, _, err := f.Invoices.GetOrCreate(ctx, customer(), order.ID.String())
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = f.Invoices.GetOrCreate(ctx, caller, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = f.Invoices.GetOrCreate(ctx, caller, "")
	assert.ErrorIs(t, err, ErrValidation)

	doc, err := f.Invoices.Document(ctx, caller, order.ID.String())
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Betta Fish")
	assert.Contains(t, string(doc), "window.print()")
}
