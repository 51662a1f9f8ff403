package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/store"
	"sagepos/backend/internal/store/memory"
)

func smallStore() *memory.Store {
	return memory.New(memory.Seed{
		Products: []domain.Product{
			{ID: "p1", Name: "Widget", Price: decimal.RequireFromString("2.00"), Stock: 5},
			{ID: "p2", Name: "Gadget", Price: decimal.RequireFromString("3.00"), Stock: 1},
		},
		RentalProducts: []domain.RentalProduct{
			{ID: "r1", Name: "Movie", RentalPrice: decimal.RequireFromString("30"), Stock: 2},
		},
		Coupons: []domain.Coupon{
			{ID: "c1", Code: "SAVE20", DiscountPercentage: decimal.NewFromInt(20), IsActive: true},
			{ID: "c2", Code: "OLD", DiscountPercentage: decimal.NewFromInt(5), IsActive: false},
		},
	})
}

func TestDecrementBeyondStockFailsAndKeepsStock(t *testing.T) {
	ctx := context.Background()
	s := smallStore()

	err := s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.DecrementProductStock(ctx, "p1", 6)
	})

	var stockErr *store.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Available)

	p, err := s.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
}

func TestWithinTxRollsBackEveryWriteOnFailure(t *testing.T) {
	ctx := context.Background()
	s := smallStore()

	err := s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertSale(ctx, domain.SalesTransaction{ID: "sale-1", CreatedAt: time.Now()}); err != nil {
			return err
		}
		if err := tx.DecrementProductStock(ctx, "p1", 2); err != nil {
			return err
		}
		if _, err := tx.GetOrCreateCustomer(ctx, "5551234567"); err != nil {
			return err
		}
		return tx.DecrementProductStock(ctx, "p2", 2)
	})
	require.ErrorIs(t, err, store.ErrInsufficientStock)

	p1, _ := s.GetProduct(ctx, "p1")
	assert.Equal(t, 5, p1.Stock)
	sales, _ := s.ListSales(ctx, 10)
	assert.Empty(t, sales)
	_, err = s.GetCustomerByPhone(ctx, "5551234567")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestConcurrentSaleCommitsNeverOversell(t *testing.T) {
	ctx := context.Background()
	s := smallStore()

	const workers = 10
	var (
		wg        sync.WaitGroup
		committed atomic.Int32
		oversold  atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
				if err := tx.InsertSale(ctx, domain.SalesTransaction{ID: fmt.Sprintf("sale-%d", i), CreatedAt: time.Now()}); err != nil {
					return err
				}
				return tx.DecrementProductStock(ctx, "p1", 2)
			})
			var stockErr *store.InsufficientStockError
			switch {
			case err == nil:
				committed.Add(1)
			case errors.As(err, &stockErr):
				oversold.Add(1)
			default:
				t.Errorf("unexpected commit error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(2), committed.Load())
	assert.Equal(t, int32(workers-2), oversold.Load())

	p, err := s.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stock)

	sales, err := s.ListSales(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, sales, 2)
}

func TestWithinTxCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := smallStore()

	err := s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertSale(ctx, domain.SalesTransaction{ID: "sale-1", Total: decimal.NewFromInt(4), CreatedAt: time.Now()}); err != nil {
			return err
		}
		if err := tx.InsertSaleItem(ctx, "sale-1", domain.SalesTransactionItem{ID: "i1", ProductID: "p1", Quantity: 2}); err != nil {
			return err
		}
		return tx.DecrementProductStock(ctx, "p1", 2)
	})
	require.NoError(t, err)

	p1, _ := s.GetProduct(ctx, "p1")
	assert.Equal(t, 3, p1.Stock)
	sales, _ := s.ListSales(ctx, 10)
	require.Len(t, sales, 1)
	assert.Len(t, sales[0].Items, 1)

	count, total, err := s.SalesSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.True(t, total.Equal(decimal.NewFromInt(4)))
}

func TestSetRentalStatusGuardsCurrentStatus(t *testing.T) {
	ctx := context.Background()
	s := smallStore()

	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.InsertRental(ctx, domain.RentalTransaction{ID: "rent-1", Status: domain.RentalStatusActive})
	}))

	setReturned := func(ctx context.Context, tx store.Tx) error {
		return tx.SetRentalStatus(ctx, "rent-1", domain.RentalStatusReturned, domain.RentalStatusActive, domain.RentalStatusOverdue)
	}
	require.NoError(t, s.WithinTx(ctx, setReturned))

	err := s.WithinTx(ctx, setReturned)
	assert.ErrorIs(t, err, store.ErrValidation)

	rental, err := s.GetRental(ctx, "rent-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusReturned, rental.Status)
}

func TestGetOrCreateCustomerIsStableByPhone(t *testing.T) {
	ctx := context.Background()
	s := smallStore()

	var first, second *domain.Customer
	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		first, err = tx.GetOrCreateCustomer(ctx, "5551234567")
		return err
	}))
	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		second, err = tx.GetOrCreateCustomer(ctx, "5551234567")
		return err
	}))
	assert.Equal(t, first.ID, second.ID)
}

func TestCouponsAndEmployees(t *testing.T) {
	ctx := context.Background()
	s := smallStore()

	coupon, err := s.GetActiveCoupon(ctx, "save20")
	require.NoError(t, err)
	assert.True(t, coupon.DiscountPercentage.Equal(decimal.NewFromInt(20)))
	_, err = s.GetActiveCoupon(ctx, "OLD")
	assert.ErrorIs(t, err, store.ErrNotFound)

	active, err := s.ListActiveCoupons(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	created, err := s.CreateEmployee(ctx, domain.Employee{Username: "jane_doe", Name: "Jane", Position: domain.PositionCashier})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = s.CreateEmployee(ctx, domain.Employee{Username: "JANE_DOE"})
	assert.ErrorIs(t, err, store.ErrValidation)

	byID, err := s.GetEmployeeByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane_doe", byID.Username)

	require.NoError(t, s.DeleteEmployee(ctx, "jane_doe"))
	assert.True(t, errors.Is(s.DeleteEmployee(ctx, "jane_doe"), store.ErrNotFound))
}

func TestSeededCatalog(t *testing.T) {
	t.Setenv("SEED_ADMIN_PASSWORD", "Admin!2345")
	t.Setenv("SEED_CASHIER_PASSWORD", "Cashier!2345")
	ctx := context.Background()
	s := memory.NewSeeded()

	potato, err := s.GetProduct(ctx, "1000")
	require.NoError(t, err)
	assert.Equal(t, "Potato", potato.Name)
	assert.Equal(t, 249, potato.Stock)

	movie, err := s.GetRentalProduct(ctx, "1000")
	require.NoError(t, err)
	assert.True(t, movie.RentalPrice.Equal(decimal.NewFromInt(30)))

	admin, err := s.GetEmployeeByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.PositionAdmin, admin.Position)
	assert.NotEqual(t, "Admin!2345", admin.PasswordHash)
}
