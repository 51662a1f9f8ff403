package pricing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/pricing"
	"sagepos/backend/internal/store"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestCouponRate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code  string
		rate  string
		valid bool
	}{
		{code: "c007", rate: "0.10", valid: true},
		{code: "C10", rate: "0.10", valid: true},
		{code: "  cSUMMER ", rate: "0.10", valid: true},
		{code: "X1", rate: "0", valid: false},
		{code: "", rate: "0", valid: false},
		{code: "   ", rate: "0", valid: false},
	}

	for _, tc := range cases {
		rate, valid := pricing.CouponRate(tc.code)
		assert.Equal(t, tc.valid, valid, "code %q", tc.code)
		assert.True(t, rate.Equal(dec(t, tc.rate)), "code %q rate %s", tc.code, rate)
	}
}

func TestSaleWithCoupon(t *testing.T) {
	t.Parallel()

	lines := []domain.CartLine{{ItemID: "1000", Name: "Potato", UnitPrice: dec(t, "1.00"), Quantity: 3}}
	rate, ok := pricing.CouponRate("C10")
	require.True(t, ok)

	summary := pricing.Sale(lines, rate, pricing.TaxRate)

	assert.True(t, summary.Subtotal.Equal(dec(t, "3.00")), "subtotal %s", summary.Subtotal)
	assert.True(t, summary.Discount.Equal(dec(t, "0.30")), "discount %s", summary.Discount)
	assert.True(t, summary.Tax.Equal(dec(t, "0.162")), "tax %s", summary.Tax)
	assert.True(t, summary.Total.Equal(dec(t, "2.862")), "total %s", summary.Total)
}

func TestSaleTotalsAreConsistent(t *testing.T) {
	t.Parallel()

	carts := [][]domain.CartLine{
		{},
		{{ItemID: "1", UnitPrice: dec(t, "0.01"), Quantity: 1}},
		{
			{ItemID: "1", UnitPrice: dec(t, "19.99"), Quantity: 7},
			{ItemID: "2", UnitPrice: dec(t, "3.33"), Quantity: 3},
			{ItemID: "3", UnitPrice: dec(t, "0.10"), Quantity: 11},
		},
	}
	rates := []decimal.Decimal{decimal.Zero, pricing.CouponDiscountRate, dec(t, "0.25")}

	for _, lines := range carts {
		for _, rate := range rates {
			s := pricing.Sale(lines, rate, pricing.TaxRate)
			assert.True(t, s.Total.Equal(s.Subtotal.Sub(s.Discount).Add(s.Tax)))
			assert.True(t, s.Tax.Equal(s.Subtotal.Sub(s.Discount).Mul(pricing.TaxRate)))
			assert.False(t, s.Total.IsNegative())
		}
	}
}

func TestRentalTotal(t *testing.T) {
	t.Parallel()

	lines := []domain.CartLine{
		{ItemID: "1000", UnitPrice: dec(t, "30.00"), Quantity: 2},
		{ItemID: "1001", UnitPrice: dec(t, "12.50"), Quantity: 1},
	}
	assert.True(t, pricing.Rental(lines).Equal(dec(t, "72.50")))
	assert.True(t, pricing.Rental(nil).IsZero())
}

func TestValidateReturnDate(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)

	require.NoError(t, pricing.ValidateReturnDate(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), today))
	require.NoError(t, pricing.ValidateReturnDate(today.AddDate(0, 0, 3), today))

	err := pricing.ValidateReturnDate(today.AddDate(0, 0, -1), today)
	var vErr *store.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "return_date", vErr.Field)

	err = pricing.ValidateReturnDate(time.Time{}, today)
	assert.True(t, errors.Is(err, store.ErrValidation))
}

func TestDaysLate(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, pricing.DaysLate(today, today))
	assert.Equal(t, 3, pricing.DaysLate(today.AddDate(0, 0, -3), today))
	assert.Equal(t, 0, pricing.DaysLate(today.AddDate(0, 0, 4), today))
	// A due date late in the day still counts whole calendar days.
	assert.Equal(t, 1, pricing.DaysLate(time.Date(2024, 5, 9, 23, 59, 0, 0, time.UTC), today))
}

func TestLateFee(t *testing.T) {
	t.Parallel()

	assert.True(t, pricing.LateFee(dec(t, "30"), 3).Equal(dec(t, "9.00")))
	assert.True(t, pricing.LateFee(dec(t, "30"), 0).IsZero())
	assert.True(t, pricing.LateFee(dec(t, "30"), -2).IsZero())
}

func TestReturnQuoteLateFeeMode(t *testing.T) {
	t.Parallel()

	items := []pricing.ReturnLine{
		{RentalID: "r1", RentalItemID: "ri1", ProductID: "1000", Quantity: 1, RentalPrice: dec(t, "30"), DaysLate: 3},
		{RentalID: "r2", RentalItemID: "ri2", ProductID: "1001", Quantity: 1, RentalPrice: dec(t, "30"), DaysLate: 3},
	}

	summary := pricing.ReturnQuote(items, domain.ReturnModeLateFee)

	require.Len(t, summary.Lines, 2)
	assert.True(t, summary.Lines[0].LateFee.Equal(dec(t, "9.00")))
	assert.True(t, summary.LateFees.Equal(dec(t, "18.00")))
	assert.True(t, summary.Refund.IsZero())
	assert.True(t, summary.TotalDue.Equal(dec(t, "18.00")))
}

func TestReturnQuoteUnsatisfiedMode(t *testing.T) {
	t.Parallel()

	items := []pricing.ReturnLine{
		{RentalID: "r1", RentalItemID: "ri1", Quantity: 2, RentalPrice: dec(t, "30"), DaysLate: 5},
		{RentalID: "r1", RentalItemID: "ri2", Quantity: 1, RentalPrice: dec(t, "12.50")},
	}

	summary := pricing.ReturnQuote(items, domain.ReturnModeUnsatisfied)

	assert.True(t, summary.LateFees.IsZero())
	for _, line := range summary.Lines {
		assert.True(t, line.LateFee.IsZero())
	}
	assert.True(t, summary.Refund.Equal(dec(t, "42.50")))
	assert.True(t, summary.TotalDue.Equal(dec(t, "-42.50")))
}

func TestChange(t *testing.T) {
	t.Parallel()

	change, err := pricing.Change(dec(t, "2.862"), dec(t, "5"))
	require.NoError(t, err)
	assert.True(t, change.Equal(dec(t, "2.138")))

	change, err = pricing.Change(dec(t, "10"), dec(t, "10"))
	require.NoError(t, err)
	assert.True(t, change.IsZero())

	_, err = pricing.Change(dec(t, "10"), dec(t, "9.99"))
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestCardCharge(t *testing.T) {
	t.Parallel()

	assert.True(t, pricing.CardCharge(dec(t, "10"), dec(t, "20")).Equal(dec(t, "30")))
	assert.True(t, pricing.CardCharge(dec(t, "10"), decimal.Zero).Equal(dec(t, "10")))
}
