// Package pricing holds the arithmetic for sales, rentals and returns. Every
// function is pure and works on full-precision decimals; rounding happens only
// when a value is presented.
package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/store"
)

var (
	TaxRate            = decimal.RequireFromString("0.06")
	CouponDiscountRate = decimal.RequireFromString("0.10")
	LateFeeRate        = decimal.RequireFromString("0.10")
)

type SaleSummary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ReturnLine is one selected rental line being brought back.
type ReturnLine struct {
	RentalID     string          `json:"rental_id"`
	RentalItemID string          `json:"rental_item_id"`
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	RentalPrice  decimal.Decimal `json:"rental_price"`
	DaysLate     int             `json:"days_late"`
	LateFee      decimal.Decimal `json:"late_fee"`
}

type ReturnSummary struct {
	Mode     string          `json:"mode"`
	Lines    []ReturnLine    `json:"lines"`
	LateFees decimal.Decimal `json:"late_fees"`
	Refund   decimal.Decimal `json:"refund"`
	TotalDue decimal.Decimal `json:"total_due"`
}

// CouponRate applies the prefix rule: any code starting with "C" (any case)
// earns the standard discount.
func CouponRate(code string) (decimal.Decimal, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" || !strings.HasPrefix(normalized, "C") {
		return decimal.Zero, false
	}
	return CouponDiscountRate, true
}

func Sale(lines []domain.CartLine, discountRate decimal.Decimal, taxRate decimal.Decimal) SaleSummary {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Subtotal())
	}
	discount := subtotal.Mul(discountRate)
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(taxRate)

	return SaleSummary{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    taxable.Add(tax),
	}
}

func Rental(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func ValidateReturnDate(returnDate time.Time, today time.Time) error {
	if returnDate.IsZero() {
		return store.Invalid("return_date", "return date is required")
	}
	if dateOf(returnDate).Before(dateOf(today)) {
		return store.Invalid("return_date", "return date cannot be in the past")
	}
	return nil
}

// DaysLate counts whole calendar days from due to today, never below zero.
func DaysLate(due time.Time, today time.Time) int {
	days := int(dateOf(today).Sub(dateOf(due)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func LateFee(rentalPrice decimal.Decimal, daysLate int) decimal.Decimal {
	if daysLate <= 0 {
		return decimal.Zero
	}
	return rentalPrice.Mul(LateFeeRate).Mul(decimal.NewFromInt(int64(daysLate)))
}

// ReturnQuote prices the selected lines. In late fee mode each line carries
// its own fee; in unsatisfied mode fees are zero and the rental prices are
// refunded, which shows up as a negative total due.
func ReturnQuote(items []ReturnLine, mode string) ReturnSummary {
	summary := ReturnSummary{
		Mode:     mode,
		Lines:    make([]ReturnLine, 0, len(items)),
		LateFees: decimal.Zero,
		Refund:   decimal.Zero,
		TotalDue: decimal.Zero,
	}

	for _, item := range items {
		line := item
		switch mode {
		case domain.ReturnModeUnsatisfied:
			line.LateFee = decimal.Zero
			summary.Refund = summary.Refund.Add(item.RentalPrice)
		default:
			line.LateFee = LateFee(item.RentalPrice, item.DaysLate)
			summary.LateFees = summary.LateFees.Add(line.LateFee)
		}
		summary.Lines = append(summary.Lines, line)
	}

	if mode == domain.ReturnModeUnsatisfied {
		summary.TotalDue = summary.Refund.Neg()
	} else {
		summary.TotalDue = summary.LateFees
	}
	return summary
}

func Change(total decimal.Decimal, cashReceived decimal.Decimal) (decimal.Decimal, error) {
	if cashReceived.LessThan(total) {
		return decimal.Zero, store.Invalid("cash_received", "cash received is less than the total")
	}
	return cashReceived.Sub(total), nil
}

func CardCharge(total decimal.Decimal, cashback decimal.Decimal) decimal.Decimal {
	if cashback.IsNegative() {
		return total
	}
	return total.Add(cashback)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
