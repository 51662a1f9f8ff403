package service

import (
	"github.com/shopspring/decimal"

	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/pricing"
	"sagepos/backend/internal/receipt"
)

type CustomerCheck struct {
	Phone         string           `json:"phone"`
	Exists        bool             `json:"exists"`
	Customer      *domain.Customer `json:"customer,omitempty"`
	ActiveRentals int              `json:"active_rentals"`
}

// AmountsDisplay holds amounts rounded to cents for presentation.
type AmountsDisplay struct {
	Subtotal string `json:"subtotal_display,omitempty"`
	Discount string `json:"discount_display,omitempty"`
	Tax      string `json:"tax_display,omitempty"`
	LateFees string `json:"late_fees_display,omitempty"`
	Total    string `json:"total_display"`
}

type SaleQuote struct {
	Lines   []domain.CartLine   `json:"lines"`
	Coupon  domain.CouponCheck  `json:"coupon"`
	Summary pricing.SaleSummary `json:"summary"`
	Display AmountsDisplay      `json:"display"`
}

type SaleResult struct {
	Sale       *domain.SalesTransaction `json:"sale"`
	AmountPaid decimal.Decimal          `json:"amount_paid"`
	Receipt    receipt.Receipt          `json:"receipt"`
}

type RentalQuote struct {
	CustomerPhone string            `json:"customer_phone"`
	ReturnDate    string            `json:"return_date"`
	Lines         []domain.CartLine `json:"lines"`
	Total         decimal.Decimal   `json:"total"`
	Display       AmountsDisplay    `json:"display"`
}

type RentalResult struct {
	Rental     *domain.RentalTransaction `json:"rental"`
	Change     decimal.Decimal           `json:"change"`
	AmountPaid decimal.Decimal           `json:"amount_paid"`
	Receipt    receipt.Receipt           `json:"receipt"`
}

// ReturnableRental is an open rental with its lines priced as if returned
// today in late fee mode.
type ReturnableRental struct {
	Rental   domain.RentalTransaction `json:"rental"`
	DaysLate int                      `json:"days_late"`
	Lines    []pricing.ReturnLine     `json:"lines"`
}

type ReturnQuote struct {
	CustomerPhone string                `json:"customer_phone"`
	Summary       pricing.ReturnSummary `json:"summary"`
	Display       AmountsDisplay        `json:"display"`
}

type ReturnResult struct {
	Returns []domain.ReturnTransaction `json:"returns"`
	Summary pricing.ReturnSummary      `json:"summary"`
	Receipt receipt.Receipt            `json:"receipt"`
}

type TransactionTotals struct {
	SaleCount    int             `json:"sale_count"`
	SalesTotal   decimal.Decimal `json:"sales_total"`
	RentalCount  int             `json:"rental_count"`
	RentalsTotal decimal.Decimal `json:"rentals_total"`
	ReturnCount  int             `json:"return_count"`
	LateFees     decimal.Decimal `json:"late_fees"`
	Refunds      decimal.Decimal `json:"refunds"`
}

type TransactionsView struct {
	Type    string                     `json:"type"`
	Sales   []domain.SalesTransaction  `json:"sales"`
	Rentals []domain.RentalTransaction `json:"rentals"`
	Returns []domain.ReturnTransaction `json:"returns"`
	Totals  TransactionTotals          `json:"totals"`
}
