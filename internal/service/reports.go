package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/lookup"
	"sagepos/backend/internal/store"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 200
	transactionTypeAll      = "all"
)

// ListTransactions returns the most recent sales, rentals and returns,
// newest first, with totals over the rows returned.
func (s *Service) ListTransactions(ctx context.Context, txType string, limit int) (TransactionsView, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return TransactionsView{}, err
	}
	txType = strings.ToLower(strings.TrimSpace(txType))
	if txType == "" {
		txType = transactionTypeAll
	}
	switch txType {
	case transactionTypeAll, domain.TransactionTypeSale, domain.TransactionTypeRental, domain.TransactionTypeReturn:
	default:
		return TransactionsView{}, store.Invalid("type", "must be one of: all sale rental return")
	}
	limit = clampRequestLimit(limit, defaultTransactionLimit, maxTransactionLimit)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	view := TransactionsView{
		Type:    txType,
		Sales:   []domain.SalesTransaction{},
		Rentals: []domain.RentalTransaction{},
		Returns: []domain.ReturnTransaction{},
		Totals: TransactionTotals{
			SalesTotal:   decimal.Zero,
			RentalsTotal: decimal.Zero,
			LateFees:     decimal.Zero,
			Refunds:      decimal.Zero,
		},
	}
	wants := func(t string) bool { return txType == transactionTypeAll || txType == t }

	if wants(domain.TransactionTypeSale) {
		sales, err := lookup.Retry(ctx, func() ([]domain.SalesTransaction, error) {
			return s.repo.ListSales(ctx, limit)
		})
		if err != nil {
			return TransactionsView{}, err
		}
		view.Sales = sales
		for _, sale := range sales {
			view.Totals.SalesTotal = view.Totals.SalesTotal.Add(sale.Total)
		}
		view.Totals.SaleCount = len(sales)
	}

	if wants(domain.TransactionTypeRental) {
		rentals, err := lookup.Retry(ctx, func() ([]domain.RentalTransaction, error) {
			return s.repo.ListRentals(ctx, limit)
		})
		if err != nil {
			return TransactionsView{}, err
		}
		today := s.now()
		for i := range rentals {
			rentals[i].Status = presentedStatus(rentals[i], today)
			view.Totals.RentalsTotal = view.Totals.RentalsTotal.Add(rentals[i].Total)
		}
		view.Rentals = rentals
		view.Totals.RentalCount = len(rentals)
	}

	if wants(domain.TransactionTypeReturn) {
		returns, err := lookup.Retry(ctx, func() ([]domain.ReturnTransaction, error) {
			return s.repo.ListReturns(ctx, limit)
		})
		if err != nil {
			return TransactionsView{}, err
		}
		view.Returns = returns
		for _, ret := range returns {
			view.Totals.LateFees = view.Totals.LateFees.Add(ret.LateFees)
			view.Totals.Refunds = view.Totals.Refunds.Add(ret.RefundAmount)
		}
		view.Totals.ReturnCount = len(returns)
	}

	return view, nil
}

func (s *Service) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return lookup.Retry(ctx, func() ([]domain.Coupon, error) {
		return s.repo.ListActiveCoupons(ctx)
	})
}
