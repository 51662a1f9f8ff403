// Package sequencer commits sales, rentals and returns. Each commit is one
// unit of work: either every row and stock change lands or none does.
package sequencer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/pricing"
	"sagepos/backend/internal/store"
	"sagepos/backend/internal/xid"
)

type Payment struct {
	Method       string
	CashReceived decimal.Decimal
	Change       decimal.Decimal
	Cashback     decimal.Decimal
	CardLast4    string
}

type SaleOrder struct {
	EmployeeID     string
	Lines          []domain.CartLine
	Summary        pricing.SaleSummary
	Payment        Payment
	CouponCode     string
	IdempotencyKey string
}

type RentalOrder struct {
	EmployeeID     string
	CustomerPhone  string
	Lines          []domain.CartLine
	Total          decimal.Decimal
	ReturnDate     time.Time
	PaymentMethod  string
	IdempotencyKey string
}

type ReturnOrder struct {
	EmployeeID string
	CustomerID string
	Mode       string
	Lines      []pricing.ReturnLine
}

type Sequencer struct {
	repo store.Repository
	now  func() time.Time
}

func New(repo store.Repository) *Sequencer {
	return &Sequencer{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// CommitSale inserts the sale, its items and the stock decrements. With an
// idempotency key already on record the earlier sale is returned unchanged.
func (s *Sequencer) CommitSale(ctx context.Context, order SaleOrder) (*domain.SalesTransaction, error) {
	if len(order.Lines) == 0 {
		return nil, store.Invalid("items", "cart is empty")
	}
	if key := strings.TrimSpace(order.IdempotencyKey); key != "" {
		existing, err := s.repo.FindSaleByIdempotency(ctx, key)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	sale := domain.SalesTransaction{
		ID:             xid.New("sale"),
		EmployeeID:     order.EmployeeID,
		Subtotal:       order.Summary.Subtotal,
		Discount:       order.Summary.Discount,
		Tax:            order.Summary.Tax,
		Total:          order.Summary.Total,
		PaymentMethod:  order.Payment.Method,
		CashReceived:   order.Payment.CashReceived,
		Change:         order.Payment.Change,
		Cashback:       order.Payment.Cashback,
		CardLast4:      order.Payment.CardLast4,
		CouponCode:     strings.ToUpper(strings.TrimSpace(order.CouponCode)),
		IdempotencyKey: strings.TrimSpace(order.IdempotencyKey),
		CreatedAt:      s.now(),
	}

	err := s.repo.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertSale(ctx, sale); err != nil {
			return err
		}
		items := make([]domain.SalesTransactionItem, 0, len(order.Lines))
		for _, line := range order.Lines {
			item := domain.SalesTransactionItem{
				ID:        xid.New("sitem"),
				ProductID: line.ItemID,
				Name:      line.Name,
				Quantity:  line.Quantity,
				Price:     line.UnitPrice,
				Subtotal:  line.Subtotal(),
			}
			if err := tx.InsertSaleItem(ctx, sale.ID, item); err != nil {
				return err
			}
			if err := tx.DecrementProductStock(ctx, line.ItemID, line.Quantity); err != nil {
				return err
			}
			items = append(items, item)
		}
		sale.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// CommitRental creates the customer if needed, then the active rental with its
// items and stock decrements.
func (s *Sequencer) CommitRental(ctx context.Context, order RentalOrder) (*domain.RentalTransaction, error) {
	if len(order.Lines) == 0 {
		return nil, store.Invalid("items", "cart is empty")
	}
	if err := pricing.ValidateReturnDate(order.ReturnDate, s.now()); err != nil {
		return nil, err
	}
	if key := strings.TrimSpace(order.IdempotencyKey); key != "" {
		existing, err := s.repo.FindRentalByIdempotency(ctx, key)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	rental := domain.RentalTransaction{
		ID:             xid.New("rent"),
		EmployeeID:     order.EmployeeID,
		Total:          order.Total,
		ReturnDate:     order.ReturnDate,
		Status:         domain.RentalStatusActive,
		PaymentMethod:  order.PaymentMethod,
		IdempotencyKey: strings.TrimSpace(order.IdempotencyKey),
		CreatedAt:      s.now(),
	}

	err := s.repo.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		customer, err := tx.GetOrCreateCustomer(ctx, order.CustomerPhone)
		if err != nil {
			return err
		}
		rental.CustomerID = customer.ID

		if err := tx.InsertRental(ctx, rental); err != nil {
			return err
		}
		items := make([]domain.RentalTransactionItem, 0, len(order.Lines))
		for _, line := range order.Lines {
			item := domain.RentalTransactionItem{
				ID:          xid.New("ritem"),
				RentalID:    rental.ID,
				ProductID:   line.ItemID,
				Name:        line.Name,
				Quantity:    line.Quantity,
				RentalPrice: line.UnitPrice,
				Subtotal:    line.Subtotal(),
			}
			if err := tx.InsertRentalItem(ctx, item); err != nil {
				return err
			}
			if err := tx.DecrementRentalStock(ctx, line.ItemID, line.Quantity); err != nil {
				return err
			}
			items = append(items, item)
		}
		rental.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

// CommitReturn writes one return row per originating rental, in the order the
// rentals first appear among the selected lines, and closes each rental.
func (s *Sequencer) CommitReturn(ctx context.Context, order ReturnOrder) ([]domain.ReturnTransaction, error) {
	if len(order.Lines) == 0 {
		return nil, store.Invalid("items", "no items selected for return")
	}
	if order.Mode != domain.ReturnModeLateFee && order.Mode != domain.ReturnModeUnsatisfied {
		return nil, store.Invalid("mode", "unknown return mode")
	}

	groups := groupByRental(order.Lines)
	now := s.now()
	returns := make([]domain.ReturnTransaction, 0, len(groups))

	err := s.repo.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		returns = returns[:0]
		for _, group := range groups {
			quote := pricing.ReturnQuote(group.lines, order.Mode)
			ret := domain.ReturnTransaction{
				ID:           xid.New("ret"),
				RentalID:     group.rentalID,
				CustomerID:   order.CustomerID,
				EmployeeID:   order.EmployeeID,
				Mode:         order.Mode,
				LateFees:     quote.LateFees,
				RefundAmount: quote.Refund,
				TotalDue:     quote.TotalDue,
				CreatedAt:    now,
			}
			if err := tx.InsertReturn(ctx, ret); err != nil {
				return err
			}

			for _, line := range quote.Lines {
				item := domain.ReturnTransactionItem{
					ID:           xid.New("retitem"),
					ReturnID:     ret.ID,
					RentalItemID: line.RentalItemID,
					ProductID:    line.ProductID,
					Quantity:     line.Quantity,
					DaysLate:     line.DaysLate,
					LateFee:      line.LateFee,
				}
				if err := tx.InsertReturnItem(ctx, item); err != nil {
					return err
				}
				if err := tx.IncrementRentalStock(ctx, line.ProductID, line.Quantity); err != nil {
					return err
				}
				ret.Items = append(ret.Items, item)
			}

			if err := tx.SetRentalStatus(ctx, group.rentalID, domain.RentalStatusReturned, domain.RentalStatusActive, domain.RentalStatusOverdue); err != nil {
				return err
			}
			returns = append(returns, ret)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return returns, nil
}

type rentalGroup struct {
	rentalID string
	lines    []pricing.ReturnLine
}

func groupByRental(lines []pricing.ReturnLine) []rentalGroup {
	groups := make([]rentalGroup, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		pos, ok := index[line.RentalID]
		if !ok {
			pos = len(groups)
			index[line.RentalID] = pos
			groups = append(groups, rentalGroup{rentalID: line.RentalID})
		}
		groups[pos].lines = append(groups[pos].lines, line)
	}
	return groups
}
