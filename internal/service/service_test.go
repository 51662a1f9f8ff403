package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/store"
	"sagepos/backend/internal/store/memory"
)

const testPassword = "Secret#123"

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()

	hash, err := hashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	repo := memory.New(memory.Seed{
		Products: []domain.Product{
			{ID: "1000", Name: "Potato", Category: "grocery", Price: dec("1.00"), Stock: 5},
			{ID: "1001", Name: "Plastic Cup", Category: "grocery", Price: dec("0.50"), Stock: 2},
		},
		RentalProducts: []domain.RentalProduct{
			{ID: "1000", Name: "Theory Of Everything", Category: "movie", RentalPrice: dec("30.00"), Stock: 3},
			{ID: "1001", Name: "Adventures Of Tom Sawyer", Category: "book", RentalPrice: dec("40.50"), Stock: 2},
		},
		Employees: []domain.Employee{
			{ID: "emp-admin", Username: "admin", Name: "Store Admin", PasswordHash: hash, Position: domain.PositionAdmin, CreatedAt: now},
			{ID: "emp-cashier", Username: "cashier", Name: "Store Cashier", PasswordHash: hash, Position: domain.PositionCashier, CreatedAt: now},
		},
		Coupons: []domain.Coupon{
			{ID: "coupon-1", Code: "SAVE20", DiscountPercentage: dec("20"), IsActive: true, CreatedAt: now},
		},
	})
	return New(repo, nil, nil, Options{}), repo
}

func adminContext() context.Context {
	return WithSession(context.Background(), domain.Session{
		ID:         "sess-admin",
		EmployeeID: "emp-admin",
		Username:   "admin",
		Name:       "Store Admin",
		Position:   domain.PositionAdmin,
	})
}

func cashierContext() context.Context {
	return WithSession(context.Background(), domain.Session{
		ID:         "sess-cashier",
		EmployeeID: "emp-cashier",
		Username:   "cashier",
		Name:       "Store Cashier",
		Position:   domain.PositionCashier,
	})
}

func cashSale(cash string, items ...domain.CartItemRef) domain.SaleRequest {
	return domain.SaleRequest{
		Items:   items,
		Payment: domain.PaymentRequest{Method: domain.PaymentCash, CashReceived: dec(cash)},
	}
}

func TestAuthenticate(t *testing.T) {
	svc, repo := newTestService(t)

	employee, err := svc.Authenticate(context.Background(), " Cashier ", testPassword)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if employee.ID != "emp-cashier" {
		t.Fatalf("expected emp-cashier, got %s", employee.ID)
	}

	if _, err := svc.Authenticate(context.Background(), "cashier", "wrong"); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected authentication error for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody", testPassword); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected authentication error for unknown user, got %v", err)
	}

	logs, err := repo.ListEmployeeLogs(context.Background(), "emp-cashier", 10)
	if err != nil {
		t.Fatalf("list logs failed: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != domain.LogActionLogin {
		t.Fatalf("expected a single login log entry, got %+v", logs)
	}
}

func TestQuoteSaleWithPrefixCoupon(t *testing.T) {
	svc, _ := newTestService(t)

	quote, err := svc.QuoteSale(context.Background(), domain.SaleQuoteRequest{
		Items:      []domain.CartItemRef{{ItemID: "1000", Quantity: 2}, {ItemID: "1000", Quantity: 1}},
		CouponCode: "c10",
	})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if len(quote.Lines) != 1 || quote.Lines[0].Quantity != 3 {
		t.Fatalf("expected one merged line of 3, got %+v", quote.Lines)
	}
	if !quote.Coupon.Valid || !quote.Coupon.DiscountRate.Equal(dec("0.10")) {
		t.Fatalf("expected valid 10%% coupon, got %+v", quote.Coupon)
	}
	if !quote.Summary.Total.Equal(dec("2.862")) {
		t.Fatalf("expected total 2.862, got %s", quote.Summary.Total)
	}
	if quote.Display.Total != "$2.86" {
		t.Fatalf("expected display total $2.86, got %s", quote.Display.Total)
	}
}

func TestQuoteSalePrefersStoredCoupon(t *testing.T) {
	svc, _ := newTestService(t)

	quote, err := svc.QuoteSale(context.Background(), domain.SaleQuoteRequest{
		Items:      []domain.CartItemRef{{ItemID: "1000", Quantity: 3}},
		CouponCode: "save20",
	})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if !quote.Summary.Discount.Equal(dec("0.60")) {
		t.Fatalf("expected discount 0.60, got %s", quote.Summary.Discount)
	}
}

func TestQuoteSaleWithZeroTaxRate(t *testing.T) {
	_, repo := newTestService(t)
	zero := decimal.Zero
	svc := New(repo, nil, nil, Options{TaxRate: &zero})

	quote, err := svc.QuoteSale(context.Background(), domain.SaleQuoteRequest{
		Items: []domain.CartItemRef{{ItemID: "1000", Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if !quote.Summary.Tax.IsZero() || !quote.Summary.Total.Equal(dec("3")) {
		t.Fatalf("expected untaxed total 3, got tax %s total %s", quote.Summary.Tax, quote.Summary.Total)
	}
}

func TestQuoteSaleRejectsUnknownCoupon(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.QuoteSale(context.Background(), domain.SaleQuoteRequest{
		Items:      []domain.CartItemRef{{ItemID: "1000", Quantity: 1}},
		CouponCode: "X1",
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSellRequiresSession(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Sell(context.Background(), cashSale("10", domain.CartItemRef{ItemID: "1000", Quantity: 1}))
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestSellCashComputesChangeAndClearsDraft(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := cashierContext()

	if _, err := svc.SaveDraft(ctx, domain.DraftSaveRequest{
		Type: domain.DraftTypeSale,
		Cart: []domain.CartItemRef{{ItemID: "1000", Quantity: 3}},
	}); err != nil {
		t.Fatalf("save draft failed: %v", err)
	}

	req := cashSale("5.00", domain.CartItemRef{ItemID: "1000", Quantity: 3})
	req.CouponCode = "C10"
	result, err := svc.Sell(ctx, req)
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if !result.Sale.Change.Equal(dec("2.14")) {
		t.Fatalf("expected change 2.14, got %s", result.Sale.Change)
	}
	if result.Sale.CouponCode != "C10" {
		t.Fatalf("expected coupon C10 on record, got %q", result.Sale.CouponCode)
	}
	if result.Receipt.TransactionID != result.Sale.ID || result.Receipt.EscposBase64 == "" {
		t.Fatalf("expected receipt for sale %s, got %+v", result.Sale.ID, result.Receipt)
	}

	product, err := repo.GetProduct(context.Background(), "1000")
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if product.Stock != 2 {
		t.Fatalf("expected stock 2 after sale, got %d", product.Stock)
	}

	if _, err := svc.LoadDraft(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected sale draft to be cleared, got %v", err)
	}
}

func TestSellCardKeepsLastFourDigits(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Sell(cashierContext(), domain.SaleRequest{
		Items: []domain.CartItemRef{{ItemID: "1000", Quantity: 3}},
		Payment: domain.PaymentRequest{
			Method:     domain.PaymentCard,
			CardNumber: "4111 1111 1111 1234",
			Cashback:   dec("10"),
		},
	})
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if result.Sale.CardLast4 != "1234" {
		t.Fatalf("expected last4 1234, got %q", result.Sale.CardLast4)
	}
	if !result.AmountPaid.Equal(dec("13.18")) {
		t.Fatalf("expected card charge 13.18, got %s", result.AmountPaid)
	}
}

func TestSellInsufficientCashLeavesStock(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Sell(cashierContext(), cashSale("1.00", domain.CartItemRef{ItemID: "1000", Quantity: 3}))
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	product, _ := repo.GetProduct(context.Background(), "1000")
	if product.Stock != 5 {
		t.Fatalf("expected stock unchanged at 5, got %d", product.Stock)
	}
}

func TestSellRejectsQuantityAboveStock(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Sell(cashierContext(), cashSale("100",
		domain.CartItemRef{ItemID: "1000", Quantity: 1},
		domain.CartItemRef{ItemID: "1001", Quantity: 3},
	))
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	product, _ := repo.GetProduct(context.Background(), "1000")
	if product.Stock != 5 {
		t.Fatalf("expected stock unchanged at 5, got %d", product.Stock)
	}
}

func TestSellIdempotencyReplay(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := cashierContext()

	req := cashSale("10", domain.CartItemRef{ItemID: "1000", Quantity: 1})
	req.IdempotencyKey = "idem-1"
	first, err := svc.Sell(ctx, req)
	if err != nil {
		t.Fatalf("first sell failed: %v", err)
	}
	second, err := svc.Sell(ctx, req)
	if err != nil {
		t.Fatalf("replayed sell failed: %v", err)
	}
	if first.Sale.ID != second.Sale.ID {
		t.Fatalf("expected replay to return %s, got %s", first.Sale.ID, second.Sale.ID)
	}
	product, _ := repo.GetProduct(context.Background(), "1000")
	if product.Stock != 4 {
		t.Fatalf("expected a single decrement, got stock %d", product.Stock)
	}
}

func TestSellReplayAfterStockSoldOut(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := cashierContext()

	req := cashSale("10", domain.CartItemRef{ItemID: "1001", Quantity: 2})
	req.IdempotencyKey = "idem-last"
	first, err := svc.Sell(ctx, req)
	if err != nil {
		t.Fatalf("first sell failed: %v", err)
	}
	second, err := svc.Sell(ctx, req)
	if err != nil {
		t.Fatalf("replay of sold-out sale failed: %v", err)
	}
	if second.Sale.ID != first.Sale.ID {
		t.Fatalf("expected replay to return %s, got %s", first.Sale.ID, second.Sale.ID)
	}
	if !second.AmountPaid.Equal(first.AmountPaid) || second.Receipt.TransactionID != first.Sale.ID {
		t.Fatalf("expected replayed totals and receipt to match, got %s vs %s", second.AmountPaid, first.AmountPaid)
	}
	product, _ := repo.GetProduct(context.Background(), "1001")
	if product.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", product.Stock)
	}
}

func TestRentReplayAfterReturnDatePassed(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := cashierContext()
	start := time.Now().UTC()

	req := domain.RentalRequest{
		CustomerPhone:  "08123456789",
		ReturnDate:     start.AddDate(0, 0, 1).Format("2006-01-02"),
		Items:          []domain.CartItemRef{{ItemID: "1001", Quantity: 2}},
		Payment:        domain.PaymentRequest{Method: domain.PaymentCash, CashReceived: dec("100")},
		IdempotencyKey: "idem-rent",
	}
	first, err := svc.Rent(ctx, req)
	if err != nil {
		t.Fatalf("first rent failed: %v", err)
	}

	svc.now = func() time.Time { return start.AddDate(0, 0, 3) }
	second, err := svc.Rent(ctx, req)
	if err != nil {
		t.Fatalf("replay after return date failed: %v", err)
	}
	if second.Rental.ID != first.Rental.ID {
		t.Fatalf("expected replay to return %s, got %s", first.Rental.ID, second.Rental.ID)
	}
	if !second.Change.Equal(first.Change) {
		t.Fatalf("expected change %s, got %s", first.Change, second.Change)
	}
	product, _ := repo.GetRentalProduct(context.Background(), "1001")
	if product.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", product.Stock)
	}
}

func TestRentalReturnWithLateFees(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := cashierContext()
	start := time.Now().UTC()

	check, err := svc.VerifyCustomer(ctx, domain.CustomerVerifyRequest{Phone: "0812-345-6789"})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if check.Exists || check.Phone != "08123456789" {
		t.Fatalf("expected unknown normalized phone, got %+v", check)
	}

	rented, err := svc.Rent(ctx, domain.RentalRequest{
		CustomerPhone: "08123456789",
		ReturnDate:    start.AddDate(0, 0, 1).Format("2006-01-02"),
		Items:         []domain.CartItemRef{{ItemID: "1000", Quantity: 2}},
		Payment:       domain.PaymentRequest{Method: domain.PaymentCash, CashReceived: dec("100")},
	})
	if err != nil {
		t.Fatalf("rent failed: %v", err)
	}
	if !rented.Rental.Total.Equal(dec("60")) || !rented.Change.Equal(dec("40")) {
		t.Fatalf("expected total 60 and change 40, got %s / %s", rented.Rental.Total, rented.Change)
	}

	check, err = svc.VerifyCustomer(ctx, domain.CustomerVerifyRequest{Phone: "08123456789"})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !check.Exists || check.ActiveRentals != 1 {
		t.Fatalf("expected existing customer with one rental, got %+v", check)
	}

	svc.now = func() time.Time { return start.AddDate(0, 0, 4) }

	open, err := svc.ListReturnableRentals(ctx, "08123456789")
	if err != nil {
		t.Fatalf("list returnable failed: %v", err)
	}
	if len(open) != 1 || open[0].DaysLate != 3 || open[0].Rental.Status != domain.RentalStatusOverdue {
		t.Fatalf("expected one overdue rental 3 days late, got %+v", open)
	}

	result, err := svc.ProcessReturn(ctx, domain.ReturnRequest{
		CustomerPhone: "08123456789",
		Mode:          domain.ReturnModeLateFee,
		Items:         []domain.ReturnSelection{{RentalItemID: rented.Rental.Items[0].ID}},
	})
	if err != nil {
		t.Fatalf("process return failed: %v", err)
	}
	if !result.Summary.LateFees.Equal(dec("9")) {
		t.Fatalf("expected late fees 9, got %s", result.Summary.LateFees)
	}
	if len(result.Returns) != 1 || result.Receipt.TransactionID == "" {
		t.Fatalf("expected one return row with a receipt, got %+v", result)
	}

	rental, err := repo.GetRental(context.Background(), rented.Rental.ID)
	if err != nil {
		t.Fatalf("get rental failed: %v", err)
	}
	if rental.Status != domain.RentalStatusReturned {
		t.Fatalf("expected returned status, got %s", rental.Status)
	}
	product, _ := repo.GetRentalProduct(context.Background(), "1000")
	if product.Stock != 3 {
		t.Fatalf("expected rental stock restored to 3, got %d", product.Stock)
	}
}

func TestRentRejectsPastReturnDate(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Rent(cashierContext(), domain.RentalRequest{
		CustomerPhone: "08123456789",
		ReturnDate:    time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02"),
		Items:         []domain.CartItemRef{{ItemID: "1000", Quantity: 1}},
		Payment:       domain.PaymentRequest{Method: domain.PaymentCash, CashReceived: dec("100")},
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProcessReturnRejectsUnknownItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := cashierContext()

	if _, err := svc.Rent(ctx, domain.RentalRequest{
		CustomerPhone: "08123456789",
		ReturnDate:    time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02"),
		Items:         []domain.CartItemRef{{ItemID: "1001", Quantity: 1}},
		Payment:       domain.PaymentRequest{Method: domain.PaymentCash, CashReceived: dec("100")},
	}); err != nil {
		t.Fatalf("rent failed: %v", err)
	}

	_, err := svc.ProcessReturn(ctx, domain.ReturnRequest{
		CustomerPhone: "08123456789",
		Mode:          domain.ReturnModeUnsatisfied,
		Items:         []domain.ReturnSelection{{RentalItemID: "ritem-missing"}},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEmployeeAdministration(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.ListEmployees(cashierContext()); !errors.Is(err, ErrAuthorization) {
		t.Fatalf("expected authorization error for cashier, got %v", err)
	}

	ctx := adminContext()
	created, err := svc.CreateEmployee(ctx, domain.EmployeeCreateRequest{
		Username: "night_shift",
		Name:     "Night Shift",
		Password: "Night#2024",
		Position: domain.PositionCashier,
	})
	if err != nil {
		t.Fatalf("create employee failed: %v", err)
	}
	if created.PasswordHash == "" || created.PasswordHash == "Night#2024" {
		t.Fatalf("expected hashed password")
	}

	if _, err := svc.CreateEmployee(ctx, domain.EmployeeCreateRequest{
		Username: "12345",
		Name:     "Digits Only",
		Password: "Night#2024",
		Position: domain.PositionCashier,
	}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for numeric username, got %v", err)
	}

	name := "Night Manager"
	position := domain.PositionAdmin
	updated, err := svc.UpdateEmployee(ctx, "night_shift", domain.EmployeeUpdateRequest{Name: &name, Position: &position})
	if err != nil {
		t.Fatalf("update employee failed: %v", err)
	}
	if updated.Name != name || updated.Position != domain.PositionAdmin {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := svc.Authenticate(context.Background(), "night_shift", "Night#2024"); err != nil {
		t.Fatalf("new employee cannot log in: %v", err)
	}

	if err := svc.DeleteEmployee(ctx, "admin"); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected self delete to be rejected, got %v", err)
	}
	if err := svc.DeleteEmployee(ctx, "night_shift"); err != nil {
		t.Fatalf("delete employee failed: %v", err)
	}

	logs, err := svc.ListEmployeeLogs(ctx, "emp-admin", 0)
	if err != nil {
		t.Fatalf("list logs failed: %v", err)
	}
	if len(logs) != 3 || logs[0].Action != domain.LogActionEmployeeDelete {
		t.Fatalf("expected create, update and delete entries newest first, got %+v", logs)
	}
}

func TestListTransactionsTotals(t *testing.T) {
	svc, _ := newTestService(t)
	cashier := cashierContext()

	for i := 0; i < 2; i++ {
		if _, err := svc.Sell(cashier, cashSale("10", domain.CartItemRef{ItemID: "1000", Quantity: 1})); err != nil {
			t.Fatalf("sell failed: %v", err)
		}
	}

	view, err := svc.ListTransactions(adminContext(), "sale", 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if view.Totals.SaleCount != 2 || !view.Totals.SalesTotal.Equal(dec("2.12")) {
		t.Fatalf("unexpected totals: %+v", view.Totals)
	}
	if len(view.Rentals) != 0 || len(view.Returns) != 0 {
		t.Fatalf("expected only sales in a sale view")
	}

	if _, err := svc.ListTransactions(adminContext(), "refunds", 0); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}

	stats, err := svc.TodayStats(cashier)
	if err != nil {
		t.Fatalf("today stats failed: %v", err)
	}
	if stats.SaleCount != 2 || !stats.TotalSales.Equal(dec("2.12")) {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestDraftRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := cashierContext()

	if _, err := svc.LoadDraft(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no draft, got %v", err)
	}
	if _, err := svc.SaveDraft(ctx, domain.DraftSaveRequest{
		Type:          domain.DraftTypeRental,
		Cart:          []domain.CartItemRef{{ItemID: "1000", Quantity: 1}},
		CustomerPhone: "08123456789",
	}); err != nil {
		t.Fatalf("save draft failed: %v", err)
	}

	draft, err := svc.LoadDraft(ctx)
	if err != nil {
		t.Fatalf("load draft failed: %v", err)
	}
	if draft.Type != domain.DraftTypeRental || len(draft.Cart) != 1 || draft.EmployeeID != "emp-cashier" {
		t.Fatalf("unexpected draft: %+v", draft)
	}

	if err := svc.ClearDraft(ctx); err != nil {
		t.Fatalf("clear draft failed: %v", err)
	}
	if _, err := svc.LoadDraft(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected draft to be cleared, got %v", err)
	}
}
