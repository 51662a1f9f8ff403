package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sagepos/backend/internal/cache"
	"sagepos/backend/internal/cart"
	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/lookup"
	"sagepos/backend/internal/pricing"
	"sagepos/backend/internal/receipt"
	"sagepos/backend/internal/sequencer"
	"sagepos/backend/internal/store"
	"sagepos/backend/internal/validation"
	"sagepos/backend/internal/xid"
)

// Options tunes a Service. A nil TaxRate uses pricing.TaxRate; a zero rate
// sells without tax.
type Options struct {
	TaxRate      *decimal.Decimal
	StoreTimeout time.Duration
}

type Service struct {
	repo         store.Repository
	catalog      *lookup.Catalog
	sequencer    *sequencer.Sequencer
	drafts       *cache.DraftStore
	taxRate      decimal.Decimal
	storeTimeout time.Duration
	now          func() time.Time
}

func New(repo store.Repository, catalog *lookup.Catalog, drafts *cache.DraftStore, opts Options) *Service {
	if catalog == nil {
		catalog = lookup.NewCatalog(repo, nil, 0)
	}
	if drafts == nil {
		drafts = cache.NewDraftStore(nil, 0)
	}
	taxRate := pricing.TaxRate
	if opts.TaxRate != nil && !opts.TaxRate.IsNegative() {
		taxRate = *opts.TaxRate
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}

	return &Service{
		repo:         repo,
		catalog:      catalog,
		sequencer:    sequencer.New(repo),
		drafts:       drafts,
		taxRate:      taxRate,
		storeTimeout: opts.StoreTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords both yield ErrAuthentication.
func (s *Service) Authenticate(ctx context.Context, username string, password string) (*domain.Employee, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	username = strings.TrimSpace(username)
	employee, err := lookup.Retry(ctx, func() (*domain.Employee, error) {
		return s.repo.GetEmployeeByUsername(ctx, username)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			verifyPassword("", password)
			return nil, ErrAuthentication
		}
		return nil, err
	}
	if !verifyPassword(employee.PasswordHash, password) {
		return nil, ErrAuthentication
	}

	s.writeEmployeeLog(ctx, employee.ID, domain.LogActionLogin, "")
	return employee, nil
}

// CurrentEmployee reloads an employee for an existing session. A deleted
// employee yields ErrAuthentication.
func (s *Service) CurrentEmployee(ctx context.Context, employeeID string) (*domain.Employee, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	employee, err := lookup.Retry(ctx, func() (*domain.Employee, error) {
		return s.repo.GetEmployeeByID(ctx, employeeID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAuthentication
		}
		return nil, err
	}
	return employee, nil
}

func (s *Service) RecordLogout(ctx context.Context) {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	s.writeEmployeeLog(ctx, session.EmployeeID, domain.LogActionLogout, "")
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.catalog.Products(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.catalog.Product(ctx, strings.TrimSpace(id))
}

func (s *Service) ListRentalProducts(ctx context.Context) ([]domain.RentalProduct, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.catalog.RentalProducts(ctx)
}

func (s *Service) GetRentalProduct(ctx context.Context, id string) (*domain.RentalProduct, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.catalog.RentalProduct(ctx, strings.TrimSpace(id))
}

// VerifyCustomer reports whether a phone number belongs to a known customer.
// An unknown number is not an error: the customer is created by their first
// rental.
func (s *Service) VerifyCustomer(ctx context.Context, req domain.CustomerVerifyRequest) (CustomerCheck, error) {
	req.Phone = validation.NormalizePhone(req.Phone)
	if err := validation.Struct(req); err != nil {
		return CustomerCheck{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	check := CustomerCheck{Phone: req.Phone}
	customer, err := s.catalog.Customer(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return check, nil
		}
		return CustomerCheck{}, err
	}
	rentals, err := lookup.Retry(ctx, func() ([]domain.RentalTransaction, error) {
		return s.repo.ListActiveRentalsByCustomer(ctx, customer.ID)
	})
	if err != nil {
		return CustomerCheck{}, err
	}

	check.Exists = true
	check.Customer = customer
	check.ActiveRentals = len(rentals)
	return check, nil
}

func (s *Service) ValidateCoupon(ctx context.Context, req domain.CouponValidateRequest) (domain.CouponCheck, error) {
	if err := validation.Struct(req); err != nil {
		return domain.CouponCheck{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.resolveCoupon(ctx, req.Code)
}

// resolveCoupon prefers an active coupon with the exact code and falls back to
// the prefix rule.
func (s *Service) resolveCoupon(ctx context.Context, code string) (domain.CouponCheck, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	check := domain.CouponCheck{Code: code, DiscountRate: decimal.Zero}
	if code == "" {
		return check, nil
	}

	coupon, err := lookup.Retry(ctx, func() (*domain.Coupon, error) {
		return s.repo.GetActiveCoupon(ctx, code)
	})
	switch {
	case err == nil:
		check.Valid = true
		check.DiscountRate = coupon.DiscountPercentage.Div(decimal.NewFromInt(100))
		return check, nil
	case !errors.Is(err, store.ErrNotFound):
		return domain.CouponCheck{}, err
	}

	rate, ok := pricing.CouponRate(code)
	check.Valid = ok
	check.DiscountRate = rate
	return check, nil
}

func (s *Service) QuoteSale(ctx context.Context, req domain.SaleQuoteRequest) (SaleQuote, error) {
	if err := validation.Struct(req); err != nil {
		return SaleQuote{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	lines, coupon, summary, err := s.priceSale(ctx, req.Items, req.CouponCode)
	if err != nil {
		return SaleQuote{}, err
	}
	return SaleQuote{
		Lines:   lines,
		Coupon:  coupon,
		Summary: summary,
		Display: AmountsDisplay{
			Subtotal: receipt.Money(summary.Subtotal),
			Discount: receipt.Money(summary.Discount),
			Tax:      receipt.Money(summary.Tax),
			Total:    receipt.Money(summary.Total),
		},
	}, nil
}

func (s *Service) priceSale(ctx context.Context, items []domain.CartItemRef, couponCode string) ([]domain.CartLine, domain.CouponCheck, pricing.SaleSummary, error) {
	c, err := cart.Build(ctx, s.catalog.ProductResolver(), items)
	if err != nil {
		return nil, domain.CouponCheck{}, pricing.SaleSummary{}, err
	}
	coupon, err := s.resolveCoupon(ctx, couponCode)
	if err != nil {
		return nil, domain.CouponCheck{}, pricing.SaleSummary{}, err
	}
	if strings.TrimSpace(couponCode) != "" && !coupon.Valid {
		return nil, domain.CouponCheck{}, pricing.SaleSummary{}, store.Invalid("coupon_code", "coupon code is not valid")
	}
	lines := c.Lines()
	return lines, coupon, pricing.Sale(lines, coupon.DiscountRate, s.taxRate), nil
}

// Sell prices the cart from the catalog, settles the payment and commits the
// sale. Replaying an idempotency key returns the sale already on record.
func (s *Service) Sell(ctx context.Context, req domain.SaleRequest) (SaleResult, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return SaleResult{}, err
	}
	if err := validation.Struct(req); err != nil {
		return SaleResult{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		sale, err := s.repo.FindSaleByIdempotency(ctx, key)
		if err == nil {
			return saleResult(sale, session), nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return SaleResult{}, err
		}
	}

	lines, coupon, summary, err := s.priceSale(ctx, req.Items, req.CouponCode)
	if err != nil {
		return SaleResult{}, err
	}
	payment, amountPaid, err := settle(req.Payment, summary.Total)
	if err != nil {
		return SaleResult{}, err
	}

	couponCode := ""
	if coupon.Valid {
		couponCode = coupon.Code
	}
	sale, err := s.sequencer.CommitSale(ctx, sequencer.SaleOrder{
		EmployeeID:     session.EmployeeID,
		Lines:          lines,
		Summary:        summary,
		Payment:        payment,
		CouponCode:     couponCode,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil && isIdempotencyConflict(err) {
		sale, err = s.repo.FindSaleByIdempotency(ctx, strings.TrimSpace(req.IdempotencyKey))
	}
	if err != nil {
		return SaleResult{}, err
	}

	s.catalog.Invalidate(ctx, itemIDs(lines), nil)
	s.clearDraft(ctx, session.EmployeeID, domain.DraftTypeSale)
	s.writeEmployeeLog(ctx, session.EmployeeID, domain.LogActionSale,
		fmt.Sprintf("sale=%s,total=%s,payment=%s,items=%d", sale.ID, receipt.Money(sale.Total), sale.PaymentMethod, len(sale.Items)))

	return SaleResult{
		Sale:       sale,
		AmountPaid: amountPaid,
		Receipt:    receipt.ForSale(*sale, session.Name),
	}, nil
}

// saleResult rebuilds the response for a sale already on record.
func saleResult(sale *domain.SalesTransaction, session domain.Session) SaleResult {
	amountPaid := sale.Total.Round(2)
	if sale.PaymentMethod == domain.PaymentCard {
		amountPaid = pricing.CardCharge(amountPaid, sale.Cashback)
	}
	return SaleResult{
		Sale:       sale,
		AmountPaid: amountPaid,
		Receipt:    receipt.ForSale(*sale, session.Name),
	}
}

func (s *Service) QuoteRental(ctx context.Context, req domain.RentalQuoteRequest) (RentalQuote, error) {
	req.CustomerPhone = validation.NormalizePhone(req.CustomerPhone)
	if err := validation.Struct(req); err != nil {
		return RentalQuote{}, err
	}
	returnDate, err := s.parseReturnDate(req.ReturnDate)
	if err != nil {
		return RentalQuote{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := cart.Build(ctx, s.catalog.RentalProductResolver(), req.Items)
	if err != nil {
		return RentalQuote{}, err
	}
	lines := c.Lines()
	total := pricing.Rental(lines)
	return RentalQuote{
		CustomerPhone: req.CustomerPhone,
		ReturnDate:    returnDate.Format("2006-01-02"),
		Lines:         lines,
		Total:         total,
		Display:       AmountsDisplay{Total: receipt.Money(total)},
	}, nil
}

// Rent commits a rental for the customer with the given phone, creating the
// customer on first use.
func (s *Service) Rent(ctx context.Context, req domain.RentalRequest) (RentalResult, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return RentalResult{}, err
	}
	req.CustomerPhone = validation.NormalizePhone(req.CustomerPhone)
	if err := validation.Struct(req); err != nil {
		return RentalResult{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		rental, err := s.repo.FindRentalByIdempotency(ctx, key)
		if err == nil {
			return rentalResult(rental, req, session), nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return RentalResult{}, err
		}
	}

	returnDate, err := s.parseReturnDate(req.ReturnDate)
	if err != nil {
		return RentalResult{}, err
	}

	c, err := cart.Build(ctx, s.catalog.RentalProductResolver(), req.Items)
	if err != nil {
		return RentalResult{}, err
	}
	lines := c.Lines()
	total := pricing.Rental(lines)
	payment, amountPaid, err := settle(req.Payment, total)
	if err != nil {
		return RentalResult{}, err
	}

	rental, err := s.sequencer.CommitRental(ctx, sequencer.RentalOrder{
		EmployeeID:     session.EmployeeID,
		CustomerPhone:  req.CustomerPhone,
		Lines:          lines,
		Total:          total,
		ReturnDate:     returnDate,
		PaymentMethod:  payment.Method,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil && isIdempotencyConflict(err) {
		rental, err = s.repo.FindRentalByIdempotency(ctx, strings.TrimSpace(req.IdempotencyKey))
	}
	if err != nil {
		return RentalResult{}, err
	}

	s.catalog.Invalidate(ctx, nil, itemIDs(lines))
	s.clearDraft(ctx, session.EmployeeID, domain.DraftTypeRental)
	s.writeEmployeeLog(ctx, session.EmployeeID, domain.LogActionRental,
		fmt.Sprintf("rental=%s,total=%s,return_date=%s", rental.ID, receipt.Money(rental.Total), rental.ReturnDate.Format("2006-01-02")))

	return RentalResult{
		Rental:     rental,
		Change:     payment.Change,
		AmountPaid: amountPaid,
		Receipt:    receipt.ForRental(*rental, req.CustomerPhone, session.Name),
	}, nil
}

// rentalResult rebuilds the response for a rental already on record. The
// change is not stored, so it is recomputed from the retried payment.
func rentalResult(rental *domain.RentalTransaction, req domain.RentalRequest, session domain.Session) RentalResult {
	result := RentalResult{
		Rental:     rental,
		AmountPaid: rental.Total.Round(2),
		Receipt:    receipt.ForRental(*rental, req.CustomerPhone, session.Name),
	}
	if payment, amountPaid, err := settle(req.Payment, rental.Total); err == nil {
		result.Change = payment.Change
		result.AmountPaid = amountPaid
	}
	return result
}

// ListReturnableRentals lists the customer's open rentals, each line priced
// as a late fee return made today.
func (s *Service) ListReturnableRentals(ctx context.Context, phone string) ([]ReturnableRental, error) {
	phone = validation.NormalizePhone(phone)
	if !validation.ValidPhone(phone) {
		return nil, store.Invalid("phone", "phone number must be 10 or 11 digits")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, rentals, err := s.activeRentals(ctx, phone)
	if err != nil {
		return nil, err
	}

	today := s.now()
	result := make([]ReturnableRental, 0, len(rentals))
	for _, rental := range rentals {
		daysLate := pricing.DaysLate(rental.ReturnDate, today)
		rental.Status = presentedStatus(rental, today)
		lines := make([]pricing.ReturnLine, 0, len(rental.Items))
		for _, item := range rental.Items {
			lines = append(lines, returnLine(rental, item, daysLate))
		}
		quote := pricing.ReturnQuote(lines, domain.ReturnModeLateFee)
		result = append(result, ReturnableRental{Rental: rental, DaysLate: daysLate, Lines: quote.Lines})
	}
	return result, nil
}

func (s *Service) QuoteReturn(ctx context.Context, req domain.ReturnRequest) (ReturnQuote, error) {
	req.CustomerPhone = validation.NormalizePhone(req.CustomerPhone)
	if err := validation.Struct(req); err != nil {
		return ReturnQuote{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, lines, err := s.selectReturnLines(ctx, req)
	if err != nil {
		return ReturnQuote{}, err
	}
	summary := pricing.ReturnQuote(lines, req.Mode)
	return ReturnQuote{
		CustomerPhone: req.CustomerPhone,
		Summary:       summary,
		Display: AmountsDisplay{
			LateFees: receipt.Money(summary.LateFees),
			Total:    receipt.Money(summary.TotalDue),
		},
	}, nil
}

// ProcessReturn commits the selected lines. Every rental touched by the
// selection gets its own return row and is closed.
func (s *Service) ProcessReturn(ctx context.Context, req domain.ReturnRequest) (ReturnResult, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return ReturnResult{}, err
	}
	req.CustomerPhone = validation.NormalizePhone(req.CustomerPhone)
	if err := validation.Struct(req); err != nil {
		return ReturnResult{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	customer, lines, err := s.selectReturnLines(ctx, req)
	if err != nil {
		return ReturnResult{}, err
	}

	returns, err := s.sequencer.CommitReturn(ctx, sequencer.ReturnOrder{
		EmployeeID: session.EmployeeID,
		CustomerID: customer.ID,
		Mode:       req.Mode,
		Lines:      lines,
	})
	if err != nil {
		return ReturnResult{}, err
	}

	summary := pricing.ReturnQuote(lines, req.Mode)
	printed := make([]receipt.ReturnItem, 0, len(summary.Lines))
	productIDs := make([]string, 0, len(summary.Lines))
	for _, line := range summary.Lines {
		printed = append(printed, receipt.ReturnItem{Name: line.Name, Quantity: line.Quantity, RentalPrice: line.RentalPrice, LateFee: line.LateFee})
		productIDs = append(productIDs, line.ProductID)
	}

	s.catalog.Invalidate(ctx, nil, productIDs)
	s.clearDraft(ctx, session.EmployeeID, domain.DraftTypeReturn)
	s.writeEmployeeLog(ctx, session.EmployeeID, domain.LogActionReturn,
		fmt.Sprintf("returns=%d,mode=%s,total_due=%s", len(returns), req.Mode, receipt.Money(summary.TotalDue)))

	return ReturnResult{
		Returns: returns,
		Summary: summary,
		Receipt: receipt.ForReturn(returns, printed, req.Mode, req.CustomerPhone, session.Name),
	}, nil
}

func (s *Service) activeRentals(ctx context.Context, phone string) (*domain.Customer, []domain.RentalTransaction, error) {
	customer, err := s.catalog.Customer(ctx, phone)
	if err != nil {
		return nil, nil, err
	}
	rentals, err := lookup.Retry(ctx, func() ([]domain.RentalTransaction, error) {
		return s.repo.ListActiveRentalsByCustomer(ctx, customer.ID)
	})
	if err != nil {
		return nil, nil, err
	}
	return customer, rentals, nil
}

// selectReturnLines resolves each selected rental item id against the
// customer's open rentals.
func (s *Service) selectReturnLines(ctx context.Context, req domain.ReturnRequest) (*domain.Customer, []pricing.ReturnLine, error) {
	customer, rentals, err := s.activeRentals(ctx, req.CustomerPhone)
	if err != nil {
		return nil, nil, err
	}

	today := s.now()
	available := make(map[string]pricing.ReturnLine)
	for _, rental := range rentals {
		daysLate := pricing.DaysLate(rental.ReturnDate, today)
		for _, item := range rental.Items {
			available[item.ID] = returnLine(rental, item, daysLate)
		}
	}

	lines := make([]pricing.ReturnLine, 0, len(req.Items))
	seen := make(map[string]struct{}, len(req.Items))
	for _, sel := range req.Items {
		id := strings.TrimSpace(sel.RentalItemID)
		if _, dup := seen[id]; dup {
			return nil, nil, store.Invalid("items", fmt.Sprintf("rental item %s selected twice", id))
		}
		seen[id] = struct{}{}
		line, ok := available[id]
		if !ok {
			return nil, nil, store.NotFound("rental item", id)
		}
		lines = append(lines, line)
	}
	return customer, lines, nil
}

func returnLine(rental domain.RentalTransaction, item domain.RentalTransactionItem, daysLate int) pricing.ReturnLine {
	return pricing.ReturnLine{
		RentalID:     rental.ID,
		RentalItemID: item.ID,
		ProductID:    item.ProductID,
		Name:         item.Name,
		Quantity:     item.Quantity,
		RentalPrice:  item.RentalPrice,
		DaysLate:     daysLate,
	}
}

// presentedStatus derives overdue for open rentals past their return date.
func presentedStatus(rental domain.RentalTransaction, today time.Time) string {
	if rental.Status == domain.RentalStatusActive && pricing.DaysLate(rental.ReturnDate, today) > 0 {
		return domain.RentalStatusOverdue
	}
	return rental.Status
}

func (s *Service) TodayStats(ctx context.Context) (domain.TodayStats, error) {
	if _, err := requireSession(ctx); err != nil {
		return domain.TodayStats{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	type salesTotals struct {
		count int
		total decimal.Decimal
	}
	totals, err := lookup.Retry(ctx, func() (salesTotals, error) {
		count, total, err := s.repo.SalesSince(ctx, start)
		return salesTotals{count: count, total: total}, err
	})
	if err != nil {
		return domain.TodayStats{}, err
	}
	active, err := lookup.Retry(ctx, func() (int, error) {
		return s.repo.CountActiveRentals(ctx)
	})
	if err != nil {
		return domain.TodayStats{}, err
	}

	return domain.TodayStats{
		Date:          start.Format("2006-01-02"),
		TotalSales:    totals.total,
		SaleCount:     totals.count,
		ActiveRentals: active,
	}, nil
}

func (s *Service) parseReturnDate(raw string) (time.Time, error) {
	returnDate, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, store.Invalid("return_date", "return date must be YYYY-MM-DD")
	}
	if err := pricing.ValidateReturnDate(returnDate, s.now()); err != nil {
		return time.Time{}, err
	}
	return returnDate, nil
}

// settle turns a payment request into the stored payment and the amount
// collected. Cash is checked against the total rounded to cents.
func settle(req domain.PaymentRequest, total decimal.Decimal) (sequencer.Payment, decimal.Decimal, error) {
	due := total.Round(2)
	switch req.Method {
	case domain.PaymentCash:
		change, err := pricing.Change(due, req.CashReceived)
		if err != nil {
			return sequencer.Payment{}, decimal.Zero, err
		}
		return sequencer.Payment{Method: domain.PaymentCash, CashReceived: req.CashReceived, Change: change}, due, nil
	case domain.PaymentCard:
		if req.Cashback.IsNegative() {
			return sequencer.Payment{}, decimal.Zero, store.Invalid("payment.cashback", "cashback cannot be negative")
		}
		return sequencer.Payment{
			Method:    domain.PaymentCard,
			Cashback:  req.Cashback,
			CardLast4: validation.CardLast4(req.CardNumber),
		}, pricing.CardCharge(due, req.Cashback), nil
	}
	return sequencer.Payment{}, decimal.Zero, store.Invalid("payment.method", "must be one of: cash card")
}

func isIdempotencyConflict(err error) bool {
	var vErr *store.ValidationError
	return errors.As(err, &vErr) && vErr.Field == "idempotency_key"
}

func itemIDs(lines []domain.CartLine) []string {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ItemID)
	}
	return ids
}

func (s *Service) clearDraft(ctx context.Context, employeeID string, draftType string) {
	draft, err := s.drafts.Load(ctx, employeeID)
	if err != nil {
		log.Printf("[service] WARN: failed to load draft employee=%s: %v", employeeID, err)
		return
	}
	if draft == nil || draft.Type != draftType {
		return
	}
	if err := s.drafts.Clear(ctx, employeeID); err != nil {
		log.Printf("[service] WARN: failed to clear draft employee=%s: %v", employeeID, err)
	}
}

func (s *Service) writeEmployeeLog(ctx context.Context, employeeID string, action string, details string) {
	if employeeID == "" {
		return
	}
	if err := s.repo.CreateEmployeeLog(ctx, domain.EmployeeLog{
		ID:         xid.New("elog"),
		EmployeeID: employeeID,
		Action:     action,
		Details:    details,
		CreatedAt:  s.now(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write employee log action=%s employee=%s: %v", action, employeeID, err)
	}
}
