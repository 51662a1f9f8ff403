package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/store"
	"sagepos/backend/internal/xid"
)

// Seed is the initial content of a Store.
type Seed struct {
	Products       []domain.Product
	RentalProducts []domain.RentalProduct
	Employees      []domain.Employee
	Coupons        []domain.Coupon
}

type Store struct {
	mu sync.RWMutex
	st state
}

type state struct {
	products         map[string]domain.Product
	rentalProducts   map[string]domain.RentalProduct
	customersByPhone map[string]domain.Customer
	employees        map[string]domain.Employee
	coupons          map[string]domain.Coupon
	sales            []domain.SalesTransaction
	rentals          []domain.RentalTransaction
	returns          []domain.ReturnTransaction
	employeeLogs     []domain.EmployeeLog
}

// SeedEmployees builds the initial admin and cashier accounts for dev/demo
// mode. Passwords come from SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD and
// fall back to dev defaults with a warning.
func SeedEmployees() []domain.Employee {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	employees := make([]domain.Employee, 0, 2)
	for _, e := range []struct {
		id       string
		username string
		name     string
		password string
		position string
	}{
		{"emp-0001", "admin", "Store Admin", adminPwd, domain.PositionAdmin},
		{"emp-0002", "cashier", "Store Cashier", cashierPwd, domain.PositionCashier},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(e.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", e.username, err)
		}
		employees = append(employees, domain.Employee{
			ID:           e.id,
			Username:     e.username,
			Name:         e.name,
			PasswordHash: string(hash),
			Position:     e.position,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return employees
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultSeed is the demo catalog the store starts with when no database is
// configured.
func DefaultSeed() Seed {
	now := time.Now().UTC()
	return Seed{
		Products: []domain.Product{
			{ID: "1000", Name: "Potato", Category: "grocery", Price: money("1.00"), Stock: 249},
			{ID: "1001", Name: "Plastic Cup", Category: "grocery", Price: money("0.50"), Stock: 376},
			{ID: "1002", Name: "Tomato", Category: "grocery", Price: money("1.50"), Stock: 180},
			{ID: "1003", Name: "Onion", Category: "grocery", Price: money("0.80"), Stock: 220},
			{ID: "1004", Name: "Carrot", Category: "grocery", Price: money("1.20"), Stock: 150},
			{ID: "1005", Name: "Bread", Category: "grocery", Price: money("2.50"), Stock: 95},
			{ID: "1006", Name: "Milk (1L)", Category: "grocery", Price: money("3.99"), Stock: 120},
			{ID: "1007", Name: "Eggs (12)", Category: "grocery", Price: money("4.50"), Stock: 85},
			{ID: "1008", Name: "Cheese", Category: "grocery", Price: money("5.99"), Stock: 60},
			{ID: "1009", Name: "Butter", Category: "grocery", Price: money("4.25"), Stock: 75},
			{ID: "2000", Name: "USB Cable", Category: "electronics", Price: money("9.99"), Stock: 150},
			{ID: "2001", Name: "Phone Charger", Category: "electronics", Price: money("15.99"), Stock: 100},
			{ID: "2002", Name: "Headphones", Category: "electronics", Price: money("29.99"), Stock: 45},
			{ID: "2003", Name: "Mouse", Category: "electronics", Price: money("19.99"), Stock: 80},
			{ID: "2004", Name: "Keyboard", Category: "electronics", Price: money("39.99"), Stock: 55},
			{ID: "3000", Name: "T-Shirt", Category: "clothing", Price: money("12.99"), Stock: 200},
			{ID: "3001", Name: "Jeans", Category: "clothing", Price: money("39.99"), Stock: 120},
			{ID: "3002", Name: "Socks (3-pack)", Category: "clothing", Price: money("8.99"), Stock: 180},
		},
		RentalProducts: []domain.RentalProduct{
			{ID: "1000", Name: "Theory Of Everything", Category: "movie", RentalPrice: money("30.00"), Stock: 249},
			{ID: "1001", Name: "Adventures Of Tom Sawyer", Category: "book", RentalPrice: money("40.50"), Stock: 391},
			{ID: "1002", Name: "Interstellar", Category: "movie", RentalPrice: money("35.00"), Stock: 180},
			{ID: "1003", Name: "The Martian", Category: "movie", RentalPrice: money("32.00"), Stock: 150},
			{ID: "1004", Name: "Harry Potter Complete Set", Category: "book", RentalPrice: money("55.00"), Stock: 85},
			{ID: "1005", Name: "Lord of the Rings Trilogy", Category: "book", RentalPrice: money("50.00"), Stock: 95},
			{ID: "1006", Name: "Inception", Category: "movie", RentalPrice: money("33.00"), Stock: 120},
			{ID: "1007", Name: "The Great Gatsby", Category: "book", RentalPrice: money("25.00"), Stock: 200},
			{ID: "1008", Name: "Camera Equipment", Category: "equipment", RentalPrice: money("75.00"), Stock: 25},
			{ID: "1009", Name: "Projector", Category: "equipment", RentalPrice: money("85.00"), Stock: 15},
			{ID: "1010", Name: "Gaming Console", Category: "equipment", RentalPrice: money("65.00"), Stock: 40},
		},
		Employees: SeedEmployees(),
		Coupons: []domain.Coupon{
			{ID: "coupon-0001", Code: "SAVE20", DiscountPercentage: money("20"), IsActive: true, CreatedAt: now},
			{ID: "coupon-0002", Code: "WELCOME15", DiscountPercentage: money("15"), IsActive: true, CreatedAt: now},
			{ID: "coupon-0003", Code: "SPRING5", DiscountPercentage: money("5"), IsActive: false, CreatedAt: now},
		},
	}
}

func NewSeeded() *Store {
	return New(DefaultSeed())
}

func New(seed Seed) *Store {
	st := state{
		products:         make(map[string]domain.Product, len(seed.Products)),
		rentalProducts:   make(map[string]domain.RentalProduct, len(seed.RentalProducts)),
		customersByPhone: make(map[string]domain.Customer),
		employees:        make(map[string]domain.Employee, len(seed.Employees)),
		coupons:          make(map[string]domain.Coupon, len(seed.Coupons)),
		sales:            make([]domain.SalesTransaction, 0, 64),
		rentals:          make([]domain.RentalTransaction, 0, 64),
		returns:          make([]domain.ReturnTransaction, 0, 64),
		employeeLogs:     make([]domain.EmployeeLog, 0, 128),
	}
	for _, p := range seed.Products {
		st.products[p.ID] = p
	}
	for _, p := range seed.RentalProducts {
		st.rentalProducts[p.ID] = p
	}
	for _, e := range seed.Employees {
		st.employees[strings.ToLower(e.Username)] = e
	}
	for _, c := range seed.Coupons {
		st.coupons[strings.ToUpper(c.Code)] = c
	}
	return &Store{st: st}
}

// WithinTx holds the write lock for the whole unit of work and restores the
// snapshot taken on entry when fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return store.Persistence("begin", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(ctx, &tx{st: &s.st}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(s.st.products))
	for _, p := range s.st.products {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Product) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.st.products[id]
	if !ok {
		return nil, store.NotFound("product", id)
	}
	return &p, nil
}

func (s *Store) ListRentalProducts(_ context.Context) ([]domain.RentalProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RentalProduct, 0, len(s.st.rentalProducts))
	for _, p := range s.st.rentalProducts {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.RentalProduct) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) GetRentalProduct(_ context.Context, id string) (*domain.RentalProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.st.rentalProducts[id]
	if !ok {
		return nil, store.NotFound("rental product", id)
	}
	return &p, nil
}

func (s *Store) GetCustomerByPhone(_ context.Context, phone string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.st.customersByPhone[phone]
	if !ok {
		return nil, store.NotFound("customer", phone)
	}
	return &c, nil
}

func (s *Store) GetActiveCoupon(_ context.Context, code string) (*domain.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.st.coupons[strings.ToUpper(strings.TrimSpace(code))]
	if !ok || !c.IsActive {
		return nil, store.NotFound("coupon", code)
	}
	return &c, nil
}

func (s *Store) ListActiveCoupons(_ context.Context) ([]domain.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Coupon, 0, len(s.st.coupons))
	for _, c := range s.st.coupons {
		if c.IsActive {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.Coupon) int { return strings.Compare(a.Code, b.Code) })
	return out, nil
}

func (s *Store) FindSaleByIdempotency(_ context.Context, key string) (*domain.SalesTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.st.sales {
		if key != "" && s.st.sales[i].IdempotencyKey == key {
			sale := cloneSale(s.st.sales[i])
			return &sale, nil
		}
	}
	return nil, store.NotFound("sale", key)
}

func (s *Store) FindRentalByIdempotency(_ context.Context, key string) (*domain.RentalTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.st.rentals {
		if key != "" && s.st.rentals[i].IdempotencyKey == key {
			rental := cloneRental(s.st.rentals[i])
			return &rental, nil
		}
	}
	return nil, store.NotFound("rental", key)
}

func (s *Store) GetRental(_ context.Context, id string) (*domain.RentalTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.st.rentalIndex(id); idx >= 0 {
		rental := cloneRental(s.st.rentals[idx])
		return &rental, nil
	}
	return nil, store.NotFound("rental", id)
}

func (s *Store) ListActiveRentalsByCustomer(_ context.Context, customerID string) ([]domain.RentalTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RentalTransaction, 0, 8)
	for i := len(s.st.rentals) - 1; i >= 0; i-- {
		r := s.st.rentals[i]
		if r.CustomerID == customerID && r.Status == domain.RentalStatusActive {
			out = append(out, cloneRental(r))
		}
	}
	return out, nil
}

func (s *Store) ListSales(_ context.Context, limit int) ([]domain.SalesTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = clampLimit(limit, len(s.st.sales))
	out := make([]domain.SalesTransaction, 0, limit)
	for i := len(s.st.sales) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, cloneSale(s.st.sales[i]))
	}
	return out, nil
}

func (s *Store) ListRentals(_ context.Context, limit int) ([]domain.RentalTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = clampLimit(limit, len(s.st.rentals))
	out := make([]domain.RentalTransaction, 0, limit)
	for i := len(s.st.rentals) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, cloneRental(s.st.rentals[i]))
	}
	return out, nil
}

func (s *Store) ListReturns(_ context.Context, limit int) ([]domain.ReturnTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = clampLimit(limit, len(s.st.returns))
	out := make([]domain.ReturnTransaction, 0, limit)
	for i := len(s.st.returns) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, cloneReturn(s.st.returns[i]))
	}
	return out, nil
}

func (s *Store) SalesSince(_ context.Context, from time.Time) (int, decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	total := decimal.Zero
	for _, sale := range s.st.sales {
		if sale.CreatedAt.Before(from) {
			continue
		}
		count++
		total = total.Add(sale.Total)
	}
	return count, total, nil
}

func (s *Store) CountActiveRentals(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, r := range s.st.rentals {
		if r.Status == domain.RentalStatusActive {
			count++
		}
	}
	return count, nil
}

func (s *Store) GetEmployeeByUsername(_ context.Context, username string) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.st.employees[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, store.NotFound("employee", username)
	}
	return &e, nil
}

func (s *Store) GetEmployeeByID(_ context.Context, id string) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.st.employees {
		if e.ID == id {
			found := e
			return &found, nil
		}
	}
	return nil, store.NotFound("employee", id)
}

func (s *Store) ListEmployees(_ context.Context) ([]domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Employee, 0, len(s.st.employees))
	for _, e := range s.st.employees {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b domain.Employee) int { return strings.Compare(a.Username, b.Username) })
	return out, nil
}

func (s *Store) CreateEmployee(_ context.Context, employee domain.Employee) (*domain.Employee, error) {
	key := strings.ToLower(strings.TrimSpace(employee.Username))
	if key == "" {
		return nil, store.Invalid("username", "username is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.st.employees[key]; exists {
		return nil, store.Invalid("username", "username already exists")
	}
	if employee.ID == "" {
		employee.ID = xid.New("emp")
	}
	s.st.employees[key] = employee
	created := employee
	return &created, nil
}

func (s *Store) UpdateEmployee(_ context.Context, employee domain.Employee) (*domain.Employee, error) {
	key := strings.ToLower(strings.TrimSpace(employee.Username))

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.st.employees[key]
	if !ok {
		return nil, store.NotFound("employee", employee.Username)
	}
	employee.ID = existing.ID
	employee.CreatedAt = existing.CreatedAt
	s.st.employees[key] = employee
	updated := employee
	return &updated, nil
}

func (s *Store) DeleteEmployee(_ context.Context, username string) error {
	key := strings.ToLower(strings.TrimSpace(username))

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.employees[key]; !ok {
		return store.NotFound("employee", username)
	}
	delete(s.st.employees, key)
	return nil
}

func (s *Store) CreateEmployeeLog(_ context.Context, entry domain.EmployeeLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("elog")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.st.employeeLogs = append(s.st.employeeLogs, entry)
	s.mu.Unlock()
	return nil
}

func (s *Store) ListEmployeeLogs(_ context.Context, employeeID string, limit int) ([]domain.EmployeeLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = clampLimit(limit, len(s.st.employeeLogs))
	out := make([]domain.EmployeeLog, 0, limit)
	for i := len(s.st.employeeLogs) - 1; i >= 0 && len(out) < limit; i-- {
		entry := s.st.employeeLogs[i]
		if employeeID != "" && entry.EmployeeID != employeeID {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// tx mutates the state owned by an open WithinTx call. The store mutex is
// already held, so none of its methods lock.
type tx struct {
	st *state
}

func (t *tx) GetOrCreateCustomer(_ context.Context, phone string) (*domain.Customer, error) {
	if phone == "" {
		return nil, store.Invalid("phone", "phone is required")
	}
	if c, ok := t.st.customersByPhone[phone]; ok {
		return &c, nil
	}
	c := domain.Customer{ID: xid.New("cust"), Phone: phone, CreatedAt: time.Now().UTC()}
	t.st.customersByPhone[phone] = c
	return &c, nil
}

func (t *tx) InsertSale(_ context.Context, sale domain.SalesTransaction) error {
	if sale.IdempotencyKey != "" {
		for _, existing := range t.st.sales {
			if existing.IdempotencyKey == sale.IdempotencyKey {
				return store.Invalid("idempotency_key", "idempotency key already used")
			}
		}
	}
	sale.Items = nil
	t.st.sales = append(t.st.sales, sale)
	return nil
}

func (t *tx) InsertSaleItem(_ context.Context, saleID string, item domain.SalesTransactionItem) error {
	for i := len(t.st.sales) - 1; i >= 0; i-- {
		if t.st.sales[i].ID == saleID {
			t.st.sales[i].Items = append(t.st.sales[i].Items, item)
			return nil
		}
	}
	return store.NotFound("sale", saleID)
}

func (t *tx) DecrementProductStock(_ context.Context, productID string, qty int) error {
	p, ok := t.st.products[productID]
	if !ok {
		return store.NotFound("product", productID)
	}
	if qty < 1 {
		return store.Invalid("quantity", "quantity must be at least 1")
	}
	if p.Stock < qty {
		return &store.InsufficientStockError{ItemID: productID, Requested: qty, Available: p.Stock}
	}
	p.Stock -= qty
	t.st.products[productID] = p
	return nil
}

func (t *tx) InsertRental(_ context.Context, rental domain.RentalTransaction) error {
	if rental.IdempotencyKey != "" {
		for _, existing := range t.st.rentals {
			if existing.IdempotencyKey == rental.IdempotencyKey {
				return store.Invalid("idempotency_key", "idempotency key already used")
			}
		}
	}
	rental.Items = nil
	t.st.rentals = append(t.st.rentals, rental)
	return nil
}

func (t *tx) InsertRentalItem(_ context.Context, item domain.RentalTransactionItem) error {
	idx := t.st.rentalIndex(item.RentalID)
	if idx < 0 {
		return store.NotFound("rental", item.RentalID)
	}
	t.st.rentals[idx].Items = append(t.st.rentals[idx].Items, item)
	return nil
}

func (t *tx) DecrementRentalStock(_ context.Context, productID string, qty int) error {
	p, ok := t.st.rentalProducts[productID]
	if !ok {
		return store.NotFound("rental product", productID)
	}
	if qty < 1 {
		return store.Invalid("quantity", "quantity must be at least 1")
	}
	if p.Stock < qty {
		return &store.InsufficientStockError{ItemID: productID, Requested: qty, Available: p.Stock}
	}
	p.Stock -= qty
	t.st.rentalProducts[productID] = p
	return nil
}

func (t *tx) IncrementRentalStock(_ context.Context, productID string, qty int) error {
	p, ok := t.st.rentalProducts[productID]
	if !ok {
		return store.NotFound("rental product", productID)
	}
	if qty < 1 {
		return store.Invalid("quantity", "quantity must be at least 1")
	}
	p.Stock += qty
	t.st.rentalProducts[productID] = p
	return nil
}

func (t *tx) SetRentalStatus(_ context.Context, rentalID string, status string, from ...string) error {
	idx := t.st.rentalIndex(rentalID)
	if idx < 0 {
		return store.NotFound("rental", rentalID)
	}
	current := t.st.rentals[idx].Status
	if len(from) > 0 && !slices.Contains(from, current) {
		return store.Invalid("rental_id", fmt.Sprintf("rental %s is already %s", rentalID, current))
	}
	t.st.rentals[idx].Status = status
	return nil
}

func (t *tx) InsertReturn(_ context.Context, ret domain.ReturnTransaction) error {
	if t.st.rentalIndex(ret.RentalID) < 0 {
		return store.NotFound("rental", ret.RentalID)
	}
	ret.Items = nil
	t.st.returns = append(t.st.returns, ret)
	return nil
}

func (t *tx) InsertReturnItem(_ context.Context, item domain.ReturnTransactionItem) error {
	for i := len(t.st.returns) - 1; i >= 0; i-- {
		if t.st.returns[i].ID == item.ReturnID {
			t.st.returns[i].Items = append(t.st.returns[i].Items, item)
			return nil
		}
	}
	return store.NotFound("return", item.ReturnID)
}

func clampLimit(limit int, n int) int {
	if limit < 1 || limit > n {
		return n
	}
	return limit
}

func (st *state) rentalIndex(id string) int {
	for i := range st.rentals {
		if st.rentals[i].ID == id {
			return i
		}
	}
	return -1
}

func (st *state) clone() state {
	out := state{
		products:         make(map[string]domain.Product, len(st.products)),
		rentalProducts:   make(map[string]domain.RentalProduct, len(st.rentalProducts)),
		customersByPhone: make(map[string]domain.Customer, len(st.customersByPhone)),
		employees:        make(map[string]domain.Employee, len(st.employees)),
		coupons:          make(map[string]domain.Coupon, len(st.coupons)),
		sales:            make([]domain.SalesTransaction, 0, cap(st.sales)),
		rentals:          make([]domain.RentalTransaction, 0, cap(st.rentals)),
		returns:          make([]domain.ReturnTransaction, 0, cap(st.returns)),
		employeeLogs:     slices.Clone(st.employeeLogs),
	}
	for k, v := range st.products {
		out.products[k] = v
	}
	for k, v := range st.rentalProducts {
		out.rentalProducts[k] = v
	}
	for k, v := range st.customersByPhone {
		out.customersByPhone[k] = v
	}
	for k, v := range st.employees {
		out.employees[k] = v
	}
	for k, v := range st.coupons {
		out.coupons[k] = v
	}
	for _, s := range st.sales {
		out.sales = append(out.sales, cloneSale(s))
	}
	for _, r := range st.rentals {
		out.rentals = append(out.rentals, cloneRental(r))
	}
	for _, r := range st.returns {
		out.returns = append(out.returns, cloneReturn(r))
	}
	return out
}

func cloneSale(src domain.SalesTransaction) domain.SalesTransaction {
	out := src
	out.Items = slices.Clone(src.Items)
	return out
}

func cloneRental(src domain.RentalTransaction) domain.RentalTransaction {
	out := src
	out.Items = slices.Clone(src.Items)
	return out
}

func cloneReturn(src domain.ReturnTransaction) domain.ReturnTransaction {
	out := src
	out.Items = slices.Clone(src.Items)
	return out
}
