package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/store"
	"sagepos/backend/internal/xid"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	db *sql.DB
}

var _ store.Repository = (*Store)(nil)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates missing tables and loads the demo catalog and coupons.
// Existing rows are left alone.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return store.Persistence("migrate", err)
	}
	return nil
}

// EnsureEmployees inserts the given accounts unless the username is taken.
func (s *Store) EnsureEmployees(ctx context.Context, employees []domain.Employee) error {
	for _, e := range employees {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO employees (id, username, name, password_hash, position, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,now(),now())
			ON CONFLICT DO NOTHING
		`, e.ID, e.Username, e.Name, e.PasswordHash, e.Position)
		if err != nil {
			return store.Persistence("ensure employee", err)
		}
	}
	return nil
}

// WithinTx runs fn inside a serializable transaction. The transaction is
// committed only when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return store.Persistence("begin", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(ctx, &pgTx{q: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return store.Persistence("commit", err)
	}
	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, price, stock
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, store.Persistence("list products", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock); err != nil {
			return nil, store.Persistence("list products", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Persistence("list products", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, price, stock
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("product", id)
		}
		return nil, store.Persistence("get product", err)
	}
	return &p, nil
}

func (s *Store) ListRentalProducts(ctx context.Context) ([]domain.RentalProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, rental_price, stock
		FROM rental_products
		ORDER BY id
	`)
	if err != nil {
		return nil, store.Persistence("list rental products", err)
	}
	defer rows.Close()

	products := make([]domain.RentalProduct, 0, 32)
	for rows.Next() {
		var p domain.RentalProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.RentalPrice, &p.Stock); err != nil {
			return nil, store.Persistence("list rental products", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Persistence("list rental products", err)
	}
	return products, nil
}

func (s *Store) GetRentalProduct(ctx context.Context, id string) (*domain.RentalProduct, error) {
	var p domain.RentalProduct
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, rental_price, stock
		FROM rental_products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Category, &p.RentalPrice, &p.Stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("rental product", id)
		}
		return nil, store.Persistence("get rental product", err)
	}
	return &p, nil
}

func (s *Store) GetCustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	return customerByPhone(ctx, s.db, phone)
}

func customerByPhone(ctx context.Context, q queryer, phone string) (*domain.Customer, error) {
	var c domain.Customer
	err := q.QueryRowContext(ctx, `
		SELECT id, phone, created_at
		FROM customers
		WHERE phone = $1
	`, phone).Scan(&c.ID, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("customer", phone)
		}
		return nil, store.Persistence("get customer", err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

func (s *Store) GetActiveCoupon(ctx context.Context, code string) (*domain.Coupon, error) {
	var c domain.Coupon
	err := s.db.QueryRowContext(ctx, `
		SELECT id, code, discount_percentage, is_active, created_at
		FROM coupons
		WHERE upper(code) = upper($1) AND is_active = true
	`, strings.TrimSpace(code)).Scan(&c.ID, &c.Code, &c.DiscountPercentage, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("coupon", code)
		}
		return nil, store.Persistence("get coupon", err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

func (s *Store) ListActiveCoupons(ctx context.Context) ([]domain.Coupon, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, discount_percentage, is_active, created_at
		FROM coupons
		WHERE is_active = true
		ORDER BY code
	`)
	if err != nil {
		return nil, store.Persistence("list coupons", err)
	}
	defer rows.Close()

	coupons := make([]domain.Coupon, 0, 8)
	for rows.Next() {
		var c domain.Coupon
		if err := rows.Scan(&c.ID, &c.Code, &c.DiscountPercentage, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, store.Persistence("list coupons", err)
		}
		c.CreatedAt = c.CreatedAt.UTC()
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Persistence("list coupons", err)
	}
	return coupons, nil
}

const saleColumns = `id, employee_id, subtotal, discount, tax, total, payment_method,
	cash_received, change_due, cashback, card_last4, coupon_code,
	COALESCE(idempotency_key, ''), created_at`

func scanSale(scan func(dest ...any) error) (domain.SalesTransaction, error) {
	var sale domain.SalesTransaction
	err := scan(&sale.ID, &sale.EmployeeID, &sale.Subtotal, &sale.Discount, &sale.Tax, &sale.Total,
		&sale.PaymentMethod, &sale.CashReceived, &sale.Change, &sale.Cashback, &sale.CardLast4,
		&sale.CouponCode, &sale.IdempotencyKey, &sale.CreatedAt)
	sale.CreatedAt = sale.CreatedAt.UTC()
	return sale, err
}

func (s *Store) FindSaleByIdempotency(ctx context.Context, key string) (*domain.SalesTransaction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE idempotency_key = $1`, key)
	sale, err := scanSale(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("sale", key)
		}
		return nil, store.Persistence("find sale", err)
	}
	if err := s.attachSaleItems(ctx, []*domain.SalesTransaction{&sale}); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) ListSales(ctx context.Context, limit int) ([]domain.SalesTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		ORDER BY created_at DESC
		LIMIT $1
	`, nullLimit(limit))
	if err != nil {
		return nil, store.Persistence("list sales", err)
	}
	defer rows.Close()

	sales := make([]domain.SalesTransaction, 0, 64)
	for rows.Next() {
		sale, err := scanSale(rows.Scan)
		if err != nil {
			return nil, store.Persistence("list sales", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Persistence("list sales", err)
	}
	_ = rows.Close()

	refs := make([]*domain.SalesTransaction, len(sales))
	for i := range sales {
		refs[i] = &sales[i]
	}
	if err := s.attachSaleItems(ctx, refs); err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *Store) attachSaleItems(ctx context.Context, sales []*domain.SalesTransaction) error {
	if len(sales) == 0 {
		return nil
	}
	byID := make(map[string]*domain.SalesTransaction, len(sales))
	ids := make([]string, 0, len(sales))
	for _, sale := range sales {
		sale.Items = make([]domain.SalesTransactionItem, 0, 4)
		byID[sale.ID] = sale
		ids = append(ids, sale.ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sale_id, id, product_id, name, quantity, price, subtotal
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, id
	`, ids)
	if err != nil {
		return store.Persistence("list sale items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var saleID string
		var item domain.SalesTransactionItem
		if err := rows.Scan(&saleID, &item.ID, &item.ProductID, &item.Name, &item.Quantity, &item.Price, &item.Subtotal); err != nil {
			return store.Persistence("list sale items", err)
		}
		if sale, ok := byID[saleID]; ok {
			sale.Items = append(sale.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return store.Persistence("list sale items", err)
	}
	return nil
}

const rentalColumns = `id, customer_id, employee_id, total, return_date, status,
	payment_method, COALESCE(idempotency_key, ''), created_at`

func scanRental(scan func(dest ...any) error) (domain.RentalTransaction, error) {
	var r domain.RentalTransaction
	err := scan(&r.ID, &r.CustomerID, &r.EmployeeID, &r.Total, &r.ReturnDate, &r.Status,
		&r.PaymentMethod, &r.IdempotencyKey, &r.CreatedAt)
	r.ReturnDate = dateUTC(r.ReturnDate)
	r.CreatedAt = r.CreatedAt.UTC()
	return r, err
}

func (s *Store) FindRentalByIdempotency(ctx context.Context, key string) (*domain.RentalTransaction, error) {
	return s.findRental(ctx, "idempotency_key", key)
}

func (s *Store) GetRental(ctx context.Context, id string) (*domain.RentalTransaction, error) {
	return s.findRental(ctx, "id", id)
}

func (s *Store) findRental(ctx context.Context, column string, value string) (*domain.RentalTransaction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE `+column+` = $1`, value)
	rental, err := scanRental(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("rental", value)
		}
		return nil, store.Persistence("find rental", err)
	}
	if err := s.attachRentalItems(ctx, []*domain.RentalTransaction{&rental}); err != nil {
		return nil, err
	}
	return &rental, nil
}

func (s *Store) ListActiveRentalsByCustomer(ctx context.Context, customerID string) ([]domain.RentalTransaction, error) {
	return s.listRentals(ctx, `
		SELECT `+rentalColumns+`
		FROM rentals
		WHERE customer_id = $1 AND status = 'active'
		ORDER BY created_at ASC
	`, customerID)
}

func (s *Store) ListRentals(ctx context.Context, limit int) ([]domain.RentalTransaction, error) {
	return s.listRentals(ctx, `
		SELECT `+rentalColumns+`
		FROM rentals
		ORDER BY created_at DESC
		LIMIT $1
	`, nullLimit(limit))
}

func (s *Store) listRentals(ctx context.Context, query string, args ...any) ([]domain.RentalTransaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.Persistence("list rentals", err)
	}
	defer rows.Close()

	rentals := make([]domain.RentalTransaction, 0, 32)
	for rows.Next() {
		rental, err := scanRental(rows.Scan)
		if err != nil {
			return nil, store.Persistence("list rentals", err)
		}
		rentals = append(rentals, rental)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Persistence("list rentals", err)
	}
	_ = rows.Close()

	refs := make([]*domain.RentalTransaction, len(rentals))
	for i := range rentals {
		refs[i] = &rentals[i]
	}
	if err := s.attachRentalItems(ctx, refs); err != nil {
		return nil, err
	}
	return rentals, nil
}

func (s *Store) attachRentalItems(ctx context.Context, rentals []*domain.RentalTransaction) error {
	if len(rentals) == 0 {
		return nil
	}
	byID := make(map[string]*domain.RentalTransaction, len(rentals))
	ids := make([]string, 0, len(rentals))
	for _, rental := range rentals {
		rental.Items = make([]domain.RentalTransactionItem, 0, 4)
		byID[rental.ID] = rental
		ids = append(ids, rental.ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rental_id, product_id, name, quantity, rental_price, subtotal
		FROM rental_items
		WHERE rental_id = ANY($1)
		ORDER BY rental_id, id
	`, ids)
	if err != nil {
		return store.Persistence("list rental items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.RentalTransactionItem
		if err := rows.Scan(&item.ID, &item.RentalID, &item.ProductID, &item.Name, &item.Quantity, &item.RentalPrice, &item.Subtotal); err != nil {
			return store.Persistence("list rental items", err)
		}
		if rental, ok := byID[item.RentalID]; ok {
			rental.Items = append(rental.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return store.Persistence("list rental items", err)
	}
	return nil
}

func (s *Store) ListReturns(ctx context.Context, limit int) ([]domain.ReturnTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rental_id, customer_id, employee_id, mode, late_fees, refund_amount, total_due, created_at
		FROM returns
		ORDER BY created_at DESC
		LIMIT $1
	`, nullLimit(limit))
	if err != nil {
		return nil, store.Persistence("list returns", err)
	}
	defer rows.Close()

	returns := make([]domain.ReturnTransaction, 0, 32)
	for rows.Next() {
		var r domain.ReturnTransaction
		if err := rows.Scan(&r.ID, &r.RentalID, &r.CustomerID, &r.EmployeeID, &r.Mode, &r.LateFees, &r.RefundAmount, &r.TotalDue, &r.CreatedAt); err != nil {
			return nil, store.Persistence("list returns", err)
		}
		r.CreatedAt = r.CreatedAt.UTC()
		returns = append(returns, r)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Persistence("list returns", err)
	}
	_ = rows.Close()

	if len(returns) == 0 {
		return returns, nil
	}
	byID := make(map[string]int, len(returns))
	ids := make([]string, 0, len(returns))
	for i := range returns {
		returns[i].Items = make([]domain.ReturnTransactionItem, 0, 2)
		byID[returns[i].ID] = i
		ids = append(ids, returns[i].ID)
	}

	itemRows, err := s.db.QueryContext(ctx, `
		SELECT id, return_id, rental_item_id, product_id, quantity, days_late, late_fee
		FROM return_items
		WHERE return_id = ANY($1)
		ORDER BY return_id, id
	`, ids)
	if err != nil {
		return nil, store.Persistence("list return items", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item domain.ReturnTransactionItem
		if err := itemRows.Scan(&item.ID, &item.ReturnID, &item.RentalItemID, &item.ProductID, &item.Quantity, &item.DaysLate, &item.LateFee); err != nil {
			return nil, store.Persistence("list return items", err)
		}
		if i, ok := byID[item.ReturnID]; ok {
			returns[i].Items = append(returns[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, store.Persistence("list return items", err)
	}
	return returns, nil
}

func (s *Store) SalesSince(ctx context.Context, from time.Time) (int, decimal.Decimal, error) {
	var count int
	var total decimal.Decimal
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total), 0)
		FROM sales
		WHERE created_at >= $1
	`, from).Scan(&count, &total)
	if err != nil {
		return 0, decimal.Zero, store.Persistence("sales since", err)
	}
	return count, total, nil
}

func (s *Store) CountActiveRentals(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rentals WHERE status = 'active'`).Scan(&count); err != nil {
		return 0, store.Persistence("count rentals", err)
	}
	return count, nil
}

const employeeColumns = `id, username, name, password_hash, position, created_at, updated_at`

func scanEmployee(scan func(dest ...any) error) (domain.Employee, error) {
	var e domain.Employee
	err := scan(&e.ID, &e.Username, &e.Name, &e.PasswordHash, &e.Position, &e.CreatedAt, &e.UpdatedAt)
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, err
}

func (s *Store) GetEmployeeByUsername(ctx context.Context, username string) (*domain.Employee, error) {
	return s.findEmployee(ctx, `lower(username) = lower($1)`, strings.TrimSpace(username))
}

func (s *Store) GetEmployeeByID(ctx context.Context, id string) (*domain.Employee, error) {
	return s.findEmployee(ctx, `id = $1`, id)
}

func (s *Store) findEmployee(ctx context.Context, where string, value string) (*domain.Employee, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE `+where, value)
	e, err := scanEmployee(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("employee", value)
		}
		return nil, store.Persistence("get employee", err)
	}
	return &e, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY username ASC`)
	if err != nil {
		return nil, store.Persistence("list employees", err)
	}
	defer rows.Close()

	employees := make([]domain.Employee, 0, 16)
	for rows.Next() {
		e, err := scanEmployee(rows.Scan)
		if err != nil {
			return nil, store.Persistence("list employees", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Persistence("list employees", err)
	}
	return employees, nil
}

func (s *Store) CreateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error) {
	employee.Username = strings.TrimSpace(employee.Username)
	if employee.Username == "" {
		return nil, store.Invalid("username", "username is required")
	}
	if employee.ID == "" {
		employee.ID = xid.New("emp")
	}
	now := time.Now().UTC()
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = now
	}
	employee.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, username, name, password_hash, position, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, employee.ID, employee.Username, employee.Name, employee.PasswordHash, employee.Position, employee.CreatedAt, employee.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.Invalid("username", "username already exists")
		}
		return nil, store.Persistence("create employee", err)
	}
	created := employee
	return &created, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error) {
	employee.UpdatedAt = time.Now().UTC()
	err := s.db.QueryRowContext(ctx, `
		UPDATE employees
		SET name = $2, password_hash = $3, position = $4, updated_at = $5
		WHERE lower(username) = lower($1)
		RETURNING id, username, created_at
	`, strings.TrimSpace(employee.Username), employee.Name, employee.PasswordHash, employee.Position, employee.UpdatedAt).
		Scan(&employee.ID, &employee.Username, &employee.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("employee", employee.Username)
		}
		return nil, store.Persistence("update employee", err)
	}
	employee.CreatedAt = employee.CreatedAt.UTC()
	updated := employee
	return &updated, nil
}

func (s *Store) DeleteEmployee(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE lower(username) = lower($1)`, strings.TrimSpace(username))
	if err != nil {
		return store.Persistence("delete employee", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return store.Persistence("delete employee", err)
	}
	if affected == 0 {
		return store.NotFound("employee", username)
	}
	return nil
}

func (s *Store) CreateEmployeeLog(ctx context.Context, entry domain.EmployeeLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("elog")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employee_logs (id, employee_id, action, details, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, entry.ID, entry.EmployeeID, entry.Action, entry.Details, entry.CreatedAt)
	return store.Persistence("create employee log", err)
}

func (s *Store) ListEmployeeLogs(ctx context.Context, employeeID string, limit int) ([]domain.EmployeeLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, action, details, created_at
		FROM employee_logs
		WHERE ($1::text = '' OR employee_id = $1::text)
		ORDER BY created_at DESC
		LIMIT $2
	`, employeeID, nullLimit(limit))
	if err != nil {
		return nil, store.Persistence("list employee logs", err)
	}
	defer rows.Close()

	logs := make([]domain.EmployeeLog, 0, 64)
	for rows.Next() {
		var entry domain.EmployeeLog
		if err := rows.Scan(&entry.ID, &entry.EmployeeID, &entry.Action, &entry.Details, &entry.CreatedAt); err != nil {
			return nil, store.Persistence("list employee logs", err)
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Persistence("list employee logs", err)
	}
	return logs, nil
}

// pgTx is the write side of WithinTx.
type pgTx struct {
	q queryer
}

func (t *pgTx) GetOrCreateCustomer(ctx context.Context, phone string) (*domain.Customer, error) {
	if phone == "" {
		return nil, store.Invalid("phone", "phone is required")
	}
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO customers (id, phone, created_at)
		VALUES ($1,$2,now())
		ON CONFLICT (phone) DO NOTHING
	`, xid.New("cust"), phone)
	if err != nil {
		return nil, store.Persistence("create customer", err)
	}
	return customerByPhone(ctx, t.q, phone)
}

func (t *pgTx) InsertSale(ctx context.Context, sale domain.SalesTransaction) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO sales (
			id, employee_id, subtotal, discount, tax, total, payment_method,
			cash_received, change_due, cashback, card_last4, coupon_code,
			idempotency_key, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, sale.ID, sale.EmployeeID, sale.Subtotal, sale.Discount, sale.Tax, sale.Total, sale.PaymentMethod,
		sale.CashReceived, sale.Change, sale.Cashback, sale.CardLast4, sale.CouponCode,
		nullIfEmpty(sale.IdempotencyKey), sale.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.Invalid("idempotency_key", "idempotency key already used")
		}
		return store.Persistence("insert sale", err)
	}
	return nil
}

func (t *pgTx) InsertSaleItem(ctx context.Context, saleID string, item domain.SalesTransactionItem) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO sale_items (id, sale_id, product_id, name, quantity, price, subtotal)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, item.ID, saleID, item.ProductID, item.Name, item.Quantity, item.Price, item.Subtotal)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.NotFound("product", item.ProductID)
		}
		return store.Persistence("insert sale item", err)
	}
	return nil
}

func (t *pgTx) DecrementProductStock(ctx context.Context, productID string, qty int) error {
	return t.decrementStock(ctx, "products", "product", productID, qty)
}

func (t *pgTx) DecrementRentalStock(ctx context.Context, productID string, qty int) error {
	return t.decrementStock(ctx, "rental_products", "rental product", productID, qty)
}

// decrementStock is a single conditional update, so concurrent commits can
// never take stock below zero.
func (t *pgTx) decrementStock(ctx context.Context, table string, entity string, id string, qty int) error {
	if qty < 1 {
		return store.Invalid("quantity", "quantity must be at least 1")
	}
	res, err := t.q.ExecContext(ctx, `
		UPDATE `+table+`
		SET stock = stock - $1, updated_at = now()
		WHERE id = $2 AND stock >= $1
	`, qty, id)
	if err != nil {
		return store.Persistence("decrement stock", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return store.Persistence("decrement stock", err)
	}
	if affected == 1 {
		return nil
	}

	var available int
	err = t.q.QueryRowContext(ctx, `SELECT stock FROM `+table+` WHERE id = $1`, id).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.NotFound(entity, id)
		}
		return store.Persistence("decrement stock", err)
	}
	return &store.InsufficientStockError{ItemID: id, Requested: qty, Available: available}
}

func (t *pgTx) IncrementRentalStock(ctx context.Context, productID string, qty int) error {
	if qty < 1 {
		return store.Invalid("quantity", "quantity must be at least 1")
	}
	res, err := t.q.ExecContext(ctx, `
		UPDATE rental_products
		SET stock = stock + $1, updated_at = now()
		WHERE id = $2
	`, qty, productID)
	if err != nil {
		return store.Persistence("increment stock", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return store.Persistence("increment stock", err)
	}
	if affected == 0 {
		return store.NotFound("rental product", productID)
	}
	return nil
}

func (t *pgTx) InsertRental(ctx context.Context, rental domain.RentalTransaction) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO rentals (
			id, customer_id, employee_id, total, return_date, status,
			payment_method, idempotency_key, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, rental.ID, rental.CustomerID, rental.EmployeeID, rental.Total, dateUTC(rental.ReturnDate), rental.Status,
		rental.PaymentMethod, nullIfEmpty(rental.IdempotencyKey), rental.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.Invalid("idempotency_key", "idempotency key already used")
		}
		if isForeignKeyViolation(err) {
			return store.NotFound("customer", rental.CustomerID)
		}
		return store.Persistence("insert rental", err)
	}
	return nil
}

func (t *pgTx) InsertRentalItem(ctx context.Context, item domain.RentalTransactionItem) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO rental_items (id, rental_id, product_id, name, quantity, rental_price, subtotal)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, item.ID, item.RentalID, item.ProductID, item.Name, item.Quantity, item.RentalPrice, item.Subtotal)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.NotFound("rental product", item.ProductID)
		}
		return store.Persistence("insert rental item", err)
	}
	return nil
}

func (t *pgTx) SetRentalStatus(ctx context.Context, rentalID string, status string, from ...string) error {
	var (
		res sql.Result
		err error
	)
	if len(from) == 0 {
		res, err = t.q.ExecContext(ctx, `UPDATE rentals SET status = $2 WHERE id = $1`, rentalID, status)
	} else {
		res, err = t.q.ExecContext(ctx, `UPDATE rentals SET status = $2 WHERE id = $1 AND status = ANY($3)`, rentalID, status, from)
	}
	if err != nil {
		return store.Persistence("set rental status", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return store.Persistence("set rental status", err)
	}
	if affected == 1 {
		return nil
	}

	var current string
	err = t.q.QueryRowContext(ctx, `SELECT status FROM rentals WHERE id = $1`, rentalID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.NotFound("rental", rentalID)
		}
		return store.Persistence("set rental status", err)
	}
	return store.Invalid("rental_id", fmt.Sprintf("rental %s is already %s", rentalID, current))
}

func (t *pgTx) InsertReturn(ctx context.Context, ret domain.ReturnTransaction) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO returns (
			id, rental_id, customer_id, employee_id, mode, late_fees,
			refund_amount, total_due, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, ret.ID, ret.RentalID, ret.CustomerID, ret.EmployeeID, ret.Mode, ret.LateFees,
		ret.RefundAmount, ret.TotalDue, ret.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.NotFound("rental", ret.RentalID)
		}
		return store.Persistence("insert return", err)
	}
	return nil
}

func (t *pgTx) InsertReturnItem(ctx context.Context, item domain.ReturnTransactionItem) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO return_items (id, return_id, rental_item_id, product_id, quantity, days_late, late_fee)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, item.ID, item.ReturnID, item.RentalItemID, item.ProductID, item.Quantity, item.DaysLate, item.LateFee)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.NotFound("rental item", item.RentalItemID)
		}
		return store.Persistence("insert return item", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func dateUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

// nullLimit maps "no limit" to NULL, which postgres treats as LIMIT ALL.
func nullLimit(limit int) any {
	if limit < 1 {
		return nil
	}
	return limit
}
