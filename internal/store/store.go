package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"sagepos/backend/internal/domain"
)

// Repository covers reads, employee administration and the unit of work used
// by every transaction commit.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListRentalProducts(ctx context.Context) ([]domain.RentalProduct, error)
	GetRentalProduct(ctx context.Context, id string) (*domain.RentalProduct, error)

	GetCustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error)

	GetActiveCoupon(ctx context.Context, code string) (*domain.Coupon, error)
	ListActiveCoupons(ctx context.Context) ([]domain.Coupon, error)

	FindSaleByIdempotency(ctx context.Context, key string) (*domain.SalesTransaction, error)
	FindRentalByIdempotency(ctx context.Context, key string) (*domain.RentalTransaction, error)
	GetRental(ctx context.Context, id string) (*domain.RentalTransaction, error)
	ListActiveRentalsByCustomer(ctx context.Context, customerID string) ([]domain.RentalTransaction, error)
	ListSales(ctx context.Context, limit int) ([]domain.SalesTransaction, error)
	ListRentals(ctx context.Context, limit int) ([]domain.RentalTransaction, error)
	ListReturns(ctx context.Context, limit int) ([]domain.ReturnTransaction, error)
	SalesSince(ctx context.Context, from time.Time) (count int, total decimal.Decimal, err error)
	CountActiveRentals(ctx context.Context) (int, error)

	GetEmployeeByUsername(ctx context.Context, username string) (*domain.Employee, error)
	GetEmployeeByID(ctx context.Context, id string) (*domain.Employee, error)
	ListEmployees(ctx context.Context) ([]domain.Employee, error)
	CreateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error)
	UpdateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error)
	DeleteEmployee(ctx context.Context, username string) error
	CreateEmployeeLog(ctx context.Context, entry domain.EmployeeLog) error
	ListEmployeeLogs(ctx context.Context, employeeID string, limit int) ([]domain.EmployeeLog, error)

	// WithinTx runs fn as one unit of work. Any error returned by fn discards
	// every write made through tx.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the write side of a unit of work.
type Tx interface {
	GetOrCreateCustomer(ctx context.Context, phone string) (*domain.Customer, error)

	InsertSale(ctx context.Context, sale domain.SalesTransaction) error
	InsertSaleItem(ctx context.Context, saleID string, item domain.SalesTransactionItem) error
	// DecrementProductStock lowers stock by qty only if at least qty is available.
	DecrementProductStock(ctx context.Context, productID string, qty int) error

	InsertRental(ctx context.Context, rental domain.RentalTransaction) error
	InsertRentalItem(ctx context.Context, item domain.RentalTransactionItem) error
	DecrementRentalStock(ctx context.Context, productID string, qty int) error
	IncrementRentalStock(ctx context.Context, productID string, qty int) error
	// SetRentalStatus moves a rental from one of the from statuses to status.
	SetRentalStatus(ctx context.Context, rentalID string, status string, from ...string) error

	InsertReturn(ctx context.Context, ret domain.ReturnTransaction) error
	InsertReturnItem(ctx context.Context, item domain.ReturnTransactionItem) error
}
