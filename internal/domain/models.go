package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

type RentalProduct struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	RentalPrice decimal.Decimal `json:"rental_price"`
	Stock       int             `json:"stock"`
}

// CartItemRef is what a client sends: an item id and a quantity. Names and
// prices are always resolved server-side.
type CartItemRef struct {
	ItemID   string `json:"item_id" validate:"required,max=64"`
	Quantity int    `json:"quantity" validate:"min=1,max=10000"`
}

type CartLine struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Customer struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

type Employee struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Position     string    `json:"position"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is the authenticated identity threaded through request handling.
type Session struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	Position   string    `json:"position"`
	IssuedAt   time.Time `json:"issued_at"`
}

func (s Session) IsAdmin() bool {
	return s.Position == PositionAdmin
}

type SalesTransactionItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type SalesTransaction struct {
	ID             string                 `json:"id"`
	EmployeeID     string                 `json:"employee_id"`
	Subtotal       decimal.Decimal        `json:"subtotal"`
	Discount       decimal.Decimal        `json:"discount"`
	Tax            decimal.Decimal        `json:"tax"`
	Total          decimal.Decimal        `json:"total"`
	PaymentMethod  string                 `json:"payment_method"`
	CashReceived   decimal.Decimal        `json:"cash_received"`
	Change         decimal.Decimal        `json:"change"`
	Cashback       decimal.Decimal        `json:"cashback"`
	CardLast4      string                 `json:"card_last4,omitempty"`
	CouponCode     string                 `json:"coupon_code,omitempty"`
	IdempotencyKey string                 `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	Items          []SalesTransactionItem `json:"items"`
}

type RentalTransactionItem struct {
	ID          string          `json:"id"`
	RentalID    string          `json:"rental_id"`
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name,omitempty"`
	Quantity    int             `json:"quantity"`
	RentalPrice decimal.Decimal `json:"rental_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type RentalTransaction struct {
	ID             string                  `json:"id"`
	CustomerID     string                  `json:"customer_id"`
	EmployeeID     string                  `json:"employee_id"`
	Total          decimal.Decimal         `json:"total"`
	ReturnDate     time.Time               `json:"return_date"`
	Status         string                  `json:"status"`
	PaymentMethod  string                  `json:"payment_method"`
	IdempotencyKey string                  `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	Items          []RentalTransactionItem `json:"items"`
}

type ReturnTransactionItem struct {
	ID           string          `json:"id"`
	ReturnID     string          `json:"return_id"`
	RentalItemID string          `json:"rental_item_id"`
	ProductID    string          `json:"product_id"`
	Quantity     int             `json:"quantity"`
	DaysLate     int             `json:"days_late"`
	LateFee      decimal.Decimal `json:"late_fee"`
}

type ReturnTransaction struct {
	ID           string                  `json:"id"`
	RentalID     string                  `json:"rental_id"`
	CustomerID   string                  `json:"customer_id"`
	EmployeeID   string                  `json:"employee_id"`
	Mode         string                  `json:"mode"`
	LateFees     decimal.Decimal         `json:"late_fees"`
	RefundAmount decimal.Decimal         `json:"refund_amount"`
	TotalDue     decimal.Decimal         `json:"total_due"`
	CreatedAt    time.Time               `json:"created_at"`
	Items        []ReturnTransactionItem `json:"items"`
}

type Coupon struct {
	ID                 string          `json:"id"`
	Code               string          `json:"code"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
}

type EmployeeLog struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Action     string    `json:"action"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Draft struct {
	EmployeeID    string        `json:"employee_id"`
	Type          string        `json:"type"`
	Cart          []CartItemRef `json:"cart"`
	CustomerPhone string        `json:"customer_phone,omitempty"`
	ReturnDate    string        `json:"return_date,omitempty"`
	SavedAt       time.Time     `json:"saved_at"`
}

const (
	PositionAdmin   = "Admin"
	PositionCashier = "Cashier"
)

const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

const (
	RentalStatusActive   = "active"
	RentalStatusReturned = "returned"
	RentalStatusOverdue  = "overdue"
)

const (
	ReturnModeLateFee     = "late_fee"
	ReturnModeUnsatisfied = "unsatisfied"
)

const (
	DraftTypeSale   = "sale"
	DraftTypeRental = "rental"
	DraftTypeReturn = "return"
)

const (
	TransactionTypeSale   = "sale"
	TransactionTypeRental = "rental"
	TransactionTypeReturn = "return"
)

const (
	LogActionLogin          = "login"
	LogActionLogout         = "logout"
	LogActionSale           = "sale"
	LogActionRental         = "rental"
	LogActionReturn         = "return"
	LogActionEmployeeCreate = "employee_create"
	LogActionEmployeeUpdate = "employee_update"
	LogActionEmployeeDelete = "employee_delete"
)
