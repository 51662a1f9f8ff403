package domain

import (
	"github.com/shopspring/decimal"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresAt   string   `json:"expires_at"`
	Employee    Employee `json:"employee"`
}

type CustomerVerifyRequest struct {
	Phone string `json:"phone" validate:"required,phone"`
}

type CouponValidateRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

type CouponCheck struct {
	Code         string          `json:"code"`
	Valid        bool            `json:"valid"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
}

// PaymentRequest describes how the customer pays. Card payments send the full
// card number; only the last four digits are ever stored.
type PaymentRequest struct {
	Method       string          `json:"method" validate:"required,oneof=cash card"`
	CashReceived decimal.Decimal `json:"cash_received"`
	CardNumber   string          `json:"card_number,omitempty"`
	Cashback     decimal.Decimal `json:"cashback"`
}

type SaleQuoteRequest struct {
	Items      []CartItemRef `json:"items" validate:"required,min=1,max=200,dive"`
	CouponCode string        `json:"coupon_code" validate:"omitempty,max=32"`
}

type SaleRequest struct {
	Items          []CartItemRef  `json:"items" validate:"required,min=1,max=200,dive"`
	CouponCode     string         `json:"coupon_code" validate:"omitempty,max=32"`
	Payment        PaymentRequest `json:"payment"`
	IdempotencyKey string         `json:"idempotency_key" validate:"omitempty,max=128"`
}

type RentalQuoteRequest struct {
	CustomerPhone string        `json:"customer_phone" validate:"required,phone"`
	ReturnDate    string        `json:"return_date" validate:"required,datetime=2006-01-02"`
	Items         []CartItemRef `json:"items" validate:"required,min=1,max=200,dive"`
}

type RentalRequest struct {
	CustomerPhone  string         `json:"customer_phone" validate:"required,phone"`
	ReturnDate     string         `json:"return_date" validate:"required,datetime=2006-01-02"`
	Items          []CartItemRef  `json:"items" validate:"required,min=1,max=200,dive"`
	Payment        PaymentRequest `json:"payment"`
	IdempotencyKey string         `json:"idempotency_key" validate:"omitempty,max=128"`
}

type ReturnSelection struct {
	RentalItemID string `json:"rental_item_id" validate:"required,max=64"`
}

type ReturnRequest struct {
	CustomerPhone string            `json:"customer_phone" validate:"required,phone"`
	Mode          string            `json:"mode" validate:"required,oneof=late_fee unsatisfied"`
	Items         []ReturnSelection `json:"items" validate:"required,min=1,max=200,dive"`
}

type EmployeeCreateRequest struct {
	Username string `json:"username" validate:"required,username"`
	Name     string `json:"name" validate:"required,personname"`
	Password string `json:"password" validate:"required,password"`
	Position string `json:"position" validate:"required,position"`
}

type EmployeeUpdateRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,personname"`
	Password *string `json:"password,omitempty" validate:"omitempty,password"`
	Position *string `json:"position,omitempty" validate:"omitempty,position"`
}

type DraftSaveRequest struct {
	Type          string        `json:"type" validate:"required,oneof=sale rental return"`
	Cart          []CartItemRef `json:"cart" validate:"max=200,dive"`
	CustomerPhone string        `json:"customer_phone,omitempty" validate:"omitempty,phone"`
	ReturnDate    string        `json:"return_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type TodayStats struct {
	Date          string          `json:"date"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	SaleCount     int             `json:"sale_count"`
	ActiveRentals int             `json:"active_rentals"`
}
