// Package receipt renders committed transactions for display and for ESC/POS
// thermal printers. This is the only place amounts are rounded.
package receipt

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sagepos/backend/internal/domain"
)

const (
	storeName = "SG Technologies"
	width     = 32
)

var (
	escposInit = []byte{0x1b, 0x40}
	escposCut  = []byte{0x1d, 0x56, 0x41, 0x10}
)

type Receipt struct {
	Type          string   `json:"type"`
	TransactionID string   `json:"transaction_id"`
	Lines         []string `json:"lines"`
	PreviewText   string   `json:"preview_text"`
	EscposBase64  string   `json:"escpos_base64"`
	FileName      string   `json:"file_name"`
}

type Item struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
	Total    decimal.Decimal
}

// Input carries everything printed on a receipt. Zero amounts are omitted,
// except subtotal and total.
type Input struct {
	Type          string
	TransactionID string
	CreatedAt     time.Time
	EmployeeName  string
	CustomerPhone string
	Items         []Item
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	LateFees      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	CashReceived  decimal.Decimal
	Change        decimal.Decimal
	Cashback      decimal.Decimal
	ReturnDate    string
}

func Build(in Input) Receipt {
	lines := []string{
		center(storeName),
		center(title(in.Type)),
		strings.Repeat("=", width),
	}
	if in.TransactionID != "" {
		lines = append(lines, "TX: "+in.TransactionID)
	}
	lines = append(lines, "Date: "+in.CreatedAt.Format("2006-01-02 15:04:05"))
	if in.EmployeeName != "" {
		lines = append(lines, "Cashier: "+in.EmployeeName)
	}
	if in.CustomerPhone != "" {
		lines = append(lines, "Customer: "+in.CustomerPhone)
	}
	lines = append(lines, strings.Repeat("-", width))

	for _, item := range in.Items {
		lines = append(lines, item.Name)
		lines = append(lines, row(fmt.Sprintf("  %d x %s", item.Quantity, Money(item.Price)), Money(item.Total)))
	}

	lines = append(lines, strings.Repeat("-", width))
	lines = append(lines, row("Subtotal", Money(in.Subtotal)))
	if in.Discount.IsPositive() {
		lines = append(lines, row("Discount", "-"+Money(in.Discount)))
	}
	if in.Tax.IsPositive() {
		lines = append(lines, row("Tax", Money(in.Tax)))
	}
	if in.LateFees.IsPositive() {
		lines = append(lines, row("Late Fees", Money(in.LateFees)))
	}
	lines = append(lines, row("Total", Money(in.Total)))

	if in.PaymentMethod != "" {
		lines = append(lines, row("Payment", in.PaymentMethod))
	}
	if in.CashReceived.IsPositive() {
		lines = append(lines, row("Cash Received", Money(in.CashReceived)))
		if in.Change.IsPositive() {
			lines = append(lines, row("Change", Money(in.Change)))
		}
	}
	if in.Cashback.IsPositive() {
		lines = append(lines, row("Cashback Given", Money(in.Cashback)))
	}
	if in.ReturnDate != "" {
		lines = append(lines, row("Return By", in.ReturnDate))
	}
	lines = append(lines,
		strings.Repeat("=", width),
		center("Thank you for your business!"),
		"",
	)

	escpos := append([]byte{}, escposInit...)
	for _, line := range lines {
		escpos = append(escpos, []byte(line)...)
		escpos = append(escpos, '\n')
	}
	escpos = append(escpos, escposCut...)

	return Receipt{
		Type:          in.Type,
		TransactionID: in.TransactionID,
		Lines:         lines,
		PreviewText:   strings.Join(lines, "\n"),
		EscposBase64:  base64.StdEncoding.EncodeToString(escpos),
		FileName:      fmt.Sprintf("receipt-%s.bin", in.TransactionID),
	}
}

func ForSale(sale domain.SalesTransaction, employeeName string) Receipt {
	items := make([]Item, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, Item{Name: itemName(item.Name, item.ProductID), Quantity: item.Quantity, Price: item.Price, Total: item.Subtotal})
	}
	return Build(Input{
		Type:          domain.TransactionTypeSale,
		TransactionID: sale.ID,
		CreatedAt:     sale.CreatedAt,
		EmployeeName:  employeeName,
		Items:         items,
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		Tax:           sale.Tax,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		CashReceived:  sale.CashReceived,
		Change:        sale.Change,
		Cashback:      sale.Cashback,
	})
}

func ForRental(rental domain.RentalTransaction, customerPhone string, employeeName string) Receipt {
	items := make([]Item, 0, len(rental.Items))
	for _, item := range rental.Items {
		items = append(items, Item{Name: itemName(item.Name, item.ProductID), Quantity: item.Quantity, Price: item.RentalPrice, Total: item.Subtotal})
	}
	return Build(Input{
		Type:          domain.TransactionTypeRental,
		TransactionID: rental.ID,
		CreatedAt:     rental.CreatedAt,
		EmployeeName:  employeeName,
		CustomerPhone: customerPhone,
		Items:         items,
		Subtotal:      rental.Total,
		Total:         rental.Total,
		PaymentMethod: rental.PaymentMethod,
		ReturnDate:    rental.ReturnDate.Format("2006-01-02"),
	})
}

// ReturnItem is one printed line of a return receipt.
type ReturnItem struct {
	Name        string
	Quantity    int
	RentalPrice decimal.Decimal
	LateFee     decimal.Decimal
}

// ForReturn prints every return row created by one return commit on a single
// receipt. In unsatisfied mode the lines show the refunded prices.
func ForReturn(returns []domain.ReturnTransaction, items []ReturnItem, mode string, customerPhone string, employeeName string) Receipt {
	ids := make([]string, 0, len(returns))
	lateFees := decimal.Zero
	refund := decimal.Zero
	createdAt := time.Now().UTC()
	for i, ret := range returns {
		ids = append(ids, ret.ID)
		lateFees = lateFees.Add(ret.LateFees)
		refund = refund.Add(ret.RefundAmount)
		if i == 0 {
			createdAt = ret.CreatedAt
		}
	}

	printed := make([]Item, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		amount := item.LateFee
		if mode == domain.ReturnModeUnsatisfied {
			amount = item.RentalPrice
		}
		subtotal = subtotal.Add(amount)
		printed = append(printed, Item{Name: item.Name, Quantity: item.Quantity, Price: item.RentalPrice, Total: amount})
	}

	total := lateFees
	if mode == domain.ReturnModeUnsatisfied {
		total = refund.Neg()
	}

	return Build(Input{
		Type:          domain.TransactionTypeReturn,
		TransactionID: strings.Join(ids, ","),
		CreatedAt:     createdAt,
		EmployeeName:  employeeName,
		CustomerPhone: customerPhone,
		Items:         printed,
		Subtotal:      subtotal,
		LateFees:      lateFees,
		Total:         total,
	})
}

// Money formats an amount rounded to cents, e.g. "$2.86" or "-$42.50".
func Money(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Neg().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

func title(txType string) string {
	switch txType {
	case domain.TransactionTypeRental:
		return "Rental Receipt"
	case domain.TransactionTypeReturn:
		return "Return Receipt"
	default:
		return "Sales Receipt"
	}
}

func itemName(name string, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

func row(label string, value string) string {
	gap := width - len(label) - len(value)
	if gap < 1 {
		gap = 1
	}
	return label + strings.Repeat(" ", gap) + value
}

func center(text string) string {
	pad := (width - len(text)) / 2
	if pad < 1 {
		return text
	}
	return strings.Repeat(" ", pad) + text
}
