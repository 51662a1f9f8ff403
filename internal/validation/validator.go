package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	validatorv10 "github.com/go-playground/validator/v10"

	"sagepos/backend/internal/domain"
	"sagepos/backend/internal/store"
)

var (
	phonePattern    = regexp.MustCompile(`^[0-9]{10,11}$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{4,20}$`)
	digitsOnly      = regexp.MustCompile(`^[0-9]+$`)
	namePattern     = regexp.MustCompile(`^[A-Za-z\s'-]{2,100}$`)
	reservedNames   = map[string]struct{}{"admin": {}, "root": {}, "superuser": {}, "test": {}, "demo": {}}
)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

var (
	defaultOnce sync.Once
	defaultV    *validatorv10.Validate
)

// New returns a validator with the POS field rules registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("phone", func(fl validatorv10.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validatorv10.FieldLevel) bool {
		return UsernameProblem(fl.Field().String()) == ""
	})
	_ = v.RegisterValidation("personname", func(fl validatorv10.FieldLevel) bool {
		return NameProblem(fl.Field().String()) == ""
	})
	_ = v.RegisterValidation("password", func(fl validatorv10.FieldLevel) bool {
		return PasswordProblem(fl.Field().String()) == ""
	})
	_ = v.RegisterValidation("position", func(fl validatorv10.FieldLevel) bool {
		position := fl.Field().String()
		return position == domain.PositionAdmin || position == domain.PositionCashier
	})

	v.RegisterStructValidation(paymentStructValidation, domain.PaymentRequest{})

	return v
}

func defaultValidator() *validatorv10.Validate {
	defaultOnce.Do(func() {
		defaultV = New()
	})
	return defaultV
}

// Struct validates value and reports the first failure as a
// *store.ValidationError.
func Struct(value any) error {
	err := defaultValidator().Struct(value)
	if err == nil {
		return nil
	}
	var fieldErrs validatorv10.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return store.Invalid(fieldPath(fe), reason(fe))
	}
	return store.Invalid("", err.Error())
}

func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// NormalizePhone strips the usual separators from a phone number.
func NormalizePhone(phone string) string {
	return stripSeparators(phone)
}

// CardLast4 returns the last four digits of a card number.
func CardLast4(cardNumber string) string {
	digits := stripSeparators(cardNumber)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

func stripSeparators(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch r {
		case ' ', '-', '(', ')', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func UsernameProblem(username string) string {
	switch {
	case !usernamePattern.MatchString(username):
		return "username must be 4-20 letters, numbers or underscores"
	case digitsOnly.MatchString(username):
		return "username cannot be only numbers"
	}
	if _, reserved := reservedNames[strings.ToLower(username)]; reserved {
		return "username cannot be a reserved word"
	}
	return ""
}

func NameProblem(name string) string {
	if !namePattern.MatchString(name) {
		return "name must be 2-100 letters, spaces, hyphens or apostrophes"
	}
	return ""
}

func PasswordProblem(password string) string {
	if len(password) < 8 {
		return "password must be at least 8 characters"
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	switch {
	case !upper:
		return "password must contain an uppercase letter"
	case !lower:
		return "password must contain a lowercase letter"
	case !digit:
		return "password must contain a number"
	case !special:
		return "password must contain a special character"
	}
	return ""
}

func paymentStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(domain.PaymentRequest)
	switch req.Method {
	case domain.PaymentCard:
		digits := stripSeparators(req.CardNumber)
		if len(digits) < 16 || !digitsOnly.MatchString(digits) {
			sl.ReportError(req.CardNumber, "card_number", "CardNumber", "card_number", "")
		}
		if req.Cashback.IsNegative() {
			sl.ReportError(req.Cashback, "cashback", "Cashback", "gte", "0")
		}
	case domain.PaymentCash:
		if req.CashReceived.IsNegative() {
			sl.ReportError(req.CashReceived, "cash_received", "CashReceived", "gte", "0")
		}
	}
}

func fieldPath(fe validatorv10.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func reason(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "phone":
		return "phone number must be 10 or 11 digits"
	case "username":
		return UsernameProblem(valueString(fe.Value()))
	case "personname":
		return NameProblem(valueString(fe.Value()))
	case "password":
		return PasswordProblem(valueString(fe.Value()))
	case "position":
		return "position must be Admin or Cashier"
	case "card_number":
		return "card number must be at least 16 digits"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	}
	return "failed " + fe.Tag() + " check"
}

func valueString(value any) string {
	if ptr, ok := value.(*string); ok {
		if ptr == nil {
			return ""
		}
		return *ptr
	}
	return fmt.Sprint(value)
}
