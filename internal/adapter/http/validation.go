package http

import (
	"reflect"
	"regexp"

	"credit-voucher-engine/internal/domain/voucher"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx answer. Allowed lists the
// statuses an operation is legal from when it was refused for the current one.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
	Allowed []string     `json:"allowed,omitempty"`
}

var (
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
	reIdent = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,32}$`)
)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// money reaches the validator as its exact decimal string; zero reads as
	// empty so required rejects it
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		d, ok := f.Interface().(decimal.Decimal)
		if !ok || d.IsZero() {
			return ""
		}
		return d.String()
	}, decimal.Decimal{})

	// loan, voucher and delegation ids
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return reHex32.MatchString(fl.Field().String())
	})
	// restaurant, trader and operator ids
	_ = v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return reIdent.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("dec2", func(fl validator.FieldLevel) bool {
		d, ok := money(fl.Field().String())
		return ok && d.Equal(d.Round(2))
	})
	_ = v.RegisterValidation("dgt", func(fl validator.FieldLevel) bool {
		d, ok := money(fl.Field().String())
		bound, err := decimal.NewFromString(fl.Param())
		return ok && err == nil && d.GreaterThan(bound)
	})
	_ = v.RegisterValidation("dgte", func(fl validator.FieldLevel) bool {
		d, ok := money(fl.Field().String())
		bound, err := decimal.NewFromString(fl.Param())
		return ok && err == nil && d.GreaterThanOrEqual(bound)
	})
	_ = v.RegisterValidation("voucher_type", func(fl validator.FieldLevel) bool {
		_, ok := voucher.ParseType(fl.Field().String())
		return ok
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

func money(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(s)
	return d, err == nil
}

// ToFieldErrors maps validator.ValidationErrors to readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "hex32":
			out = append(out, FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "ident":
			out = append(out, FieldError{Field: field, Message: "must be 1-32 letters, digits or _.:-"})
		case "dec2":
			out = append(out, FieldError{Field: field, Message: "must have at most 2 decimal places"})
		case "voucher_type":
			out = append(out, FieldError{Field: field, Message: "must be a known voucher type such as DISCOUNT_20"})
		case "gt", "dgt":
			out = append(out, FieldError{Field: field, Message: "must be greater than " + e.Param()})
		case "gte", "dgte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param() + " characters"})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
