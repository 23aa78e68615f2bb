package app

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dwikikusuma/shoe-store/internal/order/domain"
	"github.com/dwikikusuma/shoe-store/pkg/apperr"
)

type ShippingAddressInput struct {
	Address    string `json:"address" validate:"required,min=5"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode" validate:"required,postalcode"`
	Country    string `json:"country"`
}

type PlaceOrderRequest struct {
	ShippingAddress ShippingAddressInput `json:"shippingAddress"`
	PaymentMethod   string               `json:"paymentMethod" validate:"required,oneof=stripe paypal"`
}

// postal code formats; a code is accepted when any of them matches
var postalCodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{5}(-\d{4})?$`),                                         // US
	regexp.MustCompile(`^[ABCEGHJKLMNPRSTVXY]\d[A-Z] ?\d[A-Z]\d$`),                 // CA
	regexp.MustCompile(`^(GIR ?0AA|[A-Z]{1,2}\d[A-Z\d]? ?\d[ABD-HJLNP-UW-Z]{2})$`), // GB
	regexp.MustCompile(`^\d{3}-\d{4}$`),                                            // JP
	regexp.MustCompile(`^\d{4}$`),                                                  // AU, AT, BE, CH, DK, NO, ...
	regexp.MustCompile(`^\d{6}$`),                                                  // IN, CN, RU, SG, ...
	regexp.MustCompile(`^\d{3} ?\d{2}$`),                                           // SE, CZ, GR, SK
	regexp.MustCompile(`^\d{4} ?[A-Z]{2}$`),                                        // NL
	regexp.MustCompile(`^\d{5}-?\d{3}$`),                                           // BR
	regexp.MustCompile(`^\d{2}-\d{3}$`),                                            // PL
	regexp.MustCompile(`^\d{4}-\d{3}$`),                                            // PT
	regexp.MustCompile(`^[A-Z]\d{2} ?[A-Z\d]{4}$`),                                 // IE
	regexp.MustCompile(`^\d{7}$`),                                                  // IL
}

func isPostalCode(s string) bool {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, re := range postalCodePatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("postalcode", func(fl validator.FieldLevel) bool {
		return isPostalCode(fl.Field().String())
	})
	return v
}

// normalize trims every field before validation.
func (r PlaceOrderRequest) normalize() PlaceOrderRequest {
	r.ShippingAddress.Address = strings.TrimSpace(r.ShippingAddress.Address)
	r.ShippingAddress.City = strings.TrimSpace(r.ShippingAddress.City)
	r.ShippingAddress.PostalCode = strings.ToUpper(strings.TrimSpace(r.ShippingAddress.PostalCode))
	r.ShippingAddress.Country = strings.TrimSpace(r.ShippingAddress.Country)
	r.PaymentMethod = strings.ToLower(strings.TrimSpace(r.PaymentMethod))
	return r
}

// Validate returns the normalized request or a ValidationError naming the
// first offending field.
func (r PlaceOrderRequest) Validate() (PlaceOrderRequest, error) {
	r = r.normalize()
	err := validate.Struct(r)
	if err == nil {
		return r, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return r, apperr.Validation("", err.Error())
	}

	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	return r, apperr.Validation(field, message(fe))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "postalcode":
		return "is not a valid postal code"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

func (r PlaceOrderRequest) shippingAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		Address:    r.ShippingAddress.Address,
		City:       r.ShippingAddress.City,
		PostalCode: r.ShippingAddress.PostalCode,
		Country:    r.ShippingAddress.Country,
	}
}
