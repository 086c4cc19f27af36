package checkout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownField is returned when a field name is not part of the form.
var ErrUnknownField = errors.New("unknown checkout field")

// ErrInvalidValue is returned when a value cannot be assigned to a field.
var ErrInvalidValue = errors.New("invalid checkout field value")

// Field names a checkout form field. Names match the JSON keys.
type Field string

const (
	FieldEmail          Field = "email"
	FieldFirstName      Field = "firstName"
	FieldLastName       Field = "lastName"
	FieldAddress        Field = "address"
	FieldApartment      Field = "apartment"
	FieldCity           Field = "city"
	FieldCountry        Field = "country"
	FieldPostalCode     Field = "postalCode"
	FieldPhone          Field = "phone"
	FieldShippingMethod Field = "shippingMethod"
	FieldPaymentMethod  Field = "paymentMethod"
	FieldCardNumber     Field = "cardNumber"
	FieldCardExpiry     Field = "cardExpiry"
	FieldCardCvc        Field = "cardCvc"
	FieldSaveInfo       Field = "saveInfo"
	FieldAgreeTerms     Field = "agreeTerms"
)

// Fields lists every form field in display order.
func Fields() []Field {
	return []Field{
		FieldEmail, FieldFirstName, FieldLastName, FieldAddress, FieldApartment,
		FieldCity, FieldCountry, FieldPostalCode, FieldPhone, FieldShippingMethod,
		FieldPaymentMethod, FieldCardNumber, FieldCardExpiry, FieldCardCvc,
		FieldSaveInfo, FieldAgreeTerms,
	}
}

// ShippingMethod enumerates delivery speeds.
type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

// PaymentMethod enumerates accepted payment methods.
type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "creditCard"
	PaymentPaypal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bankTransfer"
)

// Form holds the shopper-entered checkout fields. It is a value type: copies
// are independent snapshots.
type Form struct {
	Email          string         `json:"email"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Address        string         `json:"address"`
	Apartment      string         `json:"apartment,omitempty"`
	City           string         `json:"city"`
	Country        string         `json:"country"`
	PostalCode     string         `json:"postalCode"`
	Phone          string         `json:"phone,omitempty"`
	ShippingMethod ShippingMethod `json:"shippingMethod"`
	PaymentMethod  PaymentMethod  `json:"paymentMethod"`
	CardNumber     string         `json:"cardNumber,omitempty"`
	CardExpiry     string         `json:"cardExpiry,omitempty"`
	CardCvc        string         `json:"cardCvc,omitempty"`
	SaveInfo       bool           `json:"saveInfo"`
	AgreeTerms     bool           `json:"agreeTerms"`
}

// NewForm returns a form populated with the checkout defaults.
func NewForm() Form {
	return Form{
		Country:        "US",
		ShippingMethod: ShippingStandard,
		PaymentMethod:  PaymentCreditCard,
	}
}

// Set assigns a raw value to the named field. Boolean fields accept the
// strconv.ParseBool spellings.
func (f *Form) Set(field Field, value string) error {
	if ptr := f.text(field); ptr != nil {
		*ptr = value
		return nil
	}
	switch field {
	case FieldShippingMethod:
		f.ShippingMethod = ShippingMethod(strings.TrimSpace(value))
	case FieldPaymentMethod:
		f.PaymentMethod = PaymentMethod(strings.TrimSpace(value))
	case FieldSaveInfo, FieldAgreeTerms:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: %w", field, ErrInvalidValue)
		}
		if field == FieldSaveInfo {
			f.SaveInfo = b
		} else {
			f.AgreeTerms = b
		}
	default:
		return fmt.Errorf("%q: %w", field, ErrUnknownField)
	}
	return nil
}

// Value returns the field rendered as a string.
func (f Form) Value(field Field) (string, error) {
	if ptr := f.text(field); ptr != nil {
		return *ptr, nil
	}
	switch field {
	case FieldShippingMethod:
		return string(f.ShippingMethod), nil
	case FieldPaymentMethod:
		return string(f.PaymentMethod), nil
	case FieldSaveInfo:
		return strconv.FormatBool(f.SaveInfo), nil
	case FieldAgreeTerms:
		return strconv.FormatBool(f.AgreeTerms), nil
	default:
		return "", fmt.Errorf("%q: %w", field, ErrUnknownField)
	}
}

// FullName joins first and last name.
func (f Form) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName))
}

// Redacted returns a copy safe to log or forward: card data is masked.
func (f Form) Redacted() Form {
	out := f
	if n := len(strings.ReplaceAll(f.CardNumber, " ", "")); n > 0 {
		digits := strings.ReplaceAll(f.CardNumber, " ", "")
		if n > 4 {
			out.CardNumber = strings.Repeat("*", n-4) + digits[n-4:]
		} else {
			out.CardNumber = strings.Repeat("*", n)
		}
	}
	if f.CardCvc != "" {
		out.CardCvc = "***"
	}
	return out
}

func (f *Form) text(field Field) *string {
	switch field {
	case FieldEmail:
		return &f.Email
	case FieldFirstName:
		return &f.FirstName
	case FieldLastName:
		return &f.LastName
	case FieldAddress:
		return &f.Address
	case FieldApartment:
		return &f.Apartment
	case FieldCity:
		return &f.City
	case FieldCountry:
		return &f.Country
	case FieldPostalCode:
		return &f.PostalCode
	case FieldPhone:
		return &f.Phone
	case FieldCardNumber:
		return &f.CardNumber
	case FieldCardExpiry:
		return &f.CardExpiry
	case FieldCardCvc:
		return &f.CardCvc
	default:
		return nil
	}
}
