package checkout

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Rule is one row of the checkout rule table: a predicate over the form and
// the message shown on the field when it does not hold.
type Rule struct {
	Field   Field
	Message string
	// Check reports whether the rule is satisfied.
	Check func(Form) bool
	// When limits the rule to forms where it returns true. Nil means always.
	When func(Form) bool
	// DependsOn lists other fields read by When or Check.
	DependsOn []Field
}

func (r Rule) applies(f Form) bool {
	return r.When == nil || r.When(f)
}

// DefaultRules builds the storefront checkout rule table. Syntax and
// enumeration predicates delegate to validate.
func DefaultRules(validate *validator.Validate) []Rule {
	tag := func(value, tag string) bool {
		return validate.Var(value, tag) == nil
	}
	required := func(field Field, message string) Rule {
		return Rule{Field: field, Message: message, Check: func(f Form) bool {
			v, _ := f.Value(field)
			return strings.TrimSpace(v) != ""
		}}
	}
	payingByCard := func(f Form) bool { return f.PaymentMethod == PaymentCreditCard }
	requiredForCard := func(field Field, message string) Rule {
		r := required(field, message)
		r.When = payingByCard
		r.DependsOn = []Field{FieldPaymentMethod}
		return r
	}

	return []Rule{
		required(FieldEmail, "Email is required."),
		{Field: FieldEmail, Message: "Invalid email address.", Check: func(f Form) bool {
			return tag(strings.TrimSpace(f.Email), "email")
		}},
		required(FieldFirstName, "First name is required."),
		required(FieldLastName, "Last name is required."),
		required(FieldAddress, "Address is required."),
		required(FieldCity, "City is required."),
		required(FieldCountry, "Country is required."),
		required(FieldPostalCode, "Postal code is required."),
		{Field: FieldShippingMethod, Message: "Please select a shipping method.", Check: func(f Form) bool {
			return tag(string(f.ShippingMethod), "required,oneof=standard express")
		}},
		{Field: FieldPaymentMethod, Message: "Please select a payment method.", Check: func(f Form) bool {
			return tag(string(f.PaymentMethod), "required,oneof=creditCard paypal bankTransfer")
		}},
		requiredForCard(FieldCardNumber, "Card number is required."),
		requiredForCard(FieldCardExpiry, "Expiry date is required."),
		requiredForCard(FieldCardCvc, "CVC is required."),
		{Field: FieldAgreeTerms, Message: "You must agree to the terms and conditions.", Check: func(f Form) bool {
			return f.AgreeTerms
		}},
	}
}
