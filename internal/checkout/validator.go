package checkout

import (
	"sort"

	"github.com/go-playground/validator/v10"
)

// Result is the outcome of validating a whole form.
type Result struct {
	Errors map[Field]string `json:"errors"`
}

// Valid reports whether no field failed.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Error returns the message for field, or "".
func (r Result) Error(field Field) string {
	return r.Errors[field]
}

// Fields returns the failing fields sorted by name.
func (r Result) Fields() []Field {
	out := make([]Field, 0, len(r.Errors))
	for f := range r.Errors {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validator evaluates a form against a rule table.
type Validator struct {
	rules      []Rule
	dependents map[Field][]Field
}

// NewValidator returns a validator over DefaultRules.
func NewValidator() *Validator {
	return NewValidatorWithRules(DefaultRules(validator.New()))
}

// NewValidatorWithRules returns a validator over the provided rule table.
func NewValidatorWithRules(rules []Rule) *Validator {
	v := &Validator{rules: append([]Rule(nil), rules...), dependents: map[Field][]Field{}}
	seen := map[[2]Field]bool{}
	for _, r := range v.rules {
		for _, dep := range r.DependsOn {
			key := [2]Field{dep, r.Field}
			if seen[key] {
				continue
			}
			seen[key] = true
			v.dependents[dep] = append(v.dependents[dep], r.Field)
		}
	}
	return v
}

// Rules returns a copy of the rule table.
func (v *Validator) Rules() []Rule {
	return append([]Rule(nil), v.rules...)
}

// ValidateField returns the message of the first failing rule for field, or
// "" when the field is valid. Conditional rules that do not apply are skipped.
func (v *Validator) ValidateField(form Form, field Field) string {
	for _, r := range v.rules {
		if r.Field != field || !r.applies(form) {
			continue
		}
		if !r.Check(form) {
			return r.Message
		}
	}
	return ""
}

// Validate evaluates every field and reports all failures at once.
func (v *Validator) Validate(form Form) Result {
	res := Result{Errors: map[Field]string{}}
	for _, r := range v.rules {
		if _, failed := res.Errors[r.Field]; failed || !r.applies(form) {
			continue
		}
		if !r.Check(form) {
			res.Errors[r.Field] = r.Message
		}
	}
	return res
}

// Dependents lists fields whose rules must be re-evaluated when field changes.
func (v *Validator) Dependents(field Field) []Field {
	return append([]Field(nil), v.dependents[field]...)
}
