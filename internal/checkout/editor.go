package checkout

import "sync"

// Editor is the live checkout form: it applies edits field by field and keeps
// inline errors current for the fields the shopper has touched.
type Editor struct {
	mu        sync.Mutex
	validator *Validator
	form      Form
	touched   map[Field]bool
	errors    map[Field]string
}

// NewEditor returns an editor over a default form.
func NewEditor(v *Validator) *Editor {
	if v == nil {
		v = NewValidator()
	}
	return &Editor{
		validator: v,
		form:      NewForm(),
		touched:   map[Field]bool{},
		errors:    map[Field]string{},
	}
}

// Set applies value to field and re-validates it together with every field
// whose rules depend on it. A dependent field is re-checked when it was
// touched or currently shows an error, so switching away from card payment
// clears stale card errors.
func (e *Editor) Set(field Field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setLocked(field, value)
}

// Apply sets several fields in form order. Every value is checked against a
// copy of the form first, so a bad field leaves the form untouched.
func (e *Editor) Apply(values map[Field]string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for field := range values {
		if _, err := e.form.Value(field); err != nil {
			return err
		}
	}
	trial := e.form
	for _, field := range Fields() {
		if value, ok := values[field]; ok {
			if err := trial.Set(field, value); err != nil {
				return err
			}
		}
	}
	for _, field := range Fields() {
		if value, ok := values[field]; ok {
			if err := e.setLocked(field, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// Reveal marks every field touched and shows the whole-form result, as a
// submit attempt does.
func (e *Editor) Reveal() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	res := e.validator.Validate(e.form)
	for _, f := range Fields() {
		e.touched[f] = true
	}
	e.errors = make(map[Field]string, len(res.Errors))
	for f, msg := range res.Errors {
		e.errors[f] = msg
	}
	return res
}

// Show replaces the inline errors with res, typically one returned by a
// rejected submission.
func (e *Editor) Show(res Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errors = make(map[Field]string, len(res.Errors))
	for f, msg := range res.Errors {
		e.errors[f] = msg
		e.touched[f] = true
	}
}

// Errors returns the inline errors currently shown.
func (e *Editor) Errors() map[Field]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[Field]string, len(e.errors))
	for f, msg := range e.errors {
		out[f] = msg
	}
	return out
}

// Snapshot returns an immutable copy of the form.
func (e *Editor) Snapshot() Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

// Reset restores the default form and clears errors.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = NewForm()
	e.touched = map[Field]bool{}
	e.errors = map[Field]string{}
}

func (e *Editor) setLocked(field Field, value string) error {
	if err := e.form.Set(field, value); err != nil {
		return err
	}
	e.touched[field] = true
	e.revalidateLocked(field)
	for _, dep := range e.validator.Dependents(field) {
		if _, shown := e.errors[dep]; e.touched[dep] || shown {
			e.revalidateLocked(dep)
		}
	}
	return nil
}

func (e *Editor) revalidateLocked(field Field) {
	if msg := e.validator.ValidateField(e.form, field); msg != "" {
		e.errors[field] = msg
		return
	}
	delete(e.errors, field)
}
