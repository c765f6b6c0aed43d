// Package form is a small draft/validate/submit engine shared by the console's
// employee and payment editors.
package form

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"hradmin/internal/domain/core"
)

var (
	ErrClosed       = errors.New("form is not open")
	ErrUnknownField = errors.New("unknown field")
	ErrReadOnly     = errors.New("field is read-only")
)

var rules = sync.OnceValue(func() *validator.Validate {
	v := validator.New()
	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	must("emailshape", func(fl validator.FieldLevel) bool {
		return core.ValidEmail(fl.Field().String())
	})
	must("amount", func(fl validator.FieldLevel) bool {
		_, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil
	})
	must("positive", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil && d.IsPositive()
	})
	must("nonnegative", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil && !d.IsNegative()
	})
	return v
})

// Field binds one string-valued draft attribute to its rules.
type Field[T any] struct {
	Name string
	Get  func(*T) string
	Set  func(*T, string)
	// Rules is a validator tag string, e.g. "required,emailshape".
	Rules   string
	Message string
	// Live fields are validated on every change, not only on submit.
	Live      bool
	ReadOnly  bool
	Normalize func(string) string
}

type Schema[T any] struct {
	Fields   []Field[T]
	Defaults func() T
	// Derive recomputes read-only fields from their sources.
	Derive func(*T)
}

// Outcome is what the caller gets back when the form finishes. Submitted is
// false when the form was closed without submitting.
type Outcome[T any] struct {
	Draft     T
	Submitted bool
}

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

type Form[T any] struct {
	schema Schema[T]
	draft  T
	errors map[string]string
	open   bool
}

func New[T any](schema Schema[T]) *Form[T] {
	f := &Form[T]{schema: schema}
	f.reset()
	return f
}

// Open seeds the draft from initial, or from the schema defaults when nil.
func (f *Form[T]) Open(initial *T) {
	if initial != nil {
		f.draft = *initial
	} else {
		f.draft = f.defaults()
	}
	f.derive()
	f.errors = map[string]string{}
	f.open = true
}

func (f *Form[T]) IsOpen() bool { return f.open }

func (f *Form[T]) Draft() T { return f.draft }

func (f *Form[T]) Value(name string) string {
	field, ok := f.field(name)
	if !ok {
		return ""
	}
	return field.Get(&f.draft)
}

// Errors returns a copy of the per-field error map.
func (f *Form[T]) Errors() map[string]string {
	return maps.Clone(f.errors)
}

// OnFieldChange applies value to the draft. Validation failures on live
// fields are recorded in Errors and never block the change itself.
func (f *Form[T]) OnFieldChange(name, value string) error {
	if !f.open {
		return ErrClosed
	}
	field, ok := f.field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if field.ReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, name)
	}
	if field.Normalize != nil {
		value = field.Normalize(value)
	}
	field.Set(&f.draft, value)
	f.derive()

	if field.Live {
		if msg, bad := check(field, value); bad {
			f.errors[name] = msg
		} else {
			delete(f.errors, name)
		}
	}
	return nil
}

// Submit re-runs every rule. On failure the error map is refreshed and the
// form stays open; on success the draft is returned and the form resets.
func (f *Form[T]) Submit() (Outcome[T], error) {
	if !f.open {
		return Outcome[T]{}, ErrClosed
	}
	f.derive()
	errs := map[string]string{}
	for _, field := range f.schema.Fields {
		if msg, bad := check(field, field.Get(&f.draft)); bad {
			errs[field.Name] = msg
		}
	}
	f.errors = errs
	if len(errs) > 0 {
		return Outcome[T]{}, &ValidationError{Fields: maps.Clone(errs)}
	}

	out := Outcome[T]{Draft: f.draft, Submitted: true}
	f.reset()
	return out, nil
}

func (f *Form[T]) Close() Outcome[T] {
	f.reset()
	return Outcome[T]{}
}

func (f *Form[T]) reset() {
	f.draft = f.defaults()
	f.errors = map[string]string{}
	f.open = false
}

func (f *Form[T]) defaults() T {
	if f.schema.Defaults == nil {
		var zero T
		return zero
	}
	return f.schema.Defaults()
}

func (f *Form[T]) derive() {
	if f.schema.Derive != nil {
		f.schema.Derive(&f.draft)
	}
}

func (f *Form[T]) field(name string) (Field[T], bool) {
	for _, field := range f.schema.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field[T]{}, false
}

func check[T any](field Field[T], value string) (string, bool) {
	if field.Rules == "" {
		return "", false
	}
	if err := rules().Var(value, field.Rules); err != nil {
		if field.Message != "" {
			return field.Message, true
		}
		return "is invalid", true
	}
	return "", false
}
