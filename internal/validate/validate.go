// Package validate provides input validation for creatorbook records.
// Struct rules are declared with `validate` tags on the model types and
// checked with go-playground/validator; failures become errors.ValidationError
// with English messages.
package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shopspring/decimal"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/model"
)

// CategoryFunc reports whether a category name is accepted.
type CategoryFunc func(name string) bool

// Validator checks model structs against their tags.
type Validator struct {
	validate   *validator.Validate
	trans      ut.Translator
	isCategory CategoryFunc
}

// New creates a validator. A nil isCategory accepts the built-in categories.
func New(isCategory CategoryFunc) (*Validator, error) {
	if isCategory == nil {
		isCategory = model.DefaultSettings().HasCategory
	}

	v := &Validator{
		validate:   validator.New(),
		isCategory: isCategory,
	}

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	v.trans, _ = uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(v.validate, v.trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Money fields compare as numbers so gte/gt tags apply to them.
	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	if err := v.validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return v.isCategory(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("failed to register category validation: %w", err)
	}
	if err := v.validate.RegisterTranslation("category", v.trans, func(ut ut.Translator) error {
		return ut.Add("category", "{0} must be a known category", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("category", fe.Field())
		return t
	}); err != nil {
		return nil, fmt.Errorf("failed to register category translation: %w", err)
	}

	return v, nil
}

// MustNew is New for package-level defaults; it panics on setup failure.
func MustNew(isCategory CategoryFunc) *Validator {
	v, err := New(isCategory)
	if err != nil {
		panic(err)
	}
	return v
}

// SetCategoryFunc replaces the category check.
func (v *Validator) SetCategoryFunc(fn CategoryFunc) {
	if fn != nil {
		v.isCategory = fn
	}
}

// Struct validates s and returns a *errors.ValidationError on failure.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &errors.ValidationError{
			Violations: []errors.FieldViolation{{Field: "record", Message: err.Error()}},
			Cause:      err,
		}
	}

	out := &errors.ValidationError{Cause: err}
	for _, fe := range fieldErrs {
		out.Violations = append(out.Violations, errors.FieldViolation{
			Field:   fe.Field(),
			Value:   fmt.Sprint(fe.Value()),
			Message: strings.TrimPrefix(fe.Translate(v.trans), fe.Field()+" "),
		})
	}
	return out
}

// Date validates a YYYY-MM-DD calendar date for field.
func Date(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidationError(field, value, "is a required field")
	}
	if _, err := model.ParseDate(value); err != nil {
		return &errors.ValidationError{
			Violations: []errors.FieldViolation{{Field: field, Value: value, Message: "must be a valid YYYY-MM-DD date"}},
			Cause:      errors.ErrInvalidDate,
		}
	}
	return nil
}

// Amount parses a non-negative decimal amount for field.
func Amount(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(value, ",", ".")))
	if err != nil {
		return decimal.Zero, &errors.ValidationError{
			Violations: []errors.FieldViolation{{Field: field, Value: value, Message: "must be a number"}},
			Cause:      errors.ErrInvalidAmount,
		}
	}
	if d.IsNegative() {
		return decimal.Zero, &errors.ValidationError{
			Violations: []errors.FieldViolation{{Field: field, Value: value, Message: "must be 0 or greater"}},
			Cause:      errors.ErrInvalidAmount,
		}
	}
	return d.Round(2), nil
}
