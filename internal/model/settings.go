package model

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Default settings values.
var (
	DefaultPivaThreshold = decimal.NewFromInt(5000)
	DefaultMonthlyTarget = decimal.NewFromInt(165)
)

// DefaultCurrency is the currency code used when none is configured.
const DefaultCurrency = "EUR"

// Settings holds the user's business thresholds (singleton).
type Settings struct {
	PivaThreshold   decimal.Decimal `json:"pivaThreshold" validate:"gt=0"`
	MonthlyTarget   decimal.Decimal `json:"monthlyTarget" validate:"gte=0"`
	Currency        string          `json:"currency" validate:"omitempty,len=3"`
	ExtraCategories []string        `json:"extraCategories" validate:"dive,required,max=32"`
}

// DefaultSettings returns the factory settings.
func DefaultSettings() *Settings {
	return &Settings{
		PivaThreshold: DefaultPivaThreshold,
		MonthlyTarget: DefaultMonthlyTarget,
		Currency:      DefaultCurrency,
	}
}

// Categories returns the built-in categories followed by the extra ones.
func (s *Settings) Categories() []string {
	out := slices.Clone(DefaultCategories)
	for _, c := range s.ExtraCategories {
		if !slices.ContainsFunc(out, func(e string) bool { return strings.EqualFold(e, c) }) {
			out = append(out, c)
		}
	}
	return out
}

// HasCategory reports whether name is a known category (case-insensitive).
func (s *Settings) HasCategory(name string) bool {
	return slices.ContainsFunc(s.Categories(), func(c string) bool {
		return strings.EqualFold(c, name)
	})
}

// CurrencyCode returns the configured currency or the default.
func (s *Settings) CurrencyCode() string {
	if s.Currency == "" {
		return DefaultCurrency
	}
	return s.Currency
}
