package entity

import (
	"fmt"
	"strings"
)

// CurrencyCodeLength is the length of an ISO 4217 alphabetic code
const CurrencyCodeLength = 3

// Currency represents an ISO 4217 currency
type Currency struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewCurrency creates a currency, normalizing the code to upper case
func NewCurrency(code, name string) (Currency, error) {
	normalized, err := NormalizeCode(code)
	if err != nil {
		return Currency{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return Currency{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidCurrency)
	}

	return Currency{Code: normalized, Name: name}, nil
}

// NormalizeCode trims and upper-cases a currency code and checks its length
func NormalizeCode(code string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		return "", fmt.Errorf("%w: code cannot be empty", ErrInvalidCurrency)
	}

	if len(trimmed) != CurrencyCodeLength {
		return "", fmt.Errorf("%w: code must be exactly %d characters, got %q",
			ErrInvalidCurrency, CurrencyCodeLength, code)
	}

	return trimmed, nil
}

// Equal reports whether both currencies share the same code
func (c Currency) Equal(other Currency) bool {
	return c.Code == other.Code
}

func (c Currency) String() string {
	return fmt.Sprintf("%s (%s)", c.Code, c.Name)
}
