package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places kept for an amount
const MoneyScale = 2

// maxAmountExponent bounds the decimal exponent accepted before rounding;
// rescaling a value like 1e20000000 would otherwise allocate a huge integer.
const maxAmountExponent = 28

// MaxAmount is the largest amount Money accepts
var MaxAmount = decimal.New(1, 18)

// Money is a non-negative amount in a given currency
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// NewMoney validates the amount and rounds it half-up to cents
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if exp := amount.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return Money{}, fmt.Errorf("%w: amount exponent out of range: %d", ErrInvalidAmount, exp)
	}

	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: amount cannot be negative: %s", ErrInvalidAmount, amount)
	}

	if amount.GreaterThan(MaxAmount) {
		return Money{}, fmt.Errorf("%w: amount exceeds maximum of %s", ErrInvalidAmount, MaxAmount)
	}

	if currency.Code == "" {
		return Money{}, fmt.Errorf("%w: currency is required", ErrInvalidCurrency)
	}

	return Money{Amount: amount.Round(MoneyScale), Currency: currency}, nil
}

// ZeroMoney returns a zero amount in the given currency
func ZeroMoney(currency Currency) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Convert applies the exchange rate, which must start from this currency
func (m Money) Convert(rate *ExchangeRate) (Money, error) {
	if rate == nil {
		return Money{}, fmt.Errorf("%w: rate is required", ErrInvalidExchangeRate)
	}

	if !m.Currency.Equal(rate.From) {
		return Money{}, fmt.Errorf("%w: cannot convert %s with a rate from %s",
			ErrCurrencyMismatch, m.Currency.Code, rate.From.Code)
	}

	return NewMoney(m.Amount.Mul(rate.Rate), rate.To)
}

// Add sums two amounts of the same currency
func (m Money) Add(other Money) (Money, error) {
	if !m.Currency.Equal(other.Currency) {
		return Money{}, fmt.Errorf("%w: cannot add %s and %s",
			ErrCurrencyMismatch, m.Currency.Code, other.Currency.Code)
	}

	return NewMoney(m.Amount.Add(other.Amount), m.Currency)
}

// Subtract removes other from m; the result may not go negative
func (m Money) Subtract(other Money) (Money, error) {
	if !m.Currency.Equal(other.Currency) {
		return Money{}, fmt.Errorf("%w: cannot subtract %s from %s",
			ErrCurrencyMismatch, other.Currency.Code, m.Currency.Code)
	}

	return NewMoney(m.Amount.Sub(other.Amount), m.Currency)
}

// Multiply scales the amount by a non-negative factor
func (m Money) Multiply(factor decimal.Decimal) (Money, error) {
	if factor.IsNegative() {
		return Money{}, fmt.Errorf("%w: cannot multiply by negative factor %s", ErrInvalidAmount, factor)
	}

	return NewMoney(m.Amount.Mul(factor), m.Currency)
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(MoneyScale), m.Currency.Code)
}
