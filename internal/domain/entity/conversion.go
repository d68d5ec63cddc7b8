package entity

import (
	"errors"
	"time"
)

// Conversion records a performed currency conversion
type Conversion struct {
	ID        string       `json:"id"`
	Source    Money        `json:"source"`
	Result    Money        `json:"result"`
	Rate      ExchangeRate `json:"rate"`
	CreatedAt time.Time    `json:"created_at"`
}

// Validate ensures the conversion is internally consistent
func (c *Conversion) Validate() error {
	if c.ID == "" {
		return errors.New("conversion id is required")
	}

	if !c.Source.Currency.Equal(c.Rate.From) || !c.Result.Currency.Equal(c.Rate.To) {
		return ErrCurrencyMismatch
	}

	return nil
}
