package cache

import (
	"time"

	"github.com/damon-houk/money-calculator/internal/domain/entity"
)

// Entry is an immutable cached exchange rate together with its
// expiration bounds. A stale entry is replaced, never refreshed in place.
type Entry struct {
	Rate       *entity.ExchangeRate
	StoredAt   time.Time
	ExpiresAt  time.Time
	StoredDate time.Time // midnight of StoredAt's calendar day, in StoredAt's location
}

// NewEntry creates an entry stored at storedAt that is valid for validity
func NewEntry(rate *entity.ExchangeRate, storedAt time.Time, validity time.Duration) Entry {
	return Entry{
		Rate:       rate,
		StoredAt:   storedAt,
		ExpiresAt:  storedAt.Add(validity),
		StoredDate: startOfDay(storedAt),
	}
}

// DurationExpired reports whether the validity window has elapsed
func (e Entry) DurationExpired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// DateRolledOver reports whether the calendar date has advanced past the
// day the entry was stored, regardless of the remaining validity window.
func (e Entry) DateRolledOver(now time.Time) bool {
	return startOfDay(now.In(e.StoredDate.Location())).After(e.StoredDate)
}

// Expired combines both expiration rules
func (e Entry) Expired(now time.Time) bool {
	return e.DurationExpired(now) || e.DateRolledOver(now)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
