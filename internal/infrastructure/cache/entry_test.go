package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntryDurationExpired(t *testing.T) {
	stored := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	entry := NewEntry(nil, stored, 10*time.Minute)

	assert.Equal(t, stored.Add(10*time.Minute), entry.ExpiresAt)
	assert.False(t, entry.DurationExpired(stored))
	assert.False(t, entry.DurationExpired(stored.Add(10*time.Minute-time.Millisecond)))
	assert.True(t, entry.DurationExpired(stored.Add(10*time.Minute)))
	assert.True(t, entry.DurationExpired(stored.Add(time.Hour)))

	t.Run("zero validity is always expired", func(t *testing.T) {
		e := NewEntry(nil, stored, 0)
		assert.True(t, e.DurationExpired(stored))
		assert.True(t, e.Expired(stored))
	})
}

func TestEntryDateRolledOver(t *testing.T) {
	stored := time.Date(2024, 3, 10, 23, 50, 0, 0, time.UTC)
	entry := NewEntry(nil, stored, 24*time.Hour)

	assert.False(t, entry.DateRolledOver(stored.Add(9*time.Minute)))
	assert.True(t, entry.DateRolledOver(stored.Add(10*time.Minute)))

	// duration alone would keep the entry alive
	assert.False(t, entry.DurationExpired(stored.Add(10*time.Minute)))
	assert.True(t, entry.Expired(stored.Add(10*time.Minute)))

	t.Run("evaluated in the stored location", func(t *testing.T) {
		tokyo := time.FixedZone("JST", 9*60*60)
		storedTokyo := time.Date(2024, 3, 10, 8, 0, 0, 0, tokyo)
		e := NewEntry(nil, storedTokyo, 24*time.Hour)

		// 2024-03-10 15:30 UTC is 2024-03-11 00:30 in Tokyo
		now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
		assert.True(t, e.DateRolledOver(now))
	})

	t.Run("earlier date is not a rollover", func(t *testing.T) {
		assert.False(t, entry.DateRolledOver(stored.AddDate(0, 0, -1)))
	})
}
