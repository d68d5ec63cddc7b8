// Package cache provides a time-based caching decorator for exchange rate lookups
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/damon-houk/money-calculator/internal/domain/entity"
	"github.com/damon-houk/money-calculator/internal/domain/repository"
	"github.com/damon-houk/money-calculator/internal/infrastructure/logger"
)

// DefaultValidityMinutes is used by NewDefaultRateCache
const DefaultValidityMinutes = 30

var (
	// ErrInvalidConfiguration is returned when a cache is constructed with bad arguments
	ErrInvalidConfiguration = errors.New("invalid cache configuration")

	// ErrMissingCurrency is returned when a lookup is missing a currency code
	ErrMissingCurrency = errors.New("currency is required")
)

// CurrencyPair is the directional cache key; USD->EUR and EUR->USD are distinct
type CurrencyPair struct {
	From string
	To   string
}

func (p CurrencyPair) String() string {
	return p.From + "->" + p.To
}

// Stats is a read-only snapshot of the cache
type Stats struct {
	Size            int `json:"size"`
	ValidityMinutes int `json:"validity_minutes"`
}

func (s Stats) String() string {
	return fmt.Sprintf("Cache size: %d entries, Validity: %d minutes", s.Size, s.ValidityMinutes)
}

// Option configures a RateCache
type Option func(*RateCache)

// WithLogger sets the logger used for hit/miss diagnostics
func WithLogger(log logger.Logger) Option {
	return func(c *RateCache) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m Metrics) Option {
	return func(c *RateCache) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *RateCache) {
		if now != nil {
			c.now = now
		}
	}
}

// RateCache wraps an ExchangeRateProvider and memoizes its rates per
// currency pair. An entry expires when its validity window elapses or when
// the calendar date changes, whichever comes first.
//
// The cache never spawns goroutines. A miss calls the source on the
// caller's goroutine; concurrent misses for the same pair may both reach
// the source, and the last successful store wins.
type RateCache struct {
	source          repository.ExchangeRateProvider
	validity        time.Duration
	validityMinutes int
	entries         map[CurrencyPair]Entry
	mutex           sync.RWMutex
	logger          logger.Logger
	metrics         Metrics
	now             func() time.Time
}

var _ repository.ExchangeRateProvider = (*RateCache)(nil)

// NewRateCache creates a cache in front of source whose entries stay valid
// for validityMinutes. Zero disables caching; negative values are rejected.
func NewRateCache(source repository.ExchangeRateProvider, validityMinutes int, opts ...Option) (*RateCache, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: rate source cannot be nil", ErrInvalidConfiguration)
	}

	if validityMinutes < 0 {
		return nil, fmt.Errorf("%w: validity must be non-negative, got %d minutes",
			ErrInvalidConfiguration, validityMinutes)
	}

	c := &RateCache{
		source:          source,
		validity:        time.Duration(validityMinutes) * time.Minute,
		validityMinutes: validityMinutes,
		entries:         make(map[CurrencyPair]Entry),
		logger:          logger.NewNopLogger(),
		metrics:         NoopMetrics{},
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NewDefaultRateCache creates a cache with DefaultValidityMinutes
func NewDefaultRateCache(source repository.ExchangeRateProvider, opts ...Option) (*RateCache, error) {
	return NewRateCache(source, DefaultValidityMinutes, opts...)
}

// GetRate returns a cached rate for the pair, or fetches and stores a
// fresh one. Source errors are returned unchanged and never cached.
func (c *RateCache) GetRate(ctx context.Context, from, to entity.Currency) (*entity.ExchangeRate, error) {
	if from.Code == "" || to.Code == "" {
		return nil, ErrMissingCurrency
	}

	key := CurrencyPair{From: from.Code, To: to.Code}

	if rate, ok := c.lookup(key); ok {
		c.metrics.Hit()
		c.logger.Debug("Cache hit", map[string]interface{}{
			"pair": key.String(),
		})
		return rate, nil
	}

	c.metrics.Miss()
	c.logger.Debug("Cache miss, fetching from source", map[string]interface{}{
		"pair": key.String(),
	})

	rate, err := c.source.GetRate(ctx, from, to)
	if err != nil {
		c.metrics.FetchFailed()
		c.logger.Warn("Rate source failed", map[string]interface{}{
			"pair":  key.String(),
			"error": err.Error(),
		})
		return nil, err
	}

	if rate == nil {
		return nil, fmt.Errorf("%w: source returned no rate for %s", entity.ErrRateUnavailable, key)
	}

	c.store(key, rate)

	return rate, nil
}

func (c *RateCache) lookup(key CurrencyPair) (*entity.ExchangeRate, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.entries[key]
	if !exists || entry.Expired(c.now()) {
		return nil, false
	}

	return entry.Rate, true
}

func (c *RateCache) store(key CurrencyPair, rate *entity.ExchangeRate) {
	c.mutex.Lock()
	c.entries[key] = NewEntry(rate, c.now(), c.validity)
	c.metrics.Size(len(c.entries))
	c.mutex.Unlock()

	c.metrics.Store()
}

// InvalidateAll removes every entry from the cache
func (c *RateCache) InvalidateAll() {
	c.Purge()
}

// Purge removes every entry and returns how many were removed
func (c *RateCache) Purge() int {
	c.mutex.Lock()
	removed := len(c.entries)
	c.entries = make(map[CurrencyPair]Entry)
	c.metrics.Size(0)
	c.mutex.Unlock()

	c.metrics.Invalidated(removed)
	c.logger.Info("Cache cleared", map[string]interface{}{
		"removed": removed,
	})

	return removed
}

// SweepExpired removes expired entries and returns how many were removed.
// It is meant to be called periodically by the owner of the cache.
func (c *RateCache) SweepExpired() int {
	c.mutex.Lock()
	count := 0
	now := c.now()

	for key, entry := range c.entries {
		if entry.Expired(now) {
			delete(c.entries, key)
			count++
		}
	}
	// published under the lock so concurrent writers cannot reorder the gauge
	c.metrics.Size(len(c.entries))
	c.mutex.Unlock()

	c.metrics.Swept(count)

	if count > 0 {
		c.logger.Info("Cleaned expired cache entries", map[string]interface{}{
			"count": count,
		})
	}

	return count
}

// Stats returns the current number of entries and the configured validity
func (c *RateCache) Stats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return Stats{
		Size:            len(c.entries),
		ValidityMinutes: c.validityMinutes,
	}
}
