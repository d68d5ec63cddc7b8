package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/damon-houk/money-calculator/internal/domain/entity"
	"github.com/damon-houk/money-calculator/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	usd = entity.Currency{Code: "USD", Name: "US Dollar"}
	eur = entity.Currency{Code: "EUR", Name: "Euro"}
	gbp = entity.Currency{Code: "GBP", Name: "Pound Sterling"}
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newRate(t *testing.T, from, to entity.Currency, value string) *entity.ExchangeRate {
	t.Helper()
	rate, err := entity.NewExchangeRate(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), from, to, decimal.RequireFromString(value))
	require.NoError(t, err)
	return rate
}

func newTestCache(t *testing.T, source *mocks.MockExchangeRateProvider, minutes int, clock *fakeClock) *RateCache {
	t.Helper()
	c, err := NewRateCache(source, minutes, WithClock(clock.Now))
	require.NoError(t, err)
	return c
}

func TestNewRateCache(t *testing.T) {
	source := new(mocks.MockExchangeRateProvider)

	t.Run("nil source", func(t *testing.T) {
		c, err := NewRateCache(nil, 10)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
		assert.Nil(t, c)
	})

	t.Run("negative validity", func(t *testing.T) {
		c, err := NewRateCache(source, -1)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
		assert.Nil(t, c)
	})

	t.Run("zero validity is allowed", func(t *testing.T) {
		c, err := NewRateCache(source, 0)
		require.NoError(t, err)
		assert.Equal(t, Stats{Size: 0, ValidityMinutes: 0}, c.Stats())
	})

	t.Run("default validity", func(t *testing.T) {
		c, err := NewDefaultRateCache(source)
		require.NoError(t, err)
		assert.Equal(t, DefaultValidityMinutes, c.Stats().ValidityMinutes)
		assert.Equal(t, "Cache size: 0 entries, Validity: 30 minutes", c.Stats().String())
	})
}

func TestRateCache_HitAvoidsRefetch(t *testing.T) {
	source := new(mocks.MockExchangeRateProvider)
	clock := newFakeClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	c := newTestCache(t, source, 30, clock)
	ctx := context.Background()

	rate := newRate(t, usd, eur, "0.9")
	source.On("GetRate", mock.Anything, usd, eur).Return(rate, nil).Once()

	first, err := c.GetRate(ctx, usd, eur)
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)
	second, err := c.GetRate(ctx, usd, eur)
	require.NoError(t, err)

	assert.Same(t, first, second)
	source.AssertNumberOfCalls(t, "GetRate", 1)
	assert.Equal(t, 1, c.Stats().Size)
}

func TestRateCache_ExpiryTriggersRefetch(t *testing.T) {
	source := new(mocks.MockExchangeRateProvider)
	clock := newFakeClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	c := newTestCache(t, source, 5, clock)
	ctx := context.Background()

	source.On("GetRate", mock.Anything, usd, eur).Return(newRate(t, usd, eur, "0.9"), nil).Twice()

	_, err := c.GetRate(ctx, usd, eur)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	_, err = c.GetRate(ctx, usd, eur)
	require.NoError(t, err)

	source.AssertNumberOfCalls(t, "GetRate", 2)
}

func TestRateCache_DateRolloverTriggersRefetch(t *testing.T) {
	source := new(mocks.MockExchangeRateProvider)
	clock := newFakeClock(time.Date(2024, 3, 10, 23, 55, 0, 0, time.UTC))
	c := newTestCache(t, source, 120, clock)
	ctx := context.Background()

	source.On("GetRate", mock.Anything, usd, eur).Return(newRate(t, usd, eur, "0.9"), nil).Once()
	source.On("GetRate", mock.Anything, usd, eur).Return(newRate(t, usd, eur, "0.91"), nil).Once()

	_, err := c.GetRate(ctx, usd, eur)
	require.NoError(t, err)

	// ten minutes later it is the next day, well inside the two hour window
	clock.Advance(10 * time.Minute)
	rate, err := c.GetRate(ctx, usd, eur)
	require.NoError(t, err)

	assert.Equal(t, "0.91", rate.Rate.String())
	source.AssertNumberOfCalls(t, "GetRate", 2)
}

func TestRateCache_Directionality(t *testing.T) {
	source := new(mocks.MockExchangeRateProvider)
	clock := newFakeClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	c := newTestCache(t, source, 30, clock)
	ctx := context.Background()

	source.On("GetRate", mock.Anything, usd, eur).Return(newRate(t, usd, eur, "0.9"), nil).Once()
	source.On("GetRate", mock.Anything, eur, usd).Return(newRate(t, eur, usd, "1.11"), nil).Once()

	forward, err := c.GetRate(ctx, usd, eur)
	require.NoError(t, err)
	backward, err := c.GetRate(ctx, eur, usd)
	require.NoError(t, err)

	assert.Equal(t, "USD", forward.From.Code)
	assert.Equal(t, "EUR", backward.From.Code)
	assert.Equal(t, 2, c.Stats().Size)
	source.AssertExpectations(t)
}

func TestRateCache_FailureIsNotCached(t *testing.T) {
	ctx := context.Background()
	errSource := fmt.Errorf("%w: upstream returned 503", entity.ErrRateUnavailable)

	t.Run("error propagates unchanged and nothing is stored", func(t *testing.T) {
		source := new(mocks.MockExchangeRateProvider)
		clock := newFakeClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
		c := newTestCache(t, source, 30, clock)

		source.On("GetRate", mock.Anything, usd, gbp).Return(nil, errSource).Once()

		rate, err := c.GetRate(ctx, usd, gbp)
		assert.Nil(t, rate)
		assert.True(t, err == errSource, "error must be passed through as-is")
		assert.Equal(t, 0, c.Stats().Size)
	})

	t.Run("expired entry is kept and the next lookup retries", func(t *testing.T) {
		source := new(mocks.MockExchangeRateProvider)
		clock := newFakeClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
		c := newTestCache(t, source, 1, clock)

		source.On("GetRate", mock.Anything, usd, eur).Return(newRate(t, usd, eur, "0.9"), nil).Once()
		source.On("GetRate", mock.Anything, usd, eur).Return(nil, errSource).Once()
		source.On("GetRate", mock.Anything, usd, eur).Return(newRate(t, usd, eur, "0.92"), nil).Once()

		_, err := c.GetRate(ctx, usd, eur)
		require.NoError(t, err)

		clock.Advance(2 * time.Minute)
		_, err = c.GetRate(ctx, usd, eur)
		assert.ErrorIs(t, err, entity.ErrRateUnavailable)
		assert.Equal(t, 1, c.Stats().Size, "stale entry is only replaced by a successful fetch")

		rate, err := c.GetRate(ctx, usd, eur)
		require.NoError(t, err)
		assert.Equal(t, "0.92", rate.Rate.String())
		source.AssertNumberOfCalls(t, "GetRate", 3)
	})

	t.Run("nil rate from source is not stored", func(t *testing.T) {
		source := new(mocks.MockExchangeRateProvider)
		clock := newFakeClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
		c := newTestCache(t, source, 30, clock)

		source.On("GetRate", mock.Anything, usd, eur).Return(nil, nil).Once()

		_, err := c.GetRate(ctx, usd, eur)
		assert.ErrorIs(t, err, entity.ErrRateUnavailable)
		assert.Equal(t, 0, c.Stats().Size)
	})
}

func TestRateCache_MissingCurrency(t *testing.T) {
	source := new(mocks.MockExchangeRateProvider)
	c, err := NewDefaultRateCache(source)
	require.NoError(t, err)

	_, err = c.GetRate(context.Background(), entity.Currency{}, eur)
	assert.ErrorIs(t, err, ErrMissingCurrency)
	_, err = c.GetRate(context.Background(), usd, entity.Currency{})
	assert.ErrorIs(t, err, ErrMissingCurrency)
	source.AssertNotCalled(t, "GetRate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRateCache_SameCurrencyIsDelegated(t *testing.T) {
	source := new(mocks.MockExchangeRateProvider)
	c, err := NewDefaultRateCache(source)
	require.NoError(t, err)

	errSame := errors.New("from and to currencies must be different")
	source.On("GetRate", mock.Anything, usd, usd).Return(nil, errSame).Once()

	_, err = c.GetRate(context.Background(), usd, usd)
	assert.Equal(t, errSame, err)
	source.AssertExpectations(t)
}

func TestRateCache_InvalidateAll(t *testing.T) {
	source := new(mocks.MockExchangeRateProvider)
	clock := newFakeClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	c := newTestCache(t, source, 30, clock)
	ctx := context.Background()

	source.On("GetRate", mock.Anything, usd, eur).Return(newRate(t, usd, eur, "0.9"), nil).Twice()
	source.On("GetRate", mock.Anything, usd, gbp).Return(newRate(t, usd, gbp, "0.78"), nil).Twice()

	for _, to := range []entity.Currency{eur, gbp} {
		_, err := c.GetRate(ctx, usd, to)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Stats().Size)

	c.InvalidateAll()
	assert.Equal(t, 0, c.Stats().Size)

	for _, to := range []entity.Currency{eur, gbp} {
		_, err := c.GetRate(ctx, usd, to)
		require.NoError(t, err)
	}

	source.AssertNumberOfCalls(t, "GetRate", 4)
	source.AssertExpectations(t)
}

func TestRateCache_SweepExpired(t *testing.T) {
	source := new(mocks.MockExchangeRateProvider)
	clock := newFakeClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	c := newTestCache(t, source, 10, clock)
	ctx := context.Background()
	jpy := entity.Currency{Code: "JPY", Name: "Yen"}

	source.On("GetRate", mock.Anything, usd, eur).Return(newRate(t, usd, eur, "0.9"), nil).Once()
	source.On("GetRate", mock.Anything, usd, gbp).Return(newRate(t, usd, gbp, "0.78"), nil).Once()
	source.On("GetRate", mock.Anything, usd, jpy).Return(newRate(t, usd, jpy, "150.2"), nil).Once()

	_, err := c.GetRate(ctx, usd, eur) // expires at +10m
	require.NoError(t, err)
	clock.Advance(6 * time.Minute)
	_, err = c.GetRate(ctx, usd, gbp) // expires at +16m
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)
	_, err = c.GetRate(ctx, usd, jpy) // expires at +18m
	require.NoError(t, err)

	assert.Equal(t, 0, c.SweepExpired())

	clock.Advance(4 * time.Minute) // now +12m
	assert.Equal(t, 1, c.SweepExpired())
	assert.Equal(t, 2, c.Stats().Size)

	// remaining entries are untouched and still served from the cache
	_, err = c.GetRate(ctx, usd, gbp)
	require.NoError(t, err)
	_, err = c.GetRate(ctx, usd, jpy)
	require.NoError(t, err)
	source.AssertNumberOfCalls(t, "GetRate", 3)

	clock.Advance(24 * time.Hour)
	assert.Equal(t, 2, c.SweepExpired())
	assert.Equal(t, 0, c.Stats().Size)
}

func TestRateCache_ConcreteScenario(t *testing.T) {
	source := new(mocks.MockExchangeRateProvider)
	clock := newFakeClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	c := newTestCache(t, source, 1, clock)
	ctx := context.Background()

	source.On("GetRate", mock.Anything, usd, eur).Return(newRate(t, usd, eur, "0.90"), nil).Once()

	rate, err := c.GetRate(ctx, usd, eur)
	require.NoError(t, err)
	assert.Equal(t, "0.9", rate.Rate.String())
	source.AssertNumberOfCalls(t, "GetRate", 1)

	clock.Advance(30 * time.Second)
	rate, err = c.GetRate(ctx, usd, eur)
	require.NoError(t, err)
	assert.Equal(t, "0.9", rate.Rate.String())
	source.AssertNumberOfCalls(t, "GetRate", 1)

	source.On("GetRate", mock.Anything, usd, eur).Return(newRate(t, usd, eur, "0.91"), nil).Once()

	clock.Advance(31 * time.Second)
	rate, err = c.GetRate(ctx, usd, eur)
	require.NoError(t, err)
	assert.Equal(t, "0.91", rate.Rate.String())
	source.AssertNumberOfCalls(t, "GetRate", 2)

	rate, err = c.GetRate(ctx, usd, eur)
	require.NoError(t, err)
	assert.Equal(t, "0.91", rate.Rate.String())
	source.AssertNumberOfCalls(t, "GetRate", 2)
}

func TestRateCache_ZeroValidityDisablesCaching(t *testing.T) {
	source := new(mocks.MockExchangeRateProvider)
	clock := newFakeClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	c := newTestCache(t, source, 0, clock)

	source.On("GetRate", mock.Anything, usd, eur).Return(newRate(t, usd, eur, "0.9"), nil).Times(3)

	for i := 0; i < 3; i++ {
		_, err := c.GetRate(context.Background(), usd, eur)
		require.NoError(t, err)
	}

	source.AssertNumberOfCalls(t, "GetRate", 3)
	assert.Equal(t, 1, c.SweepExpired())
}

// countingSource is safe for concurrent use, unlike a mock with ordered expectations
type countingSource struct {
	calls atomic.Int64
	rate  func(from, to entity.Currency) *entity.ExchangeRate
}

func (s *countingSource) GetRate(_ context.Context, from, to entity.Currency) (*entity.ExchangeRate, error) {
	s.calls.Add(1)
	time.Sleep(time.Millisecond)
	return s.rate(from, to), nil
}

func TestRateCache_ConcurrentLookups(t *testing.T) {
	source := &countingSource{
		rate: func(from, to entity.Currency) *entity.ExchangeRate {
			return &entity.ExchangeRate{
				Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
				From: from,
				To:   to,
				Rate: decimal.NewFromFloat(1.5),
			}
		},
	}
	c, err := NewDefaultRateCache(source)
	require.NoError(t, err)

	pairs := [][2]entity.Currency{{usd, eur}, {eur, usd}, {usd, gbp}, {gbp, eur}}
	const workers = 32

	var wg sync.WaitGroup
	errs := make(chan error, workers*len(pairs))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := range pairs {
				p := pairs[(i+j)%len(pairs)]
				rate, err := c.GetRate(context.Background(), p[0], p[1])
				if err != nil {
					errs <- err
					continue
				}
				if rate.From.Code != p[0].Code || rate.To.Code != p[1].Code {
					errs <- fmt.Errorf("got %s->%s for %s->%s", rate.From.Code, rate.To.Code, p[0].Code, p[1].Code)
				}
			}
		}(i)
	}

	// maintenance runs alongside lookups
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			c.SweepExpired()
			_ = c.Stats()
		}
	}()

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}

	assert.Equal(t, len(pairs), c.Stats().Size)
	calls := source.calls.Load()
	assert.GreaterOrEqual(t, calls, int64(len(pairs)))
	assert.LessOrEqual(t, calls, int64(workers*len(pairs)))
}

type recordingMetrics struct {
	hits, misses, stores, failures, swept, invalidated, size int
}

func (m *recordingMetrics) Hit()              { m.hits++ }
func (m *recordingMetrics) Miss()             { m.misses++ }
func (m *recordingMetrics) Store()            { m.stores++ }
func (m *recordingMetrics) FetchFailed()      { m.failures++ }
func (m *recordingMetrics) Swept(n int)       { m.swept += n }
func (m *recordingMetrics) Invalidated(n int) { m.invalidated += n }
func (m *recordingMetrics) Size(n int)        { m.size = n }

func TestRateCache_ReportsMetricsAndLogs(t *testing.T) {
	source := new(mocks.MockExchangeRateProvider)
	log := new(mocks.MockLogger)
	metrics := &recordingMetrics{}
	clock := newFakeClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))

	c, err := NewRateCache(source, 5, WithClock(clock.Now), WithLogger(log), WithMetrics(metrics))
	require.NoError(t, err)
	ctx := context.Background()

	log.On("Debug", "Cache miss, fetching from source", map[string]interface{}{"pair": "USD->EUR"}).Once()
	log.On("Debug", "Cache hit", map[string]interface{}{"pair": "USD->EUR"}).Once()
	log.On("Debug", "Cache miss, fetching from source", map[string]interface{}{"pair": "USD->GBP"}).Once()
	log.On("Warn", "Rate source failed", mock.Anything).Once()
	log.On("Info", "Cleaned expired cache entries", map[string]interface{}{"count": 1}).Once()
	log.On("Info", "Cache cleared", map[string]interface{}{"removed": 0}).Once()

	source.On("GetRate", mock.Anything, usd, eur).Return(newRate(t, usd, eur, "0.9"), nil).Once()
	source.On("GetRate", mock.Anything, usd, gbp).Return(nil, errors.New("boom")).Once()

	_, _ = c.GetRate(ctx, usd, eur)
	_, _ = c.GetRate(ctx, usd, eur)
	_, _ = c.GetRate(ctx, usd, gbp)
	clock.Advance(5 * time.Minute)
	c.SweepExpired()
	c.InvalidateAll()

	assert.Equal(t, &recordingMetrics{hits: 1, misses: 2, stores: 1, failures: 1, swept: 1, invalidated: 0, size: 0}, metrics)
	log.AssertExpectations(t)
}

func TestRateCache_PurgeReturnsRemovedCount(t *testing.T) {
	source := new(mocks.MockExchangeRateProvider)
	clock := newFakeClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	c := newTestCache(t, source, 30, clock)
	ctx := context.Background()

	source.On("GetRate", mock.Anything, usd, eur).Return(newRate(t, usd, eur, "0.9"), nil).Once()
	source.On("GetRate", mock.Anything, usd, gbp).Return(newRate(t, usd, gbp, "0.78"), nil).Once()

	for _, to := range []entity.Currency{eur, gbp} {
		_, err := c.GetRate(ctx, usd, to)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, c.Purge())
	assert.Equal(t, 0, c.Purge())
	assert.Equal(t, 0, c.Stats().Size)
}

// gaugeMetrics only tracks the last published size
type gaugeMetrics struct {
	NoopMetrics
	mu   sync.Mutex
	size int
}

func (m *gaugeMetrics) Size(n int) {
	m.mu.Lock()
	m.size = n
	m.mu.Unlock()
}

func (m *gaugeMetrics) last() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

func TestRateCache_SizeGaugeMatchesEntriesUnderConcurrency(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	source := &countingSource{
		rate: func(from, to entity.Currency) *entity.ExchangeRate {
			return &entity.ExchangeRate{
				Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
				From: from,
				To:   to,
				Rate: decimal.NewFromInt(2),
			}
		},
	}
	gauge := &gaugeMetrics{}

	c, err := NewRateCache(source, 1, WithClock(clock.Now), WithMetrics(gauge))
	require.NoError(t, err)

	codes := []string{"AAA", "BBB", "CCC", "DDD", "EEE", "FFF", "GGG", "HHH"}
	ctx := context.Background()

	var wg sync.WaitGroup
	for round := 0; round < 5; round++ {
		for _, from := range codes {
			for _, to := range codes {
				if from == to {
					continue
				}
				wg.Add(1)
				go func(from, to string) {
					defer wg.Done()
					_, _ = c.GetRate(ctx, entity.Currency{Code: from}, entity.Currency{Code: to})
				}(from, to)
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.SweepExpired()
			}()
		}
		clock.Advance(time.Minute)
		wg.Wait()

		assert.Equal(t, c.Stats().Size, gauge.last())
	}
}
