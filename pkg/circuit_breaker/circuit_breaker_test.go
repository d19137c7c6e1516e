package circuit_breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

var errBroker = errors.New("broker unavailable")

func ok() error   { return nil }
func fail() error { return errBroker }

func Test_breaker_Call(t *testing.T) {
	t.Parallel()
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := newBreaker(Config{Window: 4, FailureRatio: 0.5, Cooldown: time.Minute, Recovery: 2}, clk.now)

	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Call(ok))
	}
	require.Equal(t, Closed, cb.State())

	require.ErrorIs(t, cb.Call(fail), errBroker)
	require.Equal(t, Closed, cb.State())
	require.ErrorIs(t, cb.Call(fail), errBroker)
	require.Equal(t, Open, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrOpen)
	require.False(t, called)

	clk.advance(2 * time.Minute)
	require.NoError(t, cb.Call(ok))
	require.Equal(t, HalfOpen, cb.State())
	require.NoError(t, cb.Call(ok))
	require.Equal(t, Closed, cb.State())
}

func Test_breaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := newBreaker(Config{Window: 2, FailureRatio: 0.5, Cooldown: time.Second, Recovery: 3}, clk.now)

	require.Error(t, cb.Call(fail))
	require.Equal(t, Open, cb.State())

	clk.advance(time.Second)
	require.ErrorIs(t, cb.Call(fail), errBroker)
	require.Equal(t, Open, cb.State())
	require.ErrorIs(t, cb.Call(ok), ErrOpen)
}
