package bench

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrack_MeasuresElapsedTime(t *testing.T) {
	const delay = 50 * time.Millisecond

	timer, err := Track(func() error {
		time.Sleep(delay)
		return nil
	})
	require.NoError(t, err)

	interval := timer.Interval()
	assert.GreaterOrEqual(t, interval, delay.Seconds())
	// Generous upper bound; only guards against wildly wrong measurement.
	assert.Less(t, interval, 10*delay.Seconds())
}

func TestTrack_IntervalNeverNegative(t *testing.T) {
	timer, err := Track(func() error { return nil })
	require.NoError(t, err)
	assert.GreaterOrEqual(t, timer.Interval(), 0.0)
}

func TestTrack_ErrorPropagatesUnchanged(t *testing.T) {
	sentinel := errors.New("stage blew up")

	timer, err := Track(func() error {
		time.Sleep(time.Millisecond)
		return sentinel
	})

	require.ErrorIs(t, err, sentinel)
	// End must be captured even on the failure path.
	assert.False(t, timer.End.IsZero())
	assert.GreaterOrEqual(t, timer.Interval(), 0.0)
}

func TestTrack_PanicPropagates(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = Track(func() error { panic("boom") })
	})
}

func TestTimer_IntervalBeforeStop(t *testing.T) {
	timer := StartTimer()
	first := timer.Interval()
	time.Sleep(5 * time.Millisecond)
	second := timer.Interval()

	assert.GreaterOrEqual(t, first, 0.0)
	assert.Greater(t, second, first)

	timer.Stop()
	frozen := timer.Interval()
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, frozen, timer.Interval(), "interval must not drift after Stop")
}
