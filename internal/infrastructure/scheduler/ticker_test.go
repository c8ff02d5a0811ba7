package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTickerSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	var runs atomic.Int32
	s := NewTickerScheduler(10 * time.Millisecond)

	require.NoError(t, s.Start(context.Background(), func(time.Time) { runs.Add(1) }))
	require.NoError(t, s.Start(context.Background(), func(time.Time) { t.Error("second Start must not run a job") }))

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no jobs after Stop")

	require.NoError(t, s.Stop(context.Background()))
}

func TestTickerSchedulerStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{}, 1)

	s := NewTickerScheduler(time.Hour)
	require.NoError(t, s.Start(ctx, func(time.Time) {
		select {
		case started <- struct{}{}:
		default:
		}
	}))
	<-started
	cancel()

	require.NoError(t, s.Stop(context.Background()))
}

func TestTickerSchedulerNilJob(t *testing.T) {
	s := NewTickerScheduler(0)
	require.NoError(t, s.Start(context.Background(), nil))
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, 24*time.Hour, s.interval)
}
