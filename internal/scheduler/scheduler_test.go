package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/invest-tracker/internal/models"
)

type countingTicker struct {
	ticks atomic.Int32
}

func (c *countingTicker) Tick() []models.Quote {
	c.ticks.Add(1)
	return []models.Quote{{Symbol: "AAPL", Price: 1}}
}

type stubRefresher struct {
	calls atomic.Int32
	err   error
}

func (s *stubRefresher) Refresh(ctx context.Context) error {
	s.calls.Add(1)
	return s.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestStartRequiresJobs(t *testing.T) {
	s := NewScheduler(quietLogger())
	assert.Error(t, s.Start())
	assert.False(t, s.IsRunning())
}

func TestScheduleValidation(t *testing.T) {
	s := NewScheduler(quietLogger())

	assert.Error(t, s.ScheduleQuoteTicks(time.Second, nil))
	assert.Error(t, s.ScheduleNewsRefresh("*/5 * * * *", nil))
	assert.Error(t, s.ScheduleNewsRefresh("not a schedule", &stubRefresher{}))
	assert.Empty(t, s.Entries())
}

func TestQuoteTicksRun(t *testing.T) {
	s := NewScheduler(quietLogger())
	ticker := &countingTicker{}

	require.NoError(t, s.ScheduleQuoteTicks(time.Second, ticker))
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.True(t, s.IsRunning())
	assert.False(t, s.GetNextRun().IsZero())
	assert.Error(t, s.ScheduleQuoteTicks(time.Second, ticker), "scheduling while running should fail")

	assert.Eventually(t, func() bool { return ticker.ticks.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestNewsRefreshScheduled(t *testing.T) {
	s := NewScheduler(quietLogger())
	refresher := &stubRefresher{err: errors.New("upstream down")}

	require.NoError(t, s.ScheduleNewsRefresh("*/15 * * * *", refresher))
	require.NoError(t, s.ScheduleQuoteTicks(500*time.Millisecond, &countingTicker{}))
	assert.Len(t, s.Entries(), 2)

	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.True(t, s.GetNextRun().IsZero())
}
