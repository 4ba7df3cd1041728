package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fasttrack/internal/core"
	"fasttrack/internal/domain"
)

var t0 = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
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

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("sess-%d", s.n)
}

type memExporter struct {
	reports []domain.HistoryReport
	err     error
}

func (e *memExporter) Export(_ context.Context, r domain.HistoryReport) error {
	if e.err != nil {
		return e.err
	}
	e.reports = append(e.reports, r)
	return nil
}

func newTracker(t *testing.T) (TrackerUseCase, *fakeClock, context.CancelFunc) {
	t.Helper()
	clk := &fakeClock{now: t0}
	m, err := core.NewManager(clk, &seqIDs{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	m.Start(ctx)

	uc, err := NewTrackerUseCase(m, clk)
	require.NoError(t, err)
	return uc, clk, cancel
}

func TestNewTrackerUseCaseRequiresDependencies(t *testing.T) {
	_, err := NewTrackerUseCase(nil, &fakeClock{})
	assert.Error(t, err)

	m, err := core.NewManager(&fakeClock{}, &seqIDs{})
	require.NoError(t, err)
	_, err = NewTrackerUseCase(m, nil)
	assert.ErrorIs(t, err, domain.ErrClockRequired)
}

func TestTrackerStatusIdle(t *testing.T) {
	uc, _, _ := newTracker(t)

	st := uc.Status(t0)
	assert.False(t, st.Fasting)
	assert.Equal(t, "16-8", st.Method.ID)
	assert.Equal(t, 57600.0, st.Progress.TotalSeconds)
	assert.Equal(t, 57600.0, st.Progress.RemainingSeconds)
	assert.Zero(t, st.Progress.Ratio)
}

func TestTrackerFlow(t *testing.T) {
	uc, clk, _ := newTracker(t)
	ctx := context.Background()

	_, err := uc.SelectMethod(ctx, "18-6")
	require.NoError(t, err)

	s, err := uc.StartFast(ctx, StartInput{})
	require.NoError(t, err)
	require.NotNil(t, s.ActiveFast)
	assert.Equal(t, "18-6", s.ActiveFast.MethodID)

	clk.Advance(9 * time.Hour)
	st := uc.Status(clk.Now())
	assert.True(t, st.Fasting)
	assert.Equal(t, int64(9*3600), st.Progress.ElapsedSeconds)
	assert.InDelta(t, 0.5, st.Progress.Ratio, 1e-9)

	clk.Advance(10 * time.Hour)
	_, err = uc.EndFast(ctx, EndInput{})
	require.NoError(t, err)

	h := uc.History()
	require.Len(t, h.Sessions, 1)
	assert.InDelta(t, 19.0, h.Sessions[0].DurationHours, 1e-9)
	assert.Equal(t, 1, h.Summary.Count)
	assert.Equal(t, 1, h.Summary.TargetsMet)
}

func TestTrackerStartWithExplicitInput(t *testing.T) {
	uc, _, _ := newTracker(t)
	at := t0.Add(-3 * time.Hour)

	s, err := uc.StartFast(context.Background(), StartInput{MethodID: "20-4", StartTime: at})
	require.NoError(t, err)
	assert.Equal(t, domain.ActiveFast{MethodID: "20-4", StartTime: at}, *s.ActiveFast)

	st := uc.Status(t0)
	assert.Equal(t, "20-4", st.Method.ID)
	assert.Equal(t, "16-8", st.SelectedMethodID)
}

func TestTrackerWatch(t *testing.T) {
	uc, _, _ := newTracker(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := uc.Watch(ctx, 10*time.Millisecond)

	first := <-ticks
	assert.False(t, first.Fasting)

	_, err := uc.StartFast(context.Background(), StartInput{})
	require.NoError(t, err)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-ticks:
			if st.Fasting {
				cancel()
				for range ticks {
				}
				return
			}
		case <-deadline:
			t.Fatal("watch never reported the started fast")
		}
	}
}

func TestTrackerWatchClosesWhenManagerStops(t *testing.T) {
	uc, _, stop := newTracker(t)
	ticks := uc.Watch(context.Background(), time.Hour)
	<-ticks

	stop()
	select {
	case _, ok := <-ticks:
		for ok {
			_, ok = <-ticks
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch channel not closed")
	}
}

func TestTrackerExportHistory(t *testing.T) {
	uc, clk, _ := newTracker(t)
	ctx := context.Background()

	_, err := uc.StartFast(ctx, StartInput{})
	require.NoError(t, err)
	clk.Advance(12 * time.Hour)
	_, err = uc.EndFast(ctx, EndInput{})
	require.NoError(t, err)

	exp := &memExporter{}
	report, err := uc.ExportHistory(ctx, exp)
	require.NoError(t, err)
	require.Len(t, exp.reports, 1)
	assert.Equal(t, report, exp.reports[0])
	assert.Equal(t, clk.Now(), report.GeneratedAt)
	assert.Len(t, report.Methods, 5)
	assert.Equal(t, 0, report.Summary.TargetsMet)

	boom := errors.New("disk full")
	_, err = uc.ExportHistory(ctx, &memExporter{err: boom})
	assert.ErrorIs(t, err, boom)

	_, err = uc.ExportHistory(ctx, nil)
	assert.Error(t, err)
}

