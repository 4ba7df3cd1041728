package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

func method16() FastingMethod {
	m, _ := FindMethod(DefaultMethods(), "16-8")
	return m
}

func TestDefaultMethods(t *testing.T) {
	methods := DefaultMethods()
	require.Len(t, methods, 5)

	seen := map[string]bool{}
	for _, m := range methods {
		assert.False(t, seen[m.ID], "duplicate id %s", m.ID)
		seen[m.ID] = true
	}

	omad, ok := FindMethod(methods, "24-0")
	require.True(t, ok)
	assert.Equal(t, "OMAD (24:0)", omad.Name)
	assert.Equal(t, 24.0, omad.FastingHours)
	assert.Equal(t, 0.0, omad.EatingHours)

	_, ok = FindMethod(methods, DefaultMethodID)
	assert.True(t, ok)

	methods[0].Name = "mutated"
	assert.Equal(t, "16:8", DefaultMethods()[0].Name)
}

func TestProgress(t *testing.T) {
	svc := NewFastingService()
	active := &ActiveFast{MethodID: "16-8", StartTime: t0}

	tests := []struct {
		name          string
		now           time.Time
		active        *ActiveFast
		wantElapsed   int64
		wantClamped   float64
		wantRemaining float64
		wantRatio     float64
	}{
		{
			name:          "idle reports target only",
			now:           t0.Add(5 * time.Hour),
			active:        nil,
			wantRemaining: 16 * 3600,
		},
		{
			name:          "just started",
			now:           t0,
			active:        active,
			wantRemaining: 16 * 3600,
		},
		{
			name:          "halfway",
			now:           t0.Add(8 * time.Hour),
			active:        active,
			wantElapsed:   28800,
			wantClamped:   28800,
			wantRemaining: 28800,
			wantRatio:     0.5,
		},
		{
			name:          "sub-second is floored",
			now:           t0.Add(90*time.Second + 999*time.Millisecond),
			active:        active,
			wantElapsed:   90,
			wantClamped:   90,
			wantRemaining: 16*3600 - 90,
			wantRatio:     90.0 / (16 * 3600),
		},
		{
			name:          "past target saturates",
			now:           t0.Add(20 * time.Hour),
			active:        active,
			wantElapsed:   20 * 3600,
			wantClamped:   16 * 3600,
			wantRemaining: 0,
			wantRatio:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := svc.Progress(tt.now, tt.active, method16())
			assert.Equal(t, tt.active != nil, p.Active)
			assert.Equal(t, 16.0*3600, p.TotalSeconds)
			assert.Equal(t, tt.wantElapsed, p.ElapsedSeconds)
			assert.Equal(t, tt.wantClamped, p.ClampedElapsedSeconds)
			assert.Equal(t, tt.wantRemaining, p.RemainingSeconds)
			assert.InDelta(t, tt.wantRatio, p.Ratio, 1e-12)
		})
	}
}

func TestProgressStartInFutureHasNothingElapsed(t *testing.T) {
	svc := NewFastingService()
	active := &ActiveFast{MethodID: "16-8", StartTime: t0.Add(time.Hour)}

	p := svc.Progress(t0, active, method16())
	assert.True(t, p.Active)
	assert.Equal(t, int64(0), p.ElapsedSeconds)
	assert.Equal(t, 0.0, p.ClampedElapsedSeconds)
	assert.Equal(t, p.TotalSeconds, p.RemainingSeconds)
	assert.Equal(t, 0.0, p.Ratio)
}

func TestProgressZeroHourMethod(t *testing.T) {
	svc := NewFastingService()
	active := &ActiveFast{MethodID: "zero", StartTime: t0}

	p := svc.Progress(t0.Add(time.Minute), active, FastingMethod{ID: "zero"})
	assert.Equal(t, 1.0, p.Ratio)
	assert.Equal(t, 0.0, p.RemainingSeconds)
}

func TestDurationHours(t *testing.T) {
	svc := NewFastingService()

	assert.InDelta(t, 16.5, svc.DurationHours(t0, t0.Add(16*time.Hour+30*time.Minute)), 1e-12)
	assert.InDelta(t, -2.0, svc.DurationHours(t0, t0.Add(-2*time.Hour)), 1e-12)
	// Sub-millisecond remainder is dropped.
	assert.Equal(t, svc.DurationHours(t0, t0.Add(time.Millisecond)), svc.DurationHours(t0, t0.Add(time.Millisecond+999*time.Microsecond)))
}

func TestCompleteSession(t *testing.T) {
	svc := NewFastingService()
	end := t0.Add(18 * time.Hour)

	sess := svc.CompleteSession("abc", ActiveFast{MethodID: "18-6", StartTime: t0}, end)
	assert.Equal(t, FastSession{
		ID:            "abc",
		MethodID:      "18-6",
		StartTime:     t0,
		EndTime:       end,
		DurationHours: 18,
	}, sess)
}

func TestResolveTimerMethod(t *testing.T) {
	svc := NewFastingService()
	methods := DefaultMethods()

	assert.Equal(t, "18-6", svc.ResolveTimerMethod(methods, "18-6", nil).ID)
	assert.Equal(t, "20-4", svc.ResolveTimerMethod(methods, "18-6", &ActiveFast{MethodID: "20-4"}).ID)
	assert.Equal(t, "16-8", svc.ResolveTimerMethod(methods, "does-not-exist", nil).ID)

	m := svc.ResolveTimerMethod(nil, "x", nil)
	assert.Equal(t, "x", m.ID)
	assert.Equal(t, 16.0, m.FastingHours)
}

func TestSummarize(t *testing.T) {
	svc := NewFastingService()
	methods := DefaultMethods()

	assert.Equal(t, HistorySummary{}, svc.Summarize(nil, methods))

	history := []FastSession{
		{MethodID: "16-8", DurationHours: 17},
		{MethodID: "18-6", DurationHours: 12},
		{MethodID: "unknown", DurationHours: 40},
	}
	sum := svc.Summarize(history, methods)
	assert.Equal(t, 3, sum.Count)
	assert.InDelta(t, 69, sum.TotalHours, 1e-9)
	assert.InDelta(t, 40, sum.LongestHours, 1e-9)
	assert.InDelta(t, 23, sum.AverageHours, 1e-9)
	assert.Equal(t, 1, sum.TargetsMet)
}

func TestSummarizeNegativeOnly(t *testing.T) {
	sum := NewFastingService().Summarize([]FastSession{{MethodID: "16-8", DurationHours: -1}}, DefaultMethods())
	assert.Equal(t, -1.0, sum.LongestHours)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatHMS(0))
	assert.Equal(t, "08:00:00", FormatHMS(28800))
	assert.Equal(t, "16:00:00", FormatHMS(57600))
	assert.Equal(t, "01:01:01", FormatHMS(3661.9))
	assert.Equal(t, "00:00:00", FormatHMS(-5))
	assert.Equal(t, "100:00:00", FormatHMS(360000))

	assert.Equal(t, "16.50h", FormatHours(16.5))
	assert.Equal(t, "0.00h", FormatHours(0))
	assert.Equal(t, "-1.25h", FormatHours(-1.25))
}
