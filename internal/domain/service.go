package domain

import (
	"fmt"
	"math"
	"time"
)

const (
	secondsPerHour = 3600
	msPerHour      = 3_600_000
	// fallbackFastingHours is the timer target when no method can be resolved.
	fallbackFastingHours = 16
)

// FastingService provides the pure derivations used by every consumer of the
// fasting state. It has no side effects and no dependencies.
type FastingService struct{}

// NewFastingService creates a new fasting service.
func NewFastingService() *FastingService {
	return &FastingService{}
}

// DurationHours is (end - start) at millisecond resolution, in hours.
// The result is neither rounded nor clamped; a negative span stays negative.
func (s *FastingService) DurationHours(start, end time.Time) float64 {
	return float64(end.Sub(start).Milliseconds()) / msPerHour
}

// CompleteSession builds the history record for an active fast ending at end.
func (s *FastingService) CompleteSession(id string, active ActiveFast, end time.Time) FastSession {
	return FastSession{
		ID:            id,
		MethodID:      active.MethodID,
		StartTime:     active.StartTime,
		EndTime:       end,
		DurationHours: s.DurationHours(active.StartTime, end),
	}
}

// ResolveTimerMethod picks the method that drives the timer: the active
// fast's method, otherwise the selected one. Unknown ids fall back to the
// first catalogue entry.
func (s *FastingService) ResolveTimerMethod(methods []FastingMethod, selectedID string, active *ActiveFast) FastingMethod {
	id := selectedID
	if active != nil {
		id = active.MethodID
	}
	if m, ok := FindMethod(methods, id); ok {
		return m
	}
	if len(methods) > 0 {
		return methods[0]
	}
	return FastingMethod{ID: id, Name: id, FastingHours: fallbackFastingHours}
}

// Progress derives elapsed/remaining/ratio for one instant.
// When active is nil the wall clock is not consulted and only the target is reported.
func (s *FastingService) Progress(now time.Time, active *ActiveFast, method FastingMethod) Progress {
	total := method.FastingHours * secondsPerHour
	if active == nil {
		return Progress{
			TotalSeconds:     total,
			RemainingSeconds: math.Max(0, total),
		}
	}

	// A start in the future counts as not yet elapsed.
	elapsed := int64(math.Max(0, math.Floor(float64(now.Sub(active.StartTime).Milliseconds())/1000)))
	clamped := math.Min(float64(elapsed), total)

	ratio := 1.0
	if total > 0 {
		ratio = clamp01(clamped / total)
	}

	return Progress{
		Active:                true,
		TotalSeconds:          total,
		ElapsedSeconds:        elapsed,
		ClampedElapsedSeconds: clamped,
		RemainingSeconds:      math.Max(0, total-clamped),
		Ratio:                 ratio,
	}
}

// Summarize aggregates history. A session meets its target when it lasted at
// least its method's fasting hours; sessions with unknown methods never do.
func (s *FastingService) Summarize(history []FastSession, methods []FastingMethod) HistorySummary {
	var sum HistorySummary
	for i, sess := range history {
		sum.Count++
		sum.TotalHours += sess.DurationHours
		if i == 0 || sess.DurationHours > sum.LongestHours {
			sum.LongestHours = sess.DurationHours
		}
		if m, ok := FindMethod(methods, sess.MethodID); ok && sess.DurationHours >= m.FastingHours {
			sum.TargetsMet++
		}
	}
	if sum.Count > 0 {
		sum.AverageHours = sum.TotalHours / float64(sum.Count)
	}
	return sum
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FormatHMS renders whole seconds as HH:MM:SS. Negative input renders as zero.
func FormatHMS(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	sec := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

// FormatHours renders a duration in hours with two decimals, e.g. "16.50h".
func FormatHours(h float64) string {
	return fmt.Sprintf("%.2fh", h)
}
