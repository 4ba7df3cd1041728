package domain

import "time"

// FastingMethod is a named fasting/eating schedule such as 16:8.
// This is a pure domain model with no dependencies on external concerns.
type FastingMethod struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	FastingHours float64 `json:"fastingHours" yaml:"fastingHours"`
	EatingHours  float64 `json:"eatingHours" yaml:"eatingHours"`
}

// ActiveFast is the single in-progress fast.
type ActiveFast struct {
	MethodID  string    `json:"methodId" yaml:"methodId"`
	StartTime time.Time `json:"startTime" yaml:"startTime"`
}

// FastSession is a completed fast. Sessions are never mutated once recorded.
type FastSession struct {
	ID            string    `json:"id" yaml:"id"`
	MethodID      string    `json:"methodId" yaml:"methodId"`
	StartTime     time.Time `json:"startTime" yaml:"startTime"`
	EndTime       time.Time `json:"endTime" yaml:"endTime"`
	DurationHours float64   `json:"durationHours" yaml:"durationHours"`
}

// DefaultMethodID is selected when nothing else is configured.
const DefaultMethodID = "16-8"

// DefaultMethods returns the built-in catalogue. Callers get a fresh slice.
func DefaultMethods() []FastingMethod {
	return []FastingMethod{
		{ID: "16-8", Name: "16:8", FastingHours: 16, EatingHours: 8},
		{ID: "18-6", Name: "18:6", FastingHours: 18, EatingHours: 6},
		{ID: "20-4", Name: "20:4", FastingHours: 20, EatingHours: 4},
		{ID: "24-0", Name: "OMAD (24:0)", FastingHours: 24, EatingHours: 0},
		{ID: "14-10", Name: "14:10", FastingHours: 14, EatingHours: 10},
	}
}

// FindMethod looks up id in methods.
func FindMethod(methods []FastingMethod, id string) (FastingMethod, bool) {
	for _, m := range methods {
		if m.ID == id {
			return m, true
		}
	}
	return FastingMethod{}, false
}

// Progress holds the timer values derived from an active fast at one instant.
type Progress struct {
	Active                bool    `json:"active"`
	TotalSeconds          float64 `json:"totalSeconds"`
	ElapsedSeconds        int64   `json:"elapsedSeconds"`
	ClampedElapsedSeconds float64 `json:"clampedElapsedSeconds"`
	RemainingSeconds      float64 `json:"remainingSeconds"`
	Ratio                 float64 `json:"ratio"`
}

// HistorySummary aggregates completed sessions.
type HistorySummary struct {
	Count        int     `json:"count" yaml:"count"`
	TotalHours   float64 `json:"totalHours" yaml:"totalHours"`
	LongestHours float64 `json:"longestHours" yaml:"longestHours"`
	AverageHours float64 `json:"averageHours" yaml:"averageHours"`
	TargetsMet   int     `json:"targetsMet" yaml:"targetsMet"`
}
