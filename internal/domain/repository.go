package domain

import (
	"context"
	"time"
)

// Clock is a secondary port supplying wall-clock time.
// Production uses the system clock, tests inject a controllable one.
type Clock interface {
	Now() time.Time
}

// IDGenerator is a secondary port that mints opaque session identifiers.
type IDGenerator interface {
	NewID() string
}

// MetricsRecorder is a secondary port notified of accepted transitions.
type MetricsRecorder interface {
	MethodSelected(methodID string)
	FastStarted(methodID string)
	FastCompleted(methodID string, durationHours float64)
}

// HistoryExporter is a secondary port that writes a history report somewhere.
type HistoryExporter interface {
	Export(ctx context.Context, report HistoryReport) error
}

// HistoryReport is the payload handed to a HistoryExporter.
type HistoryReport struct {
	GeneratedAt time.Time       `json:"generatedAt" yaml:"generatedAt"`
	Methods     []FastingMethod `json:"methods" yaml:"methods"`
	Summary     HistorySummary  `json:"summary" yaml:"summary"`
	Sessions    []FastSession   `json:"sessions" yaml:"sessions"`
}
