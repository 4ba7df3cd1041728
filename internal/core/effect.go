package core

import (
	"time"

	"fasttrack/internal/domain"
)

// EffectType represents the type of side effect to be performed.
type EffectType string

const (
	EffectMethodSelected EffectType = "MethodSelected"
	EffectFastStarted    EffectType = "FastStarted"
	EffectFastEnded      EffectType = "FastEnded"
)

// Effect represents a side effect that should be performed by the adapter layer.
// The reducer produces Effects without executing them, maintaining purity.
type Effect struct {
	Type     EffectType
	MethodID string
	Active   domain.ActiveFast
	Session  domain.FastSession
}

// Event represents an input event to the reducer.
type Event struct {
	Type EventType
	Data interface{}
}

// EventType represents the type of event.
type EventType string

const (
	EventSelectMethod EventType = "SelectMethod"
	EventStartFast    EventType = "StartFast"
	EventEndFast      EventType = "EndFast"
)

// SelectMethodData contains data for method selection events.
type SelectMethodData struct {
	MethodID string
}

// StartFastData contains data for start events.
type StartFastData struct {
	MethodID  string    // empty means the selected method
	StartTime time.Time // zero means now
}

// EndFastData contains data for end events.
type EndFastData struct {
	EndTime   time.Time // zero means now
	SessionID string
}

// State is the aggregate root: catalogue, selection, active fast and history.
type State struct {
	Methods          []domain.FastingMethod `json:"methods"`
	SelectedMethodID string                 `json:"selectedMethodId"`
	ActiveFast       *domain.ActiveFast     `json:"activeFast"`
	History          []domain.FastSession   `json:"history"`
}

// InitialState returns the built-in catalogue with selectedID pre-selected,
// no active fast and an empty history.
func InitialState(selectedID string) State {
	if selectedID == "" {
		selectedID = domain.DefaultMethodID
	}
	return State{
		Methods:          domain.DefaultMethods(),
		SelectedMethodID: selectedID,
		History:          []domain.FastSession{},
	}
}

// Fasting reports whether a fast is in progress.
func (s State) Fasting() bool {
	return s.ActiveFast != nil
}

// Clone returns a deep copy suitable for handing to external consumers.
func (s State) Clone() State {
	out := State{
		Methods:          append([]domain.FastingMethod(nil), s.Methods...),
		SelectedMethodID: s.SelectedMethodID,
		History:          append([]domain.FastSession{}, s.History...),
	}
	if s.ActiveFast != nil {
		af := *s.ActiveFast
		out.ActiveFast = &af
	}
	return out
}
