package core

import (
	"fmt"
	"time"

	"fasttrack/internal/domain"
)

var service = domain.NewFastingService()

// HandleEvent is a pure function that takes current state and an event,
// and returns the new state along with effects to be executed.
// Guarded transitions that do not apply return the state unchanged and no effects.
func HandleEvent(state State, event Event, now time.Time) (State, []Effect, error) {
	switch event.Type {
	case EventSelectMethod:
		data, ok := event.Data.(SelectMethodData)
		if !ok {
			return state, nil, fmt.Errorf("%w: expected SelectMethodData", domain.ErrInvalidEvent)
		}
		return handleSelectMethod(state, data)
	case EventStartFast:
		data, ok := event.Data.(StartFastData)
		if !ok {
			return state, nil, fmt.Errorf("%w: expected StartFastData", domain.ErrInvalidEvent)
		}
		return handleStartFast(state, data, now)
	case EventEndFast:
		data, ok := event.Data.(EndFastData)
		if !ok {
			return state, nil, fmt.Errorf("%w: expected EndFastData", domain.ErrInvalidEvent)
		}
		return handleEndFast(state, data, now)
	default:
		return state, nil, fmt.Errorf("%w: unknown event type %q", domain.ErrInvalidEvent, event.Type)
	}
}

func handleSelectMethod(state State, data SelectMethodData) (State, []Effect, error) {
	newState := state
	newState.SelectedMethodID = data.MethodID
	return newState, []Effect{{Type: EffectMethodSelected, MethodID: data.MethodID}}, nil
}

func handleStartFast(state State, data StartFastData, now time.Time) (State, []Effect, error) {
	if state.ActiveFast != nil {
		return state, nil, nil
	}

	methodID := data.MethodID
	if methodID == "" {
		methodID = state.SelectedMethodID
	}
	start := data.StartTime
	if start.IsZero() {
		start = now
	}

	active := domain.ActiveFast{MethodID: methodID, StartTime: start}
	newState := state
	newState.ActiveFast = &active

	return newState, []Effect{{Type: EffectFastStarted, MethodID: methodID, Active: active}}, nil
}

func handleEndFast(state State, data EndFastData, now time.Time) (State, []Effect, error) {
	if state.ActiveFast == nil {
		return state, nil, nil
	}

	end := data.EndTime
	if end.IsZero() {
		end = now
	}
	session := service.CompleteSession(data.SessionID, *state.ActiveFast, end)

	history := make([]domain.FastSession, 0, len(state.History)+1)
	history = append(history, session)
	history = append(history, state.History...)

	newState := state
	newState.ActiveFast = nil
	newState.History = history

	return newState, []Effect{{Type: EffectFastEnded, MethodID: session.MethodID, Session: session}}, nil
}
