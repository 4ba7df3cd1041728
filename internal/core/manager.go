package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"fasttrack/internal/domain"
	"fasttrack/internal/logging"
)

// Manager owns the fasting State. A single goroutine applies every event,
// so the three operations never interleave.
type Manager struct {
	clock    domain.Clock
	ids      domain.IDGenerator
	recorder domain.MetricsRecorder

	mu    sync.RWMutex
	state State

	eventCh chan eventRequest
	started atomic.Bool
	done    chan struct{}

	subMu      sync.Mutex
	subs       map[int]chan State
	nextID     int
	subsClosed bool
}

type eventRequest struct {
	event    Event
	resultCh chan eventResult
}

type eventResult struct {
	state State
	err   error
}

// Option customizes a Manager.
type Option func(*Manager)

// WithRecorder routes accepted transitions to r.
func WithRecorder(r domain.MetricsRecorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// WithSelectedMethod overrides the initially selected method id.
func WithSelectedMethod(id string) Option {
	return func(m *Manager) {
		m.state = InitialState(id)
	}
}

// NewManager prepares a manager holding the initial state.
func NewManager(clock domain.Clock, ids domain.IDGenerator, opts ...Option) (*Manager, error) {
	if clock == nil {
		return nil, domain.ErrClockRequired
	}
	if ids == nil {
		return nil, errors.New("id generator is required")
	}
	m := &Manager{
		clock:    clock,
		ids:      ids,
		recorder: noopRecorder{},
		state:    InitialState(domain.DefaultMethodID),
		eventCh:  make(chan eventRequest),
		done:     make(chan struct{}),
		subs:     make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Start launches the event processing loop until ctx is cancelled.
// Calling Start more than once has no effect.
func (m *Manager) Start(ctx context.Context) {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	go m.loop(ctx)
}

// Done is closed once the event loop has exited.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

func (m *Manager) loop(ctx context.Context) {
	defer close(m.done)
	defer m.closeSubscribers()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-m.eventCh:
			m.mu.Lock()
			newState, effects, err := HandleEvent(m.state, req.event, m.clock.Now())
			if err == nil {
				m.state = newState
			}
			snap := m.state.Clone()
			m.mu.Unlock()

			if err == nil {
				m.executeEffects(effects, snap)
			}
			req.resultCh <- eventResult{state: snap, err: err}
		}
	}
}

func (m *Manager) executeEffects(effects []Effect, snap State) {
	log := logging.L()
	for _, eff := range effects {
		switch eff.Type {
		case EffectMethodSelected:
			m.recorder.MethodSelected(eff.MethodID)
			log.Infow("method selected", "method", eff.MethodID)
		case EffectFastStarted:
			m.recorder.FastStarted(eff.MethodID)
			log.Infow("fast started", "method", eff.MethodID, "start", eff.Active.StartTime)
		case EffectFastEnded:
			m.recorder.FastCompleted(eff.MethodID, eff.Session.DurationHours)
			log.Infow("fast ended",
				"method", eff.MethodID,
				"session", eff.Session.ID,
				"hours", eff.Session.DurationHours)
		}
	}
	if len(effects) > 0 {
		m.publish(snap)
	} else {
		log.Debugw("event ignored by guard", "fasting", snap.Fasting())
	}
}

func (m *Manager) dispatch(ctx context.Context, event Event) (State, error) {
	if !m.started.Load() {
		return State{}, domain.ErrManagerNotRunning
	}
	req := eventRequest{event: event, resultCh: make(chan eventResult, 1)}
	select {
	case m.eventCh <- req:
	case <-m.done:
		return State{}, domain.ErrManagerStopped
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
	res := <-req.resultCh
	return res.state, res.err
}

// SelectMethod replaces the selected method id. Unknown ids are accepted.
func (m *Manager) SelectMethod(ctx context.Context, methodID string) (State, error) {
	return m.dispatch(ctx, Event{
		Type: EventSelectMethod,
		Data: SelectMethodData{MethodID: methodID},
	})
}

// StartFast begins a fast unless one is already active. An empty methodID
// uses the selected method and a zero start uses the clock.
func (m *Manager) StartFast(ctx context.Context, methodID string, start time.Time) (State, error) {
	return m.dispatch(ctx, Event{
		Type: EventStartFast,
		Data: StartFastData{MethodID: methodID, StartTime: start},
	})
}

// EndFast completes the active fast, if any. A zero end uses the clock.
func (m *Manager) EndFast(ctx context.Context, end time.Time) (State, error) {
	return m.dispatch(ctx, Event{
		Type: EventEndFast,
		Data: EndFastData{EndTime: end, SessionID: m.ids.NewID()},
	})
}

// Snapshot returns a deep copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Clone()
}

// Subscribe returns a channel that receives the state after every accepted
// transition. Slow readers only see the latest state. The returned func
// unsubscribes and closes the channel.
func (m *Manager) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	m.subMu.Lock()
	if m.subsClosed {
		m.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	m.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.subMu.Lock()
			defer m.subMu.Unlock()
			if c, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(c)
			}
		})
	}
}

func (m *Manager) publish(s State) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for _, ch := range m.subs {
		snap := s.Clone()
		select {
		case ch <- snap:
		default:
			// drop the stale value, keep the newest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (m *Manager) closeSubscribers() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subsClosed = true
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
}

type noopRecorder struct{}

func (noopRecorder) MethodSelected(string)         {}
func (noopRecorder) FastStarted(string)            {}
func (noopRecorder) FastCompleted(string, float64) {}
