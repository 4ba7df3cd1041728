package usecase

import (
	"context"
	"errors"
	"time"

	"fasttrack/internal/core"
	"fasttrack/internal/domain"
)

// DefaultTick is the Watch interval used when none is given.
const DefaultTick = time.Second

// TrackerUseCase is the primary port for fasting operations.
// CLI, terminal timer and HTTP adapters all go through it.
type TrackerUseCase interface {
	Methods() []domain.FastingMethod
	SelectMethod(ctx context.Context, methodID string) (core.State, error)
	StartFast(ctx context.Context, in StartInput) (core.State, error)
	EndFast(ctx context.Context, in EndInput) (core.State, error)
	Snapshot() core.State
	Status(now time.Time) Status
	History() History
	Watch(ctx context.Context, interval time.Duration) <-chan Status
	ExportHistory(ctx context.Context, exporter domain.HistoryExporter) (domain.HistoryReport, error)
	Now() time.Time
}

// StartInput carries the optional arguments of startFast.
// Zero values mean "use the selected method" and "now".
type StartInput struct {
	MethodID  string    `json:"methodId,omitempty"`
	StartTime time.Time `json:"startTime,omitempty"`
}

// EndInput carries the optional end time of endFast.
type EndInput struct {
	EndTime time.Time `json:"endTime,omitempty"`
}

// Status is the timer view at one instant.
type Status struct {
	Now              time.Time            `json:"now"`
	SelectedMethodID string               `json:"selectedMethodId"`
	Fasting          bool                 `json:"fasting"`
	ActiveFast       *domain.ActiveFast   `json:"activeFast"`
	Method           domain.FastingMethod `json:"method"`
	Progress         domain.Progress      `json:"progress"`
}

// History is the completed sessions, newest first, plus their summary.
type History struct {
	Sessions []domain.FastSession  `json:"sessions" yaml:"sessions"`
	Summary  domain.HistorySummary `json:"summary" yaml:"summary"`
}

type trackerInteractor struct {
	manager *core.Manager
	clock   domain.Clock
	service *domain.FastingService
}

// NewTrackerUseCase wires the use case to a manager and the clock used for
// timer derivations.
func NewTrackerUseCase(manager *core.Manager, clock domain.Clock) (TrackerUseCase, error) {
	if manager == nil {
		return nil, errors.New("manager is required")
	}
	if clock == nil {
		return nil, domain.ErrClockRequired
	}
	return &trackerInteractor{
		manager: manager,
		clock:   clock,
		service: domain.NewFastingService(),
	}, nil
}

func (t *trackerInteractor) Methods() []domain.FastingMethod {
	return t.manager.Snapshot().Methods
}

func (t *trackerInteractor) SelectMethod(ctx context.Context, methodID string) (core.State, error) {
	return t.manager.SelectMethod(ctx, methodID)
}

func (t *trackerInteractor) StartFast(ctx context.Context, in StartInput) (core.State, error) {
	return t.manager.StartFast(ctx, in.MethodID, in.StartTime)
}

func (t *trackerInteractor) EndFast(ctx context.Context, in EndInput) (core.State, error) {
	return t.manager.EndFast(ctx, in.EndTime)
}

func (t *trackerInteractor) Snapshot() core.State {
	return t.manager.Snapshot()
}

func (t *trackerInteractor) Now() time.Time {
	return t.clock.Now()
}

// Status derives the timer values for now from the current snapshot.
func (t *trackerInteractor) Status(now time.Time) Status {
	return t.statusOf(t.manager.Snapshot(), now)
}

func (t *trackerInteractor) statusOf(s core.State, now time.Time) Status {
	method := t.service.ResolveTimerMethod(s.Methods, s.SelectedMethodID, s.ActiveFast)
	return Status{
		Now:              now,
		SelectedMethodID: s.SelectedMethodID,
		Fasting:          s.Fasting(),
		ActiveFast:       s.ActiveFast,
		Method:           method,
		Progress:         t.service.Progress(now, s.ActiveFast, method),
	}
}

func (t *trackerInteractor) History() History {
	s := t.manager.Snapshot()
	return History{
		Sessions: s.History,
		Summary:  t.service.Summarize(s.History, s.Methods),
	}
}

// Watch emits a Status immediately, on every interval and after every
// accepted transition. It never mutates state. The channel closes when ctx
// is done or the manager stops.
func (t *trackerInteractor) Watch(ctx context.Context, interval time.Duration) <-chan Status {
	if interval <= 0 {
		interval = DefaultTick
	}
	out := make(chan Status)
	updates, unsubscribe := t.manager.Subscribe()

	go func() {
		defer close(out)
		defer unsubscribe()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		send := func(st Status) bool {
			select {
			case out <- st:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send(t.Status(t.clock.Now())) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-updates:
				if !ok {
					return
				}
				if !send(t.statusOf(s, t.clock.Now())) {
					return
				}
			case <-ticker.C:
				if !send(t.Status(t.clock.Now())) {
					return
				}
			}
		}
	}()
	return out
}

// ExportHistory hands a report of the current history to exporter.
func (t *trackerInteractor) ExportHistory(ctx context.Context, exporter domain.HistoryExporter) (domain.HistoryReport, error) {
	if exporter == nil {
		return domain.HistoryReport{}, errors.New("exporter is required")
	}
	s := t.manager.Snapshot()
	report := domain.HistoryReport{
		GeneratedAt: t.clock.Now(),
		Methods:     s.Methods,
		Summary:     t.service.Summarize(s.History, s.Methods),
		Sessions:    s.History,
	}
	if err := exporter.Export(ctx, report); err != nil {
		return report, err
	}
	return report, nil
}
