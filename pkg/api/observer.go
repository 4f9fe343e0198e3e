package api

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Observer receives lifecycle notifications from the wizard machine. The
// machine fires and forgets; no return value is consumed, and a nil-safe
// NoopObserver is used when nothing is registered.
//
// Implementations should be fast and non-blocking; heavy work belongs in a
// goroutine so it does not delay the request.
type Observer interface {
	// OnWizardLoaded fires after persisted data was loaded for a request.
	OnWizardLoaded(ctx context.Context, w Wizard)

	// OnWizardSaving fires right before step data is persisted.
	OnWizardSaving(ctx context.Context, w Wizard)

	// OnWizardFinishing fires after the last step was stored, before the
	// completion action runs.
	OnWizardFinishing(ctx context.Context, w Wizard)

	// OnWizardFinished fires after the completion action succeeded and the
	// after-complete hook ran. A typical subscriber deletes the persisted
	// record here; completion and deletion are deliberately separate so
	// other subscribers can still observe the finished wizard.
	OnWizardFinished(ctx context.Context, w Wizard)
}

// NoopObserver is an Observer that does nothing.
type NoopObserver struct{}

func (NoopObserver) OnWizardLoaded(ctx context.Context, w Wizard)    {}
func (NoopObserver) OnWizardSaving(ctx context.Context, w Wizard)    {}
func (NoopObserver) OnWizardFinishing(ctx context.Context, w Wizard) {}
func (NoopObserver) OnWizardFinished(ctx context.Context, w Wizard)  {}

// CompositeObserver fans out events to multiple observers in order.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnWizardLoaded(ctx context.Context, w Wizard) {
	for _, o := range c.observers {
		o.OnWizardLoaded(ctx, w)
	}
}

func (c *CompositeObserver) OnWizardSaving(ctx context.Context, w Wizard) {
	for _, o := range c.observers {
		o.OnWizardSaving(ctx, w)
	}
}

func (c *CompositeObserver) OnWizardFinishing(ctx context.Context, w Wizard) {
	for _, o := range c.observers {
		o.OnWizardFinishing(ctx, w)
	}
}

func (c *CompositeObserver) OnWizardFinished(ctx context.Context, w Wizard) {
	for _, o := range c.observers {
		o.OnWizardFinished(ctx, w)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs wizard lifecycle events
// with the provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnWizardLoaded(ctx context.Context, w Wizard) {
	o.Logger.DebugContext(ctx, "wizard_loaded",
		slog.String("wizard", w.Name()),
		slog.String("wizard_id", w.ID()),
	)
}

func (o *LoggingObserver) OnWizardSaving(ctx context.Context, w Wizard) {
	o.Logger.DebugContext(ctx, "wizard_saving",
		slog.String("wizard", w.Name()),
		slog.String("wizard_id", w.ID()),
	)
}

func (o *LoggingObserver) OnWizardFinishing(ctx context.Context, w Wizard) {
	o.Logger.InfoContext(ctx, "wizard_finishing",
		slog.String("wizard", w.Name()),
		slog.String("wizard_id", w.ID()),
	)
}

func (o *LoggingObserver) OnWizardFinished(ctx context.Context, w Wizard) {
	o.Logger.InfoContext(ctx, "wizard_finished",
		slog.String("wizard", w.Name()),
		slog.String("wizard_id", w.ID()),
	)
}

// BasicMetrics counts lifecycle events. It implements Observer and can be
// combined with other observers via NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	loaded    atomic.Int64
	saved     atomic.Int64
	finishing atomic.Int64
	finished  atomic.Int64
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	Loaded    int64
	Saved     int64
	Finishing int64
	Finished  int64
}

func (m *BasicMetrics) OnWizardLoaded(ctx context.Context, w Wizard)    { m.loaded.Add(1) }
func (m *BasicMetrics) OnWizardSaving(ctx context.Context, w Wizard)    { m.saved.Add(1) }
func (m *BasicMetrics) OnWizardFinishing(ctx context.Context, w Wizard) { m.finishing.Add(1) }
func (m *BasicMetrics) OnWizardFinished(ctx context.Context, w Wizard)  { m.finished.Add(1) }

func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	return BasicMetricsSnapshot{
		Loaded:    m.loaded.Load(),
		Saved:     m.saved.Load(),
		Finishing: m.finishing.Load(),
		Finished:  m.finished.Load(),
	}
}

// RemoveCompletedObserver deletes a wizard's persisted record once the
// Finished event fires. Register it when completed wizards should not
// linger in storage.
type RemoveCompletedObserver struct {
	NoopObserver

	Repository Repository
}

func (o *RemoveCompletedObserver) OnWizardFinished(ctx context.Context, w Wizard) {
	// Best effort: the wizard has already completed, a failed delete only
	// leaves a record behind for the expiry sweep.
	_ = o.Repository.DeleteWizard(ctx, w)
}
