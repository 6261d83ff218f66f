package schedule

import (
	"context"
	"fmt"
)

// ScheduleModel pairs the user's desired schedule with the last schedule
// observed from the OS. It has a single owner and no internal locking.
type ScheduleModel struct {
	desired  DesiredSchedule
	observed ObservedSchedule
	report   string

	store      PreferenceStore
	querier    SystemQuerier
	reconciler *Reconciler
	ops        OperationLog
	logger     Logger
}

// NewScheduleModel loads the desired schedule from store, falling back to
// the defaults when nothing was saved, and performs an initial refresh.
func NewScheduleModel(ctx context.Context, store PreferenceStore, querier SystemQuerier, reconciler *Reconciler, ops OperationLog, logger Logger) (*ScheduleModel, error) {
	if logger == nil {
		logger = NewNopLogger()
	}
	m := &ScheduleModel{
		desired:    DefaultDesiredSchedule(),
		store:      store,
		querier:    querier,
		reconciler: reconciler,
		ops:        ops,
		logger:     logger,
	}

	d, ok, err := store.LoadDesired()
	if err != nil {
		return nil, fmt.Errorf("loading schedule: %w", err)
	}
	if ok {
		m.desired = d
	} else {
		logger.Debug("no saved schedule, using defaults")
	}

	m.Refresh(ctx)
	return m, nil
}

// Desired returns a copy of the desired schedule.
func (m *ScheduleModel) Desired() DesiredSchedule { return m.desired }

// Observed returns the last observed snapshot.
func (m *ScheduleModel) Observed() ObservedSchedule { return m.observed }

// Report returns the raw scheduler report behind the last snapshot.
func (m *ScheduleModel) Report() string { return m.report }

// HasActiveSchedule reports whether the OS currently has a repeating sleep
// event. The OS is the authority here, not the desired schedule.
func (m *ScheduleModel) HasActiveSchedule() bool { return m.observed.HasSchedule }

// Refresh queries the OS and replaces the observed snapshot. A failed query
// is treated as an empty report.
func (m *ScheduleModel) Refresh(ctx context.Context) ObservedSchedule {
	report, err := m.querier.Query(ctx)
	if err != nil {
		m.logger.Warn("querying system schedule failed", "error", err)
		report = ""
	}
	m.report = report
	m.observed = Parse(report)
	m.logger.Debug("system schedule refreshed", "observed", m.observed.Summary())
	return m.observed
}

// Update applies fn to a copy of the desired schedule, validates the result
// and persists it. The model is unchanged if validation or saving fails.
func (m *ScheduleModel) Update(fn func(d *DesiredSchedule)) error {
	next := m.desired
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	if err := m.store.SaveDesired(next); err != nil {
		return fmt.Errorf("saving schedule: %w", err)
	}
	m.desired = next
	m.logger.Info("schedule preferences saved",
		"sleep", next.SleepTimeDisplay(),
		"wake", next.WakeTimeDisplay(),
		"wake_enabled", next.WakeEnabled,
		"days", next.Days.Code(),
	)
	return nil
}

func (m *ScheduleModel) SetSleepTime(hour, minute int) error {
	return m.Update(func(d *DesiredSchedule) { d.SleepHour, d.SleepMinute = hour, minute })
}

func (m *ScheduleModel) SetWakeTime(hour, minute int) error {
	return m.Update(func(d *DesiredSchedule) { d.WakeHour, d.WakeMinute = hour, minute })
}

func (m *ScheduleModel) SetWakeEnabled(enabled bool) error {
	return m.Update(func(d *DesiredSchedule) { d.WakeEnabled = enabled })
}

func (m *ScheduleModel) SetDays(days DaySet) error {
	return m.Update(func(d *DesiredSchedule) { d.Days = days })
}

// Enable submits the desired schedule and then re-reads the system.
func (m *ScheduleModel) Enable(ctx context.Context) (ObservedSchedule, error) {
	op, err := m.reconciler.RequestApply(ctx, m.desired)
	return m.afterSubmit(ctx, op, err)
}

// Pause cancels all repeating events and then re-reads the system.
func (m *ScheduleModel) Pause(ctx context.Context) (ObservedSchedule, error) {
	op, err := m.reconciler.RequestCancel(ctx)
	return m.afterSubmit(ctx, op, err)
}

func (m *ScheduleModel) afterSubmit(ctx context.Context, op *Operation, submitErr error) (ObservedSchedule, error) {
	if op == nil {
		return m.observed, submitErr
	}
	obs := m.Refresh(ctx)
	if m.ops != nil && op.ID != 0 {
		if err := m.ops.RecordObserved(op.ID, obs.Summary()); err != nil {
			m.logger.Warn("recording observed schedule failed", "request_id", op.RequestID, "error", err)
		}
	}
	return obs, submitErr
}

// Drift describes where the observed schedule differs from the desired one.
type Drift struct {
	Sleep bool
	Wake  bool
	Days  bool
}

// Any reports whether any field differs.
func (d Drift) Any() bool { return d.Sleep || d.Wake || d.Days }

// Drift compares the desired schedule against the observed snapshot. With no
// active system schedule there is nothing to compare and no drift is reported.
func (m *ScheduleModel) Drift() Drift {
	return CompareSchedules(m.desired, m.observed)
}

// CompareSchedules reports the fields on which d and o disagree. Times are
// compared numerically, so "7:15" matches 07:15.
func CompareSchedules(d DesiredSchedule, o ObservedSchedule) Drift {
	var drift Drift
	if !o.HasSchedule {
		return drift
	}
	drift.Sleep = !clockEquals(o.SleepTime, d.SleepHour, d.SleepMinute)
	if d.WakeEnabled {
		drift.Wake = !clockEquals(o.WakeTime, d.WakeHour, d.WakeMinute)
	} else {
		drift.Wake = o.WakeTime != nil
	}
	drift.Days = o.DaysCode() != d.Days.Code()
	return drift
}

func clockEquals(observed *string, hour, minute int) bool {
	if observed == nil {
		return false
	}
	h, m, err := ParseClock(*observed)
	if err != nil {
		return false
	}
	return h == hour && m == minute
}
