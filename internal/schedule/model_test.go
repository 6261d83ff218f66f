package schedule_test

import (
	"context"
	"testing"

	"awake/internal/schedule"
	"awake/internal/testutil"
)

type modelFixture struct {
	model *schedule.ScheduleModel
	sys   *testutil.FakeSystem
	store schedule.PreferenceStore
	ops   schedule.OperationLog
}

func newModel(t *testing.T, report string) *modelFixture {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	sys := testutil.NewFakeSystem(report)
	r := schedule.NewReconciler(sys, db, nil, testutil.FixedClock(), testutil.NewStubIDGenerator())

	m, err := schedule.NewScheduleModel(context.Background(), db, sys, r, db, nil)
	if err != nil {
		t.Fatalf("NewScheduleModel() error = %v", err)
	}
	return &modelFixture{model: m, sys: sys, store: db, ops: db}
}

func TestNewScheduleModel(t *testing.T) {
	t.Run("uses defaults and refreshes", func(t *testing.T) {
		f := newModel(t, testutil.ScheduleReport("sleep at 22:00 weekdays only"))

		if f.model.Desired() != schedule.DefaultDesiredSchedule() {
			t.Errorf("Desired() = %+v, want defaults", f.model.Desired())
		}
		if f.sys.Queries != 1 {
			t.Errorf("Queries = %d, want 1", f.sys.Queries)
		}
		if !f.model.HasActiveSchedule() {
			t.Error("HasActiveSchedule() = false, want true")
		}
	})

	t.Run("loads saved schedule", func(t *testing.T) {
		db := testutil.NewTestDatabase(t)
		saved := schedule.DesiredSchedule{SleepHour: 21, SleepMinute: 15, WakeEnabled: false, WakeHour: 8, WakeMinute: 45, Days: schedule.Weekends}
		if err := db.SaveDesired(saved); err != nil {
			t.Fatalf("SaveDesired() error = %v", err)
		}

		sys := testutil.NewFakeSystem("")
		r := schedule.NewReconciler(sys, db, nil, nil, nil)
		m, err := schedule.NewScheduleModel(context.Background(), db, sys, r, db, nil)
		if err != nil {
			t.Fatalf("NewScheduleModel() error = %v", err)
		}
		if m.Desired() != saved {
			t.Errorf("Desired() = %+v, want %+v", m.Desired(), saved)
		}
	})

	t.Run("query failure reads as no schedule", func(t *testing.T) {
		db := testutil.NewTestDatabase(t)
		sys := testutil.NewFakeSystem(testutil.ScheduleReport("sleep at 22:00 every day"))
		sys.QueryErr = testutil.ErrFakeQuery
		r := schedule.NewReconciler(sys, db, nil, nil, nil)

		m, err := schedule.NewScheduleModel(context.Background(), db, sys, r, db, nil)
		if err != nil {
			t.Fatalf("NewScheduleModel() error = %v", err)
		}
		if m.HasActiveSchedule() {
			t.Error("HasActiveSchedule() = true, want false")
		}
	})
}

func TestScheduleModel_Mutators(t *testing.T) {
	f := newModel(t, "")

	if err := f.model.SetSleepTime(22, 30); err != nil {
		t.Fatalf("SetSleepTime() error = %v", err)
	}
	if err := f.model.SetWakeTime(6, 15); err != nil {
		t.Fatalf("SetWakeTime() error = %v", err)
	}
	if err := f.model.SetWakeEnabled(false); err != nil {
		t.Fatalf("SetWakeEnabled() error = %v", err)
	}
	if err := f.model.SetDays(schedule.Weekdays); err != nil {
		t.Fatalf("SetDays() error = %v", err)
	}

	want := schedule.DesiredSchedule{SleepHour: 22, SleepMinute: 30, WakeEnabled: false, WakeHour: 6, WakeMinute: 15, Days: schedule.Weekdays}
	if f.model.Desired() != want {
		t.Errorf("Desired() = %+v, want %+v", f.model.Desired(), want)
	}

	// Each mutation is persisted immediately.
	got, ok, err := f.store.LoadDesired()
	if err != nil || !ok {
		t.Fatalf("LoadDesired() = ok %v, err %v", ok, err)
	}
	if got != want {
		t.Errorf("stored = %+v, want %+v", got, want)
	}

	// The OS is not touched by edits.
	if len(f.sys.Commands) != 0 {
		t.Errorf("Commands = %q, want none", f.sys.Commands)
	}
}

func TestScheduleModel_InvalidMutationIsRejected(t *testing.T) {
	f := newModel(t, "")

	if err := f.model.SetSleepTime(24, 0); err == nil {
		t.Fatal("SetSleepTime(24, 0) expected error")
	}
	if err := f.model.SetDays("MWF"); err == nil {
		t.Fatal("SetDays(MWF) expected error")
	}
	if f.model.Desired() != schedule.DefaultDesiredSchedule() {
		t.Errorf("Desired() = %+v, want unchanged defaults", f.model.Desired())
	}
	if _, ok, _ := f.store.LoadDesired(); ok {
		t.Error("invalid schedule was persisted")
	}
}

func TestScheduleModel_Enable(t *testing.T) {
	t.Run("approved prompt shows new schedule", func(t *testing.T) {
		f := newModel(t, "")
		f.sys.OnSubmit = testutil.ApprovingOS()

		if err := f.model.SetSleepTime(23, 30); err != nil {
			t.Fatal(err)
		}
		if f.model.HasActiveSchedule() {
			t.Fatal("HasActiveSchedule() = true before enabling")
		}

		obs, err := f.model.Enable(context.Background())
		if err != nil {
			t.Fatalf("Enable() error = %v", err)
		}
		if !obs.HasSchedule || !f.model.HasActiveSchedule() {
			t.Fatal("schedule not active after approved Enable()")
		}
		if *obs.SleepTime != "23:30" || *obs.WakeTime != "07:00" || obs.DaysCode() != "MTWRFSU" {
			t.Errorf("observed = %s", obs.Summary())
		}
		if f.model.Drift().Any() {
			t.Errorf("Drift() = %+v, want none", f.model.Drift())
		}

		ops, _ := f.ops.ListOperations(1)
		if len(ops) != 1 || ops[0].Observed != obs.Summary() {
			t.Errorf("operation observed = %+v, want %q", ops, obs.Summary())
		}
	})

	t.Run("dismissed prompt leaves prior schedule", func(t *testing.T) {
		prior := testutil.ScheduleReport("sleep at 22:00 weekends only")
		f := newModel(t, prior)

		obs, err := f.model.Enable(context.Background())
		if err != nil {
			t.Fatalf("Enable() error = %v", err)
		}
		if len(f.sys.Commands) != 1 {
			t.Fatalf("Commands = %q, want one", f.sys.Commands)
		}
		if *obs.SleepTime != "22:00" || obs.DaysCode() != "SU" {
			t.Errorf("observed = %s, want prior schedule", obs.Summary())
		}
		if !f.model.Drift().Any() {
			t.Error("Drift().Any() = false, want drift against desired defaults")
		}
	})

	t.Run("wake disabled installs sleep only", func(t *testing.T) {
		f := newModel(t, "")
		f.sys.OnSubmit = testutil.ApprovingOS()
		if err := f.model.SetWakeEnabled(false); err != nil {
			t.Fatal(err)
		}

		obs, err := f.model.Enable(context.Background())
		if err != nil {
			t.Fatalf("Enable() error = %v", err)
		}
		if obs.WakeTime != nil {
			t.Errorf("WakeTime = %q, want nil", *obs.WakeTime)
		}
		if f.sys.Commands[0] != "pmset repeat sleep MTWRFSU 23:00:00" {
			t.Errorf("command = %q", f.sys.Commands[0])
		}
	})
}

func TestScheduleModel_Pause(t *testing.T) {
	f := newModel(t, testutil.ScheduleReport("sleep at 23:00 every day"))
	f.sys.OnSubmit = testutil.ApprovingOS()

	obs, err := f.model.Pause(context.Background())
	if err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	if obs.HasSchedule || f.model.HasActiveSchedule() {
		t.Error("schedule still active after approved Pause()")
	}
	if f.sys.Commands[0] != schedule.CancelCommand {
		t.Errorf("command = %q, want %q", f.sys.Commands[0], schedule.CancelCommand)
	}
	if f.sys.Queries != 2 {
		t.Errorf("Queries = %d, want 2 (initial and after submit)", f.sys.Queries)
	}
}

func TestCompareSchedules(t *testing.T) {
	d := schedule.DefaultDesiredSchedule()

	tests := []struct {
		name string
		d    schedule.DesiredSchedule
		obs  schedule.ObservedSchedule
		want schedule.Drift
	}{
		{
			name: "no system schedule",
			d:    d,
			obs:  schedule.ObservedSchedule{},
			want: schedule.Drift{},
		},
		{
			name: "matching with unpadded wake hour",
			d:    d,
			obs:  schedule.ObservedSchedule{HasSchedule: true, SleepTime: ptr("23:00"), WakeTime: ptr("7:00"), Days: ptr("MTWRFSU")},
			want: schedule.Drift{},
		},
		{
			name: "different sleep time and days",
			d:    d,
			obs:  schedule.ObservedSchedule{HasSchedule: true, SleepTime: ptr("22:00"), WakeTime: ptr("7:00"), Days: ptr("MWF")},
			want: schedule.Drift{Sleep: true, Days: true},
		},
		{
			name: "wake missing",
			d:    d,
			obs:  schedule.ObservedSchedule{HasSchedule: true, SleepTime: ptr("23:00"), Days: ptr("MTWRFSU")},
			want: schedule.Drift{Wake: true},
		},
		{
			name: "wake present while disabled",
			d:    func() schedule.DesiredSchedule { x := d; x.WakeEnabled = false; return x }(),
			obs:  schedule.ObservedSchedule{HasSchedule: true, SleepTime: ptr("23:00"), WakeTime: ptr("7:00"), Days: ptr("MTWRFSU")},
			want: schedule.Drift{Wake: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := schedule.CompareSchedules(tt.d, tt.obs); got != tt.want {
				t.Errorf("CompareSchedules() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
