package schedule_test

import (
	"testing"
	"time"

	"awake/internal/schedule"
)

func TestObservedSchedule_NextEvents(t *testing.T) {
	// Monday 2024-01-15 10:30 UTC.
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	t.Run("no schedule", func(t *testing.T) {
		ev, err := schedule.ObservedSchedule{}.NextEvents(now)
		if err != nil {
			t.Fatalf("NextEvents() error = %v", err)
		}
		if !ev.Sleep.IsZero() || !ev.Wake.IsZero() {
			t.Errorf("NextEvents() = %+v, want zero", ev)
		}
	})

	t.Run("every day", func(t *testing.T) {
		obs := schedule.ObservedSchedule{HasSchedule: true, SleepTime: ptr("23:00"), WakeTime: ptr("7:15"), Days: ptr("MTWRFSU")}

		ev, err := obs.NextEvents(now)
		if err != nil {
			t.Fatalf("NextEvents() error = %v", err)
		}
		if want := time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC); !ev.Sleep.Equal(want) {
			t.Errorf("Sleep = %v, want %v", ev.Sleep, want)
		}
		if want := time.Date(2024, 1, 16, 7, 15, 0, 0, time.UTC); !ev.Wake.Equal(want) {
			t.Errorf("Wake = %v, want %v", ev.Wake, want)
		}
	})

	t.Run("weekends skip to saturday", func(t *testing.T) {
		obs := schedule.ObservedSchedule{HasSchedule: true, SleepTime: ptr("22:30"), Days: ptr("SU")}

		ev, err := obs.NextEvents(now)
		if err != nil {
			t.Fatalf("NextEvents() error = %v", err)
		}
		if want := time.Date(2024, 1, 20, 22, 30, 0, 0, time.UTC); !ev.Sleep.Equal(want) {
			t.Errorf("Sleep = %v, want %v", ev.Sleep, want)
		}
		if !ev.Wake.IsZero() {
			t.Errorf("Wake = %v, want zero", ev.Wake)
		}
	})
}
