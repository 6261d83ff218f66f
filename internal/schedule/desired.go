package schedule

import (
	"fmt"
	"strconv"
)

// DesiredSchedule is the schedule the user asked for. It is mutated only by
// explicit user actions and persisted after every mutation.
type DesiredSchedule struct {
	SleepHour   int
	SleepMinute int
	WakeEnabled bool
	WakeHour    int
	WakeMinute  int
	Days        DaySet
}

// DefaultDesiredSchedule returns the schedule used before anything has been saved.
func DefaultDesiredSchedule() DesiredSchedule {
	return DesiredSchedule{
		SleepHour:   23,
		SleepMinute: 0,
		WakeEnabled: true,
		WakeHour:    7,
		WakeMinute:  0,
		Days:        EveryDay,
	}
}

// Validate checks field ranges and that Days is a canonical day set.
func (d DesiredSchedule) Validate() error {
	if err := validateClock(d.SleepHour, d.SleepMinute); err != nil {
		return fmt.Errorf("sleep time: %w", err)
	}
	if err := validateClock(d.WakeHour, d.WakeMinute); err != nil {
		return fmt.Errorf("wake time: %w", err)
	}
	if !d.Days.Valid() {
		return fmt.Errorf("invalid day set %q", string(d.Days))
	}
	return nil
}

func (d DesiredSchedule) SleepTimeDisplay() string { return formatDisplay(d.SleepHour, d.SleepMinute) }
func (d DesiredSchedule) WakeTimeDisplay() string  { return formatDisplay(d.WakeHour, d.WakeMinute) }

// SleepTimePMSet returns the sleep time as HH:MM:00, the granularity pmset requires.
func (d DesiredSchedule) SleepTimePMSet() string { return formatPMSet(d.SleepHour, d.SleepMinute) }

// WakeTimePMSet returns the wake time as HH:MM:00.
func (d DesiredSchedule) WakeTimePMSet() string { return formatPMSet(d.WakeHour, d.WakeMinute) }

func formatDisplay(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func formatPMSet(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d:00", hour, minute)
}

func validateClock(hour, minute int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("hour %d out of range 0..23", hour)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("minute %d out of range 0..59", minute)
	}
	return nil
}

// ParseClock parses an H:MM or HH:MM time of day. The whole input must be the time.
func ParseClock(s string) (hour, minute int, err error) {
	m, ok := findTime(s)
	if !ok || m != s {
		return 0, 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	return splitClock(m)
}

// splitClock converts a string already matched by findTime into hour and minute.
func splitClock(m string) (int, int, error) {
	colon := len(m) - 3
	hour, _ := strconv.Atoi(m[:colon])
	minute, _ := strconv.Atoi(m[colon+1:])
	if err := validateClock(hour, minute); err != nil {
		return 0, 0, err
	}
	return hour, minute, nil
}
