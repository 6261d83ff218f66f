package schedule

import (
	"fmt"
	"strings"
)

const (
	repeatingHeader = "Repeating power events:"
	scheduledHeader = "Scheduled power events:"
)

// ObservedSchedule is a snapshot of the repeating schedule the OS reports.
// Nil fields were absent from the report. Days may hold any combination of
// pmset day letters, not only the three canonical sets.
type ObservedSchedule struct {
	HasSchedule bool
	SleepTime   *string
	WakeTime    *string
	Days        *string
}

// Parse derives an ObservedSchedule from the text printed by `pmset -g sched`.
// It never fails: anything it does not recognize leaves the zero value.
// One-off scheduled events after the repeating section are ignored.
func Parse(report string) ObservedSchedule {
	var obs ObservedSchedule

	if !strings.Contains(report, repeatingHeader) {
		return obs
	}

	inRepeating := false
	for _, line := range strings.Split(report, "\n") {
		if strings.Contains(line, repeatingHeader) {
			inRepeating = true
			continue
		}
		if strings.Contains(line, scheduledHeader) {
			break
		}
		if !inRepeating {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "sleep at"):
			obs.HasSchedule = true
			if t, ok := findTime(trimmed); ok {
				obs.SleepTime = &t
			}
			days := extractDays(trimmed)
			obs.Days = &days
		case strings.HasPrefix(trimmed, "wakepoweron at"), strings.HasPrefix(trimmed, "wakeorpoweron at"):
			if t, ok := findTime(trimmed); ok {
				obs.WakeTime = &t
			}
		}
	}

	return obs
}

// extractDays reads the day set from a sleep line. pmset prints phrases for
// the common sets, so they win over the letter-run heuristic.
func extractDays(line string) string {
	switch {
	case strings.Contains(line, "every day"):
		return EveryDay.Code()
	case strings.Contains(line, "weekdays only"):
		return Weekdays.Code()
	case strings.Contains(line, "weekends only"):
		return Weekends.Code()
	}
	if run, ok := findDayRun(line); ok {
		return run
	}
	return EveryDay.Code()
}

// DaysCode returns the observed day code or "" when none was reported.
func (o ObservedSchedule) DaysCode() string {
	if o.Days == nil {
		return ""
	}
	return *o.Days
}

// Summary renders the snapshot on one line for logs and the operation history.
func (o ObservedSchedule) Summary() string {
	if !o.HasSchedule {
		return "none"
	}
	s := fmt.Sprintf("sleep %s %s", deref(o.SleepTime), o.DaysCode())
	if o.WakeTime != nil {
		s += fmt.Sprintf(", wake %s", *o.WakeTime)
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return "?"
	}
	return *s
}
