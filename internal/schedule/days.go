package schedule

import (
	"fmt"
	"strings"
)

// DaySet is one of the three repeat sets this tool writes to the OS scheduler.
// The underlying string is the exact day code pmset expects.
type DaySet string

const (
	EveryDay DaySet = "MTWRFSU"
	Weekdays DaySet = "MTWRF"
	Weekends DaySet = "SU"
)

// AllDaySets returns the day sets in display order.
func AllDaySets() []DaySet {
	return []DaySet{EveryDay, Weekdays, Weekends}
}

// Code returns the pmset day code.
func (d DaySet) Code() string { return string(d) }

func (d DaySet) String() string { return string(d) }

// Valid reports whether d is one of the canonical day sets.
func (d DaySet) Valid() bool {
	switch d {
	case EveryDay, Weekdays, Weekends:
		return true
	}
	return false
}

// CronWeekdays returns the cron day-of-week field for d.
func (d DaySet) CronWeekdays() string {
	return cronWeekdays(d.Code())
}

// ParseDaySet accepts a canonical day code or one of the command-line aliases.
func ParseDaySet(s string) (DaySet, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mtwrfsu", "everyday", "every-day", "daily":
		return EveryDay, nil
	case "mtwrf", "weekdays":
		return Weekdays, nil
	case "su", "weekends":
		return Weekends, nil
	}
	return "", fmt.Errorf("unknown day set %q (want everyday, weekdays or weekends)", s)
}

// dayLetters maps pmset day letters to cron day-of-week numbers.
var dayLetters = map[rune]int{
	'U': 0,
	'M': 1,
	'T': 2,
	'W': 3,
	'R': 4,
	'F': 5,
	'S': 6,
}

func isDayLetter(r rune) bool {
	_, ok := dayLetters[r]
	return ok
}

// cronWeekdays converts an arbitrary pmset day code into a cron day-of-week
// field. Unknown letters are skipped; an empty or full week yields "*".
func cronWeekdays(code string) string {
	var seen [7]bool
	n := 0
	for _, r := range code {
		if dow, ok := dayLetters[r]; ok && !seen[dow] {
			seen[dow] = true
			n++
		}
	}
	if n == 0 || n == 7 {
		return "*"
	}
	parts := make([]string, 0, n)
	for dow, ok := range seen {
		if ok {
			parts = append(parts, fmt.Sprint(dow))
		}
	}
	return strings.Join(parts, ",")
}
