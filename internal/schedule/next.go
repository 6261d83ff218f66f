package schedule

import (
	"fmt"
	"time"

	"github.com/adhocore/gronx"
)

// UpcomingEvents holds the next occurrence of each observed repeating event.
// A zero time means the event is not scheduled.
type UpcomingEvents struct {
	Sleep time.Time
	Wake  time.Time
}

// NextEvents returns when the observed schedule next fires strictly after now.
// pmset attaches the day set to the sleep line; the wake event is assumed to
// share it, which holds for every schedule this tool installs.
func (o ObservedSchedule) NextEvents(now time.Time) (UpcomingEvents, error) {
	var ev UpcomingEvents
	if !o.HasSchedule || o.SleepTime == nil {
		return ev, nil
	}
	dow := cronWeekdays(o.DaysCode())

	sleep, err := nextAt(*o.SleepTime, dow, now)
	if err != nil {
		return ev, fmt.Errorf("next sleep: %w", err)
	}
	ev.Sleep = sleep

	if o.WakeTime != nil {
		wake, err := nextAt(*o.WakeTime, dow, now)
		if err != nil {
			return ev, fmt.Errorf("next wake: %w", err)
		}
		ev.Wake = wake
	}
	return ev, nil
}

func nextAt(clock, dow string, now time.Time) (time.Time, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	expr := fmt.Sprintf("%d %d * * %s", minute, hour, dow)
	return gronx.NextTickAfter(expr, now, false)
}
