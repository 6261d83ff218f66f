package testutil

import (
	"context"
	"errors"
	"strings"
)

// FakeSystem stands in for the OS scheduler. Its Query returns Report, and
// its Submit records the command and, when OnSubmit is set, lets the test
// change Report the way the OS would.
type FakeSystem struct {
	Report    string
	QueryErr  error
	SubmitErr error
	Commands  []string
	Queries   int

	// OnSubmit is called with each submitted command; it may rewrite Report.
	OnSubmit func(fs *FakeSystem, command string)
}

func NewFakeSystem(report string) *FakeSystem {
	return &FakeSystem{Report: report}
}

func (f *FakeSystem) Query(context.Context) (string, error) {
	f.Queries++
	if f.QueryErr != nil {
		return "", f.QueryErr
	}
	return f.Report, nil
}

func (f *FakeSystem) Submit(_ context.Context, command string) error {
	f.Commands = append(f.Commands, command)
	if f.SubmitErr != nil {
		return f.SubmitErr
	}
	if f.OnSubmit != nil {
		f.OnSubmit(f, command)
	}
	return nil
}

// ErrFakeQuery is a convenience error for query failures.
var ErrFakeQuery = errors.New("pmset unavailable")

// ScheduleReport builds a `pmset -g sched` style report with the given
// repeating-event lines.
func ScheduleReport(lines ...string) string {
	var b strings.Builder
	b.WriteString("Repeating power events:\n")
	for _, l := range lines {
		b.WriteString("  ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// ApprovingOS returns an OnSubmit hook that behaves like an OS whose user
// approves every prompt: apply commands replace the report with the
// corresponding repeating events and cancel clears it.
func ApprovingOS() func(*FakeSystem, string) {
	return func(fs *FakeSystem, command string) {
		fields := strings.Fields(command)
		if len(fields) < 3 || fields[0] != "pmset" || fields[1] != "repeat" {
			return
		}
		if fields[2] == "cancel" {
			fs.Report = ""
			return
		}
		var lines []string
		for i := 2; i+2 < len(fields); i += 3 {
			kind, days, at := fields[i], fields[i+1], fields[i+2]
			at = strings.TrimSuffix(at, ":00")
			lines = append(lines, kind+" at "+at+" "+days)
		}
		fs.Report = ScheduleReport(lines...)
	}
}
