package schedule

import (
	"context"
	"time"
)

// PreferenceStore persists the desired schedule across restarts.
type PreferenceStore interface {
	// LoadDesired returns the saved schedule. ok is false when nothing has
	// ever been saved, in which case the caller uses the defaults.
	LoadDesired() (d DesiredSchedule, ok bool, err error)

	// SaveDesired writes every field of d.
	SaveDesired(d DesiredSchedule) error
}

// SystemQuerier reads the OS scheduler's report of its current events.
type SystemQuerier interface {
	// Query returns the combined, trimmed output of the scheduler query tool.
	Query(ctx context.Context) (string, error)
}

// Elevator runs a shell command with administrator rights. Implementations
// may block for as long as the user leaves a credential prompt open. A nil
// error only means the command was handed off; it says nothing about
// whether the user approved it.
type Elevator interface {
	Submit(ctx context.Context, command string) error
}

// Operation is one submitted scheduler command and what the OS reported afterwards.
type Operation struct {
	ID        int64
	RequestID string
	StartedAt time.Time
	Operation string // "apply" or "cancel"
	Command   string
	Status    string // "submitted" or "error"
	Observed  string // ObservedSchedule.Summary() of the refresh that followed
}

// OperationLog records submitted commands for the history view.
type OperationLog interface {
	CreateOperation(op *Operation) error
	RecordObserved(id int64, observed string) error
	ListOperations(limit int) ([]*Operation, error)
}
