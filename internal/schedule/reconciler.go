package schedule

import (
	"context"
	"fmt"
)

// CancelCommand removes every repeating power event.
const CancelCommand = "pmset repeat cancel"

// BuildApplyCommand returns the pmset command that installs d as the
// repeating schedule. With wake disabled only the sleep event is installed,
// leaving wake to Wake on LAN.
func BuildApplyCommand(d DesiredSchedule) string {
	days := d.Days.Code()
	if d.WakeEnabled {
		return fmt.Sprintf("pmset repeat wakeorpoweron %s %s sleep %s %s",
			days, d.WakeTimePMSet(), days, d.SleepTimePMSet())
	}
	return fmt.Sprintf("pmset repeat sleep %s %s", days, d.SleepTimePMSet())
}

// Reconciler submits schedule changes to the OS through an Elevator.
// Submission is fire-and-forget: the elevation prompt can be dismissed
// without any signal, so the resulting schedule is only known from the next
// query of the system.
type Reconciler struct {
	elevator Elevator
	ops      OperationLog
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

// NewReconciler creates a Reconciler. ops may be nil to skip history.
func NewReconciler(elevator Elevator, ops OperationLog, logger Logger, clock Clock, idgen IDGenerator) *Reconciler {
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	if idgen == nil {
		idgen = UUIDGenerator{}
	}
	return &Reconciler{
		elevator: elevator,
		ops:      ops,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// RequestApply submits the command that installs d. The returned Operation
// describes what was submitted; an error means the command could not be
// handed to the elevator at all.
func (r *Reconciler) RequestApply(ctx context.Context, d DesiredSchedule) (*Operation, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schedule: %w", err)
	}
	return r.submit(ctx, "apply", BuildApplyCommand(d))
}

// RequestCancel submits the command that removes all repeating events.
func (r *Reconciler) RequestCancel(ctx context.Context) (*Operation, error) {
	return r.submit(ctx, "cancel", CancelCommand)
}

func (r *Reconciler) submit(ctx context.Context, operation, command string) (*Operation, error) {
	op := &Operation{
		RequestID: r.idgen.New(),
		StartedAt: r.clock.Now(),
		Operation: operation,
		Command:   command,
		Status:    "submitted",
	}
	r.logger.Info("submitting scheduler command", "operation", operation, "request_id", op.RequestID, "command", command)

	submitErr := r.elevator.Submit(ctx, command)
	if submitErr != nil {
		op.Status = "error"
		r.logger.Error("elevated command not submitted", "request_id", op.RequestID, "error", submitErr)
	}

	if r.ops != nil {
		if err := r.ops.CreateOperation(op); err != nil {
			r.logger.Warn("recording operation failed", "request_id", op.RequestID, "error", err)
		}
	}

	if submitErr != nil {
		return op, fmt.Errorf("submitting %s: %w", operation, submitErr)
	}
	return op, nil
}
