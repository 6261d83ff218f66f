package pmset

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"al.essio.dev/pkg/shellescape"

	"awake/internal/schedule"
)

// Querier reads the current power schedule with `pmset -g sched`.
type Querier struct {
	path   string
	logger schedule.Logger
}

// NewQuerier creates a Querier that runs the pmset binary at path.
func NewQuerier(path string, logger schedule.Logger) *Querier {
	if logger == nil {
		logger = schedule.NewNopLogger()
	}
	return &Querier{path: path, logger: logger}
}

// Query runs the scheduler query and returns its combined stdout and stderr,
// trimmed. A non-zero exit still returns whatever was printed.
func (q *Querier) Query(ctx context.Context) (string, error) {
	argv := []string{q.path, "-g", "sched"}
	q.logger.Debug("querying system schedule", "command", shellescape.QuoteCommand(argv))

	out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).CombinedOutput()
	report := strings.TrimSpace(string(out))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			q.logger.Warn("schedule query exited with error", "error", err)
			return report, nil
		}
		return "", fmt.Errorf("running %s: %w", q.path, err)
	}
	return report, nil
}

var _ schedule.SystemQuerier = (*Querier)(nil)
