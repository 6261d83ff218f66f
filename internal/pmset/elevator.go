package pmset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"al.essio.dev/pkg/shellescape"

	"awake/internal/schedule"
)

// OsascriptElevator runs commands through AppleScript's
// `do shell script ... with administrator privileges`, which shows the
// system credential dialog and blocks until it is answered.
type OsascriptElevator struct {
	path   string
	logger schedule.Logger
}

func NewOsascriptElevator(path string, logger schedule.Logger) *OsascriptElevator {
	if logger == nil {
		logger = schedule.NewNopLogger()
	}
	return &OsascriptElevator{path: path, logger: logger}
}

// AdminScript wraps command in an AppleScript that runs it with administrator privileges.
func AdminScript(command string) string {
	return fmt.Sprintf("do shell script %s with administrator privileges", appleScriptString(command))
}

// appleScriptString quotes s as an AppleScript string literal.
func appleScriptString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// Submit hands command to osascript. A dismissed prompt or failed command
// exits non-zero; that is logged and not reported, since it cannot be told
// apart from other outcomes. Only failing to start osascript is an error.
func (e *OsascriptElevator) Submit(ctx context.Context, command string) error {
	return run(ctx, e.logger, []string{e.path, "-e", AdminScript(command)})
}

// SudoElevator runs commands through sudo, prompting on the terminal if needed.
type SudoElevator struct {
	path   string
	stdin  io.Reader
	stderr io.Writer
	logger schedule.Logger
}

// NewSudoElevator creates a SudoElevator. stdin and stderr are attached to
// sudo so it can prompt for a password.
func NewSudoElevator(path string, stdin io.Reader, stderr io.Writer, logger schedule.Logger) *SudoElevator {
	if logger == nil {
		logger = schedule.NewNopLogger()
	}
	return &SudoElevator{path: path, stdin: stdin, stderr: stderr, logger: logger}
}

func (e *SudoElevator) Submit(ctx context.Context, command string) error {
	argv := sudoArgv(e.path, command)
	e.logger.Debug("running elevated command", "argv", shellescape.QuoteCommand(argv))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = e.stdin
	cmd.Stderr = e.stderr
	return classify(e.logger, cmd.Run())
}

// sudoArgv is the argument vector SudoElevator runs and DryRunElevator prints.
func sudoArgv(sudo, command string) []string {
	return []string{sudo, "--", "/bin/sh", "-c", command}
}

// DryRunElevator prints commands instead of running them.
type DryRunElevator struct {
	w      io.Writer
	logger schedule.Logger
}

func NewDryRunElevator(w io.Writer, logger schedule.Logger) *DryRunElevator {
	if logger == nil {
		logger = schedule.NewNopLogger()
	}
	return &DryRunElevator{w: w, logger: logger}
}

func (e *DryRunElevator) Submit(_ context.Context, command string) error {
	line := shellescape.QuoteCommand(sudoArgv("sudo", command))
	e.logger.Info("dry run, command not executed", "argv", line)
	if _, err := fmt.Fprintf(e.w, "would run: %s\n", line); err != nil {
		return fmt.Errorf("writing dry run output: %w", err)
	}
	return nil
}

func run(ctx context.Context, logger schedule.Logger, argv []string) error {
	logger.Debug("running elevated command", "argv", shellescape.QuoteCommand(argv))
	out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).CombinedOutput()
	if len(out) > 0 {
		logger.Debug("elevated command output", "output", strings.TrimSpace(string(out)))
	}
	return classify(logger, err)
}

// classify drops exit statuses and keeps errors that prevented the command from running.
func classify(logger schedule.Logger, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logger.Warn("elevated command exited non-zero (prompt dismissed or command failed)", "exit_code", exitErr.ExitCode())
		return nil
	}
	return fmt.Errorf("starting elevated command: %w", err)
}

var (
	_ schedule.Elevator = (*OsascriptElevator)(nil)
	_ schedule.Elevator = (*SudoElevator)(nil)
	_ schedule.Elevator = (*DryRunElevator)(nil)
)
