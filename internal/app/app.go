package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/afero"

	"awake/internal/config"
	"awake/internal/database"
	"awake/internal/l10n"
	"awake/internal/login"
	"awake/internal/pmset"
	"awake/internal/schedule"
)

// Options adjusts how an AwakeApp talks to its environment. The zero value
// uses the real system.
type Options struct {
	Verbose bool
	Stdin   io.Reader
	Out     io.Writer

	// PreferredLanguage is the OS locale used when the language setting is
	// "system". Empty means read it from the environment.
	PreferredLanguage string

	Fs       afero.Fs
	Querier  schedule.SystemQuerier
	Elevator schedule.Elevator
	Clock    schedule.Clock
	IDGen    schedule.IDGenerator
}

// AwakeApp is the application layer between the CLI and the schedule model.
// It constructs all dependencies from config and owns their lifecycle.
type AwakeApp struct {
	cfg       *config.Config
	db        *database.SQLiteDatabase
	model     *schedule.ScheduleModel
	agent     *login.LaunchAgent
	clock     schedule.Clock
	logger    schedule.Logger
	preferred string
	logFile   *os.File
}

// NewAwakeApp creates a fully wired AwakeApp from the given config and
// performs the initial system query. The caller must call Close when done.
func NewAwakeApp(ctx context.Context, cfg *config.Config, opts Options) (*AwakeApp, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Clock == nil {
		opts.Clock = schedule.RealClock{}
	}
	if opts.IDGen == nil {
		opts.IDGen = schedule.UUIDGenerator{}
	}
	if opts.PreferredLanguage == "" {
		opts.PreferredLanguage = l10n.PreferredFromEnv()
	}

	stderrLevel := slog.LevelWarn
	if opts.Verbose {
		stderrLevel = slog.LevelDebug
	}
	runID := opts.Clock.Now().UTC().Format("20060102T150405Z")
	sl, logFile, err := newLogger(cfg.LogDir, runID, stderrLevel)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: sl}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating database: %w", err)
	}

	querier := opts.Querier
	if querier == nil {
		querier = pmset.NewQuerierFromConfig(cfg.PMSet, logger)
	}
	elevator := opts.Elevator
	if elevator == nil {
		elevator, err = pmset.NewElevatorFromConfig(cfg.Elevation, opts.Stdin, opts.Out, logger)
		if err != nil {
			db.Close()
			logFile.Close()
			return nil, fmt.Errorf("creating elevator: %w", err)
		}
	}

	program := cfg.Login.Program
	if program == "" {
		if program, err = os.Executable(); err != nil {
			logger.Warn("cannot determine executable for launch agent", "error", err)
			program = ""
		}
	}
	var agentArgs []string
	if program != "" {
		agentArgs = []string{program, "check"}
	}
	agent := login.NewLaunchAgent(opts.Fs, cfg.Login.AgentsDir, cfg.Login.Label, agentArgs...)

	reconciler := schedule.NewReconciler(elevator, db, logger, opts.Clock, opts.IDGen)
	model, err := schedule.NewScheduleModel(ctx, db, querier, reconciler, db, logger)
	if err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("loading schedule: %w", err)
	}

	return &AwakeApp{
		cfg:       cfg,
		db:        db,
		model:     model,
		agent:     agent,
		clock:     opts.Clock,
		logger:    logger,
		preferred: opts.PreferredLanguage,
		logFile:   logFile,
	}, nil
}

// Desired returns the user's schedule settings.
func (a *AwakeApp) Desired() schedule.DesiredSchedule { return a.model.Desired() }

// Observed returns the schedule last reported by the system.
func (a *AwakeApp) Observed() schedule.ObservedSchedule { return a.model.Observed() }

// HasActiveSchedule reports whether the system has a repeating sleep event.
func (a *AwakeApp) HasActiveSchedule() bool { return a.model.HasActiveSchedule() }

// Drift compares the settings with the system schedule.
func (a *AwakeApp) Drift() schedule.Drift { return a.model.Drift() }

// NextEvents returns the next sleep and wake of the system schedule.
func (a *AwakeApp) NextEvents() (schedule.UpcomingEvents, error) {
	return a.model.Observed().NextEvents(a.clock.Now())
}

// Now returns the app clock's current time.
func (a *AwakeApp) Now() time.Time { return a.clock.Now() }

// Refresh re-reads the system schedule.
func (a *AwakeApp) Refresh(ctx context.Context) schedule.ObservedSchedule {
	return a.model.Refresh(ctx)
}

// SystemDetails refreshes and returns the raw scheduler report.
func (a *AwakeApp) SystemDetails(ctx context.Context) string {
	a.model.Refresh(ctx)
	return a.model.Report()
}

// ScheduleEdit holds the settings to change. Nil fields are left alone.
type ScheduleEdit struct {
	Sleep       *string // HH:MM
	Wake        *string // HH:MM
	WakeEnabled *bool
	Days        *string // day code or alias
}

// UpdateSchedule parses and applies edit, then saves. Nothing changes if
// any field is invalid.
func (a *AwakeApp) UpdateSchedule(edit ScheduleEdit) error {
	var (
		sleepH, sleepM, wakeH, wakeM int
		days                         schedule.DaySet
		err                          error
	)
	if edit.Sleep != nil {
		if sleepH, sleepM, err = schedule.ParseClock(*edit.Sleep); err != nil {
			return fmt.Errorf("sleep time: %w", err)
		}
	}
	if edit.Wake != nil {
		if wakeH, wakeM, err = schedule.ParseClock(*edit.Wake); err != nil {
			return fmt.Errorf("wake time: %w", err)
		}
	}
	if edit.Days != nil {
		if days, err = schedule.ParseDaySet(*edit.Days); err != nil {
			return err
		}
	}

	return a.model.Update(func(d *schedule.DesiredSchedule) {
		if edit.Sleep != nil {
			d.SleepHour, d.SleepMinute = sleepH, sleepM
		}
		if edit.Wake != nil {
			d.WakeHour, d.WakeMinute = wakeH, wakeM
		}
		if edit.WakeEnabled != nil {
			d.WakeEnabled = *edit.WakeEnabled
		}
		if edit.Days != nil {
			d.Days = days
		}
	})
}

// Enable asks the system to install the desired schedule and returns what
// the system reports afterwards.
func (a *AwakeApp) Enable(ctx context.Context) (schedule.ObservedSchedule, error) {
	return a.model.Enable(ctx)
}

// Pause asks the system to cancel the repeating schedule and returns what
// the system reports afterwards.
func (a *AwakeApp) Pause(ctx context.Context) (schedule.ObservedSchedule, error) {
	return a.model.Pause(ctx)
}

// Check refreshes and logs a warning when the system schedule differs from
// the settings. It is what the launch agent runs at login.
func (a *AwakeApp) Check(ctx context.Context) schedule.Drift {
	obs := a.model.Refresh(ctx)
	drift := a.model.Drift()
	if drift.Any() {
		a.logger.Warn("system schedule differs from settings",
			"observed", obs.Summary(),
			"desired", schedule.BuildApplyCommand(a.model.Desired()),
		)
	} else {
		a.logger.Info("system schedule checked", "observed", obs.Summary())
	}
	return drift
}

// LaunchAtLogin reports whether the launch agent is installed.
func (a *AwakeApp) LaunchAtLogin() (bool, error) {
	return a.agent.Enabled()
}

// SetLaunchAtLogin installs or removes the launch agent.
func (a *AwakeApp) SetLaunchAtLogin(enabled bool) error {
	if err := a.agent.SetEnabled(enabled); err != nil {
		a.logger.Error("launch at login error", "error", err)
		return err
	}
	a.logger.Info("launch at login updated", "enabled", enabled, "path", a.agent.Path())
	return nil
}

// Language returns the saved language setting. Unset or unknown values read as System.
func (a *AwakeApp) Language() (l10n.Language, error) {
	code, err := a.db.Language()
	if err != nil {
		return l10n.System, err
	}
	lang, err := l10n.ParseLanguage(code)
	if err != nil {
		a.logger.Warn("ignoring unknown saved language", "code", code)
		return l10n.System, nil
	}
	return lang, nil
}

// SetLanguage saves the language setting.
func (a *AwakeApp) SetLanguage(lang l10n.Language) error {
	if err := a.db.SetLanguage(string(lang)); err != nil {
		return fmt.Errorf("saving language: %w", err)
	}
	return nil
}

// Strings returns the translation table for the saved language.
func (a *AwakeApp) Strings() l10n.Strings {
	lang, err := a.Language()
	if err != nil {
		a.logger.Warn("reading language failed", "error", err)
	}
	return l10n.ForLanguage(lang, a.preferred)
}

// History returns the most recent submitted scheduler commands.
func (a *AwakeApp) History(limit int) ([]*schedule.Operation, error) {
	return a.db.ListOperations(limit)
}

// Close releases the database and the log file.
func (a *AwakeApp) Close() error {
	var firstErr error
	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
