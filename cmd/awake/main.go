package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"awake/internal/app"
	"awake/internal/config"
	"awake/internal/l10n"
	"awake/internal/schedule"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file over the built-in defaults.
func loadConfig() (*config.Config, map[string]string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("getting defaults: %w", err)
	}

	base := config.NewConfig(defaults["base_dir"], defaults["home_dir"])
	cfg, err := config.Load(defaults["config_path"], base)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults, nil
}

// newApp reads the config and creates an AwakeApp. The caller must defer app.Close().
func newApp(cmd *cobra.Command) (*app.AwakeApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := app.NewAwakeApp(cmd.Context(), cfg, app.Options{
		Verbose: verbose,
		Stdin:   os.Stdin,
		Out:     cmd.OutOrStdout(),
	})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// confirm asks a yes/no question when stdin is a terminal. Non-interactive
// runs are treated as confirmed.
func confirm(in *os.File, out io.Writer, question string) bool {
	if !term.IsTerminal(int(in.Fd())) {
		return true
	}
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func printObserved(out io.Writer, s l10n.Strings, obs schedule.ObservedSchedule) {
	if !obs.HasSchedule {
		fmt.Fprintf(out, "  %s\n", s.NoSystemSchedule)
		fmt.Fprintf(out, "  %s\n", s.ComputerWillStayAwake)
		return
	}
	fmt.Fprintf(out, "  %s\n", s.ScheduleEnabled)
	if obs.SleepTime != nil {
		fmt.Fprintf(out, "  %s %s · %s\n", s.SleepPrefix, *obs.SleepTime, s.DaysDisplay(obs.DaysCode()))
	}
	if obs.WakeTime != nil {
		fmt.Fprintf(out, "  %s %s\n", s.WakePrefix, *obs.WakeTime)
	}
}

// printSettings shows the saved schedule. Without a timed wake the machine
// is expected to be woken over the network.
func printSettings(out io.Writer, s l10n.Strings, d schedule.DesiredSchedule) {
	fmt.Fprintf(out, "%s:\n", s.YourSettings)
	fmt.Fprintf(out, "  %-12s %s\n", s.SleepTime, d.SleepTimeDisplay())
	fmt.Fprintf(out, "  %-12s %s\n", s.TimedWake, s.OnOff(d.WakeEnabled))
	if d.WakeEnabled {
		fmt.Fprintf(out, "  %-12s %s\n", s.WakeTime, d.WakeTimeDisplay())
	} else {
		fmt.Fprintf(out, "  %s\n", s.WOLNote)
	}
	fmt.Fprintf(out, "  %-12s %s\n", s.Repeat, s.DaysDisplay(d.Days.Code()))
}

// languageCodes lists the accepted arguments of the lang command.
func languageCodes() []string {
	codes := make([]string, 0, len(l10n.Languages()))
	for _, l := range l10n.Languages() {
		codes = append(codes, string(l))
	}
	return codes
}

func relative(t, now time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Format("Mon 15:04"), humanize.RelTime(t, now, "ago", "from now"))
}

var rootCmd = &cobra.Command{
	Use:          "awake",
	Short:        "Daily sleep/wake schedule for macOS",
	SilenceUsage: true,
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show settings and the system schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		s := a.Strings()

		printSettings(out, s, a.Desired())

		fmt.Fprintf(out, "\n%s:\n", s.SystemSchedule)
		printObserved(out, s, a.Observed())

		if a.Drift().Any() {
			fmt.Fprintf(out, "\n! %s\n", s.DriftWarning)
		}

		ev, err := a.NextEvents()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "computing next events: %v\n", err)
			return nil
		}
		now := a.Now()
		if !ev.Sleep.IsZero() || !ev.Wake.IsZero() {
			fmt.Fprintln(out)
		}
		if !ev.Sleep.IsZero() {
			fmt.Fprintf(out, "%-12s %s\n", s.NextSleep, relative(ev.Sleep, now))
		}
		if !ev.Wake.IsZero() {
			fmt.Fprintf(out, "%-12s %s\n", s.NextWake, relative(ev.Wake, now))
		}
		return nil
	},
}

// set command
var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the sleep/wake settings",
	Long: `Change the saved settings. Only the given flags are changed.
The system schedule is not touched until "awake enable".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var edit app.ScheduleEdit
		if flags.Changed("sleep") {
			v, _ := flags.GetString("sleep")
			edit.Sleep = &v
		}
		if flags.Changed("wake") {
			v, _ := flags.GetString("wake")
			edit.Wake = &v
		}
		if flags.Changed("days") {
			v, _ := flags.GetString("days")
			edit.Days = &v
		}
		if flags.Changed("wake-enabled") {
			v, _ := flags.GetBool("wake-enabled")
			edit.WakeEnabled = &v
		}
		if flags.Changed("no-wake") {
			if edit.WakeEnabled != nil {
				return fmt.Errorf("--wake-enabled and --no-wake are mutually exclusive")
			}
			off := false
			edit.WakeEnabled = &off
		}
		if edit == (app.ScheduleEdit{}) {
			return cmd.Help()
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.UpdateSchedule(edit); err != nil {
			return err
		}

		d := a.Desired()
		s := a.Strings()
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s · %s", s.SleepPrefix, d.SleepTimeDisplay(), s.DaysDisplay(d.Days.Code()))
		if d.WakeEnabled {
			fmt.Fprintf(cmd.OutOrStdout(), ", %s %s", s.WakePrefix, d.WakeTimeDisplay())
		}
		fmt.Fprintln(cmd.OutOrStdout())
		if a.HasActiveSchedule() && a.Drift().Any() {
			fmt.Fprintf(cmd.OutOrStdout(), "! %s (awake enable)\n", s.DriftWarning)
		}
		return nil
	},
}

// enable command
var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Install the saved schedule as the system schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		yes, _ := cmd.Flags().GetBool("yes")
		command := schedule.BuildApplyCommand(a.Desired())
		if !yes && !confirm(os.Stdin, out, fmt.Sprintf("Run %q as administrator?", command)) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}

		obs, err := a.Enable(cmd.Context())
		if err != nil {
			return err
		}

		s := a.Strings()
		fmt.Fprintf(out, "%s:\n", s.SystemSchedule)
		printObserved(out, s, obs)
		if a.Drift().Any() {
			fmt.Fprintf(out, "! %s\n", s.DriftWarning)
		}
		return nil
	},
}

// pause command
var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Cancel the repeating system schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm(os.Stdin, out, fmt.Sprintf("Run %q as administrator?", schedule.CancelCommand)) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}

		obs, err := a.Pause(cmd.Context())
		if err != nil {
			return err
		}

		s := a.Strings()
		if !obs.HasSchedule {
			fmt.Fprintln(out, s.SchedulePaused)
		}
		fmt.Fprintf(out, "%s:\n", s.SystemSchedule)
		printObserved(out, s, obs)
		return nil
	},
}

// details command
var detailsCmd = &cobra.Command{
	Use:   "details",
	Short: "Show the raw system schedule report",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		report := a.SystemDetails(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", a.Strings().SystemDetails)
		if report == "" {
			fmt.Fprintln(cmd.OutOrStdout(), a.Strings().NoSystemSchedule)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), report)
		return nil
	},
}

// check command, run by the launch agent at login
var checkCmd = &cobra.Command{
	Use:    "check",
	Short:  "Log whether the system schedule matches the settings",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.Check(cmd.Context()).Any() {
			fmt.Fprintln(cmd.OutOrStdout(), a.Strings().DriftWarning)
		}
		return nil
	},
}

// login command
var loginCmd = &cobra.Command{
	Use:       "login [on|off]",
	Short:     "Show or change launch at login",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			if err := a.SetLaunchAtLogin(args[0] == "on"); err != nil {
				return fmt.Errorf("updating launch at login: %w", err)
			}
		}

		enabled, err := a.LaunchAtLogin()
		if err != nil {
			return err
		}
		s := a.Strings()
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", s.LaunchAtLogin, s.OnOff(enabled))
		return nil
	},
}

// lang command
var langCmd = &cobra.Command{
	Use:       "lang [system|zh|en]",
	Short:     "Show or change the display language",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: languageCodes(),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			lang, err := l10n.ParseLanguage(args[0])
			if err != nil {
				return err
			}
			if err := a.SetLanguage(lang); err != nil {
				return err
			}
		}

		lang, err := a.Language()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", a.Strings().Language, lang.DisplayName())
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View submitted scheduler commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(ops) == 0 {
			fmt.Fprintln(out, "No scheduler commands recorded.")
			return nil
		}

		now := a.Now()
		for _, op := range ops {
			fmt.Fprintf(out, "#%d  %-6s  %s  %-14s  %-9s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Local().Format("2006-01-02 15:04:05"),
				humanize.RelTime(op.StartedAt, now, "ago", "from now"),
				op.Status,
				op.Observed,
			)
			fmt.Fprintf(out, "    %s\n", op.Command)
		}
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"], defaults["home_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at %s\n", defaults["config_path"])
		fmt.Fprintf(cmd.OutOrStdout(), "Base Dir: %s\n", cfg.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", defaults["config_path"])
		fmt.Fprintf(out, "Base Dir:   %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "Log Dir:    %s\n", cfg.LogDir)
		fmt.Fprintf(out, "Database:   %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Fprintf(out, "pmset:      %s\n", cfg.PMSet.Path)
		fmt.Fprintf(out, "Elevation:  %s\n", cfg.Elevation.Type)
		fmt.Fprintf(out, "Login:      %s in %s\n", cfg.Login.Label, cfg.Login.AgentsDir)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(setCmd)
	setCmd.Flags().String("sleep", "", "Sleep time, HH:MM (24-hour)")
	setCmd.Flags().String("wake", "", "Wake time, HH:MM (24-hour)")
	setCmd.Flags().Bool("wake-enabled", true, "Enable the timed wake")
	setCmd.Flags().Bool("no-wake", false, "Disable the timed wake")
	setCmd.Flags().String("days", "", "Repeat on everyday, weekdays or weekends (or MTWRFSU, MTWRF, SU)")
	rootCmd.AddCommand(enableCmd)
	enableCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(pauseCmd)
	pauseCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(detailsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(langCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of operations to show")
	rootCmd.AddCommand(configCmd)
}
