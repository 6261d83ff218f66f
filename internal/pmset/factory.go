package pmset

import (
	"fmt"
	"io"

	"awake/internal/config"
	"awake/internal/schedule"
)

// NewElevatorFromConfig creates an Elevator based on the elevation config type.
// stdin and out are used by elevators that talk to the terminal.
func NewElevatorFromConfig(cfg config.ElevationConfig, stdin io.Reader, out io.Writer, logger schedule.Logger) (schedule.Elevator, error) {
	switch cfg.Type {
	case "osascript", "":
		path := cfg.OsascriptPath
		if path == "" {
			path = "/usr/bin/osascript"
		}
		return NewOsascriptElevator(path, logger), nil
	case "sudo":
		path := cfg.SudoPath
		if path == "" {
			path = "sudo"
		}
		return NewSudoElevator(path, stdin, out, logger), nil
	case "dryrun":
		return NewDryRunElevator(out, logger), nil
	default:
		return nil, fmt.Errorf("unknown elevation type: %s", cfg.Type)
	}
}

// NewQuerierFromConfig creates a Querier for the configured pmset binary.
func NewQuerierFromConfig(cfg config.PMSetConfig, logger schedule.Logger) *Querier {
	path := cfg.Path
	if path == "" {
		path = "/usr/bin/pmset"
	}
	return NewQuerier(path, logger)
}
