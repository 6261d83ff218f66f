// Package login toggles launch at login through a per-user LaunchAgent.
package login

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"text/template"

	"github.com/spf13/afero"
)

var plistTemplate = template.Must(template.New("plist").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{.Label}}</string>
	<key>ProgramArguments</key>
	<array>
		{{- range .Args}}
		<string>{{.}}</string>
		{{- end}}
	</array>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`))

// LaunchAgent registers a program to run when the user logs in.
type LaunchAgent struct {
	fs    afero.Fs
	dir   string
	label string
	args  []string
}

// NewLaunchAgent creates a LaunchAgent stored in dir as <label>.plist that
// runs args at login.
func NewLaunchAgent(fsys afero.Fs, dir, label string, args ...string) *LaunchAgent {
	return &LaunchAgent{fs: fsys, dir: dir, label: label, args: args}
}

// Path returns the plist location.
func (a *LaunchAgent) Path() string {
	return filepath.Join(a.dir, a.label+".plist")
}

// Enabled reports whether the agent plist is installed.
func (a *LaunchAgent) Enabled() (bool, error) {
	ok, err := afero.Exists(a.fs, a.Path())
	if err != nil {
		return false, fmt.Errorf("checking launch agent: %w", err)
	}
	return ok, nil
}

// SetEnabled installs or removes the agent plist. Both directions are idempotent.
func (a *LaunchAgent) SetEnabled(enabled bool) error {
	if !enabled {
		if err := a.fs.Remove(a.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing launch agent: %w", err)
		}
		return nil
	}

	if len(a.args) == 0 {
		return fmt.Errorf("launch agent %s has no program", a.label)
	}

	var buf bytes.Buffer
	// text/template does not escape XML, so escape values first.
	data := struct {
		Label string
		Args  []string
	}{Label: xmlEscape(a.label), Args: make([]string, len(a.args))}
	for i, arg := range a.args {
		data.Args[i] = xmlEscape(arg)
	}
	if err := plistTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering launch agent: %w", err)
	}

	if err := a.fs.MkdirAll(a.dir, 0755); err != nil {
		return fmt.Errorf("creating launch agents directory: %w", err)
	}
	if err := afero.WriteFile(a.fs, a.Path(), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing launch agent: %w", err)
	}
	return nil
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	template.HTMLEscape(&buf, []byte(s))
	return buf.String()
}
