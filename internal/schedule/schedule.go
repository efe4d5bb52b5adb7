// Package schedule generates the service definitions that run
// 'albumlog run' once a day: a launchd agent on macOS and a systemd user
// timer on Linux.
package schedule

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

// Label identifies the launchd agent and names the systemd units.
const Label = "com.albumlog.run"

const unitName = "albumlog"

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
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
	<key>StartCalendarInterval</key>
	<dict>
		<key>Hour</key>
		<integer>{{.Hour}}</integer>
		<key>Minute</key>
		<integer>{{.Minute}}</integer>
	</dict>
	<key>RunAtLoad</key>
	<false/>
	<key>StandardOutPath</key>
	<string>{{.LogPath}}/albumlog.out</string>
	<key>StandardErrorPath</key>
	<string>{{.LogPath}}/albumlog.err</string>
	<key>WorkingDirectory</key>
	<string>{{.WorkingDirectory}}</string>
	<key>EnvironmentVariables</key>
	<dict>
		<key>PATH</key>
		<string>/usr/local/bin:/usr/bin:/bin:/usr/sbin:/sbin</string>
	</dict>
</dict>
</plist>
`

const serviceTemplate = `[Unit]
Description=Export the 1001 Albums Generator project
Wants=network-online.target
After=network-online.target

[Service]
Type=oneshot
WorkingDirectory={{.WorkingDirectory}}
ExecStart={{.ExecStart}}
`

const timerTemplate = `[Unit]
Description=Daily albumlog export

[Timer]
OnCalendar=*-*-* {{printf "%02d:%02d" .Hour .Minute}}:00
Persistent=true

[Install]
WantedBy=timers.target
`

// Config describes a daily run.
type Config struct {
	BinaryPath       string
	Project          string // optional; the configured project is used when empty
	Hour             int
	Minute           int
	LogPath          string
	WorkingDirectory string
}

// Args returns the command line of the scheduled run.
func (c Config) Args() []string {
	args := []string{c.BinaryPath, "run"}
	if c.Project != "" {
		args = append(args, c.Project)
	}
	if c.LogPath != "" {
		args = append(args, "--log-file", filepath.Join(c.LogPath, "albumlog.log"))
	}
	return args
}

// ParseTime parses a "HH:MM" time of day.
func ParseTime(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, herr := strconv.Atoi(h)
	minute, merr := strconv.Atoi(m)
	if herr != nil || merr != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return hour, minute, nil
}

// GeneratePlist generates a launchd agent plist
func GeneratePlist(cfg Config) (string, error) {
	return render("plist", plistTemplate, struct {
		Config
		Label string
		Args  []string
	}{cfg, Label, cfg.Args()})
}

// GenerateService generates the systemd service unit
func GenerateService(cfg Config) (string, error) {
	quoted := make([]string, 0, len(cfg.Args()))
	for _, a := range cfg.Args() {
		quoted = append(quoted, systemdQuote(a))
	}
	return render("service", serviceTemplate, struct {
		Config
		ExecStart string
	}{cfg, strings.Join(quoted, " ")})
}

// GenerateTimer generates the systemd timer unit
func GenerateTimer(cfg Config) (string, error) {
	return render("timer", timerTemplate, cfg)
}

func render(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}

	return buf.String(), nil
}

func systemdQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"'\\") {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// GetPlistPath returns the path where the plist should be installed
func GetPlistPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, "Library", "LaunchAgents", Label+".plist"), nil
}

// GetUnitPaths returns where the systemd service and timer are installed
func GetUnitPaths() (service, timer string, err error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, ".config", "systemd", "user")
	return filepath.Join(dir, unitName+".service"), filepath.Join(dir, unitName+".timer"), nil
}

// TimerUnit is the name systemctl knows the timer by.
func TimerUnit() string {
	return unitName + ".timer"
}

// GetDefaultLogPath returns the default directory for scheduled run logs
func GetDefaultLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", "albumlog", "logs"), nil
}
