package headless

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/okian/matchday/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging sends log output to stdout and, when logFile is set, to
// that file too. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	var (
		w       io.Writer = os.Stdout
		closeFn           = func() error { return nil }
	)
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
		closeFn = file.Close
	}
	if err := logger.InitWith(w, logger.FormatText); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return closeFn, nil
}

// ParseMinutes parses a comma separated list of minutes such as "30,75".
func ParseMinutes(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		m, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad minute %q: %w", p, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// ShowHelp prints usage information for the simulate tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Matchday Simulator
==================

Plays complete matches without a server, records the results and prints
a JSON summary.

Usage:
  go run ./cmd/simulate [options]

Options:
  -matches int
        Number of matches to play (default 1)
  -parallel int
        Matches played at once (default 1)
  -seed int
        Base seed; match i uses seed+i (default: current time)
  -home string / -away string
        Team names (default "Home United" / "Away Rovers")
  -home-formation string / -away-formation string
        Formations such as 4-3-3 (default 4-4-2)
  -home-strength float / -away-strength float
        Relative strengths (default 50)
  -manager string
        Side the manager controls: home or away (default home)
  -object string
        Comma separated minutes at which the manager objects, e.g. 30,75
  -frames int
        Positional frames simulated per minute (default 4)
  -results string
        SQLite file to record results in (default: in memory)
  -output string
        File to write the JSON summary to (default: stdout)
  -log string
        Also write logs to this file
  -timeout duration
        Abort the run after this long (default 5m)
  -verbose
        Log every match
  -help
        Show this help message

Examples:
  # One match with a fixed seed
  go run ./cmd/simulate -seed 42

  # A hundred matches stored in SQLite
  go run ./cmd/simulate -matches 100 -parallel 4 -results results.db -output summary.json
`)
}
