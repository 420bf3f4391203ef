package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/headless"
)

const defaultTimeout = 5 * time.Minute

func main() {
	var (
		matches       = flag.Int("matches", headless.DefaultMatches, "Number of matches to play")
		parallel      = flag.Int("parallel", 1, "Matches played at once")
		seed          = flag.Int64("seed", 0, "Base seed (default: current time)")
		home          = flag.String("home", "Home United", "Home team name")
		away          = flag.String("away", "Away Rovers", "Away team name")
		homeFormation = flag.String("home-formation", "", "Home formation")
		awayFormation = flag.String("away-formation", "", "Away formation")
		homeStrength  = flag.Float64("home-strength", headless.DefaultStrength, "Home strength")
		awayStrength  = flag.Float64("away-strength", headless.DefaultStrength, "Away strength")
		manager       = flag.String("manager", "home", "Side the manager controls")
		objectAt      = flag.String("object", "", "Minutes at which the manager objects")
		frames        = flag.Int("frames", headless.DefaultFramesPerMinute, "Frames per minute")
		results       = flag.String("results", "", "SQLite file to record results in")
		outputFile    = flag.String("output", "", "Summary file (default: stdout)")
		logFile       = flag.String("log", "", "Also write logs to this file")
		timeout       = flag.Duration("timeout", defaultTimeout, "Abort the run after this long")
		verbose       = flag.Bool("verbose", false, "Log every match")
		help          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		headless.ShowHelp()
		return
	}

	closeLog, err := headless.SetupLogging(*logFile, *verbose)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	minutes, err := headless.ParseMinutes(*objectAt)
	if err != nil {
		_, _ = os.Stderr.WriteString("Invalid -object: " + err.Error() + "\n")
		os.Exit(2)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &headless.Config{
		Matches:         *matches,
		Parallel:        *parallel,
		Seed:            *seed,
		Home:            *home,
		Away:            *away,
		HomeFormation:   *homeFormation,
		AwayFormation:   *awayFormation,
		HomeStrength:    *homeStrength,
		AwayStrength:    *awayStrength,
		ManagerSide:     model.ParseSide(*manager),
		ObjectAt:        minutes,
		FramesPerMinute: *frames,
		ResultsDSN:      *results,
		OutputFile:      *outputFile,
		Verbose:         *verbose,
		Timeout:         *timeout,
	}

	summary, err := headless.Run(ctx, cfg)
	if err != nil {
		_, _ = os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *outputFile == "" {
		_ = summary.WriteJSON(os.Stdout)
	}
}
