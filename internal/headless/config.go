package headless

import (
	"fmt"
	"time"

	"github.com/okian/matchday/internal/domain/model"
)

// Defaults for a headless run.
const (
	DefaultMatches         = 1
	DefaultFramesPerMinute = 4
	DefaultStrength        = 50
)

// Config holds configuration for a headless run.
type Config struct {
	Matches         int     // number of matches to play
	Parallel        int     // matches played at once
	Seed            int64   // base seed; match i uses Seed+i
	Home            string  // home team name
	Away            string  // away team name
	HomeFormation   string  // e.g. "4-3-3"
	AwayFormation   string  // e.g. "4-4-2"
	HomeStrength    float64 // relative strength
	AwayStrength    float64 // relative strength
	ManagerSide     model.Side
	ObjectAt        []int // minutes at which the manager objects
	FramesPerMinute int   // positional frames simulated per minute
	ResultsDSN      string
	OutputFile      string
	Verbose         bool
	Timeout         time.Duration
}

// Validate fills defaults and rejects impossible settings.
func (c *Config) Validate() error {
	if c.Matches == 0 {
		c.Matches = DefaultMatches
	}
	if c.Matches < 0 {
		return fmt.Errorf("matches must be positive, got %d", c.Matches)
	}
	if c.Parallel <= 0 {
		c.Parallel = 1
	}
	if c.Home == "" {
		c.Home = "Home United"
	}
	if c.Away == "" {
		c.Away = "Away Rovers"
	}
	if c.Home == c.Away {
		return fmt.Errorf("home and away must differ, both are %q", c.Home)
	}
	if c.HomeStrength <= 0 {
		c.HomeStrength = DefaultStrength
	}
	if c.AwayStrength <= 0 {
		c.AwayStrength = DefaultStrength
	}
	if c.ManagerSide == model.SideNone {
		c.ManagerSide = model.SideHome
	}
	if c.FramesPerMinute < 0 {
		c.FramesPerMinute = 0
	}
	for _, m := range c.ObjectAt {
		if m < 1 || m > 90 {
			return fmt.Errorf("objection minute %d outside 1..90", m)
		}
	}
	return nil
}
