package headless

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/matchday/internal/domain/model"
)

const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Report describes one simulated match.
type Report struct {
	MatchID       string           `json:"matchId"`
	Seed          int64            `json:"seed"`
	Home          string           `json:"home"`
	Away          string           `json:"away"`
	Score         model.Score      `json:"score"`
	MVP           string           `json:"mvp,omitempty"`
	Events        int              `json:"events"`
	VARReviews    int              `json:"varReviews"`
	GoalsCanceled int              `json:"goalsCanceled"`
	Objections    map[string]int   `json:"objections,omitempty"`
	Discipline    model.Discipline `json:"discipline"`
	Frames        uint64           `json:"frames"`
}

// Totals aggregates reports.
type Totals struct {
	HomeWins   int `json:"homeWins"`
	AwayWins   int `json:"awayWins"`
	Draws      int `json:"draws"`
	Goals      int `json:"goals"`
	VARReviews int `json:"varReviews"`
	Cancelled  int `json:"cancelled"`
}

// Summary is the JSON document a run produces.
type Summary struct {
	RunID     string        `json:"runId"`
	Seed      int64         `json:"seed"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Stored    int           `json:"stored"`
	Totals    Totals        `json:"totals"`
	Matches   []Report      `json:"matches"`
}

func (s *Summary) add(r Report) { //nolint:gocritic // hugeParam
	s.Matches = append(s.Matches, r)
	switch {
	case r.Score.Home > r.Score.Away:
		s.Totals.HomeWins++
	case r.Score.Away > r.Score.Home:
		s.Totals.AwayWins++
	default:
		s.Totals.Draws++
	}
	s.Totals.Goals += r.Score.Home + r.Score.Away
	s.Totals.VARReviews += r.VARReviews
	s.Totals.Cancelled += r.GoalsCanceled
}

// WriteJSON writes the summary as indented JSON.
func (s *Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// Save writes the summary to path, creating parent directories.
func (s *Summary) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	if err := s.WriteJSON(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write summary: %w", err)
	}
	return f.Close()
}
