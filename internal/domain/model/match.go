package model

import "fmt"

// Phase is the match phase. Phases only move forward.
type Phase int

const (
	PhaseFirstHalf Phase = iota
	PhaseHalftime
	PhaseSecondHalf
	PhaseFullTime
)

func (p Phase) String() string {
	switch p {
	case PhaseFirstHalf:
		return "FIRST_HALF"
	case PhaseHalftime:
		return "HALFTIME"
	case PhaseSecondHalf:
		return "SECOND_HALF"
	case PhaseFullTime:
		return "FULL_TIME"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the phase name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText parses a phase name.
func (p *Phase) UnmarshalText(b []byte) error {
	for c := PhaseFirstHalf; c <= PhaseFullTime; c++ {
		if c.String() == string(b) {
			*p = c
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Score is the running score of a match.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Add returns the score with n goals added to side.
func (s Score) Add(side Side, n int) Score {
	switch side {
	case SideHome:
		s.Home += n
	case SideAway:
		s.Away += n
	}
	if s.Home < 0 {
		s.Home = 0
	}
	if s.Away < 0 {
		s.Away = 0
	}
	return s
}

// Discipline is the manager's disciplinary state. It never decreases.
type Discipline int

const (
	DisciplineNone Discipline = iota
	DisciplineWarned
	DisciplineYellow
	DisciplineRed
)

func (d Discipline) String() string {
	switch d {
	case DisciplineWarned:
		return "WARNED"
	case DisciplineYellow:
		return "YELLOW"
	case DisciplineRed:
		return "RED"
	default:
		return "NONE"
	}
}

// MarshalText renders the discipline label.
func (d Discipline) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText parses a discipline label.
func (d *Discipline) UnmarshalText(b []byte) error {
	for c := DisciplineNone; c <= DisciplineRed; c++ {
		if c.String() == string(b) {
			*d = c
			return nil
		}
	}
	return fmt.Errorf("unknown discipline %q", b)
}

// Point is a coordinate in normalized [0,100] pitch space.
// Y runs along the pitch length: the home goal is at y=0.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Ball is the ball position plus the side in possession.
type Ball struct {
	Point
	Possession Side `json:"possession"`
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPoint keeps p on the pitch.
func ClampPoint(p Point) Point {
	return Point{X: Clamp(p.X, 0, 100), Y: Clamp(p.Y, 0, 100)}
}
