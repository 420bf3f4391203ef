package positioning

import (
	"strconv"
	"strings"

	"github.com/okian/matchday/internal/domain/model"
)

// DefaultFormation is used when a team's formation cannot be parsed.
const DefaultFormation = "4-4-2"

// Anchors are team-relative: x across the pitch, y from the team's own goal
// line (0) to the opponent's (100). Index 0 is always the goalkeeper.
var formations = map[string][]model.Point{ //nolint:gochecknoglobals // static tables
	"4-4-2": {
		{X: 50, Y: 5},
		{X: 15, Y: 25}, {X: 38, Y: 22}, {X: 62, Y: 22}, {X: 85, Y: 25},
		{X: 15, Y: 48}, {X: 40, Y: 45}, {X: 60, Y: 45}, {X: 85, Y: 48},
		{X: 40, Y: 70}, {X: 60, Y: 70},
	},
	"4-3-3": {
		{X: 50, Y: 5},
		{X: 15, Y: 25}, {X: 38, Y: 22}, {X: 62, Y: 22}, {X: 85, Y: 25},
		{X: 30, Y: 45}, {X: 50, Y: 42}, {X: 70, Y: 45},
		{X: 20, Y: 70}, {X: 50, Y: 74}, {X: 80, Y: 70},
	},
	"3-5-2": {
		{X: 50, Y: 5},
		{X: 28, Y: 22}, {X: 50, Y: 20}, {X: 72, Y: 22},
		{X: 10, Y: 45}, {X: 32, Y: 42}, {X: 50, Y: 40}, {X: 68, Y: 42}, {X: 90, Y: 45},
		{X: 40, Y: 70}, {X: 60, Y: 70},
	},
	"4-2-3-1": {
		{X: 50, Y: 5},
		{X: 15, Y: 25}, {X: 38, Y: 22}, {X: 62, Y: 22}, {X: 85, Y: 25},
		{X: 40, Y: 38}, {X: 60, Y: 38},
		{X: 20, Y: 56}, {X: 50, Y: 55}, {X: 80, Y: 56},
		{X: 50, Y: 74},
	},
	"5-3-2": {
		{X: 50, Y: 5},
		{X: 10, Y: 30}, {X: 30, Y: 22}, {X: 50, Y: 20}, {X: 70, Y: 22}, {X: 90, Y: 30},
		{X: 30, Y: 45}, {X: 50, Y: 42}, {X: 70, Y: 45},
		{X: 40, Y: 70}, {X: 60, Y: 70},
	},
}

// Formation is a parsed line-up shape.
type Formation struct {
	Name    string
	Lines   []int
	Anchors []model.Point
}

// ParseFormation reads "4-4-2" style shapes. Known shapes use fixed anchor
// tables; other valid shapes with ten outfield players get generated lines.
// Anything else falls back to DefaultFormation.
func ParseFormation(name string) Formation {
	name = strings.TrimSpace(name)
	lines, ok := parseLines(name)
	if !ok {
		name = DefaultFormation
		lines, _ = parseLines(name)
	}
	anchors, known := formations[name]
	if !known {
		anchors = generate(lines)
	}
	return Formation{Name: name, Lines: lines, Anchors: anchors}
}

func parseLines(name string) ([]int, bool) {
	parts := strings.Split(name, "-")
	if len(parts) < 2 {
		return nil, false
	}
	lines := make([]int, 0, len(parts))
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return nil, false
		}
		lines = append(lines, n)
		total += n
	}
	if total != 10 {
		return nil, false
	}
	return lines, true
}

// generate spaces lines evenly between the back line and the front line.
func generate(lines []int) []model.Point {
	const back, front = 22.0, 72.0
	anchors := []model.Point{{X: 50, Y: 5}}
	step := 0.0
	if len(lines) > 1 {
		step = (front - back) / float64(len(lines)-1)
	}
	for li, n := range lines {
		y := back + step*float64(li)
		for i := 0; i < n; i++ {
			x := 100 * float64(i+1) / float64(n+1)
			anchors = append(anchors, model.Point{X: x, Y: y})
		}
	}
	return anchors
}

// RoleAt derives the role of anchor index i: 0 is GK, the first line is
// defence, the last line attack and everything between midfield.
func (f Formation) RoleAt(i int) model.Role {
	if i <= 0 || i >= len(f.Anchors) || len(f.Lines) == 0 {
		return model.RoleGK
	}
	defenders := f.Lines[0]
	forwards := f.Lines[len(f.Lines)-1]
	switch {
	case i <= defenders:
		return model.RoleDEF
	case i >= len(f.Anchors)-forwards:
		return model.RoleFWD
	default:
		return model.RoleMID
	}
}

// AnchorAt returns anchor i, falling back to the first slot when out of range.
func (f Formation) AnchorAt(i int) model.Point {
	if i < 0 || i >= len(f.Anchors) {
		return f.Anchors[0]
	}
	return f.Anchors[i]
}
