package model

import "strings"

// Role is the tactical role of an on-pitch player.
type Role string

const (
	RoleGK  Role = "GK"
	RoleDEF Role = "DEF"
	RoleMID Role = "MID"
	RoleFWD Role = "FWD"
)

// ParseRole maps common position labels to a Role. Unknown labels are MID.
func ParseRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GK", "G", "GOALKEEPER":
		return RoleGK
	case "DEF", "D", "DF", "CB", "LB", "RB", "DEFENDER":
		return RoleDEF
	case "FWD", "F", "FW", "ST", "CF", "FORWARD", "ATT":
		return RoleFWD
	default:
		return RoleMID
	}
}

// Player is a roster entry supplied by the squad collaborator.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Team is the read-only team snapshot a match is played with.
type Team struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Strength  float64  `json:"strength"`
	Formation string   `json:"formation"`
	Starters  []Player `json:"starters"`
}

// Side identifies one team of a fixture.
type Side int

const (
	SideNone Side = iota
	SideHome
	SideAway
)

func (s Side) String() string {
	switch s {
	case SideHome:
		return "home"
	case SideAway:
		return "away"
	default:
		return "none"
	}
}

// MarshalText renders the side name.
func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses a side name. Unknown names are SideNone.
func (s *Side) UnmarshalText(b []byte) error {
	*s = ParseSide(string(b))
	return nil
}

// Opponent returns the other side. SideNone has no opponent.
func (s Side) Opponent() Side {
	switch s {
	case SideHome:
		return SideAway
	case SideAway:
		return SideHome
	default:
		return SideNone
	}
}

// ParseSide maps "home"/"away" to a Side.
func ParseSide(s string) Side {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home":
		return SideHome
	case "away":
		return SideAway
	default:
		return SideNone
	}
}
