package service

import (
	"fmt"
	"strings"

	"github.com/okian/matchday/internal/domain/model"
	"github.com/okian/matchday/internal/domain/positioning"
)

// DemoTeam builds a full starting eleven for name in formation. Squads come
// from outside the engine; this fills in when a caller sends none.
func DemoTeam(name, formation string, strength float64) model.Team {
	f := positioning.ParseFormation(formation)
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
	starters := make([]model.Player, len(f.Anchors))
	for i := range starters {
		role := f.RoleAt(i)
		starters[i] = model.Player{
			ID:   fmt.Sprintf("%s-%d", slug, i+1),
			Name: fmt.Sprintf("%s %s%d", name, role, i+1),
			Role: role,
		}
	}
	return model.Team{
		ID:        slug,
		Name:      name,
		Strength:  strength,
		Formation: f.Name,
		Starters:  starters,
	}
}

// completeTeam fills missing squad data with defaults.
func completeTeam(t model.Team) model.Team {
	if len(t.Starters) == 0 {
		demo := DemoTeam(t.Name, t.Formation, t.Strength)
		if t.ID == "" {
			t.ID = demo.ID
		}
		t.Starters = demo.Starters
	}
	if t.Formation == "" {
		t.Formation = positioning.DefaultFormation
	}
	if t.Strength <= 0 {
		t.Strength = 50
	}
	return t
}
