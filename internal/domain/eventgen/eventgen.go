// Package eventgen is the default strength-weighted event generator.
package eventgen

import (
	"fmt"
	"math/rand"

	"github.com/okian/matchday/internal/domain/model"
)

// Rand is the randomness the generator needs.
type Rand interface {
	Float64() float64
}

// Option configures a Generator.
type Option func(*Generator)

// WithEventChance sets the per-minute chance that anything happens.
func WithEventChance(p float64) Option {
	return func(g *Generator) {
		if p >= 0 && p <= 1 {
			g.eventChance = p
		}
	}
}

// WithRand replaces the random source.
func WithRand(r Rand) Option {
	return func(g *Generator) {
		if r != nil {
			g.rand = r
		}
	}
}

// WithSeed seeds a private math/rand source.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rand = rand.New(rand.NewSource(seed)) //nolint:gosec // game randomness
	}
}

type kind int

const (
	kindGoal kind = iota
	kindVARGoal
	kindMiss
	kindSave
	kindCorner
	kindFoul
	kindOffside
	kindYellow
	kindRed
	kindInjury
	kindSubstitution
)

type weighted struct {
	kind   kind
	weight float64
}

// weights are relative; they do not need to sum to one.
var weights = []weighted{ //nolint:gochecknoglobals // static table
	{kindGoal, 0.08},
	{kindVARGoal, 0.02},
	{kindMiss, 0.14},
	{kindSave, 0.12},
	{kindCorner, 0.16},
	{kindFoul, 0.18},
	{kindOffside, 0.08},
	{kindYellow, 0.08},
	{kindRed, 0.01},
	{kindInjury, 0.03},
	{kindSubstitution, 0.10},
}

const substitutionsFrom = 60

// Generator produces zero or one event per minute.
type Generator struct {
	rand        Rand
	eventChance float64
}

// New creates a Generator. Without options it uses a time-independent seed of 1.
func New(opts ...Option) *Generator {
	g := &Generator{
		rand:        rand.New(rand.NewSource(1)), //nolint:gosec // game randomness
		eventChance: 0.35,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the event for minute, or nil for a quiet minute.
func (g *Generator) Generate(minute int, home, away model.Team, score model.Score) *model.MatchEvent {
	if g.rand.Float64() >= g.eventChance {
		return nil
	}
	k := g.pickKind(minute)

	// Stronger sides create more; weaker sides foul more.
	pHome := share(home.Strength, away.Strength)
	switch k {
	case kindFoul, kindYellow, kindRed:
		pHome = 1 - pHome
	}
	team := home
	if g.rand.Float64() >= pHome {
		team = away
	}
	return g.build(k, minute, team, score)
}

func share(a, b float64) float64 {
	if a <= 0 && b <= 0 {
		return 0.5
	}
	if a < 0 {
		a = 0
	}
	if b < 0 {
		b = 0
	}
	return a / (a + b)
}

func (g *Generator) pickKind(minute int) kind {
	total := 0.0
	for _, w := range weights {
		if w.kind == kindSubstitution && minute < substitutionsFrom {
			continue
		}
		total += w.weight
	}
	u := g.rand.Float64() * total
	acc := 0.0
	for _, w := range weights {
		if w.kind == kindSubstitution && minute < substitutionsFrom {
			continue
		}
		acc += w.weight
		if u < acc {
			return w.kind
		}
	}
	return kindMiss
}

func (g *Generator) build(k kind, minute int, team model.Team, score model.Score) *model.MatchEvent {
	var ev model.MatchEvent
	switch k {
	case kindGoal, kindVARGoal:
		scorer := g.pickPlayer(team, true, "")
		ev = model.NewEvent(minute, model.EventGoal, team.Name, "")
		ev.Scorer, ev.PlayerID = scorer.Name, scorer.ID
		if g.rand.Float64() < 0.7 {
			ev.Assist = g.pickPlayer(team, false, scorer.ID).Name
		}
		ev.Text = fmt.Sprintf("GOAL! %s scores for %s", nameOr(scorer.Name, "a player"), team.Name)
		if k == kindVARGoal {
			ev.Type = model.EventVAR
			ev.VAROutcome = model.VARNoGoal
			if g.rand.Float64() < 0.5 {
				ev.VAROutcome = model.VARGoal
			}
		}
	case kindMiss:
		p := g.pickPlayer(team, true, "")
		ev = g.playerEvent(minute, model.EventMiss, team, p, "%s fires wide for %s")
	case kindSave:
		p := g.pickPlayer(team, true, "")
		ev = g.playerEvent(minute, model.EventSave, team, p, "%s forces a save for %s")
	case kindCorner:
		ev = model.NewEvent(minute, model.EventCorner, team.Name, "Corner to "+team.Name)
	case kindFoul:
		p := g.pickPlayer(team, false, "")
		ev = g.playerEvent(minute, model.EventFoul, team, p, "Foul by %s (%s)")
	case kindOffside:
		p := g.pickPlayer(team, true, "")
		ev = g.playerEvent(minute, model.EventOffside, team, p, "%s is caught offside (%s)")
	case kindYellow:
		p := g.pickPlayer(team, false, "")
		ev = g.playerEvent(minute, model.EventCardYellow, team, p, "Yellow card for %s (%s)")
	case kindRed:
		p := g.pickPlayer(team, false, "")
		ev = g.playerEvent(minute, model.EventCardRed, team, p, "Red card! %s (%s) is sent off")
	case kindInjury:
		p := g.pickPlayer(team, false, "")
		ev = g.playerEvent(minute, model.EventInjury, team, p, "%s (%s) is down injured")
	case kindSubstitution:
		p := g.pickPlayer(team, false, "")
		ev = g.playerEvent(minute, model.EventSubstitution, team, p, "%s makes way for %s")
	}
	if score.Home+score.Away == 0 && ev.Type == model.EventGoal {
		ev.Text += ". First goal of the game"
	}
	return &ev
}

func (g *Generator) playerEvent(minute int, typ model.EventType, team model.Team, p model.Player, format string) model.MatchEvent {
	ev := model.NewEvent(minute, typ, team.Name, fmt.Sprintf(format, nameOr(p.Name, "a player"), team.Name))
	ev.PlayerID = p.ID
	return ev
}

// pickPlayer draws a starter. Attacking picks skip goalkeepers and favour
// forwards; exclude skips one player id.
func (g *Generator) pickPlayer(team model.Team, attacking bool, exclude string) model.Player {
	total := 0.0
	for _, p := range team.Starters {
		total += playerWeight(p, attacking, exclude)
	}
	if total == 0 {
		return model.Player{}
	}
	u := g.rand.Float64() * total
	acc := 0.0
	for _, p := range team.Starters {
		acc += playerWeight(p, attacking, exclude)
		if u < acc {
			return p
		}
	}
	return team.Starters[len(team.Starters)-1]
}

func playerWeight(p model.Player, attacking bool, exclude string) float64 {
	if p.ID != "" && p.ID == exclude {
		return 0
	}
	if !attacking {
		return 1
	}
	switch p.Role {
	case model.RoleFWD:
		return 5
	case model.RoleMID:
		return 3
	case model.RoleDEF:
		return 1
	default:
		return 0
	}
}

func nameOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
