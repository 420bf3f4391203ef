// Package scoring rates players from the match log and picks the MVP.
package scoring

import (
	"sort"

	"github.com/okian/matchday/internal/domain/model"
)

// Default rating weights.
const (
	defaultGoal   = 3
	defaultAssist = 2
	defaultSave   = 1
	defaultYellow = -1
	defaultRed    = -3
)

// Option applies a configuration option to the Rater.
type Option func(*Rater)

// WithWeights overrides the points for goals, assists, saves and cards.
func WithWeights(goal, assist, save, yellow, red float64) Option {
	return func(r *Rater) {
		r.goal, r.assist, r.save, r.yellow, r.red = goal, assist, save, yellow, red
	}
}

// Rating is a player's running total.
type Rating struct {
	PlayerID string  `json:"playerId,omitempty"`
	Name     string  `json:"name"`
	Team     string  `json:"team"`
	Points   float64 `json:"points"`

	// reachedAt is the log index at which Points was reached.
	reachedAt int
}

// Rater turns an event log into player ratings.
type Rater struct {
	goal, assist, save, yellow, red float64
}

// NewRater creates a Rater with default weights.
func NewRater(opts ...Option) *Rater {
	r := &Rater{
		goal:   defaultGoal,
		assist: defaultAssist,
		save:   defaultSave,
		yellow: defaultYellow,
		red:    defaultRed,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type credit struct {
	key    string
	points float64
}

type ledger struct {
	ratings map[string]*Rating
	byEvent map[string][]credit
	home    model.Team
	away    model.Team
}

func (l *ledger) player(team model.Team, id, name string) (string, *Rating) {
	if id == "" {
		for _, p := range team.Starters {
			if p.Name == name {
				id = p.ID
				break
			}
		}
	}
	if name == "" {
		for _, p := range team.Starters {
			if p.ID == id {
				name = p.Name
				break
			}
		}
	}
	key := id
	if key == "" {
		key = team.Name + "/" + name
	}
	r, ok := l.ratings[key]
	if !ok {
		r = &Rating{PlayerID: id, Name: name, Team: team.Name}
		l.ratings[key] = r
	}
	return key, r
}

func (l *ledger) add(idx int, evID string, team model.Team, id, name string, pts float64) {
	if (id == "" && name == "") || pts == 0 {
		return
	}
	key, r := l.player(team, id, name)
	r.Points += pts
	r.reachedAt = idx
	l.byEvent[evID] = append(l.byEvent[evID], credit{key: key, points: pts})
}

func (l *ledger) cancel(idx int, evID string) {
	for _, c := range l.byEvent[evID] {
		r := l.ratings[c.key]
		r.Points -= c.points
		r.reachedAt = idx
	}
	delete(l.byEvent, evID)
}

func (l *ledger) teams(name string) (own, opp model.Team, ok bool) {
	switch name {
	case l.home.Name:
		return l.home, l.away, true
	case l.away.Name:
		return l.away, l.home, true
	default:
		return model.Team{}, model.Team{}, false
	}
}

func goalkeeper(t model.Team) (model.Player, bool) {
	for _, p := range t.Starters {
		if p.Role == model.RoleGK {
			return p, true
		}
	}
	if len(t.Starters) > 0 {
		return t.Starters[0], true
	}
	return model.Player{}, false
}

// Ratings returns every rated player, best first.
func (r *Rater) Ratings(events []model.MatchEvent, home, away model.Team) []Rating {
	l := &ledger{
		ratings: make(map[string]*Rating),
		byEvent: make(map[string][]credit),
		home:    home,
		away:    away,
	}
	for i, ev := range events {
		if ev.Cancels != "" {
			l.cancel(i, ev.Cancels)
			continue
		}
		own, opp, ok := l.teams(ev.TeamName)
		if !ok {
			continue
		}
		switch ev.Type {
		case model.EventGoal:
			l.add(i, ev.ID, own, ev.PlayerID, ev.Scorer, r.goal)
			l.add(i, ev.ID, own, "", ev.Assist, r.assist)
		case model.EventSave:
			if gk, ok := goalkeeper(opp); ok {
				l.add(i, ev.ID, opp, gk.ID, gk.Name, r.save)
			}
		case model.EventCardYellow:
			l.add(i, ev.ID, own, ev.PlayerID, "", r.yellow)
		case model.EventCardRed:
			l.add(i, ev.ID, own, ev.PlayerID, "", r.red)
		}
	}

	out := make([]Rating, 0, len(l.ratings))
	for _, rt := range l.ratings {
		out = append(out, *rt)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].reachedAt != out[j].reachedAt {
			return out[i].reachedAt < out[j].reachedAt
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MVP returns the top-rated player. Nobody qualifies without positive points.
func (r *Rater) MVP(events []model.MatchEvent, home, away model.Team) (Rating, bool) {
	ratings := r.Ratings(events, home, away)
	if len(ratings) == 0 || ratings[0].Points <= 0 {
		return Rating{}, false
	}
	return ratings[0], true
}
