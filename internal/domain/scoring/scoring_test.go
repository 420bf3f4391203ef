package scoring_test

import (
	"testing"

	"github.com/okian/matchday/internal/domain/model"
	scoring "github.com/okian/matchday/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func teams() (model.Team, model.Team) {
	home := model.Team{Name: "Rovers", Starters: []model.Player{
		{ID: "h-gk", Name: "Keeper", Role: model.RoleGK},
		{ID: "h-9", Name: "Nine", Role: model.RoleFWD},
		{ID: "h-8", Name: "Eight", Role: model.RoleMID},
	}}
	away := model.Team{Name: "City", Starters: []model.Player{
		{ID: "a-gk", Name: "Wall", Role: model.RoleGK},
		{ID: "a-9", Name: "Poacher", Role: model.RoleFWD},
	}}
	return home, away
}

func goal(minute int, team, id, scorer, assist string) model.MatchEvent {
	ev := model.NewEvent(minute, model.EventGoal, team, "")
	ev.PlayerID, ev.Scorer, ev.Assist = id, scorer, assist
	return ev
}

func TestRater_MVP(t *testing.T) {
	Convey("Given a rater with default weights", t, func() {
		r := scoring.NewRater()
		home, away := teams()

		Convey("When nobody has done anything", func() {
			_, ok := r.MVP(nil, home, away)
			So(ok, ShouldBeFalse)
		})

		Convey("When a forward scores with an assist", func() {
			events := []model.MatchEvent{goal(10, "Rovers", "h-9", "Nine", "Eight")}
			mvp, ok := r.MVP(events, home, away)
			So(ok, ShouldBeTrue)
			So(mvp.Name, ShouldEqual, "Nine")
			So(mvp.Points, ShouldEqual, 3)

			ratings := r.Ratings(events, home, away)
			So(len(ratings), ShouldEqual, 2)
			So(ratings[1].Name, ShouldEqual, "Eight")
			So(ratings[1].PlayerID, ShouldEqual, "h-8")
		})

		Convey("When two players tie the first to reach the total wins", func() {
			events := []model.MatchEvent{
				goal(10, "City", "a-9", "Poacher", ""),
				goal(20, "Rovers", "h-9", "Nine", ""),
			}
			mvp, _ := r.MVP(events, home, away)
			So(mvp.Name, ShouldEqual, "Poacher")
		})

		Convey("When a goal is cancelled its credit is removed", func() {
			g := goal(44, "City", "a-9", "Poacher", "")
			cancel := model.Info(44, "VAR: the City goal is cancelled")
			cancel.TeamName = "City"
			cancel.Cancels = g.ID
			events := []model.MatchEvent{goal(5, "Rovers", "h-9", "Nine", ""), g, cancel}
			mvp, _ := r.MVP(events, home, away)
			So(mvp.Name, ShouldEqual, "Nine")
		})

		Convey("Saves credit the opposing goalkeeper and cards cost points", func() {
			save := model.NewEvent(30, model.EventSave, "Rovers", "")
			card := model.NewEvent(31, model.EventCardYellow, "City", "")
			card.PlayerID = "a-gk"
			save2 := model.NewEvent(32, model.EventSave, "Rovers", "")
			ratings := r.Ratings([]model.MatchEvent{save, card, save2}, home, away)
			So(ratings[0].Name, ShouldEqual, "Wall")
			So(ratings[0].Points, ShouldEqual, 1)
		})

		Convey("Events for unknown teams are ignored", func() {
			_, ok := r.MVP([]model.MatchEvent{goal(3, "Nobody", "x", "X", "")}, home, away)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given custom weights", t, func() {
		r := scoring.NewRater(scoring.WithWeights(1, 5, 0, 0, 0))
		home, away := teams()
		mvp, _ := r.MVP([]model.MatchEvent{goal(10, "Rovers", "h-9", "Nine", "Eight")}, home, away)
		So(mvp.Name, ShouldEqual, "Eight")
	})
}
