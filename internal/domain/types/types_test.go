package types_test

import (
	"testing"
	"time"

	"github.com/okian/matchday/internal/domain/model"
	types "github.com/okian/matchday/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPage(t *testing.T) {
	Convey("Given an event log of three events", t, func() {
		events := []model.MatchEvent{model.Info(1, "a"), model.Info(2, "b"), model.Info(3, "c")}

		Convey("Reading from the start returns everything", func() {
			p := types.Page(events, 0)
			So(len(p.Events), ShouldEqual, 3)
			So(p.Next, ShouldEqual, 3)
		})

		Convey("Reading from an offset returns the tail", func() {
			p := types.Page(events, 2)
			So(len(p.Events), ShouldEqual, 1)
			So(p.Events[0].Text, ShouldEqual, "c")
		})

		Convey("Out of range offsets are clamped", func() {
			So(len(types.Page(events, 10).Events), ShouldEqual, 0)
			So(types.Page(events, 10).Since, ShouldEqual, 3)
			So(types.Page(events, -4).Since, ShouldEqual, 0)
		})

		Convey("The page does not alias the log", func() {
			p := types.Page(events, 0)
			p.Events[0].Text = "changed"
			So(events[0].Text, ShouldEqual, "a")
		})
	})
}

func TestResultSummary(t *testing.T) {
	Convey("A summary keeps identity and score", t, func() {
		at := time.Unix(1700000000, 0).UTC()
		r := types.Result{MatchID: "m1", HomeTeam: "Rovers", AwayTeam: "City", Score: model.Score{Home: 2, Away: 1}, FinishedAt: at,
			Events: []model.MatchEvent{model.Info(90, "Full time")}}
		s := r.Summary()
		So(s.MatchID, ShouldEqual, "m1")
		So(s.Score, ShouldResemble, model.Score{Home: 2, Away: 1})
		So(s.FinishedAt, ShouldEqual, at)
	})
}
