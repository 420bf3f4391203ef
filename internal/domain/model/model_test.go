package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/matchday/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestMatchEvent(t *testing.T) {
	convey.Convey("Given a new event", t, func() {
		ev := model.NewEvent(12, model.EventGoal, "Rovers", "Goal!")

		convey.Convey("Then it should carry a unique id and the given fields", func() {
			other := model.NewEvent(12, model.EventGoal, "Rovers", "Goal!")
			convey.So(ev.ID, convey.ShouldNotBeEmpty)
			convey.So(ev.ID, convey.ShouldNotEqual, other.ID)
			convey.So(ev.Minute, convey.ShouldEqual, 12)
			convey.So(ev.IsGoal(), convey.ShouldBeTrue)
		})

		convey.Convey("Then optional fields are omitted from JSON", func() {
			raw, err := json.Marshal(model.Info(3, "Kick off"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(raw), convey.ShouldNotContainSubstring, "scorer")
			convey.So(string(raw), convey.ShouldContainSubstring, `"type":"INFO"`)
		})
	})
}

func TestScoreAdd(t *testing.T) {
	convey.Convey("Given a score", t, func() {
		s := model.Score{Home: 0, Away: 1}

		convey.So(s.Add(model.SideHome, 1), convey.ShouldResemble, model.Score{Home: 1, Away: 1})
		convey.So(s.Add(model.SideAway, -1), convey.ShouldResemble, model.Score{})
		convey.So(s.Add(model.SideHome, -1), convey.ShouldResemble, model.Score{Home: 0, Away: 1})
		convey.So(s.Add(model.SideNone, 1), convey.ShouldResemble, s)
	})
}

func TestEnumsRender(t *testing.T) {
	convey.Convey("Enums render their labels", t, func() {
		convey.So(model.PhaseHalftime.String(), convey.ShouldEqual, "HALFTIME")
		convey.So(model.DisciplineYellow.String(), convey.ShouldEqual, "YELLOW")
		convey.So(model.SideAway.Opponent(), convey.ShouldEqual, model.SideHome)
		convey.So(model.SideNone.Opponent(), convey.ShouldEqual, model.SideNone)
		convey.So(model.ParseSide(" Away "), convey.ShouldEqual, model.SideAway)
		convey.So(model.ParseRole("st"), convey.ShouldEqual, model.RoleFWD)
		convey.So(model.ParseRole("winger"), convey.ShouldEqual, model.RoleMID)

		raw, err := json.Marshal(model.Ball{Point: model.Point{X: 1, Y: 2}, Possession: model.SideHome})
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(raw), convey.ShouldEqual, `{"x":1,"y":2,"possession":"home"}`)
	})
}

func TestClampPoint(t *testing.T) {
	p := model.ClampPoint(model.Point{X: -3, Y: 140})
	if p.X != 0 || p.Y != 100 {
		t.Fatalf("ClampPoint = %+v", p)
	}
}

func TestEnumsParse(t *testing.T) {
	convey.Convey("Enum labels decode back", t, func() {
		var v struct {
			Phase      model.Phase      `json:"phase"`
			Discipline model.Discipline `json:"discipline"`
			Side       model.Side       `json:"side"`
		}
		err := json.Unmarshal([]byte(`{"phase":"SECOND_HALF","discipline":"WARNED","side":"away"}`), &v)
		convey.So(err, convey.ShouldBeNil)
		convey.So(v.Phase, convey.ShouldEqual, model.PhaseSecondHalf)
		convey.So(v.Discipline, convey.ShouldEqual, model.DisciplineWarned)
		convey.So(v.Side, convey.ShouldEqual, model.SideAway)

		convey.So(json.Unmarshal([]byte(`{"phase":"EXTRA_TIME"}`), &v), convey.ShouldNotBeNil)
	})
}
