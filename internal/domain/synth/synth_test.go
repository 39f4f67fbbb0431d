package synth_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/synth"
	. "github.com/smartystreets/goconvey/convey"
)

func countByType(events []model.SyntheticEvent) map[model.EventType]int {
	out := map[model.EventType]int{}
	for _, e := range events {
		out[e.Type]++
	}
	return out
}

func TestSynthesize(t *testing.T) {
	Convey("Given a forward with five goals and seed 42", t, func() {
		a := synth.Synthesize(5, model.PositionForward, 42)
		b := synth.Synthesize(5, model.PositionForward, 42)

		Convey("Then repeated calls are byte-identical", func() {
			ja, _ := json.Marshal(a)
			jb, _ := json.Marshal(b)
			So(string(ja), ShouldEqual, string(jb))
		})

		Convey("Then the event counts follow the formulae", func() {
			c := countByType(a)
			So(c[model.EventGoal], ShouldEqual, 5)
			So(c[model.EventMiss], ShouldEqual, 13)
			So(c[model.EventKeyPass], ShouldEqual, 12)
			So(len(a), ShouldEqual, 30)
		})

		Convey("Then ids are sequential from one", func() {
			for i, e := range a {
				So(e.ID, ShouldEqual, i+1)
			}
		})

		Convey("Then every coordinate is inside its region", func() {
			for _, e := range a {
				switch e.Type {
				case model.EventGoal:
					So(e.X, ShouldBeBetweenOrEqual, 75, 95)
					So(e.Y, ShouldBeBetweenOrEqual, 10, 40)
				case model.EventMiss:
					So(e.X, ShouldBeBetweenOrEqual, 60, 95)
					So(e.Y, ShouldBeBetweenOrEqual, 5, 45)
				case model.EventKeyPass:
					So(e.X, ShouldBeBetweenOrEqual, 55, 85)
					So(e.Y, ShouldBeBetweenOrEqual, 5, 45)
				}
			}
		})
	})

	Convey("Given a goalkeeper", t, func() {
		events := synth.Synthesize(0, model.PositionGoalkeeper, 7)

		Convey("Then no key passes are emitted and misses floor at eight", func() {
			c := countByType(events)
			So(c[model.EventKeyPass], ShouldEqual, 0)
			So(c[model.EventMiss], ShouldEqual, 8)
			So(c[model.EventGoal], ShouldEqual, 0)
		})
	})

	Convey("Given a negative goal count", t, func() {
		goals, misses, passes := synth.Counts(-4, model.PositionMidfielder)
		So(goals, ShouldEqual, 0)
		So(misses, ShouldEqual, 8)
		So(passes, ShouldEqual, 4)
	})

	Convey("Given different seeds", t, func() {
		a := synth.Synthesize(3, model.PositionForward, 1)
		b := synth.Synthesize(3, model.PositionForward, 2)
		So(a, ShouldNotResemble, b)
	})
}

func TestPRNG(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		rng := synth.NewPRNG(99)

		Convey("Then values are in [0,1) and repeatable", func() {
			for band := 0; band <= 500; band += 100 {
				for i := 0; i < 200; i++ {
					v := rng.At(band, i)
					So(v, ShouldBeGreaterThanOrEqualTo, 0)
					So(v, ShouldBeLessThan, 1)
					So(synth.NewPRNG(99).At(band, i), ShouldEqual, v)
				}
			}
		})

		Convey("Then bands are independent streams", func() {
			So(rng.At(synth.BandGoalX, 100), ShouldNotEqual, rng.At(synth.BandGoalY, 0))
		})
	})
}
