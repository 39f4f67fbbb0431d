package scouting_test

import (
	"testing"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/scouting"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassifyTier(t *testing.T) {
	Convey("Tier boundaries are inclusive", t, func() {
		So(scouting.ClassifyTier(90).Name, ShouldEqual, "Elite Prospect")
		So(scouting.ClassifyTier(89.9).Name, ShouldEqual, "Top Prospect")
		So(scouting.ClassifyTier(85).Color, ShouldEqual, "silver")
		So(scouting.ClassifyTier(80).Name, ShouldEqual, "Promising Talent")
		So(scouting.ClassifyTier(75).Name, ShouldEqual, "Developing Player")
		So(scouting.ClassifyTier(70).Name, ShouldEqual, "Squad Player")
		So(scouting.ClassifyTier(69.9).Color, ShouldEqual, "purple")
	})
}

func TestGrowthTrajectory(t *testing.T) {
	Convey("Given players of different ages", t, func() {
		Convey("When a 17 year old has a 16 point gap", func() {
			g := scouting.GrowthTrajectory(model.Player{Age: 17, CurrentRating: 60, PeakPotential: 76})
			So(g.Rate, ShouldEqual, scouting.GrowthRapid)
			So(g.ShortTerm, ShouldEqual, 5)
			So(g.LongTerm, ShouldEqual, 16)
		})

		Convey("When a 19 year old has a 7 point gap", func() {
			g := scouting.GrowthTrajectory(model.Player{Age: 19, CurrentRating: 70, PeakPotential: 77})
			So(g.Rate, ShouldEqual, scouting.GrowthModerate)
		})

		Convey("When a 22 year old has a small gap", func() {
			g := scouting.GrowthTrajectory(model.Player{Age: 22, CurrentRating: 80, PeakPotential: 82})
			So(g.Rate, ShouldEqual, scouting.GrowthPlateau)
			So(g.ShortTerm, ShouldEqual, 2)
		})

		Convey("When a 22 year old has a wide gap it is never rapid", func() {
			g := scouting.GrowthTrajectory(model.Player{Age: 22, CurrentRating: 50, PeakPotential: 90})
			So(g.Rate, ShouldEqual, scouting.GrowthModerate)
		})

		Convey("When current equals peak", func() {
			g := scouting.GrowthTrajectory(model.Player{Age: 16, CurrentRating: 70, PeakPotential: 70})
			So(g.ShortTerm, ShouldEqual, 0)
			So(g.Rate, ShouldEqual, scouting.GrowthSlow)
		})
	})
}

func TestAnalyzeProfile(t *testing.T) {
	Convey("Given a prolific young forward", t, func() {
		p := model.Player{Position: model.PositionForward, GoalsPer90: 0.6, Matches: 25, CurrentRating: 60, PeakPotential: 80, Age: 17}
		pr := scouting.AnalyzeProfile(p)

		So(pr.Strengths, ShouldResemble, []string{
			"Excellent goal-scoring ability",
			"Regular first-team player",
			"High growth potential",
			"Young age with time to develop",
		})
		So(pr.Weaknesses, ShouldResemble, []string{"No major concerns identified"})
		So(pr.DevelopmentAreas, ShouldResemble, []string{"Focus on consistent performances"})
	})

	Convey("Given a defender with few matches", t, func() {
		p := model.Player{Position: model.PositionDefender, Matches: 3, CurrentRating: 70, PeakPotential: 72, Age: 21}
		pr := scouting.AnalyzeProfile(p)

		So(pr.Strengths, ShouldResemble, []string{"Developing player with potential"})
		So(pr.Weaknesses, ShouldResemble, []string{"Limited playing time"})
		So(pr.DevelopmentAreas, ShouldResemble, []string{"Need more match experience"})
	})
}

func TestRecommend(t *testing.T) {
	Convey("Recommendations follow the ladder", t, func() {
		So(scouting.Recommend(model.Player{PeakPotential: 91, Age: 18}).Level, ShouldEqual, scouting.LevelPrioritySigning)
		So(scouting.Recommend(model.Player{PeakPotential: 91, Age: 19, Matches: 15}).Level, ShouldEqual, scouting.LevelHighlyRecommend)
		So(scouting.Recommend(model.Player{PeakPotential: 86, Age: 19, Matches: 3}).Level, ShouldEqual, scouting.LevelRecommend)
		So(scouting.Recommend(model.Player{PeakPotential: 76, Age: 17}).Level, ShouldEqual, scouting.LevelMonitor)
		So(scouting.Recommend(model.Player{PeakPotential: 76, Age: 20}).Level, ShouldEqual, scouting.LevelObserve)
	})
}

func TestBuildReport(t *testing.T) {
	Convey("Given a player with two seasons", t, func() {
		older := model.Player{ID: 7, Name: "Ada", Season: "2023-2024", Position: model.PositionMidfielder, CurrentRating: 62, PeakPotential: 80, Matches: 10, Goals: 2, Age: 17}
		newer := model.Player{ID: 7, Name: "Ada", Season: "2024-2025", Position: model.PositionMidfielder, CurrentRating: 66, PeakPotential: 82, Matches: 20, Goals: 6, Age: 18}

		r := scouting.BuildReport(newer, []model.Player{older, newer}, nil, "2024-2025")

		Convey("Then totals and season change are computed", func() {
			So(r.SeasonsCount, ShouldEqual, 2)
			So(r.Performance.TotalMatches, ShouldEqual, 30)
			So(r.Performance.TotalGoals, ShouldEqual, 8)
			So(r.Performance.GoalsPerMatch, ShouldAlmostEqual, 0.3, 1e-9)
			So(r.SeasonChange.Available, ShouldBeTrue)
			So(r.SeasonChange.PreviousSeason, ShouldEqual, "2023-2024")
			So(r.SeasonChange.RatingChange, ShouldEqual, 4)
			So(r.SeasonChange.GoalsChange, ShouldEqual, 4)
			So(r.SeasonChange.MatchesChange, ShouldEqual, 10)
			So(r.SeasonChange.GoalsPerMatchChange, ShouldEqual, 0.1)
			So(r.SeasonChange.Trend, ShouldEqual, scouting.TrendImproving)
		})

		Convey("Then the in-progress season is flagged", func() {
			So(r.IsIncomplete, ShouldBeTrue)
			So(r.HasIncompleteSeason, ShouldBeTrue)
			So(r.SimilarPlayers, ShouldNotBeNil)
		})

		Convey("Then the notes mention the player", func() {
			So(r.ScoutNotes, ShouldStartWith, "Ada is a 18-year-old MF classified as a Promising Talent")
		})

		Convey("Then the oldest season has nothing to compare with", func() {
			c := scouting.CompareSeasons(older, []model.Player{older, newer})
			So(c.Available, ShouldBeFalse)
			So(c.Trend, ShouldEqual, scouting.TrendStable)
		})
	})
}

func TestCompareSeasonsUnknown(t *testing.T) {
	Convey("Given a progression with an unlabelled season", t, func() {
		labelled := model.Player{ID: 7, Season: "2024-2025", CurrentRating: 72, Goals: 9, Matches: 20}
		unknown := model.Player{ID: 7, Season: model.SeasonUnknown, CurrentRating: 65, Goals: 3, Matches: 12}
		progression := []model.Player{unknown, labelled}

		Convey("Then sorting puts the unlabelled season last", func() {
			sorted := append([]model.Player(nil), progression...)
			scouting.SortSeasons(sorted)
			So(sorted[0].Season, ShouldEqual, "2024-2025")
			So(sorted[1].Season, ShouldEqual, model.SeasonUnknown)
		})

		Convey("Then the labelled season compares against the unlabelled one", func() {
			c := scouting.CompareSeasons(labelled, progression)
			So(c.Available, ShouldBeTrue)
			So(c.PreviousSeason, ShouldEqual, model.SeasonUnknown)
			So(c.RatingChange, ShouldEqual, 7.0)
			So(c.Trend, ShouldEqual, scouting.TrendImproving)
		})

		Convey("Then the unlabelled season has nothing older to compare with", func() {
			c := scouting.CompareSeasons(unknown, progression)
			So(c.Available, ShouldBeFalse)
		})
	})
}

func TestTeams(t *testing.T) {
	Convey("Given players from two clubs", t, func() {
		players := []model.Player{
			{ID: 1, Club: "Ajax", Position: model.PositionForward, PeakPotential: 90, CurrentRating: 70, Age: 18},
			{ID: 2, Club: "Ajax", Position: model.PositionMidfielder, PeakPotential: 80, CurrentRating: 60, Age: 20},
			{ID: 3, Club: "Ajax", Position: model.PositionForward, PeakPotential: 70, CurrentRating: 65, Age: 22},
			{ID: 4, Club: "PSV", Position: model.PositionDefender, PeakPotential: 85, CurrentRating: 75, Age: 19},
			{ID: 5, Club: "Ajax", Position: model.PositionGoalkeeper, PeakPotential: 80, CurrentRating: 62, Age: 19},
		}

		Convey("When summarizing one club", func() {
			var ajax []model.Player
			for _, p := range players {
				if p.Club == "Ajax" {
					ajax = append(ajax, p)
				}
			}
			s := scouting.Team("Ajax", ajax)

			So(s.Players, ShouldEqual, 4)
			So(s.AvgPeak, ShouldEqual, 80)
			So(s.AvgAge, ShouldEqual, 19.8)
			So(s.Positions[model.PositionForward], ShouldEqual, 2)
			So(s.PeakStdDev, ShouldEqual, 8.16)
			So(len(s.TopProspects), ShouldEqual, 3)
			So(s.TopProspects[0].ID, ShouldEqual, 1)
			So(s.TopProspects[1].ID, ShouldEqual, 2)
			So(s.TopProspects[2].ID, ShouldEqual, 5)
		})

		Convey("When a club has one player", func() {
			s := scouting.Team("PSV", players[3:4])
			So(s.PeakStdDev, ShouldEqual, 0)
		})

		Convey("When listing clubs", func() {
			list := scouting.Teams(players)
			So(len(list), ShouldEqual, 2)
			So(list[0].Club, ShouldEqual, "PSV")
			So(list[1].Players, ShouldEqual, 4)
		})

		Convey("When summarizing positions", func() {
			sum := scouting.PositionsSummary(players, 3)
			So(len(sum), ShouldEqual, 4)
			So(len(sum[model.PositionForward]), ShouldEqual, 2)
			So(sum[model.PositionDefender][0].ID, ShouldEqual, 4)
		})
	})
}
