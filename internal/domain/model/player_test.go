package model_test

import (
	"testing"

	model "github.com/okian/scout/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfidenceRank(t *testing.T) {
	convey.Convey("Given confidence tiers", t, func() {
		convey.Convey("Then they are strictly ordered", func() {
			convey.So(model.ConfidenceVeryLow.Rank(), convey.ShouldBeLessThan, model.ConfidenceLow.Rank())
			convey.So(model.ConfidenceLow.Rank(), convey.ShouldBeLessThan, model.ConfidenceMedium.Rank())
			convey.So(model.ConfidenceMedium.Rank(), convey.ShouldBeLessThan, model.ConfidenceHigh.Rank())
		})

		convey.Convey("Then an unknown tier ranks below all of them", func() {
			convey.So(model.Confidence("Bogus").Rank(), convey.ShouldEqual, -1)
		})
	})
}

func TestPlayerGrowthGap(t *testing.T) {
	convey.Convey("Given a player", t, func() {
		p := model.Player{CurrentRating: 68, PeakPotential: 84}

		convey.Convey("Then the growth gap is peak minus current", func() {
			convey.So(p.GrowthGap(), convey.ShouldEqual, 16)
		})
	})
}

func TestSeasonNewer(t *testing.T) {
	convey.Convey("Season labels compare newest first", t, func() {
		convey.So(model.SeasonNewer("2024-2025", "2023-2024"), convey.ShouldBeTrue)
		convey.So(model.SeasonNewer("2023-2024", "2024-2025"), convey.ShouldBeFalse)
		convey.So(model.SeasonNewer("2019-2020", model.SeasonUnknown), convey.ShouldBeTrue)
		convey.So(model.SeasonNewer(model.SeasonUnknown, "2019-2020"), convey.ShouldBeFalse)
		convey.So(model.SeasonNewer(model.SeasonUnknown, ""), convey.ShouldBeFalse)
		convey.So(model.SeasonNewer("", model.SeasonUnknown), convey.ShouldBeFalse)
	})
}
