package confidence_test

import (
	"testing"

	"github.com/okian/scout/internal/domain/confidence"
	"github.com/okian/scout/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given match counts around every boundary", t, func() {
		cases := map[int]model.Confidence{
			-3:  model.ConfidenceVeryLow,
			0:   model.ConfidenceVeryLow,
			4:   model.ConfidenceVeryLow,
			5:   model.ConfidenceLow,
			9:   model.ConfidenceLow,
			10:  model.ConfidenceMedium,
			19:  model.ConfidenceMedium,
			20:  model.ConfidenceHigh,
			500: model.ConfidenceHigh,
		}
		for matches, want := range cases {
			So(confidence.Classify(matches), ShouldEqual, want)
		}
	})

	Convey("Classification is monotonic in matches", t, func() {
		prev := confidence.Classify(0).Rank()
		for m := 1; m <= 40; m++ {
			cur := confidence.Classify(m).Rank()
			So(cur, ShouldBeGreaterThanOrEqualTo, prev)
			prev = cur
		}
	})
}
