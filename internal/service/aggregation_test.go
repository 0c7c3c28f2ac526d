package service_test

import (
	"io"
	"testing"

	"PortfolioSync/internal/model"
	"PortfolioSync/internal/service"

	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestAggregate(t *testing.T) {
	agg := service.NewAggregationService(quietLogger())

	Convey("Given stats from several platforms", t, func() {
		inputs := map[model.PlatformID]model.PlatformStats{
			model.PlatformLeetCode: {
				model.StatUsername:       "alice",
				model.StatProblemsSolved: 512,
				model.StatEasySolved:     200,
				model.StatMediumSolved:   250,
				model.StatHardSolved:     62,
				model.StatContests:       23,
				model.StatRating:         1873,
			},
			model.PlatformCodeforces: {
				model.StatUsername: "alice_cf",
				model.StatRating:   1950,
				model.StatContests: 40,
			},
			model.PlatformGitHub: {
				model.StatUsername:      "alice",
				model.StatContributions: 1287,
				// GitHub不是rating-bearing平台，该值必须被忽略
				model.StatRating: 99999,
			},
		}

		Convey("When aggregating", func() {
			got := agg.Aggregate(inputs)

			Convey("Counters sum across platforms", func() {
				So(got.TotalProblems, ShouldEqual, 512)
				So(got.EasyProblems, ShouldEqual, 200)
				So(got.MediumProblems, ShouldEqual, 250)
				So(got.HardProblems, ShouldEqual, 62)
				So(got.GithubContributions, ShouldEqual, 1287)
				So(got.ContestsParticipated, ShouldEqual, 63)
			})

			Convey("Rating is the max over rating-bearing platforms only", func() {
				So(got.Rating, ShouldEqual, 1950)
			})

			Convey("Aggregation is idempotent", func() {
				So(agg.Aggregate(inputs), ShouldResemble, got)
				So(agg.Aggregate(inputs), ShouldResemble, got)
			})
		})
	})

	Convey("Given stats without an explicit total", t, func() {
		inputs := map[model.PlatformID]model.PlatformStats{
			model.PlatformLeetCode: {
				model.StatEasySolved:   10,
				model.StatMediumSolved: 5,
				model.StatHardSolved:   1,
			},
		}

		Convey("The difficulty buckets back-fill the total", func() {
			got := agg.Aggregate(inputs)
			So(got.TotalProblems, ShouldEqual, 16)
		})
	})

	Convey("Given no inputs at all", t, func() {
		Convey("The result is an all-zero snapshot, never nil", func() {
			got := agg.Aggregate(nil)
			So(got, ShouldNotBeNil)
			So(*got, ShouldResemble, model.StudentStats{})
		})
	})

	Convey("Given a nil per-platform entry", t, func() {
		inputs := map[model.PlatformID]model.PlatformStats{
			model.PlatformCodeChef: nil,
			model.PlatformAtCoder:  {model.StatProblemsSolved: 7},
		}

		Convey("The nil entry contributes nothing", func() {
			got := agg.Aggregate(inputs)
			So(got.TotalProblems, ShouldEqual, 7)
		})
	})
}

func TestAggregatePlatformIndependence(t *testing.T) {
	agg := service.NewAggregationService(quietLogger())

	Convey("Given a full input set and the same set minus one platform", t, func() {
		inputs := map[model.PlatformID]model.PlatformStats{
			model.PlatformLeetCode: {
				model.StatUsername:       "alice",
				model.StatProblemsSolved: 512,
				model.StatEasySolved:     200,
				model.StatMediumSolved:   250,
				model.StatHardSolved:     62,
				model.StatContests:       23,
				model.StatRating:         1873,
			},
			model.PlatformCodeforces: {
				model.StatUsername: "alice_cf",
				model.StatRating:   1950,
				model.StatContests: 40,
			},
			model.PlatformGitHub: {
				model.StatUsername:      "alice",
				model.StatContributions: 1287,
			},
		}
		full := agg.Aggregate(inputs)

		Convey("Dropping GitHub only moves the fields GitHub fed", func() {
			trimmed := map[model.PlatformID]model.PlatformStats{}
			for k, v := range inputs {
				if k != model.PlatformGitHub {
					trimmed[k] = v
				}
			}
			got := agg.Aggregate(trimmed)

			So(got.GithubContributions, ShouldEqual, 0)

			So(got.TotalProblems, ShouldEqual, full.TotalProblems)
			So(got.EasyProblems, ShouldEqual, full.EasyProblems)
			So(got.MediumProblems, ShouldEqual, full.MediumProblems)
			So(got.HardProblems, ShouldEqual, full.HardProblems)
			So(got.ContestsParticipated, ShouldEqual, full.ContestsParticipated)
			So(got.Rating, ShouldEqual, full.Rating)
		})

		Convey("Dropping Codeforces only moves its contest count and the rating max", func() {
			trimmed := map[model.PlatformID]model.PlatformStats{}
			for k, v := range inputs {
				if k != model.PlatformCodeforces {
					trimmed[k] = v
				}
			}
			got := agg.Aggregate(trimmed)

			So(got.ContestsParticipated, ShouldEqual, full.ContestsParticipated-40)
			So(got.Rating, ShouldEqual, 1873) // 最高分回落到LeetCode

			So(got.TotalProblems, ShouldEqual, full.TotalProblems)
			So(got.EasyProblems, ShouldEqual, full.EasyProblems)
			So(got.MediumProblems, ShouldEqual, full.MediumProblems)
			So(got.HardProblems, ShouldEqual, full.HardProblems)
			So(got.GithubContributions, ShouldEqual, full.GithubContributions)
		})
	})
}

func TestAggregateOutcomes(t *testing.T) {
	agg := service.NewAggregationService(quietLogger())

	Convey("Given a sync batch with mixed outcomes", t, func() {
		outcomes := []*model.SyncOutcome{
			{
				PlatformID: model.PlatformLeetCode,
				Success:    true,
				Stats:      model.PlatformStats{model.StatProblemsSolved: 100},
			},
			{
				PlatformID: model.PlatformCodeChef,
				Success:    false,
				Error:      "timeout",
			},
			{
				PlatformID: model.PlatformAtCoder,
				Success:    true,
				Stats:      nil, // 防御：Success却无数据时不参与聚合
			},
		}

		Convey("Only successful outcomes with data contribute", func() {
			got := agg.AggregateOutcomes(outcomes)
			So(got.TotalProblems, ShouldEqual, 100)
		})
	})
}
