package scraper_test

import (
	"testing"

	"PortfolioSync/internal/adapter/scraper"
	"PortfolioSync/internal/model"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCanonicalUsername(t *testing.T) {
	Convey("Given the built-in platform descriptors", t, func() {
		cases := []struct {
			platform   model.PlatformID
			identifier string
			want       string
		}{
			{model.PlatformCodeChef, "https://www.codechef.com/users/gennady", "gennady"},
			{model.PlatformAtCoder, "https://atcoder.jp/users/tourist", "tourist"},
			{model.PlatformHackerRank, "https://www.hackerrank.com/profile/alice_hr", "alice_hr"},
			{model.PlatformGeeksForGeeks, "https://auth.geeksforgeeks.org/user/gfg-champ", "gfg-champ"},
			{model.PlatformHackerEarth, "https://www.hackerearth.com/@earthling", "earthling"},
			{model.PlatformSPOJ, "https://www.spoj.com/users/spojster/", "spojster"},
			{model.PlatformTopCoder, "https://www.topcoder.com/members/tc_legend", "tc_legend"},
			{model.PlatformCodewars, "https://www.codewars.com/users/kata-fan", "kata-fan"},
			{model.PlatformStackOverflow, "https://stackoverflow.com/users/22656/jon-skeet", "22656"},
		}

		for _, tc := range cases {
			desc := scraper.Descriptors[tc.platform]
			So(desc, ShouldNotBeNil)
			So(desc.CanonicalUsername(tc.identifier), ShouldEqual, tc.want)
		}

		Convey("A bare handle passes through trimmed", func() {
			desc := scraper.Descriptors[model.PlatformCodeChef]
			So(desc.CanonicalUsername("  plainuser "), ShouldEqual, "plainuser")
		})

		Convey("An @-prefixed handle loses the prefix", func() {
			desc := scraper.Descriptors[model.PlatformKaggle]
			So(desc.CanonicalUsername("@grandmaster"), ShouldEqual, "grandmaster")
		})
	})
}

func TestDescriptorsConsistency(t *testing.T) {
	Convey("Every descriptor is internally consistent", t, func() {
		for platform, desc := range scraper.Descriptors {
			So(desc.Platform, ShouldEqual, platform)
			So(desc.ProfileURLTemplate, ShouldContainSubstring, "%s")
			So(len(desc.NumericFields), ShouldBeGreaterThan, 0)
			for _, mirror := range desc.Mirrors {
				So(mirror.URLTemplate, ShouldContainSubstring, "%s")
				So(len(mirror.Fields), ShouldBeGreaterThan, 0)
			}
		}
	})
}

func TestRatingBearing(t *testing.T) {
	Convey("Rating participation covers API platforms and flagged descriptors", t, func() {
		So(scraper.RatingBearing(model.PlatformLeetCode), ShouldBeTrue)
		So(scraper.RatingBearing(model.PlatformCodeforces), ShouldBeTrue)
		So(scraper.RatingBearing(model.PlatformCodeChef), ShouldBeTrue)
		So(scraper.RatingBearing(model.PlatformAtCoder), ShouldBeTrue)

		So(scraper.RatingBearing(model.PlatformGitHub), ShouldBeFalse)
		So(scraper.RatingBearing(model.PlatformKaggle), ShouldBeFalse)
		So(scraper.RatingBearing(model.PlatformID("some-custom-judge")), ShouldBeFalse)
	})
}
