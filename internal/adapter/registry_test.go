package adapter_test

import (
	"io"
	"sort"
	"testing"

	"PortfolioSync/internal/adapter"
	"PortfolioSync/internal/config"
	"PortfolioSync/internal/model"

	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRegistry(t *testing.T) {
	Convey("Given a registry built from an empty config", t, func() {
		cfg := &config.Config{Platforms: map[string]config.PlatformConfig{}}
		r := adapter.NewRegistry(cfg, quietLogger())

		Convey("All built-in platforms are registered", func() {
			platforms := r.ListPlatforms()
			So(len(platforms), ShouldEqual, 15)
			So(sort.SliceIsSorted(platforms, func(i, j int) bool {
				return platforms[i] < platforms[j]
			}), ShouldBeTrue)

			So(r.IsKnown(model.PlatformLeetCode), ShouldBeTrue)
			So(r.IsKnown(model.PlatformGitHub), ShouldBeTrue)
			So(r.IsKnown(model.PlatformStackOverflow), ShouldBeTrue)
		})

		Convey("Known platforms resolve to their own adapter", func() {
			So(r.Resolve(model.PlatformCodeforces, "").PlatformID(), ShouldEqual, model.PlatformCodeforces)
			So(r.Resolve(model.PlatformCodeChef, "").PlatformID(), ShouldEqual, model.PlatformCodeChef)
		})

		Convey("Unknown platforms resolve to a generic adapter instead of failing", func() {
			custom := model.PlatformID("campus-judge")
			So(r.IsKnown(custom), ShouldBeFalse)
			ins := r.Resolve(custom, "https://judge.campus.edu/profile/%s")
			So(ins, ShouldNotBeNil)
			So(ins.PlatformID(), ShouldEqual, custom)
		})
	})

	Convey("Given a config that disables a platform", t, func() {
		cfg := &config.Config{Platforms: map[string]config.PlatformConfig{
			"kaggle": {Disabled: true, Timeout: 15},
		}}
		r := adapter.NewRegistry(cfg, quietLogger())

		Convey("The disabled platform is not registered", func() {
			So(r.IsKnown(model.PlatformKaggle), ShouldBeFalse)
			So(len(r.ListPlatforms()), ShouldEqual, 14)
		})

		Convey("Disabled is reported distinctly from unknown", func() {
			So(r.IsDisabled(model.PlatformKaggle), ShouldBeTrue)
			So(r.IsDisabled(model.PlatformLeetCode), ShouldBeFalse)
			So(r.IsDisabled(model.PlatformID("campus-judge")), ShouldBeFalse)
		})
	})
}
