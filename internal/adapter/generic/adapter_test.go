package generic_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"PortfolioSync/internal/adapter/generic"
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

func TestFetchStats(t *testing.T) {
	Convey("Given a custom judge with a profile base URL", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/profile/alice", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>Problems Solved: 96 · Rating: 1402 · Contests: 11</html>`))
		})
		mux.HandleFunc("/profile/ghost", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>This user does not exist.</html>`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		cfg := &config.PlatformConfig{Timeout: 5}
		platform := model.PlatformID("campus-judge")
		a := generic.NewAdapter(platform, server.URL+"/profile/%s", cfg, quietLogger())

		Convey("The adapter reports the custom platform id", func() {
			So(a.PlatformID(), ShouldEqual, platform)
		})

		Convey("A handle resolves through the page scrape", func() {
			stats, err := a.FetchStats(context.Background(), "alice")
			So(err, ShouldBeNil)
			So(stats, ShouldNotBeNil)
			So(stats.Username(), ShouldEqual, "alice")
			So(stats.Number(model.StatProblemsSolved), ShouldEqual, 96)
			So(stats.Number(model.StatRating), ShouldEqual, 1402)
			So(stats.Number(model.StatContests), ShouldEqual, 11)
		})

		Convey("An absence marker is a confirmed absence", func() {
			stats, err := a.FetchStats(context.Background(), "ghost")
			So(err, ShouldBeNil)
			So(stats, ShouldBeNil)
		})

		Convey("A full URL identifier is scraped directly", func() {
			stats, err := a.FetchStats(context.Background(), server.URL+"/profile/alice")
			So(err, ShouldBeNil)
			So(stats.Username(), ShouldEqual, "alice")
			So(stats.Number(model.StatProblemsSolved), ShouldEqual, 96)
		})
	})

	Convey("Given no base URL at all", t, func() {
		cfg := &config.PlatformConfig{Timeout: 5}
		a := generic.NewAdapter(model.PlatformID("mystery"), "", cfg, quietLogger())

		Convey("A plausible handle gets a zeroed record without any I/O", func() {
			stats, err := a.FetchStats(context.Background(), "someone")
			So(err, ShouldBeNil)
			So(stats, ShouldNotBeNil)
			So(stats.Username(), ShouldEqual, "someone")
			So(stats.Number(model.StatProblemsSolved), ShouldEqual, 0)
		})

		Convey("An implausible handle is rejected", func() {
			_, err := a.FetchStats(context.Background(), "no spaces allowed")
			So(err, ShouldNotBeNil)
		})

		Convey("An empty identifier is rejected", func() {
			_, err := a.FetchStats(context.Background(), "  ")
			So(err, ShouldNotBeNil)
		})
	})
}
