package github

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

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

// overrideContributionSources 把贡献来源指到测试server，返回恢复函数
func overrideContributionSources(apiTemplate, pageFormat string) func() {
	prevAPI, prevPage := contributionsAPITemplate, contributionsPageFormat
	contributionsAPITemplate = apiTemplate
	contributionsPageFormat = pageFormat
	return func() {
		contributionsAPITemplate = prevAPI
		contributionsPageFormat = prevPage
	}
}

func TestCanonicalUsername(t *testing.T) {
	Convey("GitHub identifiers canonicalize", t, func() {
		So(CanonicalUsername("https://github.com/octocat"), ShouldEqual, "octocat")
		So(CanonicalUsername("https://github.com/octo-cat/"), ShouldEqual, "octo-cat")
		So(CanonicalUsername("@octocat"), ShouldEqual, "octocat")
		So(CanonicalUsername(" octocat "), ShouldEqual, "octocat")
	})
}

func TestFetchStats(t *testing.T) {
	Convey("Given the REST API and a contributions mirror", t, func() {
		var sawAuth string
		mux := http.NewServeMux()
		mux.HandleFunc("/users/octocat", func(w http.ResponseWriter, r *http.Request) {
			sawAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"login": "octocat", "public_repos": 8, "followers": 4000, "following": 9}`))
		})
		mux.HandleFunc("/users/nobody", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
		mux.HandleFunc("/contrib/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"total": {"lastYear": 1287}}`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		restore := overrideContributionSources(server.URL+"/contrib/%s", server.URL+"/contrib-page/%s")
		defer restore()

		cfg := &config.PlatformConfig{BaseURL: server.URL, Timeout: 5, AuthToken: "ghp_testtoken"}
		a := NewAdapter(cfg, quietLogger())

		Convey("A known user returns profile and contribution stats", func() {
			stats, err := a.FetchStats(context.Background(), "octocat")
			So(err, ShouldBeNil)
			So(stats, ShouldNotBeNil)
			So(stats.Username(), ShouldEqual, "octocat")
			So(stats.Number("publicRepos"), ShouldEqual, 8)
			So(stats.Number("followers"), ShouldEqual, 4000)
			So(stats.Number(model.StatContributions), ShouldEqual, 1287)

			Convey("The configured token is sent as a bearer header", func() {
				So(sawAuth, ShouldEqual, "Bearer ghp_testtoken")
			})
		})

		Convey("A REST 404 is a confirmed absence", func() {
			stats, err := a.FetchStats(context.Background(), "nobody")
			So(err, ShouldBeNil)
			So(stats, ShouldBeNil)
		})
	})

	Convey("Given the REST API being down", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusBadGateway)
		}))
		defer server.Close()

		cfg := &config.PlatformConfig{BaseURL: server.URL, Timeout: 5}
		a := NewAdapter(cfg, quietLogger())

		Convey("A plausible handle degrades to a zeroed record", func() {
			stats, err := a.FetchStats(context.Background(), "octocat")
			So(err, ShouldBeNil)
			So(stats, ShouldNotBeNil)
			So(stats.Username(), ShouldEqual, "octocat")
			So(stats.Number(model.StatContributions), ShouldEqual, 0)
		})

		Convey("An implausible handle surfaces the failure", func() {
			_, err := a.FetchStats(context.Background(), "bad handle!")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a mirror failure with a working contributions page", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/users/octocat", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"login": "octocat", "public_repos": 8, "followers": 4000}`))
		})
		mux.HandleFunc("/contrib/", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusGone)
		})
		mux.HandleFunc("/contrib-page/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html><h2>2,431 contributions in the last year</h2></html>`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		restore := overrideContributionSources(server.URL+"/contrib/%s", server.URL+"/contrib-page/%s")
		defer restore()

		cfg := &config.PlatformConfig{BaseURL: server.URL, Timeout: 5}
		a := NewAdapter(cfg, quietLogger())

		Convey("Contributions come from the calendar page scrape", func() {
			stats, err := a.FetchStats(context.Background(), "octocat")
			So(err, ShouldBeNil)
			So(stats.Number(model.StatContributions), ShouldEqual, 2431)
		})
	})
}
