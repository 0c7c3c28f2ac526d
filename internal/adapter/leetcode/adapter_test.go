package leetcode_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"PortfolioSync/internal/adapter/leetcode"
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

func TestFetchStatsGraphQL(t *testing.T) {
	Convey("Given a GraphQL endpoint with a known user", t, func(c C) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.So(r.URL.Path, ShouldEqual, "/graphql")
			c.So(r.Method, ShouldEqual, http.MethodPost)

			var req struct {
				Variables map[string]string `json:"variables"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)

			if req.Variables["username"] == "ghost" {
				_, _ = w.Write([]byte(`{"data": {"matchedUser": null}}`))
				return
			}
			_, _ = w.Write([]byte(`{
				"data": {
					"matchedUser": {
						"username": "alice",
						"profile": {"ranking": 10432},
						"submitStatsGlobal": {"acSubmissionNum": [
							{"difficulty": "All", "count": 512},
							{"difficulty": "Easy", "count": 200},
							{"difficulty": "Medium", "count": 250},
							{"difficulty": "Hard", "count": 62}
						]}
					},
					"userContestRanking": {"attendedContestsCount": 23, "rating": 1873.4}
				}
			}`))
		}))
		defer server.Close()

		cfg := &config.PlatformConfig{BaseURL: server.URL, Timeout: 5}
		a := leetcode.NewAdapter(cfg, quietLogger())

		Convey("A known user returns full difficulty buckets and contest data", func() {
			stats, err := a.FetchStats(context.Background(), "alice")
			So(err, ShouldBeNil)
			So(stats, ShouldNotBeNil)
			So(stats.Username(), ShouldEqual, "alice")
			So(stats.Number(model.StatProblemsSolved), ShouldEqual, 512)
			So(stats.Number(model.StatEasySolved), ShouldEqual, 200)
			So(stats.Number(model.StatMediumSolved), ShouldEqual, 250)
			So(stats.Number(model.StatHardSolved), ShouldEqual, 62)
			So(stats.Number(model.StatContests), ShouldEqual, 23)
			So(stats.Number(model.StatRating), ShouldEqual, 1873)
		})

		Convey("A full profile URL identifier is canonicalized first", func() {
			stats, err := a.FetchStats(context.Background(), "https://leetcode.com/u/alice/")
			So(err, ShouldBeNil)
			So(stats.Username(), ShouldEqual, "alice")
		})

		Convey("A null matchedUser is a confirmed absence", func() {
			stats, err := a.FetchStats(context.Background(), "ghost")
			So(err, ShouldBeNil)
			So(stats, ShouldBeNil)
		})

		Convey("An empty identifier is rejected", func() {
			_, err := a.FetchStats(context.Background(), "  ")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a user with no contest history", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"data": {
					"matchedUser": {
						"username": "newbie",
						"profile": {"ranking": 0},
						"submitStatsGlobal": {"acSubmissionNum": [{"difficulty": "All", "count": 3}]}
					},
					"userContestRanking": null
				}
			}`))
		}))
		defer server.Close()

		cfg := &config.PlatformConfig{BaseURL: server.URL, Timeout: 5}
		a := leetcode.NewAdapter(cfg, quietLogger())

		Convey("Contest fields default to zero", func() {
			stats, err := a.FetchStats(context.Background(), "newbie")
			So(err, ShouldBeNil)
			So(stats.Number(model.StatContests), ShouldEqual, 0)
			So(stats.Number(model.StatRating), ShouldEqual, 0)
		})
	})
}
