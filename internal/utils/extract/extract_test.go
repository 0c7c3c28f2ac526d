package extract_test

import (
	"regexp"
	"testing"

	"PortfolioSync/internal/utils/extract"

	. "github.com/smartystreets/goconvey/convey"
)

func TestJSONPath(t *testing.T) {
	Convey("Given a decoded JSON document", t, func() {
		doc, err := extract.DecodeJSON([]byte(`{
			"info": {"userName": "alice", "totalProblemsSolved": 321},
			"items": [{"reputation": 1024, "badge_counts": {"gold": 3}}],
			"scoreText": "1,234"
		}`))
		So(err, ShouldBeNil)

		Convey("When resolving nested object paths", func() {
			v, ok := extract.JSONPath(doc, "info.userName")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "alice")
		})

		Convey("When resolving paths through array indexes", func() {
			n, ok := extract.JSONNumber(doc, "items.0.reputation")
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 1024)

			n, ok = extract.JSONNumber(doc, "items.0.badge_counts.gold")
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 3)
		})

		Convey("When the path does not exist", func() {
			_, ok := extract.JSONPath(doc, "info.missing.deeper")
			So(ok, ShouldBeFalse)

			n, ok := extract.JSONNumber(doc, "items.5.reputation")
			So(ok, ShouldBeFalse)
			So(n, ShouldEqual, 0)
		})

		Convey("When the value is a string-encoded number with thousand separators", func() {
			n, ok := extract.JSONNumber(doc, "scoreText")
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 1234)
		})

		Convey("When reading strings", func() {
			So(extract.JSONString(doc, "info.userName"), ShouldEqual, "alice")
			So(extract.JSONString(doc, "info.totalProblemsSolved"), ShouldEqual, "")
			So(extract.JSONString(doc, "nope"), ShouldEqual, "")
		})
	})
}

func TestDecodeJSON(t *testing.T) {
	Convey("Given invalid JSON", t, func() {
		_, err := extract.DecodeJSON([]byte(`{"broken":`))
		So(err, ShouldNotBeNil)
	})
}

func TestContainsAny(t *testing.T) {
	Convey("Given an HTML body", t, func() {
		body := []byte(`<html><body><h1>Sorry, User Not Found!</h1></body></html>`)

		Convey("Marker matching is case-insensitive", func() {
			So(extract.ContainsAny(body, []string{"user not found"}), ShouldBeTrue)
		})

		Convey("Unmatched markers return false", func() {
			So(extract.ContainsAny(body, []string{"does not exist"}), ShouldBeFalse)
		})

		Convey("Empty marker list never matches", func() {
			So(extract.ContainsAny(body, nil), ShouldBeFalse)
			So(extract.ContainsAny(body, []string{""}), ShouldBeFalse)
		})
	})
}

func TestFirstNumber(t *testing.T) {
	Convey("Given HTML with stats spread across tags", t, func() {
		body := []byte(`<div class="stats"><span>Problems Solved</span><b>1,337</b></div>`)
		patterns := []*regexp.Regexp{
			regexp.MustCompile(`(?i)Problems?\s*Solved[^0-9]{0,20}([\d,]+)`),
		}

		Convey("The number is found across stripped tags and commas are removed", func() {
			n, ok := extract.FirstNumber(body, patterns)
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 1337)
		})
	})

	Convey("Given a number hidden in an attribute", t, func() {
		body := []byte(`<span data-rating="1543">Expert</span>`)
		patterns := []*regexp.Regexp{
			regexp.MustCompile(`data-rating="(\d+)"`),
		}

		Convey("The raw-HTML retry still finds it", func() {
			n, ok := extract.FirstNumber(body, patterns)
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 1543)
		})
	})

	Convey("Given no matching pattern", t, func() {
		n, ok := extract.FirstNumber([]byte(`<p>nothing here</p>`), []*regexp.Regexp{
			regexp.MustCompile(`Rating[^0-9]{0,20}(\d+)`),
		})
		So(ok, ShouldBeFalse)
		So(n, ShouldEqual, 0)
	})
}

func TestPlausibleHandle(t *testing.T) {
	Convey("Handle shape validation", t, func() {
		So(extract.PlausibleHandle("tourist"), ShouldBeTrue)
		So(extract.PlausibleHandle("alice_42"), ShouldBeTrue)
		So(extract.PlausibleHandle("dead-beef"), ShouldBeTrue)
		So(extract.PlausibleHandle("  spaced  "), ShouldBeTrue) // trim后合法

		So(extract.PlausibleHandle(""), ShouldBeFalse)
		So(extract.PlausibleHandle("has space"), ShouldBeFalse)
		So(extract.PlausibleHandle("semi;colon"), ShouldBeFalse)
		So(extract.PlausibleHandle("https://evil.example/x"), ShouldBeFalse)
	})
}
