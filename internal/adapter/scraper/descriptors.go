package scraper

import (
	"regexp"

	"PortfolioSync/internal/model"
)

// 各平台通用的"用户不存在"页面标记（小写匹配）
var commonAbsenceMarkers = []string{
	"user not found",
	"page not found",
	"does not exist",
	"404",
}

// Descriptors 无专属协议平台的声明式描述表
// LeetCode/GitHub/Codeforces有独立适配器（协议特殊），不在此表
var Descriptors = map[model.PlatformID]*Descriptor{
	model.PlatformCodeChef: {
		Platform:           model.PlatformCodeChef,
		ProfileURLTemplate: "https://www.codechef.com/users/%s",
		URLPatterns: []*regexp.Regexp{
			regexp.MustCompile(`codechef\.com/users/([A-Za-z0-9_]+)`),
		},
		Mirrors: []MirrorAPI{
			{
				Name:        "codechef-api.vercel.app",
				URLTemplate: "https://codechef-api.vercel.app/handle/%s",
				RequirePath: "currentRating",
				Fields: map[string]string{
					model.StatRating: "currentRating",
					model.StatRank:   "globalRank",
				},
			},
		},
		AbsenceMarkers: commonAbsenceMarkers,
		HTMLRules: []HTMLRule{
			{Field: model.StatRating, Patterns: []*regexp.Regexp{
				regexp.MustCompile(`rating-number[^>]*>\s*(\d+)`),
			}},
			{Field: model.StatProblemsSolved, Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)Total Problems Solved:?\s*(\d+)`),
				regexp.MustCompile(`(?i)Fully Solved[^0-9]{0,20}(\d+)`),
			}},
			{Field: model.StatContests, Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)Contests?\s*\(?(\d+)\)?`),
			}},
		},
		NumericFields: []string{model.StatProblemsSolved, model.StatRating, model.StatContests},
		RatingBearing: true,
	},

	model.PlatformHackerRank: {
		Platform:           model.PlatformHackerRank,
		ProfileURLTemplate: "https://www.hackerrank.com/profile/%s",
		URLPatterns: []*regexp.Regexp{
			regexp.MustCompile(`hackerrank\.com/profile/([A-Za-z0-9_]+)`),
			regexp.MustCompile(`hackerrank\.com/([A-Za-z0-9_]+)`),
		},
		Mirrors: []MirrorAPI{
			{
				Name:        "hackerrank-rest",
				URLTemplate: "https://www.hackerrank.com/rest/contests/master/hackers/%s/profile",
				RequirePath: "model.username",
				Fields: map[string]string{
					model.StatBadges: "model.badges_count",
				},
			},
		},
		AbsenceMarkers: append([]string{"we could not find the page"}, commonAbsenceMarkers...),
		HTMLRules: []HTMLRule{
			{Field: model.StatBadges, Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(\d+)\s*badges?`),
			}},
		},
		NumericFields: []string{model.StatProblemsSolved, model.StatBadges},
	},

	model.PlatformAtCoder: {
		Platform:           model.PlatformAtCoder,
		ProfileURLTemplate: "https://atcoder.jp/users/%s",
		URLPatterns: []*regexp.Regexp{
			regexp.MustCompile(`atcoder\.jp/users/([A-Za-z0-9_]+)`),
		},
		Mirrors: []MirrorAPI{
			{
				Name:        "kenkoooo.com",
				URLTemplate: "https://kenkoooo.com/atcoder/atcoder-api/v3/user/ac_rank?user=%s",
				RequirePath: "count",
				Fields: map[string]string{
					model.StatProblemsSolved: "count",
					model.StatRank:           "rank",
				},
			},
		},
		AbsenceMarkers: commonAbsenceMarkers,
		HTMLRules: []HTMLRule{
			{Field: model.StatRating, Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)Rating\s*</th>\s*<td[^>]*>\s*<span[^>]*>(\d+)`),
				regexp.MustCompile(`(?i)Rating[^0-9]{0,40}(\d{1,4})`),
			}},
			{Field: model.StatContests, Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)Rated Matches\s*</th>\s*<td[^>]*>\s*(\d+)`),
			}},
		},
		NumericFields: []string{model.StatProblemsSolved, model.StatRating, model.StatContests},
		RatingBearing: true,
	},

	model.PlatformGeeksForGeeks: {
		Platform:           model.PlatformGeeksForGeeks,
		ProfileURLTemplate: "https://www.geeksforgeeks.org/user/%s/",
		URLPatterns: []*regexp.Regexp{
			regexp.MustCompile(`geeksforgeeks\.org/user/([A-Za-z0-9_-]+)`),
			regexp.MustCompile(`auth\.geeksforgeeks\.org/user/([A-Za-z0-9_-]+)`),
		},
		Mirrors: []MirrorAPI{
			{
				Name:        "geeks-for-geeks-api.vercel.app",
				URLTemplate: "https://geeks-for-geeks-api.vercel.app/%s",
				RequirePath: "info.userName",
				Fields: map[string]string{
					model.StatProblemsSolved: "info.totalProblemsSolved",
					model.StatRating:         "info.codingScore",
				},
			},
		},
		AbsenceMarkers: append([]string{"could not find the page"}, commonAbsenceMarkers...),
		HTMLRules: []HTMLRule{
			{Field: model.StatProblemsSolved, Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)Problem[s]?\s*Solved[^0-9]{0,20}(\d+)`),
			}},
		},
		NumericFields: []string{model.StatProblemsSolved, model.StatRating},
	},

	model.PlatformHackerEarth: {
		Platform:           model.PlatformHackerEarth,
		ProfileURLTemplate: "https://www.hackerearth.com/@%s",
		URLPatterns: []*regexp.Regexp{
			regexp.MustCompile(`hackerearth\.com/@([A-Za-z0-9_.-]+)`),
			regexp.MustCompile(`hackerearth\.com/users/([A-Za-z0-9_.-]+)`),
		},
		AbsenceMarkers: commonAbsenceMarkers,
		HTMLRules: []HTMLRule{
			{Field: model.StatProblemsSolved, Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)Problems?\s*Solved[^0-9]{0,20}(\d+)`),
			}},
			{Field: model.StatContests, Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)Contest[s]?\s*Rated[^0-9]{0,20}(\d+)`),
			}},
		},
		NumericFields: []string{model.StatProblemsSolved, model.StatContests},
	},

	model.PlatformSPOJ: {
		Platform:           model.PlatformSPOJ,
		ProfileURLTemplate: "https://www.spoj.com/users/%s/",
		URLPatterns: []*regexp.Regexp{
			regexp.MustCompile(`spoj\.com/users/([A-Za-z0-9_]+)`),
		},
		AbsenceMarkers: commonAbsenceMarkers,
		HTMLRules: []HTMLRule{
			{Field: model.StatProblemsSolved, Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)Problems?\s*solved[^0-9]{0,20}(\d+)`),
			}},
			{Field: model.StatRank, Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)world\s*rank[^0-9]{0,10}#?(\d+)`),
			}},
		},
		NumericFields: []string{model.StatProblemsSolved, model.StatRank},
	},

	model.PlatformTopCoder: {
		Platform:           model.PlatformTopCoder,
		ProfileURLTemplate: "https://profiles.topcoder.com/%s",
		URLPatterns: []*regexp.Regexp{
			regexp.MustCompile(`topcoder\.com/members/([A-Za-z0-9_.\[\]-]+)`),
			regexp.MustCompile(`profiles\.topcoder\.com/([A-Za-z0-9_.\[\]-]+)`),
		},
		Mirrors: []MirrorAPI{
			{
				Name:        "topcoder-v5",
				URLTemplate: "https://api.topcoder.com/v5/members/%s",
				RequirePath: "handle",
				Fields: map[string]string{
					model.StatRating: "maxRating.rating",
				},
			},
		},
		AbsenceMarkers: commonAbsenceMarkers,
		NumericFields:  []string{model.StatProblemsSolved, model.StatRating},
		RatingBearing:  true,
	},

	model.PlatformInterviewBit: {
		Platform:           model.PlatformInterviewBit,
		ProfileURLTemplate: "https://www.interviewbit.com/profile/%s",
		URLPatterns: []*regexp.Regexp{
			regexp.MustCompile(`interviewbit\.com/profile/([A-Za-z0-9_-]+)`),
		},
		AbsenceMarkers: commonAbsenceMarkers,
		HTMLRules: []HTMLRule{
			{Field: model.StatProblemsSolved, Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)Problems?\s*Solved[^0-9]{0,20}(\d+)`),
			}},
			{Field: model.StatRank, Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)Global\s*Rank[^0-9]{0,20}(\d+)`),
			}},
		},
		NumericFields: []string{model.StatProblemsSolved, model.StatRank},
	},

	model.PlatformCodingNinjas: {
		Platform:           model.PlatformCodingNinjas,
		ProfileURLTemplate: "https://www.naukri.com/code360/profile/%s",
		URLPatterns: []*regexp.Regexp{
			regexp.MustCompile(`naukri\.com/code360/profile/([A-Za-z0-9_-]+)`),
			regexp.MustCompile(`codingninjas\.com/studio/profile/([A-Za-z0-9_-]+)`),
		},
		AbsenceMarkers: commonAbsenceMarkers,
		HTMLRules: []HTMLRule{
			{Field: model.StatProblemsSolved, Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)Problems?\s*Solved[^0-9]{0,40}(\d+)`),
			}},
		},
		NumericFields: []string{model.StatProblemsSolved},
	},

	model.PlatformCodewars: {
		Platform:           model.PlatformCodewars,
		ProfileURLTemplate: "https://www.codewars.com/users/%s",
		URLPatterns: []*regexp.Regexp{
			regexp.MustCompile(`codewars\.com/users/([A-Za-z0-9_-]+)`),
		},
		Mirrors: []MirrorAPI{
			{
				// Codewars官方API免认证，放在镜像槽位第一个
				Name:        "codewars-v1",
				URLTemplate: "https://www.codewars.com/api/v1/users/%s",
				RequirePath: "username",
				Fields: map[string]string{
					model.StatProblemsSolved: "codeChallenges.totalCompleted",
					model.StatRating:         "honor",
				},
			},
		},
		AbsenceMarkers: commonAbsenceMarkers,
		NumericFields:  []string{model.StatProblemsSolved, model.StatRating},
	},

	model.PlatformKaggle: {
		Platform:           model.PlatformKaggle,
		ProfileURLTemplate: "https://www.kaggle.com/%s",
		URLPatterns: []*regexp.Regexp{
			regexp.MustCompile(`kaggle\.com/([A-Za-z0-9]+)`),
		},
		AbsenceMarkers: commonAbsenceMarkers,
		HTMLRules: []HTMLRule{
			{Field: model.StatContests, Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(\d+)\s*competitions?`),
			}},
		},
		NumericFields: []string{model.StatContests},
	},

	model.PlatformStackOverflow: {
		Platform:           model.PlatformStackOverflow,
		ProfileURLTemplate: "https://stackoverflow.com/users/%s",
		URLPatterns: []*regexp.Regexp{
			regexp.MustCompile(`stackoverflow\.com/users/(\d+)`),
		},
		Mirrors: []MirrorAPI{
			{
				// StackExchange官方API，用户标识是数字ID
				Name:        "stackexchange-2.3",
				URLTemplate: "https://api.stackexchange.com/2.3/users/%s?site=stackoverflow",
				RequirePath: "items.0.user_id",
				Fields: map[string]string{
					"reputation":     "items.0.reputation",
					model.StatBadges: "items.0.badge_counts.gold",
				},
			},
		},
		AbsenceMarkers: commonAbsenceMarkers,
		HTMLRules: []HTMLRule{
			{Field: "reputation", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)reputation[^0-9]{0,40}([\d,]+)`),
			}},
		},
		NumericFields: []string{"reputation", model.StatBadges},
	},
}

// RatingBearing 平台rating是否参与跨平台取最大
// 专属适配器平台（leetcode/codeforces）在此补充声明
func RatingBearing(platform model.PlatformID) bool {
	switch platform {
	case model.PlatformLeetCode, model.PlatformCodeforces:
		return true
	}
	if d, ok := Descriptors[platform]; ok {
		return d.RatingBearing
	}
	return false
}
