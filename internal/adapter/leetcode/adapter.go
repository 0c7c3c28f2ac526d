package leetcode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"PortfolioSync/internal/adapter/scraper"
	"PortfolioSync/internal/config"
	"PortfolioSync/internal/interfaces"
	"PortfolioSync/internal/model"
	"PortfolioSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://leetcode.com"

// matchedUser为null即用户确定不存在（LeetCode对未知用户不回错误码）
const statsQuery = `
query userProfile($username: String!) {
  matchedUser(username: $username) {
    username
    profile { ranking }
    submitStatsGlobal { acSubmissionNum { difficulty count } }
  }
  userContestRanking(username: $username) {
    attendedContestsCount
    rating
  }
}`

// descriptor GraphQL失败后的降级链（镜像API→主页抓取→兜底）
var descriptor = &scraper.Descriptor{
	Platform:           model.PlatformLeetCode,
	ProfileURLTemplate: "https://leetcode.com/u/%s/",
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`leetcode\.com/u/([A-Za-z0-9_-]+)`),
		regexp.MustCompile(`leetcode\.com/([A-Za-z0-9_-]+)`),
	},
	Mirrors: []scraper.MirrorAPI{
		{
			Name:        "leetcode-stats-api",
			URLTemplate: "https://leetcode-stats-api.herokuapp.com/%s",
			ErrorPath:   "status",
			ErrorValues: []string{"error"},
			RequirePath: "totalSolved",
			Fields: map[string]string{
				model.StatProblemsSolved: "totalSolved",
				model.StatEasySolved:     "easySolved",
				model.StatMediumSolved:   "mediumSolved",
				model.StatHardSolved:     "hardSolved",
				model.StatRank:           "ranking",
			},
		},
		{
			Name:        "alfa-leetcode-api",
			URLTemplate: "https://alfa-leetcode-api.onrender.com/%s/solved",
			RequirePath: "solvedProblem",
			Fields: map[string]string{
				model.StatProblemsSolved: "solvedProblem",
				model.StatEasySolved:     "easySolved",
				model.StatMediumSolved:   "mediumSolved",
				model.StatHardSolved:     "hardSolved",
			},
		},
	},
	AbsenceMarkers: []string{"user does not exist", "page not found", "404"},
	HTMLRules: []scraper.HTMLRule{
		{Field: model.StatProblemsSolved, Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)([\d,]+)\s*(?:problems?\s*)?solved`),
		}},
	},
	NumericFields: []string{
		model.StatProblemsSolved, model.StatEasySolved, model.StatMediumSolved,
		model.StatHardSolved, model.StatRating, model.StatContests,
	},
	RatingBearing: true,
}

// Adapter LeetCode适配器：官方GraphQL优先，失败后走通用降级链
type Adapter struct {
	cfg        *config.PlatformConfig
	httpClient *http.Client
	fallback   *scraper.Adapter
	logger     *logrus.Logger
}

func NewAdapter(cfg *config.PlatformConfig, logger *logrus.Logger) interfaces.StatsAdapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		fallback:   scraper.NewAdapter(descriptor, cfg, logger),
		logger:     logger,
	}
}

func (a *Adapter) PlatformID() model.PlatformID {
	return model.PlatformLeetCode
}

func (a *Adapter) FetchStats(ctx context.Context, identifier string) (model.PlatformStats, error) {
	username := descriptor.CanonicalUsername(identifier)
	if username == "" {
		return nil, fmt.Errorf("leetcode用户名为空")
	}

	// 1. 官方GraphQL：确定性不存在直接短路，不再降级
	stats, absent, err := a.queryGraphQL(ctx, username)
	if absent {
		return nil, nil
	}
	if err == nil {
		return stats, nil
	}
	a.logger.WithError(err).WithField("username", username).Warn("LeetCode GraphQL失败，转降级链")

	// 2-4. 镜像API→主页抓取→全0兜底（通用链）
	return a.fallback.FetchStats(ctx, username)
}

// graphql响应结构（只取用到的字段）
type gqlResponse struct {
	Data struct {
		MatchedUser *struct {
			Username string `json:"username"`
			Profile  struct {
				Ranking int `json:"ranking"`
			} `json:"profile"`
			SubmitStatsGlobal struct {
				AcSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStatsGlobal"`
		} `json:"matchedUser"`
		UserContestRanking *struct {
			AttendedContestsCount int     `json:"attendedContestsCount"`
			Rating                float64 `json:"rating"`
		} `json:"userContestRanking"`
	} `json:"data"`
}

// queryGraphQL absent=true表示matchedUser为null（确定不存在）
func (a *Adapter) queryGraphQL(ctx context.Context, username string) (model.PlatformStats, bool, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"query":     statsQuery,
		"variables": map[string]string{"username": username},
	})
	if err != nil {
		return nil, false, fmt.Errorf("构建GraphQL请求失败: %w", err)
	}

	baseURL := a.cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := time.Duration(a.cfg.Timeout) * time.Second
	headers := map[string]string{
		"Referer":    fmt.Sprintf("%s/u/%s/", baseURL, username),
		"User-Agent": httpclient.DefaultBrowserUA,
	}
	status, body, err := httpclient.PostJSON(ctx, a.httpClient, baseURL+"/graphql", timeout, payload, headers)
	if err != nil {
		return nil, false, fmt.Errorf("GraphQL请求失败: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, false, fmt.Errorf("GraphQL返回非2xx: %d", status)
	}

	var resp gqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false, fmt.Errorf("GraphQL响应解析失败: %w", err)
	}
	if resp.Data.MatchedUser == nil {
		return nil, true, nil
	}

	stats := model.PlatformStats{
		model.StatUsername: resp.Data.MatchedUser.Username,
		model.StatRank:     resp.Data.MatchedUser.Profile.Ranking,
	}
	for _, item := range resp.Data.MatchedUser.SubmitStatsGlobal.AcSubmissionNum {
		switch item.Difficulty {
		case "All":
			stats[model.StatProblemsSolved] = item.Count
		case "Easy":
			stats[model.StatEasySolved] = item.Count
		case "Medium":
			stats[model.StatMediumSolved] = item.Count
		case "Hard":
			stats[model.StatHardSolved] = item.Count
		}
	}
	if cr := resp.Data.UserContestRanking; cr != nil {
		stats[model.StatContests] = cr.AttendedContestsCount
		stats[model.StatRating] = int(cr.Rating)
	} else {
		stats[model.StatContests] = 0
		stats[model.StatRating] = 0
	}
	return stats, false, nil
}
