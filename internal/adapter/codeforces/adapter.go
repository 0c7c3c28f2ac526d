package codeforces

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"PortfolioSync/internal/adapter/scraper"
	"PortfolioSync/internal/config"
	"PortfolioSync/internal/interfaces"
	"PortfolioSync/internal/model"
	"PortfolioSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://codeforces.com"

// descriptor 官方API失败后的降级链（Codeforces无可靠社区镜像，直接抓主页）
var descriptor = &scraper.Descriptor{
	Platform:           model.PlatformCodeforces,
	ProfileURLTemplate: "https://codeforces.com/profile/%s",
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`codeforces\.com/profile/([A-Za-z0-9_.-]+)`),
	},
	AbsenceMarkers: []string{"can't find such user", "page not found", "404"},
	HTMLRules: []scraper.HTMLRule{
		{Field: model.StatRating, Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Contest rating:?[^0-9]{0,40}(\d+)`),
		}},
		{Field: model.StatProblemsSolved, Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(\d+)\s*problems?\s*solved`),
		}},
	},
	NumericFields: []string{model.StatProblemsSolved, model.StatRating, model.StatContests},
	RatingBearing: true,
}

// Adapter Codeforces适配器：官方REST（user.info + user.rating）优先
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
	return model.PlatformCodeforces
}

type userInfoResponse struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Result  []struct {
		Handle    string `json:"handle"`
		Rating    int    `json:"rating"`
		MaxRating int    `json:"maxRating"`
		Rank      string `json:"rank"`
	} `json:"result"`
}

type userRatingResponse struct {
	Status string            `json:"status"`
	Result []json.RawMessage `json:"result"`
}

func (a *Adapter) FetchStats(ctx context.Context, identifier string) (model.PlatformStats, error) {
	username := descriptor.CanonicalUsername(identifier)
	if username == "" {
		return nil, fmt.Errorf("codeforces用户名为空")
	}

	baseURL := a.cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := time.Duration(a.cfg.Timeout) * time.Second

	// 1. 官方user.info：status=FAILED且comment带not found → 确定不存在
	infoURL := fmt.Sprintf("%s/api/user.info?handles=%s", baseURL, username)
	status, body, err := httpclient.GetJSON(ctx, a.httpClient, infoURL, timeout, nil)
	if err != nil || status < 200 || status >= 300 {
		// 400也可能是handle不存在，但body里才有定论，先尝试解析
		if body == nil {
			a.logger.WithError(err).WithField("username", username).Warn("Codeforces API失败，转降级链")
			return a.fallback.FetchStats(ctx, username)
		}
	}

	var info userInfoResponse
	if uerr := json.Unmarshal(body, &info); uerr != nil {
		a.logger.WithError(uerr).WithField("username", username).Warn("Codeforces响应解析失败，转降级链")
		return a.fallback.FetchStats(ctx, username)
	}
	if info.Status == "FAILED" {
		if strings.Contains(strings.ToLower(info.Comment), "not found") {
			return nil, nil
		}
		a.logger.WithFields(logrus.Fields{
			"username": username,
			"comment":  info.Comment,
		}).Warn("Codeforces API返回FAILED，转降级链")
		return a.fallback.FetchStats(ctx, username)
	}
	if len(info.Result) == 0 {
		return nil, nil
	}

	u := info.Result[0]
	stats := model.PlatformStats{
		model.StatUsername: u.Handle,
		model.StatRating:   u.Rating,
		model.StatRank:     u.Rank,
		"maxRating":        u.MaxRating,
	}
	// 2. user.rating拿参赛场次；失败不影响整体成功
	stats[model.StatContests] = a.fetchContestCount(ctx, baseURL, username, timeout)
	return stats, nil
}

// fetchContestCount rated参赛场次=user.rating返回的记录数，失败返回0
func (a *Adapter) fetchContestCount(ctx context.Context, baseURL, username string, timeout time.Duration) int {
	ratingURL := fmt.Sprintf("%s/api/user.rating?handle=%s", baseURL, username)
	status, body, err := httpclient.GetJSON(ctx, a.httpClient, ratingURL, timeout, nil)
	if err != nil || status < 200 || status >= 300 {
		return 0
	}
	var rating userRatingResponse
	if err := json.Unmarshal(body, &rating); err != nil || rating.Status != "OK" {
		return 0
	}
	return len(rating.Result)
}
