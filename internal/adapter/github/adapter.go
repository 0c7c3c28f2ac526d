package github

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
	"PortfolioSync/internal/utils/extract"
	"PortfolioSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

const defaultAPIBaseURL = "https://api.github.com"

// 贡献来源模板（官方REST不直接给贡献总数）；var便于测试替换
var (
	contributionsAPITemplate = "https://github-contributions-api.jogruber.de/v4/%s?y=last"
	contributionsPageFormat  = "https://github.com/users/%s/contributions"
)

var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`github\.com/([A-Za-z0-9-]+)`),
}

var contributionsPattern = regexp.MustCompile(`(?i)([\d,]+)\s+contributions?`)

// Adapter GitHub适配器：官方REST优先（404即确定不存在），
// 贡献数走镜像API，镜像失败再抓贡献日历页
type Adapter struct {
	cfg        *config.PlatformConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewAdapter(cfg *config.PlatformConfig, logger *logrus.Logger) interfaces.StatsAdapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

func (a *Adapter) PlatformID() model.PlatformID {
	return model.PlatformGitHub
}

// CanonicalUsername 完整主页URL → 用户名
func CanonicalUsername(identifier string) string {
	d := scraper.Descriptor{URLPatterns: urlPatterns}
	return d.CanonicalUsername(identifier)
}

type userResponse struct {
	Login       string `json:"login"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
}

func (a *Adapter) FetchStats(ctx context.Context, identifier string) (model.PlatformStats, error) {
	username := CanonicalUsername(identifier)
	if username == "" {
		return nil, fmt.Errorf("github用户名为空")
	}

	baseURL := a.cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	timeout := time.Duration(a.cfg.Timeout) * time.Second

	// 1. 官方REST：配置了PAT则带上（免认证60次/小时，带token5000次/小时）
	headers := map[string]string{"Accept": "application/vnd.github+json"}
	if a.cfg.AuthToken != "" {
		headers["Authorization"] = "Bearer " + a.cfg.AuthToken
	}
	status, body, err := httpclient.GetJSON(ctx, a.httpClient, fmt.Sprintf("%s/users/%s", baseURL, username), timeout, headers)
	if err == nil && status == http.StatusNotFound {
		// 官方404是确定性不存在，不再降级
		return nil, nil
	}
	if err != nil || status < 200 || status >= 300 {
		a.logger.WithError(err).WithFields(logrus.Fields{
			"username": username,
			"status":   status,
		}).Warn("GitHub REST失败，进入兜底判定")
		if extract.PlausibleHandle(username) {
			return model.ZeroStats(username, model.StatContributions, "publicRepos", "followers"), nil
		}
		return nil, fmt.Errorf("github用户信息获取失败: status=%d err=%v", status, err)
	}

	var user userResponse
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("github用户信息解析失败: %w", err)
	}

	stats := model.PlatformStats{
		model.StatUsername: user.Login,
		"publicRepos":      user.PublicRepos,
		"followers":        user.Followers,
	}
	// 2. 贡献数：失败不影响整体成功，置0即可
	stats[model.StatContributions] = a.fetchContributions(ctx, username)
	return stats, nil
}

// fetchContributions 镜像API优先，失败后抓贡献日历页，全挂返回0
func (a *Adapter) fetchContributions(ctx context.Context, username string) int {
	timeout := time.Duration(a.cfg.Timeout) * time.Second

	status, body, err := httpclient.GetJSON(ctx, a.httpClient, fmt.Sprintf(contributionsAPITemplate, username), timeout, nil)
	if err == nil && status >= 200 && status < 300 {
		if doc, derr := extract.DecodeJSON(body); derr == nil {
			if n, ok := extract.JSONNumber(doc, "total.lastYear"); ok {
				return int(n)
			}
		}
	}

	status, body, err = httpclient.GetHTML(ctx, a.httpClient, fmt.Sprintf(contributionsPageFormat, username), timeout, a.cfg.UserAgent)
	if err == nil && status >= 200 && status < 300 {
		if n, ok := extract.FirstNumber(body, []*regexp.Regexp{contributionsPattern}); ok {
			return int(n)
		}
	}

	a.logger.WithField("username", username).Debug("GitHub贡献数各来源均未命中，置0")
	return 0
}
