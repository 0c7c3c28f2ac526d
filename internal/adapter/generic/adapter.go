package generic

import (
	"context"
	"fmt"
	"strings"

	"PortfolioSync/internal/adapter/scraper"
	"PortfolioSync/internal/config"
	"PortfolioSync/internal/interfaces"
	"PortfolioSync/internal/model"
	"PortfolioSync/internal/utils/extract"

	"github.com/sirupsen/logrus"
)

// Adapter 用户自定义平台的兜底适配器
// 无官方API和镜像可用，只走主页抓取→全0兜底两级；
// URL形态只做最保守的假设：基础URL拼用户名，或一个常见的profile路径猜测
type Adapter struct {
	platform model.PlatformID
	scraper  *scraper.Adapter
	logger   *logrus.Logger
}

// NewAdapter baseURL可空（空则只有identifier本身是URL时才尝试抓取）
func NewAdapter(platform model.PlatformID, baseURL string, cfg *config.PlatformConfig, logger *logrus.Logger) interfaces.StatsAdapter {
	desc := &scraper.Descriptor{
		Platform:           platform,
		ProfileURLTemplate: profileTemplate(baseURL),
		AbsenceMarkers:     []string{"user not found", "page not found", "does not exist", "404"},
		HTMLRules: []scraper.HTMLRule{
			{Field: model.StatProblemsSolved, Patterns: scraper.CommonSolvedPatterns},
			{Field: model.StatRating, Patterns: scraper.CommonRatingPatterns},
			{Field: model.StatContests, Patterns: scraper.CommonContestPatterns},
		},
		NumericFields: []string{model.StatProblemsSolved, model.StatRating, model.StatContests},
	}
	return &Adapter{
		platform: platform,
		scraper:  scraper.NewAdapter(desc, cfg, logger),
		logger:   logger,
	}
}

// profileTemplate 基础URL → 主页模板；已含%s则原样用，否则末尾拼用户名
func profileTemplate(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return ""
	}
	if strings.Contains(baseURL, "%s") {
		return baseURL
	}
	return strings.TrimSuffix(baseURL, "/") + "/%s"
}

func (a *Adapter) PlatformID() model.PlatformID {
	return a.platform
}

func (a *Adapter) FetchStats(ctx context.Context, identifier string) (model.PlatformStats, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%s用户名为空", a.platform)
	}

	// identifier本身是URL且未配基础URL：直接当主页抓
	if strings.HasPrefix(identifier, "http://") || strings.HasPrefix(identifier, "https://") {
		username := lastPathSegment(identifier)
		return a.scraper.FetchFromURL(ctx, identifier, username)
	}

	// 有主页模板走完整抓取链；没有则只剩形态兜底
	if a.scraper.HasProfileTemplate() {
		return a.scraper.FetchStats(ctx, identifier)
	}
	if extract.PlausibleHandle(identifier) {
		return model.ZeroStats(identifier), nil
	}
	return nil, fmt.Errorf("%s无可用抓取地址且用户名形态不可信", a.platform)
}

func lastPathSegment(rawURL string) string {
	trimmed := strings.TrimSuffix(rawURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return trimmed
	}
	return strings.TrimPrefix(trimmed[idx+1:], "@")
}
