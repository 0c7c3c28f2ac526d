package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"PortfolioSync/internal/config"
	"PortfolioSync/internal/interfaces"
	"PortfolioSync/internal/model"
	"PortfolioSync/internal/utils/extract"
	"PortfolioSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// 镜像API单次探测超时：比整体超时短，保证坏镜像不吃满预算
const mirrorProbeTimeout = 8 * time.Second

// Adapter 描述驱动的通用适配器：一套控制流跑所有声明式平台
// 抓取链：镜像API（按序探测）→ 主页抓取（先查不存在标记）→ 全0兜底
type Adapter struct {
	desc       *Descriptor
	cfg        *config.PlatformConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewAdapter(desc *Descriptor, cfg *config.PlatformConfig, logger *logrus.Logger) *Adapter {
	return &Adapter{
		desc:       desc,
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// FactoryFor 把描述绑定成标准工厂函数（注册表按平台批量创建用）
func FactoryFor(desc *Descriptor) interfaces.Factory {
	return func(cfg *config.PlatformConfig, logger *logrus.Logger) interfaces.StatsAdapter {
		return NewAdapter(desc, cfg, logger)
	}
}

// PlatformID ========== 实现StatsAdapter接口 ==========
func (a *Adapter) PlatformID() model.PlatformID {
	return a.desc.Platform
}

func (a *Adapter) FetchStats(ctx context.Context, identifier string) (model.PlatformStats, error) {
	username := a.desc.CanonicalUsername(identifier)
	if username == "" {
		return nil, fmt.Errorf("%s用户名为空", a.desc.Platform)
	}

	// 1. 镜像API按序探测，首个有效响应直接返回
	for _, mirror := range a.desc.Mirrors {
		stats, ok := a.tryMirror(ctx, &mirror, username)
		if ok {
			return a.normalize(username, stats), nil
		}
	}

	// 2. 主页抓取：确定性不存在 → nil；其余情况尽力提取
	stats, absent, err := a.scrapeProfile(ctx, username)
	if absent {
		return nil, nil
	}
	if err == nil {
		return a.normalize(username, stats), nil
	}
	a.logger.WithError(err).WithFields(logrus.Fields{
		"platform": a.desc.Platform,
		"username": username,
	}).Warn("主页抓取失败，进入兜底判定")

	// 取消导致的"全挂"不是网络降级，必须按传输失败上报，不能伪装成功
	if cerr := ctx.Err(); cerr != nil {
		return nil, fmt.Errorf("%s抓取被取消: %w", a.desc.Platform, cerr)
	}

	// 3. 全0兜底：网络全挂但用户名形态可信时仍允许绑定，
	//    调用方以last_synced_at而非0值判断数据新鲜度
	if extract.PlausibleHandle(username) {
		return model.ZeroStats(username, a.desc.NumericFields...), nil
	}
	return nil, fmt.Errorf("%s全部抓取策略失败: %w", a.desc.Platform, err)
}

// HasProfileTemplate 是否配置了主页模板（generic适配器判定抓取链可用性）
func (a *Adapter) HasProfileTemplate() bool {
	return a.desc.ProfileURLTemplate != ""
}

// FetchFromURL 直接抓取给定URL（identifier本身是完整主页时用）
// 语义与FetchStats一致：确定不存在→(nil,nil)，抓取失败且用户名可信→全0兜底
func (a *Adapter) FetchFromURL(ctx context.Context, rawURL, username string) (model.PlatformStats, error) {
	stats, absent, err := a.scrapeURL(ctx, rawURL)
	if absent {
		return nil, nil
	}
	if err == nil {
		return a.normalize(username, stats), nil
	}
	if cerr := ctx.Err(); cerr != nil {
		return nil, fmt.Errorf("%s抓取被取消: %w", a.desc.Platform, cerr)
	}
	if extract.PlausibleHandle(username) {
		return model.ZeroStats(username, a.desc.NumericFields...), nil
	}
	return nil, fmt.Errorf("%s抓取%s失败: %w", a.desc.Platform, rawURL, err)
}

// tryMirror 单个镜像探测；任何失败（超时/非2xx/响应无效）都静默返回false
func (a *Adapter) tryMirror(ctx context.Context, mirror *MirrorAPI, username string) (model.PlatformStats, bool) {
	url := fmt.Sprintf(mirror.URLTemplate, username)
	status, body, err := httpclient.GetJSON(ctx, a.httpClient, url, mirrorProbeTimeout, nil)
	if err != nil || status < 200 || status >= 300 {
		a.logger.WithFields(logrus.Fields{
			"platform": a.desc.Platform,
			"mirror":   mirror.Name,
			"status":   status,
		}).Debug("镜像探测失败，尝试下一个候选")
		return nil, false
	}

	doc, err := extract.DecodeJSON(body)
	if err != nil {
		return nil, false
	}
	// 错误标记命中 → 无效响应
	if mirror.ErrorPath != "" {
		if v := extract.JSONString(doc, mirror.ErrorPath); v != "" {
			for _, bad := range mirror.ErrorValues {
				if v == bad {
					return nil, false
				}
			}
		}
	}
	// 必要路径缺失 → 无效响应
	if mirror.RequirePath != "" {
		if _, ok := extract.JSONPath(doc, mirror.RequirePath); !ok {
			return nil, false
		}
	}

	stats := model.PlatformStats{}
	for field, path := range mirror.Fields {
		if n, ok := extract.JSONNumber(doc, path); ok {
			stats[field] = n
		} else if s := extract.JSONString(doc, path); s != "" {
			stats[field] = s
		}
	}
	a.logger.WithFields(logrus.Fields{
		"platform": a.desc.Platform,
		"mirror":   mirror.Name,
		"username": username,
	}).Info("镜像API命中")
	return stats, true
}

// scrapeProfile 直接抓公开主页；absent=true表示确定性不存在（不可再降级）
func (a *Adapter) scrapeProfile(ctx context.Context, username string) (model.PlatformStats, bool, error) {
	if a.desc.ProfileURLTemplate == "" {
		return nil, false, fmt.Errorf("%s未配置主页模板", a.desc.Platform)
	}
	return a.scrapeURL(ctx, fmt.Sprintf(a.desc.ProfileURLTemplate, username))
}

func (a *Adapter) scrapeURL(ctx context.Context, url string) (model.PlatformStats, bool, error) {
	timeout := time.Duration(a.cfg.Timeout) * time.Second
	status, body, err := httpclient.GetHTML(ctx, a.httpClient, url, timeout, a.cfg.UserAgent)
	if err != nil {
		return nil, false, fmt.Errorf("抓取主页失败: %w", err)
	}
	if status == http.StatusNotFound {
		return nil, true, nil
	}
	if status < 200 || status >= 300 {
		return nil, false, fmt.Errorf("主页返回非2xx: %d", status)
	}
	if extract.ContainsAny(body, a.desc.AbsenceMarkers) {
		return nil, true, nil
	}

	// 尽力提取：未命中字段保持缺失，normalize统一补0
	stats := model.PlatformStats{}
	for _, rule := range a.desc.HTMLRules {
		if n, ok := extract.FirstNumber(body, rule.Patterns); ok {
			stats[rule.Field] = n
		}
	}
	return stats, false, nil
}

// normalize 补齐username与声明的数值字段（未命中补0），保证结果形状稳定
func (a *Adapter) normalize(username string, stats model.PlatformStats) model.PlatformStats {
	if stats == nil {
		stats = model.PlatformStats{}
	}
	stats[model.StatUsername] = username
	for _, f := range a.desc.NumericFields {
		if _, ok := stats[f]; !ok {
			stats[f] = 0
		}
	}
	return stats
}
