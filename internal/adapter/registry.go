package adapter

import (
	"sort"

	"PortfolioSync/internal/adapter/codeforces"
	"PortfolioSync/internal/adapter/generic"
	"PortfolioSync/internal/adapter/github"
	"PortfolioSync/internal/adapter/leetcode"
	"PortfolioSync/internal/adapter/scraper"
	"PortfolioSync/internal/config"
	"PortfolioSync/internal/interfaces"
	"PortfolioSync/internal/model"

	"github.com/sirupsen/logrus"
)

// factories 已知平台→工厂函数
// 专属协议平台单独注册，其余平台统一由描述表驱动
func factories() map[model.PlatformID]interfaces.Factory {
	m := map[model.PlatformID]interfaces.Factory{
		model.PlatformLeetCode:   leetcode.NewAdapter,
		model.PlatformGitHub:     github.NewAdapter,
		model.PlatformCodeforces: codeforces.NewAdapter,
	}
	for platform, desc := range scraper.Descriptors {
		m[platform] = scraper.FactoryFor(desc)
	}
	return m
}

// Registry 平台标识→适配器实例的注册表
// 未知平台解析为generic适配器（纯解析，无I/O，无失败分支）
// 禁用≠未知：配置禁用的平台单独记账，绝不能落到generic兜底
// （兜底会产出全0"成功"记录，把用户的真实缓存统计冲掉）
type Registry struct {
	cfg      *config.Config
	logger   *logrus.Logger
	adapters map[model.PlatformID]interfaces.StatsAdapter
	disabled map[model.PlatformID]bool
}

func NewRegistry(cfg *config.Config, logger *logrus.Logger) *Registry {
	r := &Registry{
		cfg:      cfg,
		logger:   logger,
		adapters: make(map[model.PlatformID]interfaces.StatsAdapter),
		disabled: make(map[model.PlatformID]bool),
	}

	for platform, factory := range factories() {
		platformCfg := cfg.PlatformOrDefault(string(platform))
		if platformCfg.Disabled {
			r.disabled[platform] = true
			logger.WithField("platform", platform).Info("平台已在配置中禁用，跳过注册")
			continue
		}
		ins := factory(&platformCfg, logger)
		if ins == nil {
			logger.WithField("platform", platform).Error("工厂函数返回nil适配器实例")
			continue
		}
		// 验证实例的平台类型是否匹配
		if ins.PlatformID() != platform {
			logger.WithFields(logrus.Fields{
				"registry_platform": platform,
				"adapter_platform":  ins.PlatformID(),
			}).Error("适配器平台类型与注册表不匹配，跳过")
			continue
		}
		r.adapters[platform] = ins
	}
	logger.WithField("platform_count", len(r.adapters)).Info("适配器注册表初始化完成")

	return r
}

// Resolve 解析平台适配器；未知平台返回generic兜底（baseURL来自用户绑定时给的主页）
func (r *Registry) Resolve(platform model.PlatformID, baseURL string) interfaces.StatsAdapter {
	if ins, ok := r.adapters[platform]; ok {
		return ins
	}
	platformCfg := r.cfg.PlatformOrDefault(string(platform))
	return generic.NewAdapter(platform, baseURL, &platformCfg, r.logger)
}

// IsKnown 是否有专属/描述式适配器（verify接口校验"受支持平台"用）
func (r *Registry) IsKnown(platform model.PlatformID) bool {
	_, ok := r.adapters[platform]
	return ok
}

// IsDisabled 平台是否被配置显式禁用；调用方须先查禁用再Resolve，
// 否则禁用平台会被当成未知平台落到generic兜底
func (r *Registry) IsDisabled(platform model.PlatformID) bool {
	return r.disabled[platform]
}

// ListPlatforms 已注册平台列表（字典序，GET /api/platforms用）
func (r *Registry) ListPlatforms() []model.PlatformID {
	platforms := make([]model.PlatformID, 0, len(r.adapters))
	for p := range r.adapters {
		platforms = append(platforms, p)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })
	return platforms
}
