package interfaces

import (
	"context"
	"time"

	"PortfolioSync/internal/config"
	"PortfolioSync/internal/model"

	"github.com/sirupsen/logrus"
)

// StatsAdapter 所有平台适配器必须实现的核心接口
//
// FetchStats 语义约定：
//   - 确认用户不存在（404/页面明确提示）→ 返回 (nil, nil)，调用方不得再降级重试
//   - 传输类失败（超时/解析失败/非2xx）→ 内部按策略链降级；若用户名形态可信，
//     最终返回全0统计兜底；否则返回 (nil, err)
//   - 成功 → 返回归一化统计，至少含username字段
type StatsAdapter interface {
	PlatformID() model.PlatformID                                                  // 平台标识（小写）
	FetchStats(ctx context.Context, identifier string) (model.PlatformStats, error) // 抓取并归一化统计
}

// Factory 平台适配器工厂函数签名
// 入参：平台配置、日志实例
// 出参：实现StatsAdapter接口的适配器实例
type Factory func(cfg *config.PlatformConfig, logger *logrus.Logger) StatsAdapter

// StatsGateway 持久化网关：连接映射与聚合统计的读写（由repository实现）
// 网关错误与抓取错误在同步结果中分开上报
type StatsGateway interface {
	GetConnections(ctx context.Context, userID uint64) (map[model.PlatformID]*model.PlatformConnection, error)
	AddConnection(ctx context.Context, userID uint64, conn *model.PlatformConnection) error
	RemoveConnection(ctx context.Context, userID uint64, platformID model.PlatformID) error
	// SetConnectionStats 统计与时间戳必须成对写入（保证cached_stats⇒last_synced_at不变式）
	SetConnectionStats(ctx context.Context, userID uint64, platformID model.PlatformID, stats model.PlatformStats, syncedAt time.Time) error
	SetAggregatedStats(ctx context.Context, userID uint64, stats *model.StudentStats) error
}
