package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"PortfolioSync/internal/interfaces"
	"PortfolioSync/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConnectionRepository 平台连接仓储：实现StatsGateway
type ConnectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// 编译期校验：ConnectionRepository必须满足持久化网关接口
var _ interfaces.StatsGateway = (*ConnectionRepository)(nil)

// GetConnections 读取某用户全部连接，按平台标识建映射
func (r *ConnectionRepository) GetConnections(ctx context.Context, userID uint64) (map[model.PlatformID]*model.PlatformConnection, error) {
	var rows []*model.PlatformConnection
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询平台连接失败: %w", err)
	}
	conns := make(map[model.PlatformID]*model.PlatformConnection, len(rows))
	for _, c := range rows {
		conns[model.PlatformID(c.PlatformID)] = c
	}
	return conns, nil
}

// AddConnection 新增连接；同一（用户，平台）已存在时返回错误
func (r *ConnectionRepository) AddConnection(ctx context.Context, userID uint64, conn *model.PlatformConnection) error {
	conn.UserID = userID
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.PlatformConnection{}).
		Where("user_id = ? AND platform_id = ?", userID, conn.PlatformID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("检查连接是否存在失败: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("平台%s已绑定", conn.PlatformID)
	}
	if err := r.db.WithContext(ctx).Create(conn).Error; err != nil {
		return fmt.Errorf("写入平台连接失败: %w", err)
	}
	return nil
}

// RemoveConnection 解绑：整条删除
func (r *ConnectionRepository) RemoveConnection(ctx context.Context, userID uint64, platformID model.PlatformID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND platform_id = ?", userID, string(platformID)).
		Delete(&model.PlatformConnection{})
	if res.Error != nil {
		return fmt.Errorf("删除平台连接失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("平台%s未绑定", platformID)
	}
	return nil
}

// SetConnectionStats 写入同步结果：统计与时间戳同一条UPDATE落库，
// 从写入路径上保证cached_stats⇒last_synced_at不变式
func (r *ConnectionRepository) SetConnectionStats(ctx context.Context, userID uint64, platformID model.PlatformID, stats model.PlatformStats, syncedAt time.Time) error {
	if stats == nil {
		return errors.New("拒绝写入空统计")
	}
	if syncedAt.IsZero() {
		return errors.New("拒绝写入无时间戳的统计")
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("统计序列化失败: %w", err)
	}

	res := r.db.WithContext(ctx).Model(&model.PlatformConnection{}).
		Where("user_id = ? AND platform_id = ?", userID, string(platformID)).
		Updates(map[string]interface{}{
			"cached_stats":   datatypes.JSON(raw),
			"last_synced_at": syncedAt,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("写入同步统计失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("平台%s未绑定，统计未写入", platformID)
	}
	return nil
}

// SetAggregatedStats 聚合快照整条覆盖写（upsert，每用户至多一条）
func (r *ConnectionRepository) SetAggregatedStats(ctx context.Context, userID uint64, stats *model.StudentStats) error {
	if stats == nil {
		return errors.New("拒绝写入空聚合统计")
	}
	record := &model.StudentStatsRecord{
		UserID:               userID,
		TotalProblems:        stats.TotalProblems,
		EasyProblems:         stats.EasyProblems,
		MediumProblems:       stats.MediumProblems,
		HardProblems:         stats.HardProblems,
		GithubContributions:  stats.GithubContributions,
		ContestsParticipated: stats.ContestsParticipated,
		Rating:               stats.Rating,
		ComputedAt:           time.Now(),
	}
	return NewStudentRepository(r.db).UpsertStats(ctx, record)
}

// RepairConnections 修复历史坏数据：有cached_stats却无last_synced_at的行，
// 清掉统计让下次同步重新抓取
func (r *ConnectionRepository) RepairConnections(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.PlatformConnection{}).
		Where("cached_stats IS NOT NULL AND last_synced_at IS NULL").
		Updates(map[string]interface{}{
			"cached_stats": nil,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("修复连接数据失败: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ListStaleConnections 查找统计过期（或从未同步）的活跃连接（定时刷新任务用）
func (r *ConnectionRepository) ListStaleConnections(ctx context.Context, olderThan time.Time, limit int) ([]*model.PlatformConnection, error) {
	if limit <= 0 {
		limit = 200
	}
	var rows []*model.PlatformConnection
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("last_synced_at IS NULL OR last_synced_at < ?", olderThan).
		Order("last_synced_at ASC NULLS FIRST").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询过期连接失败: %w", err)
	}
	return rows, nil
}
