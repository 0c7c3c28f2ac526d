package repository

import (
	"context"
	"fmt"
	"time"

	"PortfolioSync/internal/model"

	"gorm.io/gorm"
)

// AnalyticsRepository 页面访问记录仓储
type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// InsertPageViews 批量落库（tracker定时flush调用）
func (r *AnalyticsRepository) InsertPageViews(ctx context.Context, views []*model.PageView) error {
	if len(views) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(views, 200).Error; err != nil {
		return fmt.Errorf("写入页面访问记录失败: %w", err)
	}
	return nil
}

// DailyCount 单日访问量
type DailyCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// PageViewSummary 访问汇总（admin dashboard用）
type PageViewSummary struct {
	TotalViews     int64         `json:"totalViews"`
	UniqueVisitors int64         `json:"uniqueVisitors"`
	ByDay          []*DailyCount `json:"byDay"`
}

// Summarize 统计最近days天的访问量与独立访客
func (r *AnalyticsRepository) Summarize(ctx context.Context, days int) (*PageViewSummary, error) {
	if days <= 0 || days > 90 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)
	summary := &PageViewSummary{}

	base := r.db.WithContext(ctx).Model(&model.PageView{}).Where("viewed_at >= ?", since)
	if err := base.Count(&summary.TotalViews).Error; err != nil {
		return nil, fmt.Errorf("统计访问总量失败: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&model.PageView{}).
		Where("viewed_at >= ?", since).
		Distinct("visitor_id").Count(&summary.UniqueVisitors).Error; err != nil {
		return nil, fmt.Errorf("统计独立访客失败: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&model.PageView{}).
		Select("to_char(viewed_at, 'YYYY-MM-DD') AS day, COUNT(*) AS count").
		Where("viewed_at >= ?", since).
		Group("day").Order("day ASC").
		Scan(&summary.ByDay).Error; err != nil {
		return nil, fmt.Errorf("统计按日访问失败: %w", err)
	}
	return summary, nil
}
