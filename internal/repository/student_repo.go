package repository

import (
	"context"
	"fmt"
	"time"

	"PortfolioSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StudentRepository 学生档案与聚合统计仓储（dashboard查询入口）
type StudentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// GetUserByUUID 按业务UUID查用户
func (r *StudentRepository) GetUserByUUID(ctx context.Context, userUUID string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("user_uuid = ?", userUUID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

// UpsertStats 聚合快照按user_id唯一键整条覆盖
func (r *StudentRepository) UpsertStats(ctx context.Context, record *model.StudentStatsRecord) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_problems", "easy_problems", "medium_problems", "hard_problems",
			"github_contributions", "contests_participated", "rating",
			"computed_at", "updated_at",
		}),
	}).Create(record).Error; err != nil {
		return fmt.Errorf("写入聚合统计失败: %w", err)
	}
	return nil
}

// GetStats 读取某用户的聚合快照；无记录返回nil（尚未同步过）
func (r *StudentRepository) GetStats(ctx context.Context, userID uint64) (*model.StudentStatsRecord, error) {
	var record model.StudentStatsRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询聚合统计失败: %w", err)
	}
	return &record, nil
}

// LeaderboardEntry 排行榜单行（招聘方/院校dashboard用）
type LeaderboardEntry struct {
	UserUUID             string `json:"userUuid"`
	Name                 string `json:"name"`
	College              string `json:"college"`
	TotalProblems        int    `json:"totalProblems"`
	ContestsParticipated int    `json:"contestsParticipated"`
	Rating               int    `json:"rating"`
}

// ListLeaderboard 按总解题数降序的学生榜单；college非空时按院校过滤
func (r *StudentRepository) ListLeaderboard(ctx context.Context, college string, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	db := r.db.WithContext(ctx).
		Table("student_stats").
		Select("users.user_uuid, users.name, users.college, student_stats.total_problems, student_stats.contests_participated, student_stats.rating").
		Joins("JOIN users ON users.id = student_stats.user_id").
		Where("users.is_active = ? AND users.role = ?", true, model.RoleStudent)
	if college != "" {
		db = db.Where("users.college = ?", college)
	}
	var entries []*LeaderboardEntry
	if err := db.Order("student_stats.total_problems DESC, student_stats.rating DESC").
		Limit(limit).Scan(&entries).Error; err != nil {
		return nil, fmt.Errorf("查询榜单失败: %w", err)
	}
	return entries, nil
}

// CohortSummary 院校维度汇总（college dashboard用）
type CohortSummary struct {
	College       string    `json:"college"`
	StudentCount  int64     `json:"studentCount"`
	TotalProblems int64     `json:"totalProblems"`
	AvgProblems   float64   `json:"avgProblems"`
	ComputedAt    time.Time `json:"computedAt"`
}

// GetCohortSummary 统计某院校学生整体解题量
func (r *StudentRepository) GetCohortSummary(ctx context.Context, college string) (*CohortSummary, error) {
	summary := &CohortSummary{College: college, ComputedAt: time.Now()}
	row := r.db.WithContext(ctx).
		Table("student_stats").
		Select("COUNT(*) AS student_count, COALESCE(SUM(total_problems),0) AS total_problems").
		Joins("JOIN users ON users.id = student_stats.user_id").
		Where("users.college = ? AND users.role = ?", college, model.RoleStudent).
		Row()
	if err := row.Scan(&summary.StudentCount, &summary.TotalProblems); err != nil {
		return nil, fmt.Errorf("查询院校汇总失败: %w", err)
	}
	if summary.StudentCount > 0 {
		summary.AvgProblems = float64(summary.TotalProblems) / float64(summary.StudentCount)
	}
	return summary, nil
}
