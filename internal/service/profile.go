package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"PortfolioSync/internal/model"
	"PortfolioSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// ProfileService 面向dashboard的档案查询（学生/院校/招聘方视角）
type ProfileService struct {
	studentRepo *repository.StudentRepository
	connRepo    *repository.ConnectionRepository
	logger      *logrus.Logger
}

func NewProfileService(studentRepo *repository.StudentRepository, connRepo *repository.ConnectionRepository, logger *logrus.Logger) *ProfileService {
	return &ProfileService{
		studentRepo: studentRepo,
		connRepo:    connRepo,
		logger:      logger,
	}
}

// ConnectionView 档案页单个平台连接
type ConnectionView struct {
	Platform     string              `json:"platform"`
	Username     string              `json:"username"`
	ProfileURL   string              `json:"profileUrl,omitempty"`
	LinkedAt     time.Time           `json:"linkedAt"`
	LastSyncedAt *time.Time          `json:"lastSyncedAt,omitempty"`
	IsActive     bool                `json:"isActive"`
	Stats        model.PlatformStats `json:"stats,omitempty"`
}

// StudentProfile 学生档案聚合视图
type StudentProfile struct {
	UserUUID    string              `json:"userUuid"`
	Name        string              `json:"name"`
	College     string              `json:"college"`
	Connections []*ConnectionView   `json:"connections"`
	Aggregated  *model.StudentStats `json:"aggregated,omitempty"`
	ComputedAt  *time.Time          `json:"computedAt,omitempty"`
}

// GetProfile 组装档案：用户信息+连接列表+聚合快照
func (s *ProfileService) GetProfile(ctx context.Context, userUUID string) (*StudentProfile, error) {
	user, err := s.studentRepo.GetUserByUUID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("用户不存在: %w", err)
	}

	conns, err := s.connRepo.GetConnections(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	profile := &StudentProfile{
		UserUUID:    user.UserUUID,
		Name:        user.Name,
		College:     user.College,
		Connections: make([]*ConnectionView, 0, len(conns)),
	}
	for _, c := range conns {
		view := &ConnectionView{
			Platform:     c.PlatformID,
			Username:     c.Username,
			ProfileURL:   c.ProfileURL,
			LinkedAt:     c.LinkedAt,
			LastSyncedAt: c.LastSyncedAt,
			IsActive:     c.IsActive,
		}
		if len(c.CachedStats) > 0 {
			var stats model.PlatformStats
			if err := json.Unmarshal(c.CachedStats, &stats); err == nil {
				view.Stats = stats
			}
		}
		profile.Connections = append(profile.Connections, view)
	}

	record, err := s.studentRepo.GetStats(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		profile.Aggregated = &model.StudentStats{
			TotalProblems:        record.TotalProblems,
			EasyProblems:         record.EasyProblems,
			MediumProblems:       record.MediumProblems,
			HardProblems:         record.HardProblems,
			GithubContributions:  record.GithubContributions,
			ContestsParticipated: record.ContestsParticipated,
			Rating:               record.Rating,
		}
		profile.ComputedAt = &record.ComputedAt
	}
	return profile, nil
}

// Leaderboard 招聘方榜单
func (s *ProfileService) Leaderboard(ctx context.Context, college string, limit int) ([]*repository.LeaderboardEntry, error) {
	return s.studentRepo.ListLeaderboard(ctx, college, limit)
}

// CohortSummary 院校汇总
func (s *ProfileService) CohortSummary(ctx context.Context, college string) (*repository.CohortSummary, error) {
	if college == "" {
		return nil, fmt.Errorf("college不能为空")
	}
	return s.studentRepo.GetCohortSummary(ctx, college)
}
