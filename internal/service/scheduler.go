package service

import (
	"context"
	"fmt"
	"time"

	"PortfolioSync/internal/config"
	"PortfolioSync/internal/repository"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// SchedulerService 定时刷新：周期性找出统计过期的连接，按用户批量重新同步
// 保证长期不登录的学生档案也不会无限陈旧
type SchedulerService struct {
	scheduler   gocron.Scheduler
	syncService *SyncService
	connRepo    *repository.ConnectionRepository
	cfg         *config.Config
	logger      *logrus.Logger
}

func NewSchedulerService(syncService *SyncService, connRepo *repository.ConnectionRepository, cfg *config.Config, logger *logrus.Logger) (*SchedulerService, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("创建调度器失败: %w", err)
	}
	return &SchedulerService{
		scheduler:   sched,
		syncService: syncService,
		connRepo:    connRepo,
		cfg:         cfg,
		logger:      logger,
	}, nil
}

// Start 注册定时任务并启动；cron表达式缺省时退化为每6小时一轮
func (s *SchedulerService) Start() error {
	var definition gocron.JobDefinition
	if s.cfg.Sync.Cron != "" {
		definition = gocron.CronJob(s.cfg.Sync.Cron, false)
	} else {
		definition = gocron.DurationJob(6 * time.Hour)
	}

	_, err := s.scheduler.NewJob(definition, gocron.NewTask(s.runOnce))
	if err != nil {
		return fmt.Errorf("注册定时同步任务失败: %w", err)
	}
	s.scheduler.Start()
	s.logger.WithField("cron", s.cfg.Sync.Cron).Info("定时同步任务已启动")
	return nil
}

// Stop 停止调度器（等待在跑任务结束）
func (s *SchedulerService) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		s.logger.WithError(err).Warn("调度器关闭异常")
	}
}

// runOnce 单轮刷新：过期连接按用户去重后逐用户SyncAll
// 单用户失败只记日志，不中断本轮其余用户
func (s *SchedulerService) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	olderThan := time.Now().Add(-s.cfg.Sync.StaleAfter)
	stale, err := s.connRepo.ListStaleConnections(ctx, olderThan, s.cfg.Sync.BatchLimit)
	if err != nil {
		s.logger.WithError(err).Error("定时任务查询过期连接失败")
		return
	}
	if len(stale) == 0 {
		s.logger.Debug("定时任务：无过期连接")
		return
	}

	userIDs := make(map[uint64]struct{})
	for _, conn := range stale {
		userIDs[conn.UserID] = struct{}{}
	}
	s.logger.WithFields(logrus.Fields{
		"stale_connections": len(stale),
		"users":             len(userIDs),
	}).Info("定时任务开始刷新过期统计")

	for userID := range userIDs {
		if ctx.Err() != nil {
			s.logger.Warn("定时任务超时，剩余用户留待下轮")
			return
		}
		outcomes, _, err := s.syncService.SyncAll(ctx, userID)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("定时刷新用户失败")
			continue
		}
		failed := 0
		for _, o := range outcomes {
			if !o.Success {
				failed++
			}
		}
		s.logger.WithFields(logrus.Fields{
			"user_id":   userID,
			"platforms": len(outcomes),
			"failed":    failed,
		}).Info("定时刷新用户完成")
	}
}
