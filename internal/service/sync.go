package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"PortfolioSync/internal/config"
	"PortfolioSync/internal/interfaces"
	"PortfolioSync/internal/model"

	"github.com/sirupsen/logrus"
)

// 单个适配器整条降级链的时间上限（镜像8s+主页15s+余量），
// 防止某个平台挂死拖住整批同步
const adapterCallBudget = 45 * time.Second

// AdapterResolver 同步服务依赖的注册表能力（adapter.Registry实现）
type AdapterResolver interface {
	Resolve(platform model.PlatformID, baseURL string) interfaces.StatsAdapter
	IsKnown(platform model.PlatformID) bool
	// IsDisabled 配置禁用的平台：同步侧必须先查，禁用≠未知，不得落generic兜底
	IsDisabled(platform model.PlatformID) bool
}

// SyncService 同步编排：绑定/解绑/校验/批量同步
type SyncService struct {
	registry   AdapterResolver
	gateway    interfaces.StatsGateway
	aggregator *AggregationService
	cfg        *config.Config
	logger     *logrus.Logger
}

func NewSyncService(registry AdapterResolver, gateway interfaces.StatsGateway, cfg *config.Config, logger *logrus.Logger) *SyncService {
	return &SyncService{
		registry:   registry,
		gateway:    gateway,
		aggregator: NewAggregationService(logger),
		cfg:        cfg,
		logger:     logger,
	}
}

// LinkPlatform 绑定平台：只登记连接，不立刻抓取
// （"登记意向"与"立刻同步"解耦，平台临时不可达也不影响绑定）
func (s *SyncService) LinkPlatform(ctx context.Context, userID uint64, platformRaw, username, profileURL string) (*model.PlatformConnection, error) {
	platform := model.NormalizePlatformID(platformRaw)
	username = strings.TrimSpace(username)
	if platform == "" || username == "" {
		return nil, fmt.Errorf("platform与username不能为空")
	}

	conn := &model.PlatformConnection{
		UserID:     userID,
		PlatformID: string(platform),
		Username:   username,
		ProfileURL: strings.TrimSpace(profileURL),
		LinkedAt:   time.Now(),
		IsActive:   true,
		// 不写CachedStats/LastSyncedAt：统计只能来自一次真实同步
	}
	if err := s.gateway.AddConnection(ctx, userID, conn); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"platform": platform,
		"username": username,
	}).Info("平台绑定成功")
	return conn, nil
}

// UnlinkPlatform 解绑：整条连接删除
func (s *SyncService) UnlinkPlatform(ctx context.Context, userID uint64, platformRaw string) error {
	platform := model.NormalizePlatformID(platformRaw)
	if platform == "" {
		return fmt.Errorf("platform不能为空")
	}
	if err := s.gateway.RemoveConnection(ctx, userID, platform); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID, "platform": platform}).Info("平台解绑成功")
	return nil
}

// VerifyHandle 绑定前的干跑校验：单适配器抓一次，不落任何数据
// 仅支持已注册平台（自定义平台无从校验，属于输入校验错误）
func (s *SyncService) VerifyHandle(ctx context.Context, platformRaw, username string) (bool, error) {
	platform := model.NormalizePlatformID(platformRaw)
	username = strings.TrimSpace(username)
	if platform == "" || username == "" {
		return false, fmt.Errorf("platform与username不能为空")
	}
	if s.registry.IsDisabled(platform) {
		return false, fmt.Errorf("平台%s已在配置中禁用", platform)
	}
	if !s.registry.IsKnown(platform) {
		return false, fmt.Errorf("不支持的平台: %s", platform)
	}

	callCtx, cancel := context.WithTimeout(ctx, adapterCallBudget)
	defer cancel()
	stats, err := s.registry.Resolve(platform, "").FetchStats(callCtx, username)
	if err != nil {
		return false, fmt.Errorf("%s校验请求失败: %w", platform, err)
	}
	return stats != nil, nil
}

// SyncAll 同步某用户全部活跃连接
// 关键契约：单平台失败绝不影响其他平台（抓取与落库均按平台隔离），
// 每个请求的平台都有一条结果，不静默丢弃
func (s *SyncService) SyncAll(ctx context.Context, userID uint64) ([]*model.SyncOutcome, *model.StudentStats, error) {
	conns, err := s.gateway.GetConnections(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("读取平台连接失败: %w", err)
	}

	active := make([]*model.PlatformConnection, 0, len(conns))
	for _, c := range conns {
		if c.IsActive {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return []*model.SyncOutcome{}, s.aggregator.Aggregate(nil), nil
	}

	// 并发上限：防止某个慢平台吃光连接池
	maxConcurrent := s.cfg.Sync.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	sem := make(chan struct{}, maxConcurrent)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes = make([]*model.SyncOutcome, 0, len(active))
	)
	for _, conn := range active {
		wg.Add(1)
		go func(conn *model.PlatformConnection) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				// 请求被取消（如客户端断开）：仍然上报结果，不静默丢弃
				mu.Lock()
				outcomes = append(outcomes, &model.SyncOutcome{
					PlatformID: model.PlatformID(conn.PlatformID),
					Success:    false,
					Error:      "同步被取消: " + ctx.Err().Error(),
					FetchedAt:  time.Now(),
				})
				mu.Unlock()
				return
			}

			outcome := s.syncOne(ctx, userID, conn)
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
		}(conn)
	}
	wg.Wait()

	// 聚合全量重算：本轮成功的用新数据，失败但有历史缓存的用缓存，
	// 其余平台贡献为0（避免单平台抖动把整份档案清零）
	aggregate := s.aggregator.Aggregate(s.buildAggregateInputs(active, outcomes))
	if err := s.gateway.SetAggregatedStats(ctx, userID, aggregate); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("聚合统计落库失败")
		return outcomes, aggregate, fmt.Errorf("聚合统计落库失败: %w", err)
	}
	return outcomes, aggregate, nil
}

// syncOne 单平台同步：抓取→成功则写通连接缓存
// panic也收敛为失败结果，保证批次其余平台不受影响
func (s *SyncService) syncOne(ctx context.Context, userID uint64, conn *model.PlatformConnection) (outcome *model.SyncOutcome) {
	platform := model.PlatformID(conn.PlatformID)
	outcome = &model.SyncOutcome{PlatformID: platform}
	defer func() {
		if p := recover(); p != nil {
			outcome.Success = false
			outcome.Error = fmt.Sprintf("适配器panic: %v", p)
			outcome.FetchedAt = time.Now()
			s.logger.WithFields(logrus.Fields{
				"user_id":  userID,
				"platform": platform,
				"panic":    p,
			}).Error("适配器panic已收敛为失败结果")
		}
	}()

	// 禁用平台直接出失败结果：既不抓取也不落库，
	// 历史缓存统计原样保留（聚合时照常回落到缓存）
	if s.registry.IsDisabled(platform) {
		outcome.Success = false
		outcome.Error = fmt.Sprintf("平台%s已在配置中禁用", platform)
		outcome.FetchedAt = time.Now()
		return outcome
	}

	callCtx, cancel := context.WithTimeout(ctx, adapterCallBudget)
	defer cancel()

	ins := s.registry.Resolve(platform, conn.ProfileURL)
	stats, err := ins.FetchStats(callCtx, conn.Username)
	outcome.FetchedAt = time.Now()

	switch {
	case err != nil:
		outcome.Success = false
		outcome.Error = err.Error()
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":  userID,
			"platform": platform,
		}).Warn("平台同步失败")
		return outcome
	case stats == nil:
		// 确定性不存在：不是传输失败，也绝不能被兜底掩盖
		outcome.Success = false
		outcome.Error = fmt.Sprintf("%s上不存在用户%s", platform, conn.Username)
		return outcome
	}

	outcome.Success = true
	outcome.Stats = stats

	// 写通：按平台独立落库，单平台写失败不阻塞兄弟平台
	if err := s.gateway.SetConnectionStats(ctx, userID, platform, stats, outcome.FetchedAt); err != nil {
		outcome.Persisted = false
		outcome.Error = "统计落库失败: " + err.Error()
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":  userID,
			"platform": platform,
		}).Error("同步统计落库失败")
		return outcome
	}
	outcome.Persisted = true
	return outcome
}

// buildAggregateInputs 组装聚合输入：新结果优先，失败平台回落到历史缓存
func (s *SyncService) buildAggregateInputs(active []*model.PlatformConnection, outcomes []*model.SyncOutcome) map[model.PlatformID]model.PlatformStats {
	inputs := make(map[model.PlatformID]model.PlatformStats, len(active))
	for _, conn := range active {
		// 缓存统计必然带last_synced_at（写入路径保证），可直接信任
		if len(conn.CachedStats) > 0 {
			var cached model.PlatformStats
			if err := json.Unmarshal(conn.CachedStats, &cached); err == nil {
				inputs[model.PlatformID(conn.PlatformID)] = cached
			}
		}
	}
	for _, o := range outcomes {
		if o.Success && o.Stats != nil {
			inputs[o.PlatformID] = o.Stats
		}
	}
	return inputs
}
