package service

import (
	"context"
	"time"

	"PortfolioSync/internal/config"
	"PortfolioSync/internal/model"

	"github.com/sirupsen/logrus"
)

// PageViewSink 访问事件的批量落库端（repository.AnalyticsRepository实现）
type PageViewSink interface {
	InsertPageViews(ctx context.Context, views []*model.PageView) error
}

// AnalyticsTracker 页面访问采集器
// 显式构造、显式Start/Stop生命周期（不做包级单例），
// 事件先进内存缓冲，定时批量落库；缓冲满时丢弃新事件而不是阻塞请求
type AnalyticsTracker struct {
	repo          PageViewSink
	logger        *logrus.Logger
	events        chan *model.PageView
	stop          chan struct{}
	done          chan struct{}
	flushInterval time.Duration
}

func NewAnalyticsTracker(repo PageViewSink, cfg *config.AnalyticsConfig, logger *logrus.Logger) *AnalyticsTracker {
	return &AnalyticsTracker{
		repo:          repo,
		logger:        logger,
		events:        make(chan *model.PageView, cfg.BufferSize),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
		flushInterval: cfg.FlushInterval,
	}
}

// Start 启动后台flush循环（服务启动时调用一次）
func (t *AnalyticsTracker) Start() {
	go t.loop()
	t.logger.WithField("flush_interval", t.flushInterval).Info("页面访问采集器已启动")
}

// Stop 停止采集并把缓冲中剩余事件落库（服务退出时调用）
func (t *AnalyticsTracker) Stop() {
	close(t.stop)
	<-t.done
	t.logger.Info("页面访问采集器已停止")
}

// Track 非阻塞入队；缓冲满返回false（调用方无需处理，只是采样丢失）
func (t *AnalyticsTracker) Track(view *model.PageView) bool {
	if view.ViewedAt.IsZero() {
		view.ViewedAt = time.Now()
	}
	select {
	case t.events <- view:
		return true
	default:
		return false
	}
}

func (t *AnalyticsTracker) loop() {
	defer close(t.done)
	ticker := time.NewTicker(t.flushInterval)
	defer ticker.Stop()

	var pending []*model.PageView
	for {
		select {
		case ev := <-t.events:
			pending = append(pending, ev)
		case <-ticker.C:
			pending = t.flush(pending)
		case <-t.stop:
			// 退出前清空channel与缓冲
			for {
				select {
				case ev := <-t.events:
					pending = append(pending, ev)
				default:
					t.flush(pending)
					return
				}
			}
		}
	}
}

// flush 批量落库；失败保留缓冲下轮重试（缓冲封顶，防止DB长时间不可用时涨爆内存）
const maxPendingViews = 10000

func (t *AnalyticsTracker) flush(pending []*model.PageView) []*model.PageView {
	if len(pending) == 0 {
		return pending
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := t.repo.InsertPageViews(ctx, pending); err != nil {
		t.logger.WithError(err).WithField("pending", len(pending)).Warn("页面访问批量落库失败，下轮重试")
		if len(pending) > maxPendingViews {
			t.logger.WithField("dropped", len(pending)-maxPendingViews).Warn("访问缓冲超限，丢弃最旧记录")
			pending = pending[len(pending)-maxPendingViews:]
		}
		return pending
	}
	return pending[:0]
}
