package api

import (
	"net/http"
	"strconv"
	"time"

	"PortfolioSync/internal/model"
	"PortfolioSync/internal/repository"
	"PortfolioSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AnalyticsHandler 用量分析接口：前端埋点上报 + admin汇总查询
type AnalyticsHandler struct {
	tracker *service.AnalyticsTracker
	repo    *repository.AnalyticsRepository
	logger  *logrus.Logger
}

func NewAnalyticsHandler(tracker *service.AnalyticsTracker, repo *repository.AnalyticsRepository, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		tracker: tracker,
		repo:    repo,
		logger:  logger,
	}
}

type pageViewRequest struct {
	Path      string `json:"path" binding:"required"`
	VisitorID string `json:"visitorId"`
	Referrer  string `json:"referrer"`
}

// TrackPageView 埋点上报（非阻塞；缓冲满时静默丢弃，不影响前端）
// POST /api/analytics/pageviews
func (h *AnalyticsHandler) TrackPageView(c *gin.Context) {
	var req pageViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path不能为空"})
		return
	}
	// 客户端没带访客标识时服务端补发一个，返回给前端落localStorage复用
	if req.VisitorID == "" {
		req.VisitorID = uuid.NewString()
	}
	accepted := h.tracker.Track(&model.PageView{
		Path:      req.Path,
		VisitorID: req.VisitorID,
		Referrer:  req.Referrer,
		UserAgent: c.Request.UserAgent(),
		ViewedAt:  time.Now(),
	})
	if !accepted {
		h.logger.Debug("访问缓冲已满，事件被丢弃")
	}
	c.JSON(http.StatusAccepted, gin.H{"accepted": accepted, "visitorId": req.VisitorID})
}

// Summary 访问汇总（admin dashboard）
// GET /api/analytics/summary?days=7
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	summary, err := h.repo.Summarize(c.Request.Context(), days)
	if err != nil {
		h.logger.WithError(err).Error("访问汇总查询失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
