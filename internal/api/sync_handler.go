package api

import (
	"net/http"

	"PortfolioSync/internal/adapter"
	"PortfolioSync/internal/model"
	"PortfolioSync/internal/repository"
	"PortfolioSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SyncHandler 平台绑定/解绑/校验/同步接口
type SyncHandler struct {
	syncService *service.SyncService
	studentRepo *repository.StudentRepository
	registry    *adapter.Registry
	logger      *logrus.Logger
}

func NewSyncHandler(syncService *service.SyncService, studentRepo *repository.StudentRepository, registry *adapter.Registry, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		studentRepo: studentRepo,
		registry:    registry,
		logger:      logger,
	}
}

type linkRequest struct {
	Platform string `json:"platform" binding:"required"`
	Username string `json:"username" binding:"required"`
	URL      string `json:"url"`
}

// LinkPlatform 绑定平台
// @Summary 为用户绑定一个外部平台账号（不立刻抓取）
// @Param user_id path string true "用户UUID"
// @Router /api/users/{user_id}/platforms [post]
func (h *SyncHandler) LinkPlatform(c *gin.Context) {
	user, ok := h.resolveUser(c)
	if !ok {
		return
	}
	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "platform与username不能为空"})
		return
	}

	conn, err := h.syncService.LinkPlatform(c.Request.Context(), user.ID, req.Platform, req.Username, req.URL)
	if err != nil {
		h.logger.WithError(err).Warnf("用户%s绑定%s失败", user.UserUUID, req.Platform)
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"platform": conn.PlatformID,
		"username": conn.Username,
		"linkedAt": conn.LinkedAt,
	})
}

// UnlinkPlatform 解绑平台
// @Router /api/users/{user_id}/platforms/{platform} [delete]
func (h *SyncHandler) UnlinkPlatform(c *gin.Context) {
	user, ok := h.resolveUser(c)
	if !ok {
		return
	}
	if err := h.syncService.UnlinkPlatform(c.Request.Context(), user.ID, c.Param("platform")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "解绑成功"})
}

type verifyRequest struct {
	Platform string `json:"platform" binding:"required"`
	Username string `json:"username" binding:"required"`
}

// VerifyHandle 绑定前校验用户名（干跑，无持久化副作用）
// @Router /api/platforms/verify [post]
func (h *SyncHandler) VerifyHandle(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "platform与username不能为空"})
		return
	}

	verified, err := h.syncService.VerifyHandle(c.Request.Context(), req.Platform, req.Username)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"verified": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": verified})
}

// SyncAll 同步用户全部活跃平台，返回逐平台结构化结果（绝不整体黑盒失败）
// @Router /api/users/{user_id}/sync [post]
func (h *SyncHandler) SyncAll(c *gin.Context) {
	user, ok := h.resolveUser(c)
	if !ok {
		return
	}

	outcomes, aggregate, err := h.syncService.SyncAll(c.Request.Context(), user.ID)
	if err != nil && outcomes == nil {
		// 系统性失败（连连接表都读不出）才整体5xx
		h.logger.WithError(err).Errorf("用户%s同步失败", user.UserUUID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"outcomes": outcomes, "aggregated": aggregate}
	if err != nil {
		resp["warning"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// ListPlatforms 受支持平台列表
// @Router /api/platforms [get]
func (h *SyncHandler) ListPlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"platforms": h.registry.ListPlatforms()})
}

// resolveUser 路径中的user_id（UUID）→ 用户；失败直接写响应
func (h *SyncHandler) resolveUser(c *gin.Context) (*model.User, bool) {
	userUUID := c.Param("user_id")
	if userUUID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id不能为空"})
		return nil, false
	}
	user, err := h.studentRepo.GetUserByUUID(c.Request.Context(), userUUID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "用户不存在"})
		return nil, false
	}
	return user, true
}
