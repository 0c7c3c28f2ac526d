package api

import (
	"net/http"
	"strconv"

	"PortfolioSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ProfileHandler 档案与dashboard查询接口
type ProfileHandler struct {
	profileService *service.ProfileService
	logger         *logrus.Logger
}

func NewProfileHandler(profileService *service.ProfileService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// GetProfile 学生档案（连接列表+聚合统计）
// GET /api/users/:user_id/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.GetProfile(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Leaderboard 学生榜单（招聘方视角；college参数可选过滤）
// GET /api/dashboard/leaderboard?college=X&limit=20
func (h *ProfileHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	entries, err := h.profileService.Leaderboard(c.Request.Context(), c.Query("college"), limit)
	if err != nil {
		h.logger.WithError(err).Error("查询榜单失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// CohortSummary 院校汇总（院校视角）
// GET /api/dashboard/college/:college
func (h *ProfileHandler) CohortSummary(c *gin.Context) {
	summary, err := h.profileService.CohortSummary(c.Request.Context(), c.Param("college"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
