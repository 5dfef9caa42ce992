package handlers

import (
	"net/http"

	"ghibli-generator/internal/application/dto"
	"ghibli-generator/internal/application/services"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	generationService services.GenerationService
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(generationService services.GenerationService) *HealthHandler {
	return &HealthHandler{generationService: generationService}
}

// Health 健康检查
// @Summary 健康检查
// @Description 返回服务状态以及是否配置了上游凭证（不返回凭证本身）
// @Tags 监控
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:             "ok",
		UpstreamConfigured: h.generationService.IsConfigured(),
	})
}
