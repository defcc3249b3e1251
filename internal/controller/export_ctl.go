package controller

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"alsaji_export_v1_202608/internal/api/dto"
	"alsaji_export_v1_202608/internal/service"
	"alsaji_export_v1_202608/pkg/utils"
)

// ExportController 导出管理接口
type ExportController struct {
	exportService *service.ExportService
}

// NewExportController 创建导出控制器
func NewExportController(exportService *service.ExportService) *ExportController {
	return &ExportController{exportService: exportService}
}

// TriggerExport 手动触发一轮导出
// @Summary 触发导出
// @Description 异步执行，已有导出在跑时返回 409
// @Tags Export
// @Accept json
// @Produce json
// @Router /api/export/run [post]
func (h *ExportController) TriggerExport(c *gin.Context) {
	var req dto.TriggerExportReq
	// body 可省略，默认非强制
	_ = c.ShouldBindJSON(&req)

	if h.exportService.Running() {
		c.JSON(http.StatusConflict, gin.H{"error": service.ErrExportBusy.Error()})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := h.exportService.Run(ctx, req.Force); err != nil &&
			!errors.Is(err, service.ErrExportBusy) {
			log.Printf("[Export] 手动触发的导出失败: %v", err)
		}
		// 导出成功后镜像已更新，快照缓存作废
		utils.DeleteCache("catalog:snapshot")
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "export started", "forced": req.Force})
}

// GetStatus 导出状态
// @Summary 导出状态
// @Description 是否在执行中 + 最近一轮记录
// @Tags Export
// @Produce json
// @Router /api/export/status [get]
func (h *ExportController) GetStatus(c *gin.Context) {
	resp := dto.ExportStatusResp{Running: h.exportService.Running()}

	run, err := h.exportService.LatestRun(c.Request.Context())
	switch {
	case err == nil:
		resp.LatestRun = run
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 还没跑过任何轮次
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
