package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sourcing_dev_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// ExportController 导出控制器
type ExportController struct {
	exportService *service.ExportService
	historySvc    *service.HistoryQuery
}

func NewExportController(exportService *service.ExportService, historySvc *service.HistoryQuery) *ExportController {
	return &ExportController{
		exportService: exportService,
		historySvc:    historySvc,
	}
}

// ==================== API 方法 ====================

// ExportSelected 导出全部选中候选
// @Summary 依次同步选中候选到目标市场（先图片后元数据）
// @Tags Export
// @Router /api/export [post]
func (ctrl *ExportController) ExportSelected(c *gin.Context) {
	summary, err := ctrl.exportService.ExportSelected(c.Request.Context())
	if err != nil {
		// 配置不完整：整批未发出任何请求，引导前端打开设置页
		if errors.Is(err, service.ErrProfileIncomplete) {
			c.JSON(http.StatusPreconditionFailed, gin.H{
				"code":          412,
				"message":       err.Error(),
				"open_settings": true,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "导出失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    summary,
	})
}

// History 导出历史（最新在前）
func (ctrl *ExportController) History(c *gin.Context) {
	records, err := ctrl.historySvc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "查询历史失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    records,
	})
}
