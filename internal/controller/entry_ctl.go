package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sourcing_dev_v1_202608/internal/repository"
	"sourcing_dev_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// EntryController 提取条目控制器
type EntryController struct {
	extractService *service.ExtractService
}

func NewEntryController(extractService *service.ExtractService) *EntryController {
	return &EntryController{extractService: extractService}
}

// ==================== 请求结构 ====================

// SubmitImageRequest 上传图片请求
type SubmitImageRequest struct {
	FileName  string `json:"file_name" binding:"required"`
	ImageData string `json:"image_data" binding:"required"` // base64 data-URI
}

// SubmitKeywordRequest 关键词请求
type SubmitKeywordRequest struct {
	Keywords string `json:"keywords" binding:"required"` // 逗号分隔，可批量
}

// ==================== API 方法 ====================

// SubmitImage 上传图片创建条目
// @Summary 上传商品图片创建提取条目
// @Tags Entry
// @Accept json
// @Produce json
// @Router /api/entries/image [post]
func (ctrl *EntryController) SubmitImage(c *gin.Context) {
	var req SubmitImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	id := ctrl.extractService.SubmitImage(req.FileName, req.ImageData)
	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    gin.H{"id": id},
	})
}

// SubmitKeywords 批量关键词创建条目
// @Summary 批量关键词创建提取条目（逗号分隔）
// @Tags Entry
// @Router /api/entries/keyword [post]
func (ctrl *EntryController) SubmitKeywords(c *gin.Context) {
	var req SubmitKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	ids := ctrl.extractService.SubmitKeywords(req.Keywords)
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "未解析出有效关键词",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    gin.H{"ids": ids},
	})
}

// List 条目列表（最新在前）
func (ctrl *EntryController) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.extractService.ListEntries(),
	})
}

// Detail 条目详情
func (ctrl *EntryController) Detail(c *gin.Context) {
	entry, err := ctrl.extractService.GetEntry(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    entry,
	})
}

// Extract 触发或重试提取
// @Summary 触发 idle 条目提取 / 重试 error 或 completed 条目
// @Tags Entry
// @Router /api/entries/{id}/extract [post]
func (ctrl *EntryController) Extract(c *gin.Context) {
	if err := ctrl.extractService.Trigger(c.Param("id")); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, repository.ErrEntryNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"code":    status,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"code":    0,
		"message": "已开始提取",
	})
}

// ToggleSelection 翻转候选选中状态
func (ctrl *EntryController) ToggleSelection(c *gin.Context) {
	err := ctrl.extractService.ToggleSelection(c.Param("id"), c.Param("result_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
	})
}

// Selection 当前选中集合
func (ctrl *EntryController) Selection(c *gin.Context) {
	pairs := ctrl.extractService.SelectedPairs()

	type selectedItem struct {
		EntryID  string      `json:"entryId"`
		FileName string      `json:"fileName"`
		Match    interface{} `json:"match"`
	}
	items := make([]selectedItem, 0, len(pairs))
	for _, p := range pairs {
		items = append(items, selectedItem{
			EntryID:  p.Entry.ID,
			FileName: p.Entry.FileName,
			Match:    p.Match,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    items,
	})
}
