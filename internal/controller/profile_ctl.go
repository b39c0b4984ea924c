package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sourcing_dev_v1_202608/internal/model"
	"sourcing_dev_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// ProfileController 渠道配置控制器
type ProfileController struct {
	profileService *service.ProfileService
}

func NewProfileController(profileService *service.ProfileService) *ProfileController {
	return &ProfileController{profileService: profileService}
}

// ==================== API 方法 ====================

// List 配置列表 + 当前活动配置 ID
func (ctrl *ProfileController) List(c *gin.Context) {
	ctx := c.Request.Context()

	profiles, err := ctrl.profileService.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "查询配置失败: " + err.Error(),
		})
		return
	}

	active, err := ctrl.profileService.GetActive(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "读取活动配置失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"profiles":  profiles,
			"active_id": active.ID,
		},
	})
}

// Create 新建配置
// @Summary 新建渠道配置（固定命名与默认端点）
// @Tags Profile
// @Router /api/profiles [post]
func (ctrl *ProfileController) Create(c *gin.Context) {
	profile, err := ctrl.profileService.Create(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    profile,
	})
}

// Update 保存配置
func (ctrl *ProfileController) Update(c *gin.Context) {
	var profile model.SyncProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}
	profile.ID = c.Param("id")

	if err := ctrl.profileService.Update(c.Request.Context(), &profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
	})
}

// Delete 删除配置
// 最后一条不可删；删除活动配置会自动切到剩余首条
func (ctrl *ProfileController) Delete(c *gin.Context) {
	err := ctrl.profileService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrLastProfile) {
			c.JSON(http.StatusConflict, gin.H{
				"code":    409,
				"message": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
	})
}

// Activate 切换活动配置
func (ctrl *ProfileController) Activate(c *gin.Context) {
	if err := ctrl.profileService.SetActive(c.Request.Context(), c.Param("id")); err != nil {
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
