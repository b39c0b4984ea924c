package router

import (
	"github.com/gin-gonic/gin"

	"sourcing_dev_v1_202608/internal/controller"
	"sourcing_dev_v1_202608/internal/middleware"
)

// Controllers 控制器集合
type Controllers struct {
	Auth    *controller.AuthController
	Entry   *controller.EntryController
	Export  *controller.ExportController
	Profile *controller.ProfileController
}

// SetupRouter 注册所有路由
func SetupRouter(ctls *Controllers) *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		// auth 鉴权组（免登录）
		auth := api.Group("/auth")
		{
			// POST /api/auth/login
			auth.POST("/login", ctls.Auth.Login)
		}

		// 其余接口统一走 JWT
		authed := api.Group("")
		authed.Use(middleware.JWTAuth())
		{
			// entries 提取条目
			entries := authed.Group("/entries")
			{
				entries.POST("/image", ctls.Entry.SubmitImage)
				entries.POST("/keyword", ctls.Entry.SubmitKeywords)
				entries.GET("", ctls.Entry.List)
				entries.GET("/:id", ctls.Entry.Detail)
				// 触发 idle 条目，或重试 error/completed 条目
				entries.POST("/:id/extract", ctls.Entry.Extract)
				entries.POST("/:id/results/:result_id/toggle", ctls.Entry.ToggleSelection)
			}

			// selection 选中集合（派生视图）
			authed.GET("/selection", ctls.Entry.Selection)

			// export 导出
			authed.POST("/export", ctls.Export.ExportSelected)
			authed.GET("/history", ctls.Export.History)

			// profiles 渠道配置
			profiles := authed.Group("/profiles")
			{
				profiles.GET("", ctls.Profile.List)
				profiles.POST("", ctls.Profile.Create)
				profiles.PUT("/:id", ctls.Profile.Update)
				profiles.DELETE("/:id", ctls.Profile.Delete)
				profiles.POST("/:id/activate", ctls.Profile.Activate)
			}
		}
	}

	return r
}
