package router

import (
	"fmt"
	"strings"

	"github.com/keyan-next/internal/cache"
	"github.com/keyan-next/internal/config"
	"github.com/keyan-next/internal/http/handlers"
	"github.com/keyan-next/internal/http/response"
	"github.com/keyan-next/internal/logger"
	"github.com/keyan-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := handlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "ky"
	}
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "登录尝试过于频繁，请稍后再试",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(ctx *gin.Context) {
		response.Success(ctx, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		// 认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", RateLimitMiddleware(cache.Client(), loginRule, KeyByIPAndJSONField("email")), handler.Login)
		}

		// 已登录接口
		authed := apiV1.Group("")
		authed.Use(JWTAuthMiddleware(cfg.JWT.SecretKey))
		{
			authed.GET("/me", handler.Me)
			authed.PUT("/me/profile", handler.UpdateMyProfile)
			authed.PUT("/me/password", handler.ChangePassword)

			authed.GET("/research/types", handler.ListResearchTypes)
			authed.GET("/research/subtypes", handler.ListResearchSubtypes)
			authed.POST("/research/items", handler.CreateResearchItem)
			authed.GET("/research/items/mine", handler.ListMyResearchItems)
			authed.GET("/research/items/:id", handler.GetResearchItem)
			authed.PUT("/research/items/:id", handler.UpdateResearchItem)
			authed.DELETE("/research/items/:id", handler.DeleteResearchItem)

			authed.GET("/notices/mine", handler.ListMyNotices)
			authed.GET("/notices/unread-count", handler.CountUnreadNotices)
			authed.POST("/notices/:id/read", handler.MarkNoticeRead)

			authed.GET("/departments", handler.ListDepartments)
			authed.GET("/departments/resolve", handler.ResolveDepartment)

			// 审核接口：声明快路径或用户表回退判定
			review := authed.Group("")
			review.Use(RequireReviewer(c.AuthService))
			{
				review.GET("/research/items", handler.ListResearchItems)
				review.GET("/research/items/pending", handler.ListPendingResearchItems)
				review.PUT("/research/items/:id/status", handler.ReviewResearchItem)
				review.POST("/research/items/batch-status", handler.BatchReviewResearchItems)
				review.GET("/research/stats", handler.GetResearchStats)
			}

			// 按权限编码判定的接口
			authed.POST("/notices",
				RequirePermission(c.AuthzService, "notice.publish"), handler.CreateNotice)
			authed.GET("/notices",
				RequirePermission(c.AuthzService, "notice.publish"), handler.ListNotices)
			authed.GET("/audit-logs",
				RequirePermission(c.AuthzService, "logs.view"), handler.ListAuditLogs)

			users := authed.Group("/users")
			users.Use(RequirePermission(c.AuthzService, "system.users.manage"))
			{
				users.GET("", handler.ListUsers)
				users.POST("", handler.CreateUser)
				users.GET("/:id", handler.GetUser)
				users.PUT("/:id", handler.UpdateUser)
				users.DELETE("/:id", handler.DeleteUser)
			}

			departments := authed.Group("/departments")
			departments.Use(RequirePermission(c.AuthzService, "system.departments.manage"))
			{
				departments.POST("", handler.CreateDepartment)
				departments.PUT("/:code", handler.UpdateDepartment)
				departments.DELETE("/:code", handler.DeleteDepartment)
				departments.GET("/aliases", handler.ListDepartmentAliases)
				departments.POST("/aliases", handler.CreateDepartmentAlias)
				departments.DELETE("/aliases/:id", handler.DeleteDepartmentAlias)
			}

			// 角色与权限目录：仅超管
			admin := authed.Group("")
			admin.Use(RequireSuperuser(c.AuthService))
			{
				admin.GET("/roles", handler.ListRoles)
				admin.POST("/roles", handler.CreateRole)
				admin.GET("/roles/:id", handler.GetRole)
				admin.PUT("/roles/:id", handler.UpdateRole)
				admin.DELETE("/roles/:id", handler.DeleteRole)
				admin.PUT("/roles/:id/permissions", handler.ReplaceRolePermissions)

				admin.GET("/permissions", handler.ListPermissionCatalog)
				admin.POST("/permissions", handler.CreatePermissionCatalogEntry)
				admin.PUT("/permissions/:code", handler.UpdatePermissionCatalogEntry)
				admin.DELETE("/permissions/:code", handler.DeletePermissionCatalogEntry)
			}
		}
	}

	return r
}
