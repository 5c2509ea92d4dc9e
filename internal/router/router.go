package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/smmonirhasan92/man2man-sub004/config"
	"github.com/smmonirhasan92/man2man-sub004/internal/cache"
	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
	"github.com/smmonirhasan92/man2man-sub004/internal/handler"
	"github.com/smmonirhasan92/man2man-sub004/internal/middleware"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
	"github.com/smmonirhasan92/man2man-sub004/internal/service"
	"github.com/smmonirhasan92/man2man-sub004/internal/ws"
	"github.com/smmonirhasan92/man2man-sub004/pkg/cloudstore"
)

// Deps carries everything main constructs once and passes by reference; no
// package-level singletons.
type Deps struct {
	Cfg   *config.Config
	DB    *gorm.DB
	Cache *cache.Cache // may be nil
	Cloud cloudstore.Client
	Hub   *ws.Hub
	Audit *service.AuditService
}

func Setup(d Deps) *gin.Engine {
	if d.Cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(d.DB)
	walletRepo := repository.NewWalletRepository(d.DB)
	txRepo := repository.NewTransactionRepository(d.DB)
	planRepo := repository.NewPlanRepository(d.DB)
	taskRepo := repository.NewTaskRepository(d.DB)
	settingRepo := repository.NewSettingRepository(d.DB)

	// Services
	authSvc := service.NewAuthService(d.Cfg, d.DB, userRepo, walletRepo)
	commissionSvc := service.NewCommissionService(d.DB, userRepo, walletRepo, txRepo, d.Cfg.Referral.RatesBps)
	settlementSvc := service.NewSettlementService(d.DB, walletRepo, txRepo, userRepo, d.Audit, d.Hub)
	planSvc := service.NewPlanService(d.DB, planRepo, userRepo, walletRepo, txRepo, commissionSvc)
	taskSvc := service.NewTaskService(d.DB, taskRepo, planRepo, userRepo, walletRepo, txRepo,
		commissionSvc, d.Cache, time.Duration(d.Cfg.Task.CooldownSeconds)*time.Second)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	walletHandler := handler.NewWalletHandler(walletRepo, txRepo, settlementSvc)
	agentHandler := handler.NewAgentHandler(settlementSvc, txRepo)
	taskHandler := handler.NewTaskHandler(taskSvc)
	planHandler := handler.NewPlanHandler(planRepo, planSvc)
	referralHandler := handler.NewReferralHandler(userRepo, txRepo)
	adminHandler := handler.NewAdminHandler(userRepo, walletRepo, txRepo, planRepo, taskRepo,
		settingRepo, authSvc, planSvc, d.Audit, d.Hub, d.Cloud)

	authMw := middleware.AuthRequired(&d.Cfg.JWT)
	planKeyMw := middleware.PlanKeyRequired(planRepo)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/wallet", walletHandler.GetBalance)
			me.GET("/transactions", walletHandler.GetTransactions)
			me.GET("/referral-code", referralHandler.GetMyCode)
			me.GET("/referrals", referralHandler.GetMyEarnings)
			me.GET("/plan", planHandler.MyPlan)
		}

		api.GET("/plans", authMw, planHandler.List)
		api.POST("/plans/:id/purchase", authMw, planHandler.Purchase)
		api.POST("/withdrawals", authMw, walletHandler.RequestWithdrawal)

		tasks := api.Group("/tasks")
		tasks.Use(authMw, planKeyMw)
		{
			tasks.POST("/start", taskHandler.Start)
			tasks.POST("/process", taskHandler.Process)
		}

		agent := api.Group("/agent")
		agent.Use(authMw, middleware.RequireRole(domain.RoleAgent))
		{
			agent.POST("/deposit", agentHandler.Deposit)
			agent.POST("/withdraw/approve", agentHandler.ApproveWithdrawal)
			agent.POST("/withdraw/reject", agentHandler.RejectWithdrawal)
			agent.GET("/withdrawals/pending", agentHandler.PendingWithdrawals)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.RequireRole(domain.RoleEmployeeAdmin, domain.RoleSuperAdmin))
		{
			admin.GET("/settings", adminHandler.ListSettings)
			admin.PUT("/settings/:key", adminHandler.UpdateSetting)
			admin.GET("/stats/dashboard", adminHandler.Dashboard)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
			admin.POST("/users/:id/add-money", adminHandler.AddMoney)
			admin.POST("/agents", adminHandler.CreateAgent)
			admin.POST("/task-ads", adminHandler.CreateTaskAd)
			admin.PUT("/task-ads/:id", adminHandler.UpdateTaskAd)
		}
	}

	r.GET("/ws/events", ws.UpgradeEventsWS(&d.Cfg.JWT, d.Hub))

	return r
}
