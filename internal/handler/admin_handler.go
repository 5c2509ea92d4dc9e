package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
	"github.com/smmonirhasan92/man2man-sub004/internal/middleware"
	"github.com/smmonirhasan92/man2man-sub004/internal/models"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
	"github.com/smmonirhasan92/man2man-sub004/internal/service"
	"github.com/smmonirhasan92/man2man-sub004/internal/ws"
	"github.com/smmonirhasan92/man2man-sub004/pkg/cloudstore"
)

type AdminHandler struct {
	userRepo    *repository.UserRepository
	walletRepo  *repository.WalletRepository
	txRepo      *repository.TransactionRepository
	planRepo    *repository.PlanRepository
	taskRepo    *repository.TaskRepository
	settingRepo *repository.SettingRepository
	authSvc     *service.AuthService
	planSvc     *service.PlanService
	audit       *service.AuditService
	hub         *ws.Hub
	cloud       cloudstore.Client
}

func NewAdminHandler(
	userRepo *repository.UserRepository,
	walletRepo *repository.WalletRepository,
	txRepo *repository.TransactionRepository,
	planRepo *repository.PlanRepository,
	taskRepo *repository.TaskRepository,
	settingRepo *repository.SettingRepository,
	authSvc *service.AuthService,
	planSvc *service.PlanService,
	audit *service.AuditService,
	hub *ws.Hub,
	cloud cloudstore.Client,
) *AdminHandler {
	return &AdminHandler{
		userRepo:    userRepo,
		walletRepo:  walletRepo,
		txRepo:      txRepo,
		planRepo:    planRepo,
		taskRepo:    taskRepo,
		settingRepo: settingRepo,
		authSvc:     authSvc,
		planSvc:     planSvc,
		audit:       audit,
		hub:         hub,
		cloud:       cloud,
	}
}

// UpdateSetting handles PUT /admin/settings/:key and broadcasts the change
// over the events channel so connected clients pick it up without polling.
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	key := c.Param("key")
	var req struct {
		Value    string `json:"value" binding:"required"`
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Category == "" {
		req.Category = "general"
	}
	s, err := h.settingRepo.Set(key, req.Value, req.Category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save setting"})
		return
	}
	h.hub.Broadcast("config:update", gin.H{
		"key":      s.Key,
		"value":    s.Value,
		"category": s.Category,
	})
	adminID := middleware.GetUserID(c)
	h.audit.Log(&adminID, "settings.update", "system_setting", key, fmt.Sprintf(`{"value":%q}`, req.Value))
	c.JSON(http.StatusOK, gin.H{"setting": s})
}

// ListSettings handles GET /admin/settings.
func (h *AdminHandler) ListSettings(c *gin.Context) {
	list, err := h.settingRepo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": list})
}

// Dashboard handles GET /admin/stats/dashboard: the aggregate financial and
// user counters. Each aggregate failure degrades to zero rather than failing
// the whole dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stat := func(v int64, err error) int64 {
		if err != nil {
			log.Printf("[admin] dashboard aggregate: %v", err)
			return 0
		}
		return v
	}
	totalUsers := stat(h.userRepo.CountByRole(domain.RoleUser))
	totalAgents := stat(h.userRepo.CountByRole(domain.RoleAgent))
	activeUsers := stat(h.userRepo.CountActive())
	activePlans := stat(h.planRepo.CountActiveUserPlans())
	pendingWithdrawals := stat(h.txRepo.CountByStatus(domain.TxStatusPendingAgentAction))
	tasksToday := stat(h.taskRepo.CountCompletionsForDay(models.DayKey(time.Now())))

	deposits := stat(h.txRepo.SumCompletedByType(domain.TxTypeDeposit))
	withdraws := stat(h.txRepo.SumCompletedByType(domain.TxTypeWithdraw))
	commissions := stat(h.txRepo.SumCompletedByType(domain.TxTypeReferralCommission))
	rewards := stat(h.txRepo.SumCompletedByType(domain.TxTypeTaskReward))

	mainTotal := stat(h.walletRepo.TotalsByBalance(domain.BalanceMain))
	incomeTotal := stat(h.walletRepo.TotalsByBalance(domain.BalanceIncome))
	agentTotal := stat(h.walletRepo.TotalsByBalance(domain.BalanceAgent))

	c.JSON(http.StatusOK, gin.H{
		"users": gin.H{
			"total":  totalUsers,
			"agents": totalAgents,
			"active": activeUsers,
		},
		"plans": gin.H{"active": activePlans},
		"tasks": gin.H{"completed_today": tasksToday},
		"money": gin.H{
			"deposits_cents":      deposits,
			"withdrawals_cents":   withdraws,
			"commissions_cents":   commissions,
			"task_rewards_cents":  rewards,
			"pending_withdrawals": pendingWithdrawals,
			"wallet_totals": gin.H{
				"main_cents":   mainTotal,
				"income_cents": incomeTotal,
				"agent_cents":  agentTotal,
			},
		},
		"ws_clients": h.hub.ClientCount(),
	})
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	search := c.Query("search")
	role := c.Query("role")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	users, total, err := h.userRepo.List(search, role, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

// UpdateUserStatus handles PUT /admin/users/:id/status. Users are never
// hard-deleted; blocking is a status change.
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,oneof=active blocked suspended"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.userRepo.UpdateStatus(uint(id), req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update status"})
		return
	}
	adminID := middleware.GetUserID(c)
	h.audit.Log(&adminID, "user.status", "user", c.Param("id"), fmt.Sprintf(`{"status":%q}`, req.Status))
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

// CreateAgent handles POST /admin/agents.
func (h *AdminHandler) CreateAgent(c *gin.Context) {
	var req struct {
		FullName string `json:"full_name" binding:"required"`
		Phone    string `json:"phone" binding:"required,min=10,max=15"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	agent, err := h.authSvc.CreateAgent(req.FullName, req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrPhoneExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create agent"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"agent": agent})
}

// AddMoney handles POST /admin/users/:id/add-money: internal ledger posting,
// created already completed.
func (h *AdminHandler) AddMoney(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var req struct {
		Amount int64 `json:"amount" binding:"required,min=1"` // cents
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	adminID := middleware.GetUserID(c)
	tx, err := h.planSvc.AddMoney(c.Request.Context(), adminID, uint(id), req.Amount)
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user wallet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add money"})
		return
	}
	h.audit.Log(&adminID, "wallet.add_money", "transaction", fmt.Sprint(tx.ID),
		fmt.Sprintf(`{"user_id":%d,"amount_cents":%d}`, id, req.Amount))
	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// CreateTaskAd handles POST /admin/task-ads (multipart). The creative image
// is optional; with Cloudinary configured it is uploaded and the delivery
// URL stored, otherwise image_url from the form is used as-is.
func (h *AdminHandler) CreateTaskAd(c *gin.Context) {
	title := c.PostForm("title")
	serverID := c.PostForm("server_id")
	targetURL := c.PostForm("target_url")
	if title == "" || serverID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and server_id are required"})
		return
	}
	imageURL := c.PostForm("image_url")
	if file, err := c.FormFile("image"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
			return
		}
		defer f.Close()
		url, err := h.cloud.UploadImage(c.Request.Context(), f, "ad-"+uuid.New().String())
		if err != nil {
			log.Printf("[admin] creative upload: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
			return
		}
		imageURL = url
	}
	ad := &models.TaskAd{
		Title:     title,
		ImageURL:  imageURL,
		TargetURL: targetURL,
		ServerID:  serverID,
		IsActive:  true,
	}
	if err := h.taskRepo.CreateAd(ad); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create task ad"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task_ad": ad})
}

// UpdateTaskAd handles PUT /admin/task-ads/:id.
func (h *AdminHandler) UpdateTaskAd(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ad id"})
		return
	}
	ad, err := h.taskRepo.GetAdByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task ad not found"})
		return
	}
	var req struct {
		Title     *string `json:"title"`
		TargetURL *string `json:"target_url"`
		ServerID  *string `json:"server_id"`
		IsActive  *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title != nil {
		ad.Title = *req.Title
	}
	if req.TargetURL != nil {
		ad.TargetURL = *req.TargetURL
	}
	if req.ServerID != nil {
		ad.ServerID = *req.ServerID
	}
	if req.IsActive != nil {
		ad.IsActive = *req.IsActive
	}
	if err := h.taskRepo.UpdateAd(ad); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update task ad"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_ad": ad})
}
