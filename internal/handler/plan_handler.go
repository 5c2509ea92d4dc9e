package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smmonirhasan92/man2man-sub004/internal/middleware"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
	"github.com/smmonirhasan92/man2man-sub004/internal/service"
)

type PlanHandler struct {
	planRepo *repository.PlanRepository
	planSvc  *service.PlanService
}

func NewPlanHandler(planRepo *repository.PlanRepository, planSvc *service.PlanService) *PlanHandler {
	return &PlanHandler{planRepo: planRepo, planSvc: planSvc}
}

// List handles GET /plans.
func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.planRepo.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list plans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// Purchase handles POST /plans/:id/purchase.
func (h *PlanHandler) Purchase(c *gin.Context) {
	userID := middleware.GetUserID(c)
	planID, err := strconv.Atoi(c.Param("id"))
	if err != nil || planID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}
	up, err := h.planSvc.Purchase(c.Request.Context(), userID, uint(planID))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPlanNotFound), errors.Is(err, service.ErrPlanInactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": "plan not available"})
		case errors.Is(err, repository.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "purchase failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user_plan": up,
		"usa_key":   up.SyntheticPhone,
	})
}

// MyPlan handles GET /me/plan.
func (h *PlanHandler) MyPlan(c *gin.Context) {
	userID := middleware.GetUserID(c)
	up, err := h.planRepo.GetActiveUserPlan(userID, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrUserPlanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active plan"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load plan"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_plan": up})
}
