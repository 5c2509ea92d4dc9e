package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smmonirhasan92/man2man-sub004/internal/middleware"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
	"github.com/smmonirhasan92/man2man-sub004/internal/service"
)

// TaskHandler serves the task endpoints. Both routes require the x-usa-key
// plan identity header on top of the bearer token.
type TaskHandler struct {
	taskSvc *service.TaskService
}

func NewTaskHandler(taskSvc *service.TaskService) *TaskHandler {
	return &TaskHandler{taskSvc: taskSvc}
}

// Start handles POST /tasks/start: lists the ads still available today on
// the caller's plan server.
func (h *TaskHandler) Start(c *gin.Context) {
	up := middleware.GetUserPlan(c)
	ads, remaining, err := h.taskSvc.Start(up)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load tasks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks":           ads,
		"remaining_today": remaining,
		"reward_cents":    up.Plan.RewardCents,
	})
}

// Process handles POST /tasks/process {task_id}: the reward-bearing claim.
func (h *TaskHandler) Process(c *gin.Context) {
	up := middleware.GetUserPlan(c)
	var req struct {
		TaskID uint `json:"task_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	completion, err := h.taskSvc.Process(c.Request.Context(), up, req.TaskID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCooldown):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrDailyQuota):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrDuplicateTask):
			c.JSON(http.StatusBadRequest, gin.H{"error": "task already completed today"})
		case errors.Is(err, repository.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		case errors.Is(err, service.ErrWrongServer), errors.Is(err, service.ErrAdInactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrPlanExpired):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "task processing failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"completion":   completion,
		"reward_cents": completion.RewardCents,
	})
}
