package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smmonirhasan92/man2man-sub004/internal/middleware"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
	"github.com/smmonirhasan92/man2man-sub004/internal/service"
)

// AgentHandler exposes the agent settlement endpoints. All routes are gated
// by RequireRole(agent) in the router.
type AgentHandler struct {
	settlement *service.SettlementService
	txRepo     *repository.TransactionRepository
}

func NewAgentHandler(
	settlement *service.SettlementService,
	txRepo *repository.TransactionRepository,
) *AgentHandler {
	return &AgentHandler{settlement: settlement, txRepo: txRepo}
}

// Deposit handles POST /agent/deposit: the agent sells balance to a user.
func (h *AgentHandler) Deposit(c *gin.Context) {
	agentID := middleware.GetUserID(c)
	var req struct {
		UserID uint  `json:"user_id" binding:"required"`
		Amount int64 `json:"amount" binding:"required,min=1"` // cents
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tx, err := h.settlement.ProcessDeposit(c.Request.Context(), agentID, req.UserID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientAgentBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient agent balance"})
		case errors.Is(err, service.ErrAgentNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "agent wallet not found"})
		case errors.Is(err, repository.ErrWalletNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "user wallet not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "deposit failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// ApproveWithdrawal handles POST /agent/withdraw/approve.
func (h *AgentHandler) ApproveWithdrawal(c *gin.Context) {
	agentID := middleware.GetUserID(c)
	var req struct {
		TransactionID uint `json:"transaction_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tx, err := h.settlement.AcceptWithdrawal(c.Request.Context(), agentID, req.TransactionID)
	if err != nil {
		h.respondSettlementError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// RejectWithdrawal handles POST /agent/withdraw/reject.
func (h *AgentHandler) RejectWithdrawal(c *gin.Context) {
	agentID := middleware.GetUserID(c)
	var req struct {
		TransactionID uint `json:"transaction_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tx, err := h.settlement.RejectWithdrawal(c.Request.Context(), agentID, req.TransactionID)
	if err != nil {
		h.respondSettlementError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// PendingWithdrawals handles GET /agent/withdrawals/pending.
func (h *AgentHandler) PendingWithdrawals(c *gin.Context) {
	agentID := middleware.GetUserID(c)
	list, err := h.txRepo.ListPendingForAgent(agentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list, "total": len(list)})
}

func (h *AgentHandler) respondSettlementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
	case errors.Is(err, service.ErrNotPending):
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction is not pending agent action"})
	case errors.Is(err, service.ErrUnauthorizedAgent):
		c.JSON(http.StatusForbidden, gin.H{"error": "withdrawal is assigned to a different agent"})
	case errors.Is(err, repository.ErrConcurrency):
		c.JSON(http.StatusConflict, gin.H{"error": "transaction was settled by a concurrent request"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement failed"})
	}
}
