package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smmonirhasan92/man2man-sub004/internal/middleware"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
	"github.com/smmonirhasan92/man2man-sub004/internal/service"
)

type WalletHandler struct {
	walletRepo *repository.WalletRepository
	txRepo     *repository.TransactionRepository
	settlement *service.SettlementService
}

func NewWalletHandler(
	walletRepo *repository.WalletRepository,
	txRepo *repository.TransactionRepository,
	settlement *service.SettlementService,
) *WalletHandler {
	return &WalletHandler{walletRepo: walletRepo, txRepo: txRepo, settlement: settlement}
}

// GetBalance handles GET /me/wallet.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	w, err := h.walletRepo.GetByUserID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"main_cents":     w.MainCents,
		"game_cents":     w.GameCents,
		"income_cents":   w.IncomeCents,
		"purchase_cents": w.PurchaseCents,
		"agent_cents":    w.AgentCents,
		"currency":       w.Currency,
	})
}

// GetTransactions handles GET /me/transactions.
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	list, err := h.txRepo.ListByUserID(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list, "total": len(list)})
}

// RequestWithdrawal handles POST /withdrawals: the user picks an agent to
// cash out through. Balance is held immediately; the agent approves or
// rejects later.
func (h *WalletHandler) RequestWithdrawal(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		AgentID uint  `json:"agent_id" binding:"required"`
		Amount  int64 `json:"amount" binding:"required,min=1"` // cents
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wtx, err := h.settlement.RequestWithdrawal(c.Request.Context(), userID, req.AgentID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		case errors.Is(err, service.ErrAgentNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "agent not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "withdrawal request failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": wtx})
}
