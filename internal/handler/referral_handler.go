package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
	"github.com/smmonirhasan92/man2man-sub004/internal/middleware"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
)

type ReferralHandler struct {
	userRepo *repository.UserRepository
	txRepo   *repository.TransactionRepository
}

func NewReferralHandler(userRepo *repository.UserRepository, txRepo *repository.TransactionRepository) *ReferralHandler {
	return &ReferralHandler{userRepo: userRepo, txRepo: txRepo}
}

// GetMyCode handles GET /me/referral-code.
func (h *ReferralHandler) GetMyCode(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":           u.ReferralCode,
		"referral_count": u.ReferralCount,
	})
}

// GetMyEarnings handles GET /me/referrals: commission transaction history
// plus the configured level rates.
func (h *ReferralHandler) GetMyEarnings(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	commissions, err := h.txRepo.ListByUserAndType(userID, domain.TxTypeReferralCommission, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list commissions"})
		return
	}
	var totalCents int64
	for _, t := range commissions {
		totalCents += t.AmountCents
	}
	c.JSON(http.StatusOK, gin.H{
		"commissions": commissions,
		"total_cents": totalCents,
		"rates_bps":   domain.CommissionRatesBps,
	})
}
