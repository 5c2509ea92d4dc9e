package service

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
	"github.com/smmonirhasan92/man2man-sub004/internal/models"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
)

// CommissionService walks the referral upline and credits percentage-based
// commissions into each ancestor's income balance. All amounts are integer
// cents; each level gets amount*rateBps/10000 rounded down, so the sum can
// undershoot the nominal total by at most a few cents and no balance ever
// sees a fractional unit.
type CommissionService struct {
	db       *gorm.DB
	users    *repository.UserRepository
	wallet   *repository.WalletRepository
	txRepo   *repository.TransactionRepository
	ratesBps []int64
}

func NewCommissionService(
	db *gorm.DB,
	users *repository.UserRepository,
	wallet *repository.WalletRepository,
	txRepo *repository.TransactionRepository,
	ratesBps []int64,
) *CommissionService {
	if len(ratesBps) == 0 {
		ratesBps = domain.CommissionRatesBps
	}
	return &CommissionService{
		db:       db,
		users:    users,
		wallet:   wallet,
		txRepo:   txRepo,
		ratesBps: ratesBps,
	}
}

// LevelCut returns the commission for one level in cents.
func LevelCut(amountCents, rateBps int64) int64 {
	return amountCents * rateBps / 10000
}

// Distribute credits the upline of originUserID for a qualifying event
// (plan purchase, task reward). The walk stops early when the chain ends.
// Each level is its own small transaction; a failure at one level is logged
// and skipped rather than unwinding commissions already paid, matching the
// best-effort nature of the commission trail (the originating money movement
// has already committed).
func (s *CommissionService) Distribute(originUserID uint, amountCents int64, event string) {
	origin, err := s.users.GetByID(originUserID)
	if err != nil {
		log.Printf("[commission] origin user %d: %v", originUserID, err)
		return
	}
	ancestorID := origin.ReferredByID
	for level, rateBps := range s.ratesBps {
		if ancestorID == nil {
			return
		}
		ancestor, err := s.users.GetByID(*ancestorID)
		if err != nil {
			log.Printf("[commission] level %d ancestor %d: %v", level+1, *ancestorID, err)
			return
		}
		cut := LevelCut(amountCents, rateBps)
		if cut > 0 {
			if err := s.credit(ancestor.ID, originUserID, cut, level+1, event); err != nil {
				log.Printf("[commission] credit level %d user %d: %v", level+1, ancestor.ID, err)
			}
		}
		ancestorID = ancestor.ReferredByID
	}
}

func (s *CommissionService) credit(ancestorID, originUserID uint, cut int64, level int, event string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.wallet.WithTx(tx).Credit(ancestorID, domain.BalanceIncome, cut); err != nil {
			return err
		}
		return s.txRepo.WithTx(tx).Create(&models.Transaction{
			UserID:      ancestorID,
			Type:        domain.TxTypeReferralCommission,
			AmountCents: cut,
			Balance:     domain.BalanceIncome,
			Status:      domain.TxStatusCompleted,
			Reference:   fmt.Sprintf("%s_l%d_u%d", event, level, originUserID),
			Description: fmt.Sprintf("Level %d commission from user %d (%s)", level, originUserID, event),
		})
	})
}
