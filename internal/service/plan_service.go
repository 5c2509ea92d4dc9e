package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
	"github.com/smmonirhasan92/man2man-sub004/internal/models"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
	"github.com/smmonirhasan92/man2man-sub004/pkg/synthid"
)

var ErrPlanInactive = errors.New("plan is not available")

// PlanService handles plan purchase: conditional debit of the main balance,
// the synthetic identity binding, the audit record and referral commissions.
type PlanService struct {
	db         *gorm.DB
	plans      *repository.PlanRepository
	users      *repository.UserRepository
	wallet     *repository.WalletRepository
	txRepo     *repository.TransactionRepository
	commission *CommissionService
}

func NewPlanService(
	db *gorm.DB,
	plans *repository.PlanRepository,
	users *repository.UserRepository,
	wallet *repository.WalletRepository,
	txRepo *repository.TransactionRepository,
	commission *CommissionService,
) *PlanService {
	return &PlanService{
		db:         db,
		plans:      plans,
		users:      users,
		wallet:     wallet,
		txRepo:     txRepo,
		commission: commission,
	}
}

// Purchase buys a plan for the user. Any earlier active plan is deactivated;
// the new binding carries a fresh synthetic phone used as the x-usa-key
// capability token on task endpoints.
func (s *PlanService) Purchase(ctx context.Context, userID, planID uint) (*models.UserPlan, error) {
	plan, err := s.plans.GetByID(planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}

	var userPlan *models.UserPlan
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.wallet.WithTx(tx).Debit(userID, domain.BalanceMain, plan.PriceCents); err != nil {
			return err
		}
		if err := s.plans.WithTx(tx).DeactivateUserPlans(userID); err != nil {
			return err
		}
		userPlan = &models.UserPlan{
			UserID:         userID,
			PlanID:         plan.ID,
			SyntheticPhone: synthid.Generate(plan.ServerID),
			IsActive:       true,
			ExpiresAt:      time.Now().AddDate(0, 0, plan.ValidityDays),
		}
		if err := s.plans.WithTx(tx).CreateUserPlan(userPlan); err != nil {
			return err
		}
		return s.txRepo.WithTx(tx).Create(&models.Transaction{
			UserID:      userID,
			Type:        domain.TxTypePlanPurchase,
			AmountCents: -plan.PriceCents,
			Balance:     domain.BalanceMain,
			Status:      domain.TxStatusCompleted,
			Reference:   userPlan.SyntheticPhone,
			Description: "Plan purchase: " + plan.Name,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[plan] user %d purchased %s (%s)", userID, plan.Name, userPlan.SyntheticPhone)
	s.commission.Distribute(userID, plan.PriceCents, "plan")
	return userPlan, nil
}

// AddMoney is the internal ledger posting for admin top-ups. Created
// already completed, no agent involved.
func (s *PlanService) AddMoney(ctx context.Context, adminID, userID uint, amountCents int64) (*models.Transaction, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	var t *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.wallet.WithTx(tx).Credit(userID, domain.BalanceMain, amountCents); err != nil {
			return err
		}
		t = &models.Transaction{
			UserID:      userID,
			Type:        domain.TxTypeAddMoney,
			AmountCents: amountCents,
			Balance:     domain.BalanceMain,
			Status:      domain.TxStatusCompleted,
			Description: fmt.Sprintf("Balance added by admin %d", adminID),
		}
		return s.txRepo.WithTx(tx).Create(t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
