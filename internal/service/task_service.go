package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/smmonirhasan92/man2man-sub004/internal/cache"
	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
	"github.com/smmonirhasan92/man2man-sub004/internal/models"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
)

var (
	ErrCooldown    = errors.New("task claimed too soon, wait a few seconds")
	ErrDailyQuota  = errors.New("daily task quota reached")
	ErrWrongServer = errors.New("task does not belong to your plan server")
	ErrPlanExpired = errors.New("active plan has expired")
	ErrAdInactive  = errors.New("task is no longer active")
)

// TaskService guards and settles task claims: the 10s cooldown, the plan's
// daily quota and the same-ad-same-day duplicate check, then the reward
// credit and commission distribution.
type TaskService struct {
	db         *gorm.DB
	tasks      *repository.TaskRepository
	plans      *repository.PlanRepository
	users      *repository.UserRepository
	wallet     *repository.WalletRepository
	txRepo     *repository.TransactionRepository
	commission *CommissionService
	cache      *cache.Cache // nil tolerated, falls back to DB timestamps
	cooldown   time.Duration
	now        func() time.Time
}

func NewTaskService(
	db *gorm.DB,
	tasks *repository.TaskRepository,
	plans *repository.PlanRepository,
	users *repository.UserRepository,
	wallet *repository.WalletRepository,
	txRepo *repository.TransactionRepository,
	commission *CommissionService,
	c *cache.Cache,
	cooldown time.Duration,
) *TaskService {
	return &TaskService{
		db:         db,
		tasks:      tasks,
		plans:      plans,
		users:      users,
		wallet:     wallet,
		txRepo:     txRepo,
		commission: commission,
		cache:      c,
		cooldown:   cooldown,
		now:        time.Now,
	}
}

// Start returns the ads on the plan's server the user can still complete
// today, along with quota usage.
func (s *TaskService) Start(userPlan *models.UserPlan) ([]models.TaskAd, int, error) {
	day := models.DayKey(s.now())
	ads, err := s.tasks.ListAvailableAds(userPlan.UserID, userPlan.Plan.ServerID, day)
	if err != nil {
		return nil, 0, err
	}
	done, err := s.tasks.CountCompletions(userPlan.UserID, day)
	if err != nil {
		return nil, 0, err
	}
	remaining := userPlan.Plan.DailyTasks - int(done)
	if remaining < 0 {
		remaining = 0
	}
	return ads, remaining, nil
}

// Process settles one task claim. Guard order: cooldown, plan/server match,
// daily quota, duplicate. The duplicate check is the unique index on
// (user, ad, day), so concurrent submits of the same ad collapse to one row
// no matter what the earlier reads saw.
func (s *TaskService) Process(ctx context.Context, userPlan *models.UserPlan, adID uint) (*models.TaskCompletion, error) {
	now := s.now()
	day := models.DayKey(now)

	if userPlan.Expired(now) {
		return nil, ErrPlanExpired
	}

	acquired, counted, err := s.guard(ctx, userPlan, day)
	if err != nil {
		return nil, err
	}
	release := func() {
		if s.cache == nil {
			return
		}
		if acquired {
			_ = s.cache.ReleaseCooldown(ctx, userPlan.UserID)
		}
		if counted {
			_ = s.cache.DecrDailyTasks(ctx, userPlan.UserID, day)
		}
	}

	ad, err := s.tasks.GetAdByID(adID)
	if err != nil {
		release()
		return nil, err
	}
	if !ad.IsActive {
		release()
		return nil, ErrAdInactive
	}
	if ad.ServerID != userPlan.Plan.ServerID {
		release()
		return nil, ErrWrongServer
	}

	reward := userPlan.Plan.RewardCents
	completion := &models.TaskCompletion{
		UserID:      userPlan.UserID,
		TaskAdID:    ad.ID,
		TaskDay:     day,
		RewardCents: reward,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tasks.WithTx(tx).CreateCompletion(completion); err != nil {
			return err
		}
		if err := s.wallet.WithTx(tx).Credit(userPlan.UserID, domain.BalanceIncome, reward); err != nil {
			return err
		}
		if err := s.txRepo.WithTx(tx).Create(&models.Transaction{
			UserID:      userPlan.UserID,
			Type:        domain.TxTypeTaskReward,
			AmountCents: reward,
			Balance:     domain.BalanceIncome,
			Status:      domain.TxStatusCompleted,
			Reference:   fmt.Sprintf("task_%d_%s", ad.ID, day),
			Description: "Task reward: " + ad.Title,
		}); err != nil {
			return err
		}
		if err := s.plans.WithTx(tx).IncrementTasksToday(userPlan.ID); err != nil {
			return err
		}
		return s.users.WithTx(tx).TouchLastTask(userPlan.UserID, now)
	})
	if err != nil {
		release()
		return nil, err
	}

	s.commission.Distribute(userPlan.UserID, reward, "task")
	return completion, nil
}

// guard applies the cooldown and quota checks. Returns which cache-side
// effects were applied so a later rejection can undo them.
func (s *TaskService) guard(ctx context.Context, userPlan *models.UserPlan, day string) (acquired, counted bool, err error) {
	if s.cache != nil {
		ok, cerr := s.cache.AcquireCooldown(ctx, userPlan.UserID, s.cooldown)
		if cerr != nil {
			log.Printf("[task] redis cooldown unavailable, using db fallback: %v", cerr)
		} else if !ok {
			return false, false, ErrCooldown
		} else {
			acquired = true
		}

		if cerr == nil {
			n, ierr := s.cache.IncrDailyTasks(ctx, userPlan.UserID, day, untilMidnight(s.now())+time.Hour)
			if ierr != nil {
				log.Printf("[task] redis counter unavailable, using db fallback: %v", ierr)
			} else {
				counted = true
				if n > int64(userPlan.Plan.DailyTasks) {
					return acquired, counted, ErrDailyQuota
				}
				return acquired, counted, nil
			}
		}
	}

	// Fallback path: read-then-check against the database. This is the
	// source system's original (racy) guard; Redis is the primary.
	user, uerr := s.users.GetByID(userPlan.UserID)
	if uerr != nil {
		return acquired, counted, uerr
	}
	if user.LastTaskAt != nil && s.now().Sub(*user.LastTaskAt) < s.cooldown {
		return acquired, counted, ErrCooldown
	}
	done, derr := s.tasks.CountCompletions(userPlan.UserID, day)
	if derr != nil {
		return acquired, counted, derr
	}
	if int(done) >= userPlan.Plan.DailyTasks {
		return acquired, counted, ErrDailyQuota
	}
	return acquired, counted, nil
}

func untilMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return next.Sub(now)
}
