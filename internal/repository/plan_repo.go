package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/smmonirhasan92/man2man-sub004/internal/models"
)

var (
	ErrPlanNotFound     = errors.New("plan not found")
	ErrUserPlanNotFound = errors.New("no active plan")
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) WithTx(tx *gorm.DB) *PlanRepository {
	return &PlanRepository{db: tx}
}

func (r *PlanRepository) GetByID(id uint) (*models.Plan, error) {
	var p models.Plan
	if err := r.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PlanRepository) ListActive() ([]models.Plan, error) {
	var list []models.Plan
	err := r.db.Where("is_active = ?", true).Order("price_cents ASC").Find(&list).Error
	return list, err
}

func (r *PlanRepository) CreateUserPlan(up *models.UserPlan) error {
	return r.db.Create(up).Error
}

// GetActiveUserPlan returns the user's current unexpired plan with the Plan
// row preloaded.
func (r *PlanRepository) GetActiveUserPlan(userID uint, now time.Time) (*models.UserPlan, error) {
	var up models.UserPlan
	err := r.db.Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, now).
		Preload("Plan").
		Order("created_at DESC").
		First(&up).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserPlanNotFound
		}
		return nil, err
	}
	return &up, nil
}

// GetUserPlanBySyntheticPhone resolves the x-usa-key header to a plan binding.
func (r *PlanRepository) GetUserPlanBySyntheticPhone(key string) (*models.UserPlan, error) {
	var up models.UserPlan
	err := r.db.Where("synthetic_phone = ? AND is_active = ?", key, true).
		Preload("Plan").
		First(&up).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserPlanNotFound
		}
		return nil, err
	}
	return &up, nil
}

func (r *PlanRepository) DeactivateUserPlans(userID uint) error {
	return r.db.Model(&models.UserPlan{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
}

// IncrementTasksToday bumps the mirrored per-day counter on the plan row.
func (r *PlanRepository) IncrementTasksToday(userPlanID uint) error {
	return r.db.Model(&models.UserPlan{}).
		Where("id = ?", userPlanID).
		UpdateColumn("tasks_today", gorm.Expr("tasks_today + 1")).Error
}

// ResetDailyCounters zeroes tasks_today on every active plan. Runs from the
// midnight cron job.
func (r *PlanRepository) ResetDailyCounters() (int64, error) {
	res := r.db.Model(&models.UserPlan{}).
		Where("is_active = ?", true).
		UpdateColumn("tasks_today", 0)
	return res.RowsAffected, res.Error
}

// ExpireLapsed deactivates plans whose validity window has passed.
func (r *PlanRepository) ExpireLapsed(now time.Time) (int64, error) {
	res := r.db.Model(&models.UserPlan{}).
		Where("is_active = ? AND expires_at <= ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (r *PlanRepository) CountActiveUserPlans() (int64, error) {
	var count int64
	err := r.db.Model(&models.UserPlan{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
