package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/smmonirhasan92/man2man-sub004/internal/models"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrDuplicateTask = errors.New("task already completed today")
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

func (r *TaskRepository) CreateAd(ad *models.TaskAd) error {
	return r.db.Create(ad).Error
}

func (r *TaskRepository) GetAdByID(id uint) (*models.TaskAd, error) {
	var ad models.TaskAd
	if err := r.db.First(&ad, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &ad, nil
}

func (r *TaskRepository) UpdateAd(ad *models.TaskAd) error {
	return r.db.Save(ad).Error
}

func (r *TaskRepository) DeleteAd(id uint) error {
	return r.db.Delete(&models.TaskAd{}, id).Error
}

func (r *TaskRepository) ListAdsByServer(serverID string) ([]models.TaskAd, error) {
	var list []models.TaskAd
	err := r.db.Where("server_id = ? AND is_active = ?", serverID, true).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

// ListAvailableAds returns the server's ads the user has not completed on
// the given day.
func (r *TaskRepository) ListAvailableAds(userID uint, serverID, day string) ([]models.TaskAd, error) {
	var list []models.TaskAd
	err := r.db.Where("server_id = ? AND is_active = ?", serverID, true).
		Where("id NOT IN (?)", r.db.Model(&models.TaskCompletion{}).
			Select("task_ad_id").
			Where("user_id = ? AND task_day = ?", userID, day)).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

// CreateCompletion inserts the (user, ad, day) row. A duplicate-key error
// from the unique index is the same-day duplicate rejection, not a failure.
func (r *TaskRepository) CreateCompletion(tc *models.TaskCompletion) error {
	err := r.db.Create(tc).Error
	if err != nil && isDuplicateKey(err) {
		return ErrDuplicateTask
	}
	return err
}

func (r *TaskRepository) CountCompletions(userID uint, day string) (int64, error) {
	var count int64
	err := r.db.Model(&models.TaskCompletion{}).
		Where("user_id = ? AND task_day = ?", userID, day).
		Count(&count).Error
	return count, err
}

func (r *TaskRepository) CountCompletionsForDay(day string) (int64, error) {
	var count int64
	err := r.db.Model(&models.TaskCompletion{}).Where("task_day = ?", day).Count(&count).Error
	return count, err
}

// isDuplicateKey matches MySQL error 1062 without importing the driver here.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry") ||
		strings.Contains(err.Error(), "1062")
}
