package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskAd is a reward-bearing unit of work (viewing an ad). Visibility is
// gated by the ServerID of the viewer's active plan.
type TaskAd struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:128;not null" json:"title"`
	ImageURL  string         `gorm:"size:512" json:"image_url"`
	TargetURL string         `gorm:"size:512" json:"target_url"`
	ServerID  string         `gorm:"size:32;not null;index" json:"server_id"`
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (TaskAd) TableName() string { return "task_ads" }

// TaskCompletion records one user completing one ad on one day. The unique
// index on (user_id, task_ad_id, task_day) is what rejects same-day
// duplicates, so inserts must treat a duplicate-key error as a business
// rejection rather than a failure.
type TaskCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_task_once,unique" json:"user_id"`
	TaskAdID    uint      `gorm:"not null;index:idx_task_once,unique" json:"task_ad_id"`
	TaskDay     string    `gorm:"size:10;not null;index:idx_task_once,unique" json:"task_day"` // YYYY-MM-DD local
	RewardCents int64     `gorm:"not null" json:"reward_cents"`
	CreatedAt   time.Time `json:"created_at"`

	User   User   `gorm:"foreignKey:UserID" json:"-"`
	TaskAd TaskAd `gorm:"foreignKey:TaskAdID" json:"-"`
}

func (TaskCompletion) TableName() string { return "task_completions" }

// DayKey formats t as the local-midnight day bucket used for quota and
// duplicate checks.
func DayKey(t time.Time) string { return t.Format("2006-01-02") }
