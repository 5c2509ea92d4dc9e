package models

import (
	"time"

	"gorm.io/gorm"
)

// Plan is a purchasable rental product: a fixed validity window, a daily task
// quota and a per-task reward. RewardCents is precomputed at seed time from
// price, ROI and quota; request handling never recomputes it.
type Plan struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:64;not null" json:"name"`
	PriceCents   int64          `gorm:"not null" json:"price_cents"`
	ValidityDays int            `gorm:"not null" json:"validity_days"`
	DailyTasks   int            `gorm:"not null" json:"daily_tasks"`
	RewardCents  int64          `gorm:"not null" json:"reward_cents"`
	ServerID     string         `gorm:"size:32;not null;index" json:"server_id"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Plan) TableName() string { return "plans" }

// UserPlan binds a user to a purchased plan instance. SyntheticPhone is the
// generated identity key presented in the x-usa-key header on task endpoints.
type UserPlan struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	PlanID         uint           `gorm:"not null;index" json:"plan_id"`
	SyntheticPhone string         `gorm:"uniqueIndex;size:32;not null" json:"synthetic_phone"`
	TasksToday     int            `gorm:"not null;default:0" json:"tasks_today"`
	IsActive       bool           `gorm:"default:true;index" json:"is_active"`
	ExpiresAt      time.Time      `gorm:"not null;index" json:"expires_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Plan Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

func (UserPlan) TableName() string { return "user_plans" }

func (up *UserPlan) Expired(now time.Time) bool { return now.After(up.ExpiresAt) }
