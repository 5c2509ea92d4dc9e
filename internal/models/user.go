package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
)

type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	FullName      string         `gorm:"size:128;not null" json:"full_name"`
	Phone         string         `gorm:"uniqueIndex;size:20;not null" json:"phone"`
	PasswordHash  string         `gorm:"size:255" json:"-"`
	Role          string         `gorm:"size:20;not null;index;default:'user'" json:"role"`
	Status        string         `gorm:"size:20;not null;index;default:'active'" json:"status"`
	ReferralCode  string         `gorm:"uniqueIndex;size:20;not null" json:"referral_code"`
	ReferredByID  *uint          `gorm:"index" json:"referred_by_id"`
	ReferralCount int            `gorm:"not null;default:0" json:"referral_count"`
	LastTaskAt    *time.Time     `json:"last_task_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Wallet     *Wallet `gorm:"foreignKey:UserID" json:"wallet,omitempty"`
	ReferredBy *User   `gorm:"foreignKey:ReferredByID" json:"-"`
}

func (u *User) IsAgent() bool { return u.Role == domain.RoleAgent }

func (u *User) IsAdmin() bool {
	return u.Role == domain.RoleEmployeeAdmin || u.Role == domain.RoleSuperAdmin
}

func (User) TableName() string { return "users" }
