package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
)

// Wallet holds the named sub-balances for one user, in integer cents.
// Non-negativity is enforced by conditional updates in the repository,
// not by a database constraint.
type Wallet struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	MainCents     int64          `gorm:"not null;default:0" json:"main_cents"`
	GameCents     int64          `gorm:"not null;default:0" json:"game_cents"`
	IncomeCents   int64          `gorm:"not null;default:0" json:"income_cents"`
	PurchaseCents int64          `gorm:"not null;default:0" json:"purchase_cents"`
	AgentCents    int64          `gorm:"not null;default:0" json:"agent_cents"`
	Currency      string         `gorm:"size:3;default:'BDT'" json:"currency"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Wallet) TableName() string { return "wallets" }

// BalanceColumn maps a sub-balance name to its column. Second return is false
// for unknown names.
func BalanceColumn(balance string) (string, bool) {
	switch balance {
	case domain.BalanceMain:
		return "main_cents", true
	case domain.BalanceGame:
		return "game_cents", true
	case domain.BalanceIncome:
		return "income_cents", true
	case domain.BalancePurchase:
		return "purchase_cents", true
	case domain.BalanceAgent:
		return "agent_cents", true
	}
	return "", false
}
