package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is the append-only audit record for every money movement.
// AmountCents is signed: positive = credit, negative = debit. Once Status
// reaches completed it is terminal; all status flips go through the
// conditional update in TransactionRepository.
type Transaction struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	Type          string         `gorm:"size:30;not null;index" json:"type"`
	AmountCents   int64          `gorm:"not null" json:"amount_cents"`
	Balance       string         `gorm:"size:20;not null;default:'main'" json:"balance"`
	Status        string         `gorm:"size:30;not null;index" json:"status"`
	AgentID       *uint          `gorm:"index" json:"agent_id"`
	CounterpartID *uint          `gorm:"index" json:"counterpart_id"`
	Reference     string         `gorm:"size:128;index" json:"reference"`
	Description   string         `gorm:"size:255" json:"description"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Transaction) TableName() string { return "transactions" }
