package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
	"github.com/smmonirhasan92/man2man-sub004/internal/models"
)

// ErrConcurrency means a status flip lost the race: the row was no longer in
// the expected prior status when the conditional update ran.
var ErrConcurrency = errors.New("transaction was modified concurrently")

var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) WithTx(tx *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: tx}
}

func (r *TransactionRepository) Create(t *models.Transaction) error {
	return r.db.Create(t).Error
}

func (r *TransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FlipStatus moves a transaction from one status to another as a
// compare-and-swap: the update matches on the prior status and the affected
// row count is checked, never assumed. Completed rows therefore can never be
// flipped again, and two racing accepts resolve to exactly one winner.
func (r *TransactionRepository) FlipStatus(id uint, from, to string) error {
	res := r.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumn("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrency
	}
	return nil
}

func (r *TransactionRepository) SetCounterpart(id, counterpartID uint) error {
	return r.db.Model(&models.Transaction{}).
		Where("id = ?", id).
		UpdateColumn("counterpart_id", counterpartID).Error
}

func (r *TransactionRepository) ListByUserID(userID uint, limit, offset int) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *TransactionRepository) ListByUserAndType(userID uint, txType string, limit, offset int) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Where("user_id = ? AND type = ?", userID, txType).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// ListPendingForAgent returns withdrawal requests waiting on the given agent.
func (r *TransactionRepository) ListPendingForAgent(agentID uint) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Where("agent_id = ? AND status = ?", agentID, domain.TxStatusPendingAgentAction).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

// SumCompletedByType totals completed transactions of one type (dashboard).
func (r *TransactionRepository) SumCompletedByType(txType string) (int64, error) {
	var total int64
	err := r.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Where("type = ? AND status = ?", txType, domain.TxStatusCompleted).
		Scan(&total).Error
	return total, err
}

func (r *TransactionRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Transaction{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
