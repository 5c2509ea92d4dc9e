package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/smmonirhasan92/man2man-sub004/internal/models"
)

var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrUnknownBalance      = errors.New("unknown balance name")
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
// handle, so settlement can run wallet updates inside db.Transaction.
func (r *WalletRepository) WithTx(tx *gorm.DB) *WalletRepository {
	return &WalletRepository{db: tx}
}

func (r *WalletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) Create(userID uint) (*models.Wallet, error) {
	w := &models.Wallet{UserID: userID, Currency: "BDT"}
	if err := r.db.Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// Credit adds cents to a named sub-balance with a single atomic increment.
// The wallet row must already exist; users get one at registration.
func (r *WalletRepository) Credit(userID uint, balance string, cents int64) error {
	col, ok := models.BalanceColumn(balance)
	if !ok {
		return ErrUnknownBalance
	}
	res := r.db.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		UpdateColumn(col, gorm.Expr(fmt.Sprintf("%s + ?", col), cents))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

// Debit subtracts cents from a named sub-balance with a conditional atomic
// update: the WHERE clause carries the sufficient-funds predicate, so two
// racing debits can never take the balance negative. A zero row count alone
// cannot distinguish "no wallet" from "not enough funds"; the follow-up
// existence check produces the right error.
func (r *WalletRepository) Debit(userID uint, balance string, cents int64) error {
	col, ok := models.BalanceColumn(balance)
	if !ok {
		return ErrUnknownBalance
	}
	res := r.db.Model(&models.Wallet{}).
		Where(fmt.Sprintf("user_id = ? AND %s >= ?", col), userID, cents).
		UpdateColumn(col, gorm.Expr(fmt.Sprintf("%s - ?", col), cents))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Wallet{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrWalletNotFound
		}
		return ErrInsufficientBalance
	}
	return nil
}

// TotalsByBalance sums one sub-balance across all wallets (dashboard).
func (r *WalletRepository) TotalsByBalance(balance string) (int64, error) {
	col, ok := models.BalanceColumn(balance)
	if !ok {
		return 0, ErrUnknownBalance
	}
	var total int64
	err := r.db.Model(&models.Wallet{}).
		Select(fmt.Sprintf("COALESCE(SUM(%s), 0)", col)).
		Scan(&total).Error
	return total, err
}
