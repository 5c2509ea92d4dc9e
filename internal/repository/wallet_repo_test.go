package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func TestDebitSufficientBalance(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWalletRepository(db)

	mock.ExpectExec("UPDATE `wallets` SET `agent_cents`").
		WithArgs(sqlmock.AnyArg(), uint(7), int64(5000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Debit(7, domain.BalanceAgent, 5000)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitInsufficientBalance(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWalletRepository(db)

	// Conditional update matches nothing, follow-up count finds the wallet.
	mock.ExpectExec("UPDATE `wallets` SET `main_cents`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := repo.Debit(7, domain.BalanceMain, 5000)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitMissingWallet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWalletRepository(db)

	mock.ExpectExec("UPDATE `wallets` SET `main_cents`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := repo.Debit(99, domain.BalanceMain, 100)
	require.ErrorIs(t, err, ErrWalletNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditMissingWallet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWalletRepository(db)

	mock.ExpectExec("UPDATE `wallets` SET `income_cents`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Credit(42, domain.BalanceIncome, 100)
	require.ErrorIs(t, err, ErrWalletNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitUnknownBalance(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewWalletRepository(db)

	require.ErrorIs(t, repo.Debit(1, "bogus", 100), ErrUnknownBalance)
	require.ErrorIs(t, repo.Credit(1, "bogus", 100), ErrUnknownBalance)
}
