package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
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

func newSettlement(db *gorm.DB) *SettlementService {
	return NewSettlementService(
		db,
		repository.NewWalletRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewUserRepository(db),
		nil, // audit is best effort, nil-safe
		nil,
	)
}

// The paired-deposit property: agent debit, user credit and both audit rows
// commit together.
func TestProcessDepositCommitsPair(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSettlement(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `wallets` SET `agent_cents`").
		WillReturnResult(sqlmock.NewResult(0, 1)) // agent debit
	mock.ExpectExec("UPDATE `wallets` SET `main_cents`").
		WillReturnResult(sqlmock.NewResult(0, 1)) // user credit
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(101, 1)) // user-side record
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(102, 1)) // agent-side record
	mock.ExpectExec("UPDATE `transactions` SET `counterpart_id`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := svc.ProcessDeposit(context.Background(), 3, 7, 25000)
	require.NoError(t, err)
	require.Equal(t, domain.TxTypeDeposit, tx.Type)
	require.Equal(t, int64(25000), tx.AmountCents)
	require.Equal(t, domain.TxStatusCompleted, tx.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

// When the agent debit guard fails nothing else runs and the transaction
// rolls back: neither wallet changes, no records land.
func TestProcessDepositInsufficientAgentBalance(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSettlement(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `wallets` SET `agent_cents`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := svc.ProcessDeposit(context.Background(), 3, 7, 25000)
	require.ErrorIs(t, err, ErrInsufficientAgentBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessDepositAgentMissing(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSettlement(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `wallets` SET `agent_cents`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	_, err := svc.ProcessDeposit(context.Background(), 99, 7, 25000)
	require.ErrorIs(t, err, ErrAgentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessDepositRejectsNonPositiveAmount(t *testing.T) {
	db, _ := newMockDB(t)
	svc := newSettlement(db)

	_, err := svc.ProcessDeposit(context.Background(), 3, 7, 0)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.ProcessDeposit(context.Background(), 3, 7, -50)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func pendingWithdrawalRows(id, userID, agentID uint, amount int64, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "type", "amount_cents", "balance", "status", "agent_id"}).
		AddRow(id, userID, domain.TxTypeWithdraw, amount, domain.BalanceMain, status, agentID)
}

func TestAcceptWithdrawal(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSettlement(db)

	mock.ExpectQuery("SELECT (.+) FROM `transactions`").
		WillReturnRows(pendingWithdrawalRows(55, 7, 3, -25000, domain.TxStatusPendingAgentAction))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `wallets` SET `agent_cents`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `transactions` SET `status`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := svc.AcceptWithdrawal(context.Background(), 3, 55)
	require.NoError(t, err)
	require.Equal(t, domain.TxStatusCompleted, tx.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

// The raced accept: the status flip matches zero rows, the agent credit
// rolls back, the caller sees the concurrency error.
func TestAcceptWithdrawalLosesRace(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSettlement(db)

	mock.ExpectQuery("SELECT (.+) FROM `transactions`").
		WillReturnRows(pendingWithdrawalRows(55, 7, 3, -25000, domain.TxStatusPendingAgentAction))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `wallets` SET `agent_cents`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `transactions` SET `status`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.AcceptWithdrawal(context.Background(), 3, 55)
	require.ErrorIs(t, err, repository.ErrConcurrency)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptWithdrawalAlreadyCompleted(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSettlement(db)

	mock.ExpectQuery("SELECT (.+) FROM `transactions`").
		WillReturnRows(pendingWithdrawalRows(55, 7, 3, -25000, domain.TxStatusCompleted))

	_, err := svc.AcceptWithdrawal(context.Background(), 3, 55)
	require.ErrorIs(t, err, ErrNotPending)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptWithdrawalWrongAgent(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSettlement(db)

	mock.ExpectQuery("SELECT (.+) FROM `transactions`").
		WillReturnRows(pendingWithdrawalRows(55, 7, 3, -25000, domain.TxStatusPendingAgentAction))

	_, err := svc.AcceptWithdrawal(context.Background(), 4, 55)
	require.ErrorIs(t, err, ErrUnauthorizedAgent)
	require.NoError(t, mock.ExpectationsWereMet())
}
