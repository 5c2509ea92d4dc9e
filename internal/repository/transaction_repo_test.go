package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
)

func TestFlipStatusWinner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectExec("UPDATE `transactions` SET `status`").
		WithArgs(domain.TxStatusCompleted, uint(12), domain.TxStatusPendingAgentAction).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.FlipStatus(12, domain.TxStatusPendingAgentAction, domain.TxStatusCompleted)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A transaction already flipped by a concurrent accept no longer matches the
// prior-status predicate; the loser must see ErrConcurrency, never a silent
// second completion.
func TestFlipStatusLoser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectExec("UPDATE `transactions` SET `status`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.FlipStatus(12, domain.TxStatusPendingAgentAction, domain.TxStatusCompleted)
	require.ErrorIs(t, err, ErrConcurrency)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFlipStatusCompletedIsTerminal(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	// Row exists but sits in completed; the conditional update cannot touch it.
	mock.ExpectExec("UPDATE `transactions` SET `status`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.FlipStatus(12, domain.TxStatusPendingAgentAction, domain.TxStatusFailed)
	require.ErrorIs(t, err, ErrConcurrency)
	require.NoError(t, mock.ExpectationsWereMet())
}
