package service

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
)

func userRow(id uint, referredBy *uint) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "referred_by_id"})
	if referredBy == nil {
		rows.AddRow(id, nil)
	} else {
		rows.AddRow(id, *referredBy)
	}
	return rows
}

// A two-deep chain: distribution credits both ancestors and stops when the
// chain ends, well before the five configured levels are exhausted.
func TestDistributeStopsAtChainEnd(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCommissionService(
		db,
		repository.NewUserRepository(db),
		repository.NewWalletRepository(db),
		repository.NewTransactionRepository(db),
		nil, // default rates
	)

	u11, u12 := uint(11), uint(12)

	mock.ExpectQuery("SELECT (.+) FROM `users`").WillReturnRows(userRow(10, &u11)) // origin
	mock.ExpectQuery("SELECT (.+) FROM `users`").WillReturnRows(userRow(11, &u12)) // level 1
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `wallets` SET `income_cents`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(201, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT (.+) FROM `users`").WillReturnRows(userRow(12, nil)) // level 2, end of chain
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `wallets` SET `income_cents`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(202, 1))
	mock.ExpectCommit()

	svc.Distribute(10, 100000, "plan")
	require.NoError(t, mock.ExpectationsWereMet())
}

// Origin with no referrer: no queries beyond the origin lookup, no credits.
func TestDistributeNoUpline(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCommissionService(
		db,
		repository.NewUserRepository(db),
		repository.NewWalletRepository(db),
		repository.NewTransactionRepository(db),
		nil,
	)

	mock.ExpectQuery("SELECT (.+) FROM `users`").WillReturnRows(userRow(10, nil))

	svc.Distribute(10, 100000, "task")
	require.NoError(t, mock.ExpectationsWereMet())
}

// Sub-cent levels are skipped entirely: 100 cents at 0.5% floors to zero,
// so levels 4 and 5 produce no wallet write and no commission row.
func TestDistributeSkipsZeroCuts(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCommissionService(
		db,
		repository.NewUserRepository(db),
		repository.NewWalletRepository(db),
		repository.NewTransactionRepository(db),
		[]int64{50}, // one level at 0.5%
	)

	u11 := uint(11)
	mock.ExpectQuery("SELECT (.+) FROM `users`").WillReturnRows(userRow(10, &u11))
	mock.ExpectQuery("SELECT (.+) FROM `users`").WillReturnRows(userRow(11, nil))
	// No Begin/Exec expected: the cut is zero.

	svc.Distribute(10, 100, "task")
	require.NoError(t, mock.ExpectationsWereMet())
}
