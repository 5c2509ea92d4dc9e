package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smmonirhasan92/man2man-sub004/internal/models"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
)

func newTaskService(db *gorm.DB) *TaskService {
	users := repository.NewUserRepository(db)
	wallet := repository.NewWalletRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	return NewTaskService(
		db,
		repository.NewTaskRepository(db),
		repository.NewPlanRepository(db),
		users,
		wallet,
		txRepo,
		NewCommissionService(db, users, wallet, txRepo, nil),
		nil, // no redis, exercise the db fallback guard
		10*time.Second,
	)
}

func activeUserPlan(now time.Time) *models.UserPlan {
	return &models.UserPlan{
		ID:        5,
		UserID:    7,
		PlanID:    2,
		IsActive:  true,
		ExpiresAt: now.Add(24 * time.Hour),
		Plan: models.Plan{
			ID:          2,
			ServerID:    "sv2",
			DailyTasks:  5,
			RewardCents: 120,
		},
	}
}

func TestProcessCooldownDBFallback(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTaskService(db)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	last := now.Add(-5 * time.Second)
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "last_task_at"}).AddRow(7, last))

	_, err := svc.Process(context.Background(), activeUserPlan(now), 3)
	require.ErrorIs(t, err, ErrCooldown)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessDailyQuotaDBFallback(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTaskService(db)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	last := now.Add(-time.Minute)
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "last_task_at"}).AddRow(7, last))
	mock.ExpectQuery("SELECT count(.+) FROM `task_completions`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5)) // quota is 5

	_, err := svc.Process(context.Background(), activeUserPlan(now), 3)
	require.ErrorIs(t, err, ErrDailyQuota)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessExpiredPlan(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTaskService(db)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	up := activeUserPlan(now)
	up.ExpiresAt = now.Add(-time.Hour)

	_, err := svc.Process(context.Background(), up, 3)
	require.ErrorIs(t, err, ErrPlanExpired)
	require.NoError(t, mock.ExpectationsWereMet())
}

func adRow(id uint, serverID string, active bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "server_id", "is_active"}).
		AddRow(id, "Install app", serverID, active)
}

func TestProcessWrongServer(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTaskService(db)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "last_task_at"}).AddRow(7, nil))
	mock.ExpectQuery("SELECT count(.+) FROM `task_completions`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM `task_ads`").
		WillReturnRows(adRow(3, "sv9", true))

	_, err := svc.Process(context.Background(), activeUserPlan(now), 3)
	require.ErrorIs(t, err, ErrWrongServer)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessInactiveAd(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTaskService(db)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "last_task_at"}).AddRow(7, nil))
	mock.ExpectQuery("SELECT count(.+) FROM `task_completions`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM `task_ads`").
		WillReturnRows(adRow(3, "sv2", false))

	_, err := svc.Process(context.Background(), activeUserPlan(now), 3)
	require.ErrorIs(t, err, ErrAdInactive)
	require.NoError(t, mock.ExpectationsWereMet())
}

// The settlement path: completion row, income credit, ledger record, quota
// bump and cooldown timestamp commit as one transaction, then the upline walk
// runs outside it.
func TestProcessSettlesReward(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTaskService(db)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "last_task_at"}).AddRow(7, nil))
	mock.ExpectQuery("SELECT count(.+) FROM `task_completions`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM `task_ads`").
		WillReturnRows(adRow(3, "sv2", true))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `task_completions`").
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectExec("UPDATE `wallets` SET `income_cents`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(301, 1))
	mock.ExpectExec("UPDATE `user_plans`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `users`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Commission walk: origin has no referrer, nothing to pay.
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "referred_by_id"}).AddRow(7, nil))

	completion, err := svc.Process(context.Background(), activeUserPlan(now), 3)
	require.NoError(t, err)
	require.Equal(t, uint(7), completion.UserID)
	require.Equal(t, "2026-03-10", completion.TaskDay)
	require.Equal(t, int64(120), completion.RewardCents)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Same ad, same day: the unique index rejects the second insert and the
// transaction rolls back with nothing credited.
func TestProcessDuplicateRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTaskService(db)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "last_task_at"}).AddRow(7, nil))
	mock.ExpectQuery("SELECT count(.+) FROM `task_completions`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM `task_ads`").
		WillReturnRows(adRow(3, "sv2", true))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `task_completions`").
		WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	_, err := svc.Process(context.Background(), activeUserPlan(now), 3)
	require.ErrorIs(t, err, repository.ErrDuplicateTask)
	require.NoError(t, mock.ExpectationsWereMet())
}
