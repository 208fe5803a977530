package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"cityevents/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestTransactor_WithinTx_Commit(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE events SET confirmed_requests`).
		WithArgs(4, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx := NewTransactor(db)
	repo := NewEventRepository(db)
	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		// This statement must run on the transaction, not the bare pool.
		return repo.UpdateConfirmedRequests(ctx, 10, 4)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_WithinTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	tx := NewTransactor(db)
	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_WithinTx_ErrorPassesThroughUnwrapped(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx := NewTransactor(db)
	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		return domain.ErrLimitReached
	})
	require.ErrorIs(t, err, domain.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}
