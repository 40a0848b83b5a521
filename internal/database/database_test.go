package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("insert failed: %w", &pgconn.PgError{Code: CodeUniqueViolation})

	assert.True(t, HasCode(err, CodeUniqueViolation))
	assert.False(t, HasCode(err, CodeForeignKeyViolation))
	assert.False(t, HasCode(errors.New("plain"), CodeUniqueViolation))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(fmt.Errorf("wrapped: %w", pgx.ErrNoRows)))
	assert.False(t, IsNoRows(errors.New("other")))
}

func TestMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	for range migrations {
		mock.ExpectExec(".+").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	db := &DB{Pool: mock}
	require.NoError(t, db.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_StopsOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(".+").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(".+").WillReturnError(errors.New("boom"))

	db := &DB{Pool: mock}
	err = db.Migrate(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 2 failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}
