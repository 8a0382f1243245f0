package repository_test

import (
	"context"
	"testing"

	"github.com/daleel/daleel-backend/internal/repository"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialRepository_IncrementDownloads(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repository.NewMaterialRepository(mock)
	ctx := context.Background()

	mock.ExpectExec("UPDATE materials SET downloads = downloads \\+").
		WithArgs(1, 42).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, r.IncrementDownloads(ctx, 42, 1))

	mock.ExpectExec("UPDATE materials SET downloads = downloads \\+").
		WithArgs(1, 43).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, r.IncrementDownloads(ctx, 43, 1), repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
