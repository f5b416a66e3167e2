package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestCatalogRepositoryFindBrandAbsent(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewCatalogRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM brands WHERE UPPER(name) = UPPER($1)")).
		WithArgs("NOBRAND").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	brand, err := repo.FindBrand(context.Background(), "NOBRAND")
	require.NoError(t, err)
	require.Nil(t, brand)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositorySizeExists(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewCatalogRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM model_sizes WHERE model_id = $1 AND UPPER(size) = UPPER($2)")).
		WithArgs(int64(4), "7").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	exists, err := repo.SizeExists(context.Background(), 4, "7")
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM model_sizes WHERE model_id = $1 AND UPPER(size) = UPPER($2)")).
		WithArgs(int64(4), "9").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	exists, err = repo.SizeExists(context.Background(), 4, "9")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryDeleteModelCascade(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewCatalogRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM model_sizes WHERE model_id = $1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM model_materials WHERE model_id = $1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM models WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	existed, err := repo.DeleteModelCascade(context.Background(), 4)
	require.NoError(t, err)
	require.True(t, existed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryUpdateSizesByValueScopedToBrand(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewCatalogRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE model_sizes SET size = $1")).
		WithArgs("8", int64(2), "7").
		WillReturnResult(sqlmock.NewResult(0, 3))

	rows, err := repo.UpdateSizesByValue(context.Background(), 2, "7", "8")
	require.NoError(t, err)
	require.Equal(t, int64(3), rows)
	require.NoError(t, mock.ExpectationsWereMet())
}
