package service

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/jipjipmoney/keywords-api/internal/models"
	"github.com/jipjipmoney/keywords-api/internal/repository"
)

type invalidatorStub struct {
	brands []string
}

func (i *invalidatorStub) InvalidateBrand(ctx context.Context, brand string) {
	i.brands = append(i.brands, brand)
}

func newApplierMock(t *testing.T) (*CatalogApplier, sqlmock.Sqlmock, *invalidatorStub, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	invalidator := &invalidatorStub{}
	applier := NewCatalogApplier(repository.NewCatalogRepository(sqlx.NewDb(db, "sqlmock")), invalidator, nil)
	return applier, mock, invalidator, func() { db.Close() }
}

func expectBrand(mock sqlmock.Sqlmock, name string, id int64) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM brands")).
		WithArgs(name).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(id, name))
}

func expectModel(mock sqlmock.Sqlmock, brandID int64, collection, name string, id int64) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, brand_id, collection, model_name FROM models")).
		WithArgs(brandID, collection, name).
		WillReturnRows(sqlmock.NewRows([]string{"id", "brand_id", "collection", "model_name"}).
			AddRow(id, brandID, collection, name))
}

func expectSizes(mock sqlmock.Sqlmock, modelID int64, sizes ...string) {
	rows := sqlmock.NewRows([]string{"size"})
	for _, size := range sizes {
		rows.AddRow(size)
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT size FROM model_sizes")).
		WithArgs(modelID).
		WillReturnRows(rows)
}

func expectMaterials(mock sqlmock.Sqlmock, modelID int64, materials ...string) {
	rows := sqlmock.NewRows([]string{"material"})
	for _, material := range materials {
		rows.AddRow(material)
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT material FROM model_materials")).
		WithArgs(modelID).
		WillReturnRows(rows)
}

func expectSizeExists(mock sqlmock.Sqlmock, modelID int64, value string, exists bool) {
	rows := sqlmock.NewRows([]string{"id"})
	if exists {
		rows.AddRow(int64(99))
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM model_sizes")).
		WithArgs(modelID, value).
		WillReturnRows(rows)
}

func TestApplyAddDeduplicatesSizes(t *testing.T) {
	applier, mock, invalidator, cleanup := newApplierMock(t)
	defer cleanup()

	mock.ExpectBegin()
	expectBrand(mock, "CHANEL", 1)
	expectModel(mock, 1, "Classic Flap", "Medium", 4)
	expectSizes(mock, 4, "7")
	expectMaterials(mock, 4)

	// "7,8,8,9": 7 already present, the second 8 sees the first one's insert.
	expectSizeExists(mock, 4, "7", true)
	expectSizeExists(mock, 4, "8", false)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO model_sizes")).
		WithArgs(int64(4), "8").
		WillReturnResult(sqlmock.NewResult(1, 1))
	expectSizeExists(mock, 4, "8", true)
	expectSizeExists(mock, 4, "9", false)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO model_sizes")).
		WithArgs(int64(4), "9").
		WillReturnResult(sqlmock.NewResult(2, 1))

	expectSizes(mock, 4, "7", "8", "9")
	expectMaterials(mock, 4)
	mock.ExpectCommit()

	request := &models.ModelRequest{
		ID:       10,
		Brand:    "CHANEL",
		Model:    "Classic Flap",
		Submodel: "Medium",
		Sizes:    "7,8,8,9",
		Category: models.CategoryAdd,
	}
	entries, err := applier.Apply(context.Background(), request, "super")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	require.Equal(t, models.AuditCategorySizeMaterial, entry.Category)
	require.Equal(t, models.AuditActionAdd, entry.Action)

	var oldValue, newValue map[string]string
	require.NoError(t, json.Unmarshal(entry.OldValue, &oldValue))
	require.NoError(t, json.Unmarshal(entry.NewValue, &newValue))
	require.Equal(t, "7", oldValue["size"])
	require.Equal(t, "7,8,9", newValue["size"])

	require.Equal(t, []string{"CHANEL"}, invalidator.brands)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAddNewModelEmitsModelSnapshot(t *testing.T) {
	applier, mock, _, cleanup := newApplierMock(t)
	defer cleanup()

	mock.ExpectBegin()
	expectBrand(mock, "HERMES", 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, brand_id, collection, model_name FROM models")).
		WithArgs(int64(2), "Birkin", "25").
		WillReturnRows(sqlmock.NewRows([]string{"id", "brand_id", "collection", "model_name"}))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO models")).
		WithArgs(int64(2), "Birkin", "25").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(8)))
	expectSizes(mock, 8)
	expectMaterials(mock, 8)
	expectSizeExists(mock, 8, "25", false)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO model_sizes")).
		WithArgs(int64(8), "25").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM model_materials")).
		WithArgs(int64(8), "Togo").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO model_materials")).
		WithArgs(int64(8), "Togo").
		WillReturnResult(sqlmock.NewResult(1, 1))
	expectSizes(mock, 8, "25")
	expectMaterials(mock, 8, "Togo")
	mock.ExpectCommit()

	request := &models.ModelRequest{
		ID:        11,
		Brand:     "HERMES",
		Model:     "Birkin",
		Submodel:  "25",
		Sizes:     "25",
		Materials: "Togo",
		Category:  models.CategoryAdd,
	}
	entries, err := applier.Apply(context.Background(), request, "super")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.AuditCategoryModelSubmodel, entries[0].Category)
	require.Nil(t, entries[0].OldValue)

	var snapshot models.ModelSnapshot
	require.NoError(t, json.Unmarshal(entries[0].NewValue, &snapshot))
	require.Equal(t, "Birkin", snapshot.Model)
	require.Equal(t, []string{"25"}, snapshot.Sizes)
	require.Equal(t, []string{"Togo"}, snapshot.Materials)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyDeleteMissingModelIsNoOp(t *testing.T) {
	applier, mock, invalidator, cleanup := newApplierMock(t)
	defer cleanup()

	mock.ExpectBegin()
	expectBrand(mock, "CHANEL", 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, brand_id, collection, model_name FROM models")).
		WithArgs(int64(1), "Gone", "Already").
		WillReturnRows(sqlmock.NewRows([]string{"id", "brand_id", "collection", "model_name"}))
	mock.ExpectCommit()

	request := &models.ModelRequest{
		ID:       12,
		Brand:    "CHANEL",
		Model:    "Gone",
		Submodel: "Already",
		Category: models.CategoryDelete,
	}
	entries, err := applier.Apply(context.Background(), request, "super")
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Equal(t, []string{"CHANEL"}, invalidator.brands)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyDeleteCascadeSnapshotsWholeModel(t *testing.T) {
	applier, mock, _, cleanup := newApplierMock(t)
	defer cleanup()

	mock.ExpectBegin()
	expectBrand(mock, "CHANEL", 1)
	expectModel(mock, 1, "Classic Flap", "Medium", 4)
	expectSizes(mock, 4, "7", "8")
	expectMaterials(mock, 4, "Lambskin")
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM model_sizes WHERE model_id = $1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM model_materials WHERE model_id = $1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM models WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	request := &models.ModelRequest{
		ID:       13,
		Brand:    "CHANEL",
		Model:    "Classic Flap",
		Submodel: "Medium",
		Notes:    "discontinued",
		Category: models.CategoryDelete,
	}
	entries, err := applier.Apply(context.Background(), request, "super")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.AuditActionDelete, entries[0].Action)
	require.Nil(t, entries[0].NewValue)

	var snapshot models.ModelSnapshot
	require.NoError(t, json.Unmarshal(entries[0].OldValue, &snapshot))
	require.Equal(t, []string{"7", "8"}, snapshot.Sizes)
	require.Equal(t, []string{"Lambskin"}, snapshot.Materials)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyEditRenamesAcrossBrand(t *testing.T) {
	applier, mock, _, cleanup := newApplierMock(t)
	defer cleanup()

	mock.ExpectBegin()
	expectBrand(mock, "CHANEL", 1)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE model_sizes SET size = $1")).
		WithArgs("8", int64(1), "7").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	request := &models.ModelRequest{
		ID:       14,
		Brand:    "CHANEL",
		Sizes:    "7 → 8",
		Category: models.CategoryEdit,
	}
	entries, err := applier.Apply(context.Background(), request, "super")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	var oldValue, newValue map[string]string
	require.NoError(t, json.Unmarshal(entries[0].OldValue, &oldValue))
	require.NoError(t, json.Unmarshal(entries[0].NewValue, &newValue))
	require.Equal(t, "7", oldValue["size"])
	require.Equal(t, "8", newValue["size"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyEditZeroMatchesYieldsNoAudit(t *testing.T) {
	applier, mock, _, cleanup := newApplierMock(t)
	defer cleanup()

	mock.ExpectBegin()
	expectBrand(mock, "CHANEL", 1)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE model_sizes SET size = $1")).
		WithArgs("8", int64(1), "99").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	request := &models.ModelRequest{
		ID:       15,
		Brand:    "CHANEL",
		Sizes:    "99 → 8",
		Category: models.CategoryEdit,
	}
	entries, err := applier.Apply(context.Background(), request, "super")
	require.NoError(t, err)
	require.Empty(t, entries)
	require.NoError(t, mock.ExpectationsWereMet())
}
