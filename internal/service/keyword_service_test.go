package service

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/jipjipmoney/keywords-api/internal/dto"
	"github.com/jipjipmoney/keywords-api/internal/models"
	"github.com/jipjipmoney/keywords-api/internal/repository"
	appErrors "github.com/jipjipmoney/keywords-api/pkg/errors"
)

func newKeywordServiceMock(t *testing.T) (*KeywordService, sqlmock.Sqlmock, *auditAppenderStub, *invalidatorStub, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	audit := &auditAppenderStub{}
	invalidator := &invalidatorStub{}
	svc := NewKeywordService(repository.NewCatalogRepository(sqlx.NewDb(db, "sqlmock")), audit, invalidator, nil)
	return svc, mock, audit, invalidator, func() { db.Close() }
}

func expectModelContext(mock sqlmock.Sqlmock, modelID int64, brand, collection, name string) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT m.id AS model_id, b.name AS brand")).
		WithArgs(modelID).
		WillReturnRows(sqlmock.NewRows([]string{"model_id", "brand", "collection", "model_name"}).
			AddRow(modelID, brand, collection, name))
}

func TestKeywordServiceAddSizeRecordsBeforeAfter(t *testing.T) {
	svc, mock, audit, invalidator, cleanup := newKeywordServiceMock(t)
	defer cleanup()

	mock.ExpectBegin()
	expectModelContext(mock, 4, "CHANEL", "Classic Flap", "Medium")
	expectSizes(mock, 4, "7")
	expectSizeExists(mock, 4, "8", false)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO model_sizes")).
		WithArgs(int64(4), "8").
		WillReturnResult(sqlmock.NewResult(1, 1))
	expectSizes(mock, 4, "7", "8")
	mock.ExpectCommit()

	require.NoError(t, svc.AddSize(context.Background(), 4, "8", "admin"))

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	require.Equal(t, models.AuditCategorySizeMaterial, entry.Category)
	require.Equal(t, models.AuditActionAdd, entry.Action)
	require.Equal(t, "admin", entry.UserID)

	var oldValue, newValue map[string]string
	require.NoError(t, json.Unmarshal(entry.OldValue, &oldValue))
	require.NoError(t, json.Unmarshal(entry.NewValue, &newValue))
	require.Equal(t, "7", oldValue["size"])
	require.Equal(t, "7,8", newValue["size"])
	require.Equal(t, []string{"CHANEL"}, invalidator.brands)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestKeywordServiceAddSizeRejectsDuplicate(t *testing.T) {
	svc, mock, audit, _, cleanup := newKeywordServiceMock(t)
	defer cleanup()

	mock.ExpectBegin()
	expectModelContext(mock, 4, "CHANEL", "Classic Flap", "Medium")
	expectSizes(mock, 4, "7")
	expectSizeExists(mock, 4, "7", true)
	mock.ExpectRollback()

	err := svc.AddSize(context.Background(), 4, "7", "admin")
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
	require.Empty(t, audit.entries)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestKeywordServiceAddModelSeedsLists(t *testing.T) {
	svc, mock, audit, invalidator, cleanup := newKeywordServiceMock(t)
	defer cleanup()

	mock.ExpectBegin()
	expectBrand(mock, "HERMES", 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, brand_id, collection, model_name FROM models")).
		WithArgs(int64(2), "Kelly", "28").
		WillReturnRows(sqlmock.NewRows([]string{"id", "brand_id", "collection", "model_name"}))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO models")).
		WithArgs(int64(2), "Kelly", "28").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO model_sizes")).
		WithArgs(int64(9), "28").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO model_materials")).
		WithArgs(int64(9), "Epsom").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	model, err := svc.AddModel(context.Background(), dto.AddModelPayload{
		Brand:     "HERMES",
		Model:     "Kelly",
		Submodel:  "28",
		Sizes:     "28",
		Materials: "Epsom",
	}, "admin")
	require.NoError(t, err)
	require.Equal(t, int64(9), model.ID)

	require.Len(t, audit.entries, 1)
	var snapshot models.ModelSnapshot
	require.NoError(t, json.Unmarshal(audit.entries[0].NewValue, &snapshot))
	require.Equal(t, "Kelly", snapshot.Model)
	require.Equal(t, []string{"28"}, snapshot.Sizes)
	require.Equal(t, []string{"HERMES"}, invalidator.brands)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestKeywordServiceRenameSubmodel(t *testing.T) {
	svc, mock, audit, _, cleanup := newKeywordServiceMock(t)
	defer cleanup()

	expectModelContext(mock, 4, "CHANEL", "Classic Flap", "Medium")
	mock.ExpectExec(regexp.QuoteMeta("UPDATE models SET model_name = $1 WHERE id = $2")).
		WithArgs("Large", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.RenameSubmodel(context.Background(), 4, "Large", "admin"))

	require.Len(t, audit.entries, 1)
	var oldValue, newValue map[string]string
	require.NoError(t, json.Unmarshal(audit.entries[0].OldValue, &oldValue))
	require.NoError(t, json.Unmarshal(audit.entries[0].NewValue, &newValue))
	require.Equal(t, "Medium", oldValue["submodel"])
	require.Equal(t, "Large", newValue["submodel"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestKeywordServiceDeleteSubmodelSnapshots(t *testing.T) {
	svc, mock, audit, _, cleanup := newKeywordServiceMock(t)
	defer cleanup()

	mock.ExpectBegin()
	expectModelContext(mock, 4, "CHANEL", "Classic Flap", "Medium")
	expectSizes(mock, 4, "7", "8")
	expectMaterials(mock, 4, "Caviar")
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

	require.NoError(t, svc.DeleteSubmodel(context.Background(), 4, "admin"))

	require.Len(t, audit.entries, 1)
	require.Nil(t, audit.entries[0].NewValue)
	var snapshot models.ModelSnapshot
	require.NoError(t, json.Unmarshal(audit.entries[0].OldValue, &snapshot))
	require.Equal(t, []string{"7", "8"}, snapshot.Sizes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestKeywordServiceAddBrandColor(t *testing.T) {
	svc, mock, audit, _, cleanup := newKeywordServiceMock(t)
	defer cleanup()

	mock.ExpectBegin()
	expectBrand(mock, "CHANEL", 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT color FROM brand_colors")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"color"}).AddRow("Black"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM brand_colors")).
		WithArgs(int64(1), "Beige").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO brand_colors")).
		WithArgs(int64(1), "Beige").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT color FROM brand_colors")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"color"}).AddRow("Beige").AddRow("Black"))
	mock.ExpectCommit()

	require.NoError(t, svc.AddBrandColor(context.Background(), "CHANEL", "Beige", "admin"))

	require.Len(t, audit.entries, 1)
	require.Equal(t, models.AuditCategoryBrandKeyword, audit.entries[0].Category)
	var newValue map[string]string
	require.NoError(t, json.Unmarshal(audit.entries[0].NewValue, &newValue))
	require.Equal(t, "Beige,Black", newValue["color"])
	require.NoError(t, mock.ExpectationsWereMet())
}
