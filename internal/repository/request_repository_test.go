package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/jipjipmoney/keywords-api/internal/models"
)

func newRequestRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRequestRepositoryCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO model_requests")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	request := &models.ModelRequest{
		RequestedBy: "alice",
		Brand:       "CHANEL",
		Model:       "Classic Flap",
		Submodel:    "Medium",
		Sizes:       "7,8",
	}
	require.NoError(t, repo.Create(context.Background(), request))
	require.Equal(t, int64(7), request.ID)
	require.Equal(t, models.CategoryAdd, request.Category)
	require.Equal(t, models.StatusPending, request.Status)
	require.Equal(t, models.EditPending, request.EditStatus)
	require.False(t, request.SubmittedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	rows := sqlmock.NewRows([]string{"id", "requested_by", "brand", "model", "submodel", "sizes", "materials", "notes", "category", "status", "edit_status", "submitted_at", "processed_by", "processed_at", "executed_by", "executed_at", "admin_notes"}).
		AddRow(int64(1), "alice", "CHANEL", "Classic Flap", "Medium", "", "", "", "add", "pending", "pending", time.Now(), nil, nil, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, requested_by, brand")).
		WithArgs("pending", "alice").
		WillReturnRows(rows)

	requests, err := repo.List(context.Background(), models.RequestFilter{
		Status:      []models.RequestStatus{models.StatusPending},
		RequestedBy: "alice",
	})
	require.NoError(t, err)
	require.Len(t, requests, 1)
	require.Equal(t, "CHANEL", requests[0].Brand)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryUpdateDecisionConditional(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE model_requests SET")).
		WithArgs("approved", "admin", now, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateDecision(context.Background(), DecisionParams{
		ID:          5,
		Status:      models.StatusApproved,
		ProcessedBy: "admin",
		ProcessedAt: now,
	}))

	// Second writer loses: zero rows means the row left pending already.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE model_requests SET")).
		WithArgs("rejected", "other", now, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateDecision(context.Background(), DecisionParams{
		ID:          5,
		Status:      models.StatusRejected,
		ProcessedBy: "other",
		ProcessedAt: now,
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryMarkExecutedConditional(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE model_requests")).
		WithArgs("super", now, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkExecuted(context.Background(), 9, "super", now))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE model_requests")).
		WithArgs("super", now, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.MarkExecuted(context.Background(), 9, "super", now), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
