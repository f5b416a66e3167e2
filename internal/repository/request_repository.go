package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jipjipmoney/keywords-api/internal/models"
)

const requestColumns = `id, requested_by, brand, model, submodel, sizes, materials, notes,
       category, status, edit_status, submitted_at, processed_by, processed_at,
       executed_by, executed_at, admin_notes`

// RequestRepository persists catalog change requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new request row and fills in the generated ID.
func (r *RequestRepository) Create(ctx context.Context, request *models.ModelRequest) error {
	if request.Category == "" {
		request.Category = models.CategoryAdd
	}
	if request.Status == "" {
		request.Status = models.StatusPending
	}
	if request.EditStatus == "" {
		request.EditStatus = models.EditPending
	}
	if request.SubmittedAt.IsZero() {
		request.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO model_requests
	(requested_by, brand, model, submodel, sizes, materials, notes, category, status, edit_status, submitted_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		request.RequestedBy,
		request.Brand,
		request.Model,
		request.Submodel,
		request.Sizes,
		request.Materials,
		request.Notes,
		request.Category,
		request.Status,
		request.EditStatus,
		request.SubmittedAt,
	).Scan(&request.ID); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// GetByID fetches a request by identifier.
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*models.ModelRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM model_requests WHERE id = $1`, requestColumns)
	var request models.ModelRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns requests matching the filter, newest submissions first.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.ModelRequest, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 6)
	builder.WriteString(fmt.Sprintf("SELECT %s FROM model_requests", requestColumns))

	conditions := make([]string, 0, 5)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.EditStatus != "" {
		args = append(args, filter.EditStatus)
		conditions = append(conditions, fmt.Sprintf("edit_status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Brand != "" {
		args = append(args, filter.Brand)
		conditions = append(conditions, fmt.Sprintf("brand = $%d", len(args)))
	}
	if filter.RequestedBy != "" {
		args = append(args, filter.RequestedBy)
		conditions = append(conditions, fmt.Sprintf("requested_by = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY submitted_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var requests []models.ModelRequest
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// DecisionParams groups the columns written on approve/reject.
type DecisionParams struct {
	ID          int64
	Status      models.RequestStatus
	ProcessedBy string
	ProcessedAt time.Time
	AdminNotes  *string
}

// UpdateDecision records an approve/reject decision. The update is conditional
// on the row still being pending; sql.ErrNoRows signals that another approver
// got there first.
func (r *RequestRepository) UpdateDecision(ctx context.Context, params DecisionParams) error {
	setParts := []string{
		"status = $1",
		"processed_by = $2",
		"processed_at = $3",
	}
	args := []interface{}{params.Status, params.ProcessedBy, params.ProcessedAt}
	if params.AdminNotes != nil {
		args = append(args, *params.AdminNotes)
		setParts = append(setParts, fmt.Sprintf("admin_notes = $%d", len(args)))
	}
	if params.Status == models.StatusApproved {
		setParts = append(setParts, fmt.Sprintf("edit_status = '%s'", models.EditPending))
	}
	args = append(args, params.ID)
	query := fmt.Sprintf("UPDATE model_requests SET %s WHERE id = $%d AND status = '%s'",
		strings.Join(setParts, ", "),
		len(args),
		models.StatusPending,
	)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update request decision: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check decision rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkExecuted flips edit_status to done, conditional on the request being
// approved and still awaiting execution.
func (r *RequestRepository) MarkExecuted(ctx context.Context, id int64, executedBy string, executedAt time.Time) error {
	query := fmt.Sprintf(`UPDATE model_requests
	SET edit_status = '%s', executed_by = $1, executed_at = $2
	WHERE id = $3 AND status = '%s' AND edit_status = '%s'`,
		models.EditDone, models.StatusApproved, models.EditPending)
	result, err := r.db.ExecContext(ctx, query, executedBy, executedAt, id)
	if err != nil {
		return fmt.Errorf("mark request executed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check executed rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
