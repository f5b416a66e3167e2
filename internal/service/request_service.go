package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jipjipmoney/keywords-api/internal/dto"
	"github.com/jipjipmoney/keywords-api/internal/models"
	"github.com/jipjipmoney/keywords-api/internal/repository"
	appErrors "github.com/jipjipmoney/keywords-api/pkg/errors"
)

type requestStore interface {
	Create(ctx context.Context, request *models.ModelRequest) error
	GetByID(ctx context.Context, id int64) (*models.ModelRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.ModelRequest, error)
	UpdateDecision(ctx context.Context, params repository.DecisionParams) error
	MarkExecuted(ctx context.Context, id int64, executedBy string, executedAt time.Time) error
}

type auditAppender interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
}

type brandFinder interface {
	FindBrand(ctx context.Context, name string) (*models.Brand, error)
}

// RequestApplier applies an approved request's change to the catalog and
// returns the audit entries describing what actually changed.
type RequestApplier interface {
	Apply(ctx context.Context, request *models.ModelRequest, executor string) ([]models.AuditEntry, error)
}

// RequestService owns the change request lifecycle: submission, approval,
// rejection and execution. It holds no state between calls; every transition
// is a conditional update against the request store.
type RequestService struct {
	repo    requestStore
	audit   auditAppender
	brands  brandFinder
	applier RequestApplier
	logger  *zap.Logger
}

// NewRequestService constructs the service.
func NewRequestService(repo requestStore, audit auditAppender, brands brandFinder, applier RequestApplier, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{repo: repo, audit: audit, brands: brands, applier: applier, logger: logger}
}

// Submit validates and stores a new change request. No catalog mutation
// happens here.
func (s *RequestService) Submit(ctx context.Context, payload dto.SubmitRequestPayload, requester string) (*models.ModelRequest, error) {
	if strings.TrimSpace(requester) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "requester is required")
	}
	category := payload.Category
	if category == "" {
		category = models.CategoryAdd
	}

	request := &models.ModelRequest{
		RequestedBy: requester,
		Brand:       strings.TrimSpace(payload.Brand),
		Model:       strings.TrimSpace(payload.Model),
		Submodel:    strings.TrimSpace(payload.Submodel),
		Sizes:       strings.TrimSpace(payload.Sizes),
		Materials:   strings.TrimSpace(payload.Materials),
		Notes:       strings.TrimSpace(payload.Notes),
		Category:    category,
		Status:      models.StatusPending,
		EditStatus:  models.EditPending,
	}

	if request.Brand == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "brand is required")
	}

	switch category {
	case models.CategoryAdd:
		if err := s.requireKnownBrand(ctx, request.Brand); err != nil {
			return nil, err
		}
		if request.Model == "" || request.Submodel == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "model and submodel are required")
		}
	case models.CategoryEdit:
		if err := validateEditFields(request); err != nil {
			return nil, err
		}
	case models.CategoryDelete:
		if err := s.requireKnownBrand(ctx, request.Brand); err != nil {
			return nil, err
		}
		if request.Model == "" || request.Submodel == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "model and submodel are required")
		}
		if request.Notes == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a reason is required for delete requests")
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported category: %s", category))
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to save request")
	}
	return request, nil
}

// Approve records an approval decision. The first approver wins; any later
// caller gets an invalid state error and the row stays untouched.
func (s *RequestService) Approve(ctx context.Context, id int64, approver, notes string) (*models.ModelRequest, error) {
	return s.decide(ctx, id, models.StatusApproved, approver, notes)
}

// Reject records a rejection. Notes are mandatory so the requester learns why.
func (s *RequestService) Reject(ctx context.Context, id int64, approver, notes string) (*models.ModelRequest, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection notes are required")
	}
	return s.decide(ctx, id, models.StatusRejected, approver, notes)
}

func (s *RequestService) decide(ctx context.Context, id int64, status models.RequestStatus, approver, notes string) (*models.ModelRequest, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != models.StatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "request already processed")
	}

	now := time.Now().UTC()
	params := repository.DecisionParams{
		ID:          id,
		Status:      status,
		ProcessedBy: approver,
		ProcessedAt: now,
		AdminNotes:  optionalString(notes),
	}
	if err := s.repo.UpdateDecision(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "request already processed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to update request")
	}

	request.Status = status
	request.ProcessedBy = &approver
	request.ProcessedAt = &now
	if params.AdminNotes != nil {
		request.AdminNotes = params.AdminNotes
	}
	if status == models.StatusApproved {
		request.EditStatus = models.EditPending
	}
	return request, nil
}

// Execute applies an approved request to the catalog in one transaction, then
// marks it done and records the audit trail. Safe to retry: the catalog
// mutation is idempotent and the done flip is conditional.
func (s *RequestService) Execute(ctx context.Context, id int64, executor string) (*models.ModelRequest, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAwaitingExecution(request); err != nil {
		return nil, err
	}
	if s.applier == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "catalog applier not configured")
	}

	entries, err := s.applier.Apply(ctx, request, executor)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.MarkExecuted(ctx, id, executor, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "request already executed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to mark request executed")
	}

	for i := range entries {
		s.emitAudit(ctx, &entries[i])
	}

	request.EditStatus = models.EditDone
	request.ExecutedBy = &executor
	request.ExecutedAt = &now
	return request, nil
}

// MarkExecuted flips an approved request to done without touching the
// catalog, for changes applied through a separate manual tool.
func (s *RequestService) MarkExecuted(ctx context.Context, id int64, executor string) (*models.ModelRequest, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAwaitingExecution(request); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.MarkExecuted(ctx, id, executor, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "request already executed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to mark request executed")
	}

	request.EditStatus = models.EditDone
	request.ExecutedBy = &executor
	request.ExecutedAt = &now
	return request, nil
}

// List returns requests visible to the actor. Plain users only see their own
// submissions.
func (s *RequestService) List(ctx context.Context, query dto.RequestQuery, actor *models.JWTClaims) ([]models.ModelRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.RequestFilter{
		Status:     query.Status,
		EditStatus: query.EditStatus,
		Category:   query.Category,
		Brand:      strings.TrimSpace(query.Brand),
		Limit:      query.Limit,
		Offset:     query.Offset,
	}
	if actor.Role == models.RoleUser || query.Mine {
		filter.RequestedBy = actor.Username
	}
	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list requests")
	}
	return requests, nil
}

// Get returns one request, enforcing ownership for plain users.
func (s *RequestService) Get(ctx context.Context, id int64, actor *models.JWTClaims) (*models.ModelRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleUser && request.RequestedBy != actor.Username {
		return nil, appErrors.ErrForbidden
	}
	return request, nil
}

func (s *RequestService) load(ctx context.Context, id int64) (*models.ModelRequest, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load request")
	}
	return request, nil
}

func (s *RequestService) requireKnownBrand(ctx context.Context, name string) error {
	brand, err := s.brands.FindBrand(ctx, name)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to look up brand")
	}
	if brand == nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown brand: %s", name))
	}
	return nil
}

func (s *RequestService) emitAudit(ctx context.Context, entry *models.AuditEntry) {
	if s.audit == nil || entry == nil {
		return
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to persist audit entry",
			zap.String("category", string(entry.Category)),
			zap.String("action", string(entry.Action)),
			zap.Error(err))
	}
}

func requireAwaitingExecution(request *models.ModelRequest) error {
	if request.Status != models.StatusApproved {
		return appErrors.Clone(appErrors.ErrInvalidState, "request is not approved")
	}
	if request.EditStatus != models.EditPending {
		return appErrors.Clone(appErrors.ErrInvalidState, "request already executed")
	}
	return nil
}

func validateEditFields(request *models.ModelRequest) error {
	fields := map[string]string{
		"model":     request.Model,
		"submodel":  request.Submodel,
		"sizes":     request.Sizes,
		"materials": request.Materials,
	}
	supplied := 0
	for name, value := range fields {
		if value == "" {
			continue
		}
		supplied++
		if _, _, err := ParseEditPair(value); err != nil {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("%s edit must use format 'Old Value %s New Value'", name, models.EditDelimiter))
		}
	}
	if supplied == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one field to edit is required")
	}
	return nil
}

// ParseEditPair splits an "old → new" edit expression on the first delimiter
// occurrence. Both sides must be non-empty after trimming.
func ParseEditPair(value string) (string, string, error) {
	idx := strings.Index(value, models.EditDelimiter)
	if idx < 0 {
		return "", "", fmt.Errorf("missing %q delimiter", models.EditDelimiter)
	}
	oldValue := strings.TrimSpace(value[:idx])
	newValue := strings.TrimSpace(value[idx+len(models.EditDelimiter):])
	if oldValue == "" || newValue == "" {
		return "", "", fmt.Errorf("both sides of %q must be non-empty", models.EditDelimiter)
	}
	return oldValue, newValue, nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
