package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jipjipmoney/keywords-api/internal/models"
	appErrors "github.com/jipjipmoney/keywords-api/pkg/errors"
	"github.com/jipjipmoney/keywords-api/pkg/export"
)

// Export formats supported by the download endpoints.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type requestLister interface {
	List(ctx context.Context, filter models.RequestFilter) ([]models.ModelRequest, error)
}

type auditLister interface {
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, error)
}

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
}

// ExportDocument is a rendered download with its HTTP metadata.
type ExportDocument struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders the request ledger and the audit log as CSV or PDF
// downloads.
type ExportService struct {
	requests requestLister
	audit    auditLister
	csv      tableRenderer
	pdf      tableRenderer
}

// NewExportService constructs the service.
func NewExportService(requests requestLister, audit auditLister, csv, pdf tableRenderer) *ExportService {
	return &ExportService{requests: requests, audit: audit, csv: csv, pdf: pdf}
}

// Requests renders the request ledger matching the filter.
func (s *ExportService) Requests(ctx context.Context, filter models.RequestFilter, format string) (*ExportDocument, error) {
	items, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list requests")
	}

	table := export.Table{
		Title:   "Model Requests",
		Headers: []string{"ID", "Requested By", "Brand", "Model", "Submodel", "Sizes", "Materials", "Category", "Status", "Edit Status", "Submitted At", "Processed By", "Executed By"},
	}
	for _, item := range items {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", item.ID),
			item.RequestedBy,
			item.Brand,
			item.Model,
			item.Submodel,
			item.Sizes,
			item.Materials,
			string(item.Category),
			string(item.Status),
			string(item.EditStatus),
			item.SubmittedAt.Format(time.RFC3339),
			derefString(item.ProcessedBy),
			derefString(item.ExecutedBy),
		})
	}
	return s.render(table, format, "model-requests")
}

// AuditLog renders the audit trail matching the filter.
func (s *ExportService) AuditLog(ctx context.Context, filter models.AuditFilter, format string) (*ExportDocument, error) {
	entries, err := s.audit.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list audit entries")
	}

	table := export.Table{
		Title:   "Audit Log",
		Headers: []string{"ID", "Category", "Action", "Brand", "Model", "Submodel", "User", "Old Value", "New Value", "Created At"},
	}
	for _, entry := range entries {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", entry.ID),
			string(entry.Category),
			string(entry.Action),
			entry.Brand,
			entry.Model,
			entry.Submodel,
			entry.UserID,
			string(entry.OldValue),
			string(entry.NewValue),
			entry.CreatedAt.Format(time.RFC3339),
		})
	}
	return s.render(table, format, "audit-log")
}

func (s *ExportService) render(table export.Table, format, baseName string) (*ExportDocument, error) {
	stamp := time.Now().UTC().Format("20060102-150405")
	switch strings.ToLower(format) {
	case FormatCSV, "":
		content, err := s.csv.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportDocument{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("%s-%s.csv", baseName, stamp),
		}, nil
	case FormatPDF:
		content, err := s.pdf.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportDocument{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("%s-%s.pdf", baseName, stamp),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format: %s", format))
	}
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
