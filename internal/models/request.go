package models

import "time"

// EditDelimiter separates the old and new value in edit request fields,
// e.g. "Vintage → Classic". The arrow is an external contract shared with
// the legacy forms; values containing the arrow themselves are not supported.
const EditDelimiter = "→"

// RequestCategory enumerates supported change request categories.
type RequestCategory string

const (
	CategoryAdd    RequestCategory = "add"
	CategoryEdit   RequestCategory = "edit"
	CategoryDelete RequestCategory = "delete"
)

// RequestStatus captures the approval state of a change request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// EditStatus captures the execution state of an approved request.
type EditStatus string

const (
	EditPending EditStatus = "pending"
	EditDone    EditStatus = "done"
)

// ModelRequest is a proposed catalog change awaiting approval and execution.
// Rows are never deleted; the table is the permanent record of who asked for
// what.
type ModelRequest struct {
	ID          int64           `db:"id" json:"id"`
	RequestedBy string          `db:"requested_by" json:"requestedBy"`
	Brand       string          `db:"brand" json:"brand"`
	Model       string          `db:"model" json:"model"`
	Submodel    string          `db:"submodel" json:"submodel"`
	Sizes       string          `db:"sizes" json:"sizes,omitempty"`
	Materials   string          `db:"materials" json:"materials,omitempty"`
	Notes       string          `db:"notes" json:"notes,omitempty"`
	Category    RequestCategory `db:"category" json:"category"`
	Status      RequestStatus   `db:"status" json:"status"`
	EditStatus  EditStatus      `db:"edit_status" json:"editStatus"`
	SubmittedAt time.Time       `db:"submitted_at" json:"submittedAt"`
	ProcessedBy *string         `db:"processed_by" json:"processedBy,omitempty"`
	ProcessedAt *time.Time      `db:"processed_at" json:"processedAt,omitempty"`
	ExecutedBy  *string         `db:"executed_by" json:"executedBy,omitempty"`
	ExecutedAt  *time.Time      `db:"executed_at" json:"executedAt,omitempty"`
	AdminNotes  *string         `db:"admin_notes" json:"adminNotes,omitempty"`
}

// RequestFilter constrains request listing queries.
type RequestFilter struct {
	Status      []RequestStatus
	EditStatus  EditStatus
	Category    RequestCategory
	Brand       string
	RequestedBy string
	Limit       int
	Offset      int
}
