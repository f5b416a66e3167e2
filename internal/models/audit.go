package models

import (
	"encoding/json"
	"strings"
	"time"
)

// AuditCategory groups audit entries by the catalog area they touch.
type AuditCategory string

const (
	AuditCategorySizeMaterial  AuditCategory = "size_material"
	AuditCategoryModelSubmodel AuditCategory = "model_submodel"
	AuditCategoryBrandKeyword  AuditCategory = "brand_keyword"
)

// AuditAction enumerates the mutation kinds recorded in the audit log.
type AuditAction string

const (
	AuditActionAdd    AuditAction = "add"
	AuditActionEdit   AuditAction = "edit"
	AuditActionDelete AuditAction = "delete"
)

// AuditEntry is an immutable record of a catalog mutation actually performed,
// whether via an executed request or a direct keyword-manager edit. OldValue
// and NewValue hold serialized snapshots of the complete before/after state of
// the affected lists, never just the delta, so the catalog can be
// reconstructed by replaying entries chronologically.
type AuditEntry struct {
	ID        int64         `db:"id" json:"id"`
	Category  AuditCategory `db:"category" json:"category"`
	Action    AuditAction   `db:"action" json:"action"`
	Brand     string        `db:"brand" json:"brand"`
	Model     string        `db:"model" json:"model,omitempty"`
	Submodel  string        `db:"submodel" json:"submodel,omitempty"`
	UserID    string        `db:"user_id" json:"userId"`
	OldValue  []byte        `db:"old_value" json:"oldValue,omitempty"`
	NewValue  []byte        `db:"new_value" json:"newValue,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
}

// AuditFilter constrains audit listing queries.
type AuditFilter struct {
	Category AuditCategory
	Action   AuditAction
	Brand    string
	UserID   string
	Limit    int
	Offset   int
}

// Snapshot is a typed before/after value serialized into an audit entry.
type Snapshot interface {
	JSON() ([]byte, error)
}

// ListSnapshot captures the full value list of one keyword field, serialized
// as {"<field>": "v1,v2,..."} to stay readable next to the legacy entries.
type ListSnapshot struct {
	Field  string
	Values []string
}

// JSON implements Snapshot.
func (s ListSnapshot) JSON() ([]byte, error) {
	return json.Marshal(map[string]string{s.Field: strings.Join(s.Values, ",")})
}

// ModelSnapshot captures a whole model with its keyword lists, used when a
// model is created or cascade-deleted.
type ModelSnapshot struct {
	Model     string   `json:"model"`
	Submodel  string   `json:"submodel"`
	Sizes     []string `json:"sizes,omitempty"`
	Materials []string `json:"materials,omitempty"`
}

// JSON implements Snapshot.
func (s ModelSnapshot) JSON() ([]byte, error) {
	return json.Marshal(s)
}

// MustJSON serializes a snapshot, returning nil when the snapshot is nil.
// Marshal failures cannot happen for the concrete snapshot types above.
func MustJSON(s Snapshot) []byte {
	if s == nil {
		return nil
	}
	b, err := s.JSON()
	if err != nil {
		return nil
	}
	return b
}
