package dto

import "github.com/jipjipmoney/keywords-api/internal/models"

// SubmitRequestPayload is the body for submitting a catalog change request.
// For edit requests the populated fields carry "old → new" pairs.
type SubmitRequestPayload struct {
	Brand     string                 `json:"brand"`
	Category  models.RequestCategory `json:"category"`
	Model     string                 `json:"model"`
	Submodel  string                 `json:"submodel"`
	Sizes     string                 `json:"sizes"`
	Materials string                 `json:"materials"`
	Notes     string                 `json:"notes"`
}

// DecisionPayload captures the approver's note on approve/reject.
type DecisionPayload struct {
	Notes string `json:"notes"`
}

// RequestQuery mirrors supported request listing filters.
type RequestQuery struct {
	Status     []models.RequestStatus
	EditStatus models.EditStatus
	Category   models.RequestCategory
	Brand      string
	Mine       bool
	Limit      int
	Offset     int
}
