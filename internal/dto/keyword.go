package dto

// AddModelPayload creates a model/submodel pair with optional initial keyword
// lists, comma separated.
type AddModelPayload struct {
	Brand     string `json:"brand"`
	Model     string `json:"model"`
	Submodel  string `json:"submodel"`
	Sizes     string `json:"sizes"`
	Materials string `json:"materials"`
}

// AddKeywordPayload attaches one size or material value to a model.
type AddKeywordPayload struct {
	Value string `json:"value"`
}

// UpdateKeywordPayload replaces the value of an existing size or material row.
type UpdateKeywordPayload struct {
	Value string `json:"value"`
}

// RenameSubmodelPayload changes a model's submodel name.
type RenameSubmodelPayload struct {
	Name string `json:"name"`
}
