package models

// Brand is a top-level entry in the reference catalog.
type Brand struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Model is a (collection, model_name) pair under a brand. The legacy forms
// call the collection "model" and the model_name "submodel"; the pair must be
// unique per brand, case-insensitively.
type Model struct {
	ID         int64  `db:"id" json:"id"`
	BrandID    int64  `db:"brand_id" json:"brandId"`
	Collection string `db:"collection" json:"collection"`
	ModelName  string `db:"model_name" json:"modelName"`
}

// ModelSize is a size keyword attached to a model.
type ModelSize struct {
	ID      int64  `db:"id" json:"id"`
	ModelID int64  `db:"model_id" json:"modelId"`
	Size    string `db:"size" json:"size"`
}

// ModelMaterial is a material keyword attached to a model.
type ModelMaterial struct {
	ID       int64  `db:"id" json:"id"`
	ModelID  int64  `db:"model_id" json:"modelId"`
	Material string `db:"material" json:"material"`
}

// BrandColor is a color keyword attached to a brand.
type BrandColor struct {
	ID      int64  `db:"id" json:"id"`
	BrandID int64  `db:"brand_id" json:"brandId"`
	Color   string `db:"color" json:"color"`
}

// BrandHardware is a hardware keyword attached to a brand.
type BrandHardware struct {
	ID       int64  `db:"id" json:"id"`
	BrandID  int64  `db:"brand_id" json:"brandId"`
	Hardware string `db:"hardware" json:"hardware"`
}

// ModelKeywords is the per-model slice of the dropdown cascade: a model with
// its size and material lists in store sort order.
type ModelKeywords struct {
	ID        int64    `json:"id"`
	ModelName string   `json:"modelName"`
	Sizes     []string `json:"sizes,omitempty"`
	Materials []string `json:"materials,omitempty"`
}

// BrandKeywords aggregates everything the forms need for one brand:
// collections with their models, plus brand-level colors and hardwares.
type BrandKeywords struct {
	Brand       string                     `json:"brand"`
	Collections map[string][]ModelKeywords `json:"collections"`
	Colors      []string                   `json:"colors,omitempty"`
	Hardwares   []string                   `json:"hardwares,omitempty"`
}
