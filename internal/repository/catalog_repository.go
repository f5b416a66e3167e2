package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jipjipmoney/keywords-api/internal/models"
)

// CatalogRepository reads and mutates the reference catalog. All writes used
// by request execution and the keyword manager go through a transaction-bound
// copy obtained via WithTx, so one logical operation is one transaction.
type CatalogRepository struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db, q: db}
}

// BeginTx opens a catalog transaction.
func (r *CatalogRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

// WithTx returns a repository bound to the given transaction.
func (r *CatalogRepository) WithTx(tx *sqlx.Tx) *CatalogRepository {
	return &CatalogRepository{db: r.db, q: tx}
}

// ListBrandNames returns all brand names sorted alphabetically.
func (r *CatalogRepository) ListBrandNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := sqlx.SelectContext(ctx, r.q, &names, `SELECT DISTINCT name FROM brands ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return names, nil
}

// FindBrand locates a brand by case-insensitive name. Returns nil when absent.
func (r *CatalogRepository) FindBrand(ctx context.Context, name string) (*models.Brand, error) {
	var brand models.Brand
	err := sqlx.GetContext(ctx, r.q, &brand,
		`SELECT id, name FROM brands WHERE UPPER(name) = UPPER($1)`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find brand: %w", err)
	}
	return &brand, nil
}

// CreateBrand inserts a brand row.
func (r *CatalogRepository) CreateBrand(ctx context.Context, name string) (*models.Brand, error) {
	brand := models.Brand{Name: name}
	if err := r.q.QueryRowxContext(ctx,
		`INSERT INTO brands (name) VALUES ($1) RETURNING id`, name).Scan(&brand.ID); err != nil {
		return nil, fmt.Errorf("create brand: %w", err)
	}
	return &brand, nil
}

// FindModel locates a model by brand and case-insensitive collection/name
// pair. Returns nil when absent.
func (r *CatalogRepository) FindModel(ctx context.Context, brandID int64, collection, modelName string) (*models.Model, error) {
	var model models.Model
	err := sqlx.GetContext(ctx, r.q, &model,
		`SELECT id, brand_id, collection, model_name FROM models
		 WHERE brand_id = $1 AND UPPER(collection) = UPPER($2) AND UPPER(model_name) = UPPER($3)`,
		brandID, collection, modelName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find model: %w", err)
	}
	return &model, nil
}

// CreateModel inserts a model row.
func (r *CatalogRepository) CreateModel(ctx context.Context, brandID int64, collection, modelName string) (*models.Model, error) {
	model := models.Model{BrandID: brandID, Collection: collection, ModelName: modelName}
	if err := r.q.QueryRowxContext(ctx,
		`INSERT INTO models (brand_id, collection, model_name) VALUES ($1, $2, $3) RETURNING id`,
		brandID, collection, modelName).Scan(&model.ID); err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}
	return &model, nil
}

// ModelContext carries the naming context of a model for audit entries.
type ModelContext struct {
	ModelID    int64  `db:"model_id"`
	Brand      string `db:"brand"`
	Collection string `db:"collection"`
	ModelName  string `db:"model_name"`
}

// GetModelContext resolves brand/collection/model names for a model ID.
// Returns nil when the model no longer exists.
func (r *CatalogRepository) GetModelContext(ctx context.Context, modelID int64) (*ModelContext, error) {
	var mc ModelContext
	err := sqlx.GetContext(ctx, r.q, &mc,
		`SELECT m.id AS model_id, b.name AS brand, m.collection, m.model_name
		 FROM models m JOIN brands b ON m.brand_id = b.id
		 WHERE m.id = $1`, modelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get model context: %w", err)
	}
	return &mc, nil
}

// ListModelsForBrand returns all models under a brand name, sorted by
// collection then model name.
func (r *CatalogRepository) ListModelsForBrand(ctx context.Context, brand string) ([]models.Model, error) {
	var result []models.Model
	if err := sqlx.SelectContext(ctx, r.q, &result,
		`SELECT m.id, m.brand_id, m.collection, m.model_name
		 FROM models m JOIN brands b ON m.brand_id = b.id
		 WHERE UPPER(b.name) = UPPER($1)
		 ORDER BY m.collection, m.model_name`, brand); err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return result, nil
}

// ListSizes returns the size values for a model in store sort order.
func (r *CatalogRepository) ListSizes(ctx context.Context, modelID int64) ([]string, error) {
	var sizes []string
	if err := sqlx.SelectContext(ctx, r.q, &sizes,
		`SELECT size FROM model_sizes WHERE model_id = $1 ORDER BY size`, modelID); err != nil {
		return nil, fmt.Errorf("list sizes: %w", err)
	}
	return sizes, nil
}

// ListMaterials returns the material values for a model in store sort order.
func (r *CatalogRepository) ListMaterials(ctx context.Context, modelID int64) ([]string, error) {
	var materials []string
	if err := sqlx.SelectContext(ctx, r.q, &materials,
		`SELECT material FROM model_materials WHERE model_id = $1 ORDER BY material`, modelID); err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materials, nil
}

// SizeExists reports whether a size value is already attached to the model,
// case-insensitively.
func (r *CatalogRepository) SizeExists(ctx context.Context, modelID int64, value string) (bool, error) {
	var id int64
	err := sqlx.GetContext(ctx, r.q, &id,
		`SELECT id FROM model_sizes WHERE model_id = $1 AND UPPER(size) = UPPER($2)`, modelID, value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check size: %w", err)
	}
	return true, nil
}

// MaterialExists reports whether a material value is already attached to the
// model, case-insensitively.
func (r *CatalogRepository) MaterialExists(ctx context.Context, modelID int64, value string) (bool, error) {
	var id int64
	err := sqlx.GetContext(ctx, r.q, &id,
		`SELECT id FROM model_materials WHERE model_id = $1 AND UPPER(material) = UPPER($2)`, modelID, value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check material: %w", err)
	}
	return true, nil
}

// InsertSize attaches a size value to a model.
func (r *CatalogRepository) InsertSize(ctx context.Context, modelID int64, value string) error {
	if _, err := r.q.ExecContext(ctx,
		`INSERT INTO model_sizes (model_id, size) VALUES ($1, $2)`, modelID, value); err != nil {
		return fmt.Errorf("insert size: %w", err)
	}
	return nil
}

// InsertMaterial attaches a material value to a model.
func (r *CatalogRepository) InsertMaterial(ctx context.Context, modelID int64, value string) error {
	if _, err := r.q.ExecContext(ctx,
		`INSERT INTO model_materials (model_id, material) VALUES ($1, $2)`, modelID, value); err != nil {
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

// GetSize fetches a size row by ID. Returns nil when absent.
func (r *CatalogRepository) GetSize(ctx context.Context, id int64) (*models.ModelSize, error) {
	var size models.ModelSize
	err := sqlx.GetContext(ctx, r.q, &size,
		`SELECT id, model_id, size FROM model_sizes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get size: %w", err)
	}
	return &size, nil
}

// GetMaterial fetches a material row by ID. Returns nil when absent.
func (r *CatalogRepository) GetMaterial(ctx context.Context, id int64) (*models.ModelMaterial, error) {
	var material models.ModelMaterial
	err := sqlx.GetContext(ctx, r.q, &material,
		`SELECT id, model_id, material FROM model_materials WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get material: %w", err)
	}
	return &material, nil
}

// UpdateSizeValue replaces a size row's value.
func (r *CatalogRepository) UpdateSizeValue(ctx context.Context, id int64, value string) error {
	if _, err := r.q.ExecContext(ctx,
		`UPDATE model_sizes SET size = $1 WHERE id = $2`, value, id); err != nil {
		return fmt.Errorf("update size: %w", err)
	}
	return nil
}

// UpdateMaterialValue replaces a material row's value.
func (r *CatalogRepository) UpdateMaterialValue(ctx context.Context, id int64, value string) error {
	if _, err := r.q.ExecContext(ctx,
		`UPDATE model_materials SET material = $1 WHERE id = $2`, value, id); err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	return nil
}

// DeleteSize removes a size row, reporting whether it existed.
func (r *CatalogRepository) DeleteSize(ctx context.Context, id int64) (bool, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM model_sizes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete size: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check size delete: %w", err)
	}
	return rows > 0, nil
}

// DeleteMaterial removes a material row, reporting whether it existed.
func (r *CatalogRepository) DeleteMaterial(ctx context.Context, id int64) (bool, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM model_materials WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete material: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check material delete: %w", err)
	}
	return rows > 0, nil
}

// DeleteSizesByValue removes all size rows under a model matching the value.
func (r *CatalogRepository) DeleteSizesByValue(ctx context.Context, modelID int64, value string) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		`DELETE FROM model_sizes WHERE model_id = $1 AND UPPER(size) = UPPER($2)`, modelID, value)
	if err != nil {
		return 0, fmt.Errorf("delete sizes by value: %w", err)
	}
	return result.RowsAffected()
}

// DeleteMaterialsByValue removes all material rows under a model matching the
// value.
func (r *CatalogRepository) DeleteMaterialsByValue(ctx context.Context, modelID int64, value string) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		`DELETE FROM model_materials WHERE model_id = $1 AND UPPER(material) = UPPER($2)`, modelID, value)
	if err != nil {
		return 0, fmt.Errorf("delete materials by value: %w", err)
	}
	return result.RowsAffected()
}

// RenameModelName replaces a model's submodel name, reporting whether the row
// existed.
func (r *CatalogRepository) RenameModelName(ctx context.Context, modelID int64, newName string) (bool, error) {
	result, err := r.q.ExecContext(ctx,
		`UPDATE models SET model_name = $1 WHERE id = $2`, newName, modelID)
	if err != nil {
		return false, fmt.Errorf("rename model: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rename: %w", err)
	}
	return rows > 0, nil
}

// DeleteModelCascade removes a model together with its sizes and materials.
// Reports whether the model row existed.
func (r *CatalogRepository) DeleteModelCascade(ctx context.Context, modelID int64) (bool, error) {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM model_sizes WHERE model_id = $1`, modelID); err != nil {
		return false, fmt.Errorf("delete model sizes: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, `DELETE FROM model_materials WHERE model_id = $1`, modelID); err != nil {
		return false, fmt.Errorf("delete model materials: %w", err)
	}
	result, err := r.q.ExecContext(ctx, `DELETE FROM models WHERE id = $1`, modelID)
	if err != nil {
		return false, fmt.Errorf("delete model: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check model delete: %w", err)
	}
	return rows > 0, nil
}

// UpdateCollectionByName renames a collection across all of a brand's models
// matching the old value exactly. Returns the number of rows touched; zero is
// a legitimate no-op for best-effort edits.
func (r *CatalogRepository) UpdateCollectionByName(ctx context.Context, brandID int64, oldValue, newValue string) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		`UPDATE models SET collection = $1 WHERE brand_id = $2 AND collection = $3`,
		newValue, brandID, oldValue)
	if err != nil {
		return 0, fmt.Errorf("update collection: %w", err)
	}
	return result.RowsAffected()
}

// UpdateModelNameByName renames a submodel across all of a brand's models
// matching the old value exactly.
func (r *CatalogRepository) UpdateModelNameByName(ctx context.Context, brandID int64, oldValue, newValue string) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		`UPDATE models SET model_name = $1 WHERE brand_id = $2 AND model_name = $3`,
		newValue, brandID, oldValue)
	if err != nil {
		return 0, fmt.Errorf("update model name: %w", err)
	}
	return result.RowsAffected()
}

// UpdateSizesByValue replaces a size value across all models of a brand.
func (r *CatalogRepository) UpdateSizesByValue(ctx context.Context, brandID int64, oldValue, newValue string) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		`UPDATE model_sizes SET size = $1
		 FROM models
		 WHERE model_sizes.model_id = models.id AND models.brand_id = $2 AND model_sizes.size = $3`,
		newValue, brandID, oldValue)
	if err != nil {
		return 0, fmt.Errorf("update sizes: %w", err)
	}
	return result.RowsAffected()
}

// UpdateMaterialsByValue replaces a material value across all models of a
// brand.
func (r *CatalogRepository) UpdateMaterialsByValue(ctx context.Context, brandID int64, oldValue, newValue string) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		`UPDATE model_materials SET material = $1
		 FROM models
		 WHERE model_materials.model_id = models.id AND models.brand_id = $2 AND model_materials.material = $3`,
		newValue, brandID, oldValue)
	if err != nil {
		return 0, fmt.Errorf("update materials: %w", err)
	}
	return result.RowsAffected()
}

// ListBrandColors returns a brand's color keywords sorted.
func (r *CatalogRepository) ListBrandColors(ctx context.Context, brandID int64) ([]string, error) {
	var colors []string
	if err := sqlx.SelectContext(ctx, r.q, &colors,
		`SELECT color FROM brand_colors WHERE brand_id = $1 ORDER BY color`, brandID); err != nil {
		return nil, fmt.Errorf("list colors: %w", err)
	}
	return colors, nil
}

// ListBrandHardwares returns a brand's hardware keywords sorted.
func (r *CatalogRepository) ListBrandHardwares(ctx context.Context, brandID int64) ([]string, error) {
	var hardwares []string
	if err := sqlx.SelectContext(ctx, r.q, &hardwares,
		`SELECT hardware FROM brand_hardwares WHERE brand_id = $1 ORDER BY hardware`, brandID); err != nil {
		return nil, fmt.Errorf("list hardwares: %w", err)
	}
	return hardwares, nil
}

// BrandColorExists reports whether a color is already attached to the brand.
func (r *CatalogRepository) BrandColorExists(ctx context.Context, brandID int64, color string) (bool, error) {
	var id int64
	err := sqlx.GetContext(ctx, r.q, &id,
		`SELECT id FROM brand_colors WHERE brand_id = $1 AND UPPER(color) = UPPER($2)`, brandID, color)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check color: %w", err)
	}
	return true, nil
}

// BrandHardwareExists reports whether a hardware is already attached to the
// brand.
func (r *CatalogRepository) BrandHardwareExists(ctx context.Context, brandID int64, hardware string) (bool, error) {
	var id int64
	err := sqlx.GetContext(ctx, r.q, &id,
		`SELECT id FROM brand_hardwares WHERE brand_id = $1 AND UPPER(hardware) = UPPER($2)`, brandID, hardware)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check hardware: %w", err)
	}
	return true, nil
}

// InsertBrandColor attaches a color keyword to a brand.
func (r *CatalogRepository) InsertBrandColor(ctx context.Context, brandID int64, color string) error {
	if _, err := r.q.ExecContext(ctx,
		`INSERT INTO brand_colors (brand_id, color) VALUES ($1, $2)`, brandID, color); err != nil {
		return fmt.Errorf("insert color: %w", err)
	}
	return nil
}

// InsertBrandHardware attaches a hardware keyword to a brand.
func (r *CatalogRepository) InsertBrandHardware(ctx context.Context, brandID int64, hardware string) error {
	if _, err := r.q.ExecContext(ctx,
		`INSERT INTO brand_hardwares (brand_id, hardware) VALUES ($1, $2)`, brandID, hardware); err != nil {
		return fmt.Errorf("insert hardware: %w", err)
	}
	return nil
}
