package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jipjipmoney/keywords-api/internal/models"
	"github.com/jipjipmoney/keywords-api/internal/repository"
	appErrors "github.com/jipjipmoney/keywords-api/pkg/errors"
)

type brandCacheInvalidator interface {
	InvalidateBrand(ctx context.Context, brand string)
}

// CatalogApplier mutates the reference catalog for approved requests. Each
// Apply call runs in a single catalog transaction; on error nothing is
// committed and the request stays retryable. The mutation logic is written to
// be idempotent so a retry against a partially-reflecting catalog is safe.
type CatalogApplier struct {
	catalog     *repository.CatalogRepository
	invalidator brandCacheInvalidator
	logger      *zap.Logger
}

// NewCatalogApplier constructs the applier.
func NewCatalogApplier(catalog *repository.CatalogRepository, invalidator brandCacheInvalidator, logger *zap.Logger) *CatalogApplier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogApplier{catalog: catalog, invalidator: invalidator, logger: logger}
}

// Apply dispatches on the request category and returns the audit entries for
// every list actually changed, with full before/after values.
func (a *CatalogApplier) Apply(ctx context.Context, request *models.ModelRequest, executor string) ([]models.AuditEntry, error) {
	tx, err := a.catalog.BeginTx(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to open catalog transaction")
	}
	repo := a.catalog.WithTx(tx)

	var entries []models.AuditEntry
	switch request.Category {
	case models.CategoryAdd:
		entries, err = a.applyAdd(ctx, repo, request, executor)
	case models.CategoryEdit:
		entries, err = a.applyEdit(ctx, repo, request, executor)
	case models.CategoryDelete:
		entries, err = a.applyDelete(ctx, repo, request, executor)
	default:
		err = appErrors.Clone(appErrors.ErrValidation, "unsupported request category")
	}
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to commit catalog transaction")
	}
	if a.invalidator != nil {
		a.invalidator.InvalidateBrand(ctx, request.Brand)
	}
	return entries, nil
}

func (a *CatalogApplier) applyAdd(ctx context.Context, repo *repository.CatalogRepository, request *models.ModelRequest, executor string) ([]models.AuditEntry, error) {
	brand, err := repo.FindBrand(ctx, request.Brand)
	if err != nil {
		return nil, storeErr(err)
	}
	if brand == nil {
		if brand, err = repo.CreateBrand(ctx, request.Brand); err != nil {
			return nil, storeErr(err)
		}
	}

	model, err := repo.FindModel(ctx, brand.ID, request.Model, request.Submodel)
	if err != nil {
		return nil, storeErr(err)
	}
	created := false
	if model == nil {
		if model, err = repo.CreateModel(ctx, brand.ID, request.Model, request.Submodel); err != nil {
			return nil, storeErr(err)
		}
		created = true
	}

	oldSizes, err := repo.ListSizes(ctx, model.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	oldMaterials, err := repo.ListMaterials(ctx, model.ID)
	if err != nil {
		return nil, storeErr(err)
	}

	sizesChanged, err := a.insertMissingSizes(ctx, repo, model.ID, request.Sizes)
	if err != nil {
		return nil, err
	}
	materialsChanged, err := a.insertMissingMaterials(ctx, repo, model.ID, request.Materials)
	if err != nil {
		return nil, err
	}

	newSizes, err := repo.ListSizes(ctx, model.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	newMaterials, err := repo.ListMaterials(ctx, model.ID)
	if err != nil {
		return nil, storeErr(err)
	}

	if created {
		entry := models.AuditEntry{
			Category: models.AuditCategoryModelSubmodel,
			Action:   models.AuditActionAdd,
			Brand:    brand.Name,
			Model:    model.Collection,
			Submodel: model.ModelName,
			UserID:   executor,
			NewValue: models.MustJSON(models.ModelSnapshot{
				Model:     model.Collection,
				Submodel:  model.ModelName,
				Sizes:     newSizes,
				Materials: newMaterials,
			}),
		}
		return []models.AuditEntry{entry}, nil
	}

	var entries []models.AuditEntry
	if sizesChanged {
		entries = append(entries, listAudit(models.AuditActionAdd, brand.Name, model, executor, "size", oldSizes, newSizes))
	}
	if materialsChanged {
		entries = append(entries, listAudit(models.AuditActionAdd, brand.Name, model, executor, "material", oldMaterials, newMaterials))
	}
	return entries, nil
}

func (a *CatalogApplier) applyEdit(ctx context.Context, repo *repository.CatalogRepository, request *models.ModelRequest, executor string) ([]models.AuditEntry, error) {
	brand, err := repo.FindBrand(ctx, request.Brand)
	if err != nil {
		return nil, storeErr(err)
	}
	if brand == nil {
		// Nothing to rewrite; edits are best-effort replacements.
		a.logger.Info("edit request targets unknown brand, nothing to do",
			zap.Int64("request_id", request.ID), zap.String("brand", request.Brand))
		return nil, nil
	}

	type editField struct {
		name  string
		value string
		apply func(ctx context.Context, brandID int64, oldValue, newValue string) (int64, error)
	}
	fields := []editField{
		{"model", request.Model, repo.UpdateCollectionByName},
		{"submodel", request.Submodel, repo.UpdateModelNameByName},
		{"size", request.Sizes, repo.UpdateSizesByValue},
		{"material", request.Materials, repo.UpdateMaterialsByValue},
	}

	var entries []models.AuditEntry
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		oldValue, newValue, err := ParseEditPair(field.value)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		rows, err := field.apply(ctx, brand.ID, oldValue, newValue)
		if err != nil {
			return nil, storeErr(err)
		}
		if rows == 0 {
			a.logger.Info("edit matched no rows",
				zap.Int64("request_id", request.ID),
				zap.String("field", field.name),
				zap.String("old", oldValue))
			continue
		}
		category := models.AuditCategorySizeMaterial
		if field.name == "model" || field.name == "submodel" {
			category = models.AuditCategoryModelSubmodel
		}
		entries = append(entries, models.AuditEntry{
			Category: category,
			Action:   models.AuditActionEdit,
			Brand:    brand.Name,
			Model:    request.Model,
			Submodel: request.Submodel,
			UserID:   executor,
			OldValue: models.MustJSON(models.ListSnapshot{Field: field.name, Values: []string{oldValue}}),
			NewValue: models.MustJSON(models.ListSnapshot{Field: field.name, Values: []string{newValue}}),
		})
	}
	return entries, nil
}

func (a *CatalogApplier) applyDelete(ctx context.Context, repo *repository.CatalogRepository, request *models.ModelRequest, executor string) ([]models.AuditEntry, error) {
	brand, err := repo.FindBrand(ctx, request.Brand)
	if err != nil {
		return nil, storeErr(err)
	}
	if brand == nil {
		return nil, nil
	}
	model, err := repo.FindModel(ctx, brand.ID, request.Model, request.Submodel)
	if err != nil {
		return nil, storeErr(err)
	}
	if model == nil {
		// Already gone; deletes are idempotent.
		return nil, nil
	}

	if request.Sizes == "" && request.Materials == "" {
		sizes, err := repo.ListSizes(ctx, model.ID)
		if err != nil {
			return nil, storeErr(err)
		}
		materials, err := repo.ListMaterials(ctx, model.ID)
		if err != nil {
			return nil, storeErr(err)
		}
		if _, err := repo.DeleteModelCascade(ctx, model.ID); err != nil {
			return nil, storeErr(err)
		}
		entry := models.AuditEntry{
			Category: models.AuditCategoryModelSubmodel,
			Action:   models.AuditActionDelete,
			Brand:    brand.Name,
			Model:    model.Collection,
			Submodel: model.ModelName,
			UserID:   executor,
			OldValue: models.MustJSON(models.ModelSnapshot{
				Model:     model.Collection,
				Submodel:  model.ModelName,
				Sizes:     sizes,
				Materials: materials,
			}),
		}
		return []models.AuditEntry{entry}, nil
	}

	var entries []models.AuditEntry
	if request.Sizes != "" {
		oldSizes, err := repo.ListSizes(ctx, model.ID)
		if err != nil {
			return nil, storeErr(err)
		}
		removed := int64(0)
		for _, value := range SplitCSV(request.Sizes) {
			rows, err := repo.DeleteSizesByValue(ctx, model.ID, value)
			if err != nil {
				return nil, storeErr(err)
			}
			removed += rows
		}
		if removed > 0 {
			newSizes, err := repo.ListSizes(ctx, model.ID)
			if err != nil {
				return nil, storeErr(err)
			}
			entries = append(entries, listAudit(models.AuditActionDelete, brand.Name, model, executor, "size", oldSizes, newSizes))
		}
	}
	if request.Materials != "" {
		oldMaterials, err := repo.ListMaterials(ctx, model.ID)
		if err != nil {
			return nil, storeErr(err)
		}
		removed := int64(0)
		for _, value := range SplitCSV(request.Materials) {
			rows, err := repo.DeleteMaterialsByValue(ctx, model.ID, value)
			if err != nil {
				return nil, storeErr(err)
			}
			removed += rows
		}
		if removed > 0 {
			newMaterials, err := repo.ListMaterials(ctx, model.ID)
			if err != nil {
				return nil, storeErr(err)
			}
			entries = append(entries, listAudit(models.AuditActionDelete, brand.Name, model, executor, "material", oldMaterials, newMaterials))
		}
	}
	return entries, nil
}

func (a *CatalogApplier) insertMissingSizes(ctx context.Context, repo *repository.CatalogRepository, modelID int64, raw string) (bool, error) {
	changed := false
	for _, value := range SplitCSV(raw) {
		exists, err := repo.SizeExists(ctx, modelID, value)
		if err != nil {
			return changed, storeErr(err)
		}
		if exists {
			continue
		}
		if err := repo.InsertSize(ctx, modelID, value); err != nil {
			return changed, storeErr(err)
		}
		changed = true
	}
	return changed, nil
}

func (a *CatalogApplier) insertMissingMaterials(ctx context.Context, repo *repository.CatalogRepository, modelID int64, raw string) (bool, error) {
	changed := false
	for _, value := range SplitCSV(raw) {
		exists, err := repo.MaterialExists(ctx, modelID, value)
		if err != nil {
			return changed, storeErr(err)
		}
		if exists {
			continue
		}
		if err := repo.InsertMaterial(ctx, modelID, value); err != nil {
			return changed, storeErr(err)
		}
		changed = true
	}
	return changed, nil
}

func listAudit(action models.AuditAction, brand string, model *models.Model, userID, field string, before, after []string) models.AuditEntry {
	return models.AuditEntry{
		Category: models.AuditCategorySizeMaterial,
		Action:   action,
		Brand:    brand,
		Model:    model.Collection,
		Submodel: model.ModelName,
		UserID:   userID,
		OldValue: models.MustJSON(models.ListSnapshot{Field: field, Values: before}),
		NewValue: models.MustJSON(models.ListSnapshot{Field: field, Values: after}),
	}
}

// SplitCSV splits a comma separated field into trimmed, non-empty values.
func SplitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func storeErr(err error) error {
	return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "catalog store operation failed")
}
