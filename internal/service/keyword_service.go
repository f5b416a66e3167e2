package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jipjipmoney/keywords-api/internal/dto"
	"github.com/jipjipmoney/keywords-api/internal/models"
	"github.com/jipjipmoney/keywords-api/internal/repository"
	appErrors "github.com/jipjipmoney/keywords-api/pkg/errors"
)

// KeywordService covers the keyword manager: direct catalog edits performed by
// admins without going through the request queue. Every mutation still writes
// an audit entry with the full before/after lists, so the trail stays complete
// regardless of which path changed the catalog.
type KeywordService struct {
	catalog     *repository.CatalogRepository
	audit       auditAppender
	invalidator brandCacheInvalidator
	logger      *zap.Logger
}

// NewKeywordService constructs the service.
func NewKeywordService(catalog *repository.CatalogRepository, audit auditAppender, invalidator brandCacheInvalidator, logger *zap.Logger) *KeywordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeywordService{catalog: catalog, audit: audit, invalidator: invalidator, logger: logger}
}

// AddBrand registers a new brand name. Idempotent on case-insensitive match.
func (s *KeywordService) AddBrand(ctx context.Context, name, actor string) (*models.Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "brand name is required")
	}
	existing, err := s.catalog.FindBrand(ctx, name)
	if err != nil {
		return nil, storeErr(err)
	}
	if existing != nil {
		return existing, nil
	}
	brand, err := s.catalog.CreateBrand(ctx, name)
	if err != nil {
		return nil, storeErr(err)
	}
	s.emit(ctx, models.AuditEntry{
		Category: models.AuditCategoryBrandKeyword,
		Action:   models.AuditActionAdd,
		Brand:    brand.Name,
		UserID:   actor,
		NewValue: models.MustJSON(models.ListSnapshot{Field: "brand", Values: []string{brand.Name}}),
	})
	return brand, nil
}

// AddModel creates a model/submodel pair under an existing brand, optionally
// seeding its size and material lists from comma separated input.
func (s *KeywordService) AddModel(ctx context.Context, payload dto.AddModelPayload, actor string) (*models.Model, error) {
	brandName := strings.TrimSpace(payload.Brand)
	collection := strings.TrimSpace(payload.Model)
	submodel := strings.TrimSpace(payload.Submodel)
	if brandName == "" || collection == "" || submodel == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "brand, model and submodel are required")
	}

	tx, err := s.catalog.BeginTx(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	repo := s.catalog.WithTx(tx)

	model, entry, err := s.addModelTx(ctx, repo, brandName, collection, submodel, payload.Sizes, payload.Materials, actor)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr(err)
	}

	s.emit(ctx, *entry)
	s.invalidate(ctx, brandName)
	return model, nil
}

func (s *KeywordService) addModelTx(ctx context.Context, repo *repository.CatalogRepository, brandName, collection, submodel, sizes, materials, actor string) (*models.Model, *models.AuditEntry, error) {
	brand, err := repo.FindBrand(ctx, brandName)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	if brand == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown brand: %s", brandName))
	}
	existing, err := repo.FindModel(ctx, brand.ID, collection, submodel)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	if existing != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "model already exists")
	}

	model, err := repo.CreateModel(ctx, brand.ID, collection, submodel)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	sizeValues := SplitCSV(sizes)
	for _, value := range sizeValues {
		if err := repo.InsertSize(ctx, model.ID, value); err != nil {
			return nil, nil, storeErr(err)
		}
	}
	materialValues := SplitCSV(materials)
	for _, value := range materialValues {
		if err := repo.InsertMaterial(ctx, model.ID, value); err != nil {
			return nil, nil, storeErr(err)
		}
	}

	entry := &models.AuditEntry{
		Category: models.AuditCategoryModelSubmodel,
		Action:   models.AuditActionAdd,
		Brand:    brand.Name,
		Model:    model.Collection,
		Submodel: model.ModelName,
		UserID:   actor,
		NewValue: models.MustJSON(models.ModelSnapshot{
			Model:     model.Collection,
			Submodel:  model.ModelName,
			Sizes:     sizeValues,
			Materials: materialValues,
		}),
	}
	return model, entry, nil
}

// AddSize attaches a size value to a model, rejecting case-insensitive
// duplicates.
func (s *KeywordService) AddSize(ctx context.Context, modelID int64, value, actor string) error {
	return s.addListValue(ctx, modelID, value, actor, "size")
}

// AddMaterial attaches a material value to a model.
func (s *KeywordService) AddMaterial(ctx context.Context, modelID int64, value, actor string) error {
	return s.addListValue(ctx, modelID, value, actor, "material")
}

func (s *KeywordService) addListValue(ctx context.Context, modelID int64, value, actor, field string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return appErrors.Clone(appErrors.ErrValidation, field+" value is required")
	}

	tx, err := s.catalog.BeginTx(ctx)
	if err != nil {
		return storeErr(err)
	}
	repo := s.catalog.WithTx(tx)

	mc, err := repo.GetModelContext(ctx, modelID)
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	if mc == nil {
		_ = tx.Rollback()
		return appErrors.ErrNotFound
	}

	before, exists, err := s.listAndCheck(ctx, repo, modelID, value, field)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if exists {
		_ = tx.Rollback()
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s %q already exists", field, value))
	}

	if field == "size" {
		err = repo.InsertSize(ctx, modelID, value)
	} else {
		err = repo.InsertMaterial(ctx, modelID, value)
	}
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	after, err := s.listField(ctx, repo, modelID, field)
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr(err)
	}

	s.emit(ctx, models.AuditEntry{
		Category: models.AuditCategorySizeMaterial,
		Action:   models.AuditActionAdd,
		Brand:    mc.Brand,
		Model:    mc.Collection,
		Submodel: mc.ModelName,
		UserID:   actor,
		OldValue: models.MustJSON(models.ListSnapshot{Field: field, Values: before}),
		NewValue: models.MustJSON(models.ListSnapshot{Field: field, Values: after}),
	})
	s.invalidate(ctx, mc.Brand)
	return nil
}

// UpdateSize replaces the value of one size row.
func (s *KeywordService) UpdateSize(ctx context.Context, sizeID int64, value, actor string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return appErrors.Clone(appErrors.ErrValidation, "size value is required")
	}

	tx, err := s.catalog.BeginTx(ctx)
	if err != nil {
		return storeErr(err)
	}
	repo := s.catalog.WithTx(tx)

	size, err := repo.GetSize(ctx, sizeID)
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	if size == nil {
		_ = tx.Rollback()
		return appErrors.ErrNotFound
	}
	mc, before, err := s.contextAndList(ctx, repo, size.ModelID, "size")
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := repo.UpdateSizeValue(ctx, sizeID, value); err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	after, err := repo.ListSizes(ctx, size.ModelID)
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr(err)
	}

	s.emitListEdit(ctx, mc, actor, "size", models.AuditActionEdit, before, after)
	s.invalidate(ctx, mc.Brand)
	return nil
}

// UpdateMaterial replaces the value of one material row.
func (s *KeywordService) UpdateMaterial(ctx context.Context, materialID int64, value, actor string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return appErrors.Clone(appErrors.ErrValidation, "material value is required")
	}

	tx, err := s.catalog.BeginTx(ctx)
	if err != nil {
		return storeErr(err)
	}
	repo := s.catalog.WithTx(tx)

	material, err := repo.GetMaterial(ctx, materialID)
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	if material == nil {
		_ = tx.Rollback()
		return appErrors.ErrNotFound
	}
	mc, before, err := s.contextAndList(ctx, repo, material.ModelID, "material")
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := repo.UpdateMaterialValue(ctx, materialID, value); err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	after, err := repo.ListMaterials(ctx, material.ModelID)
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr(err)
	}

	s.emitListEdit(ctx, mc, actor, "material", models.AuditActionEdit, before, after)
	s.invalidate(ctx, mc.Brand)
	return nil
}

// DeleteSize removes one size row.
func (s *KeywordService) DeleteSize(ctx context.Context, sizeID int64, actor string) error {
	tx, err := s.catalog.BeginTx(ctx)
	if err != nil {
		return storeErr(err)
	}
	repo := s.catalog.WithTx(tx)

	size, err := repo.GetSize(ctx, sizeID)
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	if size == nil {
		_ = tx.Rollback()
		return appErrors.ErrNotFound
	}
	mc, before, err := s.contextAndList(ctx, repo, size.ModelID, "size")
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := repo.DeleteSize(ctx, sizeID); err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	after, err := repo.ListSizes(ctx, size.ModelID)
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr(err)
	}

	s.emitListEdit(ctx, mc, actor, "size", models.AuditActionDelete, before, after)
	s.invalidate(ctx, mc.Brand)
	return nil
}

// DeleteMaterial removes one material row.
func (s *KeywordService) DeleteMaterial(ctx context.Context, materialID int64, actor string) error {
	tx, err := s.catalog.BeginTx(ctx)
	if err != nil {
		return storeErr(err)
	}
	repo := s.catalog.WithTx(tx)

	material, err := repo.GetMaterial(ctx, materialID)
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	if material == nil {
		_ = tx.Rollback()
		return appErrors.ErrNotFound
	}
	mc, before, err := s.contextAndList(ctx, repo, material.ModelID, "material")
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := repo.DeleteMaterial(ctx, materialID); err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	after, err := repo.ListMaterials(ctx, material.ModelID)
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr(err)
	}

	s.emitListEdit(ctx, mc, actor, "material", models.AuditActionDelete, before, after)
	s.invalidate(ctx, mc.Brand)
	return nil
}

// RenameSubmodel changes a model's submodel name.
func (s *KeywordService) RenameSubmodel(ctx context.Context, modelID int64, name, actor string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return appErrors.Clone(appErrors.ErrValidation, "submodel name is required")
	}

	mc, err := s.catalog.GetModelContext(ctx, modelID)
	if err != nil {
		return storeErr(err)
	}
	if mc == nil {
		return appErrors.ErrNotFound
	}
	if _, err := s.catalog.RenameModelName(ctx, modelID, name); err != nil {
		return storeErr(err)
	}

	s.emit(ctx, models.AuditEntry{
		Category: models.AuditCategoryModelSubmodel,
		Action:   models.AuditActionEdit,
		Brand:    mc.Brand,
		Model:    mc.Collection,
		Submodel: name,
		UserID:   actor,
		OldValue: models.MustJSON(models.ListSnapshot{Field: "submodel", Values: []string{mc.ModelName}}),
		NewValue: models.MustJSON(models.ListSnapshot{Field: "submodel", Values: []string{name}}),
	})
	s.invalidate(ctx, mc.Brand)
	return nil
}

// DeleteSubmodel cascade-deletes a model together with its keyword lists,
// recording the full model snapshot as the old value.
func (s *KeywordService) DeleteSubmodel(ctx context.Context, modelID int64, actor string) error {
	tx, err := s.catalog.BeginTx(ctx)
	if err != nil {
		return storeErr(err)
	}
	repo := s.catalog.WithTx(tx)

	mc, err := repo.GetModelContext(ctx, modelID)
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	if mc == nil {
		_ = tx.Rollback()
		return appErrors.ErrNotFound
	}
	sizes, err := repo.ListSizes(ctx, modelID)
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	materials, err := repo.ListMaterials(ctx, modelID)
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	if _, err := repo.DeleteModelCascade(ctx, modelID); err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr(err)
	}

	s.emit(ctx, models.AuditEntry{
		Category: models.AuditCategoryModelSubmodel,
		Action:   models.AuditActionDelete,
		Brand:    mc.Brand,
		Model:    mc.Collection,
		Submodel: mc.ModelName,
		UserID:   actor,
		OldValue: models.MustJSON(models.ModelSnapshot{
			Model:     mc.Collection,
			Submodel:  mc.ModelName,
			Sizes:     sizes,
			Materials: materials,
		}),
	})
	s.invalidate(ctx, mc.Brand)
	return nil
}

// AddBrandColor attaches a color keyword to a brand.
func (s *KeywordService) AddBrandColor(ctx context.Context, brandName, color, actor string) error {
	return s.addBrandKeyword(ctx, brandName, color, actor, "color")
}

// AddBrandHardware attaches a hardware keyword to a brand.
func (s *KeywordService) AddBrandHardware(ctx context.Context, brandName, hardware, actor string) error {
	return s.addBrandKeyword(ctx, brandName, hardware, actor, "hardware")
}

func (s *KeywordService) addBrandKeyword(ctx context.Context, brandName, value, actor, field string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return appErrors.Clone(appErrors.ErrValidation, field+" value is required")
	}

	tx, err := s.catalog.BeginTx(ctx)
	if err != nil {
		return storeErr(err)
	}
	repo := s.catalog.WithTx(tx)

	brand, err := repo.FindBrand(ctx, brandName)
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	if brand == nil {
		_ = tx.Rollback()
		return appErrors.ErrNotFound
	}

	var before []string
	var exists bool
	if field == "color" {
		before, err = repo.ListBrandColors(ctx, brand.ID)
		if err == nil {
			exists, err = repo.BrandColorExists(ctx, brand.ID, value)
		}
	} else {
		before, err = repo.ListBrandHardwares(ctx, brand.ID)
		if err == nil {
			exists, err = repo.BrandHardwareExists(ctx, brand.ID, value)
		}
	}
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	if exists {
		_ = tx.Rollback()
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s %q already exists", field, value))
	}

	if field == "color" {
		err = repo.InsertBrandColor(ctx, brand.ID, value)
	} else {
		err = repo.InsertBrandHardware(ctx, brand.ID, value)
	}
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}

	var after []string
	if field == "color" {
		after, err = repo.ListBrandColors(ctx, brand.ID)
	} else {
		after, err = repo.ListBrandHardwares(ctx, brand.ID)
	}
	if err != nil {
		_ = tx.Rollback()
		return storeErr(err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr(err)
	}

	s.emit(ctx, models.AuditEntry{
		Category: models.AuditCategoryBrandKeyword,
		Action:   models.AuditActionAdd,
		Brand:    brand.Name,
		UserID:   actor,
		OldValue: models.MustJSON(models.ListSnapshot{Field: field, Values: before}),
		NewValue: models.MustJSON(models.ListSnapshot{Field: field, Values: after}),
	})
	s.invalidate(ctx, brand.Name)
	return nil
}

func (s *KeywordService) listField(ctx context.Context, repo *repository.CatalogRepository, modelID int64, field string) ([]string, error) {
	if field == "size" {
		return repo.ListSizes(ctx, modelID)
	}
	return repo.ListMaterials(ctx, modelID)
}

func (s *KeywordService) listAndCheck(ctx context.Context, repo *repository.CatalogRepository, modelID int64, value, field string) ([]string, bool, error) {
	before, err := s.listField(ctx, repo, modelID, field)
	if err != nil {
		return nil, false, storeErr(err)
	}
	var exists bool
	if field == "size" {
		exists, err = repo.SizeExists(ctx, modelID, value)
	} else {
		exists, err = repo.MaterialExists(ctx, modelID, value)
	}
	if err != nil {
		return nil, false, storeErr(err)
	}
	return before, exists, nil
}

func (s *KeywordService) contextAndList(ctx context.Context, repo *repository.CatalogRepository, modelID int64, field string) (*repository.ModelContext, []string, error) {
	mc, err := repo.GetModelContext(ctx, modelID)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	if mc == nil {
		return nil, nil, appErrors.ErrNotFound
	}
	list, err := s.listField(ctx, repo, modelID, field)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	return mc, list, nil
}

func (s *KeywordService) emitListEdit(ctx context.Context, mc *repository.ModelContext, actor, field string, action models.AuditAction, before, after []string) {
	s.emit(ctx, models.AuditEntry{
		Category: models.AuditCategorySizeMaterial,
		Action:   action,
		Brand:    mc.Brand,
		Model:    mc.Collection,
		Submodel: mc.ModelName,
		UserID:   actor,
		OldValue: models.MustJSON(models.ListSnapshot{Field: field, Values: before}),
		NewValue: models.MustJSON(models.ListSnapshot{Field: field, Values: after}),
	})
}

func (s *KeywordService) emit(ctx context.Context, entry models.AuditEntry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Append(ctx, &entry); err != nil {
		s.logger.Warn("failed to persist audit entry",
			zap.String("category", string(entry.Category)),
			zap.String("action", string(entry.Action)),
			zap.Error(err))
	}
}

func (s *KeywordService) invalidate(ctx context.Context, brand string) {
	if s.invalidator == nil {
		return
	}
	s.invalidator.InvalidateBrand(ctx, brand)
}
