package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jipjipmoney/keywords-api/internal/dto"
	"github.com/jipjipmoney/keywords-api/internal/service"
	appErrors "github.com/jipjipmoney/keywords-api/pkg/errors"
	"github.com/jipjipmoney/keywords-api/pkg/response"
)

// KeywordHandler exposes the keyword manager's direct edit endpoints.
type KeywordHandler struct {
	keywords *service.KeywordService
}

// NewKeywordHandler constructs KeywordHandler.
func NewKeywordHandler(keywords *service.KeywordService) *KeywordHandler {
	return &KeywordHandler{keywords: keywords}
}

type namePayload struct {
	Name string `json:"name"`
}

type valuePayload struct {
	Value string `json:"value"`
}

// AddBrand godoc
// @Summary Register a brand
// @Tags Keywords
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body namePayload true "Brand name"
// @Success 201 {object} response.Envelope
// @Router /keywords/brands [post]
func (h *KeywordHandler) AddBrand(c *gin.Context) {
	var payload namePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	brand, err := h.keywords.AddBrand(c.Request.Context(), payload.Name, usernameFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, brand)
}

// AddModel godoc
// @Summary Create a model/submodel pair
// @Tags Keywords
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AddModelPayload true "Model payload"
// @Success 201 {object} response.Envelope
// @Router /keywords/models [post]
func (h *KeywordHandler) AddModel(c *gin.Context) {
	var payload dto.AddModelPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	model, err := h.keywords.AddModel(c.Request.Context(), payload, usernameFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, model)
}

// AddSize godoc
// @Summary Attach a size to a model
// @Tags Keywords
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Model ID"
// @Param payload body dto.AddKeywordPayload true "Size value"
// @Success 201 {object} response.Envelope
// @Router /keywords/models/{id}/sizes [post]
func (h *KeywordHandler) AddSize(c *gin.Context) {
	id, payload, ok := h.bindValue(c)
	if !ok {
		return
	}
	if err := h.keywords.AddSize(c.Request.Context(), id, payload.Value, usernameFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"value": payload.Value})
}

// AddMaterial godoc
// @Summary Attach a material to a model
// @Tags Keywords
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Model ID"
// @Param payload body dto.AddKeywordPayload true "Material value"
// @Success 201 {object} response.Envelope
// @Router /keywords/models/{id}/materials [post]
func (h *KeywordHandler) AddMaterial(c *gin.Context) {
	id, payload, ok := h.bindValue(c)
	if !ok {
		return
	}
	if err := h.keywords.AddMaterial(c.Request.Context(), id, payload.Value, usernameFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"value": payload.Value})
}

// UpdateSize godoc
// @Summary Replace a size value
// @Tags Keywords
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Size ID"
// @Param payload body dto.UpdateKeywordPayload true "New value"
// @Success 204 {object} nil
// @Router /keywords/sizes/{id} [put]
func (h *KeywordHandler) UpdateSize(c *gin.Context) {
	id, payload, ok := h.bindValue(c)
	if !ok {
		return
	}
	if err := h.keywords.UpdateSize(c.Request.Context(), id, payload.Value, usernameFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateMaterial godoc
// @Summary Replace a material value
// @Tags Keywords
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Param payload body dto.UpdateKeywordPayload true "New value"
// @Success 204 {object} nil
// @Router /keywords/materials/{id} [put]
func (h *KeywordHandler) UpdateMaterial(c *gin.Context) {
	id, payload, ok := h.bindValue(c)
	if !ok {
		return
	}
	if err := h.keywords.UpdateMaterial(c.Request.Context(), id, payload.Value, usernameFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteSize godoc
// @Summary Remove a size value
// @Tags Keywords
// @Produce json
// @Security BearerAuth
// @Param id path int true "Size ID"
// @Success 204 {object} nil
// @Router /keywords/sizes/{id} [delete]
func (h *KeywordHandler) DeleteSize(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.keywords.DeleteSize(c.Request.Context(), id, usernameFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteMaterial godoc
// @Summary Remove a material value
// @Tags Keywords
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 204 {object} nil
// @Router /keywords/materials/{id} [delete]
func (h *KeywordHandler) DeleteMaterial(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.keywords.DeleteMaterial(c.Request.Context(), id, usernameFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RenameSubmodel godoc
// @Summary Rename a model's submodel
// @Tags Keywords
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Model ID"
// @Param payload body dto.RenameSubmodelPayload true "New name"
// @Success 204 {object} nil
// @Router /keywords/models/{id}/name [put]
func (h *KeywordHandler) RenameSubmodel(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var payload dto.RenameSubmodelPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.keywords.RenameSubmodel(c.Request.Context(), id, payload.Name, usernameFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteSubmodel godoc
// @Summary Delete a model with its keyword lists
// @Tags Keywords
// @Produce json
// @Security BearerAuth
// @Param id path int true "Model ID"
// @Success 204 {object} nil
// @Router /keywords/models/{id} [delete]
func (h *KeywordHandler) DeleteSubmodel(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.keywords.DeleteSubmodel(c.Request.Context(), id, usernameFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddBrandColor godoc
// @Summary Attach a color keyword to a brand
// @Tags Keywords
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param brand path string true "Brand name"
// @Param payload body dto.AddKeywordPayload true "Color value"
// @Success 201 {object} response.Envelope
// @Router /keywords/brands/{brand}/colors [post]
func (h *KeywordHandler) AddBrandColor(c *gin.Context) {
	var payload valuePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.keywords.AddBrandColor(c.Request.Context(), c.Param("brand"), payload.Value, usernameFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"value": payload.Value})
}

// AddBrandHardware godoc
// @Summary Attach a hardware keyword to a brand
// @Tags Keywords
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param brand path string true "Brand name"
// @Param payload body dto.AddKeywordPayload true "Hardware value"
// @Success 201 {object} response.Envelope
// @Router /keywords/brands/{brand}/hardwares [post]
func (h *KeywordHandler) AddBrandHardware(c *gin.Context) {
	var payload valuePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.keywords.AddBrandHardware(c.Request.Context(), c.Param("brand"), payload.Value, usernameFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"value": payload.Value})
}

func (h *KeywordHandler) bindValue(c *gin.Context) (int64, valuePayload, bool) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return 0, valuePayload{}, false
	}
	var payload valuePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return 0, valuePayload{}, false
	}
	return id, payload, true
}
