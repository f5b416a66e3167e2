package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jipjipmoney/keywords-api/internal/service"
	"github.com/jipjipmoney/keywords-api/pkg/response"
)

// CatalogHandler exposes catalog browse endpoints for the dropdown cascades.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Brands godoc
// @Summary List all brands
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /catalog/brands [get]
func (h *CatalogHandler) Brands(c *gin.Context) {
	brands, err := h.catalog.Brands(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, brands, nil)
}

// BrandKeywords godoc
// @Summary Full keyword tree for one brand
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param brand path string true "Brand name"
// @Success 200 {object} response.Envelope
// @Router /catalog/brands/{brand}/keywords [get]
func (h *CatalogHandler) BrandKeywords(c *gin.Context) {
	keywords, err := h.catalog.BrandKeywords(c.Request.Context(), c.Param("brand"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, keywords, nil)
}

// Models godoc
// @Summary List models under a brand
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param brand path string true "Brand name"
// @Success 200 {object} response.Envelope
// @Router /catalog/brands/{brand}/models [get]
func (h *CatalogHandler) Models(c *gin.Context) {
	result, err := h.catalog.ModelsForBrand(c.Request.Context(), c.Param("brand"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Sizes godoc
// @Summary List size values for a model
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Model ID"
// @Success 200 {object} response.Envelope
// @Router /catalog/models/{id}/sizes [get]
func (h *CatalogHandler) Sizes(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	sizes, err := h.catalog.SizesForModel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sizes, nil)
}

// Materials godoc
// @Summary List material values for a model
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Model ID"
// @Success 200 {object} response.Envelope
// @Router /catalog/models/{id}/materials [get]
func (h *CatalogHandler) Materials(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	materials, err := h.catalog.MaterialsForModel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials, nil)
}
