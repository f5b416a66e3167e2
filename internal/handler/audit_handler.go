package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jipjipmoney/keywords-api/internal/models"
	"github.com/jipjipmoney/keywords-api/pkg/response"
)

type auditReader interface {
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, error)
}

// AuditHandler exposes the read-only audit trail.
type AuditHandler struct {
	audit auditReader
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(audit auditReader) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List godoc
// @Summary Browse the audit log
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param category query string false "Category filter"
// @Param action query string false "Action filter"
// @Param brand query string false "Brand filter"
// @Param userId query string false "User filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	filter := models.AuditFilter{
		Category: models.AuditCategory(c.Query("category")),
		Action:   models.AuditAction(c.Query("action")),
		Brand:    c.Query("brand"),
		UserID:   c.Query("userId"),
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "100")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filter.Offset = offset
	}

	entries, err := h.audit.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
