package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jipjipmoney/keywords-api/internal/models"
	"github.com/jipjipmoney/keywords-api/internal/service"
	"github.com/jipjipmoney/keywords-api/pkg/response"
)

// ExportHandler serves CSV/PDF downloads of the request ledger and audit log.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Requests godoc
// @Summary Download the request ledger
// @Tags Exports
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string false "csv or pdf"
// @Param status query string false "Comma separated statuses"
// @Param brand query string false "Brand filter"
// @Success 200 {file} file
// @Router /exports/requests [get]
func (h *ExportHandler) Requests(c *gin.Context) {
	filter := models.RequestFilter{
		Brand: c.Query("brand"),
	}
	for _, status := range strings.Split(c.Query("status"), ",") {
		status = strings.TrimSpace(status)
		if status != "" {
			filter.Status = append(filter.Status, models.RequestStatus(status))
		}
	}

	doc, err := h.exports.Requests(c.Request.Context(), filter, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDocument(c, doc)
}

// AuditLog godoc
// @Summary Download the audit log
// @Tags Exports
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string false "csv or pdf"
// @Param category query string false "Category filter"
// @Param brand query string false "Brand filter"
// @Success 200 {file} file
// @Router /exports/audit [get]
func (h *ExportHandler) AuditLog(c *gin.Context) {
	filter := models.AuditFilter{
		Category: models.AuditCategory(c.Query("category")),
		Brand:    c.Query("brand"),
	}

	doc, err := h.exports.AuditLog(c.Request.Context(), filter, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDocument(c, doc)
}

func serveDocument(c *gin.Context, doc *service.ExportDocument) {
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}
