package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jipjipmoney/keywords-api/internal/dto"
	"github.com/jipjipmoney/keywords-api/internal/models"
	"github.com/jipjipmoney/keywords-api/internal/service"
	appErrors "github.com/jipjipmoney/keywords-api/pkg/errors"
	"github.com/jipjipmoney/keywords-api/pkg/response"
)

// RequestHandler exposes the change request lifecycle endpoints.
type RequestHandler struct {
	requests *service.RequestService
	metrics  *service.MetricsService
}

// NewRequestHandler constructs RequestHandler.
func NewRequestHandler(requests *service.RequestService, metrics *service.MetricsService) *RequestHandler {
	return &RequestHandler{requests: requests, metrics: metrics}
}

// Submit godoc
// @Summary Submit a catalog change request
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SubmitRequestPayload true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	var payload dto.SubmitRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.requests.Submit(c.Request.Context(), payload, usernameFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.record(request.Category, "submitted")
	response.Created(c, request)
}

// List godoc
// @Summary List change requests
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param status query string false "Comma separated statuses"
// @Param editStatus query string false "Edit status filter"
// @Param category query string false "Category filter"
// @Param brand query string false "Brand filter"
// @Param mine query bool false "Only own submissions"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	query := dto.RequestQuery{
		EditStatus: models.EditStatus(c.Query("editStatus")),
		Category:   models.RequestCategory(c.Query("category")),
		Brand:      c.Query("brand"),
		Mine:       c.Query("mine") == "true",
	}
	for _, status := range strings.Split(c.Query("status"), ",") {
		status = strings.TrimSpace(status)
		if status != "" {
			query.Status = append(query.Status, models.RequestStatus(status))
		}
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		query.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		query.Offset = offset
	}

	requests, err := h.requests.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Get godoc
// @Summary Get one change request
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	request, err := h.requests.Get(c.Request.Context(), id, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Approve godoc
// @Summary Approve a pending request
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param payload body dto.DecisionPayload false "Optional notes"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var payload dto.DecisionPayload
	_ = c.ShouldBindJSON(&payload)

	request, err := h.requests.Approve(c.Request.Context(), id, usernameFromContext(c), payload.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.record(request.Category, "approved")
	response.JSON(c, http.StatusOK, request, nil)
}

// Reject godoc
// @Summary Reject a pending request
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param payload body dto.DecisionPayload true "Rejection notes"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var payload dto.DecisionPayload
	_ = c.ShouldBindJSON(&payload)

	request, err := h.requests.Reject(c.Request.Context(), id, usernameFromContext(c), payload.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.record(request.Category, "rejected")
	response.JSON(c, http.StatusOK, request, nil)
}

// Execute godoc
// @Summary Execute an approved request against the catalog
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/execute [post]
func (h *RequestHandler) Execute(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	request, err := h.requests.Execute(c.Request.Context(), id, usernameFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.record(request.Category, "executed")
	response.JSON(c, http.StatusOK, request, nil)
}

// MarkExecuted godoc
// @Summary Mark an approved request as executed without touching the catalog
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/mark-executed [post]
func (h *RequestHandler) MarkExecuted(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	request, err := h.requests.MarkExecuted(c.Request.Context(), id, usernameFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.record(request.Category, "marked_executed")
	response.JSON(c, http.StatusOK, request, nil)
}

func (h *RequestHandler) record(category models.RequestCategory, transition string) {
	if h.metrics != nil {
		h.metrics.RecordTransition(string(category), transition)
	}
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid id")
	}
	return id, nil
}
