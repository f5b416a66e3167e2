package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jipjipmoney/keywords-api/internal/middleware"
	"github.com/jipjipmoney/keywords-api/internal/models"
	"github.com/jipjipmoney/keywords-api/internal/repository"
	"github.com/jipjipmoney/keywords-api/internal/service"
	appErrors "github.com/jipjipmoney/keywords-api/pkg/errors"
)

type requestStoreFake struct {
	nextID  int64
	byID    map[int64]*models.ModelRequest
	filters []models.RequestFilter
}

func newRequestStoreFake() *requestStoreFake {
	return &requestStoreFake{byID: make(map[int64]*models.ModelRequest)}
}

func (f *requestStoreFake) Create(ctx context.Context, request *models.ModelRequest) error {
	f.nextID++
	request.ID = f.nextID
	request.SubmittedAt = time.Now().UTC()
	stored := *request
	f.byID[request.ID] = &stored
	return nil
}

func (f *requestStoreFake) GetByID(ctx context.Context, id int64) (*models.ModelRequest, error) {
	stored, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	found := *stored
	return &found, nil
}

func (f *requestStoreFake) List(ctx context.Context, filter models.RequestFilter) ([]models.ModelRequest, error) {
	f.filters = append(f.filters, filter)
	requests := make([]models.ModelRequest, 0, len(f.byID))
	for _, stored := range f.byID {
		requests = append(requests, *stored)
	}
	return requests, nil
}

func (f *requestStoreFake) UpdateDecision(ctx context.Context, params repository.DecisionParams) error {
	stored, ok := f.byID[params.ID]
	if !ok || stored.Status != models.StatusPending {
		return sql.ErrNoRows
	}
	stored.Status = params.Status
	stored.ProcessedBy = &params.ProcessedBy
	stored.ProcessedAt = &params.ProcessedAt
	stored.AdminNotes = params.AdminNotes
	return nil
}

func (f *requestStoreFake) MarkExecuted(ctx context.Context, id int64, executedBy string, executedAt time.Time) error {
	stored, ok := f.byID[id]
	if !ok || stored.Status != models.StatusApproved || stored.EditStatus != models.EditPending {
		return sql.ErrNoRows
	}
	stored.EditStatus = models.EditDone
	stored.ExecutedBy = &executedBy
	stored.ExecutedAt = &executedAt
	return nil
}

type auditFake struct {
	entries []models.AuditEntry
}

func (f *auditFake) Append(ctx context.Context, entry *models.AuditEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

type brandFinderFake struct {
	known map[string]int64
}

func (f *brandFinderFake) FindBrand(ctx context.Context, name string) (*models.Brand, error) {
	id, ok := f.known[strings.ToUpper(name)]
	if !ok {
		return nil, nil
	}
	return &models.Brand{ID: id, Name: strings.ToUpper(name)}, nil
}

func newRequestHandlerTest() (*RequestHandler, *requestStoreFake) {
	store := newRequestStoreFake()
	brands := &brandFinderFake{known: map[string]int64{"CHANEL": 1}}
	svc := service.NewRequestService(store, &auditFake{}, brands, nil, nil)
	return NewRequestHandler(svc, nil), store
}

func testContext(t *testing.T, method, target, body string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data interface{}) *appErrors.Error {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage  `json:"data"`
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	if data != nil && envelope.Data != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
	return envelope.Error
}

func TestRequestHandlerSubmitReturnsCreated(t *testing.T) {
	h, store := newRequestHandlerTest()
	c, w := testContext(t, http.MethodPost, "/requests",
		`{"brand":"CHANEL","model":"Classic Flap","submodel":"Medium","category":"add","sizes":"7,8"}`,
		&models.JWTClaims{UserID: "u-alice", Username: "alice", Role: models.RoleUser})

	h.Submit(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var created models.ModelRequest
	require.Nil(t, decodeEnvelope(t, w, &created))
	require.Equal(t, int64(1), created.ID)
	require.Equal(t, models.StatusPending, created.Status)
	require.Equal(t, models.EditPending, created.EditStatus)
	require.Equal(t, "alice", created.RequestedBy)
	require.Contains(t, store.byID, int64(1))
}

func TestRequestHandlerSubmitMalformedJSON(t *testing.T) {
	h, _ := newRequestHandlerTest()
	c, w := testContext(t, http.MethodPost, "/requests", `{"brand":`,
		&models.JWTClaims{UserID: "u-alice", Username: "alice", Role: models.RoleUser})

	h.Submit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	appErr := decodeEnvelope(t, w, nil)
	require.NotNil(t, appErr)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRequestHandlerSubmitUnknownBrand(t *testing.T) {
	h, _ := newRequestHandlerTest()
	c, w := testContext(t, http.MethodPost, "/requests",
		`{"brand":"NOBRAND","model":"X","submodel":"Y","category":"add"}`,
		&models.JWTClaims{UserID: "u-alice", Username: "alice", Role: models.RoleUser})

	h.Submit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandlerApproveInvalidID(t *testing.T) {
	h, _ := newRequestHandlerTest()
	c, w := testContext(t, http.MethodPost, "/requests/abc/approve", "{}",
		&models.JWTClaims{UserID: "u-admin", Username: "admin", Role: models.RoleAdmin})
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	h.Approve(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandlerApproveFlow(t *testing.T) {
	h, store := newRequestHandlerTest()
	store.byID[7] = &models.ModelRequest{
		ID:          7,
		RequestedBy: "alice",
		Brand:       "CHANEL",
		Category:    models.CategoryAdd,
		Status:      models.StatusPending,
		EditStatus:  models.EditPending,
	}

	c, w := testContext(t, http.MethodPost, "/requests/7/approve", `{"notes":"ok"}`,
		&models.JWTClaims{UserID: "u-admin", Username: "admin", Role: models.RoleAdmin})
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	h.Approve(c)

	require.Equal(t, http.StatusOK, w.Code)
	var approved models.ModelRequest
	require.Nil(t, decodeEnvelope(t, w, &approved))
	require.Equal(t, models.StatusApproved, approved.Status)

	// A second decision on the same request conflicts.
	c2, w2 := testContext(t, http.MethodPost, "/requests/7/approve", "{}",
		&models.JWTClaims{UserID: "u-admin", Username: "admin", Role: models.RoleAdmin})
	c2.Params = gin.Params{{Key: "id", Value: "7"}}

	h.Approve(c2)

	require.Equal(t, http.StatusConflict, w2.Code)
}

func TestRequestHandlerGetNotFound(t *testing.T) {
	h, _ := newRequestHandlerTest()
	c, w := testContext(t, http.MethodGet, "/requests/99", "",
		&models.JWTClaims{UserID: "u-admin", Username: "admin", Role: models.RoleAdmin})
	c.Params = gin.Params{{Key: "id", Value: "99"}}

	h.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestHandlerListParsesFilters(t *testing.T) {
	h, store := newRequestHandlerTest()
	c, w := testContext(t, http.MethodGet, "/requests?status=pending,approved&brand=CHANEL&mine=true", "",
		&models.JWTClaims{UserID: "u-admin", Username: "admin", Role: models.RoleAdmin})

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.filters, 1)
	filter := store.filters[0]
	require.Equal(t, []models.RequestStatus{models.StatusPending, models.StatusApproved}, filter.Status)
	require.Equal(t, "CHANEL", filter.Brand)
	require.Equal(t, "admin", filter.RequestedBy)
	require.Equal(t, 50, filter.Limit)
}
