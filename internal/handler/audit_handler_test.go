package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jipjipmoney/keywords-api/internal/models"
)

type auditReaderStub struct {
	entries []models.AuditEntry
	filters []models.AuditFilter
	err     error
}

func (s *auditReaderStub) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, error) {
	s.filters = append(s.filters, filter)
	return s.entries, s.err
}

func TestAuditHandlerListParsesFilters(t *testing.T) {
	stub := &auditReaderStub{entries: []models.AuditEntry{{
		ID:        1,
		Category:  models.AuditCategorySizeMaterial,
		Action:    models.AuditActionAdd,
		Brand:     "CHANEL",
		UserID:    "super",
		CreatedAt: time.Now().UTC(),
	}}}
	h := NewAuditHandler(stub)

	c, w := testContext(t, http.MethodGet,
		"/audit?category=size_material&action=add&brand=CHANEL&userId=super&limit=25&offset=5", "",
		&models.JWTClaims{UserID: "u-admin", Username: "admin", Role: models.RoleAdmin})

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, stub.filters, 1)
	filter := stub.filters[0]
	require.Equal(t, models.AuditCategorySizeMaterial, filter.Category)
	require.Equal(t, models.AuditActionAdd, filter.Action)
	require.Equal(t, "CHANEL", filter.Brand)
	require.Equal(t, "super", filter.UserID)
	require.Equal(t, 25, filter.Limit)
	require.Equal(t, 5, filter.Offset)

	var entries []models.AuditEntry
	require.Nil(t, decodeEnvelope(t, w, &entries))
	require.Len(t, entries, 1)
	require.Equal(t, "CHANEL", entries[0].Brand)
}

func TestAuditHandlerListDefaultsLimit(t *testing.T) {
	stub := &auditReaderStub{}
	h := NewAuditHandler(stub)

	c, w := testContext(t, http.MethodGet, "/audit", "",
		&models.JWTClaims{UserID: "u-admin", Username: "admin", Role: models.RoleAdmin})

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, stub.filters, 1)
	require.Equal(t, 100, stub.filters[0].Limit)
}
