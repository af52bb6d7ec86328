package httpapi

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryFromRequest_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/accounts", nil)
	tenantID := uuid.New()

	q, err := queryFromRequest(r, tenantID)
	require.NoError(t, err)
	assert.Equal(t, tenantID, q.TenantID)
	assert.Nil(t, q.Limit)
	assert.Nil(t, q.RawCursor)
}

func TestQueryFromRequest_LimitAndCursor(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/accounts?limit=25&cursor=abc123", nil)
	tenantID := uuid.New()

	q, err := queryFromRequest(r, tenantID)
	require.NoError(t, err)
	require.NotNil(t, q.Limit)
	assert.Equal(t, 25, *q.Limit)
	require.NotNil(t, q.RawCursor)
	assert.Equal(t, "abc123", *q.RawCursor)
}

func TestQueryFromRequest_NonIntegerLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/accounts?limit=not-a-number", nil)

	_, err := queryFromRequest(r, uuid.New())
	assert.Error(t, err)
}
