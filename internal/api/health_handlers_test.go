package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readinglog/readinglog-server/internal/service"
)

func TestHealthCheck_NotEnveloped(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var raw map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &raw))
	assert.NotContains(t, raw, "v")
	assert.NotContains(t, raw, "success")

	var health HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	require.Contains(t, health.Components, "database")
	require.Contains(t, health.Components, "search")
	assert.Equal(t, "healthy", health.Components["database"].Status)
	assert.Equal(t, "healthy", health.Components["search"].Status)
	assert.Equal(t, "search index empty", health.Components["search"].Message)
}

func TestHealthCheck_IndexedCatalog(t *testing.T) {
	ts := setupTestServer(t)
	ts.createBook(t, service.CreateBookRequest{Title: "Dune"})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Components["search"].Status)
	assert.Empty(t, health.Components["search"].Message)
}

func TestHealthCheck_WithoutSearch(t *testing.T) {
	ts := setupTestServer(t)
	ts.services.Search = nil

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &health))
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "degraded", health.Components["search"].Status)
}
