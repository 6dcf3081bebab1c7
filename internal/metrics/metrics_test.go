package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/books/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, path := range []string{"/books/book-1", "/books/book-2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("/books/{id}", http.MethodGet, "418"))
	assert.Equal(t, float64(2), got)
}

func TestDomainCounters(t *testing.T) {
	m := New()

	m.AuthAttempt("login", true)
	m.AuthAttempt("login", false)
	m.AuthAttempt("login", false)
	m.ReviewSubmitted()
	m.ReviewTransition("approved")
	m.ListMutation("create")
	m.RateLimited("/api/v1/auth/login")
	m.SearchQuery()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.authAttempts.WithLabelValues("login", "failure")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.reviewsSubmitted))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.reviewTransitions.WithLabelValues("approved")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.listMutations.WithLabelValues("create")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.searchQueries))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AuthAttempt("login", true)
		m.ReviewSubmitted()
		m.ReviewTransition("approved")
		m.ListMutation("create")
		m.RateLimited("x")
		m.SearchQuery()
	})
}

func TestHandler_ServesTextFormat(t *testing.T) {
	m := New()
	m.ReviewSubmitted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "readinglog_reviews_submitted_total 1"))
}
