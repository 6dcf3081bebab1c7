package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/readinglog/readinglog-server/internal/auth"
	"github.com/readinglog/readinglog-server/internal/config"
	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/metrics"
	"github.com/readinglog/readinglog-server/internal/search"
	"github.com/readinglog/readinglog-server/internal/service"
	"github.com/readinglog/readinglog-server/internal/store"
	"github.com/readinglog/readinglog-server/internal/store/sqlite"
	"github.com/readinglog/readinglog-server/internal/validation"
)

// testEnvelope mirrors APIEnvelope with typed data for decoding responses.
type testEnvelope[T any] struct {
	Version int        `json:"v"`
	Success bool       `json:"success"`
	Data    T          `json:"data"`
	Error   *ErrorBody `json:"error"`
}

type testServer struct {
	*Server
	api   humatest.TestAPI
	store *sqlite.Store
}

type testServerOption func(*config.Config)

func withAuthRateLimit(perMinute, burst int) testServerOption {
	return func(cfg *config.Config) {
		cfg.Auth.RateLimitPerMinute = perMinute
		cfg.Auth.RateLimitBurst = burst
	}
}

// setupTestServer builds a server over a temporary database and an
// in-memory search index.
func setupTestServer(t *testing.T, opts ...testServerOption) *testServer {
	t.Helper()

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	tokens, err := auth.NewTokenService(bytes.Repeat([]byte{3}, auth.KeySize), 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	cfg := &config.Config{
		Auth: config.AuthConfig{
			RateLimitPerMinute: 6000,
			RateLimitBurst:     1000,
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	m := metrics.New()
	v := validation.New()
	limits := store.DefaultPageLimits

	sessions := service.NewSessionService(st, tokens, nil)
	searchService := service.NewSearchService(index, st, m, nil)
	services := &Services{
		Auth:       service.NewAuthService(st, tokens, sessions, v, m, nil),
		Profile:    service.NewProfileService(st, v, nil),
		Catalog:    service.NewCatalogService(st, limits, nil),
		Lists:      service.NewListService(st, limits, m, nil),
		Reviews:    service.NewReviewService(st, limits, m, nil),
		Collection: service.NewCollectionService(st, limits, nil),
		Search:     searchService,
		Admin:      service.NewAdminService(st, searchService, v, nil),
	}

	s := NewServer(cfg, st, services, m, nil)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
		store:  st,
	}
}

type testUser struct {
	ID    string
	Token string
}

func (u testUser) bearer() string {
	return "Authorization: Bearer " + u.Token
}

// register creates an account through the API. The first account on a
// server is the admin.
func (ts *testServer) register(t *testing.T, username string) testUser {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decode[AuthResponse](t, resp.Body.Bytes())
	return testUser{ID: env.Data.User.ID, Token: env.Data.AccessToken}
}

// setRole changes a user's role directly in the store.
func (ts *testServer) setRole(t *testing.T, userID string, role domain.Role) {
	t.Helper()
	ctx := context.Background()

	user, err := ts.store.GetUser(ctx, userID)
	require.NoError(t, err)
	user.Role = role
	require.NoError(t, ts.store.UpdateUser(ctx, user))
}

func (ts *testServer) createAuthor(t *testing.T, name string) *domain.Author {
	t.Helper()
	a, err := ts.services.Admin.CreateAuthor(context.Background(), service.CreateAuthorRequest{Name: name})
	require.NoError(t, err)
	return a
}

func (ts *testServer) createBook(t *testing.T, req service.CreateBookRequest) *domain.Book {
	t.Helper()
	b, err := ts.services.Admin.CreateBook(context.Background(), req)
	require.NoError(t, err)
	return b
}

func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

// requireError asserts an error envelope with the given status and code.
func requireError(t *testing.T, resp *httptest.ResponseRecorder, status int, code string) *ErrorBody {
	t.Helper()
	require.Equal(t, status, resp.Code, resp.Body.String())
	env := decode[json.RawMessage](t, resp.Body.Bytes())
	require.False(t, env.Success)
	require.Equal(t, EnvelopeVersion, env.Version)
	require.NotNil(t, env.Error, resp.Body.String())
	require.Equal(t, code, env.Error.Code, env.Error.Message)
	return env.Error
}

func intPtr(v int) *int { return &v }
