package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/readinglog/readinglog-server/internal/auth"
	"github.com/readinglog/readinglog-server/internal/domain"
	domainerrors "github.com/readinglog/readinglog-server/internal/errors"
	"github.com/readinglog/readinglog-server/internal/metrics"
	"github.com/readinglog/readinglog-server/internal/search"
	"github.com/readinglog/readinglog-server/internal/store"
	"github.com/readinglog/readinglog-server/internal/store/sqlite"
	"github.com/readinglog/readinglog-server/internal/validation"
)

// testEnv wires every service against a temporary database and an
// in-memory search index.
type testEnv struct {
	store   *sqlite.Store
	tokens  *auth.TokenService
	metrics *metrics.Metrics

	auth       *AuthService
	sessions   *SessionService
	profile    *ProfileService
	catalog    *CatalogService
	lists      *ListService
	reviews    *ReviewService
	collection *CollectionService
	search     *SearchService
	admin      *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	tokens, err := auth.NewTokenService(bytes.Repeat([]byte{7}, auth.KeySize), 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	m := metrics.New()
	v := validation.New()
	limits := store.DefaultPageLimits

	env := &testEnv{store: s, tokens: tokens, metrics: m}
	env.sessions = NewSessionService(s, tokens, nil)
	env.auth = NewAuthService(s, tokens, env.sessions, v, m, nil)
	env.profile = NewProfileService(s, v, nil)
	env.catalog = NewCatalogService(s, limits, nil)
	env.lists = NewListService(s, limits, m, nil)
	env.reviews = NewReviewService(s, limits, m, nil)
	env.collection = NewCollectionService(s, limits, nil)
	env.search = NewSearchService(index, s, m, nil)
	env.admin = NewAdminService(s, env.search, v, nil)
	return env
}

func (e *testEnv) register(t *testing.T, username string) *AuthResponse {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse battery",
	}, ClientInfo{IPAddress: "127.0.0.1"})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) user(t *testing.T, username string) *domain.User {
	t.Helper()
	return e.register(t, username).User
}

func (e *testEnv) author(t *testing.T, name string) *domain.Author {
	t.Helper()
	a, err := e.admin.CreateAuthor(context.Background(), CreateAuthorRequest{Name: name})
	require.NoError(t, err)
	return a
}

func (e *testEnv) book(t *testing.T, req CreateBookRequest) *domain.Book {
	t.Helper()
	b, err := e.admin.CreateBook(context.Background(), req)
	require.NoError(t, err)
	return b
}

func intPtr(v int) *int { return &v }

func bookTitles(books []*domain.Book) []string {
	titles := make([]string, len(books))
	for i, b := range books {
		titles[i] = b.Title
	}
	return titles
}

// requireCode asserts err is a domain error with the given code.
func requireCode(t *testing.T, err error, code domainerrors.Code) {
	t.Helper()
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr), "expected domain error, got %T: %v", err, err)
	require.Equal(t, code, domainErr.Code, fmt.Sprintf("message: %s", domainErr.Message))
}
