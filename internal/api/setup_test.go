package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/shelfkeep/shelfkeep-server/internal/auth"
	"github.com/shelfkeep/shelfkeep-server/internal/logger"
	"github.com/shelfkeep/shelfkeep-server/internal/service"
	"github.com/shelfkeep/shelfkeep-server/internal/store/sqlite"
)

// testEnvelope mirrors both envelope shapes so tests can decode any response.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

type testServer struct {
	*Server
	api      humatest.TestAPI
	registry *prometheus.Registry
}

// setupTestServer wires a full server over a fresh sqlite database.
func setupTestServer(t *testing.T) *testServer {
	return setupTestServerWithOptions(t, Options{AuthRateLimitPerMinute: 1000})
}

func setupTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()

	dir := t.TempDir()
	log := logger.Discard().Logger

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	key, err := auth.LoadOrGenerateKey(filepath.Join(dir, "auth.key"))
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	hasher := auth.NewHasher(auth.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	services := &Services{
		User:      service.NewUserService(st, tokens, hasher, log),
		Book:      service.NewBookService(st, log),
		Publisher: service.NewPublisherService(st, log),
	}

	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	server := NewServer(st, services, opts, log)
	t.Cleanup(server.Close)

	return &testServer{
		Server:   server,
		api:      humatest.Wrap(t, server.API()),
		registry: opts.Registry,
	}
}

// registerAndLogin registers email with a fixed password and returns a
// bearer header plus the new user's ID.
func (ts *testServer) registerAndLogin(t *testing.T, email string) (authHeader, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/users/", map[string]any{
		"email":    email,
		"password": "hunter2",
		"name":     "Reader",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	user := decode[UserResponse](t, resp)

	resp = ts.api.Post("/api/v1/users/token/", map[string]any{
		"email":    email,
		"password": "hunter2",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	token := decode[TokenResponse](t, resp)

	return "Authorization: Bearer " + token.Token, user.ID
}

// createBook posts a book with the given nested publishers and returns it.
func (ts *testServer) createBook(t *testing.T, authHeader string, publishers ...map[string]any) BookResponse {
	t.Helper()

	body := map[string]any{
		"title":            "Kindred",
		"publication_date": "1979-06-01",
		"isbn":             "978-0807083697",
	}
	if publishers != nil {
		body["publishers"] = publishers
	}

	resp := ts.api.Post("/api/v1/books/", authHeader, body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[BookResponse](t, resp)
}

func publisherBody(name string) map[string]any {
	return map[string]any{
		"name":    name,
		"website": "https://" + name + ".example.com",
		"email":   "books@" + name + ".example.com",
	}
}

// decode unwraps a success envelope into T.
func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	env := decodeEnvelope[T](t, resp)
	require.True(t, env.Success, resp.Body.String())
	return env.Data
}

func decodeEnvelope[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	require.Equal(t, EnvelopeVersion, env.Version)
	return env
}
