//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio-auth/internal/config"
	"portfolio-auth/internal/handler"
	"portfolio-auth/internal/metrics"
	"portfolio-auth/internal/middleware"
	"portfolio-auth/internal/model"
	"portfolio-auth/internal/router"
	"portfolio-auth/internal/service"
	"portfolio-auth/internal/token"
)

const testSecret = "test-secret"

// memStore is an in-memory credential store honoring the same contract as the
// Postgres repository, including email uniqueness.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]model.User
}

func newMemStore() *memStore {
	return &memStore{byEmail: map[string]model.User{}}
}

func (s *memStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byEmail[email]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *memStore) FindByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *memStore) Create(_ context.Context, email string, passwordHash string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return model.User{}, model.ErrUserAlreadyExists
	}
	s.nextID++
	u := model.User{ID: s.nextID, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	s.byEmail[email] = u
	return u, nil
}

func newAuthServer(t *testing.T) (*httptest.Server, *metrics.Recorder) {
	t.Helper()

	recorder := metrics.NewRecorder()
	issuer := token.NewIssuer(testSecret, time.Hour)
	authService := service.NewAuthService(newMemStore(), issuer, recorder)
	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService)

	cfg := &config.Config{
		ServerPort:       "4000",
		JWTSecret:        testSecret,
		TokenTTL:         time.Hour,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
	}

	server := httptest.NewServer(router.New(cfg, authMiddleware, authHandler, recorder.Handler()))
	t.Cleanup(server.Close)

	return server, recorder
}

func postJSON(t *testing.T, url string, payload map[string]string) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func getWithToken(t *testing.T, url string, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func decodeAuthResponse(t *testing.T, resp *http.Response) model.AuthResponse {
	t.Helper()

	var parsed model.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return parsed
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()

	var parsed model.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return parsed.Error
}
