//go:build integration

package integration

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrapeMetrics(t *testing.T, serverURL string) string {
	t.Helper()

	resp, err := http.Get(serverURL + "/metrics")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetricsReflectAuthOutcomes(t *testing.T) {
	server, _ := newAuthServer(t)

	// One success per operation type, plus classified failures.
	registerResp := postJSON(t, server.URL+"/register", map[string]string{
		"email":    "a@x.com",
		"password": "p1",
	})
	require.Equal(t, http.StatusCreated, registerResp.StatusCode)
	registered := decodeAuthResponse(t, registerResp)

	loginResp := postJSON(t, server.URL+"/login", map[string]string{
		"email":    "a@x.com",
		"password": "p1",
	})
	require.Equal(t, http.StatusOK, loginResp.StatusCode)

	meResp := getWithToken(t, server.URL+"/me", registered.Token)
	require.Equal(t, http.StatusOK, meResp.StatusCode)

	noToken := getWithToken(t, server.URL+"/me", "")
	require.Equal(t, http.StatusUnauthorized, noToken.StatusCode)

	badToken := getWithToken(t, server.URL+"/me", "corrupted")
	require.Equal(t, http.StatusUnauthorized, badToken.StatusCode)

	duplicate := postJSON(t, server.URL+"/register", map[string]string{
		"email":    "a@x.com",
		"password": "p2",
	})
	require.Equal(t, http.StatusBadRequest, duplicate.StatusCode)

	exposition := scrapeMetrics(t, server.URL)

	assert.Contains(t, exposition, `auth_operations_total{operation="register",status="success"} 1`)
	assert.Contains(t, exposition, `auth_operations_total{operation="register",status="failed_user_exists"} 1`)
	assert.Contains(t, exposition, `auth_operations_total{operation="login",status="success"} 1`)
	assert.Contains(t, exposition, `auth_operations_total{operation="get_profile",status="success"} 1`)

	// One protected request records both a verify_token and a get_profile
	// outcome; the failed attempts record verify_token outcomes only.
	assert.Contains(t, exposition, `auth_operations_total{operation="verify_token",status="success"} 1`)
	assert.Contains(t, exposition, `auth_operations_total{operation="verify_token",status="failed_no_token"} 1`)
	assert.Contains(t, exposition, `auth_operations_total{operation="verify_token",status="invalid_token"} 1`)

	assert.Contains(t, exposition, `auth_operation_duration_seconds_bucket{operation="register",type="request"`)
	assert.Contains(t, exposition, "db_pool_connections")
}

func TestMetricsEndpointNeedsNoAuth(t *testing.T) {
	server, _ := newAuthServer(t)

	exposition := scrapeMetrics(t, server.URL)
	assert.Contains(t, exposition, "go_goroutines")
}
