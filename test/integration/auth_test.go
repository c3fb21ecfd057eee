//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-auth/internal/model"
	"portfolio-auth/internal/token"
)

func TestRegisterLoginMeFlow(t *testing.T) {
	server, _ := newAuthServer(t)

	registerResp := postJSON(t, server.URL+"/register", map[string]string{
		"email":    "a@x.com",
		"password": "p1",
	})
	require.Equal(t, http.StatusCreated, registerResp.StatusCode)
	registered := decodeAuthResponse(t, registerResp)
	require.NotEmpty(t, registered.Token)
	assert.Equal(t, "a@x.com", registered.User.Email)

	loginResp := postJSON(t, server.URL+"/login", map[string]string{
		"email":    "a@x.com",
		"password": "p1",
	})
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	loggedIn := decodeAuthResponse(t, loginResp)
	require.NotEmpty(t, loggedIn.Token)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	meResp := getWithToken(t, server.URL+"/me", loggedIn.Token)
	require.Equal(t, http.StatusOK, meResp.StatusCode)

	var me model.AuthUser
	require.NoError(t, json.NewDecoder(meResp.Body).Decode(&me))
	assert.Equal(t, registered.User.ID, me.ID)
	assert.Equal(t, "a@x.com", me.Email)
}

func TestMeWithoutToken(t *testing.T) {
	server, _ := newAuthServer(t)

	resp := getWithToken(t, server.URL+"/me", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Access denied", decodeError(t, resp))
}

func TestMeWithCorruptedToken(t *testing.T) {
	server, _ := newAuthServer(t)

	resp := getWithToken(t, server.URL+"/me", "corrupted-token-string")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid token", decodeError(t, resp))
}

func TestMeWithExpiredToken(t *testing.T) {
	server, _ := newAuthServer(t)

	registerResp := postJSON(t, server.URL+"/register", map[string]string{
		"email":    "a@x.com",
		"password": "p1",
	})
	require.Equal(t, http.StatusCreated, registerResp.StatusCode)
	registered := decodeAuthResponse(t, registerResp)

	expiredIssuer := token.NewIssuer(testSecret, -time.Minute)
	expired, err := expiredIssuer.Issue(registered.User.ID)
	require.NoError(t, err)

	resp := getWithToken(t, server.URL+"/me", expired)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid token", decodeError(t, resp))
}

func TestMeWithTokenFromDifferentSecret(t *testing.T) {
	server, _ := newAuthServer(t)

	registerResp := postJSON(t, server.URL+"/register", map[string]string{
		"email":    "a@x.com",
		"password": "p1",
	})
	require.Equal(t, http.StatusCreated, registerResp.StatusCode)
	registered := decodeAuthResponse(t, registerResp)

	foreignIssuer := token.NewIssuer("some-other-secret", time.Hour)
	forged, err := foreignIssuer.Issue(registered.User.ID)
	require.NoError(t, err)

	resp := getWithToken(t, server.URL+"/me", forged)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid token", decodeError(t, resp))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	server, _ := newAuthServer(t)

	first := postJSON(t, server.URL+"/register", map[string]string{
		"email":    "a@x.com",
		"password": "p1",
	})
	require.Equal(t, http.StatusCreated, first.StatusCode)

	second := postJSON(t, server.URL+"/register", map[string]string{
		"email":    "a@x.com",
		"password": "p2",
	})
	require.Equal(t, http.StatusBadRequest, second.StatusCode)
	assert.Equal(t, "User already exists", decodeError(t, second))
}

func TestRegisterMissingFields(t *testing.T) {
	server, _ := newAuthServer(t)

	resp := postJSON(t, server.URL+"/register", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email and password are required", decodeError(t, resp))
}

func TestLoginInvalidCredentials(t *testing.T) {
	server, _ := newAuthServer(t)

	registerResp := postJSON(t, server.URL+"/register", map[string]string{
		"email":    "a@x.com",
		"password": "p1",
	})
	require.Equal(t, http.StatusCreated, registerResp.StatusCode)

	// Unknown email and wrong password return the same body and status.
	unknown := postJSON(t, server.URL+"/login", map[string]string{
		"email":    "ghost@x.com",
		"password": "p1",
	})
	require.Equal(t, http.StatusUnauthorized, unknown.StatusCode)
	assert.Equal(t, "Invalid credentials", decodeError(t, unknown))

	wrongPassword := postJSON(t, server.URL+"/login", map[string]string{
		"email":    "a@x.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	assert.Equal(t, "Invalid credentials", decodeError(t, wrongPassword))
}

func TestHealth(t *testing.T) {
	server, _ := newAuthServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
