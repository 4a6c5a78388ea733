package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCreateAndValidate(t *testing.T) {
	sm := NewSessionManager()

	token := sm.Create()
	require.NotEmpty(t, token)
	assert.True(t, sm.Validate(token))

	sm.Delete(token)
	assert.False(t, sm.Validate(token))
}

func TestValidateRejectsUnknownAndEmpty(t *testing.T) {
	sm := NewSessionManager()
	assert.False(t, sm.Validate(""))
	assert.False(t, sm.Validate("deadbeef"))
}

func TestValidateExpiresOldSessions(t *testing.T) {
	sm := NewSessionManager()
	token := sm.Create()

	sm.mu.Lock()
	sm.sessions[token].expiresAt = time.Now().Add(-time.Minute)
	sm.mu.Unlock()

	assert.False(t, sm.Validate(token))

	// Expired entry is removed on first check.
	sm.mu.RLock()
	_, exists := sm.sessions[token]
	sm.mu.RUnlock()
	assert.False(t, exists)
}

func TestLoginSetsCookieOnMatch(t *testing.T) {
	sm := NewSessionManager()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)

	require.True(t, sm.Login(w, r, "admin", "secret", "admin", "secret"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, sm.Validate(cookies[0].Value))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	sm := NewSessionManager()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)

	assert.False(t, sm.Login(w, r, "admin", "wrong", "admin", "secret"))
	assert.False(t, sm.Login(w, r, "intruder", "secret", "admin", "secret"))
	assert.Empty(t, w.Result().Cookies())
}

func TestLogoutClearsSession(t *testing.T) {
	sm := NewSessionManager()
	token := sm.Create()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/logout", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})

	sm.Logout(w, r)
	assert.False(t, sm.Validate(token))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestAuthMiddlewareRedirectsWithoutSession(t *testing.T) {
	sm := NewSessionManager()
	handler := sm.AuthMiddleware()(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestAuthMiddlewarePassesValidSession(t *testing.T) {
	sm := NewSessionManager()
	token := sm.Create()

	handler := sm.AuthMiddleware()(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	w := httptest.NewRecorder()
	handler(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCSRFTokenSingleUse(t *testing.T) {
	sm := NewSessionManager()

	token := sm.CreateCSRFToken()
	require.NotEmpty(t, token)

	assert.True(t, sm.ValidateCSRFToken(token))
	assert.False(t, sm.ValidateCSRFToken(token), "token must not validate twice")
	assert.False(t, sm.ValidateCSRFToken(""))
}

func TestCSRFTokenExpires(t *testing.T) {
	sm := NewSessionManager()
	token := sm.CreateCSRFToken()

	sm.mu.Lock()
	sm.csrfTokens[token].expiresAt = time.Now().Add(-time.Second)
	sm.mu.Unlock()

	assert.False(t, sm.ValidateCSRFToken(token))
}
