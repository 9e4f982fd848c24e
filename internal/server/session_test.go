package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requestWithCookies переносит cookie из ответа в новый запрос.
func requestWithCookies(t *testing.T, from *httptest.ResponseRecorder) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range from.Result().Cookies() {
		c.Request.AddCookie(cookie)
	}
	return c
}

func TestSessionStore_LoginCurrentLogout(t *testing.T) {
	store := NewSessionStore("secret", time.Hour, true)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	require.NoError(t, store.Login(c, "admin"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	c2 := requestWithCookies(t, w)
	principal, ok := store.Current(c2)
	require.True(t, ok)
	assert.Equal(t, "admin", principal)

	store.Logout(c2)
	_, ok = store.Current(requestWithCookies(t, w))
	assert.False(t, ok, "session must be revoked server-side after logout")
}

func TestSessionStore_OtherKeyRejected(t *testing.T) {
	issuer := NewSessionStore("secret-one", time.Hour, false)
	verifier := NewSessionStore("secret-two", time.Hour, false)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	require.NoError(t, issuer.Login(c, "admin"))

	_, ok := verifier.Current(requestWithCookies(t, w))
	assert.False(t, ok)
}

func TestSessionStore_Expires(t *testing.T) {
	store := NewSessionStore("secret", 50*time.Millisecond, false)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	require.NoError(t, store.Login(c, "admin"))

	_, ok := store.Current(requestWithCookies(t, w))
	require.True(t, ok)

	time.Sleep(100 * time.Millisecond)
	_, ok = store.Current(requestWithCookies(t, w))
	assert.False(t, ok)
}
