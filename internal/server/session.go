package server

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/patrickmn/go-cache"
)

const sessionCookie = "session"

// SessionStore хранит признак входа администратора на сервере.
// В cookie лежит только подписанный идентификатор сессии.
type SessionStore struct {
	codec    *securecookie.SecureCookie
	sessions *cache.Cache
	ttl      time.Duration
	secure   bool
}

func NewSessionStore(signingKey string, ttl time.Duration, secure bool) *SessionStore {
	hashKey := sha256.Sum256([]byte(signingKey))
	codec := securecookie.New(hashKey[:], nil)
	codec.MaxAge(int(ttl.Seconds()))

	return &SessionStore{
		codec:    codec,
		sessions: cache.New(ttl, time.Hour),
		ttl:      ttl,
		secure:   secure,
	}
}

// Login открывает новую сессию для principal и выставляет cookie.
func (s *SessionStore) Login(c *gin.Context, principal string) error {
	// Старая сессия из этого браузера больше не нужна
	if id, ok := s.sessionID(c); ok {
		s.sessions.Delete(id)
	}

	id := uuid.NewString()
	encoded, err := s.codec.Encode(sessionCookie, id)
	if err != nil {
		return err
	}
	s.sessions.Set(id, principal, s.ttl)
	s.setCookie(c, encoded, int(s.ttl.Seconds()))
	return nil
}

// Current возвращает администратора текущей сессии.
func (s *SessionStore) Current(c *gin.Context) (string, bool) {
	id, ok := s.sessionID(c)
	if !ok {
		return "", false
	}
	v, found := s.sessions.Get(id)
	if !found {
		return "", false
	}
	principal, ok := v.(string)
	return principal, ok
}

func (s *SessionStore) Logout(c *gin.Context) {
	if id, ok := s.sessionID(c); ok {
		s.sessions.Delete(id)
	}
	s.setCookie(c, "", -1)
}

func (s *SessionStore) sessionID(c *gin.Context) (string, bool) {
	raw, err := c.Cookie(sessionCookie)
	if err != nil || raw == "" {
		return "", false
	}
	var id string
	if err := s.codec.Decode(sessionCookie, raw, &id); err != nil {
		return "", false
	}
	return id, true
}

func (s *SessionStore) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, value, maxAge, "/", "", s.secure, true)
}
