package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(password string) *Authenticator {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(password, "test-secret", true, logger)
}

func TestCheckPassword(t *testing.T) {
	a := newAuth("나주")

	ok, err := a.CheckPassword("나주")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.CheckPassword("wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = newAuth("").CheckPassword("anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTokenLifecycle(t *testing.T) {
	a := newAuth("pw")

	token, expires, err := a.IssueToken()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(SessionTTL), expires, time.Minute)
	assert.NoError(t, a.ValidateToken(token))

	other := New("pw", "another-secret", false, a.logger)
	assert.ErrorIs(t, other.ValidateToken(token), ErrInvalidSession)

	a.now = func() time.Time { return time.Now().Add(SessionTTL + time.Hour) }
	assert.ErrorIs(t, a.ValidateToken(token), ErrInvalidSession)

	assert.ErrorIs(t, a.ValidateToken("not-a-token"), ErrInvalidSession)
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	a := newAuth("pw")
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(a.secret)
	require.NoError(t, err)

	assert.ErrorIs(t, a.ValidateToken(token), ErrInvalidSession)
}

func TestLoginCookie(t *testing.T) {
	a := newAuth("pw")
	rec := httptest.NewRecorder()
	require.NoError(t, a.Login(rec))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, 7*24*60*60, c.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.AddCookie(c)
	assert.True(t, a.Authenticated(req))

	rec = httptest.NewRecorder()
	a.Logout(rec)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "", cleared[0].Value)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestMiddleware(t *testing.T) {
	a := newAuth("pw")
	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	serve := func(path string, cookie *http.Cookie) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve("/api/events", nil))
	assert.Equal(t, http.StatusTeapot, serve("/api/auth", nil))
	assert.Equal(t, http.StatusTeapot, serve("/healthz", nil))
	assert.Equal(t, http.StatusTeapot, serve("/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, serve("/api/events", &http.Cookie{Name: CookieName, Value: "authenticated"}))

	token, _, err := a.IssueToken()
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, serve("/api/events", &http.Cookie{Name: CookieName, Value: token}))
}
