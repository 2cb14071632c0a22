// Package auth implements the shared-password gate in front of the API.
// A successful login yields a signed session token stored in a cookie.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "auth-session"
	// SessionTTL is how long a login stays valid.
	SessionTTL = 7 * 24 * time.Hour

	issuer = "churchcal"
)

var (
	// ErrNotConfigured is returned when no application password is set.
	ErrNotConfigured = errors.New("application password is not configured")
	// ErrInvalidSession is returned for missing, expired or forged tokens.
	ErrInvalidSession = errors.New("invalid session")
)

// Claims is the payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
}

// Authenticator checks the application password and issues session cookies.
type Authenticator struct {
	password []byte
	secret   []byte
	secure   bool
	logger   *logrus.Logger
	now      func() time.Time
}

// New creates an Authenticator. secure marks cookies as HTTPS-only.
func New(password, secret string, secure bool, logger *logrus.Logger) *Authenticator {
	return &Authenticator{
		password: []byte(password),
		secret:   []byte(secret),
		secure:   secure,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckPassword compares password with the configured one in constant time.
func (a *Authenticator) CheckPassword(password string) (bool, error) {
	if len(a.password) == 0 {
		return false, ErrNotConfigured
	}
	return subtle.ConstantTimeCompare([]byte(password), a.password) == 1, nil
}

// IssueToken signs a new session token and returns it with its expiry.
func (a *Authenticator) IssueToken() (string, time.Time, error) {
	now := a.now()
	expires := now.Add(SessionTTL)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, expires, nil
}

// ValidateToken verifies the signature, issuer and expiry of token.
func (a *Authenticator) ValidateToken(token string) error {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !parsed.Valid || !claims.VerifyIssuer(issuer, true) {
		return ErrInvalidSession
	}
	if claims.ExpiresAt == nil || !a.now().Before(claims.ExpiresAt.Time) {
		return fmt.Errorf("%w: expired", ErrInvalidSession)
	}
	return nil
}

// Authenticated reports whether r carries a valid session cookie.
func (a *Authenticator) Authenticated(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	if err := a.ValidateToken(cookie.Value); err != nil {
		a.logger.WithError(err).Debug("Rejected session cookie")
		return false
	}
	return true
}

// Login issues a token and sets it as the session cookie.
func (a *Authenticator) Login(w http.ResponseWriter) error {
	token, expires, err := a.IssueToken()
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// Logout expires the session cookie.
func (a *Authenticator) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Middleware rejects /api/ requests without a valid session. The login
// endpoint itself stays open.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api/auth" || a.Authenticated(r) {
			next.ServeHTTP(w, r)
			return
		}

		a.logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Debug("Unauthenticated API request")

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "인증이 필요합니다."})
	})
}
