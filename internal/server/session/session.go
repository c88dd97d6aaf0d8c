// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

// Package session issues and verifies the signed admin session cookie.
// The cookie carries a short lived JWT; its presence and validity is the
// only thing the admin gate checks.
package session

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/vowlist/core/internal/model"
)

const CookieName = "vowlist_session"

type Claims struct {
	AdminID  string `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewManager(secret []byte, ttl time.Duration) *Manager {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(err)
		}
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		secret: secret,
		ttl:    ttl,
		logger: slog.Default().WithGroup("session"),
	}
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
}

// Issue signs a session token for admin and sets it as HttpOnly cookie.
func (m *Manager) Issue(c *gin.Context, admin *model.AdminUser) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		AdminID:  admin.ID.String(),
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return model.WrapInternal(err, "could not sign session token")
	}
	c.SetCookie(CookieName, signed, int(m.ttl.Seconds()), "/", "", false, true)
	return nil
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}

// Verify parses the session cookie of the request.
func (m *Manager) Verify(r *http.Request) (*Claims, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, model.Unauthorizedf("access denied, please log in")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, model.Unauthorizedf("session expired, please log in again")
	}
	return claims, nil
}

// Required aborts with 401 unless the request carries a valid session.
func (m *Manager) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.Verify(c.Request)
		if err != nil {
			m.logger.WarnContext(c.Request.Context(), "rejected admin request", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access denied, please log in"})
			return
		}
		c.Set("admin_id", claims.AdminID)
		c.Set("admin_username", claims.Username)
		c.Next()
	}
}

// Username reports the authenticated admin of the request context.
func Username(c *gin.Context) string {
	if v, ok := c.Get("admin_username"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
