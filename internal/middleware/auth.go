package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/abrito/financas/financas-sync/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// SessionKey is the context key for the resolved session
	SessionKey contextKey = "session"
	// FamilyIDKey is the context key for the session's family id
	FamilyIDKey contextKey = "family_id"
)

// SessionValidator resolves a bearer token to its session
type SessionValidator interface {
	Validate(token string) (*service.Session, error)
}

// AuthMiddleware provides anonymous-session validation middleware
type AuthMiddleware struct {
	sessions SessionValidator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(sessions SessionValidator) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Authenticate returns an Echo middleware that validates session tokens.
// The token comes from the Authorization header, or from the "token" query
// parameter for WebSocket upgrades where browsers cannot set headers.
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				token = c.QueryParam("token")
			}
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}

			session, err := m.sessions.Validate(token)
			if err != nil {
				log.Debug().Err(err).Msg("Session validation failed")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			// Sessions are family-scoped: a token for one family cannot
			// read or write another family's documents.
			if familyID := c.Param("familyId"); familyID != "" && familyID != session.FamilyID {
				return echo.NewHTTPError(http.StatusUnauthorized, "token not valid for family")
			}

			ctx := context.WithValue(c.Request().Context(), SessionKey, session)
			ctx = context.WithValue(ctx, FamilyIDKey, session.FamilyID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// GetSession extracts the session from the context
func GetSession(c echo.Context) *service.Session {
	if s, ok := c.Request().Context().Value(SessionKey).(*service.Session); ok {
		return s
	}
	return nil
}

// GetFamilyID extracts the session's family id from the context
func GetFamilyID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(FamilyIDKey).(string); ok {
		return id
	}
	return ""
}

// GetSessionToken extracts the session token from the context
func GetSessionToken(c echo.Context) uuid.UUID {
	if s := GetSession(c); s != nil {
		return s.Token
	}
	return uuid.Nil
}
