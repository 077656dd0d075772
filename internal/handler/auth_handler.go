package handler

import (
	"errors"
	"net/http"

	"github.com/abrito/financas/financas-sync/internal/service"
	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles anonymous session issuance
type AuthHandler struct {
	sessions *service.SessionService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// AnonymousRequest is the sign-in request body
type AnonymousRequest struct {
	FamilyID string `json:"familyId"`
}

// AnonymousResponse is the issued session
type AnonymousResponse struct {
	Token     string `json:"token"`
	FamilyID  string `json:"familyId"`
	ExpiresIn int64  `json:"expiresIn"`
}

// Anonymous handles POST /api/v1/auth/anonymous
func (h *AuthHandler) Anonymous(c echo.Context) error {
	var req AnonymousRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	session, err := h.sessions.CreateAnonymous(req.FamilyID)
	if err != nil {
		if errors.Is(err, domain.ErrAuthDisabled) {
			return NewAuthDisabledError(c, "Anonymous sign-in is disabled on this server")
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Family id is required", []ValidationError{
				{Field: "familyId", Message: "Family id must not be blank"},
			})
		}
		log.Error().Err(err).Msg("Failed to create anonymous session")
		return NewInternalError(c, "Failed to create session")
	}

	log.Info().Str("family_id", session.FamilyID).Msg("Anonymous session issued")

	return c.JSON(http.StatusOK, AnonymousResponse{
		Token:     session.Token.String(),
		FamilyID:  session.FamilyID,
		ExpiresIn: int64(service.SessionTTL.Seconds()),
	})
}
