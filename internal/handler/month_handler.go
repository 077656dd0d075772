package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/abrito/financas/financas-sync/internal/middleware"
	"github.com/abrito/financas/financas-sync/internal/service"
	"github.com/abrito/financas/financas-sync/internal/websocket"
	"github.com/abrito/financas/financas-sync/pkg/domain"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// MonthHandler serves the shared month documents
type MonthHandler struct {
	documents      *service.DocumentService
	hub            *websocket.Hub
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewMonthHandler creates a new MonthHandler
func NewMonthHandler(documents *service.DocumentService, hub *websocket.Hub, allowedOrigins []string) *MonthHandler {
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &MonthHandler{
		documents:      documents,
		hub:            hub,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *MonthHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Allow requests with no Origin header (e.g., same-origin or non-browser clients)
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// GetMonth handles GET /api/v1/families/:familyId/months/:key
func (h *MonthHandler) GetMonth(c echo.Context) error {
	familyID := middleware.GetFamilyID(c)
	if familyID == "" {
		return NewUnauthorizedError(c, "Session required")
	}
	key := c.Param("key")

	doc, err := h.documents.GetMonth(c.Request().Context(), familyID, key)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Invalid month key", []ValidationError{
				{Field: "key", Message: "Month key must look like 2026-02"},
			})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return NewNotFoundError(c, "No document for this month yet")
		}
		log.Error().Err(err).Str("family_id", familyID).Str("key", key).Msg("Failed to get month document")
		return NewInternalError(c, "Failed to get month document")
	}

	return c.JSONBlob(http.StatusOK, doc)
}

// PutMonth handles PUT /api/v1/families/:familyId/months/:key.
// The body is the whole document; it replaces whatever is stored.
func (h *MonthHandler) PutMonth(c echo.Context) error {
	familyID := middleware.GetFamilyID(c)
	if familyID == "" {
		return NewUnauthorizedError(c, "Session required")
	}
	key := c.Param("key")

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return NewValidationError(c, "Failed to read request body", nil)
	}
	if len(raw) == 0 {
		return NewValidationError(c, "Request body is required", nil)
	}

	if err := h.documents.SaveMonth(c.Request().Context(), familyID, key, raw); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Invalid month document", nil)
		}
		log.Error().Err(err).Str("family_id", familyID).Str("key", key).Msg("Failed to save month document")
		return NewInternalError(c, "Failed to save month document")
	}

	return c.NoContent(http.StatusNoContent)
}

// Subscribe handles GET /api/v1/families/:familyId/months/:key/subscribe.
// It upgrades to a WebSocket, immediately delivers the current document
// (or an absent marker), then streams every accepted write for the month.
func (h *MonthHandler) Subscribe(c echo.Context) error {
	familyID := middleware.GetFamilyID(c)
	if familyID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "session required")
	}
	key := c.Param("key")
	if _, _, err := service.ParseMonthKey(key); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid month key")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	topic := websocket.Topic(familyID, key)
	client := websocket.NewClient(conn, topic, h.hub)

	// Registration and the snapshot read happen under the hub lock so a
	// write landing mid-subscribe is either reflected in the snapshot or
	// delivered right after it; the subscriber always converges on the
	// latest document.
	err = h.hub.RegisterWithSnapshot(client, func() ([]byte, error) {
		doc, err := h.documents.GetMonth(c.Request().Context(), familyID, key)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		initial := websocket.MonthAbsent(key)
		if doc != nil {
			initial = websocket.MonthSnapshot(key, doc)
		}
		return initial.ToJSON()
	})
	if err != nil {
		log.Error().Err(err).Str("family_id", familyID).Str("key", key).Msg("Failed to load snapshot for subscription")
		conn.Close()
		return nil
	}

	log.Info().
		Str("family_id", familyID).
		Str("key", key).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}
