package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abrito/financas/financas-sync/internal/middleware"
	"github.com/abrito/financas/financas-sync/internal/service"
	"github.com/abrito/financas/financas-sync/internal/testutil"
	"github.com/abrito/financas/financas-sync/internal/websocket"
	"github.com/abrito/financas/financas-sync/pkg/domain"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type monthTestEnv struct {
	server   *httptest.Server
	repo     service.DocumentStore
	sessions *service.SessionService
	token    string
}

func newMonthTestEnv(t *testing.T) *monthTestEnv {
	t.Helper()
	return newMonthTestEnvWithStore(t, testutil.NewMockDocumentStore())
}

func newMonthTestEnvWithStore(t *testing.T, repo service.DocumentStore) *monthTestEnv {
	t.Helper()

	hub := websocket.NewHub()
	documents := service.NewDocumentService(repo, hub)
	sessions := service.NewSessionService(true)
	rateLimiter := middleware.NewRateLimiterWithConfig(6000, 100)
	t.Cleanup(rateLimiter.Stop)

	e := echo.New()
	RegisterRoutes(e,
		middleware.NewAuthMiddleware(sessions),
		rateLimiter,
		NewAuthHandler(sessions),
		NewMonthHandler(documents, hub, nil),
	)

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	session, err := sessions.CreateAnonymous("brito")
	require.NoError(t, err)

	return &monthTestEnv{
		server:   server,
		repo:     repo,
		sessions: sessions,
		token:    session.Token.String(),
	}
}

func (env *monthTestEnv) do(t *testing.T, method, path string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, env.server.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func monthDoc(t *testing.T) []byte {
	t.Helper()
	data := domain.NewMonthData()
	data.Expenses = append(data.Expenses, domain.Transaction{
		ID:          "exp_1",
		Description: "ALUGUEL",
		Amount:      decimal.RequireFromString("1300.00"),
		Category:    domain.CategoryHousing,
		DueDate:     "2026-02-05",
	})
	data.Touch()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return raw
}

func monthDocAt(t *testing.T, updatedAt int64) []byte {
	t.Helper()
	data := domain.NewMonthData()
	data.Expenses = append(data.Expenses, domain.Transaction{
		ID:          "exp_1",
		Description: "ALUGUEL",
		Amount:      decimal.RequireFromString("1300.00"),
		Category:    domain.CategoryHousing,
		DueDate:     "2026-02-05",
	})
	data.UpdatedAt = updatedAt
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return raw
}

// gatedStore wraps the mock store so a test can hold a read open while
// another request writes.
type gatedStore struct {
	*testutil.MockDocumentStore
	mu       sync.Mutex
	entered  chan struct{}
	release  chan struct{}
	upserted chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{MockDocumentStore: testutil.NewMockDocumentStore()}
}

// holdNextGet makes the next Get block until release is closed; entered
// is closed once the read has started.
func (s *gatedStore) holdNextGet() (entered, release chan struct{}) {
	entered = make(chan struct{})
	release = make(chan struct{})
	s.mu.Lock()
	s.entered, s.release = entered, release
	s.mu.Unlock()
	return entered, release
}

// signalNextUpsert returns a channel closed after the next completed Upsert.
func (s *gatedStore) signalNextUpsert() chan struct{} {
	ch := make(chan struct{})
	s.mu.Lock()
	s.upserted = ch
	s.mu.Unlock()
	return ch
}

func (s *gatedStore) Get(ctx context.Context, familyID, key string) ([]byte, error) {
	s.mu.Lock()
	entered, release := s.entered, s.release
	s.entered, s.release = nil, nil
	s.mu.Unlock()
	if entered != nil {
		close(entered)
		<-release
	}
	return s.MockDocumentStore.Get(ctx, familyID, key)
}

func (s *gatedStore) Upsert(ctx context.Context, familyID, key string, doc []byte, updatedAt int64) error {
	err := s.MockDocumentStore.Upsert(ctx, familyID, key, doc, updatedAt)
	s.mu.Lock()
	upserted := s.upserted
	s.upserted = nil
	s.mu.Unlock()
	if upserted != nil {
		close(upserted)
	}
	return err
}

func TestMonthHandler_GetPut(t *testing.T) {
	env := newMonthTestEnv(t)

	t.Run("get missing month", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/v1/families/brito/months/2026-02", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("put then get", func(t *testing.T) {
		doc := monthDoc(t)

		resp := env.do(t, http.MethodPut, "/api/v1/families/brito/months/2026-02", doc)
		resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = env.do(t, http.MethodGet, "/api/v1/families/brito/months/2026-02", nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got bytes.Buffer
		_, err := got.ReadFrom(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, string(doc), got.String())
	})

	t.Run("invalid key", func(t *testing.T) {
		resp := env.do(t, http.MethodPut, "/api/v1/families/brito/months/2026-2", monthDoc(t))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("no token", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/v1/families/brito/months/2026-02", nil)
		require.NoError(t, err)
		resp, err := env.server.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token for another family", func(t *testing.T) {
		other, err := env.sessions.CreateAnonymous("torres")
		require.NoError(t, err)

		req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/v1/families/brito/months/2026-02", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+other.Token.String())
		resp, err := env.server.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func readEvent(t *testing.T, conn *ws.Conn) websocket.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var event websocket.Event
	require.NoError(t, json.Unmarshal(payload, &event))
	return event
}

func TestMonthHandler_Subscribe(t *testing.T) {
	env := newMonthTestEnv(t)
	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http")

	t.Run("absent then updates", func(t *testing.T) {
		conn, _, err := ws.DefaultDialer.Dial(
			wsURL+"/api/v1/families/brito/months/2026-03/subscribe?token="+env.token, nil)
		require.NoError(t, err)
		defer conn.Close()

		event := readEvent(t, conn)
		assert.Equal(t, websocket.EventTypeAbsent, event.Type)
		assert.Equal(t, "2026-03", event.Key)
		assert.Empty(t, event.Payload)

		doc := monthDoc(t)
		resp := env.do(t, http.MethodPut, "/api/v1/families/brito/months/2026-03", doc)
		resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		event = readEvent(t, conn)
		assert.Equal(t, websocket.EventTypeUpdated, event.Type)
		assert.JSONEq(t, string(doc), string(event.Payload))
	})

	t.Run("snapshot when document exists", func(t *testing.T) {
		doc := monthDoc(t)
		resp := env.do(t, http.MethodPut, "/api/v1/families/brito/months/2026-04", doc)
		resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		conn, _, err := ws.DefaultDialer.Dial(
			wsURL+"/api/v1/families/brito/months/2026-04/subscribe?token="+env.token, nil)
		require.NoError(t, err)
		defer conn.Close()

		event := readEvent(t, conn)
		assert.Equal(t, websocket.EventTypeSnapshot, event.Type)
		assert.JSONEq(t, string(doc), string(event.Payload))
	})

	t.Run("other months do not leak in", func(t *testing.T) {
		conn, _, err := ws.DefaultDialer.Dial(
			wsURL+"/api/v1/families/brito/months/2026-05/subscribe?token="+env.token, nil)
		require.NoError(t, err)
		defer conn.Close()

		event := readEvent(t, conn)
		require.Equal(t, websocket.EventTypeAbsent, event.Type)

		resp := env.do(t, http.MethodPut, "/api/v1/families/brito/months/2026-06", monthDoc(t))
		resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
		_, _, err = conn.ReadMessage()
		assert.Error(t, err, "write to a different month must not reach this subscriber")
	})

	t.Run("write landing during subscribe is not lost", func(t *testing.T) {
		repo := newGatedStore()
		env := newMonthTestEnvWithStore(t, repo)
		wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http")
		path := "/api/v1/families/brito/months/2026-07"

		resp := env.do(t, http.MethodPut, path, monthDocAt(t, 1))
		resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		entered, release := repo.holdNextGet()
		upserted := repo.signalNextUpsert()

		conn, _, err := ws.DefaultDialer.Dial(wsURL+path+"/subscribe?token="+env.token, nil)
		require.NoError(t, err)
		defer conn.Close()

		// the handler is now blocked reading its snapshot
		select {
		case <-entered:
		case <-time.After(2 * time.Second):
			t.Fatal("snapshot read never started")
		}

		// a write lands while that read is in flight
		doc2 := monthDocAt(t, 2)
		go func() {
			req, err := http.NewRequest(http.MethodPut, env.server.URL+path, bytes.NewReader(doc2))
			if err != nil {
				return
			}
			req.Header.Set("Authorization", "Bearer "+env.token)
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			if resp, err := env.server.Client().Do(req); err == nil {
				resp.Body.Close()
			}
		}()
		select {
		case <-upserted:
		case <-time.After(2 * time.Second):
			t.Fatal("concurrent write never reached the store")
		}
		close(release)

		// the first delivery already reflects the concurrent write
		event := readEvent(t, conn)
		require.Equal(t, websocket.EventTypeSnapshot, event.Type)
		var got domain.MonthData
		require.NoError(t, json.Unmarshal(event.Payload, &got))
		assert.EqualValues(t, 2, got.UpdatedAt)
	})

	t.Run("rejects missing token", func(t *testing.T) {
		_, resp, err := ws.DefaultDialer.Dial(
			wsURL+"/api/v1/families/brito/months/2026-03/subscribe", nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
