package remote

import (
	"testing"
	"time"

	"github.com/abrito/financas/financas-sync/pkg/store"
	"github.com/labstack/echo/v4"
)

func echoServer(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return e
}

func waitEvent(t *testing.T, events <-chan store.RemoteEvent) store.RemoteEvent {
	t.Helper()
	select {
	case ev, open := <-events:
		if !open {
			t.Fatal("event channel closed unexpectedly")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for remote event")
		return store.RemoteEvent{}
	}
}
