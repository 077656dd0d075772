package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/abrito/financas/financas-sync/pkg/store"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// pongWait mirrors the server's ping interval with headroom.
	pongWait  = 60 * time.Second
	writeWait = 10 * time.Second
)

// wireEvent is a subscription message as the server sends it.
type wireEvent struct {
	Type    string          `json:"type"`
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
}

const (
	eventSnapshot = "month.snapshot"
	eventUpdated  = "month.updated"
	eventAbsent   = "month.absent"
)

// Subscribe opens a WebSocket for one month document. The first delivery
// is the current value (or absent); afterwards every accepted write for
// the month arrives as an event. The channel closes when the context is
// cancelled, the cancel func is called, or the connection drops.
func (c *Client) Subscribe(ctx context.Context, key string) (<-chan store.RemoteEvent, context.CancelFunc, error) {
	if !c.Configured() {
		return nil, nil, domain.ErrNotConfigured
	}

	wsURL, err := c.subscribeURL(key)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		cancel()
		if resp != nil && resp.StatusCode == 401 {
			return nil, nil, domain.ErrUnauthorized
		}
		return nil, nil, fmt.Errorf("subscribe %s: %w", key, err)
	}

	events := make(chan store.RemoteEvent, 8)

	// Close the socket when cancelled so the read loop unblocks.
	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		_ = conn.Close()
	}()

	go c.readLoop(ctx, conn, key, events)

	return events, cancel, nil
}

func (c *Client) subscribeURL(key string) (string, error) {
	u, err := url.Parse(c.monthURL(key) + "/subscribe")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	q := u.Query()
	q.Set("token", c.Token())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, key string, events chan<- store.RemoteEvent) {
	defer close(events)
	defer conn.Close()

	// The server pings on an interval; answering keeps the connection
	// alive and each ping extends our read deadline.
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
	})
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		_, payload, err := conn.ReadMessage()
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("key", key).Msg("Subscription connection lost")
			}
			return
		}

		var event wireEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Dropping malformed subscription event")
			continue
		}

		var delivery store.RemoteEvent
		switch event.Type {
		case eventSnapshot, eventUpdated:
			var data domain.MonthData
			if err := json.Unmarshal(event.Payload, &data); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Dropping undecodable month document")
				continue
			}
			delivery = store.RemoteEvent{Data: &data}
		case eventAbsent:
			delivery = store.RemoteEvent{}
		default:
			continue
		}

		select {
		case events <- delivery:
		case <-ctx.Done():
			return
		}
	}
}
