// Package streamendpoint implements the Streaming Endpoint (spec.md §4.5):
// binds an accepted push socket to a subscription id and carries
// application-level heartbeats. An unknown subscription id is answered with
// an "error" frame before the socket is closed. No WebSocket close frame is
// sent on any path, so the close code does not distinguish an unknown
// subscription from an internal error or a normal close.
//
// Adapted from the teacher's internal/session read/write pump pair
// (gorilla/websocket), but the pumps here drain a
// *subscription.Stream instead of a per-client send channel, and the text
// frames carry the spec's {"type": ...} discriminator instead of raw ITCH
// messages.
package streamendpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ndrandal/quant-gateway/internal/subscription"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type frame struct {
	Type           string      `json:"type"`
	SubscriptionID string      `json:"subscription_id,omitempty"`
	Data           interface{} `json:"data,omitempty"`
	Message        string      `json:"message,omitempty"`
	TS             int64       `json:"ts,omitempty"`
}

type controlFrame struct {
	Type string `json:"type"`
}

// Handler returns a gin handler that upgrades the request to a push socket
// bound to the subscription id path parameter.
func Handler(mgr *subscription.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := subscription.ID(c.Param("subscription_id"))

		stream, err := mgr.Stream(id)
		conn, upErr := upgrader.Upgrade(c.Writer, c.Request, nil)
		if upErr != nil {
			log.Warnw("websocket upgrade failed", "error", upErr)
			return
		}

		if err != nil {
			writeFrame(conn, frame{Type: "error", Message: "subscription not found"})
			conn.Close()
			return
		}

		log.Infow("streaming endpoint connected", "subscription_id", id)
		writeFrame(conn, frame{Type: "connected", SubscriptionID: string(id), TS: time.Now().UnixMilli()})

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		done := make(chan struct{})
		go readPump(conn, cancel, done, log)
		writePump(ctx, conn, stream, log)
		<-done
	}
}

// readPump handles client→server control frames (ping) and cancels ctx
// when the socket closes from the client side. It does not unsubscribe —
// socket lifetime is independent of subscription lifetime (spec.md §4.5).
func readPump(conn *websocket.Conn, cancel context.CancelFunc, done chan<- struct{}, log *zap.SugaredLogger) {
	defer close(done)
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var ctrl controlFrame
		if err := json.Unmarshal(msg, &ctrl); err != nil {
			continue
		}
		if ctrl.Type == "ping" {
			writeFrame(conn, frame{Type: "pong", TS: time.Now().UnixMilli()})
		}
	}
}

// writePump drains the subscription's async iterator and forwards each
// frame as a "quote" text frame. Either pump ending cancels the other.
func writePump(ctx context.Context, conn *websocket.Conn, stream *subscription.Stream, log *zap.SugaredLogger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		default:
		}

		tick, ok := stream.Next(ctx)
		if !ok {
			return
		}
		if err := writeFrame(conn, frame{Type: "quote", Data: tick, TS: time.Now().UnixMilli()}); err != nil {
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, f frame) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
