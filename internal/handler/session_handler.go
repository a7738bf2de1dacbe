package handler

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"mealtap/internal/model"
	"mealtap/internal/session"
)

const (
	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second
)

// SessionWatcher resolves a browser's session and streams its changes.
type SessionWatcher interface {
	Current(ctx context.Context, sid string) *model.Session
	Watch(sid string, fn func(session.Event)) (unsubscribe func())
}

// SessionHandler pushes sign-in status changes to open pages over a websocket.
type SessionHandler struct {
	watcher  SessionWatcher
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewSessionHandler creates a new session handler. Only same-origin pages may connect.
func NewSessionHandler(watcher SessionWatcher, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		watcher:  watcher,
		upgrader: websocket.Upgrader{},
		log:      log,
	}
}

// Stream sends the current status, then one message per change, until the
// page goes away. Each connection holds exactly one subscription.
func (h *SessionHandler) Stream(c echo.Context) error {
	sid := browserID(c)
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	defer conn.Close()

	events := make(chan session.Event, 8)
	unsubscribe := h.watcher.Watch(sid, func(ev session.Event) {
		select {
		case events <- ev:
		default:
			// slow reader; it will still get the next change
		}
	})
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	initial := session.EventFor(sid, h.watcher.Current(c.Request().Context(), sid))
	if err := h.write(conn, initial); err != nil {
		return nil
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return nil
		case ev := <-events:
			if err := h.write(conn, ev); err != nil {
				h.log.Debug("session stream write failed", zap.Error(err))
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

type statusMessage struct {
	Status model.AuthStatus `json:"status"`
	Email  string           `json:"email,omitempty"`
}

func (h *SessionHandler) write(conn *websocket.Conn, ev session.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(statusMessage{Status: ev.Status, Email: ev.Email})
}
