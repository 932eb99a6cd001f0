// Package websocket serves request/reply conversations over a WebSocket:
// every inbound text frame is handed to a handler and its reply is written
// back on the same connection.
package websocket

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Handler answers one inbound message. A nil reply writes nothing; done
// ends the conversation after the reply is sent.
type Handler func(ctx context.Context, msg []byte) (reply []byte, done bool)

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SetOriginCheck replaces the upgrade origin policy.
func SetOriginCheck(check func(r *http.Request) bool) {
	upgrader.CheckOrigin = check
}

// OriginChecker accepts upgrades from the listed origins. "*" accepts any
// origin. Requests without an Origin header come from non-browser clients
// and are accepted.
func OriginChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.ToLower(strings.TrimRight(o, "/"))] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowed["*"] {
			return true
		}
		return allowed[strings.ToLower(origin)]
	}
}

const (
	readLimit  = 64 << 10
	pongWait   = 60 * time.Second
	writeWait  = 10 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Upgrade switches the request to a WebSocket and applies read limits and
// keepalive deadlines.
func Upgrade(c echo.Context) (Conn, error) {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil, err
	}
	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &gorillaConn{conn: ws}, nil
}

// Serve reads messages until the peer closes, ctx is cancelled, or the
// handler reports done. A normal close is not an error.
func Serve(ctx context.Context, conn Conn, handle Handler) error {
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	if p, ok := conn.(pinger); ok {
		go keepAlive(ctx, p)
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || isNormalClose(err) {
				return nil
			}
			return err
		}

		reply, done := handle(ctx, msg)
		if reply != nil {
			if err := conn.WriteMessage(gorillawebsocket.TextMessage, reply); err != nil {
				return err
			}
		}
		if done {
			return nil
		}
	}
}

func isNormalClose(err error) bool {
	var ce *gorillawebsocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code == gorillawebsocket.CloseNormalClosure || ce.Code == gorillawebsocket.CloseGoingAway
	}
	return false
}

type pinger interface {
	ping() error
}

func keepAlive(ctx context.Context, p pinger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.ping(); err != nil {
				return
			}
		}
	}
}

// gorillaConn adapts gorilla's connection. WriteControl may run alongside
// WriteMessage, so keepalive pings need no extra locking.
type gorillaConn struct {
	conn *gorillawebsocket.Conn
}

func (g *gorillaConn) ReadMessage() (int, []byte, error) {
	return g.conn.ReadMessage()
}

func (g *gorillaConn) WriteMessage(messageType int, data []byte) error {
	_ = g.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return g.conn.WriteMessage(messageType, data)
}

func (g *gorillaConn) ping() error {
	return g.conn.WriteControl(gorillawebsocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (g *gorillaConn) Close() error {
	return g.conn.Close()
}
