package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sweeney/countdown-timer/internal/status"
)

// Stream timing and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	minInterval      = 100 * time.Millisecond
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000
)

type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// The status page is served from the same origin; other clients are local tools.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS streams status snapshots until the client goes away.
func (s *Server) handleWS(c *gin.Context) {
	interval := parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warnw("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer ping.Stop()

	if err := s.sendStatus(conn); err != nil {
		s.log.Debugw("ws initial write failed", "err", err)
		return
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.log.Debugw("ws ping failed", "err", err)
				return
			}
		case <-ticker.C:
			if err := s.sendStatus(conn); err != nil {
				s.log.Debugw("ws write failed", "err", err)
				return
			}
		}
	}
}

func (s *Server) sendStatus(conn *websocket.Conn) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: "status", Data: status.Build(s.tracker.Snapshot())})
}

// parseInterval reads ?interval=500ms or ?interval_ms=500 within bounds.
func parseInterval(c *gin.Context) time.Duration {
	if v := c.Query("interval"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= minInterval && d <= maxInterval {
			return d
		}
	}
	if v := c.Query("interval_ms"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 && ms <= maxIntervalMilli {
			d := time.Duration(ms) * time.Millisecond
			if d >= minInterval {
				return d
			}
		}
	}
	return defaultInterval
}
