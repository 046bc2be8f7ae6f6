package debugapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// stream pushes the latest snapshot whenever its frame changes. Client
// messages are read and discarded so that a close is noticed.
func (h *handlers) stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", c.Request.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	var (
		sent      bool
		lastFrame uint64
	)
	push := func() error {
		snap := h.src.Snapshot()
		if snap == nil || (sent && snap.Frame == lastFrame) {
			return nil
		}
		if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return err
		}
		if err := conn.WriteJSON(newStatsResponse(snap)); err != nil {
			return err
		}
		sent, lastFrame = true, snap.Frame
		return nil
	}

	slog.Debug("websocket client connected", "remote", c.Request.RemoteAddr)
	for {
		if err := push(); err != nil {
			slog.Debug("websocket write failed", "remote", c.Request.RemoteAddr, "error", err)
			return
		}

		select {
		case <-closed:
			slog.Debug("websocket client disconnected", "remote", c.Request.RemoteAddr)
			return
		case <-h.quit:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
				time.Now().Add(time.Second))
			return
		case <-ticker.C:
		}
	}
}
