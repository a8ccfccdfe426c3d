package scan

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/mirai-garden/plant-backend/internal/auth"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Events godoc
// @Summary      Stream scan progress
// @Description  Websocket that sends the current progress and then every transition until the scan is done or failed
// @Tags         scans
// @Security     BearerAuth
// @Param        id            path   string  true   "Scan ID"
// @Param        access_token  query  string  false  "Bearer token for clients that cannot set headers"
// @Success      101
// @Failure      401  {object}  shared.APIError
// @Router       /api/scans/{id}/events [get]
func (h *Handler) Events(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}
	scanID := c.Param("id")

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request().Context()))
	defer cancel()
	go readPump(ws, cancel)

	updates, err := h.progress.Watch(ctx, userID, scanID)
	if err != nil {
		h.logger.Error("failed to watch scan progress", "error", err, "scan_id", scanID)
		closeWith(ws, websocket.CloseInternalServerErr, "progress unavailable")
		return nil
	}

	// Read after subscribing so no transition falls between the two.
	current, err := h.currentProgress(ctx, userID, scanID)
	if err != nil {
		closeWith(ws, websocket.CloseInternalServerErr, "progress unavailable")
		return nil
	}
	if current == nil {
		current = &Progress{ScanID: scanID, UserID: userID, State: StateIdle, UpdatedAt: time.Now().UTC()}
	}
	if err := writeProgress(ws, current); err != nil {
		return nil
	}
	if current.State.Terminal() {
		closeWith(ws, websocket.CloseNormalClosure, string(current.State))
		return nil
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case p, ok := <-updates:
			if !ok {
				return nil
			}
			if err := writeProgress(ws, p); err != nil {
				return nil
			}
			if p.State.Terminal() {
				closeWith(ws, websocket.CloseNormalClosure, string(p.State))
				return nil
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

// readPump discards client messages and cancels the stream once the peer goes away.
func readPump(ws *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	ws.SetReadLimit(512)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

func writeProgress(ws *websocket.Conn, p *Progress) error {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.WriteJSON(progressResponse(p))
}

func closeWith(ws *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
