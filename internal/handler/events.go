package handler

import (
	"io"
	"log"
	"net/http"

	"github.com/cuceimatch/matchcore/internal/service"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	hub *service.Hub
}

func NewEventHandler(hub *service.Hub) *EventHandler {
	return &EventHandler{hub: hub}
}

// Stream godoc
// @Summary Subscribe to core events (SSE)
// @Description Emits session.invalidated, match.surfaced and candidates.exhausted.
// @Tags events
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /api/v1/events [get]
func (h *EventHandler) Stream(c *gin.Context) {
	events, cancel := h.hub.Subscribe(0)
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	// 구독 직후 헤더를 내보내서 클라이언트가 연결 완료를 알 수 있게 함
	c.SSEvent("ready", gin.H{"status": "ok"})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case evt, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(evt.Type), evt)
			return true
		}
	})
	log.Printf("[EventHandler] subscriber disconnected")
}
