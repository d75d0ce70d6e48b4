package handler

import (
	"net/http"
	"time"

	"github.com/AnTengye/qualitytrack/pkg/sse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventsHandler streams form notifications over Server-Sent Events
type EventsHandler struct {
	hub       *sse.Hub
	heartbeat time.Duration
}

func NewEventsHandler(hub *sse.Hub) *EventsHandler {
	return &EventsHandler{hub: hub, heartbeat: 30 * time.Second}
}

// Stream handles GET /api/events?form_id=xxx. Without form_id the client
// receives the notifications of every form.
func (h *EventsHandler) Stream(c *gin.Context) {
	client := &sse.Client{
		ID:     uuid.New().String(),
		Topic:  c.Query("form_id"),
		Events: make(chan sse.Event, 64),
	}
	h.hub.Register(client)
	defer h.hub.Unregister(client.ID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	sse.Event{EventType: "connected", Data: `{"client_id":"` + client.ID + `"}`}.WriteTo(c.Writer)
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case event, ok := <-client.Events:
			if !ok {
				return
			}
			if _, err := event.WriteTo(c.Writer); err != nil {
				return
			}
			c.Writer.Flush()
		case <-heartbeat.C:
			c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}
