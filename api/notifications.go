package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flowdeck-app/flowdeck/log"
	"github.com/flowdeck-app/flowdeck/notifications"
)

// NotificationStream handles GET /api/notifications/stream (SSE)
func (s *Server) NotificationStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	events, unsubscribe := s.notifier.Subscribe()
	defer unsubscribe()

	// Initial connected event
	sendSSEEvent(c, notifications.Event{
		Type:      notifications.EventConnected,
		Timestamp: time.Now().UnixMilli(),
	})
	c.Writer.Flush()

	log.Debug().Msg("client connected to notification stream")

	// Heartbeat ticker
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			sendSSEEvent(c, event)
			c.Writer.Flush()

		case <-ticker.C:
			fmt.Fprintf(c.Writer, ": heartbeat\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			log.Debug().Msg("client disconnected from notification stream")
			return
		}
	}
}

func sendSSEEvent(c *gin.Context, event notifications.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event")
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
}
