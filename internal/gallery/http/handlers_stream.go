package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/logging"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/mint"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/wallet"
)

// StreamViewEvents streams mint state changes for a view using Server-Sent Events (SSE)
func (h *Handler) StreamViewEvents(c *gin.Context) {
	viewID := c.Param("view_id")
	g, ok := h.view(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	events := make(chan mint.Event, 16)
	onEvent := func(ev mint.Event) {
		select {
		case events <- ev:
		default:
			// slow reader; the next event carries the full view anyway
		}
	}
	topic := mint.Topic(viewID)
	if err := h.bus.Subscribe(topic, onEvent); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		return
	}
	defer func() {
		if err := h.bus.Unsubscribe(topic, onEvent); err != nil {
			logging.NewLogger(c.Request.Context()).LogError("gallery.stream", err)
		}
	}()

	requests := make(chan wallet.Request, 4)
	onRequest := func(req wallet.Request) {
		select {
		case requests <- req:
		default:
			// still readable from GET mint/wallet
		}
	}
	requestTopic := wallet.RequestTopic(viewID)
	if err := h.bus.Subscribe(requestTopic, onRequest); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		return
	}
	defer func() {
		if err := h.bus.Unsubscribe(requestTopic, onRequest); err != nil {
			logging.NewLogger(c.Request.Context()).LogError("gallery.stream", err)
		}
	}()

	writeEvent(c, flusher, "initial", gin.H{"view": g.Snapshot()})

	ctx := c.Request.Context()

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()

	// the view may be evicted by the janitor or deleted by another tab
	liveness := time.NewTicker(5 * time.Second)
	defer liveness.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-keepAlive.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case <-liveness.C:
			if _, ok := h.galleries.Get(viewID); !ok {
				writeEvent(c, flusher, "deleted", gin.H{"event": "deleted", "view_id": viewID})
				return
			}

		case ev := <-events:
			writeEvent(c, flusher, "mint", gin.H{"event": ev, "view": g.Snapshot()})

		case req := <-requests:
			writeEvent(c, flusher, "wallet", gin.H{"request": req})
		}
	}
}

func writeEvent(c *gin.Context, flusher http.Flusher, name string, payload interface{}) {
	data, _ := json.Marshal(payload)
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", name, string(data))
	flusher.Flush()
}
