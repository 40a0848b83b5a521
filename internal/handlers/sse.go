package handlers

import (
	"github.com/dimitrije/salesdesk/internal/metrics"
	"github.com/dimitrije/salesdesk/internal/middleware"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/sse"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type SSEHandler struct {
	hub     SSEHubInterface
	metrics *metrics.Metrics
}

func NewSSEHandler(hub SSEHubInterface, m *metrics.Metrics) *SSEHandler {
	return &SSEHandler{
		hub:     hub,
		metrics: m,
	}
}

// Connect streams team and client events. Client events are limited to the
// clients the caller's profile can see.
func (h *SSEHandler) Connect(c *drift.Context) {
	profile := middleware.GetProfile(c)
	if profile == nil {
		c.Forbidden("no profile for this account")
		return
	}

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &sse.Client{
		ID:     clientID,
		UserID: profile.ID,
		Scope:  models.ScopeFor(profile),
		Send:   make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if h.metrics != nil {
		h.metrics.EventSubscribers.Inc()
		defer h.metrics.EventSubscribers.Dec()
	}

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	}, "system", ""); err != nil {
		return
	}

	done := c.Request.Context().Done()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
