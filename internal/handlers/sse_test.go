package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/salesdesk/internal/metrics"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/dimitrije/salesdesk/internal/sse"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSSEHandler_Connect_WithoutProfile(t *testing.T) {
	hub := new(mockSSEHub)
	handler := NewSSEHandler(hub, nil)

	app := drift.New()
	app.Get("/events", handler.Connect)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/events", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	hub.AssertNotCalled(t, "Register", mock.Anything)
}

func TestSSEHandler_Connect_StreamsScopedEvents(t *testing.T) {
	hub := new(mockSSEHub)
	m := metrics.New(prometheus.NewRegistry())
	handler := NewSSEHandler(hub, m)
	rep := testProfile(models.RoleSalesRep)

	var registered *sse.Client
	hub.On("Register", mock.AnythingOfType("*sse.Client")).Run(func(args mock.Arguments) {
		registered = args.Get(0).(*sse.Client)
		registered.Send <- []byte(`{"type":"client_created","data":{"name":"Acme"}}`)
	}).Return()
	hub.On("Unregister", mock.AnythingOfType("*sse.Client")).Return()

	app := drift.New()
	app.Use(withProfile(rep))
	app.Get("/events", handler.Connect)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)

	rec := serve(app, req)

	require.NotNil(t, registered)
	assert.Equal(t, rep.ID, registered.UserID)
	assert.Equal(t, models.ScopeFor(rep), registered.Scope)
	assert.Contains(t, rec.Body.String(), "connected")
	assert.Contains(t, rec.Body.String(), "client_created")
	hub.AssertCalled(t, "Unregister", registered)
}
