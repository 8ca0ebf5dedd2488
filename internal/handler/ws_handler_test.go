package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/course-catalog/internal/events"
	ws "github.com/stemsi/course-catalog/internal/websocket"
)

func TestCatalogStream(t *testing.T) {
	hub := ws.NewHub(8, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws/v1/catalog", NewWSHandler(hub, zerolog.Nop(), nil).CatalogStream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/v1/catalog", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var welcome ws.WelcomeResponse
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, ws.EventWelcome, welcome.Event)
	assert.NotEmpty(t, welcome.ClientID)

	require.NoError(t, conn.WriteJSON(ws.RequestEnvelope{Action: ws.ActionPing}))
	var pong ws.PongResponse
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, ws.EventPong, pong.Event)

	require.NoError(t, conn.WriteJSON(ws.RequestEnvelope{Action: "subscribe"}))
	var unknown ws.ErrorResponse
	require.NoError(t, conn.ReadJSON(&unknown))
	assert.Equal(t, ws.EventError, unknown.Event)

	hub.Emit(events.Event{Operation: events.OpAppend, Code: "CS101", Outcome: events.OutcomeSuccess})
	var msg ws.CatalogResponse
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "course.append", msg.Name)
	assert.Equal(t, "CS101", msg.Code)
}

func TestBuildUpgrader_CheckOrigin(t *testing.T) {
	up := buildUpgrader([]string{"https://catalog.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/ws/v1/catalog", nil)
	req.Header.Set("Origin", "https://catalog.example.com")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, up.CheckOrigin(req))

	assert.True(t, buildUpgrader(nil).CheckOrigin(req))
}
