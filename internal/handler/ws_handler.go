package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	ws "github.com/stemsi/course-catalog/internal/websocket"
)

const clientSendBuffer = 32

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams catalog events to browsers.
type WSHandler struct {
	hub      *ws.Hub
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *ws.Hub, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:      hub,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// CatalogStream godoc
// WS /ws/v1/catalog
// Pushes one message per catalog operation. Clients may send {"action":"ping"}.
func (h *WSHandler) CatalogStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	client := ws.NewClient(uuid.NewString(), clientSendBuffer)
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	wsLog := h.log.With().Str("client_id", client.ID).Logger()

	if err := ws.WriteTyped(conn, ws.WelcomeResponse{Event: ws.EventWelcome, ClientID: client.ID}); err != nil {
		return
	}

	// gorilla allows a single writer, so the read loop hands replies to
	// this goroutine instead of writing itself.
	replies := make(chan interface{}, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}

			var reply interface{}
			switch msg.Action {
			case ws.ActionPing:
				reply = ws.PongResponse{Event: ws.EventPong}
			default:
				reply = ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)}
			}
			select {
			case replies <- reply:
			default:
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case reply := <-replies:
			if err := ws.WriteTyped(conn, reply); err != nil {
				return
			}
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, msg); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}
		}
	}
}
