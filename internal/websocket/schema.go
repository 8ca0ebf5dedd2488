package websocket

import (
	"time"

	"github.com/stemsi/course-catalog/internal/events"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventWelcome Event = "welcome"
	EventCatalog Event = "catalog"
	EventPong    Event = "pong"
)

// WelcomeResponse is sent once after the upgrade completes.
type WelcomeResponse struct {
	Event    Event  `json:"event"`
	ClientID string `json:"client_id"`
}

// CatalogResponse relays one store event to subscribers.
type CatalogResponse struct {
	Event      Event            `json:"event"`
	Name       string           `json:"name"`
	Operation  events.Operation `json:"operation"`
	Code       string           `json:"code,omitempty"`
	Outcome    events.Outcome   `json:"outcome"`
	DurationMS float64          `json:"duration_ms"`
	At         time.Time        `json:"at"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// NewCatalogResponse converts a store event into its wire form.
func NewCatalogResponse(e events.Event) CatalogResponse {
	return CatalogResponse{
		Event:      EventCatalog,
		Name:       e.Name(),
		Operation:  e.Operation,
		Code:       e.Code,
		Outcome:    e.Outcome,
		DurationMS: float64(e.Duration) / float64(time.Millisecond),
		At:         e.At,
	}
}
