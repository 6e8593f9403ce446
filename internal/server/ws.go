package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/monitoring"
)

// StreamSubscriberID is the id the stream registers on the results topic.
const StreamSubscriberID = "stream"

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// TickMessage is one inbound websocket frame. Exactly one form is used per
// frame:
//
//	{"x": 0.4, "y": 0.6}          pinch at a point
//	{"pinch": false}              no pinch this tick
//	{"hands": [...]}              raw landmarks, run through the pinch tracker
//	{"flush": true}               end the current attempt now
type TickMessage struct {
	X     *float64                 `json:"x,omitempty"`
	Y     *float64                 `json:"y,omitempty"`
	Pinch *bool                    `json:"pinch,omitempty"`
	Hands []detector.HandLandmarks `json:"hands,omitempty"`
	Flush bool                     `json:"flush,omitempty"`
}

// StreamMessage is one outbound websocket frame.
type StreamMessage struct {
	Type        string           `json:"type"`
	Recognition *app.Recognition `json:"recognition,omitempty"`
	Error       string           `json:"error,omitempty"`
}

var errBadTick = errors.New("tick needs x and y, pinch, hands or flush")

// StreamHandler feeds websocket ticks into the segmenter and broadcasts
// every recognition to all connected clients.
type StreamHandler struct {
	app *app.App

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(msg StreamMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// NewStreamHandler creates a StreamHandler and subscribes it to the app's
// recognitions.
func NewStreamHandler(a *app.App) *StreamHandler {
	h := &StreamHandler{
		app:     a,
		clients: make(map[*client]struct{}),
	}
	a.Pipeline().Results().Subscribe(StreamSubscriberID, h.broadcast)
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		monitoring.Logf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		if err := h.apply(data); err != nil {
			if err := c.send(StreamMessage{Type: "error", Error: err.Error()}); err != nil {
				return
			}
		}
	}
}

// apply decodes one tick and forwards it.
func (h *StreamHandler) apply(data []byte) error {
	var tick TickMessage
	if err := json.Unmarshal(data, &tick); err != nil {
		return err
	}

	seg := h.app.Segmenter()
	switch {
	case tick.Flush:
		seg.Flush()
	case tick.Hands != nil:
		h.app.Tracker().Tick(tick.Hands)
	case tick.X != nil && tick.Y != nil:
		seg.AddPoint(geometry.Point2D{X: *tick.X, Y: *tick.Y})
	case tick.Pinch != nil && !*tick.Pinch:
		seg.StartNewStroke()
	default:
		return errBadTick
	}
	return nil
}

func (h *StreamHandler) broadcast(rec app.Recognition) error {
	msg := StreamMessage{Type: "recognition", Recognition: &rec}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(msg); err != nil {
			monitoring.Logf("websocket write error: %v", err)
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *StreamHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and stops receiving recognitions.
func (h *StreamHandler) Close() {
	h.app.Pipeline().Results().Unsubscribe(StreamSubscriberID)

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.mu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		c.mu.Unlock()
		c.conn.Close()
	}
}
