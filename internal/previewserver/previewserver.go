// Package previewserver broadcasts computed layers to connected browser
// clients over WebSocket as they finish, so an editor-integrated preview
// can render a model incrementally instead of waiting for the whole
// pipeline run to complete. It narrows the teacher's
// internal/network.NetworkModule WebSocket server (named servers, a
// registry of named clients, broadcast/send-to-one/disconnect operations)
// down to the single-server, broadcast-only shape this collaborator needs.
package previewserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/csgslice/csgslice/internal/pipeline"
)

// LayerMessage is the JSON payload broadcast to clients after each layer
// finishes evaluating.
type LayerMessage struct {
	RunID string                 `json:"run_id"`
	Index int                    `json:"index"`
	Z     float64                `json:"z"`
	Paths [][]int                `json:"paths"`
	Verts []map[string]float64   `json:"verts"`
}

// Server is a single WebSocket broadcast endpoint.
type Server struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
	nextID  int
}

type client struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

// New builds a Server. Origin checking is disabled the same way a local
// developer preview tool typically leaves it: this is meant to run on
// localhost alongside the pipeline, not to be exposed to the network.
func New() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// Handler upgrades incoming requests to WebSocket connections and
// registers them as broadcast recipients until they disconnect.
func (s *Server) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.register(conn)
	}
}

func (s *Server) register(conn *websocket.Conn) {
	s.mu.Lock()
	s.nextID++
	id := fmt.Sprintf("client-%d", s.nextID)
	c := &client{conn: conn}
	s.clients[id] = c
	s.mu.Unlock()

	go func() {
		defer s.disconnect(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) disconnect(id string) {
	s.mu.Lock()
	c, exists := s.clients[id]
	if exists {
		delete(s.clients, id)
	}
	s.mu.Unlock()
	if !exists {
		return
	}
	c.mu.Lock()
	c.closed = true
	c.conn.Close()
	c.mu.Unlock()
}

// BroadcastLayer sends one finished layer to every connected client. A
// write failure marks that client closed (it stays registered until its
// read loop disconnects it) rather than aborting the whole broadcast, mirroring the teacher's broadcast loop
// which keeps going after one client errors and reports only the last
// failure.
func (s *Server) BroadcastLayer(runID string, l pipeline.Layer) error {
	msg := LayerMessage{
		RunID: runID,
		Index: l.Index,
		Z:     l.Z,
		Paths: l.Polygons.Paths,
	}
	msg.Verts = make([]map[string]float64, len(l.Polygons.Verts))
	for i, v := range l.Polygons.Verts {
		msg.Verts[i] = map[string]float64{"x": v.Pos.X, "y": v.Pos.Y}
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("previewserver: marshal layer %d: %w", l.Index, err)
	}

	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	var lastErr error
	for _, c := range clients {
		c.mu.Lock()
		if !c.closed {
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				lastErr = err
				c.closed = true
			}
		}
		c.mu.Unlock()
	}
	return lastErr
}

// ClientCount reports how many clients are currently connected.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
