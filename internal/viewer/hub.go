// Package viewer streams committed world state to websocket clients and
// feeds their key presses back into the simulation as steering input.
package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/world"
	"github.com/l1jgo/simcore/internal/system"
)

const (
	sendBuffer   = 8
	writeTimeout = 5 * time.Second
)

// Sprite is one drawable entity.
type Sprite struct {
	ID     uint64  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"r"`
	Color  string  `json:"color"`
}

type Snapshot struct {
	Type    string   `json:"type"`
	Frame   uint64   `json:"frame"`
	Sprites []Sprite `json:"sprites"`
}

type inboundMessage struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

var drawable = ecs.Join{
	"position":   component.KindPosition,
	"renderable": component.KindRenderable,
}

// BuildSnapshot collects every entity with a position and a color, in
// ascending id order. Size is optional.
func BuildSnapshot(store *ecs.Store, frame uint64) Snapshot {
	rows := store.Query(ecs.With(drawable))
	snap := Snapshot{Type: "state", Frame: frame, Sprites: make([]Sprite, 0, len(rows))}
	for _, r := range rows {
		pos, _ := ecs.RoleAs[component.Position](r, "position")
		ren, _ := ecs.RoleAs[component.Renderable](r, "renderable")
		sp := Sprite{ID: uint64(r.ID), X: pos.X, Y: pos.Y, Color: ren.Color}
		if c, ok := store.Lookup(r.ID, component.KindSize); ok {
			sp.Radius = c.(component.Size).Radius
		}
		snap.Sprites = append(snap.Sprites, sp)
	}
	return snap
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans snapshots out to every connected client. Slow clients miss
// frames rather than stall the simulation.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	input    *system.LatchInput
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// NewHub creates a hub. input may be nil, in which case key messages are
// ignored.
func NewHub(input *system.LatchInput, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		input:   input,
		log:     log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Info("viewer connected", zap.String("remote", r.RemoteAddr))

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) readLoop(c *client) {
	defer h.drop(c)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.log.Debug("bad viewer message", zap.Error(err))
			continue
		}
		if msg.Type == "key" && h.input != nil {
			if dir := system.ParseDirection(msg.Key); dir != system.DirNone {
				h.input.Press(dir)
			}
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			c.conn.Close()
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.Close()
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends snap to every client.
func (h *Hub) Broadcast(snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.log.Warn("marshal snapshot", zap.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// Hook returns a commit hook that broadcasts the committed state. It reads
// the store, so it must run on the goroutine that advances the world.
func (h *Hub) Hook(store *ecs.Store) func(world.Report) {
	return func(rep world.Report) {
		if h.Clients() == 0 {
			return
		}
		h.Broadcast(BuildSnapshot(store, rep.Frame))
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// Serve runs an HTTP server with the hub mounted at /ws until ctx is done.
func Serve(ctx context.Context, addr string, h *Hub, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info("viewer listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		h.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
