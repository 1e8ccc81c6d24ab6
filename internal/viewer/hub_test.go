package viewer

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/world"
	"github.com/l1jgo/simcore/internal/system"
)

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)
	return conn
}

func TestBuildSnapshot(t *testing.T) {
	w, err := world.New(func(in *world.Init) error {
		if _, err := in.Spawn(component.Position{X: 1, Y: 2}, component.Renderable{Color: "red"}, component.Size{Radius: 3}); err != nil {
			return err
		}
		if _, err := in.Spawn(component.Position{X: 5, Y: 5}); err != nil {
			return err
		}
		_, err := in.Spawn(component.Position{X: 9, Y: 9}, component.Renderable{Color: "blue"})
		return err
	})
	require.NoError(t, err)

	snap := BuildSnapshot(w.Store(), 4)
	assert.Equal(t, Snapshot{
		Type:  "state",
		Frame: 4,
		Sprites: []Sprite{
			{ID: 1, X: 1, Y: 2, Radius: 3, Color: "red"},
			{ID: 3, X: 9, Y: 9, Color: "blue"},
		},
	}, snap)
}

func TestHub_BroadcastsCommittedFrames(t *testing.T) {
	h := NewHub(nil, nil)
	defer h.Close()

	w, err := world.New(func(in *world.Init) error {
		_, err := in.Spawn(component.Position{X: 10, Y: 20}, component.Renderable{Color: "#fff"})
		return err
	})
	require.NoError(t, err)
	w.OnCommit(h.Hook(w.Store()))

	conn := dial(t, h)
	require.NoError(t, w.Advance(0.05))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, uint64(1), snap.Frame)
	require.Len(t, snap.Sprites, 1)
	assert.Equal(t, "#fff", snap.Sprites[0].Color)
}

func TestHub_KeyMessagesSteer(t *testing.T) {
	input := &system.LatchInput{}
	h := NewHub(input, nil)
	defer h.Close()
	conn := dial(t, h)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, conn.WriteJSON(inboundMessage{Type: "key", Key: "ArrowDown"}))

	assert.Eventually(t, func() bool { return input.Pressed() == system.DirDown }, time.Second, 5*time.Millisecond)
}

func TestHub_DropsClosedClients(t *testing.T) {
	h := NewHub(nil, nil)
	conn := dial(t, h)
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.Clients() == 0 }, time.Second, 5*time.Millisecond)
}
