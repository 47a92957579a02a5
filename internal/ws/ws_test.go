package ws_test

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sjavs/internal/app"
	"sjavs/internal/store"
	"sjavs/internal/store/memory"
	"sjavs/internal/ws"
)

type wsFixture struct {
	hub   *ws.Hub
	svc   *app.Service
	pub   *memory.Publisher
	http  *httptest.Server
	store *memory.Store
}

// newWSFixture wires a hub whose publisher loops events straight back into
// Deliver, standing in for the Redis fabric.
func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	st := memory.NewStore()
	pub := &memory.Publisher{}
	svc := app.NewService(st, pub, memory.NewLocker(), zap.NewNop(), app.DefaultOptions(), rand.New(rand.NewSource(5)))
	hub := ws.NewHub(svc, zap.NewNop(), "*")
	pub.Forward = func(event app.Event) {
		payload, err := json.Marshal(event)
		if err != nil {
			return
		}
		if !event.UserOnly {
			hub.Deliver(store.MatchChannel(event.GameID), payload)
		}
		for _, userID := range event.AffectedPlayers {
			hub.Deliver(store.UserChannel(userID), payload)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("user"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &wsFixture{hub: hub, svc: svc, pub: pub, http: srv, store: st}
}

func (f *wsFixture) dial(t *testing.T, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))
	return frame
}

// readUntil skips frames until one matches the event name.
func readUntil(t *testing.T, conn *websocket.Conn, event string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		frame := readFrame(t, conn)
		if frame["event"] == event {
			return frame
		}
	}
	t.Fatalf("no %s frame received", event)
	return nil
}

func sendFrame(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"event": event, "data": data})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, payload))
}

func TestSessionCommandsAndSnapshot(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "alice")

	sendFrame(t, conn, "create_match", map[string]string{"username": "Alice"})
	reply := readUntil(t, conn, "create_match_ok")
	data := reply["data"].(map[string]any)
	require.Len(t, data["pin"], 4)

	// Subscribing via join returns the waiting-phase snapshot.
	sendFrame(t, conn, "join", nil)
	snapshot := readUntil(t, conn, "initial_state_waiting")
	require.Equal(t, data["game_id"], snapshot["game_id"])
	require.Equal(t, "waiting", snapshot["phase"])
	require.Greater(t, snapshot["timestamp"].(float64), 0.0)
}

func TestEventFanOutToSubscribedSession(t *testing.T) {
	f := newWSFixture(t)
	host := f.dial(t, "alice")

	sendFrame(t, host, "create_match", map[string]string{"username": "Alice"})
	reply := readUntil(t, host, "create_match_ok")
	pin := reply["data"].(map[string]any)["pin"].(string)
	sendFrame(t, host, "join", nil)
	readUntil(t, host, "initial_state_waiting")

	// A joining player triggers player_joined on the host's connection.
	if _, err := f.svc.JoinMatch(context.Background(), "bob", "Bob", pin); err != nil {
		t.Fatalf("join error: %v", err)
	}
	event := readUntil(t, host, "player_joined")
	require.Equal(t, "bob", event["player_id"])
	require.Contains(t, event["affected_players"], "alice")
}

func TestUnknownEventRejected(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "alice")

	sendFrame(t, conn, "warp_cards", nil)
	frame := readUntil(t, conn, "error")
	require.Equal(t, "unknown_event", frame["error"])
}

func TestClassifiedErrorsOverWS(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "alice")

	// Passing without being in a game is a conflict.
	sendFrame(t, conn, "pass", nil)
	frame := readUntil(t, conn, "error")
	require.Equal(t, string(app.KindConflict), frame["error"])
}
