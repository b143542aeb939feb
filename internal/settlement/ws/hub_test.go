package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return c
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_DeliversToUserRoomOnly(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true }, nil)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	alice := dial(t, srv, "?user_id=alice")
	defer alice.Close()
	bob := dial(t, srv, "?user_id=bob")
	defer bob.Close()
	waitFor(t, func() bool { return hub.Connections("alice") == 1 && hub.Connections("bob") == 1 })

	route(hub, "user:", "user:alice", `{"event":"bet:settled"}`, zap.NewNop())

	_ = alice.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := alice.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if string(msg) != `{"event":"bet:settled"}` {
		t.Fatalf("alice got %s", msg)
	}

	_ = bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := bob.ReadMessage(); err == nil {
		t.Fatal("bob must not receive alice's event")
	}
}

func TestHub_PingAndLeave(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true }, nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	c := dial(t, srv, "?user_id=u1")
	if err := c.WriteJSON(ClientMsg{Type: "ping"}); err != nil {
		t.Fatal(err)
	}
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := c.ReadMessage()
	if err != nil || string(msg) != `{"type":"pong"}` {
		t.Fatalf("pong = %s, %v", msg, err)
	}

	_ = c.Close()
	waitFor(t, func() bool { return hub.Connections("u1") == 0 })
}

func TestHub_RequiresUserID(t *testing.T) {
	hub := NewHub(nil, nil)
	rec := httptest.NewRecorder()
	hub.HandleWS(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRoute_IgnoresForeignChannel(t *testing.T) {
	hub := NewHub(nil, nil)
	route(hub, "user:", "odds_updates_broadcast", "{}", zap.NewNop())
	route(hub, "user:", "user:", "{}", zap.NewNop())
}

func TestHub_BusyConnectionDoesNotBlockOtherUsers(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true }, nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	alice := dial(t, srv, "?user_id=alice")
	defer alice.Close()
	bob := dial(t, srv, "?user_id=bob")
	defer bob.Close()
	waitFor(t, func() bool { return hub.Connections("alice") == 1 && hub.Connections("bob") == 1 })

	// segura a escrita da conexão de alice como se ela estivesse lenta
	hub.mu.RLock()
	var busy *client
	for c := range hub.rooms["alice"] {
		busy = c
	}
	hub.mu.RUnlock()
	busy.mu.Lock()
	defer busy.mu.Unlock()

	done := make(chan int, 1)
	go func() { done <- hub.Deliver("bob", []byte(`{"event":"balance:update"}`)) }()
	select {
	case n := <-done:
		if n != 1 {
			t.Fatalf("delivered to %d connections", n)
		}
	case <-time.After(time.Second):
		t.Fatal("delivery to bob waited on alice's connection")
	}

	_ = bob.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, msg, err := bob.ReadMessage(); err != nil || string(msg) != `{"event":"balance:update"}` {
		t.Fatalf("bob got %s, %v", msg, err)
	}
}
