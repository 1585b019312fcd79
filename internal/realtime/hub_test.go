package realtime

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// newHubServer exposes the hub over a test websocket endpoint. The chat
// and user ids ride in the query string so each dial can pick its group.
func newHubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatID, _ := strconv.Atoi(r.URL.Query().Get("chat"))
		userID, _ := strconv.Atoi(r.URL.Query().Get("user"))
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		hub.Serve(conn, uint(chatID), uint(userID))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, chatID, userID uint) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"?chat=" + strconv.FormatUint(uint64(chatID), 10) +
		"&user=" + strconv.FormatUint(uint64(userID), 10)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitSubscribers(t *testing.T, hub *Hub, chatID uint, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers(chatID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("chat %d: want %d subscribers, have %d", chatID, want, hub.Subscribers(chatID))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastReachesGroupMembersOnly(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	inGroup := dial(t, srv, 1, 10)
	alsoIn := dial(t, srv, 1, 11)
	other := dial(t, srv, 2, 12)
	waitSubscribers(t, hub, 1, 2)
	waitSubscribers(t, hub, 2, 1)

	sent := MessageEvent{
		Type:        "message",
		ID:          42,
		Text:        "hola",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		AuthorID:    10,
		AuthorAlias: "ana",
	}
	hub.Broadcast(1, sent)

	for _, conn := range []*websocket.Conn{inGroup, alsoIn} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got MessageEvent
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("subscriber did not receive event: %v", err)
		}
		if got.ID != sent.ID || got.Text != sent.Text || got.AuthorAlias != sent.AuthorAlias {
			t.Fatalf("got %+v, want %+v", got, sent)
		}
	}

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if err := other.ReadJSON(new(MessageEvent)); err == nil {
		t.Fatal("chat 2 subscriber must not receive chat 1 events")
	}
}

func TestLateSubscriberGetsNoBacklog(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	hub.Broadcast(1, MessageEvent{Type: "message", ID: 1, Text: "before anyone joined"})

	late := dial(t, srv, 1, 10)
	waitSubscribers(t, hub, 1, 1)

	late.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if err := late.ReadJSON(new(MessageEvent)); err == nil {
		t.Fatal("late subscriber must not replay earlier events")
	}
}

func TestDisconnectLeavesGroup(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	conn := dial(t, srv, 1, 10)
	waitSubscribers(t, hub, 1, 1)

	conn.Close()
	waitSubscribers(t, hub, 1, 0)

	// broadcasting into an emptied group is a no-op
	hub.Broadcast(1, MessageEvent{Type: "message", ID: 2})
}

func TestConcurrentJoinLeaveBroadcast(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?chat=1&user=" + strconv.Itoa(100+n)
			conn, _, err := websocket.DefaultDialer.Dial(url, nil)
			if err != nil {
				t.Errorf("dial failed: %v", err)
				return
			}
			hub.Broadcast(1, MessageEvent{Type: "message", ID: uint(n)})
			conn.Close()
		}(i)
	}
	wg.Wait()

	waitSubscribers(t, hub, 1, 0)
}
