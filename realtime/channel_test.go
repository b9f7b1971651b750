package realtime

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// wsServer is a one-route fake push server. Each accepted connection is
// handed to handle; connections are counted so reconnect tests can wait for
// the second dial.
type wsServer struct {
	srv    *httptest.Server
	mu     sync.Mutex
	dials  int
	handle func(conn *websocket.Conn)
}

func newWSServer(t *testing.T, handle func(conn *websocket.Conn)) *wsServer {
	t.Helper()
	ws := &wsServer{handle: handle}
	ws.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %s", err)
			return
		}
		ws.mu.Lock()
		ws.dials++
		ws.mu.Unlock()
		ws.handle(conn)
	}))
	t.Cleanup(ws.srv.Close)
	return ws
}

func (ws *wsServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ws.srv.URL, "http")
}

func (ws *wsServer) dialCount() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.dials
}

func testChannel(wsURL string) *Channel {
	channel := NewChannel(wsURL, 7, log.New(io.Discard, "", 0))
	channel.Backoff = 10 * time.Millisecond
	return channel
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestDispatchesServerEvents(t *testing.T) {
	ws := newWSServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		frame, _ := json.Marshal(Envelope{
			Type:    EventNewMessage,
			Payload: json.RawMessage(`{"message":{"id":42,"conversation_id":5,"content":"hi"}}`),
		})
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	channel := testChannel(ws.wsURL())
	var mu sync.Mutex
	var got []NewMessagePayload
	channel.OnEvent(EventNewMessage, func(payload json.RawMessage) {
		var event NewMessagePayload
		if err := json.Unmarshal(payload, &event); err != nil {
			t.Errorf("Bad payload: %s", err)
			return
		}
		mu.Lock()
		got = append(got, event)
		mu.Unlock()
	})

	channel.Open()
	defer channel.Close()

	waitFor(t, "event dispatch", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	if got[0].Message.ID != 42 || got[0].Message.ConversationID != 5 {
		t.Errorf("Unexpected message %+v", got[0].Message)
	}
}

func TestJoinConversationEmission(t *testing.T) {
	frames := make(chan Envelope, 1)
	ws := newWSServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var envelope Envelope
			if err := json.Unmarshal(data, &envelope); err != nil {
				t.Errorf("Bad frame: %s", err)
				return
			}
			frames <- envelope
		}
	})

	channel := testChannel(ws.wsURL())
	channel.Open()
	defer channel.Close()
	waitFor(t, "connection", channel.IsConnected)

	if err := channel.JoinConversation(5); err != nil {
		t.Fatalf("JoinConversation failed: %s", err)
	}

	select {
	case envelope := <-frames:
		if envelope.Type != EventJoinConversation {
			t.Fatalf("Expected %s, got %s", EventJoinConversation, envelope.Type)
		}
		var payload JoinConversationPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			t.Fatalf("Bad payload: %s", err)
		}
		if payload.ConversationID != 5 {
			t.Errorf("Expected conversation 5, got %d", payload.ConversationID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the join frame")
	}
}

func TestEmitRefusedWhileDisconnected(t *testing.T) {
	channel := testChannel("ws://127.0.0.1:1/") // nothing listens here
	if err := channel.JoinConversation(5); err == nil {
		t.Error("Expected an error emitting on a closed socket")
	}
}

// The ping loop and Emit share one connection; run both hot so the race
// detector can see any unserialized write pairing.
func TestEmitSafeAlongsidePings(t *testing.T) {
	ws := newWSServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	channel := testChannel(ws.wsURL())
	channel.PingPeriod = time.Millisecond
	channel.Open()
	defer channel.Close()
	waitFor(t, "connection", channel.IsConnected)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if err := channel.JoinConversation(int64(j)); err != nil {
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestReconnectsAfterDrop(t *testing.T) {
	ws := newWSServer(t, func(conn *websocket.Conn) {
		conn.Close() // drop immediately, the client should dial again
	})

	channel := testChannel(ws.wsURL())
	channel.Open()
	defer channel.Close()

	waitFor(t, "second dial", func() bool { return ws.dialCount() >= 2 })
}

func TestCloseIsIdempotent(t *testing.T) {
	ws := newWSServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	channel := testChannel(ws.wsURL())
	channel.Open()
	waitFor(t, "connection", channel.IsConnected)

	channel.Close()
	channel.Close()
	if channel.IsConnected() {
		t.Error("Expected the channel to report disconnected after Close")
	}
}
