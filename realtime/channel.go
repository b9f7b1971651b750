package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/charly05tr/devconnect/models"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 30 * time.Second
	maxBackoff     = 30 * time.Second
	defaultBackoff = time.Second
)

// Channel is the live push connection scoped to one authenticated user.
// One channel is opened per session and closed on logout or teardown.
// Reconnection is handled here with capped backoff; the application layer
// does not re-synchronize state after a reconnect.
type Channel struct {
	ID string

	url        string
	logger     *log.Logger
	Backoff    time.Duration
	PingPeriod time.Duration

	mu        sync.Mutex
	handlers  map[string][]func(json.RawMessage)
	conn      *websocket.Conn
	connected bool
	closed    bool
	done      chan struct{}

	sendMu sync.Mutex
}

// NewChannel prepares a channel for the given user. The connection URL is
// parameterized by user id.
func NewChannel(wsBaseURL string, userID int64, logger *log.Logger) *Channel {
	if logger == nil {
		logger = log.Default()
	}
	return &Channel{
		ID:         uuid.NewString(),
		url:        fmt.Sprintf("%s/ws?user_id=%d", wsBaseURL, userID),
		logger:     logger,
		Backoff:    defaultBackoff,
		PingPeriod: pingPeriod,
		handlers:   make(map[string][]func(json.RawMessage)),
		done:       make(chan struct{}),
	}
}

// OnEvent registers a handler for an event type. Handlers must dereference
// shared state at call time, never capture it.
func (c *Channel) OnEvent(eventType string, handler func(json.RawMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[eventType] = append(c.handlers[eventType], handler)
}

// Open starts the connect/read/reconnect loop. It never blocks on the first
// dial; connection failures are logged and retried until Close.
func (c *Channel) Open() {
	go c.run()
}

func (c *Channel) run() {
	backoff := c.Backoff
	for {
		select {
		case <-c.done:
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
		if err != nil {
			c.logger.Printf("channel %s: dial failed: %v", c.ID, err)
			select {
			case <-c.done:
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		backoff = c.Backoff
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			conn.Close()
			return
		}
		c.conn = conn
		c.connected = true
		c.mu.Unlock()

		stopPing := make(chan struct{})
		go c.pingLoop(conn, stopPing)
		c.readLoop(conn)
		close(stopPing)

		c.mu.Lock()
		c.connected = false
		c.conn = nil
		c.mu.Unlock()
	}
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				// ChannelError: logged only, reconnection takes over.
				c.logger.Printf("channel %s: read failed: %v", c.ID, err)
			}
			conn.Close()
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			c.logger.Printf("channel %s: bad frame: %v", c.ID, err)
			continue
		}
		c.dispatch(envelope.Type, envelope.Payload)
	}
}

func (c *Channel) pingLoop(conn *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(c.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-c.done:
			return
		case <-ticker.C:
			// WriteControl is safe alongside Emit's data writes; a plain
			// WriteMessage here would race them on the shared frame buffer.
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (c *Channel) dispatch(eventType string, payload json.RawMessage) {
	c.mu.Lock()
	handlers := c.handlers[eventType]
	c.mu.Unlock()

	for _, handler := range handlers {
		handler(payload)
	}
}

// IsConnected reports whether the socket is currently up.
func (c *Channel) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Emit sends an event to the server.
func (c *Channel) Emit(eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(Envelope{Type: eventType, Payload: data})
	if err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()
	if !connected || conn == nil {
		return fmt.Errorf("channel not connected")
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, frame)
}

// JoinConversation requests membership in a conversation's room. Issued once
// per distinct selection.
func (c *Channel) JoinConversation(conversationID int64) error {
	return c.Emit(EventJoinConversation, JoinConversationPayload{ConversationID: conversationID})
}

// BroadcastParticipantAdded announces a membership change after a successful
// invite REST call.
func (c *Channel) BroadcastParticipantAdded(conversationID int64, participant models.Participant) error {
	return c.Emit(EventParticipantAdded, ParticipantAddedPayload{ConversationID: conversationID, Participant: participant})
}

// BroadcastUserLeft announces the current user's departure after a
// successful leave REST call.
func (c *Channel) BroadcastUserLeft(conversationID, userID int64) error {
	return c.Emit(EventUserLeftConv, UserLeftConvPayload{ConversationID: conversationID, UserID: userID})
}

// Close tears the channel down. Safe to call more than once.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.mu.Unlock()

	if conn != nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(writeWait))
		conn.Close()
	}
}
