package chat

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/charly05tr/devconnect/api"
	"github.com/charly05tr/devconnect/models"
	"github.com/charly05tr/devconnect/realtime"
)

// Backend is the slice of the REST client the store depends on.
type Backend interface {
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	ListMessages(ctx context.Context, conversationID int64, page, perPage int) (api.MessagesPage, error)
	SendMessage(ctx context.Context, conversationID int64, content string) (models.Message, error)
	AddParticipant(ctx context.Context, conversationID, userID int64) (models.Participant, error)
	LeaveConversation(ctx context.Context, conversationID int64) error
	CreateConversation(ctx context.Context, name string, participantIDs []int64) (models.Conversation, error)
}

// Rooms is the slice of the realtime channel the store emits on.
type Rooms interface {
	JoinConversation(conversationID int64) error
	BroadcastParticipantAdded(conversationID int64, participant models.Participant) error
	BroadcastUserLeft(conversationID, userID int64) error
}

// Store is the single writer over the conversation list, the message pager
// and the session. Every mutation, whether user-driven or channel-driven,
// is serialized through one mutex, so a fixed event order always yields the
// same state. The store is the state container handed to the channel layer:
// event handlers call into it and it dereferences current state at call
// time, never a captured copy.
type Store struct {
	backend Backend
	rooms   Rooms
	logger  *log.Logger
	perPage int

	mu          sync.Mutex
	session     models.Session
	list        List
	pager       Pager
	selected    int64
	joinedRoom  int64
	listErr     string
	messagesErr string

	// Per-conversation abort handles and fetch tokens. A response whose
	// token no longer matches the current selection epoch is discarded
	// instead of clobbering newer state.
	cancels     map[int64]context.CancelFunc
	fetchTokens map[int64]string

	// prependAnchor is the number of messages the last older-page load put
	// in front of the sequence; the view consumes it to hold its scroll
	// position steady.
	prependAnchor int

	onChange func()
}

func NewStore(backend Backend, rooms Rooms, perPage int, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	if perPage <= 0 {
		perPage = 100
	}
	return &Store{
		backend:     backend,
		rooms:       rooms,
		logger:      logger,
		perPage:     perPage,
		cancels:     make(map[int64]context.CancelFunc),
		fetchTokens: make(map[int64]string),
	}
}

// OnChange registers the redraw hook, invoked after every state mutation
// outside the store lock.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *Store) SetSession(session models.Session) {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
}

func (s *Store) Session() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Bind subscribes the store to the channel's server-pushed events.
func (s *Store) Bind(channel *realtime.Channel) {
	channel.OnEvent(realtime.EventNewMessage, func(payload json.RawMessage) {
		var event realtime.NewMessagePayload
		if err := json.Unmarshal(payload, &event); err != nil {
			s.logger.Printf("new_message: bad payload: %v", err)
			return
		}
		s.HandleNewMessage(event.Message)
	})

	channel.OnEvent(realtime.EventJoinedConversation, func(payload json.RawMessage) {
		var event realtime.JoinedConversationPayload
		if err := json.Unmarshal(payload, &event); err != nil {
			s.logger.Printf("joined_conversation: bad payload: %v", err)
			return
		}
		s.HandleConversationJoined(event.Conversation)
	})

	channel.OnEvent(realtime.EventParticipantAdded, func(payload json.RawMessage) {
		var event realtime.ParticipantAddedPayload
		if err := json.Unmarshal(payload, &event); err != nil {
			s.logger.Printf("participant_added: bad payload: %v", err)
			return
		}
		s.HandleParticipantAdded(event.ConversationID, event.Participant)
	})

	channel.OnEvent(realtime.EventUserLeftConv, func(payload json.RawMessage) {
		var event realtime.UserLeftConvPayload
		if err := json.Unmarshal(payload, &event); err != nil {
			s.logger.Printf("user_left_conv: bad payload: %v", err)
			return
		}
		s.HandleParticipantLeft(event.ConversationID, event.UserID)
	})
}

// LoadConversations fetches the full list. Failure surfaces an inline error
// and empties the list; there is no partial-failure recovery.
func (s *Store) LoadConversations(ctx context.Context) {
	conversations, err := s.backend.ListConversations(ctx)

	s.mu.Lock()
	if err != nil {
		s.list.Clear()
		s.listErr = err.Error()
	} else {
		s.list.SetAll(conversations)
		s.listErr = ""
	}
	s.mu.Unlock()
	s.notify()
}

// Select opens a conversation: joins its room (once per distinct selection),
// cancels fetches still in flight for the previous selection and starts the
// resolve -> last-page load. Selecting the already-selected conversation is
// a no-op.
func (s *Store) Select(conversationID int64) {
	s.mu.Lock()
	if s.selected == conversationID {
		s.mu.Unlock()
		return
	}
	if cancel, ok := s.cancels[s.selected]; ok {
		cancel()
		delete(s.cancels, s.selected)
	}
	s.selected = conversationID
	s.messagesErr = ""
	s.prependAnchor = 0
	token := uuid.NewString()
	s.fetchTokens[conversationID] = token
	s.pager.StartResolve(conversationID)
	joinNeeded := s.joinedRoom != conversationID
	s.joinedRoom = conversationID
	s.mu.Unlock()

	if joinNeeded && s.rooms != nil {
		if err := s.rooms.JoinConversation(conversationID); err != nil {
			s.logger.Printf("join conversation %d: %v", conversationID, err)
		}
	}

	s.notify()
	go s.resolve(conversationID, token)
}

// Deselect closes the open conversation and resets the pager unconditionally.
func (s *Store) Deselect() {
	s.mu.Lock()
	if cancel, ok := s.cancels[s.selected]; ok {
		cancel()
		delete(s.cancels, s.selected)
	}
	s.selected = 0
	s.messagesErr = ""
	s.prependAnchor = 0
	s.pager.Reset()
	s.mu.Unlock()
	s.notify()
}

func (s *Store) resolve(conversationID int64, token string) {
	ctx := s.track(conversationID)

	first, err := s.backend.ListMessages(ctx, conversationID, 1, s.perPage)
	if err != nil {
		s.failMessages(conversationID, token, err)
		return
	}

	s.mu.Lock()
	if !s.currentLocked(conversationID, token) {
		s.mu.Unlock()
		return
	}
	lastPage, fetchNeeded := s.pager.ResolveResult(first)
	s.mu.Unlock()
	s.notify()
	if !fetchNeeded {
		return
	}

	page, err := s.backend.ListMessages(ctx, conversationID, lastPage, s.perPage)
	if err != nil {
		s.failMessages(conversationID, token, err)
		return
	}

	s.mu.Lock()
	if !s.currentLocked(conversationID, token) {
		s.mu.Unlock()
		return
	}
	s.pager.LastPageResult(page)
	s.mu.Unlock()
	s.notify()
}

// LoadOlder fetches the previous page when the view nears the top. Refused
// while another older-page load is outstanding.
func (s *Store) LoadOlder() {
	s.mu.Lock()
	conversationID := s.selected
	token := s.fetchTokens[conversationID]
	page, ok := s.pager.StartLoadOlder()
	s.mu.Unlock()
	if !ok {
		return
	}
	s.notify()

	go func() {
		ctx := s.track(conversationID)
		result, err := s.backend.ListMessages(ctx, conversationID, page, s.perPage)
		if err != nil {
			s.failMessages(conversationID, token, err)
			return
		}

		s.mu.Lock()
		if !s.currentLocked(conversationID, token) {
			s.mu.Unlock()
			return
		}
		s.prependAnchor = s.pager.OlderResult(result)
		s.mu.Unlock()
		s.notify()
	}()
}

// Send posts a message over REST. The visible sequence is appended only by
// the channel echo, never here.
func (s *Store) Send(ctx context.Context, content string) error {
	s.mu.Lock()
	conversationID := s.selected
	s.mu.Unlock()
	if conversationID == 0 {
		return nil
	}
	_, err := s.backend.SendMessage(ctx, conversationID, content)
	return err
}

// Invite adds a user to the open conversation and broadcasts the membership
// change after the REST call succeeds.
func (s *Store) Invite(ctx context.Context, conversationID, userID int64) error {
	participant, err := s.backend.AddParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	s.HandleParticipantAdded(conversationID, participant)
	if s.rooms != nil {
		if err := s.rooms.BroadcastParticipantAdded(conversationID, participant); err != nil {
			s.logger.Printf("broadcast participant_added: %v", err)
		}
	}
	return nil
}

// Leave removes the current user from a conversation, broadcasts the
// departure and drops the conversation locally.
func (s *Store) Leave(ctx context.Context, conversationID int64) error {
	if err := s.backend.LeaveConversation(ctx, conversationID); err != nil {
		return err
	}
	userID := s.Session().UserID
	if s.rooms != nil {
		if err := s.rooms.BroadcastUserLeft(conversationID, userID); err != nil {
			s.logger.Printf("broadcast user_left_conv: %v", err)
		}
	}
	s.HandleParticipantLeft(conversationID, userID)
	return nil
}

// Create starts a new conversation and prepends it.
func (s *Store) Create(ctx context.Context, name string, participantIDs []int64) (models.Conversation, error) {
	conversation, err := s.backend.CreateConversation(ctx, name, participantIDs)
	if err != nil {
		return models.Conversation{}, err
	}
	s.HandleConversationJoined(conversation)
	return conversation, nil
}

// HandleNewMessage is the reducer for a server-pushed message: bump the
// conversation to the front, update its preview and, when the message
// belongs to the open conversation, append it to the visible sequence.
func (s *Store) HandleNewMessage(message models.Message) {
	s.mu.Lock()
	s.list.ApplyNewMessage(message)
	if s.selected == message.ConversationID {
		s.pager.AppendLive(message)
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Store) HandleConversationJoined(conversation models.Conversation) {
	s.mu.Lock()
	s.list.ApplyConversationJoined(conversation)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) HandleParticipantAdded(conversationID int64, participant models.Participant) {
	s.mu.Lock()
	result := s.list.ApplyParticipantAdded(conversationID, participant, s.session.UserID)
	s.mu.Unlock()
	s.notify()

	if result.ReloadNeeded {
		go s.LoadConversations(context.Background())
		return
	}
	if result.SelectNeeded {
		s.Select(conversationID)
	}
}

func (s *Store) HandleParticipantLeft(conversationID, userID int64) {
	s.mu.Lock()
	removed := s.list.ApplyParticipantLeft(conversationID, userID, s.session.UserID)
	wasSelected := removed && s.selected == conversationID
	s.mu.Unlock()
	s.notify()

	if wasSelected {
		s.Deselect()
	}
}

// Conversations snapshots the visible list.
func (s *Store) Conversations() []models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Conversations()
}

func (s *Store) Conversation(conversationID int64) (models.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conversation, ok := s.list.Get(conversationID)
	if !ok {
		return models.Conversation{}, false
	}
	return *conversation, true
}

func (s *Store) SelectedID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Messages snapshots the open conversation's sequence.
func (s *Store) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := s.pager.Messages()
	snapshot := make([]models.Message, len(messages))
	copy(snapshot, messages)
	return snapshot
}

func (s *Store) PagerPhase() PagerPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pager.Phase()
}

func (s *Store) Cursor() models.Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pager.Cursor()
}

func (s *Store) ListError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listErr
}

func (s *Store) MessagesError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messagesErr
}

// TakePrependAnchor returns and clears the size of the last older-page
// prepend. The view adds this many rows to its scroll offset so the
// viewport does not jump.
func (s *Store) TakePrependAnchor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	anchor := s.prependAnchor
	s.prependAnchor = 0
	return anchor
}

// track installs a fresh cancelable context as the conversation's abort
// handle, canceling any previous one.
func (s *Store) track(conversationID int64) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if previous, ok := s.cancels[conversationID]; ok {
		previous()
	}
	s.cancels[conversationID] = cancel
	s.mu.Unlock()
	return ctx
}

func (s *Store) currentLocked(conversationID int64, token string) bool {
	return s.selected == conversationID && s.fetchTokens[conversationID] == token
}

func (s *Store) failMessages(conversationID int64, token string, err error) {
	s.mu.Lock()
	if !s.currentLocked(conversationID, token) {
		s.mu.Unlock()
		return
	}
	s.pager.Fail(err.Error())
	s.messagesErr = err.Error()
	s.mu.Unlock()
	s.notify()
}
