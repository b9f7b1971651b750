package chat

import (
	"github.com/charly05tr/devconnect/models"
)

// List holds the ordered conversations visible to the current user. Order is
// driven purely by last-activity recency; the initial load order is whatever
// the backend returned. All mutation goes through the Store's single writer,
// so a fixed event order always produces the same list.
type List struct {
	conversations []models.Conversation
}

// SetAll replaces the entire list.
func (l *List) SetAll(conversations []models.Conversation) {
	l.conversations = conversations
}

// Clear empties the list, used when a full load fails.
func (l *List) Clear() {
	l.conversations = nil
}

// Conversations returns the visible conversations, hiding soft-deleted ones.
func (l *List) Conversations() []models.Conversation {
	visible := make([]models.Conversation, 0, len(l.conversations))
	for _, conversation := range l.conversations {
		if !conversation.Deleted() {
			visible = append(visible, conversation)
		}
	}
	return visible
}

// Get returns a pointer into the list, valid until the next mutation.
func (l *List) Get(conversationID int64) (*models.Conversation, bool) {
	for i := range l.conversations {
		if l.conversations[i].ID == conversationID {
			return &l.conversations[i], true
		}
	}
	return nil, false
}

// ApplyNewMessage updates the conversation's last-message preview and moves
// it to the front. Returns false when the conversation is unknown.
func (l *List) ApplyNewMessage(message models.Message) bool {
	index := l.indexOf(message.ConversationID)
	if index < 0 {
		return false
	}

	conversation := l.conversations[index]
	messageCopy := message
	conversation.LastMessage = &messageCopy

	l.conversations = append(l.conversations[:index], l.conversations[index+1:]...)
	l.conversations = append([]models.Conversation{conversation}, l.conversations...)
	return true
}

// ApplyConversationJoined prepends a conversation the server just added the
// user to, unless it is already present.
func (l *List) ApplyConversationJoined(conversation models.Conversation) bool {
	if l.indexOf(conversation.ID) >= 0 {
		return false
	}
	l.conversations = append([]models.Conversation{conversation}, l.conversations...)
	return true
}

// ParticipantAddedResult reports what the caller must do after applying a
// participant-added event.
type ParticipantAddedResult struct {
	// ReloadNeeded is set when the conversation is missing from the list
	// (race with creation); the caller triggers a full reload instead of
	// guessing state.
	ReloadNeeded bool
	// SelectNeeded is set when the added participant is the current user.
	SelectNeeded bool
}

func (l *List) ApplyParticipantAdded(conversationID int64, participant models.Participant, currentUserID int64) ParticipantAddedResult {
	index := l.indexOf(conversationID)
	if index < 0 {
		return ParticipantAddedResult{ReloadNeeded: true}
	}

	conversation := &l.conversations[index]
	present := false
	for _, existing := range conversation.Participants {
		if existing.UserID == participant.UserID {
			present = true
			break
		}
	}
	if !present {
		conversation.Participants = append(conversation.Participants, participant)
	}

	return ParticipantAddedResult{SelectNeeded: participant.UserID == currentUserID}
}

// ApplyParticipantLeft removes the conversation entirely when the departing
// user is the current user (returns true), otherwise filters the participant
// out of the conversation's collection.
func (l *List) ApplyParticipantLeft(conversationID, userID, currentUserID int64) bool {
	index := l.indexOf(conversationID)
	if index < 0 {
		return false
	}

	if userID == currentUserID {
		l.conversations = append(l.conversations[:index], l.conversations[index+1:]...)
		return true
	}

	conversation := &l.conversations[index]
	remaining := conversation.Participants[:0]
	for _, participant := range conversation.Participants {
		if participant.UserID != userID {
			remaining = append(remaining, participant)
		}
	}
	conversation.Participants = remaining
	return false
}

func (l *List) indexOf(conversationID int64) int {
	for i := range l.conversations {
		if l.conversations[i].ID == conversationID {
			return i
		}
	}
	return -1
}
