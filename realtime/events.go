package realtime

import (
	"encoding/json"

	"github.com/charly05tr/devconnect/models"
)

// Event types carried over the channel. Server-to-client events feed the
// conversation list and the open chat; client-to-server events are room
// joins and membership broadcasts issued after the matching REST call.
const (
	EventJoinConversation   = "join_conversation"
	EventJoinedConversation = "joined_conversation"
	EventNewMessage         = "new_message"
	EventParticipantAdded   = "participant_added"
	EventUserLeftConv       = "user_left_conv"
)

// Envelope frames every message on the wire.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinConversationPayload struct {
	ConversationID int64 `json:"conversation_id"`
}

type JoinedConversationPayload struct {
	Conversation models.Conversation `json:"conversation"`
}

type NewMessagePayload struct {
	Message models.Message `json:"message"`
}

type ParticipantAddedPayload struct {
	ConversationID int64              `json:"conversation_id"`
	Participant    models.Participant `json:"participant"`
}

type UserLeftConvPayload struct {
	ConversationID int64 `json:"conversation_id"`
	UserID         int64 `json:"user_id"`
}
