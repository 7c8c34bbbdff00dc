package relay

import "encoding/json"

// Wire event types shared by the relay and its clients. Every frame is a
// JSON object whose "type" field selects the shape.
const (
	TypeChat   = "chat"
	TypeTyping = "typing"
)

// InboundEvent is what a participant sends the relay: either a chat message
// body or a typing transition. The sender's identity is never part of the
// frame; the transport tags it from the connection.
type InboundEvent struct {
	Type     string `json:"type"`
	Body     string `json:"body,omitempty"`
	IsTyping bool   `json:"isTyping,omitempty"`
}

// ChatEvent is a forwarded chat message as recipients see it.
type ChatEvent struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
	Body          string `json:"body"`
}

// TypingEvent is a forwarded typing transition as recipients see it.
type TypingEvent struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
	IsTyping      bool   `json:"isTyping"`
}

// DecodeInbound parses a raw frame from a participant.
func DecodeInbound(payload []byte) (InboundEvent, error) {
	var ev InboundEvent
	err := json.Unmarshal(payload, &ev)
	return ev, err
}

// EncodeChat builds the outbound frame for a forwarded chat message.
// The body is carried verbatim: no validation, trimming, or size caps.
func EncodeChat(senderID, body string) ([]byte, error) {
	return json.Marshal(ChatEvent{
		Type:          TypeChat,
		ParticipantID: senderID,
		Body:          body,
	})
}

// EncodeTyping builds the outbound frame for a forwarded typing transition.
func EncodeTyping(senderID string, isTyping bool) ([]byte, error) {
	return json.Marshal(TypingEvent{
		Type:          TypeTyping,
		ParticipantID: senderID,
		IsTyping:      isTyping,
	})
}
