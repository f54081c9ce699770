package service

import (
	"fmt"

	"chat-api/internal/event"
	"chat-api/internal/model"
)

// BroadcastMessage is what chat subscribers receive for each fanned-out
// message.
type BroadcastMessage struct {
	Text   string `json:"text"`
	Sender string `json:"sender,omitempty"`
}

// ChatService fans messages out to every connected chat client through the
// event bus.
type ChatService struct {
	bus event.Bus
}

func NewChatService(bus event.Bus) *ChatService {
	return &ChatService{bus: bus}
}

// BroadcastAll publishes one broadcast event per message, preserving order.
func (s *ChatService) BroadcastAll(messages []string, claims *model.AccessClaims) error {
	if len(messages) == 0 {
		return fmt.Errorf("%w: at least one message is required", model.ErrInvalidInput)
	}

	sender := ""
	actor := ""
	if claims != nil {
		sender = claims.Username
		actor = claims.UserID
	}

	for _, text := range messages {
		s.bus.Publish(event.New(event.TypeMessageBroadcast, BroadcastMessage{
			Text:   text,
			Sender: sender,
		}, actor))
	}
	return nil
}
