package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"global-chat/domain"
	"global-chat/errors"
)

// Assistant is the private conversation log between the user and the AI session.
// It is never broadcast.
type Assistant struct {
	log      *slog.Logger
	session  IAISession
	identity domain.Identity
	now      func() time.Time

	mu        sync.RWMutex
	messages  []domain.ChatMessage
	busy      bool
	listeners []func(msg domain.ChatMessage)
}

func NewAssistant(log *slog.Logger, session IAISession, identity domain.Identity, now func() time.Time) *Assistant {
	return &Assistant{
		log:      log,
		session:  session,
		identity: identity,
		now:      now,
		messages: []domain.ChatMessage{{
			ID:         "ai-welcome",
			ChannelID:  domain.AssistantChannelID,
			Text:       fmt.Sprintf("Hola %s, soy tu asistente personal IA. ¿En qué puedo ayudarte hoy?", identity.Username),
			SenderName: domain.AssistantName,
			Timestamp:  now(),
		}},
	}
}

// Ask appends the question and an empty answer marked as streaming, then folds
// every fragment into that answer. The answer stops streaming at the first fragment.
// Blank input returns ErrEmptyInput and a second Ask while one is in flight
// returns ErrAssistantBusy; nothing is appended in both cases.
func (a *Assistant) Ask(ctx context.Context, text string) (domain.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ChatMessage{}, errors.ErrEmptyInput
	}
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return domain.ChatMessage{}, errors.ErrAssistantBusy
	}
	a.busy = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.busy = false
		a.mu.Unlock()
	}()

	at := a.now()
	a.append(domain.ChatMessage{
		ID:            domain.NewMessageID(at),
		ChannelID:     domain.AssistantChannelID,
		Text:          text,
		SenderName:    a.identity.Username,
		SenderIsLocal: true,
		AvatarURL:     a.identity.AvatarURL,
		Timestamp:     at,
	})
	answer := domain.ChatMessage{
		ID:          domain.NewMessageID(at.Add(time.Millisecond)),
		ChannelID:   domain.AssistantChannelID,
		SenderName:  domain.AssistantName,
		Timestamp:   a.now(),
		IsStreaming: true,
	}
	a.append(answer)

	var full strings.Builder
	for fragment := range a.session.Send(ctx, text) {
		full.WriteString(fragment)
		answer.Text = full.String()
		answer.IsStreaming = false
		a.update(answer)
	}
	if answer.IsStreaming {
		// nothing arrived, the answer is final anyway
		answer.IsStreaming = false
		a.update(answer)
	}
	return answer, nil
}

// Busy reports whether an answer is being streamed, for a loading indicator.
func (a *Assistant) Busy() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.busy
}

func (a *Assistant) Messages() []domain.ChatMessage {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]domain.ChatMessage(nil), a.messages...)
}

// OnChange registers fn for every appended or updated message.
func (a *Assistant) OnChange(fn func(msg domain.ChatMessage)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

func (a *Assistant) append(msg domain.ChatMessage) {
	a.mu.Lock()
	a.messages = append(a.messages, msg)
	listeners := a.listeners
	a.mu.Unlock()
	for _, fn := range listeners {
		fn(msg)
	}
}

func (a *Assistant) update(msg domain.ChatMessage) {
	a.mu.Lock()
	for i := range a.messages {
		if a.messages[i].ID == msg.ID {
			a.messages[i] = msg
			break
		}
	}
	listeners := a.listeners
	a.mu.Unlock()
	for _, fn := range listeners {
		fn(msg)
	}
}
