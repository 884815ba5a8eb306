package services

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"global-chat/contract"
	"global-chat/domain"
	"global-chat/errors"

	"github.com/samber/lo"
)

type IChatRoom interface {
	SendLocal(text string, identity domain.Identity) (domain.ChatMessage, bool)
	OnRemoteMessage(msg domain.ChatMessage)
	MessagesFor(channelID domain.ChannelID) []domain.ChatMessage
	ActiveChannel() domain.Channel
	SetActiveChannel(channelID domain.ChannelID) error
	ActiveMessages() []domain.ChatMessage
	OnAppend(fn func(msg domain.ChatMessage))
	Close() error
}

// ChatRoom owns the tab's message log. The log is one append-ordered sequence
// for every channel; channels only partition the read view.
type ChatRoom struct {
	log    *slog.Logger
	bridge contract.Bridge
	now    func() time.Time

	mu        sync.RWMutex
	messages  []domain.ChatMessage
	active    domain.Channel
	listeners []func(msg domain.ChatMessage)
}

// NewChatRoom seeds the welcome message and starts listening to the bridge.
// listeners are registered before the subscription so they see the first remote message.
// The room owns the bridge from now on and releases it in Close.
func NewChatRoom(log *slog.Logger, bridge contract.Bridge, now func() time.Time, listeners ...func(msg domain.ChatMessage)) *ChatRoom {
	active, _ := domain.FindChannel(domain.DefaultChannelID)
	r := &ChatRoom{
		log:       log,
		bridge:    bridge,
		now:       now,
		messages:  []domain.ChatMessage{domain.WelcomeMessage(now())},
		active:    active,
		listeners: listeners,
	}
	bridge.Subscribe(r.OnRemoteMessage)
	return r
}

// SendLocal appends the message to the log and relays a copy other tabs render
// as remote. Blank text is ignored and reported with ok=false.
func (r *ChatRoom) SendLocal(text string, identity domain.Identity) (domain.ChatMessage, bool) {
	if strings.TrimSpace(text) == "" {
		return domain.ChatMessage{}, false
	}
	at := r.now()

	r.mu.RLock()
	channelID := r.active.ID
	r.mu.RUnlock()

	msg := domain.ChatMessage{
		ID:            domain.NewMessageID(at),
		ChannelID:     channelID,
		Text:          text,
		SenderName:    identity.Username,
		SenderIsLocal: true,
		AvatarURL:     identity.AvatarURL,
		Timestamp:     at,
	}
	r.append(msg)

	if err := r.bridge.Publish(msg.AsRemote()); err != nil {
		r.log.Warn("Message kept locally, broadcast failed", "message_id", msg.ID, "error", err)
	}
	return msg, true
}

// OnRemoteMessage appends a message another tab published. It is never relayed again.
func (r *ChatRoom) OnRemoteMessage(msg domain.ChatMessage) {
	r.append(msg)
}

func (r *ChatRoom) append(msg domain.ChatMessage) {
	r.mu.Lock()
	r.messages = append(r.messages, msg)
	listeners := r.listeners
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(msg)
	}
}

// MessagesFor returns a copy of the messages of channelID in append order.
func (r *ChatRoom) MessagesFor(channelID domain.ChannelID) []domain.ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(r.messages, func(m domain.ChatMessage, _ int) bool {
		return m.ChannelID == channelID
	})
}

func (r *ChatRoom) ActiveChannel() domain.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

func (r *ChatRoom) SetActiveChannel(channelID domain.ChannelID) error {
	channel, ok := domain.FindChannel(channelID)
	if !ok {
		return errors.ErrUnknownChannel
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = channel
	return nil
}

func (r *ChatRoom) ActiveMessages() []domain.ChatMessage {
	return r.MessagesFor(r.ActiveChannel().ID)
}

// OnAppend registers fn for every message appended from now on, local or remote.
func (r *ChatRoom) OnAppend(fn func(msg domain.ChatMessage)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *ChatRoom) Close() error {
	return r.bridge.Close()
}
