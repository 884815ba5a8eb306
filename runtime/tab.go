package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"global-chat/contract"
	"global-chat/domain"
	"global-chat/errors"
	"global-chat/projection"
	"global-chat/services"
)

// BridgeOpener connects a tab to the broadcast topic of its origin.
type BridgeOpener func(ctx context.Context) (contract.Bridge, error)

// Tab is one open chat window. The chat room and the assistant only exist
// while the session is logged in.
type Tab struct {
	log        *slog.Logger
	session    services.ISessionManager
	openBridge BridgeOpener
	newAI      func() services.IAISession
	now        func() time.Time

	mu        sync.RWMutex
	room      *services.ChatRoom
	assistant *services.Assistant
	index     *projection.SearchIndex
	listeners []func(msg domain.ChatMessage)
}

func NewTab(log *slog.Logger, session services.ISessionManager, openBridge BridgeOpener, newAI func() services.IAISession, now func() time.Time) *Tab {
	return &Tab{log: log, session: session, openBridge: openBridge, newAI: newAI, now: now}
}

// Restore re-enters the room when the session found a persisted identity.
func (t *Tab) Restore(ctx context.Context) (domain.AppPhase, error) {
	phase := t.session.Restore()
	identity, ok := t.session.Current()
	if !ok {
		t.leave()
		return phase, nil
	}
	if err := t.enter(ctx, identity); err != nil {
		return phase, err
	}
	return phase, nil
}

func (t *Tab) Login(ctx context.Context, username, secret string) (domain.Identity, error) {
	identity, err := t.session.Login(username, secret)
	if err != nil {
		return domain.Identity{}, err
	}
	return identity, t.enter(ctx, identity)
}

func (t *Tab) Register(ctx context.Context, username, secret string) (domain.Identity, error) {
	identity, err := t.session.Register(username, secret)
	if err != nil {
		return domain.Identity{}, err
	}
	return identity, t.enter(ctx, identity)
}

// Logout leaves the room before forgetting the identity, so nothing else is received.
func (t *Tab) Logout() error {
	t.leave()
	return t.session.Logout()
}

func (t *Tab) Phase() domain.AppPhase {
	return t.session.Phase()
}

func (t *Tab) Identity() (domain.Identity, bool) {
	return t.session.Current()
}

func (t *Tab) Room() (*services.ChatRoom, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.room == nil {
		return nil, errors.ErrNotLoggedIn
	}
	return t.room, nil
}

func (t *Tab) Assistant() (*services.Assistant, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.assistant == nil {
		return nil, errors.ErrNotLoggedIn
	}
	return t.assistant, nil
}

// Search looks terms up in the active channel of the room.
func (t *Tab) Search(ctx context.Context, terms string, limit int) ([]domain.ChatMessage, error) {
	t.mu.RLock()
	room, index := t.room, t.index
	t.mu.RUnlock()
	if room == nil {
		return nil, errors.ErrNotLoggedIn
	}
	return index.Search(ctx, room.ActiveChannel().ID, terms, limit)
}

// OnMessage registers fn for every message appended to any room this tab enters.
func (t *Tab) OnMessage(fn func(msg domain.ChatMessage)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

func (t *Tab) Close() error {
	t.leave()
	return nil
}

func (t *Tab) enter(ctx context.Context, identity domain.Identity) error {
	t.leave()

	bridge, err := t.openBridge(ctx)
	if err != nil {
		return fmt.Errorf("open broadcast bridge: %w", err)
	}
	index, err := projection.NewSearchIndex(t.log)
	if err != nil {
		_ = bridge.Close()
		return err
	}

	room := services.NewChatRoom(t.log, bridge, t.now, index.Consume, t.dispatch)
	// Seeded messages never reach the listeners. Indexing twice only replaces.
	for _, channel := range domain.Channels() {
		for _, msg := range room.MessagesFor(channel.ID) {
			index.Consume(msg)
		}
	}

	ai := t.newAI()
	ai.Initialize(ctx, identity.Username)
	assistant := services.NewAssistant(t.log, ai, identity, t.now)

	t.mu.Lock()
	t.room, t.assistant, t.index = room, assistant, index
	t.mu.Unlock()
	t.log.Debug("Entered chat room", "username", identity.Username)
	return nil
}

func (t *Tab) leave() {
	t.mu.Lock()
	room, index := t.room, t.index
	t.room, t.assistant, t.index = nil, nil, nil
	t.mu.Unlock()

	if room != nil {
		if err := room.Close(); err != nil {
			t.log.Warn("Unable to close broadcast bridge", "error", err)
		}
	}
	if index != nil {
		if err := index.Close(); err != nil {
			t.log.Warn("Unable to close search index", "error", err)
		}
	}
}

func (t *Tab) dispatch(msg domain.ChatMessage) {
	t.mu.RLock()
	listeners := t.listeners
	t.mu.RUnlock()
	for _, fn := range listeners {
		fn(msg)
	}
}
