package runtime

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"global-chat/contract"
	"global-chat/domain"
	"global-chat/errors"
	"global-chat/repositories"
	"global-chat/services"
	"global-chat/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type origin struct {
	bus     *Bus
	storage storage.LocalStorage
}

func newOrigin(t *testing.T) origin {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return origin{bus: newTestBus(), storage: storage.NewDiskStorage(db, slog.Default())}
}

func (o origin) openTab(t *testing.T) *Tab {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	session := services.NewSessionManager(
		repositories.NewUserRepository(o.storage, log),
		repositories.NewIdentityRepository(o.storage),
		log,
	)
	opener := func(context.Context) (contract.Bridge, error) { return o.bus.Open(topic), nil }
	newAI := func() services.IAISession { return services.NewAISession(log, nil, 0.7, time.Second) }
	tab := NewTab(log, session, opener, newAI, time.Now)
	t.Cleanup(func() { _ = tab.Close() })
	return tab
}

func TestTab_Room_Requires_Login(t *testing.T) {
	req := require.New(t)
	tab := newOrigin(t).openTab(t)

	_, err := tab.Room()
	req.ErrorIs(err, errors.ErrNotLoggedIn)
	_, err = tab.Assistant()
	req.ErrorIs(err, errors.ErrNotLoggedIn)
	req.Equal(domain.PhaseLoggedOut, tab.Phase())
}

func TestTab_Message_Reaches_Other_Tab_As_Remote(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	o := newOrigin(t)
	alice, bob := o.openTab(t), o.openTab(t)

	// Given two tabs logged in with different accounts
	aliceIdentity, err := alice.Register(ctx, "alice", "pw")
	req.NoError(err)
	_, err = bob.Register(ctx, "bob", "pw")
	req.NoError(err)

	aliceRoom, err := alice.Room()
	req.NoError(err)
	bobRoom, err := bob.Room()
	req.NoError(err)

	// When alice sends a message
	sent, ok := aliceRoom.SendLocal("hola", aliceIdentity)
	req.True(ok)

	// Then bob appends it once as a remote message
	req.Eventually(func() bool {
		return len(bobRoom.ActiveMessages()) == 2
	}, time.Second, 5*time.Millisecond)
	received := bobRoom.ActiveMessages()[1]
	req.Equal(sent.ID, received.ID)
	req.False(received.SenderIsLocal)
	req.Equal("alice", received.SenderName)

	// And alice holds only her local copy
	time.Sleep(20 * time.Millisecond)
	aliceMessages := aliceRoom.ActiveMessages()
	req.Len(aliceMessages, 2)
	req.True(aliceMessages[1].SenderIsLocal)
}

func TestTab_Restore_Uses_Persisted_Identity(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	o := newOrigin(t)

	// Given a tab logged in as alice
	_, err := o.openTab(t).Register(ctx, "alice", "pw")
	req.NoError(err)

	// When another tab of the same origin restores
	other := o.openTab(t)
	phase, err := other.Restore(ctx)

	// Then it enters the room as alice without credentials
	req.NoError(err)
	req.Equal(domain.PhaseLoggedIn, phase)
	identity, ok := other.Identity()
	req.True(ok)
	req.Equal("alice", identity.Username)
	_, err = other.Room()
	req.NoError(err)
}

func TestTab_Logout_Leaves_Room(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	o := newOrigin(t)
	tab := o.openTab(t)
	_, err := tab.Register(ctx, "alice", "pw")
	req.NoError(err)

	// When logging out
	req.NoError(tab.Logout())

	// Then the room is gone and nothing is persisted anymore
	_, err = tab.Room()
	req.ErrorIs(err, errors.ErrNotLoggedIn)
	req.Equal(domain.PhaseLoggedOut, tab.Phase())
	phase, err := o.openTab(t).Restore(ctx)
	req.NoError(err)
	req.Equal(domain.PhaseLoggedOut, phase)

	// And the topic has no subscriber left
	req.Empty(o.bus.registry.GetSinksForTopic(topic, ""))
}

func TestTab_Search_Active_Channel(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	tab := newOrigin(t).openTab(t)
	identity, err := tab.Register(ctx, "alice", "pw")
	req.NoError(err)
	room, err := tab.Room()
	req.NoError(err)

	var seen []string
	tab.OnMessage(func(msg domain.ChatMessage) { seen = append(seen, msg.Text) })
	room.SendLocal("busco diamantes", identity)

	results, err := tab.Search(ctx, "diamantes", 5)
	req.NoError(err)
	req.Len(results, 1)
	req.Equal([]string{"busco diamantes"}, seen)

	// The welcome message is indexed too
	results, err = tab.Search(ctx, "Servidor", 5)
	req.NoError(err)
	req.Len(results, 1)
}

// eagerBridge replays queued messages to the handler as soon as it subscribes.
type eagerBridge struct {
	queued []domain.ChatMessage
}

func (b *eagerBridge) Publish(domain.ChatMessage) error { return nil }

func (b *eagerBridge) Subscribe(handler contract.MessageHandler) {
	for _, msg := range b.queued {
		handler(msg)
	}
}

func (b *eagerBridge) Close() error { return nil }

func TestTab_Message_Arriving_On_Subscribe_Is_Indexed_And_Dispatched(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	o := newOrigin(t)
	log := slog.Default()
	session := services.NewSessionManager(
		repositories.NewUserRepository(o.storage, log),
		repositories.NewIdentityRepository(o.storage),
		log,
	)
	early := domain.ChatMessage{ID: "m-early", ChannelID: domain.DefaultChannelID, Text: "llegué antes", SenderName: "bob", Timestamp: time.Now()}
	opener := func(context.Context) (contract.Bridge, error) {
		return &eagerBridge{queued: []domain.ChatMessage{early}}, nil
	}
	newAI := func() services.IAISession { return services.NewAISession(log, nil, 0.7, time.Second) }
	tab := NewTab(log, session, opener, newAI, time.Now)
	t.Cleanup(func() { _ = tab.Close() })

	var seen []string
	tab.OnMessage(func(msg domain.ChatMessage) { seen = append(seen, msg.ID) })

	// When the tab enters a room whose bridge delivers immediately
	_, err := tab.Register(ctx, "alice", "pw")
	req.NoError(err)

	// Then the early message reached the listeners and the index
	req.Equal([]string{"m-early"}, seen)
	results, err := tab.Search(ctx, "antes", 5)
	req.NoError(err)
	req.Len(results, 1)
	req.Equal("m-early", results[0].ID)
}
