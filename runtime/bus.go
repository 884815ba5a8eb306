package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"global-chat/contract"
	"global-chat/domain"
	"global-chat/errors"
	"global-chat/sink"

	"github.com/google/uuid"
)

// Bus is the in-process broadcast transport: every Endpoint opened on a topic
// receives what the other endpoints of that topic publish.
//
// Delivery is best effort: no durability, no retries, and a subscriber that
// falls behind for longer than sinkTimeout loses messages. Messages from one
// publisher reach each subscriber in publish order.
type Bus struct {
	log         *slog.Logger
	registry    contract.IRegistry
	bufferSize  int
	sinkTimeout time.Duration
}

func NewBus(log *slog.Logger, registry contract.IRegistry, bufferSize int, sinkTimeout time.Duration) *Bus {
	return &Bus{log: log, registry: registry, bufferSize: bufferSize, sinkTimeout: sinkTimeout}
}

// Open subscribes a new endpoint on topic. The caller owns it and must Close it.
func (b *Bus) Open(topic string) *Endpoint {
	e := &Endpoint{
		id:      uuid.NewString(),
		topic:   topic,
		bus:     b,
		sink:    sink.NewChannelSink(b.log, b.bufferSize, b.sinkTimeout),
		stopped: make(chan struct{}),
	}
	b.registry.Subscribe(e.id, topic, e.sink)
	go e.deliver()
	return e
}

func (b *Bus) fanout(from, topic string, msg domain.ChatMessage) {
	for _, s := range b.registry.GetSinksForTopic(topic, from) {
		ctx, cancel := context.WithTimeout(context.Background(), b.sinkTimeout)
		if err := s.Consume(ctx, msg); err != nil {
			b.log.Debug("Broadcast delivery lost", "topic", topic, "message_id", msg.ID, "error", err)
		}
		cancel()
	}
}

// Endpoint is one tab's handle on a topic. It implements contract.Bridge.
type Endpoint struct {
	id      string
	topic   string
	bus     *Bus
	sink    *sink.ChannelSink
	stopped chan struct{}

	mu       sync.RWMutex
	handlers []contract.MessageHandler
	closed   bool
}

var _ contract.Bridge = (*Endpoint)(nil)

func (e *Endpoint) ID() string {
	return e.id
}

// Publish relays msg to every other endpoint of the topic. It never echoes to e.
func (e *Endpoint) Publish(msg domain.ChatMessage) error {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return errors.ErrBridgeClosed
	}
	e.bus.fanout(e.id, e.topic, msg)
	return nil
}

func (e *Endpoint) Subscribe(handler contract.MessageHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.handlers = append(e.handlers, handler)
}

// Close unsubscribes the endpoint. Once it returns no new handler invocation starts.
// Closing twice is a no-op.
func (e *Endpoint) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.handlers = nil
	e.mu.Unlock()

	e.bus.registry.Unsubscribe(e.id, e.topic)
	e.sink.Close()
	return nil
}

// Stopped is closed when the delivery goroutine has exited.
func (e *Endpoint) Stopped() <-chan struct{} {
	return e.stopped
}

func (e *Endpoint) deliver() {
	defer close(e.stopped)
	for {
		select {
		case <-e.sink.Done():
			return
		case msg := <-e.sink.Messages:
			e.mu.RLock()
			handlers := e.handlers
			closed := e.closed
			e.mu.RUnlock()
			if closed {
				return
			}
			for _, handle := range handlers {
				handle(msg)
			}
		}
	}
}
