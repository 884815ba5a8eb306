package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"global-chat/contract"
	"global-chat/domain"
	"global-chat/errors"
	pb "global-chat/proto/hub"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RemoteBridge is a tab's broadcast bridge through the origin hub.
// Publish only enqueues; a single goroutine writes the stream and another reads it.
type RemoteBridge struct {
	log      *slog.Logger
	stream   grpc.BidiStreamingClient[wrapperspb.BytesValue, wrapperspb.BytesValue]
	cancel   context.CancelFunc
	outgoing chan []byte
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	handlers []contract.MessageHandler
	closed   bool
}

var _ contract.Bridge = (*RemoteBridge)(nil)

// DialBridge joins topic on the hub behind conn. The bridge outlives ctx and
// stays open until Close or until the hub goes away.
func DialBridge(ctx context.Context, log *slog.Logger, conn grpc.ClientConnInterface, topic string, bufferSize int) (*RemoteBridge, error) {
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	streamCtx = metadata.AppendToOutgoingContext(streamCtx, pb.TopicMetadataKey, topic)

	stream, err := pb.NewBroadcastClient(conn).Relay(streamCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open relay stream: %w", err)
	}
	b := &RemoteBridge{
		log:      log,
		stream:   stream,
		cancel:   cancel,
		outgoing: make(chan []byte, bufferSize),
		done:     make(chan struct{}),
	}
	go b.send()
	go b.receive()
	return b, nil
}

func (b *RemoteBridge) Publish(msg domain.ChatMessage) error {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return errors.ErrBridgeClosed
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	select {
	case b.outgoing <- payload:
		return nil
	case <-b.done:
		return errors.ErrBridgeClosed
	}
}

func (b *RemoteBridge) Subscribe(handler contract.MessageHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.handlers = append(b.handlers, handler)
}

// Close leaves the topic. Once it returns no new handler invocation starts.
func (b *RemoteBridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.handlers = nil
	b.mu.Unlock()

	b.stop()
	return nil
}

// Done is closed once the bridge can no longer deliver anything.
func (b *RemoteBridge) Done() <-chan struct{} {
	return b.done
}

func (b *RemoteBridge) stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		b.cancel()
	})
}

func (b *RemoteBridge) send() {
	for {
		select {
		case <-b.done:
			return
		case payload := <-b.outgoing:
			if err := b.stream.Send(wrapperspb.Bytes(payload)); err != nil {
				b.log.Warn("Broadcast stream lost while sending", "error", err)
				b.stop()
				return
			}
		}
	}
}

func (b *RemoteBridge) receive() {
	for {
		in, err := b.stream.Recv()
		if err != nil {
			select {
			case <-b.done:
			default:
				b.log.Warn("Broadcast stream lost", "error", err)
			}
			b.stop()
			return
		}

		var msg domain.ChatMessage
		if err := json.Unmarshal(in.GetValue(), &msg); err != nil {
			b.log.Warn("Dropping malformed broadcast payload", "error", err)
			continue
		}

		b.mu.RLock()
		handlers, closed := b.handlers, b.closed
		b.mu.RUnlock()
		if closed {
			return
		}
		for _, handle := range handlers {
			handle(msg)
		}
	}
}
