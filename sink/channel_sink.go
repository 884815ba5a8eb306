package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"global-chat/domain"
	"global-chat/errors"
)

// ChannelSink buffers relayed messages for one subscriber.
// The owner of the subscription drains Messages; publishers only ever enqueue.
type ChannelSink struct {
	Messages        chan domain.ChatMessage
	log             *slog.Logger
	deliveryTimeout time.Duration
	done            chan struct{}
	closeOnce       sync.Once
}

func NewChannelSink(log *slog.Logger, bufferSize int, deliveryTimeout time.Duration) *ChannelSink {
	return &ChannelSink{
		Messages:        make(chan domain.ChatMessage, bufferSize),
		log:             log,
		deliveryTimeout: deliveryTimeout,
		done:            make(chan struct{}),
	}
}

// Consume is called by the publishing side.
// A full buffer is waited on for at most deliveryTimeout, then the message is dropped.
func (s *ChannelSink) Consume(ctx context.Context, msg domain.ChatMessage) error {
	select {
	case <-s.done:
		return errors.ErrBridgeClosed
	default:
	}
	select {
	case s.Messages <- msg:
		return nil
	default:
	}

	timer := time.NewTimer(s.deliveryTimeout)
	defer timer.Stop()
	select {
	case s.Messages <- msg:
		return nil
	case <-s.done:
		return errors.ErrBridgeClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		s.log.Warn("Subscriber too slow, message dropped", "message_id", msg.ID)
		return context.DeadlineExceeded
	}
}

// Done is closed once the sink stops accepting messages.
func (s *ChannelSink) Done() <-chan struct{} {
	return s.done
}

func (s *ChannelSink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
