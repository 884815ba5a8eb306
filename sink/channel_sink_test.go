package sink

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"global-chat/domain"
	"global-chat/errors"

	"github.com/stretchr/testify/require"
)

func TestChannelSink_Consume_Keeps_Order(t *testing.T) {
	req := require.New(t)
	s := NewChannelSink(slog.Default(), 3, 10*time.Millisecond)

	for _, id := range []string{"1", "2", "3"} {
		req.NoError(s.Consume(context.Background(), domain.ChatMessage{ID: id}))
	}

	req.Equal("1", (<-s.Messages).ID)
	req.Equal("2", (<-s.Messages).ID)
	req.Equal("3", (<-s.Messages).ID)
}

func TestChannelSink_Full_Buffer_Drops_After_Timeout(t *testing.T) {
	req := require.New(t)
	s := NewChannelSink(slog.Default(), 1, 20*time.Millisecond)
	req.NoError(s.Consume(context.Background(), domain.ChatMessage{ID: "1"}))

	// When nobody drains the buffer
	start := time.Now()
	err := s.Consume(context.Background(), domain.ChatMessage{ID: "2"})

	// Then the second message is dropped once the delivery timeout elapsed
	req.ErrorIs(err, context.DeadlineExceeded)
	req.GreaterOrEqual(time.Since(start), 20*time.Millisecond)
	req.Len(s.Messages, 1)
}

func TestChannelSink_Closed(t *testing.T) {
	req := require.New(t)
	s := NewChannelSink(slog.Default(), 1, time.Second)
	s.Close()
	s.Close()

	req.ErrorIs(s.Consume(context.Background(), domain.ChatMessage{ID: "1"}), errors.ErrBridgeClosed)
	select {
	case <-s.Done():
	default:
		req.Fail("done should be closed")
	}
}
