package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"global-chat/domain"
	pb "global-chat/proto/hub"
	"global-chat/runtime"
	"global-chat/storage"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// HubServer exposes the origin's broadcast topics and local storage to its tabs.
type HubServer struct {
	log          *slog.Logger
	bus          *runtime.Bus
	storage      storage.LocalStorage
	defaultTopic string
	bufferSize   int
	done         chan struct{}
	closeOnce    sync.Once
}

var (
	_ pb.BroadcastServer    = (*HubServer)(nil)
	_ pb.LocalStorageServer = (*HubServer)(nil)
)

func NewHubServer(log *slog.Logger, bus *runtime.Bus, storage storage.LocalStorage, defaultTopic string, bufferSize int) *HubServer {
	return &HubServer{
		log:          log,
		bus:          bus,
		storage:      storage,
		defaultTopic: defaultTopic,
		bufferSize:   bufferSize,
		done:         make(chan struct{}),
	}
}

// Close ends every open Relay stream so a graceful stop does not wait on tabs.
func (h *HubServer) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Register exposes both services on s.
func (h *HubServer) Register(s *grpc.Server) {
	pb.RegisterBroadcastServer(s, h)
	pb.RegisterLocalStorageServer(s, h)
}

// Relay joins the stream to the topic named in its metadata for as long as the
// tab keeps it open. What the tab sends reaches every other member of the topic,
// never the tab itself.
func (h *HubServer) Relay(stream grpc.BidiStreamingServer[wrapperspb.BytesValue, wrapperspb.BytesValue]) error {
	ctx := stream.Context()
	topic := h.topicOf(ctx)
	endpoint := h.bus.Open(topic)
	defer endpoint.Close()
	h.log.Debug("Tab joined topic", "topic", topic, "endpoint", endpoint.ID())

	outgoing := make(chan domain.ChatMessage, h.bufferSize)
	endpoint.Subscribe(func(msg domain.ChatMessage) {
		select {
		case outgoing <- msg:
		case <-ctx.Done():
		case <-h.done:
		}
	})

	received := make(chan error, 1)
	go func() {
		for {
			in, err := stream.Recv()
			if err != nil {
				received <- err
				return
			}
			var msg domain.ChatMessage
			if err := json.Unmarshal(in.GetValue(), &msg); err != nil {
				h.log.Warn("Dropping malformed broadcast payload", "topic", topic, "error", err)
				continue
			}
			if err := endpoint.Publish(msg); err != nil {
				received <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.log.Debug("Tab left topic", "topic", topic, "endpoint", endpoint.ID())
			return nil
		case <-h.done:
			h.log.Debug("Hub closing, releasing tab", "topic", topic, "endpoint", endpoint.ID())
			return nil
		case err := <-received:
			if err == io.EOF {
				return nil
			}
			return err
		case msg := <-outgoing:
			payload, err := json.Marshal(msg)
			if err != nil {
				h.log.Error("Unable to encode broadcast message", "message_id", msg.ID, "error", err)
				continue
			}
			if err := stream.Send(wrapperspb.Bytes(payload)); err != nil {
				return err
			}
		}
	}
}

func (h *HubServer) topicOf(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return h.defaultTopic
	}
	if values := md.Get(pb.TopicMetadataKey); len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return h.defaultTopic
}

func (h *HubServer) GetItem(_ context.Context, key *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	value, ok, err := h.storage.GetItem(key.GetValue())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get item: %v", err)
	}
	if !ok {
		return nil, status.Errorf(codes.NotFound, "no item %q", key.GetValue())
	}
	return wrapperspb.String(value), nil
}

func (h *HubServer) SetItem(_ context.Context, item *structpb.Struct) (*emptypb.Empty, error) {
	fields := item.GetFields()
	key := fields[pb.ItemKeyField].GetStringValue()
	if key == "" {
		return nil, status.Error(codes.InvalidArgument, "missing item key")
	}
	if err := h.storage.SetItem(key, fields[pb.ItemValueField].GetStringValue()); err != nil {
		return nil, status.Errorf(codes.Internal, "set item: %v", err)
	}
	return &emptypb.Empty{}, nil
}

func (h *HubServer) RemoveItem(_ context.Context, key *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := h.storage.RemoveItem(key.GetValue()); err != nil {
		return nil, status.Errorf(codes.Internal, "remove item: %v", err)
	}
	return &emptypb.Empty{}, nil
}
