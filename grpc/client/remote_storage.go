package client

import (
	"context"
	"fmt"
	"time"

	pb "global-chat/proto/hub"
	"global-chat/storage"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RemoteStorage is the origin's local storage seen from a tab.
type RemoteStorage struct {
	client  pb.LocalStorageClient
	timeout time.Duration
}

var _ storage.LocalStorage = (*RemoteStorage)(nil)

func NewRemoteStorage(conn grpc.ClientConnInterface, timeout time.Duration) *RemoteStorage {
	return &RemoteStorage{client: pb.NewLocalStorageClient(conn), timeout: timeout}
}

func (r *RemoteStorage) GetItem(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	value, err := r.client.GetItem(ctx, wrapperspb.String(key))
	if status.Code(err) == codes.NotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get item %q: %w", key, err)
	}
	return value.GetValue(), true, nil
}

func (r *RemoteStorage) SetItem(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	item := &structpb.Struct{Fields: map[string]*structpb.Value{
		pb.ItemKeyField:   structpb.NewStringValue(key),
		pb.ItemValueField: structpb.NewStringValue(value),
	}}
	if _, err := r.client.SetItem(ctx, item); err != nil {
		return fmt.Errorf("set item %q: %w", key, err)
	}
	return nil
}

func (r *RemoteStorage) RemoveItem(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if _, err := r.client.RemoveItem(ctx, wrapperspb.String(key)); err != nil {
		return fmt.Errorf("remove item %q: %w", key, err)
	}
	return nil
}
