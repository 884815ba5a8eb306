//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"global-chat/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives messages relayed on a broadcast topic.
type EventSink interface {
	Consume(ctx context.Context, msg domain.ChatMessage) error
}

type IRegistry interface {
	GetSinksForTopic(topic string, except string) []EventSink
	Subscribe(subscriberID string, topic string, sink EventSink)
	Unsubscribe(subscriberID string, topic string)
}

// MessageHandler is invoked for every message another party publishes.
type MessageHandler func(msg domain.ChatMessage)

// Bridge is the same-origin publish/subscribe primitive connecting open tabs.
// Delivery is best effort and at most once; a publisher never receives its own messages.
type Bridge interface {
	Publish(msg domain.ChatMessage) error
	Subscribe(handler MessageHandler)
	Close() error
}

// SessionConfig is what a conversation is seeded with.
type SessionConfig struct {
	SystemInstruction string
	Temperature       float64
}

// Provider opens conversations with a hosted text-generation service.
type Provider interface {
	NewSession(ctx context.Context, config SessionConfig) (ProviderSession, error)
}

// ProviderSession is one stateful conversation.
// SendMessageStream calls onFragment for every text fragment in arrival order and
// returns once the provider signals the end of the answer.
type ProviderSession interface {
	SendMessageStream(ctx context.Context, message string, onFragment func(fragment string)) error
}
